// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package vtfunc

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDeclareSchema(t *testing.T) {
	d := &Descriptor{
		Name:    "scraper",
		Params:  []Param{{Name: "url"}, {Name: "depth"}},
		Columns: []string{"href", "description"},
	}
	assert.Equal(t, `CREATE TABLE x("href", "description", "url" HIDDEN, "depth" HIDDEN)`, declareSchema(d))

	d.Params = nil
	assert.Equal(t, `CREATE TABLE x("href", "description")`, declareSchema(d))
}

func TestValidate(t *testing.T) {
	newFn := func() (Producer, error) { return nil, nil }
	valid := func() Descriptor {
		return Descriptor{
			Name:    "series",
			Params:  []Param{{Name: "start", Default: 0}, {Name: "stop"}},
			Columns: []string{"value"},
			New:     newFn,
		}
	}

	tooMany := valid()
	tooMany.Params = nil
	for i := 0; i <= maxParams; i++ {
		tooMany.Params = append(tooMany.Params, Param{Name: fmt.Sprintf("p%d", i)})
	}

	tests := []struct {
		name   string
		modify func(d *Descriptor)
		ok     bool
	}{
		{name: "valid", modify: func(*Descriptor) {}, ok: true},
		{name: "no params", modify: func(d *Descriptor) { d.Params = nil }, ok: true},
		{name: "empty name", modify: func(d *Descriptor) { d.Name = "" }},
		{name: "name with spaces", modify: func(d *Descriptor) { d.Name = "my func" }},
		{name: "name with quote", modify: func(d *Descriptor) { d.Name = `a"b` }},
		{name: "nil factory", modify: func(d *Descriptor) { d.New = nil }},
		{name: "no columns", modify: func(d *Descriptor) { d.Columns = nil }},
		{name: "bad column", modify: func(d *Descriptor) { d.Columns = []string{"1st"} }},
		{name: "duplicate column", modify: func(d *Descriptor) { d.Columns = []string{"a", "A"} }},
		{name: "param shadows column", modify: func(d *Descriptor) { d.Params[1].Name = "Value" }},
		{name: "bad default", modify: func(d *Descriptor) { d.Params[0].Default = []int{1} }},
		{name: "too many params", modify: func(d *Descriptor) { *d = tooMany }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := valid()
			tt.modify(&d)
			err := validate(d)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			assert.True(t, errors.Is(err, ErrInvalidDescriptor), "got %v", err)
		})
	}
}
