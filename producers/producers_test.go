// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package producers_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mdhender/vtfunc"
	"github.com/mdhender/vtfunc/producers"
)

// collect drives a producer outside of SQLite, stopping after limit rows.
func collect(t *testing.T, d vtfunc.Descriptor, limit int, vals ...vtfunc.Value) ([][]vtfunc.Value, error) {
	t.Helper()
	p, err := d.New()
	require.NoError(t, err)
	args, err := vtfunc.NewArgs(d.Params, vals...)
	require.NoError(t, err)
	if err := p.Initialize(args); err != nil {
		return nil, err
	}

	var rows [][]vtfunc.Value
	for idx := int64(0); len(rows) < limit; idx++ {
		row, ok, err := p.Produce(idx)
		if err != nil {
			return rows, err
		}
		if !ok {
			break
		}
		require.Len(t, row, len(d.Columns))
		rows = append(rows, row)
	}
	return rows, nil
}

func firstColumn(rows [][]vtfunc.Value) []vtfunc.Value {
	var out []vtfunc.Value
	for _, r := range rows {
		out = append(out, r[0])
	}
	return out
}

func TestAll(t *testing.T) {
	var names []string
	for _, d := range producers.All(nil) {
		names = append(names, d.Name)
		assert.NotNil(t, d.New, d.Name)
	}
	assert.Equal(t, []string{"series", "regex_search", "str_split", "scraper"}, names)
}
