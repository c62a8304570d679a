// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package producers

import (
	"strings"

	"github.com/mdhender/vtfunc"
)

// Split returns the descriptor of str_split(data), which yields the
// whitespace-separated parts of data.
func Split() vtfunc.Descriptor {
	return vtfunc.Descriptor{
		Name:    "str_split",
		Params:  []vtfunc.Param{{Name: "data"}},
		Columns: []string{"part"},
		New:     func() (vtfunc.Producer, error) { return &split{}, nil },
	}
}

type split struct {
	parts []string
}

func (s *split) Initialize(args vtfunc.Args) error {
	if args.IsNull("data") {
		return nil
	}
	data, err := args.String("data")
	if err != nil {
		return err
	}
	s.parts = strings.Fields(data)
	return nil
}

// Produce uses the row index directly.
func (s *split) Produce(idx int64) ([]vtfunc.Value, bool, error) {
	if idx >= int64(len(s.parts)) {
		return nil, false, nil
	}
	return []vtfunc.Value{s.parts[idx]}, true, nil
}
