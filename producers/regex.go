// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package producers

import (
	"fmt"
	"regexp"

	"github.com/mdhender/vtfunc"
)

// RegexSearch returns the descriptor of regex_search(regex, search_string),
// which yields every match of regex in search_string, left to right.
func RegexSearch() vtfunc.Descriptor {
	return vtfunc.Descriptor{
		Name: "regex_search",
		Params: []vtfunc.Param{
			{Name: "regex"},
			{Name: "search_string"},
		},
		Columns: []string{"match"},
		New:     func() (vtfunc.Producer, error) { return &regexSearch{}, nil },
	}
}

type regexSearch struct {
	text    string
	matches [][]int
	next    int
}

func (r *regexSearch) Initialize(args vtfunc.Args) error {
	pattern, err := args.String("regex")
	if err != nil {
		return err
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return fmt.Errorf("compile %q: %w", pattern, err)
	}
	if args.IsNull("search_string") {
		return nil
	}
	if r.text, err = args.String("search_string"); err != nil {
		return err
	}
	r.matches = re.FindAllStringIndex(r.text, -1)
	return nil
}

// Produce keeps its own position and ignores the row index.
func (r *regexSearch) Produce(int64) ([]vtfunc.Value, bool, error) {
	if r.next >= len(r.matches) {
		return nil, false, nil
	}
	m := r.matches[r.next]
	r.next++
	return []vtfunc.Value{r.text[m[0]:m[1]]}, true, nil
}
