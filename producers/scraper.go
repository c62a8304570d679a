// Copyright (c) 2026 Michael D Henderson. All rights reserved.

package producers

import (
	"fmt"
	"html"
	"io"
	"net/http"
	"regexp"
	"time"

	"github.com/mdhender/vtfunc"
)

// maxPageSize caps how much of a page the scraper reads.
const maxPageSize = 8 << 20

var reAnchor = regexp.MustCompile(`<a[^>]+?href="([^"]+?)"[^>]*?>([^<]+?)</a>`)

// Scraper returns the descriptor of scraper(url), which fetches a page and
// yields the href and text of every anchor on it. A nil client uses one
// with a 30 second timeout.
func Scraper(client *http.Client) vtfunc.Descriptor {
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	return vtfunc.Descriptor{
		Name:    "scraper",
		Params:  []vtfunc.Param{{Name: "url"}},
		Columns: []string{"href", "description"},
		New: func() (vtfunc.Producer, error) {
			return &scraper{client: client}, nil
		},
	}
}

type scraper struct {
	client *http.Client
	links  [][]string
}

func (s *scraper) Initialize(args vtfunc.Args) error {
	url, err := args.String("url")
	if err != nil {
		return err
	}
	resp, err := s.client.Get(url)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("fetch %s: %s", url, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxPageSize))
	if err != nil {
		return fmt.Errorf("read %s: %w", url, err)
	}
	s.links = reAnchor.FindAllStringSubmatch(string(body), -1)
	return nil
}

func (s *scraper) Produce(idx int64) ([]vtfunc.Value, bool, error) {
	if idx >= int64(len(s.links)) {
		return nil, false, nil
	}
	m := s.links[idx]
	return []vtfunc.Value{html.UnescapeString(m[1]), html.UnescapeString(m[2])}, true, nil
}
