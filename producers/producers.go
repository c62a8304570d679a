// Copyright (c) 2026 Michael D Henderson. All rights reserved.

// Package producers contains ready-made table-valued functions.
package producers

import (
	"net/http"

	"github.com/mdhender/vtfunc"
)

// All returns every bundled function. client is used by scraper.
func All(client *http.Client) []vtfunc.Descriptor {
	return []vtfunc.Descriptor{
		Series(),
		RegexSearch(),
		Split(),
		Scraper(client),
	}
}
