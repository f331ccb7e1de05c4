// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for the linknotes pipeline:
// bookmarks read from CSV, note metadata rendered into frontmatter, per-URL
// outcomes, and stage configuration.
package types

// Bookmark is one row of the input CSV.
type Bookmark struct {
	// URL is the page to convert. Rows without a URL are dropped on read.
	URL string `json:"url" yaml:"url"`

	// Title is an optional title supplied in the CSV. Fallback notes use it
	// when the page cannot be fetched.
	Title string `json:"title,omitempty" yaml:"title,omitempty"`

	// Description is an optional summary supplied in the CSV.
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Tags lists the row's tags, trimmed and de-duplicated in first-seen order.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Line is the 1-based CSV line the row was read from.
	Line int `json:"line" yaml:"line"`
}
