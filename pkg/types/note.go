// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// NoteStatus marks notes whose content could not be retrieved.
type NoteStatus string

const (
	NoteAvailable   NoteStatus = ""
	NoteUnavailable NoteStatus = "unavailable"
)

// NoteMeta holds the metadata rendered into a note's frontmatter.
type NoteMeta struct {
	// Title is the page title, falling back to the URL.
	Title string `json:"title" yaml:"title"`

	// Author is the cleaned author string. Several names may be separated
	// by commas or semicolons.
	Author string `json:"author,omitempty" yaml:"author,omitempty"`

	// PublishedDate is the publication date as YYYY-MM-DD, or empty.
	PublishedDate string `json:"published_date,omitempty" yaml:"published_date,omitempty"`

	// Summary is the page description or the CSV description.
	Summary string `json:"summary,omitempty" yaml:"summary,omitempty"`

	// SourceURL is the canonical URL when the page declares one, otherwise
	// the URL that was fetched.
	SourceURL string `json:"source_url" yaml:"source_url"`

	// BookmarkURL is the URL as listed in the CSV. It differs from SourceURL
	// when the page declares a canonical URL.
	BookmarkURL string `json:"bookmark_url,omitempty" yaml:"bookmark_url,omitempty"`

	// WordCount is the number of words in the readable content.
	WordCount int `json:"word_count" yaml:"word_count"`

	// ReadingTimeMin is the estimated reading time in minutes.
	ReadingTimeMin int `json:"reading_time_min" yaml:"reading_time_min"`

	// Tags lists the lower-cased, de-duplicated note tags.
	Tags []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Status is NoteUnavailable for fallback notes.
	Status NoteStatus `json:"status,omitempty" yaml:"status,omitempty"`
}

// Outcome classifies how a bookmark was turned into a note.
type Outcome string

const (
	// OutcomeSuccess means the page was fetched directly.
	OutcomeSuccess Outcome = "success"
	// OutcomeArchived means the page came from a Wayback Machine snapshot.
	OutcomeArchived Outcome = "archived"
	// OutcomeFallback means a basic note pointing at the URL was written.
	OutcomeFallback Outcome = "fallback"
	// OutcomeFailed means no note could be written.
	OutcomeFailed Outcome = "failed"
	// OutcomeSkipped means a note for the URL already existed.
	OutcomeSkipped Outcome = "skipped"
)

// Outcomes lists the reported outcomes in report order.
var Outcomes = []Outcome{OutcomeSuccess, OutcomeArchived, OutcomeFallback, OutcomeFailed, OutcomeSkipped}

// Label returns the short progress label printed for the outcome.
func (o Outcome) Label() string {
	switch o {
	case OutcomeSuccess:
		return "OK"
	case OutcomeArchived:
		return "ARCHIVE"
	case OutcomeFallback:
		return "BASIC"
	case OutcomeSkipped:
		return "SKIP"
	default:
		return "ERROR"
	}
}
