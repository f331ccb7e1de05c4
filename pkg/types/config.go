package types

import "time"

// HTTPConfig holds shared HTTP settings used by stages that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with page requests. Sites that
	// block bots respond better to a desktop browser string.
	UserAgent string `json:"user_agent" yaml:"user_agent"`

	// AcceptLanguage is the Accept-Language header sent with page requests.
	AcceptLanguage string `json:"accept_language" yaml:"accept_language"`

	// MaxRetries is the number of retries on transient HTTP statuses (default 3).
	MaxRetries int `json:"max_retries" yaml:"max_retries"`

	// MaxBodyBytes caps how much of a response body is read (default 10 MiB).
	MaxBodyBytes int64 `json:"max_body_bytes" yaml:"max_body_bytes"`
}

// PipelineConfig holds settings for converting a batch of bookmarks to notes.
type PipelineConfig struct {
	HTTPConfig `yaml:",inline"`

	// OutDir is the vault directory notes are written into.
	OutDir string `json:"out_dir" yaml:"out_dir"`

	// Delay is the pause between consecutive URLs (default 1s).
	Delay time.Duration `json:"delay" yaml:"delay"`

	// TemplatePath is an optional text/template file replacing the default
	// note template.
	TemplatePath string `json:"template,omitempty" yaml:"template,omitempty"`

	// SkipExisting skips bookmarks whose source URL already has a note in OutDir.
	SkipExisting bool `json:"skip_existing" yaml:"skip_existing"`

	// DisableArchive turns off the Wayback Machine fallback.
	DisableArchive bool `json:"disable_archive" yaml:"disable_archive"`
}
