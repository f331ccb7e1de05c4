// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package report writes the run reports that sit next to the generated
// notes and packs the output directory into a ZIP archive.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/linknotes/internal/pipeline"
	"github.com/pdiddy/linknotes/pkg/types"
)

// TimestampFormat is the UTC timestamp embedded in report and archive names.
const TimestampFormat = "20060102_150405"

const rule = "======================================================================"

// Files lists the reports written by Write. Empty reports are not written
// and their field is left blank.
type Files struct {
	Summary      string
	ManualReview string
	Failed       string
	Record       string
}

// All returns the paths of the reports that were written.
func (f Files) All() []string {
	var out []string
	for _, p := range []string{f.Summary, f.ManualReview, f.Failed, f.Record} {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Record is the machine-readable run report.
type Record struct {
	GeneratedAt  string                `yaml:"generated_at"`
	Total        int                   `yaml:"total"`
	NotesCreated int                   `yaml:"notes_created"`
	Counts       map[types.Outcome]int `yaml:"counts"`
	Items        []pipeline.Item       `yaml:"items"`
}

// Write writes the reports for result into outDir. Names carry the UTC
// timestamp of now.
func Write(outDir string, result pipeline.BatchResult, now time.Time) (Files, error) {
	ts := now.UTC().Format(TimestampFormat)
	var files Files

	files.Summary = filepath.Join(outDir, "_00_summary_"+ts+".txt")
	if err := writeText(files.Summary, Summary(result)); err != nil {
		return Files{}, err
	}

	if review := urlList("URLs for manual review:", sources(result.Filter(types.OutcomeFallback))); review != "" {
		files.ManualReview = filepath.Join(outDir, "_01_manual_review_"+ts+".txt")
		if err := writeText(files.ManualReview, review); err != nil {
			return Files{}, err
		}
	}

	if failed := urlList("URLs that failed:", urls(result.Filter(types.OutcomeFailed))); failed != "" {
		files.Failed = filepath.Join(outDir, "_02_failed_"+ts+".txt")
		if err := writeText(files.Failed, failed); err != nil {
			return Files{}, err
		}
	}

	rec := Record{
		GeneratedAt:  now.UTC().Format(time.RFC3339),
		Total:        result.Total,
		NotesCreated: result.NotesCreated(),
		Counts:       make(map[types.Outcome]int),
		Items:        result.Items,
	}
	for _, o := range types.Outcomes {
		rec.Counts[o] = result.Count(o)
	}
	data, err := yaml.Marshal(&rec)
	if err != nil {
		return Files{}, fmt.Errorf("marshaling run record: %w", err)
	}
	files.Record = filepath.Join(outDir, "_report_"+ts+".yaml")
	if err := os.WriteFile(files.Record, data, 0o644); err != nil {
		return Files{}, fmt.Errorf("writing %s: %w", files.Record, err)
	}

	return files, nil
}

// Summary returns the human-readable summary: counts and percentages per
// outcome and the number of notes created.
func Summary(result pipeline.BatchResult) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\nLINKNOTES REPORT\n%s\n\n", rule, rule)
	fmt.Fprintf(&b, "Total URLs: %d\n\n", result.Total)

	rows := []struct {
		label   string
		outcome types.Outcome
	}{
		{"Direct fetch:", types.OutcomeSuccess},
		{"From Archive.org:", types.OutcomeArchived},
		{"Basic note:", types.OutcomeFallback},
		{"Failed:", types.OutcomeFailed},
		{"Skipped:", types.OutcomeSkipped},
	}
	for _, r := range rows {
		n := result.Count(r.outcome)
		fmt.Fprintf(&b, "%-19s %4d (%5.1f%%)\n", r.label, n, percent(n, result.Total))
	}
	fmt.Fprintf(&b, "\nNotes created: %d\n", result.NotesCreated())
	return b.String()
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// sources returns the note source of each item, falling back to its URL.
func sources(items []pipeline.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		if it.SourceURL != "" {
			out = append(out, it.SourceURL)
		} else {
			out = append(out, it.URL)
		}
	}
	return out
}

func urls(items []pipeline.Item) []string {
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, it.URL)
	}
	return out
}

func urlList(heading string, list []string) string {
	if len(list) == 0 {
		return ""
	}
	return heading + "\n\n" + strings.Join(list, "\n") + "\n"
}

func writeText(path, content string) error {
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
