// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/linknotes/internal/note"
	"github.com/pdiddy/linknotes/pkg/types"
)

// progressURLLength is how much of a URL the progress line shows.
const progressURLLength = 80

// Item is the outcome of converting one bookmark.
type Item struct {
	URL     string        `yaml:"url"`
	Line    int           `yaml:"line"`
	Outcome types.Outcome `yaml:"outcome"`
	// Path is the note written for the bookmark, or the existing note for
	// skipped bookmarks.
	Path      string `yaml:"path,omitempty"`
	Title     string `yaml:"title,omitempty"`
	SourceURL string `yaml:"source_url,omitempty"`
	Error     string `yaml:"error,omitempty"`
}

// BatchResult holds the outcome of a batch run.
type BatchResult struct {
	Items []Item
	// Total is the number of bookmarks submitted, including any not reached
	// because the run was cancelled.
	Total int
}

// Count returns the number of items with outcome o.
func (r BatchResult) Count(o types.Outcome) int {
	n := 0
	for _, it := range r.Items {
		if it.Outcome == o {
			n++
		}
	}
	return n
}

// Filter returns the items with outcome o in processing order.
func (r BatchResult) Filter(o types.Outcome) []Item {
	var out []Item
	for _, it := range r.Items {
		if it.Outcome == o {
			out = append(out, it)
		}
	}
	return out
}

// NotesCreated returns the number of notes written in this run.
func (r BatchResult) NotesCreated() int {
	return r.Count(types.OutcomeSuccess) + r.Count(types.OutcomeArchived) + r.Count(types.OutcomeFallback)
}

// HasFailures reports whether any bookmark ended without a note.
func (r BatchResult) HasFailures() bool {
	return r.Count(types.OutcomeFailed) > 0
}

// ProcessBatch converts bookmarks in order, printing per-item progress to w
// and returning a summary. It continues after individual failures and
// pauses cfg.Delay between consecutive fetches. Cancelling ctx stops the
// batch after the current item.
func (p *Pipeline) ProcessBatch(ctx context.Context, items []types.Bookmark, w io.Writer) BatchResult {
	result := BatchResult{Total: len(items)}

	var existing map[string]string
	if p.cfg.SkipExisting {
		idx, err := note.IndexSources(p.cfg.OutDir)
		if err != nil {
			p.log.Warn("indexing existing notes failed", zap.String("dir", p.cfg.OutDir), zap.Error(err))
		}
		existing = idx
	}

	fetched := 0
	for i, b := range items {
		if ctx.Err() != nil {
			break
		}
		fmt.Fprintf(w, "\n[%d/%d] %s\n", i+1, len(items), shorten(b.URL, progressURLLength))

		if path, ok := existing[b.URL]; ok {
			fmt.Fprintf(w, "  %s %s (already exists)\n", types.OutcomeSkipped.Label(), path)
			result.Items = append(result.Items, Item{URL: b.URL, Line: b.Line, Outcome: types.OutcomeSkipped, Path: path})
			continue
		}

		if fetched > 0 && p.cfg.Delay > 0 {
			if err := sleep(ctx, p.cfg.Delay); err != nil {
				break
			}
		}
		fetched++

		item := p.ProcessBookmark(ctx, b, w)
		result.Items = append(result.Items, item)
		if item.Outcome == types.OutcomeFailed {
			fmt.Fprintf(w, "  %s %s\n", item.Outcome.Label(), item.Error)
			p.log.Warn("bookmark failed", zap.String("url", b.URL), zap.Int("line", b.Line), zap.String("error", item.Error))
			continue
		}
		fmt.Fprintf(w, "  %s %s\n", item.Outcome.Label(), item.Path)
		p.log.Info("note written",
			zap.String("url", b.URL),
			zap.String("outcome", string(item.Outcome)),
			zap.String("path", item.Path))

		if existing != nil {
			existing[b.URL] = item.Path
			existing[item.SourceURL] = item.Path
		}
	}

	fmt.Fprintf(w, "\nBatch summary: %d direct, %d archived, %d basic, %d failed, %d skipped (total: %d)\n",
		result.Count(types.OutcomeSuccess), result.Count(types.OutcomeArchived),
		result.Count(types.OutcomeFallback), result.Count(types.OutcomeFailed),
		result.Count(types.OutcomeSkipped), result.Total)
	return result
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func shorten(s string, n int) string {
	if t := truncate(s, n); t != s {
		return t + "..."
	}
	return s
}
