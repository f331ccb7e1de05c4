// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pipeline converts bookmarks into notes. Each URL goes through a
// fallback chain: a direct fetch, then the closest Wayback Machine snapshot,
// then a basic note that points at the URL for manual review.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/pdiddy/linknotes/internal/extract"
	"github.com/pdiddy/linknotes/internal/fetch"
	"github.com/pdiddy/linknotes/internal/note"
	"github.com/pdiddy/linknotes/pkg/types"
)

// retryTitleLength is the title length used when the first write fails,
// usually because the filename is too long for the filesystem.
const retryTitleLength = 50

// Fetcher retrieves pages directly or from a web archive. *fetch.Fetcher
// implements it.
type Fetcher interface {
	Page(ctx context.Context, rawURL string) (*fetch.Result, error)
	Snapshot(ctx context.Context, rawURL string) (*fetch.Result, error)
}

// Pipeline turns bookmarks into notes on disk.
type Pipeline struct {
	fetcher  Fetcher
	renderer *note.Renderer
	cfg      types.PipelineConfig
	log      *zap.Logger
	now      func() time.Time
	write    func(path, content string) error
}

// New creates a Pipeline that writes notes into cfg.OutDir. A nil logger
// disables diagnostic logging.
func New(f Fetcher, r *note.Renderer, cfg types.PipelineConfig, log *zap.Logger) *Pipeline {
	if log == nil {
		log = zap.NewNop()
	}
	return &Pipeline{
		fetcher:  f,
		renderer: r,
		cfg:      cfg,
		log:      log,
		now:      time.Now,
		write:    note.Write,
	}
}

// WithClock returns a copy of p that dates undated notes with now.
func (p *Pipeline) WithClock(now func() time.Time) *Pipeline {
	c := *p
	c.now = now
	c.renderer = p.renderer.WithClock(now)
	return &c
}

// ProcessBookmark converts one bookmark into a note, printing progress to w.
// The returned item's Outcome records which step of the fallback chain
// produced the note, or OutcomeFailed when none could be written.
func (p *Pipeline) ProcessBookmark(ctx context.Context, b types.Bookmark, w io.Writer) Item {
	item := Item{URL: b.URL, Line: b.Line}

	doc, outcome := p.retrieve(ctx, b, w)
	if err := ctx.Err(); err != nil {
		item.Outcome = types.OutcomeFailed
		item.Error = err.Error()
		return item
	}

	doc.Meta.Tags = note.MergeTags(doc.Meta.Tags, b.Tags)
	doc.Meta.BookmarkURL = b.URL

	path, err := p.writeNote(doc.Meta, doc.Markdown)
	if err != nil {
		p.log.Warn("writing note failed", zap.String("url", b.URL), zap.Error(err))
		item.Outcome = types.OutcomeFailed
		item.Error = err.Error()
		return item
	}

	item.Outcome = outcome
	item.Path = path
	item.Title = doc.Meta.Title
	item.SourceURL = doc.Meta.SourceURL
	return item
}

// retrieve walks the fallback chain and always returns a document: fetched,
// archived, or a placeholder built from the bookmark.
func (p *Pipeline) retrieve(ctx context.Context, b types.Bookmark, w io.Writer) (*extract.Document, types.Outcome) {
	fmt.Fprintln(w, "  direct fetch...")
	doc, err := p.direct(ctx, b.URL)
	if err == nil {
		return doc, types.OutcomeSuccess
	}
	if ctx.Err() != nil {
		return nil, types.OutcomeFailed
	}
	p.log.Debug("direct fetch failed", zap.String("url", b.URL), zap.Error(err))
	if code := fetch.StatusCode(err); code != 0 {
		fmt.Fprintf(w, "  %d %s\n", code, http.StatusText(code))
	} else {
		fmt.Fprintf(w, "  error: %v\n", err)
	}

	if !p.cfg.DisableArchive {
		fmt.Fprintln(w, "  trying Wayback Machine...")
		doc, err = p.archived(ctx, b.URL)
		if err == nil {
			fmt.Fprintln(w, "  snapshot found")
			return doc, types.OutcomeArchived
		}
		if ctx.Err() != nil {
			return nil, types.OutcomeFailed
		}
		p.log.Debug("archive fallback failed", zap.String("url", b.URL), zap.Error(err))
	}

	fmt.Fprintln(w, "  creating basic note...")
	return FallbackDocument(b), types.OutcomeFallback
}

func (p *Pipeline) direct(ctx context.Context, rawURL string) (*extract.Document, error) {
	res, err := p.fetcher.Page(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Parse(res.HTML, res.URL)
	if err != nil {
		return nil, fmt.Errorf("extracting %s: %w", res.URL, err)
	}
	return doc, nil
}

// archived extracts the closest snapshot. Links resolve against the snapshot
// URL, but the note's source stays the original URL.
func (p *Pipeline) archived(ctx context.Context, rawURL string) (*extract.Document, error) {
	res, err := p.fetcher.Snapshot(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	doc, err := extract.Parse(res.HTML, res.URL)
	if err != nil {
		return nil, fmt.Errorf("extracting snapshot %s: %w", res.URL, err)
	}
	doc.Meta.SourceURL = rawURL
	return doc, nil
}

// FallbackDocument builds the placeholder note for a URL that could not be
// retrieved. Title and summary come from the CSV row.
func FallbackDocument(b types.Bookmark) *extract.Document {
	title := b.Title
	if title == "" {
		title = b.URL
	}
	body := fmt.Sprintf("**CONTENT UNAVAILABLE**\n\nThis URL could not be retrieved automatically.\n\nVisit manually: [%s](%s)\n", b.URL, b.URL)
	return &extract.Document{
		Meta: types.NoteMeta{
			Title:     title,
			Summary:   b.Description,
			SourceURL: b.URL,
			Status:    types.NoteUnavailable,
		},
		Markdown: body,
	}
}

// writeNote renders and stores a note. When the first write fails the title
// is shortened and the write retried once.
func (p *Pipeline) writeNote(meta types.NoteMeta, content string) (string, error) {
	text, err := p.renderer.Render(meta, content)
	if err != nil {
		return "", err
	}

	path, err := p.place(meta, text)
	if err == nil {
		return path, nil
	}
	p.log.Debug("retrying write with shorter title", zap.String("title", meta.Title), zap.Error(err))

	meta.Title = truncate(meta.Title, retryTitleLength)
	path, retryErr := p.place(meta, text)
	if retryErr != nil {
		return "", fmt.Errorf("writing note: %w", err)
	}
	return path, nil
}

func (p *Pipeline) place(meta types.NoteMeta, text string) (string, error) {
	path, err := note.OutputPath(p.cfg.OutDir, meta, p.now())
	if err != nil {
		return "", err
	}
	if err := p.write(path, text); err != nil {
		return "", err
	}
	return path, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
