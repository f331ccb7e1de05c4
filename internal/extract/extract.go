// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package extract turns a fetched HTML page into note metadata and Markdown
// content. Metadata comes from Open Graph tags, JSON-LD and standard <meta>
// elements; the body comes from a readability pass converted to Markdown.
package extract

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"github.com/pdiddy/linknotes/pkg/types"
)

// wordsPerMinute is the reading speed used for reading time estimates.
const wordsPerMinute = 225

var wordPattern = regexp.MustCompile(`[\p{L}\p{N}_]+`)

// Document is the result of extracting a page.
type Document struct {
	// Meta holds the metadata for the note frontmatter. Tags are left empty;
	// callers merge them from the bookmark.
	Meta types.NoteMeta
	// Markdown is the readable content converted to Markdown.
	Markdown string
	// Text is the readable content as plain text.
	Text string
}

// Parse extracts metadata and readable content from rawHTML. pageURL is the
// URL the page was served from; it resolves relative links and is the
// fallback for the title and source URL.
func Parse(rawHTML, pageURL string) (*Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, fmt.Errorf("parsing HTML: %w", err)
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, fmt.Errorf("parsing page URL %q: %w", pageURL, err)
	}

	pm := pageMetadata(root)

	var contentHTML, text, articleTitle string
	article, err := readability.FromReader(strings.NewReader(rawHTML), base)
	if err == nil {
		contentHTML = article.Content
		text = article.TextContent
		articleTitle = collapseSpace(article.Title)
	}

	var markdown string
	if strings.TrimSpace(contentHTML) != "" {
		markdown, err = ToMarkdown(contentHTML, base)
		if err != nil {
			return nil, fmt.Errorf("converting content: %w", err)
		}
	} else {
		markdown = renderMarkdown(root, base)
	}
	if strings.TrimSpace(text) == "" {
		text = PlainText(root)
	}

	words := CountWords(text)
	meta := types.NoteMeta{
		Title:          firstNonEmpty(pm.title, articleTitle, pageURL),
		Author:         pm.author,
		PublishedDate:  NormalizeDate(pm.published),
		Summary:        pm.description,
		SourceURL:      firstNonEmpty(resolve(base, pm.canonical), pageURL),
		WordCount:      words,
		ReadingTimeMin: ReadingTime(words),
	}

	return &Document{Meta: meta, Markdown: markdown, Text: text}, nil
}

// CountWords counts runs of letters, digits and underscores in text.
func CountWords(text string) int {
	return len(wordPattern.FindAllStringIndex(text, -1))
}

// ReadingTime estimates minutes to read words, never less than one.
func ReadingTime(words int) int {
	minutes := int(math.Round(float64(words) / wordsPerMinute))
	if minutes < 1 {
		return 1
	}
	return minutes
}

// resolve makes ref absolute against base. Unparseable references are
// returned as-is.
func resolve(base *url.URL, ref string) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil || base == nil {
		return ref
	}
	return base.ResolveReference(u).String()
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
