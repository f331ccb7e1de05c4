// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/andybalholm/cascadia"
	"github.com/araddon/dateparse"
	"golang.org/x/net/html"
)

var (
	selLink   = cascadia.MustCompile("link[rel]")
	selMeta   = cascadia.MustCompile("meta")
	selTitle  = cascadia.MustCompile("title")
	selJSONLD = cascadia.MustCompile(`script[type="application/ld+json"]`)
)

var spaceRun = regexp.MustCompile(`\s+`)

// metaKey identifies a <meta> element by attribute name and value.
type metaKey struct {
	attr  string
	value string
}

var (
	authorKeys      = []metaKey{{"name", "author"}, {"property", "article:author"}}
	publishedKeys   = []metaKey{{"property", "article:published_time"}, {"name", "date"}}
	descriptionKeys = []metaKey{{"name", "description"}, {"property", "og:description"}}
)

// pageMeta is the raw metadata found in a page before normalization.
type pageMeta struct {
	canonical   string
	title       string
	author      string
	published   string
	description string
}

// pageMetadata collects metadata from the document head. JSON-LD author and
// date take precedence over <meta> elements.
func pageMetadata(root *html.Node) pageMeta {
	var pm pageMeta

	for _, n := range selLink.MatchAll(root) {
		if strings.Contains(strings.ToLower(attr(n, "rel")), "canonical") {
			if href := strings.TrimSpace(attr(n, "href")); href != "" {
				pm.canonical = href
				break
			}
		}
	}
	if og := metaContent(root, metaKey{"property", "og:url"}); og != "" {
		pm.canonical = og
	}

	pm.title = collapseSpace(metaContent(root, metaKey{"property", "og:title"}))
	if pm.title == "" {
		if t := selTitle.MatchFirst(root); t != nil {
			pm.title = collapseSpace(textOf(t))
		}
	}

	pm.author, pm.published = jsonLDMetadata(root)
	if pm.author == "" {
		pm.author = metaContent(root, authorKeys...)
	}
	if pm.published == "" {
		pm.published = metaContent(root, publishedKeys...)
	}
	pm.author = CleanAuthor(pm.author)

	pm.description = metaContent(root, descriptionKeys...)
	return pm
}

// metaContent returns the trimmed content of the first <meta> element that
// matches a key, trying keys in order. Attribute values match
// case-insensitively.
func metaContent(root *html.Node, keys ...metaKey) string {
	metas := selMeta.MatchAll(root)
	for _, k := range keys {
		for _, n := range metas {
			if !strings.EqualFold(attr(n, k.attr), k.value) {
				continue
			}
			if c := strings.TrimSpace(attr(n, "content")); c != "" {
				return c
			}
		}
	}
	return ""
}

// CleanAuthor collapses whitespace in an author string.
func CleanAuthor(author string) string {
	return collapseSpace(author)
}

// collapseSpace trims s and replaces each whitespace run with one space.
func collapseSpace(s string) string {
	return strings.TrimSpace(spaceRun.ReplaceAllString(s, " "))
}

// NormalizeDate parses a loosely formatted date and returns it as
// YYYY-MM-DD, or "" when it cannot be parsed.
func NormalizeDate(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	t, err := dateparse.ParseAny(raw)
	if err != nil {
		return ""
	}
	return t.Format(time.DateOnly)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if strings.EqualFold(a.Key, key) {
			return a.Val
		}
	}
	return ""
}

// textOf concatenates the text nodes under n.
func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(node *html.Node) {
		if node.Type == html.TextNode {
			sb.WriteString(node.Data)
		}
		for c := node.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return sb.String()
}
