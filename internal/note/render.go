// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package note

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"
	"time"

	"github.com/pdiddy/linknotes/pkg/types"
)

// DefaultTemplate is the note layout used when no template file is given.
// Frontmatter values are emitted as JSON strings, which YAML reads as
// double-quoted scalars.
const DefaultTemplate = `---
title: {{ json .Meta.Title }}
source: {{ json .Meta.SourceURL }}
{{- if and .Meta.BookmarkURL (ne .Meta.BookmarkURL .Meta.SourceURL) }}
bookmark: {{ json .Meta.BookmarkURL }}
{{- end }}
author: {{ json .AuthorWikilinks }}
published: {{ json .Meta.PublishedDate }}
created: {{ json .Created }}
description: {{ json .Meta.Summary }}
tags:{{ if .Meta.Tags }} [{{ range $i, $t := .Meta.Tags }}{{ if $i }}, {{ end }}{{ json $t }}{{ end }}]{{ end }}
{{- if .Meta.Status }}
status: {{ json .Meta.Status }}
{{- end }}
---

# {{ .Meta.Title }}

> TL;DR
> {{ oneline .Meta.Summary }}

## Notes
{{ .Content }}

## Links
- {{ .Meta.SourceURL }}
`

var authorSeparators = regexp.MustCompile(`[;,]`)

// TemplateData is the value templates are executed with.
type TemplateData struct {
	Meta types.NoteMeta
	// AuthorWikilinks is the author list as Obsidian links: "[[A]], [[B]]".
	AuthorWikilinks string
	// Created is the note creation date, YYYY-MM-DD in UTC.
	Created string
	// Content is the Markdown body.
	Content string
}

// Renderer executes a note template.
type Renderer struct {
	tmpl *template.Template
	now  func() time.Time
}

// NewRenderer parses the template at path, or DefaultTemplate when path is
// empty.
func NewRenderer(path string) (*Renderer, error) {
	text := DefaultTemplate
	name := "default"
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading template: %w", err)
		}
		text = string(data)
		name = path
	}
	return ParseTemplate(name, text)
}

// ParseTemplate builds a Renderer from template text.
func ParseTemplate(name, text string) (*Renderer, error) {
	tmpl, err := template.New(name).Funcs(template.FuncMap{
		"json":    jsonString,
		"oneline": oneline,
	}).Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing template %s: %w", name, err)
	}
	return &Renderer{tmpl: tmpl, now: time.Now}, nil
}

// WithClock returns a copy of r that stamps notes with the time from now.
func (r *Renderer) WithClock(now func() time.Time) *Renderer {
	c := *r
	c.now = now
	return &c
}

// Render produces the note text for meta and its Markdown content.
func (r *Renderer) Render(meta types.NoteMeta, content string) (string, error) {
	data := TemplateData{
		Meta:            meta,
		AuthorWikilinks: Wikilinks(meta.Author),
		Created:         r.now().UTC().Format(time.DateOnly),
		Content:         content,
	}
	var buf bytes.Buffer
	if err := r.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering note: %w", err)
	}
	return buf.String(), nil
}

// Wikilinks turns a comma or semicolon separated author string into
// Obsidian wikilinks.
func Wikilinks(author string) string {
	var links []string
	for _, part := range authorSeparators.Split(author, -1) {
		if p := strings.TrimSpace(part); p != "" {
			links = append(links, "[["+p+"]]")
		}
	}
	return strings.Join(links, ", ")
}

// jsonString encodes v as JSON without HTML escaping.
func jsonString(v any) (string, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return "", err
	}
	return strings.TrimSuffix(buf.String(), "\n"), nil
}

// oneline collapses whitespace so a value fits on a single Markdown line.
func oneline(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
