// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package bookmarks

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/linknotes/pkg/types"
)

func TestDetectDelimiter(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want rune
	}{
		{"comma", "url,tags\nhttps://a.example/x,go\n", ','},
		{"semicolon with commas in tags", "url;tags\nhttps://a.example/x;go,web\n", ';'},
		{"tab", "url\ttitle\nhttps://a.example/x\tA title\n", '\t'},
		{"pipe", "url|tags\nhttps://a.example/x|go\n", '|'},
		{"single column defaults to comma", "url\nhttps://a.example/x\n", ','},
		{"empty input", "", ','},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectDelimiter(tt.raw)
			assert.Equal(t, string(tt.want), string(got))
		})
	}
}

func TestParseTags(t *testing.T) {
	tests := []struct {
		name string
		cell string
		want []string
	}{
		{"empty", "", nil},
		{"blank", "   ", nil},
		{"comma list", "go, web ,cli", []string{"go", "web", "cli"}},
		{"mixed separators", "go;web|cli", []string{"go", "web", "cli"}},
		{"json array", `["go", "web"]`, []string{"go", "web"}},
		{"json array with numbers", `["go", 2024]`, []string{"go", "2024"}},
		{"broken json falls back to split", `[go, web]`, []string{"[go", "web]"}},
		{"empty json array falls back to split", `[]`, []string{"[]"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTags(tt.cell)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseTags(%q) mismatch (-want +got):\n%s", tt.cell, diff)
			}
		})
	}
}

func TestNormalizeTags(t *testing.T) {
	got := NormalizeTags([]string{" go", "web", "", "go", "Web", "web "})
	if diff := cmp.Diff([]string{"go", "web", "Web"}, got); diff != "" {
		t.Errorf("NormalizeTags mismatch (-want +got):\n%s", diff)
	}
	assert.Nil(t, NormalizeTags(nil))
}

func TestRead(t *testing.T) {
	raw := "URL,Tags,Title,Description\n" +
		"https://a.example/one,\"go, web\",First,The first page\n" +
		",ignored,No URL,\n" +
		"  https://a.example/two  ,\"[\"\"cli\"\", \"\"cli\"\"]\",,\n" +
		"https://a.example/three,,,\n"

	got, err := Read(strings.NewReader(raw))
	require.NoError(t, err)

	want := []types.Bookmark{
		{URL: "https://a.example/one", Title: "First", Description: "The first page", Tags: []string{"go", "web"}, Line: 2},
		{URL: "https://a.example/two", Tags: []string{"cli"}, Line: 4},
		{URL: "https://a.example/three", Line: 5},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Read mismatch (-want +got):\n%s", diff)
	}
}

func TestReadSemicolon(t *testing.T) {
	raw := "title;url;tags\nA page;https://a.example/x;go,web\n"

	got, err := Read(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://a.example/x", got[0].URL)
	assert.Equal(t, "A page", got[0].Title)
	assert.Equal(t, []string{"go", "web"}, got[0].Tags)
}

func TestReadStripsBOM(t *testing.T) {
	raw := "\ufeffurl\nhttps://a.example/x\n"

	got, err := Read(strings.NewReader(raw))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "https://a.example/x", got[0].URL)
}

func TestReadSingleColumnKeepsCommas(t *testing.T) {
	raw := "url\nhttps://a.example/?a=1,2\n\"https://a.example/?b=3,4\"\nhttps://a.example/plain\n"

	got, err := Read(strings.NewReader(raw))
	require.NoError(t, err)
	want := []types.Bookmark{
		{URL: "https://a.example/?a=1,2", Line: 2},
		{URL: "https://a.example/?b=3,4", Line: 3},
		{URL: "https://a.example/plain", Line: 4},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Read mismatch (-want +got):\n%s", diff)
	}
}

func TestReadMissingURLColumn(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"no url header", "link,tags\nhttps://a.example/x,go\n"},
		{"empty file", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.raw))
			assert.ErrorIs(t, err, ErrNoURLColumn)
		})
	}
}

func TestReadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bookmarks.csv")
	require.NoError(t, os.WriteFile(path, []byte("url\nhttps://a.example/x\nhttps://a.example/y\n"), 0o644))

	got, err := ReadFile(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = ReadFile(filepath.Join(t.TempDir(), "missing.csv"))
	assert.Error(t, err)
}
