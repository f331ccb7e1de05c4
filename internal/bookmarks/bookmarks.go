// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package bookmarks reads the input CSV of URLs to convert into notes.
// The delimiter is detected from the file contents, header names are matched
// case-insensitively, and the tags column accepts either a JSON array or a
// delimited list.
package bookmarks

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"

	"github.com/pdiddy/linknotes/pkg/types"
)

// ErrNoURLColumn is returned when the CSV header has no "url" column.
var ErrNoURLColumn = errors.New("CSV must have a 'url' column")

// candidateDelimiters are tried in order; earlier entries win ties.
var candidateDelimiters = []rune{',', ';', '\t', '|', ':'}

// wholeLine is the delimiter used for single-column files. It never occurs
// in practice, so each line is read as one field and unquoted commas in URLs
// survive.
const wholeLine = '\x1f'

// sniffRecords is how many records (header included) delimiter detection reads.
const sniffRecords = 6

// tagSeparators splits a delimited tags cell.
var tagSeparators = regexp.MustCompile(`[,;|]`)

// ReadFile reads bookmarks from the CSV file at path.
func ReadFile(path string) ([]types.Bookmark, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening CSV: %w", err)
	}
	defer f.Close()
	return Read(f)
}

// Read parses bookmarks from CSV data. Rows with an empty URL are skipped.
func Read(r io.Reader) ([]types.Bookmark, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	raw := strings.TrimPrefix(string(data), "\ufeff")

	cr := newReader(raw, DetectDelimiter(raw))
	header, err := cr.Read()
	if err == io.EOF {
		return nil, ErrNoURLColumn
	}
	if err != nil {
		return nil, fmt.Errorf("reading CSV header: %w", err)
	}
	if len(header) == 1 {
		cr = newReader(raw, wholeLine)
		if header, err = cr.Read(); err != nil {
			return nil, fmt.Errorf("reading CSV header: %w", err)
		}
	}

	cols := columnIndex(header)
	urlCol, ok := cols["url"]
	if !ok {
		return nil, ErrNoURLColumn
	}

	var items []types.Bookmark
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading CSV: %w", err)
		}
		line, _ := cr.FieldPos(0)

		u := strings.TrimSpace(cell(rec, urlCol))
		if u == "" {
			continue
		}
		items = append(items, types.Bookmark{
			URL:         u,
			Title:       strings.TrimSpace(cellAt(rec, cols, "title")),
			Description: strings.TrimSpace(cellAt(rec, cols, "description")),
			Tags:        NormalizeTags(ParseTags(cellAt(rec, cols, "tags"))),
			Line:        line,
		})
	}
	return items, nil
}

// DetectDelimiter picks the delimiter that splits the header into the most
// columns while keeping the first data rows at the same width. It returns ','
// when no candidate produces more than one column.
func DetectDelimiter(raw string) rune {
	best, bestCols := ',', 1
	for _, d := range candidateDelimiters {
		cols, ok := consistentColumns(raw, d)
		if ok && cols > bestCols {
			best, bestCols = d, cols
		}
	}
	return best
}

// consistentColumns reports the header width for delimiter d and whether
// every sampled record has that width.
func consistentColumns(raw string, d rune) (int, bool) {
	cr := newReader(raw, d)
	width := -1
	for i := 0; i < sniffRecords; i++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return 0, false
		}
		if width == -1 {
			width = len(rec)
			continue
		}
		if len(rec) != width {
			return 0, false
		}
	}
	return width, width > 0
}

// ParseTags splits a tags cell. A JSON array is decoded element by element;
// anything else is split on commas, semicolons or pipes.
func ParseTags(cell string) []string {
	raw := strings.TrimSpace(cell)
	if raw == "" {
		return nil
	}

	var tags []string
	if strings.HasPrefix(raw, "[") && strings.HasSuffix(raw, "]") {
		var arr []any
		if err := json.Unmarshal([]byte(raw), &arr); err == nil {
			for _, v := range arr {
				if s := strings.TrimSpace(fmt.Sprint(v)); s != "" {
					tags = append(tags, s)
				}
			}
		}
	}
	if len(tags) > 0 {
		return tags
	}

	for _, t := range tagSeparators.Split(raw, -1) {
		if t = strings.TrimSpace(t); t != "" {
			tags = append(tags, t)
		}
	}
	return tags
}

// NormalizeTags trims tags, drops empty ones, and removes duplicates while
// keeping first-seen order.
func NormalizeTags(tags []string) []string {
	var out []string
	seen := make(map[string]bool, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" || seen[t] {
			continue
		}
		seen[t] = true
		out = append(out, t)
	}
	return out
}

func newReader(raw string, d rune) *csv.Reader {
	cr := csv.NewReader(strings.NewReader(raw))
	cr.Comma = d
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	return cr
}

// columnIndex maps lower-cased header names to their column positions. The
// first occurrence of a repeated name wins.
func columnIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, dup := cols[key]; !dup {
			cols[key] = i
		}
	}
	return cols
}

func cellAt(rec []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok {
		return ""
	}
	return cell(rec, i)
}

func cell(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}
