// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package note

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/linknotes/pkg/types"
)

const (
	// MaxTitleLength is the number of title runes used for the slug.
	MaxTitleLength = 100
	// MaxFilenameLength caps the slug length in bytes.
	MaxFilenameLength = 200

	defaultSlug = "note"
)

// OutputPath returns a free path for a note under outDir/YYYY/MM/, creating
// the folder. The folder date is the published date, or now when the note
// has none. Collisions get a numeric suffix: slug-2.md, slug-3.md, ...
func OutputPath(outDir string, meta types.NoteMeta, now time.Time) (string, error) {
	date := now
	if meta.PublishedDate != "" {
		if t, err := time.Parse(time.DateOnly, meta.PublishedDate); err == nil {
			date = t
		}
	}

	folder := filepath.Join(outDir, date.Format("2006"), date.Format("01"))
	if err := os.MkdirAll(folder, 0o755); err != nil {
		return "", fmt.Errorf("creating directory %s: %w", folder, err)
	}

	base := FileSlug(meta.Title)
	candidate := filepath.Join(folder, base+".md")
	for i := 2; exists(candidate); i++ {
		candidate = filepath.Join(folder, fmt.Sprintf("%s-%d.md", base, i))
	}
	return candidate, nil
}

// FileSlug returns the filename stem for a note title.
func FileSlug(title string) string {
	title = truncateRunes(title, MaxTitleLength)
	base := Slugify(title)
	if len(base) > MaxFilenameLength {
		base = strings.TrimRight(base[:MaxFilenameLength], "-")
	}
	if base == "" {
		return defaultSlug
	}
	return base
}

// Write stores content at path through a temporary file in the same
// directory, so a partially written note never appears in the vault.
func Write(path, content string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".note-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	_, writeErr := tmp.WriteString(content)
	if writeErr == nil {
		writeErr = tmp.Chmod(0o644)
	}
	closeErr := tmp.Close()
	if writeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("writing note: %w", writeErr)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
