// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package note

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.yaml.in/yaml/v3"
)

// ErrNoFrontmatter is returned for files that do not open with a "---" block.
var ErrNoFrontmatter = errors.New("no frontmatter")

const fence = "---"

// Frontmatter is the metadata block of a rendered note.
type Frontmatter struct {
	Title       string   `yaml:"title"`
	Source      string   `yaml:"source"`
	Bookmark    string   `yaml:"bookmark,omitempty"`
	Author      string   `yaml:"author"`
	Published   string   `yaml:"published"`
	Created     string   `yaml:"created"`
	Description string   `yaml:"description"`
	Tags        []string `yaml:"tags"`
	Status      string   `yaml:"status,omitempty"`
}

// ParseFrontmatter reads the YAML block at the start of a note.
func ParseFrontmatter(r io.Reader) (*Frontmatter, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64<<10), 1<<20)

	if !sc.Scan() || strings.TrimRight(sc.Text(), " \r") != fence {
		return nil, ErrNoFrontmatter
	}

	var block strings.Builder
	closed := false
	for sc.Scan() {
		line := sc.Text()
		if strings.TrimRight(line, " \r") == fence {
			closed = true
			break
		}
		block.WriteString(line)
		block.WriteByte('\n')
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading note: %w", err)
	}
	if !closed {
		return nil, ErrNoFrontmatter
	}

	var fm Frontmatter
	if err := yaml.Unmarshal([]byte(block.String()), &fm); err != nil {
		return nil, fmt.Errorf("parsing frontmatter: %w", err)
	}
	return &fm, nil
}

// ReadFrontmatter parses the frontmatter of the note at path.
func ReadFrontmatter(path string) (*Frontmatter, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	fm, err := ParseFrontmatter(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return fm, nil
}

// IndexSources maps the source URL of every note under outDir to its path.
// Notes whose bookmark URL differs from the source are indexed under both.
// Files without readable frontmatter are ignored. A missing outDir yields
// an empty index.
func IndexSources(outDir string) (map[string]string, error) {
	index := make(map[string]string)
	matches, err := doublestar.Glob(os.DirFS(outDir), "**/*.md")
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return index, nil
		}
		return nil, fmt.Errorf("scanning %s: %w", outDir, err)
	}

	for _, rel := range matches {
		path := filepath.Join(outDir, filepath.FromSlash(rel))
		fm, err := ReadFrontmatter(path)
		if err != nil {
			continue
		}
		for _, u := range []string{fm.Source, fm.Bookmark} {
			if _, dup := index[u]; u != "" && !dup {
				index[u] = path
			}
		}
	}
	return index, nil
}
