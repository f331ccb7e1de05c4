// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// jsonLDMetadata scans every application/ld+json block for an author and a
// datePublished value. The first value found for each wins. Malformed
// blocks are ignored.
func jsonLDMetadata(root *html.Node) (author, published string) {
	for _, script := range selJSONLD.MatchAll(root) {
		var data any
		if err := json.Unmarshal([]byte(textOf(script)), &data); err != nil {
			continue
		}
		for _, obj := range jsonLDObjects(data) {
			if author == "" {
				author = jsonLDAuthor(obj["author"])
			}
			if published == "" {
				if s, ok := obj["datePublished"]; ok && s != nil {
					published = strings.TrimSpace(fmt.Sprint(s))
				}
			}
		}
		if author != "" && published != "" {
			return author, published
		}
	}
	return author, published
}

// jsonLDObjects flattens a JSON-LD value into its top-level objects,
// expanding arrays and @graph containers.
func jsonLDObjects(v any) []map[string]any {
	switch t := v.(type) {
	case []any:
		var out []map[string]any
		for _, item := range t {
			out = append(out, jsonLDObjects(item)...)
		}
		return out
	case map[string]any:
		out := []map[string]any{t}
		if graph, ok := t["@graph"]; ok {
			out = append(out, jsonLDObjects(graph)...)
		}
		return out
	}
	return nil
}

// jsonLDAuthor reads an author given as an object with a name, a list whose
// first element is such an object or a string, or a bare string.
func jsonLDAuthor(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case map[string]any:
		if name, ok := t["name"]; ok && name != nil {
			return strings.TrimSpace(fmt.Sprint(name))
		}
	case []any:
		if len(t) > 0 {
			return jsonLDAuthor(t[0])
		}
	}
	return ""
}
