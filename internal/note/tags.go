// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package note

import (
	"strings"

	"github.com/pdiddy/linknotes/internal/bookmarks"
)

// MergeTags combines tag lists into one lower-cased list without duplicates,
// keeping the order in which tags first appear.
func MergeTags(lists ...[]string) []string {
	var all []string
	for _, l := range lists {
		for _, t := range l {
			all = append(all, strings.ToLower(strings.TrimSpace(t)))
		}
	}
	return bookmarks.NormalizeTags(all)
}
