// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package note renders Obsidian-ready Markdown notes with YAML frontmatter
// and decides where they live in the vault. Notes are filed under
// YYYY/MM folders by publication date, named by a slug of their title.
package note
