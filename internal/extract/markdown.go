// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"golang.org/x/net/html"
)

var (
	multiNewlinePattern = regexp.MustCompile(`\n{3,}`)
	blankLinesPattern   = regexp.MustCompile(`\n{2,}`)
	trailingSpace       = regexp.MustCompile(`[ \t]+\n`)
)

// skipped elements contribute nothing to the Markdown output. Images are
// dropped along with page chrome.
var skipped = map[string]bool{
	"head": true, "title": true, "script": true, "style": true, "noscript": true,
	"iframe": true, "svg": true, "nav": true, "footer": true, "header": true,
	"form": true, "button": true, "img": true, "picture": true, "video": true,
	"audio": true, "canvas": true, "template": true,
}

// ToMarkdown converts an HTML fragment to Markdown. Relative links are
// resolved against base. Lines are not wrapped.
func ToMarkdown(fragment string, base *url.URL) (string, error) {
	root, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", err
	}
	return renderMarkdown(root, base), nil
}

func renderMarkdown(root *html.Node, base *url.URL) string {
	c := &mdConverter{base: base}
	return cleanMarkdown(c.node(root))
}

// PlainText returns the visible text of a document with skipped elements
// removed and whitespace collapsed.
func PlainText(root *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skipped[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
			sb.WriteString(" ")
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return strings.TrimSpace(spaceRun.ReplaceAllString(sb.String(), " "))
}

type mdConverter struct {
	base *url.URL
	pre  int
}

func (c *mdConverter) children(n *html.Node) string {
	var sb strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		sb.WriteString(c.node(ch))
	}
	return sb.String()
}

func (c *mdConverter) node(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		if c.pre > 0 {
			return n.Data
		}
		return spaceRun.ReplaceAllString(n.Data, " ")
	case html.DocumentNode:
		return c.children(n)
	case html.ElementNode:
	default:
		return ""
	}

	if skipped[n.Data] {
		return ""
	}

	switch n.Data {
	case "h1", "h2", "h3", "h4", "h5", "h6":
		text := strings.TrimSpace(c.children(n))
		if text == "" {
			return ""
		}
		level := int(n.Data[1] - '0')
		return "\n\n" + strings.Repeat("#", level) + " " + text + "\n\n"
	case "p", "div", "section", "article", "main", "aside", "figure", "figcaption", "table", "dl":
		return "\n\n" + strings.TrimSpace(c.children(n)) + "\n\n"
	case "br":
		return "\n"
	case "hr":
		return "\n\n---\n\n"
	case "strong", "b":
		return wrapInline("**", c.children(n))
	case "em", "i":
		return wrapInline("*", c.children(n))
	case "del", "s", "strike":
		return wrapInline("~~", c.children(n))
	case "code":
		if c.pre > 0 {
			return c.children(n)
		}
		return wrapInline("`", c.children(n))
	case "pre":
		c.pre++
		body := c.children(n)
		c.pre--
		return "\n\n```\n" + strings.Trim(body, "\n") + "\n```\n\n"
	case "a":
		return c.link(n)
	case "ul", "ol":
		return c.list(n)
	case "li":
		return "\n- " + strings.TrimSpace(c.children(n)) + "\n"
	case "blockquote":
		return "\n\n" + prefixLines(strings.TrimSpace(cleanMarkdown(c.children(n))), "> ") + "\n\n"
	case "tr", "dt", "dd":
		return "\n" + strings.TrimSpace(c.children(n)) + "\n"
	case "td", "th":
		return strings.TrimSpace(c.children(n)) + " "
	}
	return c.children(n)
}

func (c *mdConverter) link(n *html.Node) string {
	text := strings.TrimSpace(c.children(n))
	href := strings.TrimSpace(attr(n, "href"))
	if text == "" {
		return ""
	}
	lower := strings.ToLower(href)
	if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(lower, "javascript:") {
		return text
	}
	return "[" + text + "](" + resolve(c.base, href) + ")"
}

func (c *mdConverter) list(n *html.Node) string {
	ordered := n.Data == "ol"
	var sb strings.Builder
	i := 0
	for li := n.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.Data != "li" {
			continue
		}
		i++
		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", i)
		}
		body := strings.TrimSpace(c.children(li))
		body = blankLinesPattern.ReplaceAllString(trailingSpace.ReplaceAllString(body, "\n"), "\n")
		indent := strings.Repeat(" ", len(marker))
		sb.WriteString(marker + strings.ReplaceAll(body, "\n", "\n"+indent) + "\n")
	}
	if i == 0 {
		return ""
	}
	return "\n\n" + sb.String() + "\n"
}

// wrapInline surrounds trimmed inline content with a Markdown marker.
func wrapInline(marker, content string) string {
	t := strings.TrimSpace(content)
	if t == "" {
		return ""
	}
	return marker + t + marker
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = strings.TrimSpace(prefix)
			continue
		}
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}

// cleanMarkdown trims trailing whitespace on each line and collapses runs
// of blank lines.
func cleanMarkdown(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t")
		if strings.TrimSpace(lines[i]) == "" {
			lines[i] = ""
		}
	}
	s = strings.Join(lines, "\n")
	s = multiNewlinePattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
