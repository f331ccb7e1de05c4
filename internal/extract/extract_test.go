// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package extract

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"
)

const sampleArticle = `<!DOCTYPE html>
<html>
<head>
  <title>Fallback Title | Example Blog</title>
  <meta property="og:title" content="  Understanding Go Interfaces  ">
  <meta name="description" content="A tour of implicit interfaces.">
  <meta property="og:description" content="OG description loses to name=description.">
  <link rel="canonical" href="/posts/go-interfaces">
  <script type="application/ld+json">
  {"@context": "https://schema.org", "@type": "BlogPosting",
   "author": {"@type": "Person", "name": "Ada   Lovelace"},
   "datePublished": "2024-03-05T09:30:00Z"}
  </script>
</head>
<body>
<nav><a href="/">Home</a> <a href="/about">About</a></nav>
<article>
<h1>Understanding Go Interfaces</h1>
<p>Interfaces in Go are satisfied implicitly. A type implements an interface by implementing its methods, with no explicit declaration of intent required anywhere in the code.</p>
<p>This design decouples the definition of an interface from its implementations, letting packages define small interfaces describing exactly the behavior they consume.</p>
<p>The standard library leans on this heavily: io.Reader and io.Writer are implemented by files, network connections, buffers, compressors and many more types across the ecosystem.</p>
<p>Read the <a href="/posts/io">io package tour</a> for more examples of composition through small interfaces.</p>
</article>
<footer>Copyright Example Blog</footer>
</body>
</html>`

func TestParse(t *testing.T) {
	doc, err := Parse(sampleArticle, "https://blog.example/p?id=1")
	require.NoError(t, err)

	assert.Equal(t, "Understanding Go Interfaces", doc.Meta.Title)
	assert.Equal(t, "Ada Lovelace", doc.Meta.Author)
	assert.Equal(t, "2024-03-05", doc.Meta.PublishedDate)
	assert.Equal(t, "A tour of implicit interfaces.", doc.Meta.Summary)
	assert.Equal(t, "https://blog.example/posts/go-interfaces", doc.Meta.SourceURL)
	assert.Greater(t, doc.Meta.WordCount, 50)
	assert.Equal(t, 1, doc.Meta.ReadingTimeMin)
	assert.Empty(t, doc.Meta.Tags)

	assert.Contains(t, doc.Markdown, "Interfaces in Go are satisfied implicitly.")
	assert.Contains(t, doc.Markdown, "[io package tour](https://blog.example/posts/io)")
	assert.NotContains(t, doc.Markdown, "<p>")
	assert.Contains(t, doc.Text, "satisfied implicitly")
}

func TestParseMinimalPage(t *testing.T) {
	doc, err := Parse(`<html><body><p>Short.</p></body></html>`, "https://bare.example/x")
	require.NoError(t, err)

	assert.Equal(t, "https://bare.example/x", doc.Meta.SourceURL)
	assert.NotEmpty(t, doc.Meta.Title)
	assert.Empty(t, doc.Meta.Author)
	assert.Empty(t, doc.Meta.PublishedDate)
	assert.Equal(t, 1, doc.Meta.ReadingTimeMin)
}

func TestParseBadURL(t *testing.T) {
	_, err := Parse(sampleArticle, "://no-scheme")
	assert.Error(t, err)
}

func parseHTML(t *testing.T, s string) *html.Node {
	t.Helper()
	root, err := html.Parse(strings.NewReader(s))
	require.NoError(t, err)
	return root
}

func TestPageMetadata(t *testing.T) {
	tests := []struct {
		name string
		head string
		want pageMeta
	}{
		{
			name: "og url overrides canonical",
			head: `<link rel="Canonical" href="https://a.example/c"><meta property="og:url" content="https://a.example/og">`,
			want: pageMeta{canonical: "https://a.example/og"},
		},
		{
			name: "empty og url keeps canonical",
			head: `<link rel="canonical" href="https://a.example/c"><meta property="og:url" content="  ">`,
			want: pageMeta{canonical: "https://a.example/c"},
		},
		{
			name: "title element when no og title",
			head: `<title>  Plain title </title>`,
			want: pageMeta{title: "Plain title"},
		},
		{
			name: "title whitespace collapsed",
			head: "<title>Ferns\n   | Field\tGuide </title>",
			want: pageMeta{title: "Ferns | Field Guide"},
		},
		{
			name: "og title whitespace collapsed",
			head: "<meta property=\"og:title\" content=\"A\n  Field Guide\"><title>Other</title>",
			want: pageMeta{title: "A Field Guide"},
		},
		{
			name: "meta author and date fallbacks",
			head: `<meta name="author" content="Grace  Hopper"><meta name="date" content="2023-11-02">`,
			want: pageMeta{author: "Grace Hopper", published: "2023-11-02"},
		},
		{
			name: "article meta keys",
			head: `<meta property="article:author" content="Linus"><meta property="article:published_time" content="2022-01-09T10:00:00Z">`,
			want: pageMeta{author: "Linus", published: "2022-01-09T10:00:00Z"},
		},
		{
			name: "og description when name description missing",
			head: `<meta property="og:description" content="From OG">`,
			want: pageMeta{description: "From OG"},
		},
		{
			name: "json-ld wins over meta",
			head: `<meta name="author" content="Meta Author">
				<script type="application/ld+json">{"author": "LD Author", "datePublished": "2021-05-01"}</script>`,
			want: pageMeta{author: "LD Author", published: "2021-05-01"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			root := parseHTML(t, "<html><head>"+tt.head+"</head><body></body></html>")
			assert.Equal(t, tt.want, pageMetadata(root))
		})
	}
}

func TestJSONLDMetadata(t *testing.T) {
	tests := []struct {
		name       string
		scripts    []string
		wantAuthor string
		wantDate   string
	}{
		{
			name:       "author object",
			scripts:    []string{`{"author": {"name": "Ada"}, "datePublished": "2024-01-01"}`},
			wantAuthor: "Ada",
			wantDate:   "2024-01-01",
		},
		{
			name:       "array of objects with author list",
			scripts:    []string{`[{"@type": "WebSite"}, {"author": [{"name": "First"}, {"name": "Second"}]}]`},
			wantAuthor: "First",
		},
		{
			name:       "graph container",
			scripts:    []string{`{"@context": "https://schema.org", "@graph": [{"@type": "Organization"}, {"@type": "Article", "author": {"name": "Graph Author"}, "datePublished": "2020-02-02"}]}`},
			wantAuthor: "Graph Author",
			wantDate:   "2020-02-02",
		},
		{
			name:       "malformed block skipped",
			scripts:    []string{`{not json`, `{"author": {"name": "Second Block"}}`},
			wantAuthor: "Second Block",
		},
		{
			name:       "first value wins across blocks",
			scripts:    []string{`{"datePublished": "2019-09-09"}`, `{"author": {"name": "B"}, "datePublished": "2018-08-08"}`},
			wantAuthor: "B",
			wantDate:   "2019-09-09",
		},
		{
			name:    "author object without name",
			scripts: []string{`{"author": {"@type": "Person"}}`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var head strings.Builder
			for _, s := range tt.scripts {
				head.WriteString(`<script type="application/ld+json">` + s + `</script>`)
			}
			root := parseHTML(t, "<html><head>"+head.String()+"</head><body></body></html>")
			author, date := jsonLDMetadata(root)
			assert.Equal(t, tt.wantAuthor, author)
			assert.Equal(t, tt.wantDate, date)
		})
	}
}

func TestNormalizeDate(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-05T09:30:00Z", "2024-03-05"},
		{"2024-03-05", "2024-03-05"},
		{"March 5, 2024", "2024-03-05"},
		{"  ", ""},
		{"not a date", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDate(tt.in))
		})
	}
}

func TestReadingTime(t *testing.T) {
	tests := []struct {
		words int
		want  int
	}{
		{0, 1},
		{225, 1},
		{337, 1},
		{338, 2},
		{1000, 4},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ReadingTime(tt.words), "words=%d", tt.words)
	}
}

func TestCountWords(t *testing.T) {
	assert.Equal(t, 0, CountWords(""))
	assert.Equal(t, 4, CountWords("Hello, world! snake_case 42"))
	assert.Equal(t, 3, CountWords("café naïve façade"))
}

func TestToMarkdown(t *testing.T) {
	base, err := url.Parse("https://a.example/post")
	require.NoError(t, err)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "headings paragraphs links lists",
			in:   `<h2>Intro</h2><p>Hello <strong>world</strong> and <a href="/x">link</a>.</p><ul><li>one</li><li>two</li></ul>`,
			want: "## Intro\n\nHello **world** and [link](https://a.example/x).\n\n- one\n- two",
		},
		{
			name: "ordered list",
			in:   `<ol><li>first</li><li>second</li></ol>`,
			want: "1. first\n2. second",
		},
		{
			name: "nested list",
			in:   `<ul><li>outer<ul><li>inner</li></ul></li></ul>`,
			want: "- outer\n  - inner",
		},
		{
			name: "blockquote",
			in:   `<blockquote><p>quoted</p><p>more</p></blockquote>`,
			want: "> quoted\n>\n> more",
		},
		{
			name: "preformatted code",
			in:   "<pre><code>a := 1\nb := 2</code></pre>",
			want: "```\na := 1\nb := 2\n```",
		},
		{
			name: "inline code and emphasis",
			in:   `<p>Use <code>go test</code> <em>often</em>.</p>`,
			want: "Use `go test` *often*.",
		},
		{
			name: "images and scripts dropped",
			in:   `<p>x<img src="a.png" alt="pic"><script>var a = 1</script></p>`,
			want: "x",
		},
		{
			name: "fragment and javascript links keep text",
			in:   `<p><a href="javascript:void(0)">js</a> <a href="#top">top</a></p>`,
			want: "js top",
		},
		{
			name: "whitespace collapsed",
			in:   "<p>  lots   of\n\n   space  </p>",
			want: "lots of space",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToMarkdown(tt.in, base)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPlainText(t *testing.T) {
	root := parseHTML(t, `<html><head><title>T</title><style>p{}</style></head><body><nav>menu</nav><p>Visible   text</p><script>hidden()</script></body></html>`)
	assert.Equal(t, "Visible text", PlainText(root))
}
