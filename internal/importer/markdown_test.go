package importer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anasaboreeda/anascode/internal/importer"
)

func TestHTMLToMarkdown(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{
			name: "headings and paragraphs",
			html: `<h3>Intro</h3><p>Hello   <strong>bold</strong> and <em>soft</em>.</p>`,
			want: "### Intro\n\nHello **bold** and *soft*.\n",
		},
		{
			name: "links images and inline code",
			html: `<p>See <a href="https://go.dev">Go</a> and <code>go test</code>.</p><figure><img src="https://cdn/x.png" alt="diagram"><figcaption>The flow</figcaption></figure>`,
			want: "See [Go](https://go.dev) and `go test`.\n\n![diagram](https://cdn/x.png)\n\n*The flow*\n",
		},
		{
			name: "lists",
			html: `<ul><li>one</li><li>two<ol><li>a</li><li>b</li></ol></li></ul>`,
			want: "- one\n- two\n  1. a\n  2. b\n",
		},
		{
			name: "fenced code with language and br lines",
			html: `<pre data-code-block-lang="java">int a = 1;<br>if (a &gt; 0) {}</pre>`,
			want: "```java\nint a = 1;\nif (a > 0) {}\n```\n",
		},
		{
			name: "code language on inner code element",
			html: `<pre><code data-code-block-lang="go">fmt.Println("hi")
</code></pre>`,
			want: "```go\nfmt.Println(\"hi\")\n```\n",
		},
		{
			name: "blockquote and rule",
			html: `<blockquote><p>first</p><p>second</p></blockquote><hr><p>after</p>`,
			want: "> first\n>\n> second\n\n---\n\nafter\n",
		},
		{
			name: "loose inline content in containers",
			html: `<div>text <b>in</b> a div<div><p>nested</p></div></div>`,
			want: "text **in** a div\n\nnested\n",
		},
		{
			name: "scripts are dropped",
			html: `<p>keep</p><script>alert(1)</script>`,
			want: "keep\n",
		},
		{
			name: "empty",
			html: ``,
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := importer.HTMLToMarkdown(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEscapeMDX(t *testing.T) {
	in := "Use {braces} here\n```js\nconst o = {a: 1};\n```\nand {here}"
	want := "Use \\{braces\\} here\n```js\nconst o = {a: 1};\n```\nand \\{here\\}"
	assert.Equal(t, want, importer.EscapeMDX(in))
}
