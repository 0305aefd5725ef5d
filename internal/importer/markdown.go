package importer

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const (
	codeFence     = "```"
	codeLangAttr  = "data-code-block-lang"
	hardBreak     = "  \n"
	maxHeadingLvl = 6
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// ToMarkdown converts the contents of sel to Markdown: headings, paragraphs,
// emphasis, links, images, lists, block quotes and fenced code blocks.
// Unknown elements contribute their children.
func ToMarkdown(sel *goquery.Selection) string {
	var c converter
	for _, n := range sel.Nodes {
		c.blocks(n)
	}
	return c.String()
}

// HTMLToMarkdown parses an HTML fragment and converts it.
func HTMLToMarkdown(fragment string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parsing html: %w", err)
	}
	return ToMarkdown(doc.Find("body")), nil
}

// EscapeMDX escapes curly braces outside fenced code blocks so the text is
// not read as JSX expressions.
func EscapeMDX(md string) string {
	lines := strings.Split(md, "\n")
	inCode := false
	for i, line := range lines {
		if strings.HasPrefix(strings.TrimSpace(line), codeFence) {
			inCode = !inCode
			continue
		}
		if inCode {
			continue
		}
		line = strings.ReplaceAll(line, "{", `\{`)
		lines[i] = strings.ReplaceAll(line, "}", `\}`)
	}
	return strings.Join(lines, "\n")
}

type converter struct {
	b strings.Builder
}

func (c *converter) String() string {
	if c.b.Len() == 0 {
		return ""
	}
	return c.b.String() + "\n"
}

// para appends a block separated from the previous one by a blank line.
func (c *converter) para(s string) {
	if strings.TrimSpace(s) == "" {
		return
	}
	if c.b.Len() > 0 {
		c.b.WriteString("\n\n")
	}
	c.b.WriteString(s)
}

// blocks renders the children of n. Consecutive inline children are joined
// into one paragraph.
func (c *converter) blocks(n *html.Node) {
	var run strings.Builder
	flush := func() {
		c.para(strings.TrimSpace(run.String()))
		run.Reset()
	}

	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if isInline(ch) {
			run.WriteString(inlineNode(ch))
			continue
		}
		flush()
		c.block(ch)
	}
	flush()
}

func (c *converter) block(n *html.Node) {
	if n.Type != html.ElementNode {
		return
	}

	switch n.DataAtom {
	case atom.H1, atom.H2, atom.H3, atom.H4, atom.H5, atom.H6:
		level := int(n.Data[1] - '0')
		c.para(strings.Repeat("#", min(level, maxHeadingLvl)) + " " + inline(n))
	case atom.P:
		c.para(inline(n))
	case atom.Pre:
		c.para(codeBlock(n))
	case atom.Ul, atom.Ol:
		c.para(strings.Join(listLines(n, 0), "\n"))
	case atom.Blockquote:
		var inner converter
		inner.blocks(n)
		c.para(quote(strings.TrimSpace(inner.b.String())))
	case atom.Hr:
		c.para("---")
	case atom.Figcaption:
		if text := inline(n); text != "" {
			c.para("*" + text + "*")
		}
	case atom.Script, atom.Style, atom.Noscript, atom.Head:
		return
	default:
		c.blocks(n)
	}
}

func isInline(n *html.Node) bool {
	switch n.Type {
	case html.TextNode:
		return true
	case html.ElementNode:
		switch n.DataAtom {
		case atom.A, atom.Abbr, atom.B, atom.Br, atom.Code, atom.Em, atom.I, atom.Img,
			atom.Kbd, atom.Mark, atom.S, atom.Small, atom.Span, atom.Strong, atom.Sub,
			atom.Sup, atom.U, atom.Del:
			return true
		}
	}
	return false
}

// inline renders the children of n as a single trimmed line of Markdown.
func inline(n *html.Node) string {
	var b strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		b.WriteString(inlineNode(ch))
	}
	return strings.TrimSpace(b.String())
}

func inlineNode(n *html.Node) string {
	switch n.Type {
	case html.TextNode:
		return whitespaceRun.ReplaceAllString(n.Data, " ")
	case html.ElementNode:
	default:
		return ""
	}

	switch n.DataAtom {
	case atom.Strong, atom.B:
		return wrap("**", n)
	case atom.Em, atom.I:
		return wrap("*", n)
	case atom.Del, atom.S:
		return wrap("~~", n)
	case atom.Code:
		text := textContent(n)
		if text == "" {
			return ""
		}
		return "`" + text + "`"
	case atom.Br:
		return hardBreak
	case atom.Img:
		return image(n)
	case atom.A:
		text := inline(n)
		href := attr(n, "href")
		if href == "" || text == "" {
			return text
		}
		return "[" + text + "](" + href + ")"
	case atom.Script, atom.Style:
		return ""
	default:
		return inline(n)
	}
}

// wrap surrounds the rendered children with marker, keeping the outer
// whitespace outside the markers.
func wrap(marker string, n *html.Node) string {
	var b strings.Builder
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		b.WriteString(inlineNode(ch))
	}
	raw := b.String()
	text := strings.TrimSpace(raw)
	if text == "" {
		return raw
	}
	lead := raw[:len(raw)-len(strings.TrimLeft(raw, " "))]
	trail := raw[len(strings.TrimRight(raw, " ")):]
	return lead + marker + text + marker + trail
}

func image(n *html.Node) string {
	src := attr(n, "src")
	if src == "" {
		src = attr(n, "data-src")
	}
	if src == "" {
		return ""
	}
	return "![" + attr(n, "alt") + "](" + src + ")"
}

func codeBlock(pre *html.Node) string {
	lang := attr(pre, codeLangAttr)
	if lang == "" {
		if code := firstElement(pre, atom.Code); code != nil {
			lang = attr(code, codeLangAttr)
		}
	}

	code := strings.TrimRight(preText(pre), "\n")
	return codeFence + lang + "\n" + code + "\n" + codeFence
}

// preText is the literal text of a pre block with <br> as newlines.
func preText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			switch {
			case ch.Type == html.TextNode:
				b.WriteString(ch.Data)
			case ch.Type == html.ElementNode && ch.DataAtom == atom.Br:
				b.WriteByte('\n')
			default:
				walk(ch)
			}
		}
	}
	walk(n)
	return b.String()
}

func listLines(list *html.Node, depth int) []string {
	ordered := list.DataAtom == atom.Ol
	indent := strings.Repeat("  ", depth)

	var lines []string
	index := 0
	for li := list.FirstChild; li != nil; li = li.NextSibling {
		if li.Type != html.ElementNode || li.DataAtom != atom.Li {
			continue
		}
		index++

		marker := "- "
		if ordered {
			marker = fmt.Sprintf("%d. ", index)
		}

		var text strings.Builder
		var nested []string
		for ch := li.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type == html.ElementNode && (ch.DataAtom == atom.Ul || ch.DataAtom == atom.Ol) {
				nested = append(nested, listLines(ch, depth+1)...)
				continue
			}
			text.WriteString(inlineNode(ch))
		}

		lines = append(lines, indent+marker+strings.TrimSpace(text.String()))
		lines = append(lines, nested...)
	}
	return lines
}

func quote(s string) string {
	if s == "" {
		return ""
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if line == "" {
			lines[i] = ">"
			continue
		}
		lines[i] = "> " + line
	}
	return strings.Join(lines, "\n")
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func firstElement(n *html.Node, a atom.Atom) *html.Node {
	for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
		if ch.Type == html.ElementNode && ch.DataAtom == a {
			return ch
		}
		if found := firstElement(ch, a); found != nil {
			return found
		}
	}
	return nil
}

func textContent(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		for ch := n.FirstChild; ch != nil; ch = ch.NextSibling {
			if ch.Type == html.TextNode {
				b.WriteString(ch.Data)
				continue
			}
			walk(ch)
		}
	}
	walk(n)
	return b.String()
}
