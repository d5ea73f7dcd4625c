package html

import (
	"fmt"
	"html"
	"io"
	"strconv"
	"strings"

	"tolv.systems/chatmark"
)

// Render writes nodes to w as an HTML fragment. The fragment carries no
// document shell; see RenderDocument for standalone output.
func Render(w io.Writer, nodes []chatmark.ContentNode) error {
	if w == nil {
		return fmt.Errorf("html render: writer is nil")
	}
	var b strings.Builder
	appendNodes(&b, nodes)
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("html render: write: %w", err)
	}
	return nil
}

// RenderString returns the HTML fragment for nodes.
func RenderString(nodes []chatmark.ContentNode) string {
	var b strings.Builder
	appendNodes(&b, nodes)
	return b.String()
}

// RenderDocument writes nodes wrapped in a minimal standalone HTML page
// with an embedded stylesheet. An empty title falls back to "chatmark".
func RenderDocument(w io.Writer, title string, nodes []chatmark.ContentNode) error {
	if w == nil {
		return fmt.Errorf("html render: writer is nil")
	}
	if title == "" {
		title = "chatmark"
	}
	var b strings.Builder
	b.WriteString("<!doctype html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	b.WriteString("<meta name=\"viewport\" content=\"width=device-width, initial-scale=1\">\n")
	b.WriteString("<title>")
	b.WriteString(html.EscapeString(title))
	b.WriteString("</title>\n<style>\n")
	b.WriteString(documentStyle)
	b.WriteString("</style>\n</head>\n<body>\n")
	appendNodes(&b, nodes)
	b.WriteString("</body>\n</html>\n")
	if _, err := io.WriteString(w, b.String()); err != nil {
		return fmt.Errorf("html render: write: %w", err)
	}
	return nil
}

// documentStyle covers the indent classes emitted by the fragment up to
// four levels deep; deeper nesting renders without the extra margin.
const documentStyle = `body { margin: 2rem auto; max-width: 42rem; padding: 0 1rem; font: 16px/1.5 system-ui, sans-serif; }
h3 { margin: 1.5rem 0 0.5rem; }
h4 { margin: 1.25rem 0 0.5rem; color: #444; }
ul, ol { margin: 0.5rem 0; }
.indent-1 { margin-left: 1.5rem; }
.indent-2 { margin-left: 3rem; }
.indent-3 { margin-left: 4.5rem; }
.indent-4 { margin-left: 6rem; }
`

func appendNodes(b *strings.Builder, nodes []chatmark.ContentNode) {
	for _, node := range nodes {
		switch n := node.(type) {
		case chatmark.Heading:
			tag := "h3"
			if n.Level == chatmark.LevelMajor {
				tag = "h4"
			}
			b.WriteString("<")
			b.WriteString(tag)
			b.WriteString(">")
			appendSpans(b, n.Spans)
			b.WriteString("</")
			b.WriteString(tag)
			b.WriteString(">\n")
		case chatmark.Paragraph:
			b.WriteString("<p")
			appendIndentClass(b, n.Indent)
			b.WriteString(">")
			appendSpans(b, n.Spans)
			b.WriteString("</p>\n")
		case chatmark.BulletList:
			b.WriteString("<ul>\n")
			for _, item := range n.Items {
				b.WriteString("  <li")
				appendIndentClass(b, item.Indent)
				b.WriteString(">")
				appendSpans(b, item.Spans)
				b.WriteString("</li>\n")
			}
			b.WriteString("</ul>\n")
		case chatmark.NumberedList:
			b.WriteString("<ol")
			if n.Start != 1 {
				b.WriteString(` start="`)
				b.WriteString(strconv.Itoa(n.Start))
				b.WriteString(`"`)
			}
			b.WriteString(">\n")
			// The browser counts up from start on its own; a value
			// attribute is only needed where the literal numbering
			// breaks that sequence.
			expected := n.Start
			for _, item := range n.Items {
				b.WriteString("  <li")
				appendIndentClass(b, item.Indent)
				if item.Number != expected {
					b.WriteString(` value="`)
					b.WriteString(strconv.Itoa(item.Number))
					b.WriteString(`"`)
					expected = item.Number
				}
				expected++
				b.WriteString(">")
				appendSpans(b, item.Spans)
				b.WriteString("</li>\n")
			}
			b.WriteString("</ol>\n")
		}
	}
}

func appendSpans(b *strings.Builder, spans []chatmark.InlineSpan) {
	for _, span := range spans {
		switch s := span.(type) {
		case chatmark.PlainText:
			b.WriteString(html.EscapeString(string(s)))
		case chatmark.Bold:
			b.WriteString("<strong>")
			appendSpans(b, s.Spans)
			b.WriteString("</strong>")
		case chatmark.Link:
			b.WriteString(`<a href="`)
			b.WriteString(html.EscapeString(s.URL))
			b.WriteString(`">`)
			b.WriteString(html.EscapeString(s.Label))
			b.WriteString("</a>")
		}
	}
}

func appendIndentClass(b *strings.Builder, indent int) {
	if indent <= 0 {
		return
	}
	b.WriteString(` class="indent-`)
	b.WriteString(strconv.Itoa(indent))
	b.WriteString(`"`)
}
