package chatmark

import (
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"unicode/utf8"
	"unsafe"

	"github.com/muesli/reflow/ansi"
)

const ansiReset = "\x1b[0m"

var spaceString = strings.Repeat(" ", 256)

var rendererPool = sync.Pool{
	New: func() any {
		return &renderer{}
	},
}

var configPool = sync.Pool{
	New: func() any {
		return &renderConfig{}
	},
}

// RenderRequest configures Render.
type RenderRequest struct {
	Reader  io.Reader
	Writer  io.Writer
	Width   int
	Theme   Theme
	Options []RenderOption
}

// Render reads chat markup from req.Reader, parses it, and writes a styled
// terminal rendition to req.Writer. A Width of zero disables wrapping.
func Render(req RenderRequest) error {
	if req.Reader == nil {
		return fmt.Errorf("render: reader is nil")
	}
	if req.Writer == nil {
		return fmt.Errorf("render: writer is nil")
	}
	cfg := renderConfigFrom(req.Options)
	src, err := io.ReadAll(req.Reader)
	if err != nil {
		return fmt.Errorf("render: read: %w", err)
	}
	if !cfg.skipValidation {
		if err := ValidateInput(src); err != nil {
			return fmt.Errorf("render: %w", err)
		}
	}
	if !cfg.keepFrontMatter {
		src = StripFrontMatter(src)
	}
	return renderNodes(req.Writer, Parse(bytesToString(src)), req.Width, req.Theme, cfg)
}

// RenderNodes renders already parsed content to w.
func RenderNodes(w io.Writer, nodes []ContentNode, width int, theme Theme, opts ...RenderOption) error {
	if w == nil {
		return fmt.Errorf("render: writer is nil")
	}
	return renderNodes(w, nodes, width, theme, renderConfigFrom(opts))
}

// RenderString renders chat markup to a string.
func RenderString(text string, width int, theme Theme, opts ...RenderOption) (string, error) {
	var sb strings.Builder
	err := Render(RenderRequest{
		Reader:  strings.NewReader(text),
		Writer:  &sb,
		Width:   width,
		Theme:   theme,
		Options: opts,
	})
	return sb.String(), err
}

// RenderBytes renders chat markup to a byte slice.
func RenderBytes(src []byte, width int, theme Theme, opts ...RenderOption) ([]byte, error) {
	var buf bytes.Buffer
	err := Render(RenderRequest{
		Reader:  bytes.NewReader(src),
		Writer:  &buf,
		Width:   width,
		Theme:   theme,
		Options: opts,
	})
	return buf.Bytes(), err
}

func renderConfigFrom(opts []RenderOption) renderConfig {
	cfg := configPool.Get().(*renderConfig)
	*cfg = renderConfig{}
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	val := *cfg
	configPool.Put(cfg)
	return val
}

func renderNodes(w io.Writer, nodes []ContentNode, width int, theme Theme, cfg renderConfig) error {
	if theme == nil {
		theme = DefaultTheme()
	}
	r := rendererPool.Get().(*renderer)
	r.reset(w, width, theme.Styles(), cfg.osc8)
	r.content(nodes)
	err := r.err
	r.reset(io.Discard, 0, Styles{}, false)
	rendererPool.Put(r)
	return err
}

type styledFragment struct {
	text  string
	style Style
}

// renderer walks parsed content and emits styled, wrapped lines. Words are
// buffered as styled fragments so a wrap decision covers the whole word even
// when its pieces carry different styles.
type renderer struct {
	w      io.Writer
	width  int
	styles Styles
	osc8   bool

	indent   string
	line     int
	prefix   int
	style    string
	spaces   int
	pending  []styledFragment
	pendingW int
	err      error

	pendingArr [16]styledFragment
}

func (r *renderer) reset(w io.Writer, width int, styles Styles, osc8 bool) {
	r.w = w
	r.width = width
	r.styles = styles
	r.osc8 = osc8
	r.indent = ""
	r.line = 0
	r.prefix = 0
	r.style = ""
	r.spaces = 0
	r.pending = r.pendingArr[:0]
	r.pendingW = 0
	r.err = nil
}

func (r *renderer) content(nodes []ContentNode) {
	for i, node := range nodes {
		if i > 0 && blockSeparated(nodes[i-1], node) {
			r.writeString("\n")
		}
		switch n := node.(type) {
		case Heading:
			r.heading(n)
		case Paragraph:
			r.item(2*n.Indent, "", Style{}, n.Spans, r.styles.Text, r.styles.Strong)
		case BulletList:
			for _, it := range n.Items {
				marker := "• "
				if it.Indent > 0 {
					marker = "◦ "
				}
				r.item(2*it.Indent, marker, r.styles.Bullet, it.Spans, r.styles.Text, r.styles.Strong)
			}
		case NumberedList:
			for _, it := range n.Items {
				marker := strconv.Itoa(it.Number) + ". "
				r.item(2*it.Indent, marker, r.styles.Number, it.Spans, r.styles.Text, r.styles.Strong)
			}
		}
	}
}

// blockSeparated reports whether a blank line belongs between two adjacent
// blocks. Lists meeting across a nesting boundary stay contiguous so a parent
// item and its indented children read as one list.
func blockSeparated(prev, next ContentNode) bool {
	_, prevLast, prevList := listEdgeIndents(prev)
	nextFirst, _, nextList := listEdgeIndents(next)
	if prevList && nextList && (prevLast > 0 || nextFirst > 0) {
		return false
	}
	return true
}

func listEdgeIndents(node ContentNode) (first, last int, isList bool) {
	var items []ListItem
	switch n := node.(type) {
	case BulletList:
		items = n.Items
	case NumberedList:
		items = n.Items
	default:
		return 0, 0, false
	}
	if len(items) == 0 {
		return 0, 0, true
	}
	return items[0].Indent, items[len(items)-1].Indent, true
}

func (r *renderer) heading(h Heading) {
	st := r.styles.HeadingMain
	if h.Level == LevelMajor {
		st = r.styles.HeadingMajor
	}
	r.item(0, "", Style{}, h.Spans, st, st)
}

// item emits one block line: an indent margin, an optional list marker, and
// the wrapped span content. Continuation lines hang under the marker.
func (r *renderer) item(indentCols int, marker string, markerStyle Style, spans []InlineSpan, base, strong Style) {
	margin := spaceRun(indentCols)
	r.line = len(margin)
	r.writeString(margin)
	if marker != "" {
		r.setStyle(markerStyle.Prefix)
		r.writeString(marker)
		r.line += ansi.PrintableRuneWidth(marker)
	}
	r.prefix = r.line
	r.indent = spaceRun(r.line)
	r.renderSpans(spans, base, strong)
	r.endLine()
}

func (r *renderer) renderSpans(spans []InlineSpan, base, strong Style) {
	for _, span := range spans {
		switch s := span.(type) {
		case PlainText:
			r.text(string(s), base)
		case Bold:
			for _, inner := range s.Spans {
				switch b := inner.(type) {
				case PlainText:
					r.text(string(b), strong)
				case Link:
					r.link(b)
				}
			}
		case Link:
			r.link(s)
		}
	}
}

func (r *renderer) link(l Link) {
	if r.osc8 && l.URL != "" {
		r.flushWord()
		r.flushSpaces()
		r.writeString(osc8Start + l.URL + "\x1b\\")
		r.text(l.Label, r.styles.LinkText)
		r.flushWord()
		r.writeString(osc8End)
		return
	}
	r.text(l.Label, r.styles.LinkText)
	if l.URL == "" {
		return
	}
	if l.Label != "" {
		r.flushWord()
		r.spaces++
	}
	display := l.URL
	if r.width > 0 {
		avail := r.width - len(r.indent) - 2
		if avail < 1 {
			avail = 1
		}
		display = fitURL(l.URL, avail)
	}
	r.appendWord("("+display+")", r.styles.LinkURL)
}

// text feeds a span into the word buffer, splitting on spaces and tabs.
func (r *renderer) text(s string, st Style) {
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' && s[i] != '\t' {
			continue
		}
		if i > start {
			r.appendWord(s[start:i], st)
		}
		r.flushWord()
		r.spaces++
		start = i + 1
	}
	if start < len(s) {
		r.appendWord(s[start:], st)
	}
}

func (r *renderer) appendWord(s string, st Style) {
	r.pending = append(r.pending, styledFragment{text: s, style: st})
	r.pendingW += ansi.PrintableRuneWidth(s)
}

func (r *renderer) flushWord() {
	if len(r.pending) == 0 {
		return
	}
	if r.width > 0 && r.line+r.spaces+r.pendingW > r.width && !(r.line == r.prefix && r.spaces == 0) {
		r.newlineIndent()
		r.spaces = 0
	}
	r.flushSpaces()
	if r.width > 0 && r.line+r.pendingW > r.width {
		r.splitWord()
	} else {
		for _, f := range r.pending {
			r.setStyle(f.style.Prefix)
			r.writeString(f.text)
		}
		r.line += r.pendingW
	}
	r.pending = r.pending[:0]
	r.pendingW = 0
}

func (r *renderer) flushSpaces() {
	if r.spaces <= 0 {
		return
	}
	r.writeString(spaceRun(r.spaces))
	r.line += r.spaces
	r.spaces = 0
}

// splitWord hard-breaks a word that cannot fit on one line, one rune per
// column.
func (r *renderer) splitWord() {
	var scratch [utf8.UTFMax]byte
	for _, f := range r.pending {
		r.setStyle(f.style.Prefix)
		for _, c := range f.text {
			if r.line >= r.width {
				r.newlineIndent()
				r.setStyle(f.style.Prefix)
			}
			n := utf8.EncodeRune(scratch[:], c)
			r.writeString(bytesToString(scratch[:n]))
			r.line++
		}
	}
}

func (r *renderer) newlineIndent() {
	if r.style != "" {
		r.writeString(ansiReset)
		r.style = ""
	}
	r.writeString("\n")
	r.writeString(r.indent)
	r.line = len(r.indent)
	r.prefix = r.line
}

func (r *renderer) endLine() {
	r.flushWord()
	r.spaces = 0
	if r.style != "" {
		r.writeString(ansiReset)
		r.style = ""
	}
	r.writeString("\n")
	r.indent = ""
	r.line = 0
	r.prefix = 0
}

func (r *renderer) setStyle(prefix string) {
	if prefix == r.style {
		return
	}
	if r.style != "" {
		r.writeString(ansiReset)
	}
	r.style = prefix
	if prefix != "" {
		r.writeString(prefix)
	}
}

func (r *renderer) writeString(s string) {
	if r.err != nil || s == "" {
		return
	}
	if _, err := io.WriteString(r.w, s); err != nil {
		r.err = err
	}
}

func spaceRun(n int) string {
	if n <= 0 {
		return ""
	}
	if n <= len(spaceString) {
		return spaceString[:n]
	}
	return strings.Repeat(" ", n)
}

func bytesToString(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	return unsafe.String(unsafe.SliceData(b), len(b))
}
