package chatmark

import (
	"strconv"
	"strings"
)

const (
	mainHeadingPrefix  = "### "
	majorHeadingPrefix = "#### "
	bulletPrefix       = "* "

	// Leading tabs advance to the next tabWidth column; two columns make
	// one indentation level.
	tabWidth = 4
)

// Parse interprets text as chat markup and returns its ordered block
// sequence.
//
// Parse is total: it never fails, and anything that does not match a known
// block form degrades to a plain paragraph. Empty input yields an empty
// sequence. Indentation is measured in columns of leading whitespace at two
// columns per level, where a space is one column and a tab advances to the
// next four-column stop. Each call works on its own state and returns a
// freshly built sequence, so Parse is safe for concurrent use.
func Parse(text string) []ContentNode {
	if text == "" {
		return nil
	}
	var p parser
	p.reset()
	start := 0
	for start <= len(text) {
		end := strings.IndexByte(text[start:], '\n')
		if end < 0 {
			p.line(text[start:])
			break
		}
		p.line(text[start : start+end])
		start += end + 1
	}
	p.flushBullets()
	p.flushNumbers()
	return p.nodes
}

// parser accumulates blocks over a single pass. The two list runs are
// tracked independently because opening one must first flush the other; a
// tracked indent of -1 marks a closed run.
type parser struct {
	nodes []ContentNode

	bullets      []ListItem
	bulletIndent int

	numbers      []ListItem
	numberIndent int
	numberStart  int
}

func (p *parser) reset() {
	p.nodes = nil
	p.bullets = p.bullets[:0]
	p.bulletIndent = -1
	p.numbers = p.numbers[:0]
	p.numberIndent = -1
	p.numberStart = 0
}

func (p *parser) line(raw string) {
	indent := indentLevel(raw)
	trimmed := strings.TrimSpace(raw)
	switch {
	case trimmed == "":
		p.flushBullets()
		p.flushNumbers()
	case strings.HasPrefix(trimmed, mainHeadingPrefix):
		p.flushBullets()
		p.flushNumbers()
		p.nodes = append(p.nodes, Heading{Level: LevelMain, Spans: parseInline(trimmed[len(mainHeadingPrefix):])})
	case strings.HasPrefix(trimmed, majorHeadingPrefix):
		p.flushBullets()
		p.flushNumbers()
		p.nodes = append(p.nodes, Heading{Level: LevelMajor, Spans: parseInline(trimmed[len(majorHeadingPrefix):])})
	case strings.HasPrefix(trimmed, bulletPrefix):
		p.flushNumbers()
		if p.bulletIndent != indent {
			p.flushBullets()
			p.bulletIndent = indent
		}
		p.bullets = append(p.bullets, ListItem{Indent: indent, Spans: parseInline(trimmed[len(bulletPrefix):])})
	default:
		if number, content, ok := parseNumberedItem(trimmed); ok {
			p.flushBullets()
			if p.numberIndent != indent {
				p.flushNumbers()
				p.numberIndent = indent
			}
			if len(p.numbers) == 0 {
				p.numberStart = number
			}
			p.numbers = append(p.numbers, ListItem{Indent: indent, Number: number, Spans: parseInline(content)})
			return
		}
		p.flushBullets()
		p.flushNumbers()
		p.nodes = append(p.nodes, Paragraph{Indent: indent, Spans: paragraphSpans(trimmed)})
	}
}

// flushBullets emits the pending bullet run, if any, and closes it. Flushing
// an empty run only resets the tracked indent.
func (p *parser) flushBullets() {
	if len(p.bullets) > 0 {
		items := make([]ListItem, len(p.bullets))
		copy(items, p.bullets)
		p.nodes = append(p.nodes, BulletList{Items: items})
		p.bullets = p.bullets[:0]
	}
	p.bulletIndent = -1
}

// flushNumbers emits the pending numbered run, if any, and closes it.
func (p *parser) flushNumbers() {
	if len(p.numbers) > 0 {
		items := make([]ListItem, len(p.numbers))
		copy(items, p.numbers)
		p.nodes = append(p.nodes, NumberedList{Start: p.numberStart, Items: items})
		p.numbers = p.numbers[:0]
	}
	p.numberIndent = -1
	p.numberStart = 0
}

// paragraphSpans applies inline parsing only to lines that carry inline
// markers; everything else is one plain span.
func paragraphSpans(trimmed string) []InlineSpan {
	if strings.Contains(trimmed, boldDelim) || strings.ContainsRune(trimmed, '[') {
		return parseInline(trimmed)
	}
	return []InlineSpan{PlainText(trimmed)}
}

// indentLevel measures the leading whitespace of a raw line in columns and
// converts columns to levels.
func indentLevel(raw string) int {
	cols := 0
	for i := 0; i < len(raw); i++ {
		switch raw[i] {
		case ' ':
			cols++
		case '\t':
			cols += tabWidth - cols%tabWidth
		default:
			return cols / 2
		}
	}
	return cols / 2
}

// parseNumberedItem splits a trimmed line of the form "12. content" into its
// literal number and content. Lines like "12." with nothing after the dot do
// not qualify, and neither do numbers too large for an int.
func parseNumberedItem(s string) (int, string, bool) {
	i := 0
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	if i == 0 || i >= len(s) || s[i] != '.' {
		return 0, "", false
	}
	j := i + 1
	for j < len(s) && (s[j] == ' ' || s[j] == '\t') {
		j++
	}
	if j == i+1 {
		return 0, "", false
	}
	number, err := strconv.Atoi(s[:i])
	if err != nil {
		return 0, "", false
	}
	return number, s[j:], true
}
