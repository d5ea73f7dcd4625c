package chatmark

import "strings"

// HeadingLevel identifies the prominence tier of a Heading.
type HeadingLevel uint8

const (
	// LevelMain is the most prominent heading tier.
	LevelMain HeadingLevel = iota + 1
	// LevelMajor is the secondary heading tier.
	LevelMajor
)

// String returns the lowercase name of the level.
func (l HeadingLevel) String() string {
	switch l {
	case LevelMain:
		return "main"
	case LevelMajor:
		return "major"
	default:
		return "unknown"
	}
}

// ContentNode is one block of interpreted chat markup. The concrete types are
// Heading, Paragraph, BulletList and NumberedList. Nodes are constructed by
// Parse and never mutated afterwards.
type ContentNode interface {
	// Text returns the flattened text content of the node, markup removed.
	Text() string
	contentNode()
}

// InlineSpan is one inline fragment of a block's text. The concrete types are
// PlainText, Bold and Link.
type InlineSpan interface {
	// Text returns the flattened text content of the span.
	Text() string
	inlineSpan()
}

// Heading is a section heading.
type Heading struct {
	Level HeadingLevel
	Spans []InlineSpan
}

// Paragraph is a run of text at an indentation level.
type Paragraph struct {
	Indent int
	Spans  []InlineSpan
}

// BulletList is a run of consecutive bullet items at one indentation level.
type BulletList struct {
	Items []ListItem
}

// NumberedList is a run of consecutive numbered items at one indentation
// level. Start is the literal number of the first item, not necessarily 1.
type NumberedList struct {
	Start int
	Items []ListItem
}

// ListItem is a single item of a BulletList or NumberedList. Number carries
// the literal integer parsed from the source line for numbered items and is
// zero for bullet items.
type ListItem struct {
	Indent int
	Number int
	Spans  []InlineSpan
}

// Text returns the flattened text of the item.
func (it ListItem) Text() string { return joinSpans(it.Spans) }

// PlainText is an unstyled text span.
type PlainText string

// Bold is an emphasized span. Its content may contain Link spans but never
// another Bold.
type Bold struct {
	Spans []InlineSpan
}

// Link is a hyperlink span.
type Link struct {
	Label string
	URL   string
}

func (h Heading) contentNode()      {}
func (p Paragraph) contentNode()    {}
func (l BulletList) contentNode()   {}
func (l NumberedList) contentNode() {}

func (t PlainText) inlineSpan() {}
func (b Bold) inlineSpan()      {}
func (l Link) inlineSpan()      {}

// Text returns the heading text.
func (h Heading) Text() string { return joinSpans(h.Spans) }

// Text returns the paragraph text.
func (p Paragraph) Text() string { return joinSpans(p.Spans) }

// Text returns the item texts joined by newlines.
func (l BulletList) Text() string { return joinItems(l.Items) }

// Text returns the item texts joined by newlines.
func (l NumberedList) Text() string { return joinItems(l.Items) }

// Text returns the span content.
func (t PlainText) Text() string { return string(t) }

// Text returns the flattened content of the bold run.
func (b Bold) Text() string { return joinSpans(b.Spans) }

// Text returns the link label.
func (l Link) Text() string { return l.Label }

func joinSpans(spans []InlineSpan) string {
	if len(spans) == 0 {
		return ""
	}
	if len(spans) == 1 {
		return spans[0].Text()
	}
	var b strings.Builder
	for _, s := range spans {
		b.WriteString(s.Text())
	}
	return b.String()
}

func joinItems(items []ListItem) string {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(it.Text())
	}
	return b.String()
}
