package chatmark

import "strings"

// Inline markup is resolved in two passes: links first, bold second. Bold
// delimiters found around an already-resolved link wrap the link span itself,
// so **see [docs](u)** yields a Bold containing a Link. There is no escaping
// mechanism; * [ ] are always significant when they complete a pattern, and a
// pattern that never completes stays literal text.

const boldDelim = "**"

// inlineSegment is the intermediate state between the link pass and the bold
// pass: a raw text fragment or a resolved link.
type inlineSegment struct {
	text   string
	link   Link
	isLink bool
}

func parseInline(s string) []InlineSpan {
	if s == "" {
		return nil
	}
	if !strings.ContainsAny(s, "*[") {
		return []InlineSpan{PlainText(s)}
	}
	return resolveBold(resolveLinks(s))
}

// resolveLinks splits s into text fragments and Link spans. A link is
// [label](url) with the label ending at the first ] after [, an immediately
// following (, and the url ending at the first ) after that. An opener that
// never completes is literal text and scanning resumes one byte later.
func resolveLinks(s string) []inlineSegment {
	var segs []inlineSegment
	start := 0
	i := 0
	for i < len(s) {
		if s[i] != '[' {
			i++
			continue
		}
		link, next, ok := parseLink(s, i)
		if !ok {
			i++
			continue
		}
		if i > start {
			segs = append(segs, inlineSegment{text: s[start:i]})
		}
		segs = append(segs, inlineSegment{link: link, isLink: true})
		start = next
		i = next
	}
	if start < len(s) {
		segs = append(segs, inlineSegment{text: s[start:]})
	}
	return segs
}

// parseLink parses a [label](url) form with s[open] == '[' and reports the
// offset just past the closing parenthesis.
func parseLink(s string, open int) (Link, int, bool) {
	rb := strings.IndexByte(s[open+1:], ']')
	if rb < 0 {
		return Link{}, 0, false
	}
	labelEnd := open + 1 + rb
	if labelEnd+1 >= len(s) || s[labelEnd+1] != '(' {
		return Link{}, 0, false
	}
	rp := strings.IndexByte(s[labelEnd+2:], ')')
	if rp < 0 {
		return Link{}, 0, false
	}
	urlEnd := labelEnd + 2 + rp
	return Link{Label: s[open+1 : labelEnd], URL: s[labelEnd+2 : urlEnd]}, urlEnd + 1, true
}

// segPos addresses a byte offset within a segment sequence. Link segments
// have no meaningful offset.
type segPos struct {
	seg int
	off int
}

type boldMatch struct {
	open         segPos
	contentStart segPos
	close        segPos
	afterClose   segPos
}

// resolveBold walks the segment sequence pairing ** delimiters. Text between
// a matched pair, links included, becomes one Bold span; bold content is not
// re-scanned, so inner pairs close and reopen instead of nesting. An opener
// with no valid closer leaves the remaining segments untouched.
func resolveBold(segs []inlineSegment) []InlineSpan {
	var out []InlineSpan
	cur := segPos{}
	for {
		m, ok := findBold(segs, cur)
		if !ok {
			appendPlain(&out, segs, cur, segPos{seg: len(segs)})
			return out
		}
		appendPlain(&out, segs, cur, m.open)
		var inner []InlineSpan
		appendPlain(&inner, segs, m.contentStart, m.close)
		out = append(out, Bold{Spans: inner})
		cur = m.afterClose
	}
}

func findBold(segs []inlineSegment, from segPos) (boldMatch, bool) {
	open, ok := findDelim(segs, from)
	if !ok {
		return boldMatch{}, false
	}
	contentStart := segPos{seg: open.seg, off: open.off + 2}
	close, ok := findClose(segs, contentStart)
	if !ok {
		// No closer exists anywhere ahead, so no later opener can match
		// either.
		return boldMatch{}, false
	}
	return boldMatch{
		open:         open,
		contentStart: contentStart,
		close:        close,
		afterClose:   segPos{seg: close.seg, off: close.off + 2},
	}, true
}

// findDelim locates the next ** in a text segment at or after from.
func findDelim(segs []inlineSegment, from segPos) (segPos, bool) {
	off := from.off
	for seg := from.seg; seg < len(segs); seg++ {
		if segs[seg].isLink {
			off = 0
			continue
		}
		if idx := strings.Index(segs[seg].text[off:], boldDelim); idx >= 0 {
			return segPos{seg: seg, off: off + idx}, true
		}
		off = 0
	}
	return segPos{}, false
}

// findClose locates the closing ** for an opener whose content starts at
// from. The closer must enclose at least one text byte or link span; a **
// immediately adjacent to the opener is absorbed as literal content instead,
// which keeps **** literal and makes ***** bold a single star.
func findClose(segs []inlineSegment, from segPos) (segPos, bool) {
	hasContent := false
	off := from.off
	for seg := from.seg; seg < len(segs); seg++ {
		if segs[seg].isLink {
			hasContent = true
			off = 0
			continue
		}
		t := segs[seg].text
		for off < len(t) {
			idx := strings.Index(t[off:], boldDelim)
			if idx < 0 {
				if off < len(t) {
					hasContent = true
				}
				break
			}
			if idx > 0 {
				hasContent = true
			}
			if hasContent {
				return segPos{seg: seg, off: off + idx}, true
			}
			off += idx + 1
			hasContent = true
		}
		off = 0
	}
	return segPos{}, false
}

// appendPlain emits the text fragments and links between two positions.
func appendPlain(out *[]InlineSpan, segs []inlineSegment, from, to segPos) {
	for seg := from.seg; seg < len(segs) && seg <= to.seg; seg++ {
		if segs[seg].isLink {
			*out = append(*out, segs[seg].link)
			continue
		}
		t := segs[seg].text
		lo := 0
		if seg == from.seg {
			lo = from.off
		}
		hi := len(t)
		if seg == to.seg {
			hi = to.off
		}
		if lo < hi {
			*out = append(*out, PlainText(t[lo:hi]))
		}
	}
}
