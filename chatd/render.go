package chatd

import (
	"tolv.systems/chatmark"
)

// The render endpoint exposes parsed assistant replies as a JSON node tree.
// Every node and span carries a type discriminator so clients can switch on
// it without probing field presence.

type NodeDTO struct {
	Type   string    `json:"type"`
	Level  string    `json:"level,omitempty"`
	Indent int       `json:"indent,omitempty"`
	Start  int       `json:"start,omitempty"`
	Spans  []SpanDTO `json:"spans,omitempty"`
	Items  []ItemDTO `json:"items,omitempty"`
}

type ItemDTO struct {
	Indent int       `json:"indent,omitempty"`
	Number int       `json:"number,omitempty"`
	Spans  []SpanDTO `json:"spans"`
}

type SpanDTO struct {
	Type  string    `json:"type"`
	Text  string    `json:"text,omitempty"`
	Label string    `json:"label,omitempty"`
	URL   string    `json:"url,omitempty"`
	Spans []SpanDTO `json:"spans,omitempty"`
}

func nodeDTOs(nodes []chatmark.ContentNode) []NodeDTO {
	out := make([]NodeDTO, 0, len(nodes))
	for _, node := range nodes {
		switch n := node.(type) {
		case chatmark.Heading:
			out = append(out, NodeDTO{
				Type:  "heading",
				Level: n.Level.String(),
				Spans: spanDTOs(n.Spans),
			})
		case chatmark.Paragraph:
			out = append(out, NodeDTO{
				Type:   "paragraph",
				Indent: n.Indent,
				Spans:  spanDTOs(n.Spans),
			})
		case chatmark.BulletList:
			out = append(out, NodeDTO{
				Type:  "bullet_list",
				Items: itemDTOs(n.Items),
			})
		case chatmark.NumberedList:
			out = append(out, NodeDTO{
				Type:  "numbered_list",
				Start: n.Start,
				Items: itemDTOs(n.Items),
			})
		}
	}
	return out
}

func itemDTOs(items []chatmark.ListItem) []ItemDTO {
	out := make([]ItemDTO, 0, len(items))
	for _, item := range items {
		out = append(out, ItemDTO{
			Indent: item.Indent,
			Number: item.Number,
			Spans:  spanDTOs(item.Spans),
		})
	}
	return out
}

func spanDTOs(spans []chatmark.InlineSpan) []SpanDTO {
	out := make([]SpanDTO, 0, len(spans))
	for _, span := range spans {
		switch s := span.(type) {
		case chatmark.PlainText:
			out = append(out, SpanDTO{Type: "text", Text: string(s)})
		case chatmark.Bold:
			out = append(out, SpanDTO{Type: "bold", Spans: spanDTOs(s.Spans)})
		case chatmark.Link:
			out = append(out, SpanDTO{Type: "link", Label: s.Label, URL: s.URL})
		}
	}
	return out
}
