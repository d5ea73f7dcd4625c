// Package chatmark interprets the lightweight markup dialect used in chat
// replies and renders it for terminal display.
//
// The dialect is small on purpose: ### and #### headings, * bullets,
// numbered lists that keep their literal numbering, **bold**, and
// [label](url) links. Parse turns a reply into a flat sequence of typed
// content nodes; Render walks those nodes and emits themed, width-wrapped
// ANSI output. Parsing is total: any input produces a node sequence, and
// anything that is not markup stays visible as plain text.
//
// Core properties:
//   - Parse never fails; malformed markup degrades to literal text
//   - Consecutive list lines of one kind and indent join into a single list
//   - Theme-driven styling via ANSI prefixes
//   - Width-aware wrapping with hanging list indents
//
// Example:
//
//	reader := strings.NewReader("### Hello\n\nMarkup in, ANSI out.\n")
//	err := chatmark.Render(chatmark.RenderRequest{
//		Reader: reader,
//		Writer: os.Stdout,
//		Width:  80,
//		Theme:  chatmark.DefaultTheme(),
//	})
//	if err != nil {
//		log.Fatal(err)
//	}
//
// The renderer can be customized using RenderOptions such as OSC 8
// hyperlink support.
package chatmark
