// Package html renders chatmark node sequences as escaped HTML.
//
// The mapping mirrors the terminal renderer's block model: main headings
// become <h3>, major headings <h4>, paragraphs <p> with indent levels
// surfacing as indent-N classes, bullet runs <ul>, and numbered runs <ol>
// with the literal source numbering preserved through start and value
// attributes. Bold spans become <strong> and links <a>. All text content
// and attribute values are escaped.
//
// Example:
//
//	nodes := chatmark.Parse("### Report\n\nSee [the docs](https://example.com).\n")
//	var buf bytes.Buffer
//	if err := html.Render(&buf, nodes); err != nil {
//		log.Fatal(err)
//	}
//
// Render emits a fragment suitable for embedding; RenderDocument wraps the
// same fragment in a minimal standalone page.
package html
