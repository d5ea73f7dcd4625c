package chatmark

import (
	"strings"
	"testing"
)

func TestIntegrationRenderPlainAndANSI(t *testing.T) {
	src := strings.Join([]string{
		"### Title",
		"",
		"Paragraph with **strong** words and a [site](https://example.com) link.",
		"",
		"* item one",
		"* item two",
		"  * nested one",
		"  * nested two",
		"",
		"1. ordered one",
		"2. ordered two",
		"",
		"5. restart five",
		"",
		"    double indented paragraph",
	}, "\n")

	out := renderText(t, []byte(src), 0)
	plain := stripANSI(out)
	wantPlain := strings.Join([]string{
		"Title",
		"",
		"Paragraph with strong words and a site (https://example.com) link.",
		"",
		"• item one",
		"• item two",
		"  ◦ nested one",
		"  ◦ nested two",
		"",
		"1. ordered one",
		"2. ordered two",
		"",
		"5. restart five",
		"",
		"    double indented paragraph",
	}, "\n") + "\n"
	if plain != wantPlain {
		t.Fatalf("plain output mismatch\n---want---\n%q\n---got---\n%q", wantPlain, plain)
	}

	for _, styled := range []string{
		"\x1b[1m\x1b[38;5;81mTitle",
		"\x1b[38;5;245m• ",
		"\x1b[38;5;245m1. ",
		"\x1b[1mstrong",
		"\x1b[4m\x1b[38;5;110msite",
	} {
		if !strings.Contains(out, styled) {
			t.Fatalf("missing styled sequence %q in output %q", styled, out)
		}
	}
}

func TestIntegrationLiteralEdgeCases(t *testing.T) {
	src := strings.Join([]string{
		"###No space means plain text",
		"12.also plain text",
		"**unclosed bold stays put",
		"[dangling](no-close",
	}, "\n")

	plain := stripANSI(renderText(t, []byte(src), 0))
	for _, want := range []string{
		"###No space means plain text",
		"12.also plain text",
		"**unclosed bold stays put",
		"[dangling](no-close",
	} {
		if !strings.Contains(plain, want) {
			t.Fatalf("missing literal text %q in %q", want, plain)
		}
	}
}

func TestOSC8WrappedPreservesSpaces(t *testing.T) {
	src := []byte("A paragraph with a link to [site](https://example.com) and more text.")
	out := renderTextWithOptions(t, src, 30, WithOSC8(true))
	plain := stripANSI(out)
	if strings.Contains(plain, "tosite") || strings.Contains(plain, "siteand") {
		t.Fatalf("spaces collapsed around OSC8 link: %q", plain)
	}
	if !strings.Contains(out, "\x1b]8;;https://example.com\x1b\\") {
		t.Fatalf("missing OSC8 link start in wrapped output")
	}
}
