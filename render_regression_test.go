package chatmark

import (
	"bytes"
	"regexp"
	"strings"
	"testing"
)

func TestHeadingsRenderWithoutMarkers(t *testing.T) {
	src := []byte("### One\n#### Two\n")
	out := stripANSI(renderText(t, src, 0))
	if out != "One\n\nTwo\n" {
		t.Fatalf("unexpected heading output: %q", out)
	}
}

func TestBulletMarkersByIndent(t *testing.T) {
	src := []byte("* top\n  * nested\n    * deeper\n")
	out := stripANSI(renderText(t, src, 0))
	if out != "• top\n  ◦ nested\n    ◦ deeper\n" {
		t.Fatalf("unexpected bullet output: %q", out)
	}
}

func TestNumberedListKeepsLiteralNumbers(t *testing.T) {
	src := []byte("5. five\n6. six\n")
	out := stripANSI(renderText(t, src, 0))
	if out != "5. five\n6. six\n" {
		t.Fatalf("unexpected numbered output: %q", out)
	}
}

func TestTopLevelListRunsStaySeparated(t *testing.T) {
	src := []byte("* a\n1. b\n* c\n")
	out := stripANSI(renderText(t, src, 0))
	if out != "• a\n\n1. b\n\n• c\n" {
		t.Fatalf("unexpected mixed list output: %q", out)
	}
}

func TestDedentReturnsToListWithoutBlank(t *testing.T) {
	src := []byte("* a\n  * b\n* c\n")
	out := stripANSI(renderText(t, src, 0))
	if out != "• a\n  ◦ b\n• c\n" {
		t.Fatalf("unexpected dedent output: %q", out)
	}
}

func TestParagraphIndentMargin(t *testing.T) {
	src := []byte("    indented twice\n")
	out := stripANSI(renderText(t, src, 0))
	if out != "    indented twice\n" {
		t.Fatalf("unexpected paragraph output: %q", out)
	}
}

func TestBoldUsesStrongStyle(t *testing.T) {
	src := []byte("a **b** c\n")
	out := renderText(t, src, 0)
	if !strings.Contains(out, "\x1b[1mb") {
		t.Fatalf("missing strong style around bold text: %q", out)
	}
	if plain := stripANSI(out); plain != "a b c\n" {
		t.Fatalf("unexpected plain text: %q", plain)
	}
}

func TestLinkFallbackAndOSC8(t *testing.T) {
	src := []byte("See [website](https://example.com) now.\n")
	no := stripANSI(renderText(t, src, 0))
	if !strings.Contains(no, "website (https://example.com)") {
		t.Fatalf("expected fallback link rendering, got %q", no)
	}
	osc := renderTextWithOptions(t, src, 0, WithOSC8(true))
	if !strings.Contains(osc, "\x1b]8;;https://example.com\x1b\\") {
		t.Fatalf("missing OSC 8 start sequence")
	}
	if !strings.Contains(osc, "\x1b]8;;\x1b\\") {
		t.Fatalf("missing OSC 8 end sequence")
	}
	if strings.Contains(stripANSI(osc), "(https://example.com)") {
		t.Fatalf("hyperlink mode should not show the URL inline: %q", osc)
	}
}

func TestBlankLineBetweenListAndHeading(t *testing.T) {
	src := []byte("1. First\n2. Second\n\n#### Header\n")
	out := stripANSI(renderText(t, src, 0))
	if !strings.Contains(out, "Second\n\nHeader") {
		t.Fatalf("expected blank line before header, got %q", out)
	}
}

func TestWrapHangingIndent(t *testing.T) {
	src := []byte("* alpha beta gamma delta\n")
	out := stripANSI(renderText(t, src, 20))
	if out != "• alpha beta gamma\n  delta\n" {
		t.Fatalf("unexpected wrap: %q", out)
	}
}

func TestNestedWrapHangsUnderMarker(t *testing.T) {
	src := []byte("  * nested item wraps with hanging indent\n")
	out := stripANSI(renderText(t, src, 24))
	if !strings.Contains(out, "\n    with hanging indent") {
		t.Fatalf("continuation not indented under marker: %q", out)
	}
}

func TestLongURLFittedAtNarrowWidth(t *testing.T) {
	src := []byte("[docs](https://kubernetes.io/docs/concepts/workloads/)\n")
	out := stripANSI(renderText(t, src, 24))
	if !strings.Contains(out, "…") {
		t.Fatalf("expected shortened URL, got %q", out)
	}
	for i, line := range strings.Split(out, "\n") {
		if len([]rune(line)) > 24 {
			t.Fatalf("line %d exceeds width: %q", i+1, line)
		}
	}
}

func TestAllReplyTextPresent(t *testing.T) {
	src := readReply(t)
	out := normalizeWhitespace(stripANSI(renderText(t, src, 0)))
	for _, line := range strings.Split(string(src), "\n") {
		want := normalizeMarkupLine(line)
		if want == "" {
			continue
		}
		if !strings.Contains(out, normalizeWhitespace(want)) {
			t.Fatalf("missing text %q in rendered output", want)
		}
	}
}

func TestRenderRejectsBadInput(t *testing.T) {
	err := Render(RenderRequest{Reader: nil, Writer: &bytes.Buffer{}})
	if err == nil {
		t.Fatal("expected error for nil reader")
	}
	err = Render(RenderRequest{Reader: strings.NewReader("x"), Writer: nil})
	if err == nil {
		t.Fatal("expected error for nil writer")
	}
	var out bytes.Buffer
	err = Render(RenderRequest{
		Reader: bytes.NewReader([]byte{0x00, 0x01, 0x02}),
		Writer: &out,
	})
	if err == nil {
		t.Fatal("expected error for binary input")
	}
}

func TestRenderSkipValidationPassesRawBytes(t *testing.T) {
	var out bytes.Buffer
	err := Render(RenderRequest{
		Reader:  bytes.NewReader([]byte("ok \xff\xfe text\n")),
		Writer:  &out,
		Options: []RenderOption{WithValidation(false)},
	})
	if err != nil {
		t.Fatalf("expected no error with validation off, got %v", err)
	}
	if !strings.Contains(out.String(), "text") {
		t.Fatalf("expected content in output, got %q", out.String())
	}
}

func TestRenderStringEmptyInput(t *testing.T) {
	out, err := RenderString("", 80, nil)
	if err != nil {
		t.Fatalf("render empty: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty output, got %q", out)
	}
	out, err = RenderString("\n   \n\n", 80, nil)
	if err != nil {
		t.Fatalf("render blank: %v", err)
	}
	if out != "" {
		t.Fatalf("expected empty output for blank input, got %q", out)
	}
}

var ansiRegexp = regexp.MustCompile("\x1b\\[[0-9;]*[A-Za-z]")
var osc8Regexp = regexp.MustCompile("\x1b\\]8;;.*?\x1b\\\\")

func stripANSI(s string) string {
	s = ansiRegexp.ReplaceAllString(s, "")
	s = osc8Regexp.ReplaceAllString(s, "")
	return s
}

func renderTextWithOptions(t *testing.T, src []byte, width int, opts ...RenderOption) string {
	t.Helper()
	var out bytes.Buffer
	err := Render(RenderRequest{
		Reader:  bytes.NewReader(src),
		Writer:  &out,
		Width:   width,
		Theme:   DefaultTheme(),
		Options: opts,
	})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	return out.String()
}

// normalizeMarkupLine reduces a source line to the text the renderer should
// keep: heading and bullet markers dropped, bold markers removed, links in
// label (url) form. Numbered markers survive in the output, so they stay.
func normalizeMarkupLine(line string) string {
	line = strings.TrimSpace(line)
	if line == "" {
		return ""
	}
	if strings.HasPrefix(line, "### ") {
		line = strings.TrimSpace(line[4:])
	} else if strings.HasPrefix(line, "#### ") {
		line = strings.TrimSpace(line[5:])
	} else if strings.HasPrefix(line, "* ") {
		line = strings.TrimSpace(line[2:])
	}
	line = replaceLinks(line)
	line = strings.ReplaceAll(line, "**", "")
	return strings.TrimSpace(line)
}

func replaceLinks(line string) string {
	for {
		start := strings.Index(line, "[")
		if start == -1 {
			return line
		}
		mid := strings.Index(line[start:], "](")
		if mid == -1 {
			return line
		}
		mid += start
		end := strings.Index(line[mid+2:], ")")
		if end == -1 {
			return line
		}
		end += mid + 2
		text := line[start+1 : mid]
		url := line[mid+2 : end]
		line = line[:start] + text + " (" + url + ")" + line[end+1:]
	}
}

func normalizeWhitespace(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return strings.Join(fields, " ")
}
