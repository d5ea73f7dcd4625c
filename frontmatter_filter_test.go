package chatmark

import (
	"strings"
	"testing"
)

func TestRenderOmitsFrontMatterAtStart(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		src      string
		contains []string
		omits    []string
	}{
		{
			name: "yaml",
			src:  "---\ntitle: Post\ndate: 2026-02-09\n---\n\n### Hello\n\nBody.\n",
			contains: []string{
				"Hello",
				"Body.",
			},
			omits: []string{
				"title: Post",
				"date: 2026-02-09",
			},
		},
		{
			name: "toml",
			src:  "+++\ntitle = \"Post\"\n+++\n\n### Hello\n",
			contains: []string{
				"Hello",
			},
			omits: []string{
				"title = \"Post\"",
			},
		},
		{
			name: "json",
			src:  ";;;\n{\"title\": \"Post\"}\n;;;\n\n### Hello\n",
			contains: []string{
				"Hello",
			},
			omits: []string{
				"\"title\": \"Post\"",
			},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			out := stripANSI(renderText(t, []byte(tc.src), 0))
			for _, want := range tc.contains {
				if !strings.Contains(out, want) {
					t.Fatalf("missing %q in output: %q", want, out)
				}
			}
			for _, bad := range tc.omits {
				if strings.Contains(out, bad) {
					t.Fatalf("unexpected %q in output: %q", bad, out)
				}
			}
		})
	}
}

func TestFrontMatterOnlyCheckedAtStart(t *testing.T) {
	t.Parallel()
	src := "### Intro\n\n+++\ntitle = \"Keep me\"\n+++\n\nTail\n"
	out := stripANSI(renderText(t, []byte(src), 0))
	for _, want := range []string{"Intro", "title = \"Keep me\"", "Tail"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output: %q", want, out)
		}
	}
}

func TestUnclosedFrontMatterIsNotStripped(t *testing.T) {
	t.Parallel()
	src := "---\ntitle: Post\n\n### Hello\n"
	out := stripANSI(renderText(t, []byte(src), 0))
	for _, want := range []string{"title: Post", "Hello"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output: %q", want, out)
		}
	}
}

func TestDelimiterWithoutMetadataIsNotStripped(t *testing.T) {
	t.Parallel()
	src := "---\nJust prose\n---\n\nTail\n"
	out := stripANSI(renderText(t, []byte(src), 0))
	for _, want := range []string{"Just prose", "Tail"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output: %q", want, out)
		}
	}
}

func TestWithFrontMatterKeepsBlock(t *testing.T) {
	t.Parallel()
	src := []byte("---\ntitle: Post\n---\n\nBody\n")
	out := stripANSI(renderTextWithOptions(t, src, 0, WithFrontMatter(true)))
	for _, want := range []string{"title: Post", "Body"} {
		if !strings.Contains(out, want) {
			t.Fatalf("missing %q in output: %q", want, out)
		}
	}
}

func TestStripFrontMatterCRLF(t *testing.T) {
	t.Parallel()
	src := []byte("---\r\ntitle: Post\r\n---\r\nBody\r\n")
	out := StripFrontMatter(src)
	if string(out) != "Body\r\n" {
		t.Fatalf("unexpected remainder %q", out)
	}
}
