package chatmark

import (
	"sort"
	"testing"
)

func TestThemeByName(t *testing.T) {
	for _, name := range []string{"default", "ocean", "ember", "dim", "mono"} {
		th, ok := ThemeByName(name)
		if !ok {
			t.Fatalf("expected theme %q to be available", name)
		}
		if th.Name() != name {
			t.Fatalf("theme name mismatch: got %q want %q", th.Name(), name)
		}
	}
	if _, ok := ThemeByName("no-such-theme"); ok {
		t.Fatal("unexpected theme for unknown name")
	}
	if th, ok := ThemeByName("  Default "); !ok || th.Name() != "default" {
		t.Fatalf("expected normalized lookup to find default, got %v %v", th, ok)
	}
	if th, ok := ThemeByName(""); !ok || th.Name() != DefaultTheme().Name() {
		t.Fatalf("expected empty name to resolve to default, got %v %v", th, ok)
	}
}

func TestAvailableThemesSorted(t *testing.T) {
	names := AvailableThemes()
	if len(names) == 0 {
		t.Fatal("no builtin themes")
	}
	if !sort.StringsAreSorted(names) {
		t.Fatalf("themes not sorted: %v", names)
	}
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if _, dup := seen[name]; dup {
			t.Fatalf("duplicate theme %q", name)
		}
		seen[name] = struct{}{}
	}
	if _, ok := seen["default"]; !ok {
		t.Fatalf("default theme missing from %v", names)
	}
}

func TestNewThemeStylesRoundTrip(t *testing.T) {
	styles := Styles{Strong: Style{Prefix: "\x1b[1m"}}
	th := NewTheme("custom", styles)
	if th.Name() != "custom" {
		t.Fatalf("unexpected name %q", th.Name())
	}
	if th.Styles().Strong.Prefix != "\x1b[1m" {
		t.Fatalf("styles not preserved: %+v", th.Styles())
	}
}

func TestMonoThemeHasNoColor(t *testing.T) {
	th, ok := ThemeByName("mono")
	if !ok {
		t.Fatal("mono theme missing")
	}
	st := th.Styles()
	for name, s := range map[string]Style{
		"text":    st.Text,
		"bullet":  st.Bullet,
		"number":  st.Number,
		"linkURL": st.LinkURL,
	} {
		if s.Prefix != "" {
			t.Fatalf("mono %s style should be empty, got %q", name, s.Prefix)
		}
	}
	if st.HeadingMain.Prefix != "\x1b[1m" {
		t.Fatalf("mono headings should be bold only, got %q", st.HeadingMain.Prefix)
	}
	if st.LinkText.Prefix != "\x1b[4m" {
		t.Fatalf("mono link text should be underline only, got %q", st.LinkText.Prefix)
	}
}
