package chatmark

import (
	"sort"
	"strings"

	"tolv.systems/chatmark/internal/palette"
)

// Style describes a terminal style as an ANSI prefix sequence.
type Style struct {
	Prefix string
}

// Styles groups the semantic styles used by the renderer.
type Styles struct {
	Text         Style
	HeadingMain  Style
	HeadingMajor Style
	Strong       Style
	Bullet       Style
	Number       Style
	LinkText     Style
	LinkURL      Style
}

// Theme provides named styles for chat transcript rendering.
type Theme interface {
	Name() string
	Styles() Styles
}

type theme struct {
	name   string
	styles Styles
}

func (t theme) Name() string   { return t.name }
func (t theme) Styles() Styles { return t.styles }

// NewTheme returns a Theme from a Styles definition.
func NewTheme(name string, styles Styles) Theme {
	return theme{name: name, styles: styles}
}

func style(prefixes ...string) Style {
	var b strings.Builder
	for _, p := range prefixes {
		if p != "" {
			b.WriteString(p)
		}
	}
	return Style{Prefix: b.String()}
}

func stylesFromPalette(p palette.Palette) Styles {
	return Styles{
		Text:         style(p.Text),
		HeadingMain:  style(palette.Bold, p.HeadingMain),
		HeadingMajor: style(palette.Bold, p.HeadingMajor),
		Strong:       style(palette.Bold, p.Strong),
		Bullet:       style(p.Bullet),
		Number:       style(p.Number),
		LinkText:     style(palette.Underline, p.LinkText),
		LinkURL:      style(p.LinkURL),
	}
}

var builtinThemes = map[string]Theme{
	"default": theme{name: "default", styles: stylesFromPalette(palette.PaletteDefault)},
	"ocean":   theme{name: "ocean", styles: stylesFromPalette(palette.PaletteOcean)},
	"ember":   theme{name: "ember", styles: stylesFromPalette(palette.PaletteEmber)},
	"dim":     theme{name: "dim", styles: stylesFromPalette(palette.PaletteDim)},
	"mono":    theme{name: "mono", styles: stylesFromPalette(palette.PaletteMono)},
}

// AvailableThemes returns the names of built-in themes.
func AvailableThemes() []string {
	names := make([]string, 0, len(builtinThemes))
	for name := range builtinThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// ThemeByName returns a built-in theme by name.
func ThemeByName(name string) (Theme, bool) {
	if name == "" {
		return builtinThemes["default"], true
	}
	normalized := strings.ToLower(strings.TrimSpace(name))
	theme, ok := builtinThemes[normalized]
	return theme, ok
}

// DefaultTheme returns the default built-in theme.
func DefaultTheme() Theme {
	return builtinThemes["default"]
}
