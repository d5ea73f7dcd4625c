// Package palette defines the ANSI SGR building blocks chatmark themes are
// assembled from.
package palette

import "strconv"

// SGR attribute prefixes.
const (
	Reset     = "\x1b[0m"
	Bold      = "\x1b[1m"
	Dim       = "\x1b[2m"
	Italic    = "\x1b[3m"
	Underline = "\x1b[4m"
)

// Palette carries the per-slot color prefixes a theme builds its styles
// from. An empty slot renders unstyled.
type Palette struct {
	Text         string
	HeadingMain  string
	HeadingMajor string
	Strong       string
	Bullet       string
	Number       string
	LinkText     string
	LinkURL      string
}

// Color256 returns the SGR prefix selecting color n of the 256-color table.
func Color256(n int) string {
	return "\x1b[38;5;" + strconv.Itoa(n) + "m"
}

var (
	// PaletteDefault is a restrained dark-background palette.
	PaletteDefault = Palette{
		HeadingMain:  Color256(81),
		HeadingMajor: Color256(75),
		Bullet:       Color256(245),
		Number:       Color256(245),
		LinkText:     Color256(110),
		LinkURL:      Color256(244),
	}

	// PaletteOcean leans blue and green.
	PaletteOcean = Palette{
		HeadingMain:  Color256(45),
		HeadingMajor: Color256(39),
		Strong:       Color256(87),
		Bullet:       Color256(66),
		Number:       Color256(66),
		LinkText:     Color256(43),
		LinkURL:      Color256(244),
	}

	// PaletteEmber is a warm palette for light-on-dark terminals.
	PaletteEmber = Palette{
		HeadingMain:  Color256(208),
		HeadingMajor: Color256(214),
		Strong:       Color256(220),
		Bullet:       Color256(137),
		Number:       Color256(137),
		LinkText:     Color256(173),
		LinkURL:      Color256(244),
	}

	// PaletteDim keeps block structure visible without color contrast.
	PaletteDim = Palette{
		Bullet:  Dim,
		Number:  Dim,
		LinkURL: Dim,
	}

	// PaletteMono relies on attributes only.
	PaletteMono = Palette{}
)
