// Package termcore implements the terminal rendering core of a local AI
// companion application: a layered, dirty-tracked framebuffer compositor,
// a breathing color palette, and a lazily-loaded avatar animation engine.
package termcore

// Color is a compact named-color enum. Values 0-9 are named colors;
// a cell that needs 24-bit color sets the parallel *RGB field instead.
type Color uint8

const (
	ColorNone    Color = iota // no color set (transparent contribution)
	ColorDefault              // terminal default
	ColorBlack
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
)

// NameToColor converts a configuration-file color name to a Color.
var NameToColor = map[string]Color{
	"default": ColorDefault,
	"black":   ColorBlack,
	"red":     ColorRed,
	"green":   ColorGreen,
	"yellow":  ColorYellow,
	"blue":    ColorBlue,
	"magenta": ColorMagenta,
	"cyan":    ColorCyan,
	"white":   ColorWhite,
}

// RGB is a 24-bit true color triple.
type RGB struct {
	R, G, B uint8
}

// Lerp linearly interpolates between a and b by t in [0, 1].
func Lerp(a, b RGB, t float64) RGB {
	return RGB{
		R: lerpByte(a.R, b.R, t),
		G: lerpByte(a.G, b.G, t),
		B: lerpByte(a.B, b.B, t),
	}
}

func lerpByte(a, b uint8, t float64) uint8 {
	v := float64(a) + (float64(b)-float64(a))*t
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}

// Style holds the styling attributes of a Cell: the bits spec.md names
// explicitly (bold, dim, underline, reverse) plus foreground/background
// color, either named or 24-bit.
type Style struct {
	Color      Color
	Background Color
	Bold       bool
	Dim        bool
	Underline  bool
	Inverse    bool

	ColorRGB      *RGB
	BackgroundRGB *RGB
}

// EmptyStyle is a Style with no attributes set.
var EmptyStyle = Style{}

// Equal returns true if two Styles are identical.
func (a Style) Equal(b Style) bool {
	if a.Color != b.Color || a.Background != b.Background {
		return false
	}
	if a.Bold != b.Bold || a.Dim != b.Dim || a.Underline != b.Underline || a.Inverse != b.Inverse {
		return false
	}
	if !rgbEqual(a.ColorRGB, b.ColorRGB) {
		return false
	}
	return rgbEqual(a.BackgroundRGB, b.BackgroundRGB)
}

func rgbEqual(a, b *RGB) bool {
	if a == nil && b == nil {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	return *a == *b
}

// HasColor reports whether the style carries a foreground color.
func (s Style) HasColor() bool {
	return s.Color != ColorNone || s.ColorRGB != nil
}

// HasBackground reports whether the style carries a background color.
func (s Style) HasBackground() bool {
	return s.Background != ColorNone || s.BackgroundRGB != nil
}

// Merge returns a new Style combining base with overlay; overlay wins
// for every attribute it sets. An overlay's ColorRGB/BackgroundRGB is
// taken only together with a non-None Color/Background.
func (base Style) Merge(overlay Style) Style {
	result := base

	if overlay.Color != ColorNone {
		result.Color = overlay.Color
		result.ColorRGB = overlay.ColorRGB
	}
	if overlay.Background != ColorNone {
		result.Background = overlay.Background
		result.BackgroundRGB = overlay.BackgroundRGB
	}
	if overlay.Bold {
		result.Bold = true
	}
	if overlay.Dim {
		result.Dim = true
	}
	if overlay.Underline {
		result.Underline = true
	}
	if overlay.Inverse {
		result.Inverse = true
	}
	return result
}

// Cell is the atomic display primitive: one terminal character position.
type Cell struct {
	Char  rune
	Style Style
}

// Blank is the transparent cell: a space with no styling. Blitting and
// merging treat Blank specially — see Buffer.Merge.
var Blank = Cell{Char: ' ', Style: EmptyStyle}

// NewCell constructs a Cell.
func NewCell(char rune, style Style) Cell {
	return Cell{Char: char, Style: style}
}

// Equal reports whether two cells are identical in every attribute.
func (a Cell) Equal(b Cell) bool {
	return a.Char == b.Char && a.Style.Equal(b.Style)
}

// IsBlank reports whether this cell is the transparent sentinel.
func (a Cell) IsBlank() bool {
	return a.Equal(Blank)
}
