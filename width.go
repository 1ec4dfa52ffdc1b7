package termcore

import (
	"github.com/clipperhouse/uax29/v2/graphemes"
	"github.com/mattn/go-runewidth"
)

// CellWidth returns the number of terminal columns a rune occupies.
// Combining marks are zero-width, most BMP glyphs are one column, and
// wide CJK/emoji glyphs are two columns.
func CellWidth(r rune) int {
	return runewidth.RuneWidth(r)
}

// StringWidth returns the total column width of s.
func StringWidth(s string) int {
	return runewidth.StringWidth(s)
}

// SegmentGraphemes splits s into user-perceived grapheme clusters, so
// that word-wrapping never breaks a multi-codepoint emoji sequence or a
// base rune and its combining marks across two cells.
//
// Each returned cluster is written to the Buffer using its first rune as
// the Cell's Char — matching spec.md's "a grapheme (usually one Unicode
// scalar)" cell model — while the cluster boundary itself is what keeps
// wrapping decisions correct.
func SegmentGraphemes(s string) []string {
	segs := graphemes.FromString(s)
	clusters := make([]string, 0, len(s))
	for segs.Next() {
		clusters = append(clusters, segs.Value())
	}
	return clusters
}

// GraphemeWidth returns the display width of a single grapheme cluster,
// using the width of its base rune.
func GraphemeWidth(cluster string) int {
	for _, r := range cluster {
		return CellWidth(r)
	}
	return 0
}
