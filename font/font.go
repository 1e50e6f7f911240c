// Package font provides the glyph bitmaps used by the text renderer.
//
// A [Source] yields, for a rune and a [Selector], a [Glyph]: a row-major, MSB-first,
// one bit per pixel bitmap padded to whole bytes per row, together with its metrics.
// Glyphs can be produced from any [golang.org/x/image/font.Face], including the
// built-in [basicfont] faces and TrueType fonts loaded with freetype.
package font

import (
	"errors"
	"fmt"
)

// ErrNoGlyph is returned when a source can not render a rune.
var ErrNoGlyph = errors.New("font: no glyph")

// Selector picks one of the faces of a [Source].
type Selector uint8

// Supported selectors.
const (
	Small Selector = iota
	Medium
	Large
)

func (s Selector) String() string {
	switch s {
	case Small:
		return "small"
	case Medium:
		return "medium"
	case Large:
		return "large"
	default:
		return fmt.Sprintf("Selector(%d)", uint8(s))
	}
}

// Glyph is a single character bitmap plus its metrics.
type Glyph struct {
	// Height is the number of bitmap rows.
	Height int

	// WidthInBytes is the number of bytes per bitmap row.
	WidthInBytes int

	// Width is the advance of the glyph in pixels.
	Width int

	// Bitmap holds Height rows of WidthInBytes bytes, MSB is the leftmost pixel.
	Bitmap []byte
}

// Set reports whether the pixel at (x, y) of the glyph is inked.
func (g Glyph) Set(x, y int) bool {
	return g.Bitmap[y*g.WidthInBytes+x>>3]&(0x80>>uint(x&7)) != 0
}

// Source is the capability to fetch glyphs.
type Source interface {
	Glyph(r rune, sel Selector) (Glyph, error)
}
