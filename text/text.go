// Package text blits glyphs from a [font.Source] onto a packed monochrome image and
// keeps the text cursor.
package text

import (
	"errors"
	"fmt"

	"github.com/BeatGlow/memlcd/font"
	"github.com/BeatGlow/memlcd/pixel"
)

// Cursor is the position of the top left pixel of the next glyph.
type Cursor struct {
	Col int
	Row int
}

// Margins control where text starts and how it wraps.
type Margins struct {
	// Origin is the cursor position set by [Renderer.Home].
	Origin Cursor

	// Left is the column the cursor returns to on wrap.
	Left int

	// Right is the number of pixels kept free at the right display edge.
	Right int

	// LineGap is the number of blank rows between text lines.
	LineGap int
}

// DefaultMargins lay text out for a 96x96 watch face.
var DefaultMargins = Margins{
	Origin:  Cursor{Col: 2, Row: 5},
	Left:    5,
	Right:   3,
	LineGap: 2,
}

// Renderer draws text into Dst. It is not safe for concurrent use.
type Renderer struct {
	Dst     *pixel.MonoImage
	Font    font.Source
	Cursor  Cursor
	Margins Margins
}

// NewRenderer returns a renderer with [DefaultMargins] and the cursor at the origin.
func NewRenderer(dst *pixel.MonoImage, src font.Source) *Renderer {
	return &Renderer{
		Dst:     dst,
		Font:    src,
		Cursor:  DefaultMargins.Origin,
		Margins: DefaultMargins,
	}
}

// Home moves the cursor back to the origin.
func (t *Renderer) Home() {
	t.Cursor = t.Margins.Origin
}

// MoveTo moves the cursor.
func (t *Renderer) MoveTo(col, row int) {
	t.Cursor = Cursor{Col: col, Row: row}
}

// DrawChar blits the glyph of r at the cursor and advances the cursor. Only the inked
// bits of the glyph are drawn; pixels falling outside the image are dropped. If the font
// has no glyph for r, the glyph of its base letter is used (e for é).
func (t *Renderer) DrawChar(r rune, sel font.Selector) error {
	g, err := t.glyph(r, sel)
	if err != nil {
		return err
	}
	t.blit(g)
	t.advance(g)
	return nil
}

// DrawString draws s one rune at a time. The cursor carries over between calls. Runes
// without a glyph are skipped and reported together once the string is drawn.
func (t *Renderer) DrawString(s string, sel font.Selector) error {
	var errs []error
	for _, r := range s {
		if err := t.DrawChar(r, sel); err != nil {
			errs = append(errs, fmt.Errorf("text: rune %q: %w", r, err))
		}
	}
	return errors.Join(errs...)
}

func (t *Renderer) glyph(r rune, sel font.Selector) (font.Glyph, error) {
	g, err := t.Font.Glyph(r, sel)
	if !errors.Is(err, font.ErrNoGlyph) {
		return g, err
	}
	base := []rune(font.Fold(string(r)))
	if len(base) != 1 || base[0] == r {
		return g, err
	}
	return t.Font.Glyph(base[0], sel)
}

func (t *Renderer) blit(g font.Glyph) {
	var (
		bounds = t.Dst.Bounds()
		bitmap = g.Bitmap
	)
	for y := 0; y < g.Height; y++ {
		dy := t.Cursor.Row + y
		row := bitmap[:g.WidthInBytes]
		bitmap = bitmap[g.WidthInBytes:]
		if dy < bounds.Min.Y || dy >= bounds.Max.Y {
			continue
		}

		mask := byte(0x80)
		for x, i := 0, 0; x < g.WidthInBytes*8; x++ {
			if row[i]&mask != 0 {
				if dx := t.Cursor.Col + x; dx >= bounds.Min.X && dx < bounds.Max.X {
					t.Dst.SetPixel(dx, dy, pixel.Black)
				}
			}
			if mask >>= 1; mask == 0 {
				mask = 0x80
				i++
			}
		}
	}
}

func (t *Renderer) advance(g font.Glyph) {
	if t.Cursor.Col+g.Width+t.Margins.Right > t.Dst.Bounds().Dx() {
		t.Cursor.Col = t.Margins.Left
		t.Cursor.Row += g.Height + t.Margins.LineGap
	} else {
		t.Cursor.Col += g.Width
	}
}
