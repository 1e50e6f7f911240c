package draw

import (
	"fmt"
	"image"

	"github.com/BeatGlow/memlcd/pixel"
)

// edges returns the byte span of columns [x1, x2] (in any order) and the masks of the
// pixels covered inside the first and last byte.
func edges(x1, x2 int) (lo, hi int, first, last byte) {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	return x1 >> 3, x2 >> 3, byte(0xff) >> uint(x1&7), byte(0xff) << uint(7-(x2&7))
}

// span paints the columns described by edges into one packed row.
func span(row []byte, lo, hi int, first, last byte, c pixel.Mono) {
	if lo == hi {
		mask := first & last
		if c.On {
			row[lo] |= mask
		} else {
			row[lo] &^= mask
		}
		return
	}

	var fill byte
	if c.On {
		row[lo] |= first
		row[hi] |= last
		fill = 0xff
	} else {
		row[lo] &^= first
		row[hi] &^= last
	}
	for i := lo + 1; i < hi; i++ {
		row[i] = fill
	}
}

// HorizontalRun draws columns x1 through x2 (inclusive, in any order) on thickness
// consecutive rows starting at y. Whole bytes are written at once.
func HorizontalRun(dst *pixel.MonoImage, x1, x2, thickness, y int, c pixel.Mono) {
	if pixel.Debug && thickness > 0 {
		assertIn(dst, x1, y)
		assertIn(dst, x2, y+thickness-1)
	}
	lo, hi, first, last := edges(x1, x2)
	for j := 0; j < thickness; j++ {
		span(dst.Row(y+j), lo, hi, first, last, c)
	}
}

// VerticalRun draws rows y1 through y2 (inclusive, in any order) of column x.
func VerticalRun(dst *pixel.MonoImage, x, y1, y2 int, c pixel.Mono) {
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	if pixel.Debug {
		assertIn(dst, x, y1)
		assertIn(dst, x, y2)
	}
	var (
		index = y1*dst.Stride + x>>3
		mask  = byte(0x80) >> uint(x&7)
	)
	for y := y1; y <= y2; y++ {
		if c.On {
			dst.Pix[index] |= mask
		} else {
			dst.Pix[index] &^= mask
		}
		index += dst.Stride
	}
}

// FillRect fills r (inclusive bounds) with c.
func FillRect(dst *pixel.MonoImage, r Rect, c pixel.Mono) {
	if pixel.Debug {
		assertIn(dst, r.XMin, r.YMin)
		assertIn(dst, r.XMax, r.YMax)
	}
	lo, hi, first, last := edges(r.XMin, r.XMax)
	for y := r.YMin; y <= r.YMax; y++ {
		span(dst.Row(y), lo, hi, first, last, c)
	}
}

// DrawRect draws the outline of r (inclusive bounds); the interior is left untouched.
func DrawRect(dst *pixel.MonoImage, r Rect, c pixel.Mono) {
	HorizontalRun(dst, r.XMin, r.XMax, 1, r.YMin, c)
	HorizontalRun(dst, r.XMin, r.XMax, 1, r.YMax, c)
	VerticalRun(dst, r.XMin, r.YMin, r.YMax, c)
	VerticalRun(dst, r.XMax, r.YMin, r.YMax, c)
}

func assertIn(dst *pixel.MonoImage, x, y int) {
	if !(image.Point{X: x, Y: y}).In(dst.Rect) {
		panic(fmt.Errorf("%w: (%d,%d) not in %s", pixel.ErrBounds, x, y, dst.Rect))
	}
}
