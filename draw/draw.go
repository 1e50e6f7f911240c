// Package draw implements the drawing primitives for packed monochrome images.
//
// The primitives operate directly on the bytes of a [pixel.MonoImage] and assume all
// coordinates are inside the image; out of range coordinates are a caller error. Enable
// [pixel.Debug] to turn such errors into descriptive panics.
package draw

import (
	"image"

	"github.com/BeatGlow/memlcd/pixel"
)

// Overlay draws the dark, opaque pixels of src as black, with src.Bounds().Min placed
// at pt. Light and transparent pixels leave dst untouched. Pixels falling outside dst
// are dropped.
func Overlay(dst *pixel.MonoImage, pt image.Point, src image.Image) {
	var (
		sb = src.Bounds()
		r  = sb.Sub(sb.Min).Add(pt).Intersect(dst.Rect)
	)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		for x := r.Min.X; x < r.Max.X; x++ {
			c := src.At(sb.Min.X+x-pt.X, sb.Min.Y+y-pt.Y)
			if _, _, _, a := c.RGBA(); a < 0x8000 {
				continue
			}
			if !pixel.ToMono(c).On {
				dst.SetPixel(x, y, pixel.Black)
			}
		}
	}
}
