package pixel

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"os"
)

// ErrBounds is raised (as a panic) by the unchecked pixel primitives when [Debug] is enabled.
var ErrBounds = errors.New("pixel: coordinate out of bounds")

// Debug enables bounds assertions in the unchecked primitives. It is set when the
// MEMLCD_DEBUG environment variable is non-empty.
var Debug bool

func init() {
	Debug = os.Getenv("MEMLCD_DEBUG") != ""
}

// Buffer holds the pixel values.
type Buffer struct {
	// Rect is the image bounding box.
	Rect image.Rectangle

	// Pix are the image pixels.
	Pix []byte

	// Stride is the Pix stride (in bytes) between vertically adjacent pixels.
	Stride int
}

func (p *Buffer) Bounds() image.Rectangle {
	return p.Rect
}

// Fill overwrites every byte of the buffer with v.
func (p *Buffer) Fill(v byte) {
	for i := range p.Pix {
		p.Pix[i] = v
	}
}

// Row returns the packed bytes of row y.
func (p *Buffer) Row(y int) []byte {
	off := y * p.Stride
	return p.Pix[off : off+p.Stride]
}

func makeBuffer(w, h, stride, size int) Buffer {
	return Buffer{
		Rect:   image.Rect(0, 0, w, h),
		Pix:    make([]byte, size),
		Stride: stride,
	}
}

// MonoImage is a 1-bit per pixel monochrome image, MSB first, 0 is black.
type MonoImage struct {
	Buffer
}

// NewMonoImage returns an all-white image of w×h pixels.
func NewMonoImage(w, h int) *MonoImage {
	stride := ((w + 7) & ^7) / 8 // round up to whole bytes
	p := &MonoImage{
		Buffer: makeBuffer(w, h, stride, stride*h),
	}
	p.Clear()
	return p
}

func (p *MonoImage) ColorModel() color.Model {
	return MonoModel
}

func (p *MonoImage) PixOffset(x, y int) int {
	return y*p.Stride + x>>3
}

// Clear resets the image to the background color.
func (p *MonoImage) Clear() {
	p.Fill(0xff)
}

// FillColor fills the image with a single color.
func (p *MonoImage) FillColor(c color.Color) {
	if ToMono(c).On {
		p.Fill(0xff)
	} else {
		p.Fill(0x00)
	}
}

func (p *MonoImage) At(x, y int) color.Color {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return color.Transparent
	}
	return p.MonoAt(x, y)
}

// MonoAt returns the pixel at (x, y) without a bounds check.
func (p *MonoImage) MonoAt(x, y int) Mono {
	if Debug {
		p.assertIn(x, y)
	}
	return Mono{On: p.Pix[y*p.Stride+x>>3]&(0x80>>uint(x&7)) != 0}
}

func (p *MonoImage) Set(x, y int, c color.Color) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		return
	}
	p.SetPixel(x, y, ToMono(c))
}

// SetPixel sets the pixel at (x, y). The coordinates are not checked unless Debug is set.
func (p *MonoImage) SetPixel(x, y int, c Mono) {
	if Debug {
		p.assertIn(x, y)
	}
	var (
		index = y*p.Stride + x>>3
		mask  = byte(0x80) >> uint(x&7)
	)
	if c.On {
		p.Pix[index] |= mask
	} else {
		p.Pix[index] &^= mask
	}
}

func (p *MonoImage) assertIn(x, y int) {
	if !(image.Point{X: x, Y: y}).In(p.Rect) {
		panic(fmt.Errorf("%w: (%d,%d) not in %s", ErrBounds, x, y, p.Rect))
	}
}

// Interface checks.
var _ draw.Image = (*MonoImage)(nil)
