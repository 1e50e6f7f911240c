package font

import (
	"fmt"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// DefaultThreshold is the minimum mask alpha (out of 0xffff) that inks a pixel.
const DefaultThreshold = 0x8000

type glyphKey struct {
	r   rune
	sel Selector
}

// FaceSource rasterizes glyphs from [font.Face] values and caches the result.
type FaceSource struct {
	// Threshold is the minimum alpha that inks a pixel.
	Threshold uint32

	mu    sync.Mutex
	faces map[Selector]font.Face
	cache map[glyphKey]Glyph
}

// NewFaceSource returns a source for faces. A selector without a face falls back to
// the face of the nearest smaller selector, then to the nearest larger one.
func NewFaceSource(faces map[Selector]font.Face) *FaceSource {
	s := &FaceSource{
		Threshold: DefaultThreshold,
		faces:     make(map[Selector]font.Face, len(faces)),
		cache:     make(map[glyphKey]Glyph),
	}
	for sel, face := range faces {
		s.faces[sel] = face
	}
	return s
}

// Basic returns a source that renders every selector with [basicfont.Face7x13].
func Basic() *FaceSource {
	return NewFaceSource(map[Selector]font.Face{
		Small: basicfont.Face7x13,
	})
}

func (s *FaceSource) face(sel Selector) font.Face {
	for i := int(sel); i >= 0; i-- {
		if face, ok := s.faces[Selector(i)]; ok {
			return face
		}
	}
	for i := int(sel) + 1; i <= int(Large); i++ {
		if face, ok := s.faces[Selector(i)]; ok {
			return face
		}
	}
	return nil
}

// Glyph implements [Source].
func (s *FaceSource) Glyph(r rune, sel Selector) (Glyph, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := glyphKey{r, sel}
	if g, ok := s.cache[key]; ok {
		return g, nil
	}

	face := s.face(sel)
	if face == nil {
		return Glyph{}, fmt.Errorf("%w: no face for %s", ErrNoGlyph, sel)
	}
	g, err := rasterize(face, r, s.Threshold)
	if err != nil {
		return Glyph{}, err
	}
	s.cache[key] = g
	return g, nil
}

// rasterize draws r with its top line at y=0 and packs the mask into a Glyph.
func rasterize(face font.Face, r rune, threshold uint32) (Glyph, error) {
	var (
		m      = face.Metrics()
		ascent = m.Ascent.Ceil()
		height = max(m.Height.Ceil(), (m.Ascent + m.Descent).Ceil())
	)
	dr, mask, mp, advance, ok := face.Glyph(fixed.P(0, ascent), r)
	if !ok {
		return Glyph{}, fmt.Errorf("%w for %q", ErrNoGlyph, r)
	}

	g := Glyph{
		Height: height,
		Width:  advance.Ceil(),
	}
	g.WidthInBytes = (g.Width + 7) / 8
	g.Bitmap = make([]byte, g.WidthInBytes*g.Height)
	if mask == nil {
		return g, nil
	}

	for y := max(dr.Min.Y, 0); y < min(dr.Max.Y, g.Height); y++ {
		for x := max(dr.Min.X, 0); x < min(dr.Max.X, g.Width); x++ {
			_, _, _, a := mask.At(mp.X+x-dr.Min.X, mp.Y+y-dr.Min.Y).RGBA()
			if a >= threshold {
				g.Bitmap[y*g.WidthInBytes+x>>3] |= 0x80 >> uint(x&7)
			}
		}
	}
	return g, nil
}
