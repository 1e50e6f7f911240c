package font

import (
	"fmt"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gomono"
)

// DefaultSizes are the point sizes (at 72 DPI) used for each selector when none are given.
var DefaultSizes = map[Selector]float64{
	Small:  10,
	Medium: 14,
	Large:  20,
}

// ParseTrueType parses a TrueType font and returns a source with one face per selector
// in sizes. A nil sizes uses [DefaultSizes].
func ParseTrueType(ttf []byte, sizes map[Selector]float64) (*FaceSource, error) {
	f, err := truetype.Parse(ttf)
	if err != nil {
		return nil, fmt.Errorf("font: parse TrueType: %w", err)
	}
	if sizes == nil {
		sizes = DefaultSizes
	}

	faces := make(map[Selector]font.Face, len(sizes))
	for sel, size := range sizes {
		faces[sel] = truetype.NewFace(f, &truetype.Options{
			Size:    size,
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	return NewFaceSource(faces), nil
}

// GoMono returns a source rendering the Go Mono font.
func GoMono(sizes map[Selector]float64) (*FaceSource, error) {
	return ParseTrueType(gomono.TTF, sizes)
}
