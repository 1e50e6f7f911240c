package draw

import (
	"bytes"
	"image"
	"math/rand"
	"testing"

	"github.com/BeatGlow/memlcd/pixel"
)

func testRandomImage(w, h int) *pixel.MonoImage {
	i := pixel.NewMonoImage(w, h)
	rand.Read(i.Pix)
	return i
}

func testClone(i *pixel.MonoImage) *pixel.MonoImage {
	c := pixel.NewMonoImage(i.Rect.Dx(), i.Rect.Dy())
	copy(c.Pix, i.Pix)
	return c
}

// blackPixels returns the set of black pixels in i.
func blackPixels(i *pixel.MonoImage) map[image.Point]bool {
	set := make(map[image.Point]bool)
	for y := 0; y < i.Rect.Dy(); y++ {
		for x := 0; x < i.Rect.Dx(); x++ {
			if i.MonoAt(x, y) == pixel.Black {
				set[image.Pt(x, y)] = true
			}
		}
	}
	return set
}

func TestHorizontalRun(t *testing.T) {
	const w, h = 32, 4
	for _, c := range []pixel.Mono{pixel.Black, pixel.White} {
		for thickness := 1; thickness <= 3; thickness++ {
			for x1 := 0; x1 < w; x1++ {
				for x2 := 0; x2 < w; x2++ {
					var (
						got  = testRandomImage(w, h)
						want = testClone(got)
					)
					HorizontalRun(got, x1, x2, thickness, 1, c)

					lo, hi := min(x1, x2), max(x1, x2)
					for y := 1; y < 1+thickness; y++ {
						for x := lo; x <= hi; x++ {
							want.SetPixel(x, y, c)
						}
					}
					if !bytes.Equal(got.Pix, want.Pix) {
						t.Fatalf("HorizontalRun(%d, %d, %d, 1, %s):\n got %x\nwant %x", x1, x2, thickness, c, got.Pix, want.Pix)
					}
				}
			}
		}
	}
}

func TestHorizontalRunZeroThickness(t *testing.T) {
	i := pixel.NewMonoImage(16, 2)
	HorizontalRun(i, 0, 15, 0, 0, pixel.Black)
	for _, b := range i.Pix {
		if b != 0xff {
			t.Fatalf("expected untouched image, got %x", i.Pix)
		}
	}
}

func TestVerticalRun(t *testing.T) {
	const w, h = 16, 12
	for _, c := range []pixel.Mono{pixel.Black, pixel.White} {
		for x := 0; x < w; x++ {
			for y1 := 0; y1 < h; y1++ {
				for y2 := 0; y2 < h; y2++ {
					var (
						got  = testRandomImage(w, h)
						want = testClone(got)
					)
					VerticalRun(got, x, y1, y2, c)
					for y := min(y1, y2); y <= max(y1, y2); y++ {
						want.SetPixel(x, y, c)
					}
					if !bytes.Equal(got.Pix, want.Pix) {
						t.Fatalf("VerticalRun(%d, %d, %d, %s) mismatch", x, y1, y2, c)
					}
				}
			}
		}
	}
}

func TestFillRect(t *testing.T) {
	const w, h = 24, 6
	for _, c := range []pixel.Mono{pixel.Black, pixel.White} {
		for xMin := 0; xMin < w; xMin++ {
			for xMax := xMin; xMax < w; xMax++ {
				r := Rect{XMin: xMin, YMin: 1, XMax: xMax, YMax: 4}
				var (
					got  = testRandomImage(w, h)
					want = testClone(got)
				)
				FillRect(got, r, c)
				for y := r.YMin; y <= r.YMax; y++ {
					for x := r.XMin; x <= r.XMax; x++ {
						want.SetPixel(x, y, c)
					}
				}
				if !bytes.Equal(got.Pix, want.Pix) {
					t.Fatalf("FillRect(%s, %s) mismatch", r, c)
				}
			}
		}
	}
}

func TestFillRectRestore(t *testing.T) {
	i := pixel.NewMonoImage(96, 96)
	for _, r := range []Rect{
		{0, 0, 95, 95},
		{10, 10, 20, 20},
		{3, 7, 4, 90},
		{9, 9, 9, 9},
	} {
		FillRect(i, r, pixel.Black)
		FillRect(i, r, pixel.White)
		for j, b := range i.Pix {
			if b != 0xff {
				t.Fatalf("%s: byte %d is %#02x after restore", r, j, b)
			}
		}
	}
}

func TestFillRectScenario(t *testing.T) {
	i := pixel.NewMonoImage(96, 96)
	i.Fill(0xff)

	FillRect(i, Rect{10, 10, 20, 20}, pixel.Black)
	row := i.Row(10)
	// Column 10 sits at bit offset 2: the mask 0x3f is cleared, columns 8 and 9 stay white.
	if v := row[1]; v != 0xc0 {
		t.Errorf("expected byte 1 to be 0xc0, got %#02x", v)
	}
	// Columns 16..20 are black, 21..23 white.
	if v := row[2]; v != 0x07 {
		t.Errorf("expected byte 2 to be 0x07, got %#02x", v)
	}
	if v := i.Row(9)[1]; v != 0xff {
		t.Errorf("expected row 9 untouched, got %#02x", v)
	}

	FillRect(i, Rect{10, 30, 30, 31}, pixel.Black)
	if v := i.Row(30)[2]; v != 0x00 {
		t.Errorf("expected interior byte to be 0x00, got %#02x", v)
	}
	if v := i.Row(31)[3]; v != 0x01 {
		t.Errorf("expected last byte to be 0x01, got %#02x", v)
	}
}

func TestDrawRect(t *testing.T) {
	i := pixel.NewMonoImage(32, 32)
	r := Rect{3, 4, 20, 17}
	DrawRect(i, r, pixel.Black)

	for y := 0; y < 32; y++ {
		for x := 0; x < 32; x++ {
			onEdge := (x == r.XMin || x == r.XMax) && y >= r.YMin && y <= r.YMax ||
				(y == r.YMin || y == r.YMax) && x >= r.XMin && x <= r.XMax
			if got := i.MonoAt(x, y) == pixel.Black; got != onEdge {
				t.Fatalf("pixel (%d,%d): black=%t, want %t", x, y, got, onEdge)
			}
		}
	}
}

func TestRect(t *testing.T) {
	ir := image.Rect(2, 3, 10, 4)
	r := RectFrom(ir)
	if want := (Rect{2, 3, 9, 3}); r != want {
		t.Errorf("expected %s, got %s", want, r)
	}
	if r.Image() != ir {
		t.Errorf("expected %s, got %s", ir, r.Image())
	}
	if r.Dx() != 8 || r.Dy() != 1 {
		t.Errorf("expected 8x1, got %dx%d", r.Dx(), r.Dy())
	}
}
