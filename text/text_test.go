package text

import (
	"errors"
	"image"
	"testing"

	"github.com/BeatGlow/memlcd/font"
	"github.com/BeatGlow/memlcd/pixel"
)

// testFont renders every known rune with the same glyph.
type testFont struct {
	glyph font.Glyph
	known string
	calls []font.Selector
	runes []rune
}

func (f *testFont) Glyph(r rune, sel font.Selector) (font.Glyph, error) {
	f.calls = append(f.calls, sel)
	f.runes = append(f.runes, r)
	for _, k := range f.known {
		if k == r {
			return f.glyph, nil
		}
	}
	return font.Glyph{}, font.ErrNoGlyph
}

// X.X.
// .X..
var testGlyph = font.Glyph{
	Height:       2,
	WidthInBytes: 1,
	Width:        4,
	Bitmap:       []byte{0b1010_0000, 0b0100_0000},
}

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

func TestDrawChar(t *testing.T) {
	dst := pixel.NewMonoImage(32, 16)
	src := &testFont{glyph: testGlyph, known: "a"}
	r := NewRenderer(dst, src)

	if err := r.DrawChar('a', font.Medium); err != nil {
		t.Fatal(err)
	}
	want := map[image.Point]bool{
		{2, 5}: true,
		{4, 5}: true,
		{3, 6}: true,
	}
	if got := blackPixels(dst); len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	} else {
		for p := range want {
			if !got[p] {
				t.Fatalf("expected %v, got %v", want, got)
			}
		}
	}
	if r.Cursor != (Cursor{Col: 6, Row: 5}) {
		t.Errorf("expected cursor (6,5), got %+v", r.Cursor)
	}
	if len(src.calls) != 1 || src.calls[0] != font.Medium {
		t.Errorf("expected one medium lookup, got %v", src.calls)
	}
}

func TestDrawCharOverlay(t *testing.T) {
	dst := pixel.NewMonoImage(16, 8)
	dst.SetPixel(3, 0, pixel.Black)
	r := NewRenderer(dst, &testFont{glyph: testGlyph, known: "a"})
	r.MoveTo(0, 0)
	if err := r.DrawChar('a', font.Small); err != nil {
		t.Fatal(err)
	}
	if dst.MonoAt(3, 0) != pixel.Black {
		t.Error("unset glyph bits must not erase the destination")
	}
}

func TestDrawCharWrap(t *testing.T) {
	dst := pixel.NewMonoImage(16, 32)
	r := NewRenderer(dst, &testFont{glyph: testGlyph, known: "a"})

	r.MoveTo(8, 5)
	_ = r.DrawChar('a', font.Small)
	// 8 + 4 + 3 <= 16
	if r.Cursor != (Cursor{Col: 12, Row: 5}) {
		t.Fatalf("expected cursor (12,5), got %+v", r.Cursor)
	}
	_ = r.DrawChar('a', font.Small)
	// 12 + 4 + 3 > 16: wrap to the left margin, one glyph height plus gap lower.
	if r.Cursor != (Cursor{Col: 5, Row: 9}) {
		t.Fatalf("expected cursor (5,9), got %+v", r.Cursor)
	}
	if dst.MonoAt(12, 5) != pixel.Black {
		t.Error("the wrapping glyph is drawn at its original position")
	}
}

func TestDrawStringCursorPersists(t *testing.T) {
	dst := pixel.NewMonoImage(96, 96)
	r := NewRenderer(dst, &testFont{glyph: testGlyph, known: "ab"})
	if err := r.DrawString("ab", font.Small); err != nil {
		t.Fatal(err)
	}
	if err := r.DrawString("ba", font.Small); err != nil {
		t.Fatal(err)
	}
	if r.Cursor != (Cursor{Col: 2 + 4*4, Row: 5}) {
		t.Fatalf("expected cursor (18,5), got %+v", r.Cursor)
	}
	r.Home()
	if r.Cursor != DefaultMargins.Origin {
		t.Fatalf("expected cursor at origin, got %+v", r.Cursor)
	}
}

func TestDrawStringMissingGlyph(t *testing.T) {
	dst := pixel.NewMonoImage(96, 96)
	r := NewRenderer(dst, &testFont{glyph: testGlyph, known: "a"})
	err := r.DrawString("a?a", font.Small)
	if !errors.Is(err, font.ErrNoGlyph) {
		t.Fatalf("expected ErrNoGlyph, got %v", err)
	}
	if r.Cursor.Col != 2+2*4 {
		t.Errorf("expected the missing rune to be skipped, cursor at %+v", r.Cursor)
	}
}

func TestDrawCharClipped(t *testing.T) {
	dst := pixel.NewMonoImage(8, 8)
	r := NewRenderer(dst, &testFont{glyph: testGlyph, known: "a"})
	r.MoveTo(6, 7)
	if err := r.DrawChar('a', font.Small); err != nil {
		t.Fatal(err)
	}
	want := map[image.Point]bool{{6, 7}: true}
	if got := blackPixels(dst); len(got) != 1 || !got[image.Pt(6, 7)] {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestDrawCharWide(t *testing.T) {
	dst := pixel.NewMonoImage(32, 8)
	wide := font.Glyph{
		Height:       1,
		WidthInBytes: 2,
		Width:        10,
		Bitmap:       []byte{0x81, 0x40},
	}
	r := NewRenderer(dst, &testFont{glyph: wide, known: "w"})
	r.MoveTo(0, 0)
	_ = r.DrawChar('w', font.Small)
	got := blackPixels(dst)
	for _, p := range []image.Point{{0, 0}, {7, 0}, {9, 0}} {
		if !got[p] {
			t.Errorf("expected %s to be black", p)
		}
	}
	if len(got) != 3 {
		t.Errorf("expected 3 pixels, got %v", got)
	}
}

func TestDrawStringBasicFont(t *testing.T) {
	dst := pixel.NewMonoImage(96, 96)
	r := NewRenderer(dst, font.Basic())
	if err := r.DrawString("Hé", font.Small); err != nil {
		t.Fatal(err)
	}
	if r.Cursor.Col != 2+7+7 {
		t.Errorf("expected cursor column 16, got %d", r.Cursor.Col)
	}
	got := blackPixels(dst)
	if len(got) == 0 {
		t.Fatal("nothing drawn")
	}
	for p := range got {
		if p.X < 2 || p.X >= 16 || p.Y < 5 || p.Y >= 5+13 {
			t.Fatalf("pixel %s outside the text box", p)
		}
	}
}

func TestDrawStringAccents(t *testing.T) {
	t.Run("glyph as written", func(t *testing.T) {
		src := &testFont{glyph: testGlyph, known: "é"}
		r := NewRenderer(pixel.NewMonoImage(32, 16), src)
		if err := r.DrawString("é", font.Small); err != nil {
			t.Fatal(err)
		}
		if string(src.runes) != "é" {
			t.Errorf("expected a single lookup of 'é', got %q", string(src.runes))
		}
	})

	t.Run("base letter", func(t *testing.T) {
		src := &testFont{glyph: testGlyph, known: "e"}
		r := NewRenderer(pixel.NewMonoImage(32, 16), src)
		if err := r.DrawString("é", font.Small); err != nil {
			t.Fatal(err)
		}
		if string(src.runes) != "ée" {
			t.Errorf("expected lookups of 'é' then 'e', got %q", string(src.runes))
		}
		if r.Cursor.Col != 2+4 {
			t.Errorf("expected cursor column 6, got %d", r.Cursor.Col)
		}
	})

	t.Run("missing", func(t *testing.T) {
		src := &testFont{glyph: testGlyph, known: "a"}
		r := NewRenderer(pixel.NewMonoImage(32, 16), src)
		if err := r.DrawString("é", font.Small); !errors.Is(err, font.ErrNoGlyph) {
			t.Fatalf("expected ErrNoGlyph, got %v", err)
		}
	})
}
