package draw

import (
	"fmt"
	"image"
)

// Rect is a rectangle with inclusive bounds: both XMin and XMax are drawn, along with
// YMin and YMax. Callers must keep XMin <= XMax and YMin <= YMax.
type Rect struct {
	XMin, YMin int
	XMax, YMax int
}

// RectFrom converts a half-open [image.Rectangle] to a [Rect].
func RectFrom(r image.Rectangle) Rect {
	return Rect{
		XMin: r.Min.X,
		YMin: r.Min.Y,
		XMax: r.Max.X - 1,
		YMax: r.Max.Y - 1,
	}
}

// Image returns r as a half-open [image.Rectangle].
func (r Rect) Image() image.Rectangle {
	return image.Rect(r.XMin, r.YMin, r.XMax+1, r.YMax+1)
}

// Dx is the number of columns covered by r.
func (r Rect) Dx() int { return r.XMax - r.XMin + 1 }

// Dy is the number of rows covered by r.
func (r Rect) Dy() int { return r.YMax - r.YMin + 1 }

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d)-(%d,%d)", r.XMin, r.YMin, r.XMax, r.YMax)
}
