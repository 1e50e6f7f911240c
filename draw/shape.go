package draw

import (
	"github.com/BeatGlow/memlcd/pixel"
)

// Line draws a black line between (x1,y1) and (x2,y2), both end points included.
func Line(dst *pixel.MonoImage, x1, y1, x2, y2 int) {
	dx, dy := x2-x1, y2-y1

	switch {
	// Is line a point ?
	case dx == 0 && dy == 0:
		dst.SetPixel(x1, y1, pixel.Black)

	// Is line an horizontal ?
	case dy == 0:
		HorizontalRun(dst, x1, x2, 1, y1, pixel.Black)

	// Is line a vertical ?
	case dx == 0:
		VerticalRun(dst, x1, y1, y2, pixel.Black)

	default:
		// Fold the octant into step directions and absolute deltas.
		sx, sy := 1, 1
		if dx < 0 {
			sx, dx = -1, -dx
		}
		if dy < 0 {
			sy, dy = -1, -dy
		}
		if dx >= dy {
			// wider than high
			lineMajor(dst, x1, y1, x2, dx, dy, sx, sy, false)
		} else {
			// higher than wide
			lineMajor(dst, y1, x1, y2, dy, dx, sy, sx, true)
		}
		dst.SetPixel(x2, y2, pixel.Black)
	}
}

// lineMajor runs the integer error accumulator along the major axis from u towards end
// (exclusive). When swap is set, u is the y coordinate and v the x coordinate.
func lineMajor(dst *pixel.MonoImage, u, v, end, du, dv, su, sv int, swap bool) {
	e := du
	du, dv = 2*du, 2*dv
	for u != end {
		if swap {
			dst.SetPixel(v, u, pixel.Black)
		} else {
			dst.SetPixel(u, v, pixel.Black)
		}
		e -= dv
		if e < 0 {
			v += sv // diagonal movement
			e += du
		}
		u += su
	}
}

// midpoint calls fn for every point (x, y) of the first octant of a circle with the
// given radius, x >= y >= 0.
func midpoint(radius int, fn func(x, y int)) {
	var (
		x = radius
		y = 0
		d = 1 - x
	)
	for x >= y {
		fn(x, y)
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2 * (y - x + 1)
		}
	}
}

// Circle draws a black circle outline centered on (cx, cy). A negative radius draws nothing.
func Circle(dst *pixel.MonoImage, cx, cy, radius int) {
	midpoint(radius, func(x, y int) {
		dst.SetPixel(cx+x, cy+y, pixel.Black)
		dst.SetPixel(cx+y, cy+x, pixel.Black)
		dst.SetPixel(cx-x, cy+y, pixel.Black)
		dst.SetPixel(cx-y, cy+x, pixel.Black)
		dst.SetPixel(cx-x, cy-y, pixel.Black)
		dst.SetPixel(cx-y, cy-x, pixel.Black)
		dst.SetPixel(cx+x, cy-y, pixel.Black)
		dst.SetPixel(cx+y, cy-x, pixel.Black)
	})
}

// FillCircle draws a filled circle centered on (cx, cy).
func FillCircle(dst *pixel.MonoImage, cx, cy, radius int, c pixel.Mono) {
	filledCorners(dst, Rect{cx, cy, cx, cy}, radius, c)
}

// RoundedRect draws a rectangle outline with radius pixels rounded corners.
func RoundedRect(dst *pixel.MonoImage, r Rect, radius int, c pixel.Mono) {
	radius = clampRadius(r, radius)
	if radius == 0 {
		DrawRect(dst, r, c)
		return
	}

	HorizontalRun(dst, r.XMin+radius, r.XMax-radius, 1, r.YMin, c)
	HorizontalRun(dst, r.XMin+radius, r.XMax-radius, 1, r.YMax, c)
	VerticalRun(dst, r.XMin, r.YMin+radius, r.YMax-radius, c)
	VerticalRun(dst, r.XMax, r.YMin+radius, r.YMax-radius, c)

	var (
		x0 = r.XMin + radius
		x1 = r.XMax - radius
		y0 = r.YMin + radius
		y1 = r.YMax - radius
	)
	midpoint(radius, func(x, y int) {
		// top left
		dst.SetPixel(x0-x, y0-y, c)
		dst.SetPixel(x0-y, y0-x, c)
		// top right
		dst.SetPixel(x1+x, y0-y, c)
		dst.SetPixel(x1+y, y0-x, c)
		// bottom right
		dst.SetPixel(x1+x, y1+y, c)
		dst.SetPixel(x1+y, y1+x, c)
		// bottom left
		dst.SetPixel(x0-x, y1+y, c)
		dst.SetPixel(x0-y, y1+x, c)
	})
}

// RoundedBox draws a filled rectangle with radius pixels rounded corners.
func RoundedBox(dst *pixel.MonoImage, r Rect, radius int, c pixel.Mono) {
	radius = clampRadius(r, radius)
	if radius == 0 {
		FillRect(dst, r, c)
		return
	}
	FillRect(dst, Rect{r.XMin, r.YMin + radius, r.XMax, r.YMax - radius}, c)
	filledCorners(dst, Rect{r.XMin + radius, r.YMin + radius, r.XMax - radius, r.YMax - radius}, radius, c)
}

// filledCorners fills the rows of four quarter circles around the inner rectangle r,
// joining the left and right quarters of each row with one run.
func filledCorners(dst *pixel.MonoImage, r Rect, radius int, c pixel.Mono) {
	midpoint(radius, func(x, y int) {
		HorizontalRun(dst, r.XMin-x, r.XMax+x, 1, r.YMin-y, c)
		HorizontalRun(dst, r.XMin-x, r.XMax+x, 1, r.YMax+y, c)
		HorizontalRun(dst, r.XMin-y, r.XMax+y, 1, r.YMin-x, c)
		HorizontalRun(dst, r.XMin-y, r.XMax+y, 1, r.YMax+x, c)
	})
}

func clampRadius(r Rect, radius int) int {
	if radius < 0 {
		return 0
	}
	if m := (r.Dx() - 1) / 2; radius > m {
		radius = m
	}
	if m := (r.Dy() - 1) / 2; radius > m {
		radius = m
	}
	return radius
}
