package renderer

import (
	"image"
	"image/color"
	"math"
)

// point is a screen position in pixels
type point struct {
	X, Y float64
}

// fillConvex fills a convex polygon given in either winding order.
// Pixels whose centers fall inside are painted opaque.
func fillConvex(dst *image.RGBA, poly []point, c color.RGBA) {
	if len(poly) < 3 {
		return
	}

	minY, maxY := poly[0].Y, poly[0].Y
	for _, p := range poly[1:] {
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	b := dst.Rect
	y0 := max(int(math.Ceil(minY-0.5)), b.Min.Y)
	y1 := min(int(math.Floor(maxY-0.5)), b.Max.Y-1)

	for y := y0; y <= y1; y++ {
		sy := float64(y) + 0.5
		left, right := math.Inf(1), math.Inf(-1)

		for i := range poly {
			a, e := poly[i], poly[(i+1)%len(poly)]
			if (a.Y <= sy && e.Y > sy) || (e.Y <= sy && a.Y > sy) {
				x := a.X + (sy-a.Y)*(e.X-a.X)/(e.Y-a.Y)
				left = math.Min(left, x)
				right = math.Max(right, x)
			}
		}
		if left > right {
			continue
		}

		x0 := max(int(math.Ceil(left-0.5)), b.Min.X)
		x1 := min(int(math.Floor(right-0.5)), b.Max.X-1)
		if x0 > x1 {
			continue
		}

		row := dst.Pix[dst.PixOffset(x0, y):dst.PixOffset(x1, y)+4]
		for i := 0; i < len(row); i += 4 {
			row[i], row[i+1], row[i+2], row[i+3] = c.R, c.G, c.B, 255
		}
	}
}

// blendPixel mixes c over the pixel at (x, y) with alpha a in [0,1]
func blendPixel(dst *image.RGBA, x, y int, c color.RGBA, a float64) {
	if !(image.Point{X: x, Y: y}).In(dst.Rect) || a <= 0 {
		return
	}
	i := dst.PixOffset(x, y)
	p := dst.Pix[i : i+4 : i+4]
	p[0] = uint8(lerp(float64(p[0]), float64(c.R), a) + 0.5)
	p[1] = uint8(lerp(float64(p[1]), float64(c.G), a) + 0.5)
	p[2] = uint8(lerp(float64(p[2]), float64(c.B), a) + 0.5)
	p[3] = 255
}

// shade scales a color and mixes it toward fog
func shade(c color.RGBA, light float64, fog color.RGBA, f float64) color.RGBA {
	mix := func(a, b uint8) uint8 {
		v := lerp(float64(a)*light, float64(b), f)
		return uint8(math.Min(255, math.Max(0, v+0.5)))
	}
	return color.RGBA{R: mix(c.R, fog.R), G: mix(c.G, fog.G), B: mix(c.B, fog.B), A: 255}
}
