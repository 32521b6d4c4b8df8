package renderer

import (
	"image"
	"image/color"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/inconsolata"
	"golang.org/x/image/math/fixed"

	"github.com/ivlev/scroll2video/internal/scene"
)

const (
	panelPad      = 8    // native pixels around the content
	panelCols     = 36   // body wrap width in characters
	panelGap      = 6    // between text and QR code
	slideDistance = 0.04 // of frame height, for the reveal slide-in
)

// panel is one overlay pre-rendered at native size, then scaled to the frame
type panel struct {
	img    *image.RGBA
	rect   image.Rectangle // final placement in the frame
	anchor string
}

// layoutPanel renders title, wrapped body and QR code onto a panel background
func layoutPanel(o scene.Overlay, qr image.Image, colors scene.Colors, scale int) *image.RGBA {
	title := inconsolata.Bold8x16
	body := inconsolata.Regular8x16
	lineH := title.Metrics().Height.Ceil()

	lines := wrap(o.Body, body, panelCols)

	textW := font.MeasureString(title, o.Title).Ceil()
	for _, l := range lines {
		textW = max(textW, font.MeasureString(body, l).Ceil())
	}
	textH := lineH * len(lines)
	if o.Title != "" {
		textH += lineH
		if len(lines) > 0 {
			textH += lineH / 2
		}
	}

	w, h := textW, textH
	qrSize := 0
	if qr != nil {
		qrSize = max(textH, 4*lineH)
		if textW > 0 {
			w += panelGap
		}
		w += qrSize
		h = max(h, qrSize)
	}
	w += 2 * panelPad
	h += 2 * panelPad

	native := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(native, native.Rect, image.NewUniform(colors.Panel), image.Point{}, draw.Src)

	ink := image.NewUniform(colors.Text)
	y := panelPad + title.Metrics().Ascent.Ceil()
	if o.Title != "" {
		d := font.Drawer{Dst: native, Src: ink, Face: title, Dot: fixed.P(panelPad, y)}
		d.DrawString(o.Title)
		y += lineH + lineH/2
	}
	for _, l := range lines {
		d := font.Drawer{Dst: native, Src: ink, Face: body, Dot: fixed.P(panelPad, y)}
		d.DrawString(l)
		y += lineH
	}

	if qr != nil {
		x0 := w - panelPad - qrSize
		dr := image.Rect(x0, panelPad, x0+qrSize, panelPad+qrSize)
		draw.NearestNeighbor.Scale(native, dr, qr, qr.Bounds(), draw.Src, nil)
	}

	if scale <= 1 {
		return native
	}
	out := image.NewRGBA(image.Rect(0, 0, w*scale, h*scale))
	draw.NearestNeighbor.Scale(out, out.Rect, native, native.Rect, draw.Src, nil)
	return out
}

// wrap breaks text into lines of at most cols characters of face width
func wrap(text string, face font.Face, cols int) []string {
	limit := font.MeasureString(face, strings.Repeat("M", cols))

	var lines []string
	for _, para := range strings.Split(text, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			if para != "" || len(lines) > 0 {
				lines = append(lines, "")
			}
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if font.MeasureString(face, line+" "+w) > limit {
				lines = append(lines, line)
				line = w
				continue
			}
			line += " " + w
		}
		lines = append(lines, line)
	}

	// Drop trailing blank lines
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// anchorRect places a panel of size inside the frame
func anchorRect(anchor string, size image.Point, frame image.Rectangle) image.Rectangle {
	m := frame.Dy() / 24
	var at image.Point
	switch anchor {
	case "top-left":
		at = image.Pt(m, m)
	case "top-right":
		at = image.Pt(frame.Dx()-m-size.X, m)
	case "bottom-right":
		at = image.Pt(frame.Dx()-m-size.X, frame.Dy()-m-size.Y)
	case "center":
		at = image.Pt((frame.Dx()-size.X)/2, (frame.Dy()-size.Y)/2)
	default: // bottom-left
		at = image.Pt(m, frame.Dy()-m-size.Y)
	}
	return image.Rectangle{Min: at, Max: at.Add(size)}.Add(frame.Min)
}

// autoAnchors are the candidates tried for anchor: auto, in preference order
var autoAnchors = []string{"bottom-left", "bottom-right", "top-left", "top-right"}

// drawPanel composites p with opacity reveal, sliding up as it appears
func drawPanel(dst *image.RGBA, p *panel, reveal float64) {
	if reveal <= 0 {
		return
	}
	slide := int((1 - easeOutCubic(reveal)) * slideDistance * float64(dst.Rect.Dy()))
	r := p.rect.Add(image.Pt(0, slide))

	mask := image.NewUniform(color.Alpha{A: uint8(clamp01(reveal)*255 + 0.5)})
	draw.DrawMask(dst, r, p.img, image.Point{}, mask, image.Point{}, draw.Over)
}
