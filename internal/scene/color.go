package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// ParseColor parses #rgb, #rrggbb and #rrggbbaa hex colors. The alpha is
// straight in the notation and premultiplied in the result.
func ParseColor(hex string) (color.RGBA, error) {
	h := strings.TrimPrefix(strings.TrimSpace(hex), "#")

	switch len(h) {
	case 3:
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]}) + "ff"
	case 6:
		h += "ff"
	case 8:
	default:
		return color.RGBA{}, fmt.Errorf("invalid color %q: want #rgb, #rrggbb or #rrggbbaa", hex)
	}

	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}

	straight := color.NRGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}
	return color.RGBAModel.Convert(straight).(color.RGBA), nil
}

// Colors is the parsed palette
type Colors struct {
	SkyTop, SkyBottom color.RGBA
	Brick, Star       color.RGBA
	Panel, Text       color.RGBA
}

// Colors parses every palette entry
func (p Palette) Colors() (Colors, error) {
	var c Colors
	fields := []struct {
		name string
		hex  string
		dst  *color.RGBA
	}{
		{"sky_top", p.SkyTop, &c.SkyTop},
		{"sky_bottom", p.SkyBottom, &c.SkyBottom},
		{"brick", p.Brick, &c.Brick},
		{"star", p.Star, &c.Star},
		{"panel", p.Panel, &c.Panel},
		{"text", p.Text, &c.Text},
	}
	for _, f := range fields {
		v, err := ParseColor(f.hex)
		if err != nil {
			return Colors{}, fmt.Errorf("palette %s: %w", f.name, err)
		}
		*f.dst = v
	}
	return c, nil
}
