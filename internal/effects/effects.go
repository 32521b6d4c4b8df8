package effects

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ivlev/scroll2video/internal/config"
	"github.com/ivlev/scroll2video/internal/system"
)

type Effect interface {
	GenerateFilter(params config.SegmentParams) string
}

// Tints are colorchannelmixer presets applied over the whole video
var Tints = map[string]string{
	"underwater": "colorchannelmixer=rr=0.75:rg=0.1:rb=0.05:gg=0.95:gb=0.1:bb=1.1",
	"dusk":       "colorchannelmixer=rr=1.1:rb=0.05:gg=0.9:bb=0.85",
	"mono":       "hue=s=0",
}

// TintNames lists the preset names in stable order
func TintNames() []string {
	names := make([]string, 0, len(Tints))
	for n := range Tints {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ValidateTint accepts an empty name or a known preset
func ValidateTint(name string) error {
	if name == "" || name == "none" {
		return nil
	}
	if _, ok := Tints[name]; !ok {
		return fmt.Errorf("unknown tint %q (known: %s)", name, strings.Join(TintNames(), ", "))
	}
	return nil
}

// DefaultEffect fades the flythrough in and out, applies the tint and, in
// debug mode, stamps the timecode
type DefaultEffect struct{}

func (e *DefaultEffect) GenerateFilter(p config.SegmentParams) string {
	var filters []string

	if tint, ok := Tints[p.Tint]; ok {
		filters = append(filters, tint)
	}

	fadeIn, fadeOut := clampFades(p.FadeIn, p.FadeOut, p.Duration)
	if fadeIn > 0 {
		filters = append(filters, fmt.Sprintf("fade=t=in:st=0:d=%.3f", fadeIn))
	}
	if fadeOut > 0 {
		filters = append(filters, fmt.Sprintf("fade=t=out:st=%.3f:d=%.3f", p.Duration-fadeOut, fadeOut))
	}

	if p.Debug && system.CheckFilterSupport("drawtext") {
		filters = append(filters, "drawtext=text='%{pts\\:hms} | %{n}':x=10:y=10:fontsize=24:fontcolor=yellow:box=1:boxcolor=black@0.5")
	}

	filters = append(filters, "format=yuv420p")
	return strings.Join(filters, ",")
}

// clampFades shrinks the fades proportionally when they do not fit the duration
func clampFades(in, out, duration float64) (float64, float64) {
	in, out = max(in, 0), max(out, 0)
	if total := in + out; total > duration && total > 0 {
		scale := duration / total
		in *= scale
		out *= scale
	}
	return in, out
}
