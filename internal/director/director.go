package director

import (
	"fmt"
	"math"

	"github.com/ivlev/scroll2video/internal/overlay"
	"github.com/ivlev/scroll2video/internal/progress"
	"github.com/ivlev/scroll2video/internal/scene"
)

// Director lays out a default flythrough: it spaces overlay ranges along the
// path and scripts the scroll so the camera settles on each of them
type Director struct {
	ViewportWidth  int
	ViewportHeight int
	MinDwell       float64 // Minimum time per overlay (seconds)
	MaxDwell       float64 // Maximum time per overlay (seconds)
	Intro          float64 // Seconds before the first overlay
	Outro          float64 // Seconds after the last overlay
	Gap            float64 // Fraction of each slot left empty on both sides
}

// Options describe the scene to generate
type Options struct {
	Overlays []scene.Overlay // Content only, ranges are assigned
	Duration float64         // Total seconds, 0 = derived from the dwell range
	FPS      int
	Seed     int64
	Backdrop *scene.Backdrop
}

// NewDirector creates a new Director with default settings
func NewDirector(viewportWidth, viewportHeight int) *Director {
	return &Director{
		ViewportWidth:  viewportWidth,
		ViewportHeight: viewportHeight,
		MinDwell:       2.0,
		MaxDwell:       6.0,
		Intro:          1.0,
		Outro:          1.0,
		Gap:            0.1,
	}
}

// GenerateScene creates a complete scene around the given overlays
func (d *Director) GenerateScene(opts Options) (*scene.Scene, error) {
	n := len(opts.Overlays)
	if n == 0 {
		return nil, fmt.Errorf("no overlays to place")
	}

	dwell := d.calculateDwellTime(opts.Duration, n)

	s := scene.Default()
	s.Width, s.Height = d.ViewportWidth, d.ViewportHeight
	if opts.FPS > 0 {
		s.FPS = opts.FPS
	}
	if opts.Seed != 0 {
		s.Seed = opts.Seed
	}
	s.Backdrop = opts.Backdrop

	s.Overlays = make([]scene.Overlay, n)
	for i, o := range opts.Overlays {
		o.Range = d.slot(i, n)
		s.Overlays[i] = o
	}
	s.Timeline = d.generateTimeline(s.Overlays, dwell)

	// Turns scale with the number of stops so the spring never feels rushed
	turns := math.Max(2, float64(n))
	s.Camera.Spring.Turns = turns
	s.Bricks.Spring.Turns = turns
	s.Bricks.Count = 30 * int(turns)

	s.FillDefaults()
	if err := s.Validate(); err != nil {
		return nil, err
	}

	return s, nil
}

// calculateDwellTime determines how long the camera lingers on each overlay
func (d *Director) calculateDwellTime(totalDuration float64, count int) float64 {
	if totalDuration <= 0 {
		return (d.MinDwell + d.MaxDwell) / 2
	}

	// Reserve time for intro/outro
	availableDuration := totalDuration - d.Intro - d.Outro
	if availableDuration <= 0 {
		availableDuration = totalDuration
	}

	dwellTime := availableDuration / float64(count)

	// Clamp to min/max
	if dwellTime < d.MinDwell {
		dwellTime = d.MinDwell
	}
	if dwellTime > d.MaxDwell {
		dwellTime = d.MaxDwell
	}

	return dwellTime
}

// slot returns the progress range of overlay i out of n
func (d *Director) slot(i, n int) overlay.Range {
	w := 1.0 / float64(n)
	gap := w * d.Gap
	return overlay.Range{
		Start: round3(float64(i)*w + gap),
		End:   round3(float64(i+1)*w - gap),
	}
}

// generateTimeline eases from one overlay center to the next; the ease
// brings the scroll to rest on every center
func (d *Director) generateTimeline(overlays []scene.Overlay, dwell float64) []progress.Keyframe {
	keys := []progress.Keyframe{{Time: 0, Progress: 0}}

	t := d.Intro
	for i, o := range overlays {
		mid := (o.Range.Start + o.Range.End) / 2
		at := t + dwell*(float64(i)+0.5)
		keys = append(keys, progress.Keyframe{
			Time:     round3(at),
			Progress: round3(mid),
			Ease:     "in-out-cubic",
		})
	}

	end := t + dwell*float64(len(overlays)) + d.Outro
	keys = append(keys, progress.Keyframe{Time: round3(end), Progress: 1, Ease: "in-out-cubic"})

	return keys
}

// round3 keeps generated files readable
func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
