// Package activation drives per-object "raised/lowered" state from the
// distance between an object's index on the path and the scroll cursor.
package activation

import (
	"fmt"
	"math"

	"github.com/ivlev/scroll2video/internal/progress"
	"github.com/ivlev/scroll2video/internal/smooth"
)

// Config shapes the activation falloff around the cursor, in object indices
type Config struct {
	Count        int     // M objects along the path
	ActiveRadius float64 // Full activation within this distance
	Fade         float64 // Linear falloff width beyond ActiveRadius
	FrontHold    float64 // Extra full zone ahead of the cursor in the direction of travel
	HalfLife     float64 // Smoothing half-life in seconds, 0 = snap
}

// Field holds the smoothed activation of every object
type Field struct {
	cfg    Config
	values []float64

	cursor float64
	dir    int
	primed bool
}

// New validates cfg and allocates the value buffer
func New(cfg Config) (*Field, error) {
	if cfg.Count < 1 {
		return nil, fmt.Errorf("activation: count must be >= 1, got %d", cfg.Count)
	}
	if cfg.ActiveRadius < 0 || cfg.Fade < 0 || cfg.FrontHold < 0 || cfg.HalfLife < 0 {
		return nil, fmt.Errorf("activation: radius, fade, front hold and half-life must be >= 0")
	}
	return &Field{
		cfg:    cfg,
		values: make([]float64, cfg.Count),
		dir:    1,
	}, nil
}

// Cursor maps progress onto the object index space [0, M-1]
func (f *Field) Cursor(p float64) float64 {
	return progress.Clamp(p) * float64(f.cfg.Count-1)
}

// Target is the unsmoothed activation of object i for a cursor moving in dir
// (+1 forward, -1 backward, 0 still). It is 1 inside the active zone, falls
// linearly to 0 across Fade, and never increases with distance.
func (f *Field) Target(i int, cursor float64, dir int) float64 {
	d := float64(i) - cursor

	r := f.cfg.ActiveRadius
	if dir != 0 && d*float64(dir) > 0 {
		r += f.cfg.FrontHold
	}

	ad := math.Abs(d)
	switch {
	case ad <= r:
		return 1
	case f.cfg.Fade <= 0 || ad >= r+f.cfg.Fade:
		return 0
	default:
		return 1 - (ad-r)/f.cfg.Fade
	}
}

// Update recomputes all values for progress p after dt seconds.
// The returned slice is reused on the next call.
func (f *Field) Update(p, dt float64) []float64 {
	cursor := f.Cursor(p)

	if f.primed {
		switch delta := cursor - f.cursor; {
		case delta > 1e-12:
			f.dir = 1
		case delta < -1e-12:
			f.dir = -1
		}
	}
	f.cursor = cursor

	a := smooth.Decay(dt, f.cfg.HalfLife)
	if !f.primed {
		a = 1
		f.primed = true
	}

	for i := range f.values {
		target := f.Target(i, cursor, f.dir)
		f.values[i] += (target - f.values[i]) * a
	}

	return f.values
}

// Direction is the last travel direction, +1 or -1
func (f *Field) Direction() int {
	return f.dir
}

// Count is the number of objects
func (f *Field) Count() int {
	return f.cfg.Count
}
