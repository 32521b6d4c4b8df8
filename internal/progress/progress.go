// Package progress produces the normalized [0,1] scalar every other stage
// reads once per frame: from a scroll position (interactive preview) or
// from a scripted timeline (offline render).
package progress

import (
	"math"
	"sync/atomic"
)

// Source is anything that can report the current progress
type Source interface {
	Progress() float64
}

// Clamp limits p to [0,1]. NaN maps to 0.
func Clamp(p float64) float64 {
	if math.IsNaN(p) || p < 0 {
		return 0
	}
	if p > 1 {
		return 1
	}
	return p
}

// Scroll is a scroll position written by one event handler and read as a
// snapshot by the frame loop. No locking: the value is a single atomic word.
type Scroll struct {
	offset     atomic.Uint64
	scrollable atomic.Uint64
}

// NewScroll creates a scroll source for a page that can scroll by scrollable units
func NewScroll(scrollable float64) *Scroll {
	s := &Scroll{}
	s.scrollable.Store(math.Float64bits(scrollable))
	return s
}

// Set stores an absolute offset and the scrollable extent
func (s *Scroll) Set(offset, scrollable float64) {
	s.scrollable.Store(math.Float64bits(scrollable))
	s.offset.Store(math.Float64bits(offset))
}

// Add moves the offset by delta, keeping it within [0, scrollable]
func (s *Scroll) Add(delta float64) {
	for {
		old := s.offset.Load()
		ext := math.Float64frombits(s.scrollable.Load())
		next := math.Float64frombits(old) + delta
		if next < 0 {
			next = 0
		}
		if next > ext {
			next = ext
		}
		if s.offset.CompareAndSwap(old, math.Float64bits(next)) {
			return
		}
	}
}

// Offset returns the raw scroll offset
func (s *Scroll) Offset() float64 {
	return math.Float64frombits(s.offset.Load())
}

// Progress returns offset/scrollable clamped to [0,1]
func (s *Scroll) Progress() float64 {
	ext := math.Float64frombits(s.scrollable.Load())
	if ext <= 0 {
		return 0
	}
	return Clamp(s.Offset() / ext)
}

// Fixed is a constant progress value
type Fixed float64

func (f Fixed) Progress() float64 {
	return Clamp(float64(f))
}

// Clock converts between frame indices and seconds at a fixed frame rate
type Clock struct {
	FPS int
}

// Seconds returns the timestamp of frame
func (c Clock) Seconds(frame int) float64 {
	if c.FPS <= 0 {
		return 0
	}
	return float64(frame) / float64(c.FPS)
}

// Frames returns how many frames cover duration seconds (at least 1)
func (c Clock) Frames(duration float64) int {
	n := int(math.Round(duration * float64(c.FPS)))
	if n < 1 {
		return 1
	}
	return n
}

// Delta is the fixed timestep of one frame
func (c Clock) Delta() float64 {
	if c.FPS <= 0 {
		return 0
	}
	return 1.0 / float64(c.FPS)
}
