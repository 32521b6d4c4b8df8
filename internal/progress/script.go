package progress

import (
	"fmt"
	"math"
	"strings"
)

// Keyframe pins the scroll progress at a moment of the timeline
type Keyframe struct {
	Time     float64 `yaml:"time"`           // Seconds from the start
	Progress float64 `yaml:"progress"`       // Target progress at Time
	Ease     string  `yaml:"ease,omitempty"` // Easing into this keyframe: linear, in-out-cubic, in-out-sine
}

// Script maps elapsed time to progress by easing between keyframes.
// It stands in for the user's scroll wheel when rendering offline.
type Script struct {
	keys []Keyframe
}

// NewScript validates keyframes: at least one, strictly increasing times, known easings
func NewScript(keys []Keyframe) (*Script, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("timeline needs at least one keyframe")
	}
	for i, k := range keys {
		if i > 0 && k.Time <= keys[i-1].Time {
			return nil, fmt.Errorf("timeline keyframe %d: time %.3f is not after %.3f", i, k.Time, keys[i-1].Time)
		}
		if _, err := easing(k.Ease); err != nil {
			return nil, fmt.Errorf("timeline keyframe %d: %w", i, err)
		}
	}

	cp := make([]Keyframe, len(keys))
	copy(cp, keys)
	return &Script{keys: cp}, nil
}

// Duration is the time of the last keyframe
func (s *Script) Duration() float64 {
	return s.keys[len(s.keys)-1].Time
}

// At returns the clamped progress at seconds
func (s *Script) At(seconds float64) float64 {
	first, last := s.keys[0], s.keys[len(s.keys)-1]

	// Hold the end values outside the scripted range
	if seconds <= first.Time {
		return Clamp(first.Progress)
	}
	if seconds >= last.Time {
		return Clamp(last.Progress)
	}

	i := 1
	for i < len(s.keys)-1 && seconds >= s.keys[i].Time {
		i++
	}
	prev, next := s.keys[i-1], s.keys[i]

	t := (seconds - prev.Time) / (next.Time - prev.Time)
	ease, _ := easing(next.Ease)

	return Clamp(lerp(prev.Progress, next.Progress, ease(t)))
}

func easing(name string) (func(float64) float64, error) {
	switch strings.ToLower(name) {
	case "", "linear":
		return linear, nil
	case "in-out-cubic":
		return EaseInOutCubic, nil
	case "in-out-sine":
		return EaseInOutSine, nil
	default:
		return nil, fmt.Errorf("unknown easing %q", name)
	}
}

func linear(t float64) float64 { return t }

// lerp performs linear interpolation between a and b
func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// EaseInOutCubic applies smooth easing function
func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

// EaseInOutSine is a gentler ease used for overlay reveals
func EaseInOutSine(t float64) float64 {
	return -(math.Cos(math.Pi*t) - 1) / 2
}

// Timeline plays a script on a frame clock. Seek picks the frame whose
// progress is reported.
type Timeline struct {
	Script *Script
	Clock  Clock
	frame  int
}

// Seek moves the playhead to frame
func (t *Timeline) Seek(frame int) {
	t.frame = frame
}

// Seconds is the timestamp of the current frame
func (t *Timeline) Seconds() float64 {
	return t.Clock.Seconds(t.frame)
}

// Progress is the scripted progress at the current frame
func (t *Timeline) Progress() float64 {
	return t.Script.At(t.Seconds())
}
