// Package overlay sequences the text blocks shown over the flythrough:
// which progress range is active, and the reveal/hide animation of each.
package overlay

import (
	"errors"
	"fmt"

	"github.com/ivlev/scroll2video/internal/progress"
)

var (
	// ErrOverlap is returned for ranges that share part of their extent
	ErrOverlap = errors.New("overlay: ranges overlap")
	// ErrUnordered is returned for disjoint ranges listed out of progress order
	ErrUnordered = errors.New("overlay: ranges out of order")
)

// Range is a half-open progress window [Start, End). A range ending at 1
// also contains progress 1, so the last block stays up at the end of the page.
type Range struct {
	Start float64 `yaml:"start"`
	End   float64 `yaml:"end"`
}

// Contains reports whether p falls inside the range
func (r Range) Contains(p float64) bool {
	if p < r.Start {
		return false
	}
	return p < r.End || (r.End >= 1 && p >= 1)
}

// EventKind is a range transition
type EventKind int

const (
	Enter EventKind = iota
	Exit
)

func (k EventKind) String() string {
	if k == Exit {
		return "exit"
	}
	return "enter"
}

// Event reports a transition into or out of range Index
type Event struct {
	Kind  EventKind
	Index int
}

// State is a snapshot of one range for renderers
type State struct {
	Index  int
	Active bool
	Reveal float64
}

// Sequencer tracks the single active range and every range's reveal
type Sequencer struct {
	ranges  []Range
	reveals []Reveal
	active  int
	events  []Event
}

// NewSequencer validates ranges and builds a sequencer with the given
// reveal and hide durations in seconds
func NewSequencer(ranges []Range, in, out float64) (*Sequencer, error) {
	if in < 0 || out < 0 {
		return nil, fmt.Errorf("overlay: reveal durations must be >= 0")
	}
	if err := Validate(ranges); err != nil {
		return nil, err
	}

	s := &Sequencer{
		ranges:  make([]Range, len(ranges)),
		reveals: make([]Reveal, len(ranges)),
		active:  -1,
	}
	copy(s.ranges, ranges)
	for i := range s.reveals {
		s.reveals[i] = Reveal{In: in, Out: out}
	}
	return s, nil
}

// Validate rejects empty, negative and overlapping ranges. Ranges must be
// listed in progress order; touching boundaries are allowed.
func Validate(ranges []Range) error {
	for i, r := range ranges {
		if r.Start < 0 || r.End <= r.Start {
			return fmt.Errorf("overlay: range %d [%.3f, %.3f) is empty or negative", i, r.Start, r.End)
		}
		if i == 0 || r.Start >= ranges[i-1].End {
			continue
		}
		prev := ranges[i-1]
		if r.End <= prev.Start {
			return fmt.Errorf("%w: range %d [%.3f, %.3f) comes before range %d [%.3f, %.3f)",
				ErrUnordered, i, r.Start, r.End, i-1, prev.Start, prev.End)
		}
		return fmt.Errorf("%w: range %d [%.3f, %.3f) starts before range %d ends at %.3f",
			ErrOverlap, i, r.Start, r.End, i-1, prev.End)
	}
	return nil
}

// Update evaluates progress p, fires transitions and advances reveals by dt.
// The returned events are valid until the next call.
func (s *Sequencer) Update(p, dt float64) []Event {
	s.events = s.events[:0]

	idx := s.find(progress.Clamp(p))
	if idx != s.active {
		if s.active >= 0 {
			s.reveals[s.active].Reverse()
			s.events = append(s.events, Event{Kind: Exit, Index: s.active})
		}
		if idx >= 0 {
			s.reveals[idx].Play()
			s.events = append(s.events, Event{Kind: Enter, Index: idx})
		}
		s.active = idx
	}

	for i := range s.reveals {
		s.reveals[i].Advance(dt)
	}

	return s.events
}

func (s *Sequencer) find(p float64) int {
	for i, r := range s.ranges {
		if r.Contains(p) {
			return i
		}
	}
	return -1
}

// Active is the index of the active range, -1 when none
func (s *Sequencer) Active() int {
	return s.active
}

// Reveal returns the reveal value of range i, 0 for an unknown index
func (s *Sequencer) Reveal(i int) float64 {
	if i < 0 || i >= len(s.reveals) {
		return 0
	}
	return s.reveals[i].Value
}

// States returns a fresh snapshot of every range
func (s *Sequencer) States() []State {
	out := make([]State, len(s.ranges))
	for i := range s.ranges {
		out[i] = State{Index: i, Active: i == s.active, Reveal: s.reveals[i].Value}
	}
	return out
}

// Len is the number of ranges
func (s *Sequencer) Len() int {
	return len(s.ranges)
}
