package overlay

import (
	"errors"
	"math"
	"reflect"
	"testing"
)

func TestReferenceTrajectory(t *testing.T) {
	seq, err := NewSequencer([]Range{{0, 0.2}, {0.3, 0.6}}, 0.5, 0.5)
	if err != nil {
		t.Fatalf("NewSequencer failed: %v", err)
	}

	trajectory := []float64{0, 0.1, 0.25, 0.4, 0.7}
	wantActive := []int{0, 0, -1, 1, -1}
	var events []Event

	for i, p := range trajectory {
		events = append(events, seq.Update(p, 0.016)...)
		if seq.Active() != wantActive[i] {
			t.Errorf("Progress %.2f: active %d, expected %d", p, seq.Active(), wantActive[i])
		}
	}

	want := []Event{
		{Kind: Enter, Index: 0},
		{Kind: Exit, Index: 0},
		{Kind: Enter, Index: 1},
		{Kind: Exit, Index: 1},
	}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("Events %v, expected %v", events, want)
	}
}

func TestDirectJumpBetweenRanges(t *testing.T) {
	seq, _ := NewSequencer([]Range{{0, 0.2}, {0.3, 0.6}}, 1, 1)
	seq.Update(0.1, 0)
	events := seq.Update(0.5, 0)

	want := []Event{{Kind: Exit, Index: 0}, {Kind: Enter, Index: 1}}
	if !reflect.DeepEqual(events, want) {
		t.Errorf("Events %v, expected %v", events, want)
	}
}

func TestRevealPlaysForwardAndReverses(t *testing.T) {
	seq, _ := NewSequencer([]Range{{0.2, 0.5}}, 1.0, 0.5)

	seq.Update(0.3, 0)
	for i := 0; i < 5; i++ {
		seq.Update(0.3, 0.1)
	}
	if v := seq.Reveal(0); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("Expected reveal 0.5 after 0.5s, got %f", v)
	}

	// Staying inside the range never restarts the reveal
	for i := 0; i < 20; i++ {
		seq.Update(0.4, 0.1)
	}
	if v := seq.Reveal(0); v != 1 {
		t.Errorf("Expected full reveal, got %f", v)
	}

	// Leaving plays the hide from the current value
	seq.Update(0.8, 0.25)
	if v := seq.Reveal(0); math.Abs(v-0.5) > 1e-9 {
		t.Errorf("Expected hide halfway after 0.25s, got %f", v)
	}
	seq.Update(0.8, 1)
	if v := seq.Reveal(0); v != 0 {
		t.Errorf("Expected hidden, got %f", v)
	}
}

func TestReentryRestartsReveal(t *testing.T) {
	seq, _ := NewSequencer([]Range{{0.2, 0.5}}, 1.0, 10)

	seq.Update(0.3, 0)
	seq.Update(0.3, 0.8)
	if v := seq.Reveal(0); math.Abs(v-0.8) > 1e-9 {
		t.Fatalf("Expected reveal 0.8, got %f", v)
	}

	// Leave briefly; the slow hide barely moves
	seq.Update(0.6, 0.1)
	// Re-enter: reveal starts over from zero
	seq.Update(0.3, 0)
	if v := seq.Reveal(0); v != 0 {
		t.Errorf("Expected re-entry to restart at 0, got %f", v)
	}
	seq.Update(0.3, 0.25)
	if v := seq.Reveal(0); math.Abs(v-0.25) > 1e-9 {
		t.Errorf("Expected 0.25 after re-entry, got %f", v)
	}
}

func TestRangeEndingAtOneIncludesOne(t *testing.T) {
	seq, _ := NewSequencer([]Range{{0.8, 1}}, 0, 0)
	seq.Update(1, 0)
	if seq.Active() != 0 {
		t.Errorf("Expected the last range active at progress 1, got %d", seq.Active())
	}
	seq.Update(1.3, 0)
	if seq.Active() != 0 {
		t.Errorf("Expected overshoot to clamp into the last range, got %d", seq.Active())
	}
	if v := seq.Reveal(0); v != 1 {
		t.Errorf("Expected instant reveal with zero duration, got %f", v)
	}
	if v := seq.Reveal(1); v != 0 {
		t.Errorf("Expected 0 for an unknown range, got %f", v)
	}
	if v := seq.Reveal(-1); v != 0 {
		t.Errorf("Expected 0 for index -1, got %f", v)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name      string
		ranges    []Range
		overlap   bool
		unordered bool
		wantErr   bool
	}{
		{"ok", []Range{{0, 0.2}, {0.3, 0.6}}, false, false, false},
		{"touching", []Range{{0, 0.3}, {0.3, 0.6}}, false, false, false},
		{"overlap", []Range{{0, 0.4}, {0.3, 0.6}}, true, false, true},
		{"overlap out of order", []Range{{0.3, 0.6}, {0.1, 0.4}}, true, false, true},
		{"out of order", []Range{{0.5, 0.6}, {0.1, 0.2}}, false, true, true},
		{"out of order touching", []Range{{0.5, 0.6}, {0.1, 0.5}}, false, true, true},
		{"empty", []Range{{0.4, 0.4}}, false, false, true},
		{"negative", []Range{{-0.1, 0.2}}, false, false, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.ranges)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Unexpected error state: %v", err)
			}
			if errors.Is(err, ErrOverlap) != tt.overlap {
				t.Errorf("ErrOverlap mismatch: %v", err)
			}
			if errors.Is(err, ErrUnordered) != tt.unordered {
				t.Errorf("ErrUnordered mismatch: %v", err)
			}
		})
	}

	if _, err := NewSequencer([]Range{{0, 0.4}, {0.3, 0.6}}, 0.5, 0.5); !errors.Is(err, ErrOverlap) {
		t.Errorf("Expected NewSequencer to reject overlaps, got %v", err)
	}
}

func TestStatesSnapshot(t *testing.T) {
	seq, _ := NewSequencer([]Range{{0, 0.5}, {0.5, 1}}, 0, 0)
	seq.Update(0.7, 0)

	states := seq.States()
	if len(states) != 2 || states[0].Active || !states[1].Active {
		t.Fatalf("Unexpected states %+v", states)
	}
	states[1].Reveal = 0.123
	if seq.Reveal(1) != 1 {
		t.Error("States must not alias sequencer memory")
	}
}
