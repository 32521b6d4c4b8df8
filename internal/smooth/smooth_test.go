package smooth

import (
	"math"
	"testing"
)

func TestDecayHalvesPerHalfLife(t *testing.T) {
	if got := Decay(0.5, 0.5); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("Expected 0.5 after one half-life, got %f", got)
	}
	if got := Decay(1, 0); got != 1 {
		t.Errorf("Expected zero half-life to snap, got %f", got)
	}
	if got := Decay(0, 1); got != 0 {
		t.Errorf("Expected no movement for dt = 0, got %f", got)
	}
}

func TestTowardComposes(t *testing.T) {
	// Ten small steps equal one big step
	a := 0.0
	for i := 0; i < 10; i++ {
		a = Toward(a, 1, 0.01, 0.05)
	}
	b := Toward(0, 1, 0.1, 0.05)
	if math.Abs(a-b) > 1e-12 {
		t.Errorf("Stepped %f, single %f", a, b)
	}
}
