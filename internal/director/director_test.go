package director

import (
	"math"
	"testing"

	"github.com/ivlev/scroll2video/internal/scene"
)

func testOverlays(n int) []scene.Overlay {
	out := make([]scene.Overlay, n)
	for i := range out {
		out[i] = scene.Overlay{Title: "Block"}
	}
	return out
}

func TestDirector(t *testing.T) {
	director := NewDirector(1280, 720)

	s, err := director.GenerateScene(Options{Overlays: testOverlays(3), Duration: 14, FPS: 25})
	if err != nil {
		t.Fatalf("GenerateScene failed: %v", err)
	}

	if s.Version != scene.Version {
		t.Errorf("Expected version %s, got %s", scene.Version, s.Version)
	}
	if s.Width != 1280 || s.Height != 720 || s.FPS != 25 {
		t.Errorf("Unexpected format %dx%d@%d", s.Width, s.Height, s.FPS)
	}
	if len(s.Overlays) != 3 {
		t.Fatalf("Expected 3 overlays, got %d", len(s.Overlays))
	}

	// 14s = 1s intro + 3 * 4s + 1s outro
	if math.Abs(s.Duration()-14) > 1e-9 {
		t.Errorf("Expected duration 14, got %f", s.Duration())
	}

	// intro + one stop per overlay + end
	if len(s.Timeline) != 5 {
		t.Errorf("Expected 5 keyframes, got %d", len(s.Timeline))
	}

	for i, o := range s.Overlays {
		key := s.Timeline[i+1]
		if key.Progress < o.Range.Start || key.Progress >= o.Range.End {
			t.Errorf("Stop %d at progress %.3f outside overlay range %+v", i, key.Progress, o.Range)
		}
	}

	t.Logf("Generated scene with %d keyframes", len(s.Timeline))
	for i, kf := range s.Timeline {
		t.Logf("Keyframe %d: time=%.2fs, progress=%.3f, ease=%s", i, kf.Time, kf.Progress, kf.Ease)
	}
}

func TestGenerateSceneNeedsOverlays(t *testing.T) {
	if _, err := NewDirector(1280, 720).GenerateScene(Options{}); err == nil {
		t.Error("Expected error for empty overlays")
	}
}

func TestCalculateDwellTime(t *testing.T) {
	d := NewDirector(1280, 720)

	tests := []struct {
		name     string
		total    float64
		count    int
		expected float64
	}{
		{"fits", 14, 3, 4},
		{"clamped to min", 5, 10, 2},
		{"clamped to max", 100, 2, 6},
		{"no duration", 0, 4, 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := d.calculateDwellTime(tt.total, tt.count); math.Abs(got-tt.expected) > 1e-9 {
				t.Errorf("Expected dwell %.2f, got %.2f", tt.expected, got)
			}
		})
	}
}

func TestSlotsDoNotOverlap(t *testing.T) {
	d := NewDirector(720, 1280)
	s, err := d.GenerateScene(Options{Overlays: testOverlays(7)})
	if err != nil {
		t.Fatalf("GenerateScene failed: %v", err)
	}
	for i := 1; i < len(s.Overlays); i++ {
		if s.Overlays[i].Range.Start < s.Overlays[i-1].Range.End {
			t.Errorf("Overlay %d overlaps the previous one", i)
		}
	}
}
