package preview

import (
	"context"
	"image"
	"strings"
	"testing"

	"github.com/ivlev/scroll2video/internal/overlay"
	"github.com/ivlev/scroll2video/internal/scene"
)

func newViewer(t *testing.T) *Viewer {
	t.Helper()
	s := scene.Default()
	s.Width, s.Height = 160, 90
	s.Bricks.Count = 10
	s.Overlays = []scene.Overlay{{Range: overlay.Range{Start: 0.4, End: 0.6}, Title: "mid", Anchor: "center"}}

	v, err := Load(context.Background(), s, "", nil, func(w string) { t.Logf("warning: %s", w) })
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return v
}

func TestViewerScroll(t *testing.T) {
	v := newViewer(t)
	if v.Progress() != 0 {
		t.Fatalf("Expected to start at 0, got %f", v.Progress())
	}

	v.Step(Input{Wheel: 5}, 1.0/60)
	want := 5.0 * WheelStep / PageLength
	if p := v.Progress(); p < want-1e-9 || p > want+1e-9 {
		t.Errorf("Expected progress %f after 5 notches, got %f", want, p)
	}

	// Holding a key for one second
	for i := 0; i < 60; i++ {
		v.Step(Input{Keys: 1}, 1.0/60)
	}
	want += float64(KeySpeed) / PageLength
	if p := v.Progress(); p < want-1e-6 || p > want+1e-6 {
		t.Errorf("Expected progress %f after holding down, got %f", want, p)
	}

	v.Step(Input{Wheel: -1000}, 1.0/60)
	if v.Progress() != 0 {
		t.Errorf("Expected scroll clamped at the top, got %f", v.Progress())
	}

	v.Step(Input{End: true}, 1.0/60)
	if v.Progress() != 1 || v.State().Progress != 1 {
		t.Errorf("Expected End to jump to 1, got %f", v.Progress())
	}
}

func TestViewerOverlayEvents(t *testing.T) {
	v := newViewer(t)

	var events []overlay.Event
	for i := 0; i < 100 && v.Progress() < 1; i++ {
		events = append(events, v.Step(Input{Wheel: 2}, 1.0/60)...)
	}
	if len(events) != 2 || events[0].Kind != overlay.Enter || events[1].Kind != overlay.Exit {
		t.Errorf("Expected enter then exit, got %v", events)
	}

	// Scrolling back up re-enters
	events = nil
	for i := 0; i < 100 && v.Progress() > 0; i++ {
		events = append(events, v.Step(Input{Wheel: -2}, 1.0/60)...)
	}
	if len(events) != 2 || events[0].Kind != overlay.Enter {
		t.Errorf("Expected enter then exit on the way up, got %v", events)
	}
}

func TestViewerDraw(t *testing.T) {
	v := newViewer(t)
	w, h := v.Size()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	v.Draw(img)

	opaque := true
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] != 255 {
			opaque = false
			break
		}
	}
	if !opaque {
		t.Error("Expected an opaque frame")
	}
	if !strings.Contains(v.HUD(), "progress 0.000") {
		t.Errorf("Unexpected HUD: %q", v.HUD())
	}
}
