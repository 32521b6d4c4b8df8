package system

import (
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()

	names := []string{"old.MP3", "song.wav", "cover.png", "newest.flac"}
	for i, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		mt := time.Now().Add(time.Duration(i) * time.Minute)
		os.Chtimes(p, mt, mt)
	}
	os.Mkdir(filepath.Join(dir, "folder.mp3"), 0755)

	got, err := FindLatestAudio(dir)
	if err != nil {
		t.Fatalf("FindLatestAudio failed: %v", err)
	}
	if filepath.Base(got) != "newest.flac" {
		t.Errorf("Expected newest.flac, got %s", got)
	}

	got, err = FindLatest(dir, ".png")
	if err != nil || filepath.Base(got) != "cover.png" {
		t.Errorf("Expected cover.png, got %s (%v)", got, err)
	}

	if _, err := FindLatest(dir, ".pdf"); err == nil {
		t.Error("Expected error when nothing matches")
	}
	if _, err := FindLatest(filepath.Join(dir, "missing")); err == nil {
		t.Error("Expected error for missing dir")
	}
}

func TestPickEncoder(t *testing.T) {
	tests := []struct {
		list string
		want string
	}{
		{" V....D h264_nvenc  NVIDIA NVENC H.264 encoder", "h264_nvenc"},
		{" V....D h264_videotoolbox VideoToolbox H.264 Encoder\n V....D h264_nvenc", "h264_videotoolbox"},
		{" V....D libx264  libx264 H.264", "libx264"},
		{"", "libx264"},
	}
	for _, tt := range tests {
		if got := pickEncoder(tt.list); got != tt.want {
			t.Errorf("pickEncoder(%q) = %s, expected %s", tt.list, got, tt.want)
		}
	}
}

func TestHasFilter(t *testing.T) {
	list := "Filters:\n" +
		" T.C drawtext          V->V       Draw text on top of video frames using libfreetype library.\n" +
		" ..C fade              V->V       Fade in/out input video.\n"

	if !hasFilter(list, "drawtext") || !hasFilter(list, "fade") {
		t.Error("Expected drawtext and fade to be found")
	}
	if hasFilter(list, "draw") {
		t.Error("Filter names must match exactly")
	}
}

func TestParseDuration(t *testing.T) {
	if d, err := parseDuration("12.480000\n"); err != nil || d != 12.48 {
		t.Errorf("Expected 12.48, got %f (%v)", d, err)
	}
	if _, err := parseDuration("N/A"); err == nil {
		t.Error("Expected parse error")
	}
	if _, err := parseDuration("0.0"); err == nil {
		t.Error("Expected error for zero duration")
	}
}

func TestWorkersFor(t *testing.T) {
	frame := 1280 * 720 * 4

	tests := []struct {
		name string
		host Host
		want int
	}{
		{"cpu bound", Host{LogicalCPUs: 8, AvailMemory: 16 << 30}, 8},
		{"memory bound", Host{LogicalCPUs: 64, AvailMemory: uint64(4 * 2 * frame * 3)}, 3},
		{"unknown memory", Host{LogicalCPUs: 4}, 4},
		{"starved", Host{LogicalCPUs: 4, AvailMemory: 1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workersFor(tt.host, frame); got != tt.want {
				t.Errorf("Expected %d workers, got %d", tt.want, got)
			}
		})
	}
}

func TestHostStats(t *testing.T) {
	h := HostStats()
	if h.LogicalCPUs < 1 {
		t.Errorf("Expected at least one CPU, got %d", h.LogicalCPUs)
	}
	t.Logf("Host: %d/%d CPUs, %.0f MiB available", h.LogicalCPUs, h.PhysicalCPUs, MiB(h.AvailMemory))
}

func TestImagePool(t *testing.T) {
	p := NewImagePool()

	img := p.Get(64, 32)
	if img.Rect.Dx() != 64 || img.Rect.Dy() != 32 {
		t.Fatalf("Unexpected size %v", img.Rect)
	}
	p.Put(img)

	other := p.Get(32, 64)
	if other.Rect.Dx() != 32 {
		t.Errorf("Pool returned a buffer of the wrong size: %v", other.Rect)
	}

	// Sub-images must not be recycled
	p.Put(img.SubImage(img.Rect.Inset(4)).(*image.RGBA))
	if got := p.Get(56, 24); got.Rect.Min != (image.Point{}) {
		t.Errorf("Expected a fresh origin-anchored buffer, got %v", got.Rect)
	}

	p.Put(nil)
}
