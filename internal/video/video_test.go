package video

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/ivlev/scroll2video/internal/config"
)

func TestBuildFFmpegArgs(t *testing.T) {
	tests := []struct {
		encoder string
		quality int
		want    []string
	}{
		{"libx264", 23, []string{"-crf", "23", "-preset", "medium"}},
		{"h264_nvenc", 28, []string{"-cq", "28"}},
		{"h264_videotoolbox", 75, []string{"-b:v", "7500k"}},
	}
	params := config.SegmentParams{Width: 640, Height: 360, FPS: 30, Filter: "format=yuv420p"}

	for _, tt := range tests {
		t.Run(tt.encoder, func(t *testing.T) {
			e := &FFmpegEncoder{Encoder: tt.encoder, Quality: tt.quality}
			args := e.buildFFmpegArgs(params, "out.mp4")
			joined := strings.Join(args, " ")

			if !strings.Contains(joined, strings.Join(tt.want, " ")) {
				t.Errorf("Missing quality args %v in %s", tt.want, joined)
			}
			for _, want := range []string{"-video_size 640x360", "-framerate 30", "-i -", "-vf format=yuv420p", "-c:v " + tt.encoder} {
				if !strings.Contains(joined, want) {
					t.Errorf("Missing %q in %s", want, joined)
				}
			}
			if args[len(args)-1] != "out.mp4" {
				t.Errorf("Output must be last, got %s", args[len(args)-1])
			}
		})
	}

	noFilter := (&FFmpegEncoder{Encoder: "libx264"}).buildFFmpegArgs(config.SegmentParams{Width: 2, Height: 2, FPS: 1}, "x.mp4")
	if slices.Contains(noFilter, "-vf") {
		t.Errorf("Empty filter must not add -vf: %v", noFilter)
	}
}

func TestBuildMuxArgs(t *testing.T) {
	args := buildMuxArgs("v.mp4", "a.mp3", "final.mp4")
	joined := strings.Join(args, " ")
	for _, want := range []string{"-i v.mp4 -i a.mp3", "-c:v copy", "-shortest"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Missing %q in %s", want, joined)
		}
	}
}

func TestWriteRawRGBA(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.SetRGBA(2, 2, color.RGBA{1, 2, 3, 4})

	var buf bytes.Buffer
	if err := writeRawRGBA(&buf, img); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 64 {
		t.Errorf("Expected 64 bytes, got %d", buf.Len())
	}

	// A sub-image has a foreign stride and must be repacked
	buf.Reset()
	sub := img.SubImage(image.Rect(2, 2, 4, 4)).(*image.RGBA)
	if err := writeRawRGBA(&buf, sub); err != nil {
		t.Fatal(err)
	}
	if buf.Len() != 16 {
		t.Fatalf("Expected 16 bytes, got %d", buf.Len())
	}
	if !bytes.Equal(buf.Bytes()[:4], []byte{1, 2, 3, 4}) {
		t.Errorf("Expected the sub-image origin pixel first, got %v", buf.Bytes()[:4])
	}
}

func TestPNGSink(t *testing.T) {
	sink, err := NewPNGSink(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}

	var _ FrameSink = sink

	for i := 0; i < 3; i++ {
		img := image.NewRGBA(image.Rect(0, 0, 8, 6))
		img.SetRGBA(0, 0, color.RGBA{uint8(i), 0, 0, 255})
		if err := sink.WriteFrame(img); err != nil {
			t.Fatalf("WriteFrame failed: %v", err)
		}
	}
	if err := sink.Close(); err != nil {
		t.Fatal(err)
	}
	if sink.Frames() != 3 {
		t.Errorf("Expected 3 frames, got %d", sink.Frames())
	}

	f, err := os.Open(sink.FramePath(2))
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	img, err := png.Decode(f)
	if err != nil {
		t.Fatal(err)
	}
	if r, _, _, _ := img.At(0, 0).RGBA(); r>>8 != 2 {
		t.Errorf("Expected frame 2 content, got red %d", r>>8)
	}
}

func TestLogBufferConcurrent(t *testing.T) {
	b := &logBuffer{}

	// ffmpeg output arrives on two pipes while frames are still being written
	var wg sync.WaitGroup
	for w := 0; w < 2; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 20; i++ {
				fmt.Fprintf(b, "pipe %d line %d\n", w, i)
			}
		}()
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 20; i++ {
			_ = tail(b.String())
		}
	}()
	wg.Wait()

	lines := strings.Split(strings.TrimSpace(b.String()), "\n")
	if len(lines) != 40 {
		t.Errorf("Expected 40 log lines, got %d", len(lines))
	}
	if got := strings.Count(tail(b.String()), "\n"); got != 14 {
		t.Errorf("Expected tail to keep 15 lines, got %d", got+1)
	}
}
