package video

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"
	"strings"
	"sync"

	"github.com/ivlev/scroll2video/internal/config"
)

// FrameSink consumes rendered frames in order
type FrameSink interface {
	WriteFrame(img *image.RGBA) error
	Close() error
}

type FFmpegEncoder struct {
	Encoder string // libx264, h264_nvenc, h264_videotoolbox
	Quality int
}

// Stream is a running ffmpeg process fed with raw RGBA frames over stdin
type Stream struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	buf    *bufio.Writer
	log    *logBuffer
	width  int
	height int
	frames int
}

// Start launches ffmpeg writing videoPath from raw frames of params size
func (e *FFmpegEncoder) Start(ctx context.Context, params config.SegmentParams, videoPath string) (*Stream, error) {
	args := e.buildFFmpegArgs(params, videoPath)

	cmd := exec.CommandContext(ctx, "ffmpeg", args...)
	out := &logBuffer{}
	cmd.Stdout = out
	cmd.Stderr = out

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe error: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("ffmpeg start error: %w", err)
	}

	return &Stream{
		cmd:    cmd,
		stdin:  stdin,
		buf:    bufio.NewWriterSize(stdin, params.Width*params.Height*4),
		log:    out,
		width:  params.Width,
		height: params.Height,
	}, nil
}

func (e *FFmpegEncoder) buildFFmpegArgs(params config.SegmentParams, videoPath string) []string {
	// Используем rawvideo через stdin для исключения I/O на диск
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", params.Width, params.Height),
		"-framerate", fmt.Sprintf("%d", params.FPS),
		"-i", "-",
	}
	if params.Filter != "" {
		args = append(args, "-vf", params.Filter)
	}
	args = append(args,
		"-r", fmt.Sprintf("%d", params.FPS),
		"-pix_fmt", "yuv420p",
		"-c:v", e.Encoder,
	)
	args = append(args, qualityArgs(e.Encoder, e.Quality)...)
	args = append(args, "-movflags", "+faststart", videoPath)
	return args
}

// qualityArgs maps one quality number onto each encoder's own knob
func qualityArgs(encoder string, quality int) []string {
	switch encoder {
	case "h264_videotoolbox":
		// VideoToolbox часто не поддерживает -q:v напрямую на всех версиях. Используем битрейт.
		bitrate := quality * 100 // кбит/с. 75 -> 7.5Мбит/с
		return []string{"-b:v", fmt.Sprintf("%dk", bitrate)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default: // libx264
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

// WriteFrame sends one frame; its size must match the stream
func (s *Stream) WriteFrame(img *image.RGBA) error {
	if img.Rect.Dx() != s.width || img.Rect.Dy() != s.height {
		return fmt.Errorf("frame %d is %dx%d, stream is %dx%d", s.frames, img.Rect.Dx(), img.Rect.Dy(), s.width, s.height)
	}
	if err := writeRawRGBA(s.buf, img); err != nil {
		return fmt.Errorf("write raw error (frame %d): %w\n%s", s.frames, err, tail(s.log.String()))
	}
	s.frames++
	return nil
}

// Frames is the number of frames written so far
func (s *Stream) Frames() int {
	return s.frames
}

// Close flushes stdin and waits for ffmpeg to finish the file
func (s *Stream) Close() error {
	flushErr := s.buf.Flush()
	s.stdin.Close()

	if err := s.cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w\nLog: %s", err, tail(s.log.String()))
	}
	if flushErr != nil {
		return fmt.Errorf("flush error: %w", flushErr)
	}
	return nil
}

func writeRawRGBA(w io.Writer, img *image.RGBA) error {
	bounds := img.Bounds()
	// Проверяем, имеет ли изображение стандартный шаг (stride)
	if img.Stride != bounds.Dx()*4 || bounds.Min != (image.Point{}) {
		packed := image.NewRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
		draw.Draw(packed, packed.Rect, img, bounds.Min, draw.Src)
		img = packed
	}
	_, err := w.Write(img.Pix)
	return err
}

// MuxAudio copies the video stream and encodes audio to AAC, cut to the
// shorter of the two
func MuxAudio(ctx context.Context, videoPath, audioPath, finalPath string) error {
	cmd := exec.CommandContext(ctx, "ffmpeg", buildMuxArgs(videoPath, audioPath, finalPath)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("ffmpeg mux error: %v, output: %s", err, tail(string(out)))
	}
	return nil
}

func buildMuxArgs(videoPath, audioPath, finalPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-map", "0:v:0",
		"-map", "1:a:0",
		"-c:v", "copy",
		"-c:a", "aac",
		"-b:a", "192k",
		"-shortest",
		"-movflags", "+faststart",
		finalPath,
	}
}

// logBuffer collects ffmpeg output. exec copies into it from its own
// goroutines while WriteFrame may read it on a failed write.
type logBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *logBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// tail keeps the last lines of an ffmpeg log for error messages
func tail(log string) string {
	lines := strings.Split(strings.TrimSpace(log), "\n")
	if len(lines) > 15 {
		lines = lines[len(lines)-15:]
	}
	return strings.Join(lines, "\n")
}
