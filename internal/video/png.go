package video

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
)

// PNGSink writes numbered PNG frames into a directory, for inspection or
// for an external encoder
type PNGSink struct {
	Dir    string
	frames int
	enc    png.Encoder
}

func NewPNGSink(dir string) (*PNGSink, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	return &PNGSink{Dir: dir, enc: png.Encoder{CompressionLevel: png.BestSpeed}}, nil
}

// FramePath is the file name of frame i
func (s *PNGSink) FramePath(i int) string {
	return filepath.Join(s.Dir, fmt.Sprintf("frame_%06d.png", i))
}

func (s *PNGSink) WriteFrame(img *image.RGBA) error {
	f, err := os.Create(s.FramePath(s.frames))
	if err != nil {
		return err
	}
	if err := s.enc.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("frame %d: %w", s.frames, err)
	}
	if err := f.Close(); err != nil {
		return err
	}
	s.frames++
	return nil
}

func (s *PNGSink) Frames() int {
	return s.frames
}

func (s *PNGSink) Close() error {
	return nil
}
