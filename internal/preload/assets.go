package preload

import (
	"context"
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/skip2/go-qrcode"

	"github.com/ivlev/scroll2video/internal/curve"
	"github.com/ivlev/scroll2video/internal/renderer"
	"github.com/ivlev/scroll2video/internal/scene"
	"github.com/ivlev/scroll2video/internal/source"
)

// QRSize is the native QR code size in pixels before panel scaling
const QRSize = 128

// Assets collects what the scene stages load
type Assets struct {
	renderer.Assets
	Path *curve.Path

	mu sync.Mutex
}

// SceneStages returns the stages for s. Relative backdrop paths resolve
// against baseDir. The camera path and bricks are required; the backdrop
// and QR codes fall back to the plain sky and a text-only panel.
func SceneStages(s *scene.Scene, baseDir string, out *Assets) []Stage {
	out.QR = make(map[int]image.Image)

	stages := []Stage{
		{
			Name:   "camera path",
			Weight: 2,
			Load: func(ctx context.Context) error {
				path, err := s.Camera.Path()
				if err != nil {
					return err
				}
				out.Path = path
				return nil
			},
		},
		{
			Name: "bricks",
			Load: func(ctx context.Context) error {
				positions, err := s.Bricks.Positions()
				if err != nil {
					return err
				}
				if len(positions) != s.Bricks.Count {
					return fmt.Errorf("expected %d bricks, sampled %d", s.Bricks.Count, len(positions))
				}
				return nil
			},
		},
	}

	if s.Backdrop != nil {
		b := *s.Backdrop
		path := b.Path
		if !filepath.IsAbs(path) && baseDir != "" {
			path = filepath.Join(baseDir, path)
		}
		stages = append(stages, Stage{
			Name:     "backdrop",
			Weight:   3,
			Optional: true,
			Load: func(ctx context.Context) error {
				img, err := LoadBackdrop(path, b.Page, s.Width, s.Height)
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				out.Backdrop = img
				return nil
			},
		})
	}

	for i, o := range s.Overlays {
		if o.QR == "" {
			continue
		}
		stages = append(stages, Stage{
			Name:     fmt.Sprintf("qr %d", i),
			Weight:   0.5,
			Optional: true,
			Load: func(ctx context.Context) error {
				img, err := QRCode(o.QR, QRSize)
				if err != nil {
					return err
				}
				if err := ctx.Err(); err != nil {
					return err
				}
				out.mu.Lock()
				out.QR[i] = img
				out.mu.Unlock()
				return nil
			},
		})
	}

	return stages
}

// LoadBackdrop renders one page of a PDF or image source to cover w x h
func LoadBackdrop(path string, page, w, h int) (image.Image, error) {
	src, err := source.Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	img, err := source.RenderFit(src, page, w, h)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return img, nil
}

// QRCode encodes content with medium error correction into a size x size image
func QRCode(content string, size int) (image.Image, error) {
	q, err := qrcode.New(content, qrcode.Medium)
	if err != nil {
		return nil, fmt.Errorf("qr: %w", err)
	}
	return q.Image(size), nil
}
