package scene

import (
	"errors"
	"fmt"
	"slices"

	"github.com/ivlev/scroll2video/internal/curve"
	"github.com/ivlev/scroll2video/internal/overlay"
	"github.com/ivlev/scroll2video/internal/progress"
)

// Validate checks everything that would make the flythrough fail at setup.
// All problems are reported together.
func (s *Scene) Validate() error {
	var errs []error
	add := func(format string, args ...any) {
		errs = append(errs, fmt.Errorf(format, args...))
	}

	if s.Width <= 0 || s.Height <= 0 {
		add("size %dx%d must be positive", s.Width, s.Height)
	} else if s.Width%2 != 0 || s.Height%2 != 0 {
		add("size %dx%d must be even for yuv420p", s.Width, s.Height)
	}
	if s.FPS <= 0 {
		add("fps must be > 0, got %d", s.FPS)
	}
	if s.Stars < 0 {
		add("stars must be >= 0, got %d", s.Stars)
	}

	if _, err := s.Palette.Colors(); err != nil {
		errs = append(errs, err)
	}

	c := s.Camera
	if _, err := curve.ParseParameterization(c.Parameterization); err != nil {
		add("camera: %w", err)
	}
	if len(curve.Dedupe(c.PathPoints())) < 2 {
		add("camera: %w", curve.ErrDegeneratePath)
	}
	if c.Samples < 1 {
		add("camera: samples must be >= 1, got %d", c.Samples)
	}
	if c.MaxPitch < 0 || c.MaxTurnRate < 0 || c.Smoothing < 0 {
		add("camera: max_pitch, max_turn_rate and smoothing must be >= 0")
	}
	if c.FOV <= 0 || c.FOV >= 180 {
		add("camera: fov must be in (0, 180), got %.1f", c.FOV)
	}
	if c.Near <= 0 || c.Far <= c.Near {
		add("camera: need 0 < near < far, got %.3f / %.3f", c.Near, c.Far)
	}

	b := s.Bricks
	if b.Count < 1 {
		add("bricks: count must be >= 1, got %d", b.Count)
	}
	if b.Count > 1 && len(curve.Dedupe(b.Spring.Points())) < 2 {
		add("bricks: %w", curve.ErrDegeneratePath)
	}
	if b.ActiveRadius < 0 || b.Fade < 0 || b.FrontHold < 0 || b.Smoothing < 0 {
		add("bricks: active_radius, fade, front_hold and smoothing must be >= 0")
	}
	if b.Size.X() <= 0 || b.Size.Y() <= 0 || b.Size.Z() <= 0 {
		add("bricks: size must be positive, got %v", b.Size)
	}

	if _, err := progress.NewScript(s.Timeline); err != nil {
		add("timeline: %w", err)
	}

	if s.Reveal.In < 0 || s.Reveal.Out < 0 {
		add("reveal: durations must be >= 0")
	}
	if err := overlay.Validate(s.Ranges()); err != nil {
		errs = append(errs, err)
	}
	for i, o := range s.Overlays {
		if o.Title == "" && o.Body == "" && o.QR == "" {
			add("overlay %d: empty", i)
		}
		if !slices.Contains(Anchors, o.Anchor) {
			add("overlay %d: unknown anchor %q", i, o.Anchor)
		}
	}

	if bd := s.Backdrop; bd != nil {
		if bd.Path == "" {
			add("backdrop: path is required")
		}
		if bd.Page < 0 {
			add("backdrop: page must be >= 0")
		}
		if bd.Opacity < 0 || bd.Opacity > 1 {
			add("backdrop: opacity must be in [0, 1], got %.2f", bd.Opacity)
		}
	}

	if s.Effects.FadeIn < 0 || s.Effects.FadeOut < 0 {
		add("effects: fades must be >= 0")
	}

	return errors.Join(errs...)
}
