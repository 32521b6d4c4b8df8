package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scroll2video/internal/overlay"
	"github.com/ivlev/scroll2video/internal/progress"
)

// Default returns a complete spring flythrough with three overlays
func Default() *Scene {
	s := &Scene{
		Timeline: []progress.Keyframe{
			{Time: 0, Progress: 0},
			{Time: 20, Progress: 1, Ease: "in-out-sine"},
		},
		Overlays: []Overlay{
			{Range: overlay.Range{Start: 0.05, End: 0.3}, Title: "Descent", Body: "Scroll to follow the spring down."},
			{Range: overlay.Range{Start: 0.4, End: 0.65}, Title: "Halfway", Body: "Bricks rise as the camera passes."},
			{Range: overlay.Range{Start: 0.8, End: 1}, Title: "Bottom", Anchor: "auto"},
		},
	}
	s.FillDefaults()
	return s
}

// FillDefaults sets every unset field to its default value
func (s *Scene) FillDefaults() {
	if s.Version == "" {
		s.Version = Version
	}
	if s.Width == 0 {
		s.Width = 1280
	}
	if s.Height == 0 {
		s.Height = 720
	}
	if s.FPS == 0 {
		s.FPS = 30
	}
	if s.Seed == 0 {
		s.Seed = 7
	}
	if s.Stars == 0 {
		s.Stars = 400
	}

	p := &s.Palette
	setDefault(&p.SkyTop, "#0b1026")
	setDefault(&p.SkyBottom, "#2b4a7a")
	setDefault(&p.Brick, "#d9774b")
	setDefault(&p.Star, "#ffffff")
	setDefault(&p.Panel, "#000000b0")
	setDefault(&p.Text, "#f5f5f5")

	c := &s.Camera
	if len(c.Points) == 0 && c.Spring == nil {
		c.Spring = &Spring{Radius: 7.5, Turns: 3, Height: 30, PointsPerTurn: 8}
	}
	if c.Samples == 0 {
		c.Samples = 400
	}
	setDefault(&c.Parameterization, "centripetal")
	if c.Offset == (mgl64.Vec3{}) {
		// Above and behind the path point, looking slightly down
		c.Offset = mgl64.Vec3{0, 2.5, -3}
		c.Pitch = -15
	}
	if c.MaxPitch == 0 {
		c.MaxPitch = 60
	}
	if c.MaxTurnRate == 0 {
		c.MaxTurnRate = 120
	}
	if c.Smoothing == 0 {
		c.Smoothing = 0.12
	}
	if c.FOV == 0 {
		c.FOV = 60
	}
	if c.Near == 0 {
		c.Near = 0.1
	}
	if c.Far == 0 {
		c.Far = 200
	}

	b := &s.Bricks
	if b.Spring == (Spring{}) {
		b.Spring = Spring{Radius: 6, Turns: 3, Height: 30, PointsPerTurn: 8}
	}
	if b.Count == 0 {
		b.Count = 90
	}
	if b.Drop == 0 {
		b.Drop = 3
	}
	if b.Size == (mgl64.Vec3{}) {
		b.Size = mgl64.Vec3{1.2, 0.5, 0.6}
	}
	if b.ActiveRadius == 0 {
		b.ActiveRadius = 4
	}
	if b.Fade == 0 {
		b.Fade = 6
	}
	if b.Smoothing == 0 {
		b.Smoothing = 0.15
	}

	if len(s.Timeline) == 0 {
		s.Timeline = []progress.Keyframe{{Time: 0, Progress: 0}, {Time: 20, Progress: 1, Ease: "in-out-sine"}}
	}
	if s.Reveal == (Reveal{}) {
		s.Reveal = Reveal{In: 0.6, Out: 0.4}
	}
	for i := range s.Overlays {
		setDefault(&s.Overlays[i].Anchor, "bottom-left")
	}
	if s.Backdrop != nil && s.Backdrop.Opacity == 0 {
		s.Backdrop.Opacity = 0.35
	}
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}
