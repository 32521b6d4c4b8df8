// Package scene describes one flythrough: the camera path, the bricks along
// the spring, the scroll timeline and the overlay texts.
package scene

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scroll2video/internal/activation"
	"github.com/ivlev/scroll2video/internal/curve"
	"github.com/ivlev/scroll2video/internal/overlay"
	"github.com/ivlev/scroll2video/internal/progress"
	"github.com/ivlev/scroll2video/internal/rig"
)

// Version is written into generated scene files
const Version = "1.0"

// Scene is the YAML scene document
type Scene struct {
	Version  string              `yaml:"version"`
	Width    int                 `yaml:"width"`
	Height   int                 `yaml:"height"`
	FPS      int                 `yaml:"fps"`
	Seed     int64               `yaml:"seed"`
	Stars    int                 `yaml:"stars"`
	Palette  Palette             `yaml:"palette"`
	Camera   Camera              `yaml:"camera"`
	Bricks   Bricks              `yaml:"bricks"`
	Timeline []progress.Keyframe `yaml:"timeline"`
	Reveal   Reveal              `yaml:"reveal"`
	Overlays []Overlay           `yaml:"overlays"`
	Backdrop *Backdrop           `yaml:"backdrop,omitempty"`
	Effects  Effects             `yaml:"effects"`
}

// Palette holds hex colors (#rgb, #rrggbb or #rrggbbaa)
type Palette struct {
	SkyTop    string `yaml:"sky_top"`
	SkyBottom string `yaml:"sky_bottom"`
	Brick     string `yaml:"brick"`
	Star      string `yaml:"star"`
	Panel     string `yaml:"panel"`
	Text      string `yaml:"text"`
}

// Camera is the path the camera travels and how it sits on it
type Camera struct {
	Points           []mgl64.Vec3 `yaml:"points,omitempty"`
	Spring           *Spring      `yaml:"spring,omitempty"`
	Samples          int          `yaml:"samples"`
	Parameterization string       `yaml:"parameterization"`

	Offset      mgl64.Vec3 `yaml:"offset"`
	Pitch       float64    `yaml:"pitch"`
	Yaw         float64    `yaml:"yaw"`
	Roll        float64    `yaml:"roll"`
	MaxPitch    float64    `yaml:"max_pitch"`
	MaxTurnRate float64    `yaml:"max_turn_rate"` // deg/s
	Smoothing   float64    `yaml:"smoothing"`     // position half-life, seconds

	FOV  float64 `yaml:"fov"` // vertical, degrees
	Near float64 `yaml:"near"`
	Far  float64 `yaml:"far"`
}

// Bricks are placed evenly along their own spring
type Bricks struct {
	Spring       Spring     `yaml:"spring"`
	Count        int        `yaml:"count"`
	Drop         float64    `yaml:"drop"` // vertical offset of a fully lowered brick
	Size         mgl64.Vec3 `yaml:"size"`
	ActiveRadius float64    `yaml:"active_radius"`
	Fade         float64    `yaml:"fade"`
	FrontHold    float64    `yaml:"front_hold"`
	Smoothing    float64    `yaml:"smoothing"`
}

// Reveal is the overlay text animation timing in seconds
type Reveal struct {
	In  float64 `yaml:"in"`
	Out float64 `yaml:"out"`
}

// Overlay is one timed text block
type Overlay struct {
	Range  overlay.Range `yaml:"range"`
	Title  string        `yaml:"title"`
	Body   string        `yaml:"body,omitempty"`
	QR     string        `yaml:"qr,omitempty"`
	Anchor string        `yaml:"anchor,omitempty"`
}

// Backdrop is an optional page drawn behind the scene
type Backdrop struct {
	Path    string  `yaml:"path"`
	Page    int     `yaml:"page"`
	Opacity float64 `yaml:"opacity"`
}

// Effects are applied by ffmpeg after rendering
type Effects struct {
	FadeIn  float64 `yaml:"fade_in"`
	FadeOut float64 `yaml:"fade_out"`
	Tint    string  `yaml:"tint,omitempty"`
	Debug   bool    `yaml:"debug,omitempty"`
}

// Anchors accepted for overlays
var Anchors = []string{"top-left", "top-right", "bottom-left", "bottom-right", "center", "auto"}

// Duration is the scripted length of the flythrough in seconds
func (s *Scene) Duration() float64 {
	if len(s.Timeline) == 0 {
		return 0
	}
	return s.Timeline[len(s.Timeline)-1].Time
}

// Script builds the scroll timeline
func (s *Scene) Script() (*progress.Script, error) {
	return progress.NewScript(s.Timeline)
}

// Ranges returns the overlay progress ranges in order
func (s *Scene) Ranges() []overlay.Range {
	out := make([]overlay.Range, len(s.Overlays))
	for i, o := range s.Overlays {
		out[i] = o.Range
	}
	return out
}

// PathPoints returns the explicit control points or the generated spring
func (c Camera) PathPoints() []mgl64.Vec3 {
	if len(c.Points) > 0 {
		return c.Points
	}
	if c.Spring != nil {
		return c.Spring.Points()
	}
	return nil
}

// Path samples the camera path
func (c Camera) Path() (*curve.Path, error) {
	param, err := curve.ParseParameterization(c.Parameterization)
	if err != nil {
		return nil, err
	}
	return curve.Resample(c.PathPoints(), c.Samples, param)
}

// RigConfig maps the camera section onto rig settings
func (c Camera) RigConfig() rig.Config {
	return rig.Config{
		Offset:           c.Offset,
		Pitch:            c.Pitch,
		Yaw:              c.Yaw,
		Roll:             c.Roll,
		MaxPitchDeg:      c.MaxPitch,
		MaxDegPerSec:     c.MaxTurnRate,
		PositionHalfLife: c.Smoothing,
	}
}

// Positions returns Count brick positions evenly spaced along the spring
func (b Bricks) Positions() ([]mgl64.Vec3, error) {
	path, err := curve.Resample(b.Spring.Points(), b.Count-1, curve.Centripetal)
	if err != nil {
		return nil, err
	}
	out := make([]mgl64.Vec3, len(path.Samples))
	for i, s := range path.Samples {
		out[i] = s.Position
	}
	return out, nil
}

// FieldConfig maps the bricks section onto activation settings
func (b Bricks) FieldConfig() activation.Config {
	return activation.Config{
		Count:        b.Count,
		ActiveRadius: b.ActiveRadius,
		Fade:         b.Fade,
		FrontHold:    b.FrontHold,
		HalfLife:     b.Smoothing,
	}
}
