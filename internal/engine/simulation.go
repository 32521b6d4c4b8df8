package engine

import (
	"fmt"
	"math"

	"github.com/ivlev/scroll2video/internal/activation"
	"github.com/ivlev/scroll2video/internal/curve"
	"github.com/ivlev/scroll2video/internal/overlay"
	"github.com/ivlev/scroll2video/internal/progress"
	"github.com/ivlev/scroll2video/internal/renderer"
	"github.com/ivlev/scroll2video/internal/rig"
	"github.com/ivlev/scroll2video/internal/scene"
)

// Simulation owns the stateful per-frame components. They must be stepped
// in frame order; only rasterization runs in parallel.
type Simulation struct {
	Rig      *rig.Rig
	Field    *activation.Field
	Overlays *overlay.Sequencer
}

// NewSimulation wires the rig, activation field and overlay sequencer for s.
// A nil path is sampled from the scene.
func NewSimulation(s *scene.Scene, path *curve.Path) (*Simulation, error) {
	if path == nil {
		var err error
		if path, err = s.Camera.Path(); err != nil {
			return nil, fmt.Errorf("camera path: %w", err)
		}
	}

	r, err := rig.New(path, s.Camera.RigConfig())
	if err != nil {
		return nil, err
	}
	field, err := activation.New(s.Bricks.FieldConfig())
	if err != nil {
		return nil, err
	}
	seq, err := overlay.NewSequencer(s.Ranges(), s.Reveal.In, s.Reveal.Out)
	if err != nil {
		return nil, err
	}

	return &Simulation{Rig: r, Field: field, Overlays: seq}, nil
}

// Step advances every component to the progress read from src after dt
// seconds. The state owns its slices and may be rendered later on another
// goroutine.
func (m *Simulation) Step(src progress.Source, dt float64) (renderer.FrameState, []overlay.Event) {
	p := progress.Clamp(src.Progress())
	pose := m.Rig.Update(p, dt)
	values := m.Field.Update(p, dt)
	events := m.Overlays.Update(p, dt)

	return renderer.FrameState{
		Progress:   p,
		Pose:       pose,
		Activation: append([]float64(nil), values...),
		Overlays:   m.Overlays.States(),
	}, events
}

// Driver steps a simulation along the scripted timeline, one frame at a time
type Driver struct {
	sim      *Simulation
	timeline *progress.Timeline
	frame    int
	frames   int

	// OnEvent, if set, sees every overlay transition with its frame index
	OnEvent func(frame int, e overlay.Event)
}

// NewDriver prepares frame-by-frame playback of s
func NewDriver(s *scene.Scene, path *curve.Path) (*Driver, error) {
	script, err := s.Script()
	if err != nil {
		return nil, err
	}
	sim, err := NewSimulation(s, path)
	if err != nil {
		return nil, err
	}
	clock := progress.Clock{FPS: s.FPS}
	return &Driver{
		sim:      sim,
		timeline: &progress.Timeline{Script: script, Clock: clock},
		frames:   clock.Frames(script.Duration()),
	}, nil
}

// Frames is the total frame count of the timeline
func (d *Driver) Frames() int {
	return d.frames
}

// Done reports whether every frame has been produced
func (d *Driver) Done() bool {
	return d.frame >= d.frames
}

// Next returns the state of the next frame
func (d *Driver) Next() renderer.FrameState {
	i := d.frame
	d.timeline.Seek(i)

	st, events := d.sim.Step(d.timeline, d.timeline.Clock.Delta())
	st.Index = i
	st.Time = d.timeline.Seconds()

	if d.OnEvent != nil {
		for _, e := range events {
			d.OnEvent(i, e)
		}
	}
	d.frame++
	return st
}

// Simulate runs the first frames of the scene timeline and returns every
// frame state. frames <= 0 runs the whole timeline.
func Simulate(s *scene.Scene, frames int) ([]renderer.FrameState, error) {
	d, err := NewDriver(s, nil)
	if err != nil {
		return nil, err
	}
	if frames <= 0 {
		frames = d.Frames()
	}

	out := make([]renderer.FrameState, 0, frames)
	for i := 0; i < frames; i++ {
		out = append(out, d.Next())
	}
	return out, nil
}

// ScaleTimeline stretches keyframe times so the timeline lasts duration
// seconds, aligning every key to a frame boundary. Keys that would collapse
// onto the previous frame are pushed one frame later.
func ScaleTimeline(keys []progress.Keyframe, duration float64, fps int) ([]progress.Keyframe, error) {
	if len(keys) == 0 {
		return nil, fmt.Errorf("empty timeline")
	}
	last := keys[len(keys)-1].Time
	if last <= 0 || duration <= 0 || fps <= 0 {
		return nil, fmt.Errorf("cannot scale a %.3fs timeline to %.3fs at %d fps", last, duration, fps)
	}

	scale := duration / last
	frame := 1.0 / float64(fps)

	out := make([]progress.Keyframe, len(keys))
	for i, k := range keys {
		k.Time = math.Round(k.Time*scale*float64(fps)) / float64(fps)
		if i > 0 && k.Time <= out[i-1].Time {
			k.Time = out[i-1].Time + frame
		}
		out[i] = k
	}
	return out, nil
}
