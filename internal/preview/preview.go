// Package preview drives a scene from scroll input instead of a timeline.
// It holds no windowing code; cmd/rigpreview feeds it from ebiten.
package preview

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/ivlev/scroll2video/internal/analyzer"
	"github.com/ivlev/scroll2video/internal/engine"
	"github.com/ivlev/scroll2video/internal/overlay"
	"github.com/ivlev/scroll2video/internal/preload"
	"github.com/ivlev/scroll2video/internal/progress"
	"github.com/ivlev/scroll2video/internal/renderer"
	"github.com/ivlev/scroll2video/internal/scene"
)

const (
	PageLength = 6000 // scrollable extent in pixels
	WheelStep  = 120  // pixels per wheel notch
	KeySpeed   = 900  // pixels per second while an arrow key is held
)

// Input is the scroll input gathered during one tick
type Input struct {
	Wheel float64 // notches, positive scrolls down the page
	Keys  float64 // -1 up, 0 none, +1 down
	Home  bool
	End   bool
}

// Viewer owns the simulation and the last frame state
type Viewer struct {
	Scene  *scene.Scene
	Scroll *progress.Scroll

	r      *renderer.Renderer
	sim    *engine.Simulation
	state  renderer.FrameState
	events []overlay.Event
	ticks  int
}

// New starts at the top of the page
func New(s *scene.Scene, r *renderer.Renderer, sim *engine.Simulation) *Viewer {
	v := &Viewer{
		Scene:  s,
		Scroll: progress.NewScroll(PageLength),
		r:      r,
		sim:    sim,
	}
	v.Step(Input{}, 0)
	return v
}

// Load preloads the scene assets and builds a viewer. Optional assets that
// fail are reported through warn and replaced.
func Load(ctx context.Context, s *scene.Scene, baseDir string, scorer analyzer.Scorer, warn func(string)) (*Viewer, error) {
	var assets preload.Assets
	loader := &preload.Loader{Stages: preload.SceneStages(s, baseDir, &assets)}
	if _, err := loader.Run(ctx, func(st preload.Status) {
		if st.Substituted && warn != nil {
			warn(fmt.Sprintf("%s: %v", st.Stage, st.Err))
		}
	}); err != nil {
		return nil, err
	}

	r, err := renderer.New(s, assets.Assets, scorer)
	if err != nil {
		return nil, err
	}
	sim, err := engine.NewSimulation(s, assets.Path)
	if err != nil {
		return nil, err
	}
	return New(s, r, sim), nil
}

// Step applies input and advances the simulation by dt seconds
func (v *Viewer) Step(in Input, dt float64) []overlay.Event {
	switch {
	case in.Home:
		v.Scroll.Set(0, PageLength)
	case in.End:
		v.Scroll.Set(PageLength, PageLength)
	}
	v.Scroll.Add(in.Wheel*WheelStep + in.Keys*KeySpeed*dt)

	st, events := v.sim.Step(v.Scroll, dt)
	st.Index = v.ticks
	st.Time = float64(v.ticks) * dt
	v.state = st
	v.events = append(v.events[:0], events...)
	v.ticks++
	return v.events
}

// State is the frame state of the last step
func (v *Viewer) State() renderer.FrameState {
	return v.state
}

// Progress is the current scroll progress
func (v *Viewer) Progress() float64 {
	return v.Scroll.Progress()
}

// Size is the frame size in pixels
func (v *Viewer) Size() (int, int) {
	return v.r.Size()
}

// Draw renders the last state into dst
func (v *Viewer) Draw(dst *image.RGBA) {
	v.r.Render(dst, v.state)
}

// HUD is a one-line status for the debug overlay
func (v *Viewer) HUD() string {
	var b strings.Builder
	fmt.Fprintf(&b, "progress %.3f", v.state.Progress)
	if a := v.sim.Overlays.Active(); a >= 0 {
		fmt.Fprintf(&b, " | overlay %d (%.2f)", a, v.sim.Overlays.Reveal(a))
	}
	pos := v.state.Pose.Position
	fmt.Fprintf(&b, " | cam %.1f %.1f %.1f | pitch %.0f", pos.X(), pos.Y(), pos.Z(), v.state.Pose.Pitch(v.sim.Rig.WorldUp()))
	return b.String()
}
