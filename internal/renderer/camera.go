package renderer

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scroll2video/internal/rig"
)

// camera projects world positions for one frame
type camera struct {
	viewProj mgl64.Mat4
	rotProj  mgl64.Mat4 // projection of directions, ignores translation
	eye      mgl64.Vec3
	near     float64
	w, h     float64
}

func newCamera(proj mgl64.Mat4, pose rig.Pose, near float64, w, h int) camera {
	view := pose.View()
	rot := view
	rot.SetCol(3, mgl64.Vec4{0, 0, 0, 1})

	return camera{
		viewProj: proj.Mul4(view),
		rotProj:  proj.Mul4(rot),
		eye:      pose.Position,
		near:     near,
		w:        float64(w),
		h:        float64(h),
	}
}

// project maps a world point to the screen; ok is false behind the near plane
func (c camera) project(p mgl64.Vec3) (point, float64, bool) {
	return c.toScreen(c.viewProj.Mul4x1(p.Vec4(1)))
}

// projectDir maps a direction at infinity to the screen
func (c camera) projectDir(d mgl64.Vec3) (point, bool) {
	clip := c.rotProj.Mul4x1(d.Vec4(0))
	if clip.W() <= 0 {
		return point{}, false
	}
	return c.ndcToScreen(clip.X()/clip.W(), clip.Y()/clip.W()), true
}

func (c camera) toScreen(clip mgl64.Vec4) (point, float64, bool) {
	// For a perspective projection clip.W is the view-space depth
	if clip.W() < c.near {
		return point{}, 0, false
	}
	return c.ndcToScreen(clip.X()/clip.W(), clip.Y()/clip.W()), clip.W(), true
}

func (c camera) ndcToScreen(x, y float64) point {
	return point{
		X: (x + 1) / 2 * c.w,
		Y: (1 - y) / 2 * c.h,
	}
}
