package rig

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Pose is a camera position and orientation. The camera looks down its local -Z.
type Pose struct {
	Position    mgl64.Vec3
	Orientation mgl64.Quat
}

// Forward is the viewing direction
func (p Pose) Forward() mgl64.Vec3 {
	return p.Orientation.Rotate(mgl64.Vec3{0, 0, -1})
}

// Up is the camera's local +Y in world space
func (p Pose) Up() mgl64.Vec3 {
	return p.Orientation.Rotate(mgl64.Vec3{0, 1, 0})
}

// Right is the camera's local +X in world space
func (p Pose) Right() mgl64.Vec3 {
	return p.Orientation.Rotate(mgl64.Vec3{1, 0, 0})
}

// View returns the world-to-camera matrix
func (p Pose) View() mgl64.Mat4 {
	inv := p.Orientation.Inverse().Normalize()
	pos := p.Position
	return inv.Mat4().Mul4(mgl64.Translate3D(-pos.X(), -pos.Y(), -pos.Z()))
}

// Pitch returns the elevation of the forward vector above the plane normal to up, in degrees
func (p Pose) Pitch(up mgl64.Vec3) float64 {
	return mgl64.RadToDeg(math.Asin(mgl64.Clamp(p.Forward().Dot(up.Normalize()), -1, 1)))
}

// AngleBetween returns the rotation angle in degrees between two orientations
func AngleBetween(a, b mgl64.Quat) float64 {
	d := b.Normalize().Mul(a.Normalize().Inverse())
	return mgl64.RadToDeg(2 * math.Atan2(d.V.Len(), math.Abs(d.W)))
}
