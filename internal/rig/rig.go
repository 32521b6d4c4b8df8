// Package rig maps scroll progress to a smoothed camera pose travelling
// along a sampled path.
package rig

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scroll2video/internal/curve"
	"github.com/ivlev/scroll2video/internal/progress"
	"github.com/ivlev/scroll2video/internal/smooth"
)

// ErrNoPath is returned when the rig is built without samples
var ErrNoPath = errors.New("rig: path has no samples")

// Config is the fixed camera placement relative to the path
type Config struct {
	// Offset in the path frame: X right, Y up, Z along the tangent
	Offset mgl64.Vec3
	// Fixed rotation composed after the path basis, in degrees
	Pitch, Yaw, Roll float64
	// WorldUp defaults to +Y
	WorldUp mgl64.Vec3

	MaxPitchDeg      float64 // 0 = unlimited
	MaxDegPerSec     float64 // 0 = unlimited
	PositionHalfLife float64 // Seconds, 0 = snap
}

// Rig owns the camera pose and advances it once per frame
type Rig struct {
	path  *curve.Path
	cfg   Config
	up    mgl64.Vec3
	local mgl64.Quat

	pose   Pose
	primed bool
}

// New builds a rig on a sampled path
func New(path *curve.Path, cfg Config) (*Rig, error) {
	if path == nil || path.Len() == 0 {
		return nil, ErrNoPath
	}
	if cfg.MaxPitchDeg < 0 || cfg.MaxDegPerSec < 0 || cfg.PositionHalfLife < 0 {
		return nil, fmt.Errorf("rig: limits must be >= 0 (pitch %.2f, deg/s %.2f, half-life %.2f)",
			cfg.MaxPitchDeg, cfg.MaxDegPerSec, cfg.PositionHalfLife)
	}

	up := cfg.WorldUp
	if up.LenSqr() == 0 {
		up = mgl64.Vec3{0, 1, 0}
	}

	return &Rig{
		path: path,
		cfg:  cfg,
		up:   up.Normalize(),
		local: mgl64.AnglesToQuat(
			mgl64.DegToRad(cfg.Yaw),
			mgl64.DegToRad(cfg.Pitch),
			mgl64.DegToRad(cfg.Roll),
			mgl64.YXZ,
		),
	}, nil
}

// Target returns the unsmoothed pose for progress
func (r *Rig) Target(p float64) Pose {
	s := r.path.Frame(progress.Clamp(p))
	tangent := s.Tangent

	up := r.up
	side := up.Cross(tangent)
	if side.Len() < 1e-6 {
		// Tangent runs along world up; the transported normal never flips
		up = s.Normal
		side = up.Cross(tangent)
	}
	side = side.Normalize()
	correctedUp := tangent.Cross(side)
	right := side.Mul(-1)

	basis := mgl64.Mat4FromCols(
		right.Vec4(0),
		correctedUp.Vec4(0),
		tangent.Mul(-1).Vec4(0),
		mgl64.Vec4{0, 0, 0, 1},
	)
	orient := mgl64.Mat4ToQuat(basis).Mul(r.local).Normalize()
	orient = r.clampPitch(orient)

	o := r.cfg.Offset
	offset := right.Mul(o.X()).Add(correctedUp.Mul(o.Y())).Add(tangent.Mul(o.Z()))

	return Pose{Position: s.Position.Add(offset), Orientation: orient}
}

// clampPitch rotates q in its vertical plane until the forward vector is
// within MaxPitchDeg of the horizon
func (r *Rig) clampPitch(q mgl64.Quat) mgl64.Quat {
	if r.cfg.MaxPitchDeg <= 0 {
		return q
	}

	fwd := q.Rotate(mgl64.Vec3{0, 0, -1})
	pitch := math.Asin(mgl64.Clamp(fwd.Dot(r.up), -1, 1))
	limit := mgl64.DegToRad(r.cfg.MaxPitchDeg)
	if math.Abs(pitch) <= limit {
		return q
	}

	axis := fwd.Cross(r.up)
	if axis.Len() < 1e-9 {
		axis = q.Rotate(mgl64.Vec3{1, 0, 0})
	}
	target := math.Copysign(limit, pitch)

	return mgl64.QuatRotate(target-pitch, axis.Normalize()).Mul(q).Normalize()
}

// Update advances the rig by dt seconds toward the pose for progress.
// The first call snaps to the target.
func (r *Rig) Update(p float64, dt float64) Pose {
	target := r.Target(p)

	if !r.primed {
		r.pose = target
		r.primed = true
		return r.pose
	}
	if dt <= 0 {
		return r.pose
	}

	a := smooth.Decay(dt, r.cfg.PositionHalfLife)
	r.pose.Position = r.pose.Position.Add(target.Position.Sub(r.pose.Position).Mul(a))

	maxStep := 0.0
	if r.cfg.MaxDegPerSec > 0 {
		maxStep = mgl64.DegToRad(r.cfg.MaxDegPerSec * dt)
	}
	r.pose.Orientation = rotateToward(r.pose.Orientation, target.Orientation, maxStep)

	return r.pose
}

// rotateToward turns cur toward target along the shortest arc by at most
// maxStep radians. maxStep <= 0 snaps.
func rotateToward(cur, target mgl64.Quat, maxStep float64) mgl64.Quat {
	if maxStep <= 0 {
		return target
	}

	delta := target.Mul(cur.Inverse()).Normalize()
	if delta.W < 0 {
		delta = delta.Scale(-1)
	}

	angle := 2 * math.Atan2(delta.V.Len(), delta.W)
	if angle <= maxStep {
		return target
	}

	return mgl64.QuatRotate(maxStep, delta.V.Normalize()).Mul(cur).Normalize()
}

// Pose returns the last pose produced by Update
func (r *Rig) Pose() Pose {
	return r.pose
}

// Reset forgets the smoothing state; the next Update snaps
func (r *Rig) Reset() {
	r.primed = false
	r.pose = Pose{}
}

// Path returns the sampled path the rig travels on
func (r *Rig) Path() *curve.Path {
	return r.path
}

// WorldUp is the normalized reference up vector
func (r *Rig) WorldUp() mgl64.Vec3 {
	return r.up
}
