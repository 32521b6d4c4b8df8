package rig

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/ivlev/scroll2video/internal/curve"
)

func springPath(t *testing.T, samples int) *curve.Path {
	t.Helper()
	pts := make([]mgl64.Vec3, 32)
	for i := range pts {
		a := float64(i) * 0.6
		pts[i] = mgl64.Vec3{6 * math.Cos(a), float64(i) * 0.8, 6 * math.Sin(a)}
	}
	path, err := curve.Resample(pts, samples, curve.Centripetal)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	return path
}

func pointSegmentDistance(p, a, b mgl64.Vec3) float64 {
	ab := b.Sub(a)
	l := ab.LenSqr()
	if l == 0 {
		return p.Sub(a).Len()
	}
	f := mgl64.Clamp(p.Sub(a).Dot(ab)/l, 0, 1)
	return p.Sub(a.Add(ab.Mul(f))).Len()
}

func TestTargetStaysNearBracketingSamples(t *testing.T) {
	path := springPath(t, 200)
	cfg := Config{Offset: mgl64.Vec3{1.5, 2, -3}, Yaw: 10}
	r, err := New(path, cfg)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	bound := cfg.Offset.Len() + 1e-9
	for k := 0; k <= 1000; k++ {
		p := float64(k) / 1000
		pose := r.Target(p)

		idx := p * float64(path.Segments())
		i := int(math.Floor(idx))
		if i >= path.Segments() {
			i = path.Segments() - 1
		}
		a, b := path.Samples[i].Position, path.Samples[i+1].Position

		if d := pointSegmentDistance(pose.Position, a, b); d > bound {
			t.Fatalf("Progress %.3f: camera %f away from its segment, bound %f", p, d, bound)
		}
	}
}

func TestTargetLooksAlongTangent(t *testing.T) {
	path := springPath(t, 100)
	r, err := New(path, Config{})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	for _, p := range []float64{0, 0.25, 0.5, 0.99} {
		pose := r.Target(p)
		_, tangent := path.At(p)
		if pose.Forward().Sub(tangent).Len() > 1e-9 {
			t.Errorf("Progress %.2f: forward %v, tangent %v", p, pose.Forward(), tangent)
		}
		if math.Abs(pose.Right().Dot(mgl64.Vec3{0, 1, 0})) > 1e-9 {
			t.Errorf("Progress %.2f: camera is rolled, right = %v", p, pose.Right())
		}
	}
}

func TestOffsetInPathFrame(t *testing.T) {
	path, err := curve.Resample([]mgl64.Vec3{{0, 0, 0}, {0, 0, -10}}, 10, curve.Centripetal)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	r, err := New(path, Config{Offset: mgl64.Vec3{1, 2, 3}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Travelling down -Z: right is +X, up is +Y, along tangent is -Z
	pose := r.Target(0)
	want := mgl64.Vec3{1, 2, -3}
	if !pose.Position.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("Expected %v, got %v", want, pose.Position)
	}
}

func TestPitchClamp(t *testing.T) {
	path, err := curve.Resample([]mgl64.Vec3{{0, 0, 0}, {1, 10, 0}, {2, 20, 0}}, 20, curve.Centripetal)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	up := mgl64.Vec3{0, 1, 0}

	free, _ := New(path, Config{})
	if pitch := free.Target(0.5).Pitch(up); pitch < 80 {
		t.Fatalf("Expected a steep unclamped pitch, got %.2f", pitch)
	}

	clamped, _ := New(path, Config{MaxPitchDeg: 30})
	pose := clamped.Target(0.5)
	if pitch := pose.Pitch(up); math.Abs(pitch-30) > 1e-6 {
		t.Errorf("Expected pitch clamped to 30, got %.6f", pitch)
	}
}

func TestVerticalPathHasNoNaN(t *testing.T) {
	path, err := curve.Resample([]mgl64.Vec3{{0, 0, 0}, {0, 10, 0}}, 10, curve.Centripetal)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	r, err := New(path, Config{MaxPitchDeg: 45})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	pose := r.Target(0.3)
	q := pose.Orientation
	for _, v := range []float64{q.W, q.V.X(), q.V.Y(), q.V.Z()} {
		if math.IsNaN(v) {
			t.Fatalf("NaN orientation on a vertical path: %v", q)
		}
	}
	if pitch := pose.Pitch(mgl64.Vec3{0, 1, 0}); pitch > 45+1e-6 {
		t.Errorf("Expected pitch <= 45, got %f", pitch)
	}
}

func TestAngularRateLimit(t *testing.T) {
	path := springPath(t, 300)
	const maxDeg = 90.0
	r, err := New(path, Config{MaxDegPerSec: maxDeg, PositionHalfLife: 0.2})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	// Step discontinuities in both directions plus a slow scrub
	var trajectory []float64
	for i := 0; i < 60; i++ {
		trajectory = append(trajectory, 0)
	}
	for i := 0; i < 240; i++ {
		trajectory = append(trajectory, 1)
	}
	for i := 0; i < 120; i++ {
		trajectory = append(trajectory, 0.3)
	}
	for i := 0; i < 200; i++ {
		trajectory = append(trajectory, 0.3+float64(i)/400)
	}

	dt := 1.0 / 60
	prev := r.Update(trajectory[0], dt)
	for i, p := range trajectory[1:] {
		cur := r.Update(p, dt)
		if step := AngleBetween(prev.Orientation, cur.Orientation); step > maxDeg*dt+1e-6 {
			t.Fatalf("Frame %d: rotated %.4f deg, limit %.4f", i+1, step, maxDeg*dt)
		}
		prev = cur
	}
}

func TestUpdateConvergesToTarget(t *testing.T) {
	path := springPath(t, 100)
	r, _ := New(path, Config{MaxDegPerSec: 120, PositionHalfLife: 0.1})

	r.Update(0, 0.016)
	for i := 0; i < 600; i++ {
		r.Update(0.8, 1.0/60)
	}

	target := r.Target(0.8)
	if d := r.Pose().Position.Sub(target.Position).Len(); d > 1e-6 {
		t.Errorf("Position did not converge, still %g away", d)
	}
	if a := AngleBetween(r.Pose().Orientation, target.Orientation); a > 1e-6 {
		t.Errorf("Orientation did not converge, still %g deg away", a)
	}
}

func TestSmoothingIsFrameRateIndependent(t *testing.T) {
	path := springPath(t, 100)

	run := func(fps int) mgl64.Vec3 {
		r, _ := New(path, Config{PositionHalfLife: 0.25})
		r.Update(0, 0)
		dt := 1.0 / float64(fps)
		for i := 0; i < fps; i++ {
			r.Update(1, dt)
		}
		return r.Pose().Position
	}

	a, b := run(30), run(144)
	if a.Sub(b).Len() > 1e-9 {
		t.Errorf("30fps %v and 144fps %v disagree after one second", a, b)
	}
}

func TestFirstUpdateSnapsAndResetRearms(t *testing.T) {
	path := springPath(t, 100)
	r, _ := New(path, Config{PositionHalfLife: 5, MaxDegPerSec: 1})

	pose := r.Update(0.6, 1.0/60)
	if !pose.Position.ApproxEqual(r.Target(0.6).Position) {
		t.Error("Expected the first update to snap to the target")
	}

	r.Reset()
	pose = r.Update(0.1, 1.0/60)
	if !pose.Position.ApproxEqual(r.Target(0.1).Position) {
		t.Error("Expected the update after Reset to snap")
	}
}

func TestSingleSamplePathIsFixed(t *testing.T) {
	path, err := curve.Resample([]mgl64.Vec3{{0, 0, 0}, {5, 0, 0}}, 0, curve.Centripetal)
	if err != nil {
		t.Fatalf("Sample failed: %v", err)
	}
	r, _ := New(path, Config{Offset: mgl64.Vec3{0, 1, 0}})

	a := r.Target(0)
	b := r.Target(1)
	if !a.Position.ApproxEqual(b.Position) || AngleBetween(a.Orientation, b.Orientation) > 1e-9 {
		t.Errorf("Expected a fixed pose, got %v and %v", a, b)
	}
}

func TestOutOfRangeProgressClamps(t *testing.T) {
	path := springPath(t, 100)
	r, _ := New(path, Config{})

	if !r.Target(-2).Position.ApproxEqual(r.Target(0).Position) {
		t.Error("Expected progress < 0 to clamp to 0")
	}
	if !r.Target(7).Position.ApproxEqual(r.Target(1).Position) {
		t.Error("Expected progress > 1 to clamp to 1")
	}
}

func TestNewErrors(t *testing.T) {
	if _, err := New(nil, Config{}); !errors.Is(err, ErrNoPath) {
		t.Errorf("Expected ErrNoPath, got %v", err)
	}
	path := springPath(t, 10)
	if _, err := New(path, Config{MaxDegPerSec: -1}); err == nil {
		t.Error("Expected error for a negative rate limit")
	}
}

func TestViewMatrixMapsCameraToOrigin(t *testing.T) {
	path := springPath(t, 100)
	r, _ := New(path, Config{Offset: mgl64.Vec3{0, 1, -2}})
	pose := r.Target(0.4)

	v := pose.View()
	origin := v.Mul4x1(pose.Position.Vec4(1))
	if origin.Vec3().Len() > 1e-9 {
		t.Errorf("Camera position should map to the origin, got %v", origin)
	}

	ahead := v.Mul4x1(pose.Position.Add(pose.Forward()).Vec4(1))
	if ahead.Vec3().Sub(mgl64.Vec3{0, 0, -1}).Len() > 1e-9 {
		t.Errorf("A point ahead should map to -Z, got %v", ahead)
	}
}
