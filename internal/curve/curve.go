// Package curve turns a handful of 3D control points into a dense,
// arc-length parameterized polyline with a continuous orthonormal frame at
// every sample.
package curve

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrDegeneratePath is returned when fewer than two distinct control points remain
	ErrDegeneratePath = errors.New("curve: path needs at least 2 distinct control points")
	// ErrSampleCount is returned for a negative sample count
	ErrSampleCount = errors.New("curve: sample count must be >= 0")
)

// dedupeEpsilon is the distance under which adjacent control points are merged
const dedupeEpsilon = 1e-9

// Sample is one point of the sampled path with its frame
type Sample struct {
	T        float64 // Normalized parameter in [0,1]
	Position mgl64.Vec3
	Tangent  mgl64.Vec3
	Normal   mgl64.Vec3
	Binormal mgl64.Vec3
}

// Path is the immutable result of Resample. It is safe for concurrent reads.
type Path struct {
	Samples []Sample
	Length  float64 // Arc length of the spline
}

// Resample builds a Catmull-Rom spline through points and returns samples+1
// samples evenly spaced in arc length, covering t in [0,1] inclusive.
func Resample(points []mgl64.Vec3, samples int, param Parameterization) (*Path, error) {
	if samples < 0 {
		return nil, ErrSampleCount
	}

	pts := Dedupe(points)
	if len(pts) < 2 {
		return nil, ErrDegeneratePath
	}

	sp := newSpline(pts, param)
	tbl := newArcTable(sp)
	total := tbl.total()

	out := make([]Sample, samples+1)
	for i := range out {
		t := 0.0
		if samples > 0 {
			t = float64(i) / float64(samples)
		}
		u := tbl.paramAt(t * total)

		out[i].T = t
		out[i].Position = sp.position(u)
		out[i].Tangent = sp.derivative(u).Normalize()
	}

	fixTangents(out, pts)
	transportFrames(out)

	return &Path{Samples: out, Length: total}, nil
}

// Dedupe drops control points that coincide with their predecessor
func Dedupe(points []mgl64.Vec3) []mgl64.Vec3 {
	out := make([]mgl64.Vec3, 0, len(points))
	for _, p := range points {
		if len(out) > 0 && p.Sub(out[len(out)-1]).Len() < dedupeEpsilon {
			continue
		}
		out = append(out, p)
	}
	return out
}

// fixTangents replaces zero-length derivatives with a neighbouring tangent
func fixTangents(samples []Sample, pts []mgl64.Vec3) {
	fallback := pts[1].Sub(pts[0]).Normalize()
	for i := range samples {
		if samples[i].Tangent.LenSqr() > 0 {
			fallback = samples[i].Tangent
			continue
		}
		samples[i].Tangent = fallback
	}
}

// transportFrames propagates a rotation minimizing frame along the samples:
// each normal is the previous one rotated by the angle between consecutive
// tangents, so frames never flip when the tangent passes world up.
func transportFrames(samples []Sample) {
	t0 := samples[0].Tangent
	axis := smallestAxis(t0)
	side := t0.Cross(axis).Normalize()
	samples[0].Normal = t0.Cross(side).Normalize()
	samples[0].Binormal = t0.Cross(samples[0].Normal)

	for i := 1; i < len(samples); i++ {
		prev, cur := samples[i-1], samples[i].Tangent
		n := prev.Normal

		rot := prev.Tangent.Cross(cur)
		if rot.Len() > 1e-12 {
			theta := math.Acos(mgl64.Clamp(prev.Tangent.Dot(cur), -1, 1))
			n = mgl64.QuatRotate(theta, rot.Normalize()).Rotate(n)
		}

		// Remove drift so the frame stays orthonormal
		n = n.Sub(cur.Mul(n.Dot(cur))).Normalize()
		samples[i].Normal = n
		samples[i].Binormal = cur.Cross(n)
	}
}

// smallestAxis returns the world axis least aligned with v
func smallestAxis(v mgl64.Vec3) mgl64.Vec3 {
	ax, ay, az := math.Abs(v.X()), math.Abs(v.Y()), math.Abs(v.Z())
	switch {
	case ax <= ay && ax <= az:
		return mgl64.Vec3{1, 0, 0}
	case ay <= az:
		return mgl64.Vec3{0, 1, 0}
	default:
		return mgl64.Vec3{0, 0, 1}
	}
}

// Len returns the number of samples
func (p *Path) Len() int {
	return len(p.Samples)
}

// Segments returns S, the number of intervals between samples
func (p *Path) Segments() int {
	return len(p.Samples) - 1
}

// bracket maps t to the lower sample index and the fraction towards the next
func (p *Path) bracket(t float64) (int, float64) {
	s := p.Segments()
	if s <= 0 {
		return 0, 0
	}
	t = mgl64.Clamp(t, 0, 1)
	if math.IsNaN(t) {
		t = 0
	}
	idx := t * float64(s)
	i := int(math.Floor(idx))
	if i >= s {
		i = s - 1
	}
	return i, idx - float64(i)
}

// At returns the interpolated position and blended unit tangent at t
func (p *Path) At(t float64) (mgl64.Vec3, mgl64.Vec3) {
	s := p.Frame(t)
	return s.Position, s.Tangent
}

// Frame returns a sample interpolated between the two samples bracketing t.
// The tangent and normal are blended, not picked from the nearer sample, so
// consumers see no jump at sample boundaries.
func (p *Path) Frame(t float64) Sample {
	if p.Segments() <= 0 {
		return p.Samples[0]
	}

	i, f := p.bracket(t)
	a, b := p.Samples[i], p.Samples[i+1]

	tan := lerp(a.Tangent, b.Tangent, f).Normalize()
	if tan.LenSqr() == 0 {
		tan = a.Tangent
	}
	n := lerp(a.Normal, b.Normal, f)
	n = n.Sub(tan.Mul(n.Dot(tan))).Normalize()
	if n.LenSqr() == 0 {
		n = a.Normal
	}

	return Sample{
		T:        a.T + (b.T-a.T)*f,
		Position: lerp(a.Position, b.Position, f),
		Tangent:  tan,
		Normal:   n,
		Binormal: tan.Cross(n),
	}
}

func lerp(a, b mgl64.Vec3, f float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(f))
}
