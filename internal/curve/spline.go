package curve

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Parameterization selects the knot spacing exponent of the Catmull-Rom spline
type Parameterization int

const (
	// Centripetal (alpha = 0.5) never forms cusps or self-intersections
	// inside a segment, even for unevenly spaced control points
	Centripetal Parameterization = iota
	// Chordal (alpha = 1)
	Chordal
	// Uniform (alpha = 0) is the classic Catmull-Rom spline
	Uniform
)

func (p Parameterization) String() string {
	switch p {
	case Chordal:
		return "chordal"
	case Uniform:
		return "uniform"
	default:
		return "centripetal"
	}
}

// ParseParameterization accepts "centripetal", "chordal" or "uniform" (case insensitive).
// An empty string selects Centripetal.
func ParseParameterization(s string) (Parameterization, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "centripetal":
		return Centripetal, nil
	case "chordal":
		return Chordal, nil
	case "uniform":
		return Uniform, nil
	default:
		return Centripetal, fmt.Errorf("unknown curve parameterization: %q", s)
	}
}

func (p Parameterization) alpha() float64 {
	switch p {
	case Chordal:
		return 1.0
	case Uniform:
		return 0.0
	default:
		return 0.5
	}
}

// cubic is one spline segment: c0 + c1*t + c2*t^2 + c3*t^3, t in [0,1]
type cubic struct {
	c0, c1, c2, c3 mgl64.Vec3
}

func (c cubic) at(t float64) mgl64.Vec3 {
	t2 := t * t
	return c.c0.Add(c.c1.Mul(t)).Add(c.c2.Mul(t2)).Add(c.c3.Mul(t2 * t))
}

func (c cubic) derivative(t float64) mgl64.Vec3 {
	return c.c1.Add(c.c2.Mul(2 * t)).Add(c.c3.Mul(3 * t * t))
}

// hermite builds the cubic from end points x0, x1 and end tangents t0, t1
func hermite(x0, x1, t0, t1 mgl64.Vec3) cubic {
	return cubic{
		c0: x0,
		c1: t0,
		c2: x0.Mul(-3).Add(x1.Mul(3)).Sub(t0.Mul(2)).Sub(t1),
		c3: x0.Mul(2).Sub(x1.Mul(2)).Add(t0).Add(t1),
	}
}

// knotGap is the nonuniform knot distance |b-a|^alpha
func knotGap(a, b mgl64.Vec3, alpha float64) float64 {
	return math.Pow(b.Sub(a).LenSqr(), alpha/2)
}

// segment returns the nonuniform Catmull-Rom cubic between p1 and p2
func segment(p0, p1, p2, p3 mgl64.Vec3, alpha float64) cubic {
	dt0 := knotGap(p0, p1, alpha)
	dt1 := knotGap(p1, p2, alpha)
	dt2 := knotGap(p2, p3, alpha)

	// Near-coincident points would divide by zero
	if dt1 < 1e-4 {
		dt1 = 1.0
	}
	if dt0 < 1e-4 {
		dt0 = dt1
	}
	if dt2 < 1e-4 {
		dt2 = dt1
	}

	t1 := p1.Sub(p0).Mul(1 / dt0).
		Sub(p2.Sub(p0).Mul(1 / (dt0 + dt1))).
		Add(p2.Sub(p1).Mul(1 / dt1)).
		Mul(dt1)
	t2 := p2.Sub(p1).Mul(1 / dt1).
		Sub(p3.Sub(p1).Mul(1 / (dt1 + dt2))).
		Add(p3.Sub(p2).Mul(1 / dt2)).
		Mul(dt1)

	return hermite(p1, p2, t1, t2)
}

// spline is an open Catmull-Rom spline through at least two points
type spline struct {
	segs []cubic
}

func newSpline(points []mgl64.Vec3, param Parameterization) *spline {
	n := len(points)
	alpha := param.alpha()
	segs := make([]cubic, n-1)

	for i := 0; i < n-1; i++ {
		p1, p2 := points[i], points[i+1]

		var p0, p3 mgl64.Vec3
		if i > 0 {
			p0 = points[i-1]
		} else {
			// Phantom point mirrored through the first control point
			p0 = p1.Mul(2).Sub(p2)
		}
		if i+2 < n {
			p3 = points[i+2]
		} else {
			p3 = p2.Mul(2).Sub(p1)
		}

		segs[i] = segment(p0, p1, p2, p3, alpha)
	}

	return &spline{segs: segs}
}

// locate maps a global parameter u in [0, len(segs)] to a segment and local t
func (s *spline) locate(u float64) (int, float64) {
	last := len(s.segs) - 1
	if u <= 0 {
		return 0, 0
	}
	i := int(math.Floor(u))
	if i > last {
		return last, 1
	}
	return i, u - float64(i)
}

func (s *spline) position(u float64) mgl64.Vec3 {
	i, t := s.locate(u)
	return s.segs[i].at(t)
}

func (s *spline) derivative(u float64) mgl64.Vec3 {
	i, t := s.locate(u)
	return s.segs[i].derivative(t)
}

// arcTable maps cumulative arc length back to the spline parameter
type arcTable struct {
	params  []float64
	lengths []float64
}

const divisionsPerSegment = 64

func newArcTable(s *spline) *arcTable {
	total := len(s.segs) * divisionsPerSegment
	tbl := &arcTable{
		params:  make([]float64, total+1),
		lengths: make([]float64, total+1),
	}

	prev := s.position(0)
	for k := 1; k <= total; k++ {
		u := float64(k) / divisionsPerSegment
		p := s.position(u)
		tbl.params[k] = u
		tbl.lengths[k] = tbl.lengths[k-1] + p.Sub(prev).Len()
		prev = p
	}

	return tbl
}

func (a *arcTable) total() float64 {
	return a.lengths[len(a.lengths)-1]
}

// paramAt returns the spline parameter at arc length l
func (a *arcTable) paramAt(l float64) float64 {
	if l <= 0 {
		return 0
	}
	last := len(a.lengths) - 1
	if l >= a.lengths[last] {
		return a.params[last]
	}

	lo, hi := 0, last
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if a.lengths[mid] < l {
			lo = mid
		} else {
			hi = mid
		}
	}

	span := a.lengths[hi] - a.lengths[lo]
	if span <= 0 {
		return a.params[lo]
	}
	f := (l - a.lengths[lo]) / span
	return a.params[lo] + (a.params[hi]-a.params[lo])*f
}
