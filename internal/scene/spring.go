package scene

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Spring generates helix control points around the vertical axis.
// The helix descends by Height over its turns.
type Spring struct {
	Center        mgl64.Vec3 `yaml:"center"`
	Radius        float64    `yaml:"radius"`
	Turns         float64    `yaml:"turns"`
	Height        float64    `yaml:"height"`
	PointsPerTurn int        `yaml:"points_per_turn"`
	Phase         float64    `yaml:"phase"` // degrees
}

// Points returns round(Turns*PointsPerTurn)+1 control points, at least 2
func (s Spring) Points() []mgl64.Vec3 {
	ppt := s.PointsPerTurn
	if ppt < 1 {
		ppt = 1
	}
	n := int(math.Round(s.Turns*float64(ppt))) + 1
	if n < 2 {
		n = 2
	}

	phase := mgl64.DegToRad(s.Phase)
	out := make([]mgl64.Vec3, n)
	for i := range out {
		f := float64(i) / float64(n-1)
		a := phase + 2*math.Pi*s.Turns*f
		out[i] = s.Center.Add(mgl64.Vec3{
			s.Radius * math.Cos(a),
			-s.Height * f,
			s.Radius * math.Sin(a),
		})
	}
	return out
}
