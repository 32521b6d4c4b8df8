package analyzer

import (
	"image"
	"math"
)

// EdgeScorer rates a candidate by its fraction of Sobel edge pixels
type EdgeScorer struct {
	EdgeThreshold float64
}

// NewEdgeScorer creates an edge density scorer with default sensitivity
func NewEdgeScorer() *EdgeScorer {
	return &EdgeScorer{EdgeThreshold: 30.0}
}

// Scores returns edge density in [0,1] for each candidate. Candidates are
// clipped to the image; an empty intersection scores +Inf.
func (s *EdgeScorer) Scores(img image.Image, candidates []image.Rectangle) ([]float64, error) {
	edges := sobelEdgeDetection(toGrayscale(img), s.EdgeThreshold)
	sum := newIntegral(edges)

	scores := make([]float64, len(candidates))
	for i, c := range candidates {
		c = c.Intersect(edges.Bounds())
		if c.Empty() {
			scores[i] = math.Inf(1)
			continue
		}
		scores[i] = float64(sum.count(c)) / float64(c.Dx()*c.Dy())
	}
	return scores, nil
}

// integral is a summed-area table of edge pixels
type integral struct {
	origin image.Point
	w      int
	table  []int
}

func newIntegral(edges *image.Gray) *integral {
	b := edges.Bounds()
	w, h := b.Dx()+1, b.Dy()+1
	in := &integral{origin: b.Min, w: w, table: make([]int, w*h)}

	for y := 1; y < h; y++ {
		row := 0
		for x := 1; x < w; x++ {
			if edges.GrayAt(b.Min.X+x-1, b.Min.Y+y-1).Y > 128 {
				row++
			}
			in.table[y*w+x] = in.table[(y-1)*w+x] + row
		}
	}
	return in
}

func (in *integral) count(r image.Rectangle) int {
	r = r.Sub(in.origin)
	at := func(x, y int) int { return in.table[y*in.w+x] }
	return at(r.Max.X, r.Max.Y) - at(r.Min.X, r.Max.Y) - at(r.Max.X, r.Min.Y) + at(r.Min.X, r.Min.Y)
}
