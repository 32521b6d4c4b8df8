package analyzer

import (
	"fmt"
	"image"
)

// Block represents a detected region of detail in an image
type Block struct {
	Rect       image.Rectangle
	Confidence float64 // 0.0-1.0
}

// Scorer rates how busy each candidate rectangle of an image is.
// Higher means more detail, so worse for laying text over.
type Scorer interface {
	Scores(img image.Image, candidates []image.Rectangle) ([]float64, error)
}

// PickQuietest returns the index of the candidate with the lowest score.
// Ties go to the earlier candidate.
func PickQuietest(s Scorer, img image.Image, candidates []image.Rectangle) (int, error) {
	if len(candidates) == 0 {
		return -1, fmt.Errorf("no candidate regions")
	}

	scores, err := s.Scores(img, candidates)
	if err != nil {
		return -1, err
	}

	best := 0
	for i, sc := range scores {
		if sc < scores[best] {
			best = i
		}
	}
	return best, nil
}
