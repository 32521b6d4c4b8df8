package analyzer

import "fmt"

// NewScorer creates a scorer based on the specified variant
func NewScorer(variant string) (Scorer, error) {
	switch variant {
	case "edges", "":
		return NewEdgeScorer(), nil
	case "blocks":
		return NewContrastDetector(), nil
	default:
		return nil, fmt.Errorf("unknown scorer variant: %s", variant)
	}
}
