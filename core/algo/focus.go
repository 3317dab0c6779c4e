// Package algo holds the pure projection and evaluation math for zproj.
package algo

import (
	"errors"

	"github.com/csalatca/zproj/schema"
	"gonum.org/v1/gonum/stat"
)

// ErrEmptyStack is returned when a stack has no z slices.
var ErrEmptyStack = errors.New("stack has no z slices")

// FocusScores returns the population standard deviation of pixel intensities
// for each z slice. Higher standard deviation indicates better focus.
func FocusScores(s schema.Stack) []float64 {
	scores := make([]float64, s.Z)
	buf := make([]float64, s.H*s.W)
	for z := 0; z < s.Z; z++ {
		plane := s.Plane(z)
		for i, v := range plane {
			buf[i] = float64(v)
		}
		scores[z] = stat.PopStdDev(buf, nil)
	}
	return scores
}

// BestFocusSlice returns the z index with the highest focus score, along with
// the per-slice scores. Ties break to the first occurrence.
func BestFocusSlice(s schema.Stack) (int, []float64, error) {
	if s.Z == 0 {
		return 0, nil, ErrEmptyStack
	}
	scores := FocusScores(s)
	best := 0
	for z, sc := range scores {
		if sc > scores[best] {
			best = z
		}
	}
	return best, scores, nil
}

// Contrast computes how decisively a best-focus score separates from the rest
// of the stack: the best score over the mean of all scores. A flat stack has
// contrast 1.0; a stack with zero variance everywhere reports 0.
func Contrast(scores []float64, best int) float64 {
	if len(scores) == 0 {
		return 0
	}
	mean := stat.Mean(scores, nil)
	if mean == 0 {
		return 0
	}
	return scores[best] / mean
}
