package insights

import "math"

// Band maps any value strictly above Min to Score.
type Band struct {
	Min   float64
	Score int
}

// Bands is an ordered, top-down list of bands with a floor score.
type Bands struct {
	Steps []Band
	Floor int
}

// Score returns the score of the first band whose Min the value exceeds.
func (b Bands) Score(v float64) int {
	for _, step := range b.Steps {
		if v > step.Min {
			return step.Score
		}
	}
	return b.Floor
}

// JointBand requires both conditions of a two-signal rule to hold.
type JointBand struct {
	Match func(a, b float64) bool
	Score int
}

// JointBands is evaluated the same way as Bands but on a pair of signals.
type JointBands struct {
	Steps []JointBand
	Floor int
}

func (b JointBands) Score(x, y float64) int {
	for _, step := range b.Steps {
		if step.Match(x, y) {
			return step.Score
		}
	}
	return b.Floor
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return finite(a / b)
}

// finite collapses NaN and Inf to 0 so nothing non-numeric reaches a KPI.
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

func clampScore(v int) int {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func round2(v float64) float64 {
	return math.Round(finite(v)*100) / 100
}
