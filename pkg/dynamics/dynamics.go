// Package dynamics holds the time-decay formulas used to bias candidate
// quality by how recently and how often an item was used.
package dynamics

import "math"

// decayScale is the characteristic time scale of Decay.
const decayScale = 200.0

// retentionScale is the time constant of the forgetting curve.
const retentionScale = 10000.0

// difficultyBoundary splits the two blending branches of Retention.
const difficultyBoundary = 20.0

var km = 1 / (1 - math.Exp(-0.005))

// Decay relaxes the adjustment da toward zero as t grows past the reference
// time ta, and adds it to the base difficulty d.
func Decay(d, t, da, ta float64) float64 {
	return d + da*math.Exp((ta-t)/decayScale)
}

// Retention estimates the probability that an item with stability s and
// baseline u is still remembered after elapsed time t, given difficulty d.
func Retention(s, u, t, d float64) float64 {
	m := s - (s-u)*math.Pow(1-math.Exp(-t/retentionScale), 10)
	if d < difficultyBoundary {
		return m + (0.5-m)*(d/km)
	}
	return m + (1-m)*(math.Pow(4, d/km)-1)/3
}
