// Package strength classifies daily participant positioning into tiered
// direction labels and composes them through fixed compatibility tables.
package strength

import (
	"errors"
	"math"
)

// ErrInsufficientData is returned when a threshold is requested over an
// empty sample. Callers skip the segment instead of treating this as fatal.
var ErrInsufficientData = errors.New("strength: insufficient data for percentile threshold")

// Threshold computes the p-th percentile (0..100) of a sample sorted
// ascending, using rank interpolation: position = p/100 * (n-1), linear
// between the two neighbouring ranks. This is the R-7 rule; the composition
// tables were tuned against these exact thresholds, so no other percentile
// definition may be substituted.
func Threshold(p float64, sorted []float64) (float64, error) {
	n := len(sorted)
	if n == 0 {
		return 0, ErrInsufficientData
	}
	if n == 1 {
		return sorted[0], nil
	}

	pos := (p / 100) * float64(n-1)
	i := int(math.Floor(pos))
	if i >= n-1 {
		return sorted[n-1], nil
	}
	frac := pos - float64(i)
	if frac == 0 {
		return sorted[i], nil
	}
	return sorted[i] + frac*(sorted[i+1]-sorted[i]), nil
}
