// Package analysis holds the numeric helpers behind the plots: NaN mask
// handling, wind statistics, linear regression and ATMO index classes.
package analysis

import (
	"fmt"
	"math"
)

// DissolveMask returns copies of a and b where every position that is NaN
// in either series is NaN in both.
func DissolveMask(a, b []float64) ([]float64, []float64, error) {
	if len(a) != len(b) {
		return nil, nil, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(a), len(b))
	}
	outA := make([]float64, len(a))
	outB := make([]float64, len(b))
	for i := range a {
		if math.IsNaN(a[i]) || math.IsNaN(b[i]) {
			outA[i], outB[i] = math.NaN(), math.NaN()
			continue
		}
		outA[i], outB[i] = a[i], b[i]
	}
	return outA, outB, nil
}

// dropNaNPairs keeps the positions where both values are set.
func dropNaNPairs(x, y []float64) ([]float64, []float64, error) {
	if len(x) != len(y) {
		return nil, nil, fmt.Errorf("%w: %d and %d", ErrLengthMismatch, len(x), len(y))
	}
	xs := make([]float64, 0, len(x))
	ys := make([]float64, 0, len(y))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		xs = append(xs, x[i])
		ys = append(ys, y[i])
	}
	return xs, ys, nil
}
