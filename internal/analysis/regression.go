package analysis

import (
	"fmt"
	"math"
	"strconv"

	"gonum.org/v1/gonum/stat"
)

// LinearRegression fits y = Slope*x + Intercept by least squares and
// reports the Pearson correlation of the pairs. Pairs with a NaN on
// either side are ignored.
func LinearRegression(x, y []float64) (*Regression, error) {
	xs, ys, err := dropNaNPairs(x, y)
	if err != nil {
		return nil, err
	}
	if len(xs) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 pairs, got %d", ErrNoData, len(xs))
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	if math.IsNaN(slope) || math.IsInf(slope, 0) {
		return nil, fmt.Errorf("%w: x has no variance", ErrNoData)
	}
	return &Regression{
		Slope:       slope,
		Intercept:   intercept,
		Correlation: stat.Correlation(ys, xs, nil),
		N:           len(xs),
	}, nil
}

// Eval returns the fitted value at x.
func (r *Regression) Eval(x float64) float64 {
	return r.Slope*x + r.Intercept
}

// EvalAll returns the fitted values at every x.
func (r *Regression) EvalAll(x []float64) []float64 {
	out := make([]float64, len(x))
	for i, v := range x {
		out[i] = r.Eval(v)
	}
	return out
}

// String formats the fitted line as "a x + b".
func (r *Regression) String() string {
	sign := "+"
	b := r.Intercept
	if b < 0 {
		sign, b = "-", -b
	}
	return fmt.Sprintf("%s x %s %s", formatCoef(r.Slope), sign, formatCoef(b))
}

func formatCoef(v float64) string {
	return strconv.FormatFloat(v, 'g', 4, 64)
}
