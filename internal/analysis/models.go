package analysis

import (
	"errors"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrLengthMismatch is returned when paired series differ in length.
	ErrLengthMismatch = errors.New("series lengths differ")
	// ErrNoData is returned when nothing is left to compute on.
	ErrNoData = errors.New("no valid data")
)

// WindFilter holds wind series cleaned the way Météo-France data needs:
// null directions and calm winds removed.
type WindFilter struct {
	Speed          []float64 // NaN where masked
	Direction      []float64 // NaN where masked
	Total          int
	NullDirections int // directions missing or equal to 0
	CalmWinds      int // speeds missing or below the calm limit
	CalmLimit      float64
}

// NullDirectionPct is the share of null directions in percent.
func (w *WindFilter) NullDirectionPct() float64 {
	return percent(w.NullDirections, w.Total)
}

// CalmPct is the share of calm winds in percent.
func (w *WindFilter) CalmPct() float64 {
	return percent(w.CalmWinds, w.Total)
}

// WindTable is the wind rose frequency table. Table[k][s] holds the
// observations of speed class k blowing from sector s; sector 0 is
// centred on North and sectors run clockwise.
type WindTable struct {
	SpeedClasses []float64 // lower bound of every speed class
	NSector      int
	Table        [][]float64
	Counted      int // observations that fell into the table
	Excluded     int // NaN pairs, speeds below the first class, directions outside [0, 360]
	Normed       bool
}

// SectorWidth returns the angular width of a sector in degrees.
func (t *WindTable) SectorWidth() float64 {
	return 360 / float64(t.NSector)
}

// SpeedTotals sums the table over sectors: one value per speed class.
func (t *WindTable) SpeedTotals() []float64 {
	totals := make([]float64, len(t.Table))
	for k, row := range t.Table {
		totals[k] = floats.Sum(row)
	}
	return totals
}

// DirectionTotals sums the table over speed classes: one value per sector.
func (t *WindTable) DirectionTotals() []float64 {
	totals := make([]float64, t.NSector)
	for _, row := range t.Table {
		floats.Add(totals, row)
	}
	return totals
}

// Regression is a first degree least squares fit y = Slope*x + Intercept.
type Regression struct {
	Slope       float64
	Intercept   float64
	Correlation float64 // Pearson coefficient
	N           int     // pairs used for the fit
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) * 100 / float64(total)
}
