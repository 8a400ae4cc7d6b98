package analysis

import (
	"fmt"
	"math"
	"sort"
)

// DefaultSpeedClasses are the speed class bounds, in m/s, of a plain wind rose.
var DefaultSpeedClasses = []float64{0, 1, 2, 3, 4, 5}

// MeteoFranceSpeedClasses are the speed class bounds used for Météo-France data.
var MeteoFranceSpeedClasses = []float64{1, 2, 3, 4, 5, 6}

// DirectionLabels name the 16 sectors of a rose, every other one left blank.
var DirectionLabels = []string{"N", "", "N-E", "", "E", "", "S-E", "", "S", "", "S-O", "", "O", "", "N-O", ""}

// FilterMeteoFranceWind prepares Météo-France wind series: a direction of
// 0 means "no measurement" and is masked, speeds below calmLimit are calm
// winds and are masked, and speeds without a direction are masked too.
func FilterMeteoFranceWind(speed, direction []float64, calmLimit float64) (*WindFilter, error) {
	if len(speed) != len(direction) {
		return nil, fmt.Errorf("%w: %d speeds, %d directions", ErrLengthMismatch, len(speed), len(direction))
	}

	f := &WindFilter{
		Speed:     make([]float64, len(speed)),
		Direction: make([]float64, len(direction)),
		Total:     len(speed),
		CalmLimit: calmLimit,
	}
	for i := range speed {
		dv := direction[i]
		if math.IsNaN(dv) || dv == 0 {
			dv = math.NaN()
			f.NullDirections++
		}
		vv := speed[i]
		if math.IsNaN(vv) || vv < calmLimit {
			vv = math.NaN()
			f.CalmWinds++
		}
		if math.IsNaN(dv) {
			vv = math.NaN()
		}
		f.Speed[i], f.Direction[i] = vv, dv
	}
	return f, nil
}

// WindFrequencies builds the wind rose table. Speed class k covers
// [classes[k], classes[k+1]), the last class has no upper bound. Sector s
// covers directions within half a sector width of s*360/nSector. When
// normed is set the table holds percentages of the counted observations.
func WindFrequencies(speed, direction, classes []float64, nSector int, normed bool) (*WindTable, error) {
	if nSector <= 0 {
		return nil, fmt.Errorf("sector count must be positive, got %d", nSector)
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("at least one speed class is required")
	}
	if !sort.Float64sAreSorted(classes) {
		return nil, fmt.Errorf("speed classes must be increasing: %v", classes)
	}
	vv, dv, err := DissolveMask(speed, direction)
	if err != nil {
		return nil, err
	}

	t := &WindTable{
		SpeedClasses: append([]float64(nil), classes...),
		NSector:      nSector,
		Table:        make([][]float64, len(classes)),
		Normed:       normed,
	}
	for k := range t.Table {
		t.Table[k] = make([]float64, nSector)
	}

	width := t.SectorWidth()
	for i := range vv {
		if math.IsNaN(vv[i]) || vv[i] < classes[0] || dv[i] < 0 || dv[i] > 360 {
			t.Excluded++
			continue
		}
		// Last class whose lower bound is <= speed.
		k := sort.Search(len(classes), func(j int) bool { return classes[j] > vv[i] }) - 1
		s := int(math.Floor((dv[i]+width/2)/width)) % nSector
		t.Table[k][s]++
		t.Counted++
	}

	if normed && t.Counted > 0 {
		scale := 100 / float64(t.Counted)
		for _, row := range t.Table {
			for s := range row {
				row[s] *= scale
			}
		}
	}
	return t, nil
}
