package analysis

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var nan = math.NaN()

func TestDissolveMask(t *testing.T) {
	a := []float64{1, nan, 3, 4}
	b := []float64{10, 20, nan, 40}

	outA, outB, err := DissolveMask(a, b)
	require.NoError(t, err)

	for i, masked := range []bool{false, true, true, false} {
		assert.Equal(t, masked, math.IsNaN(outA[i]), "a[%d]", i)
		assert.Equal(t, masked, math.IsNaN(outB[i]), "b[%d]", i)
	}
	assert.Equal(t, 4.0, outA[3])
	assert.Equal(t, 40.0, outB[3])
	assert.Equal(t, 20.0, b[1], "inputs are not modified")

	_, _, err = DissolveMask([]float64{1}, nil)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestFilterMeteoFranceWind(t *testing.T) {
	speed := []float64{2, 0.5, 3, nan}
	direction := []float64{90, 180, 0, 270}

	f, err := FilterMeteoFranceWind(speed, direction, 1)
	require.NoError(t, err)

	assert.Equal(t, 4, f.Total)
	assert.Equal(t, 1, f.NullDirections)
	assert.Equal(t, 2, f.CalmWinds)
	assert.InDelta(t, 25.0, f.NullDirectionPct(), 1e-9)
	assert.InDelta(t, 50.0, f.CalmPct(), 1e-9)

	assert.Equal(t, 2.0, f.Speed[0])
	for _, i := range []int{1, 2, 3} {
		assert.True(t, math.IsNaN(f.Speed[i]), "speed[%d] masked", i)
	}
	assert.Equal(t, 180.0, f.Direction[1])
	assert.True(t, math.IsNaN(f.Direction[2]))

	_, err = FilterMeteoFranceWind([]float64{1}, []float64{1, 2}, 1)
	assert.ErrorIs(t, err, ErrLengthMismatch)

	empty, err := FilterMeteoFranceWind(nil, nil, 1)
	require.NoError(t, err)
	assert.Zero(t, empty.CalmPct())
}

func TestWindFrequencies(t *testing.T) {
	speed := []float64{0.5, 1.5, 1.5, 2.5, 5, nan, -1, 1}
	direction := []float64{0, 44, 45, 350, 180, 90, 90, 400}

	table, err := WindFrequencies(speed, direction, []float64{0, 1, 2}, 4, false)
	require.NoError(t, err)

	assert.Equal(t, [][]float64{
		{1, 0, 0, 0},
		{1, 1, 0, 0},
		{1, 0, 1, 0},
	}, table.Table)
	assert.Equal(t, 5, table.Counted)
	assert.Equal(t, 3, table.Excluded)
	assert.Equal(t, 90.0, table.SectorWidth())
	assert.Equal(t, []float64{1, 2, 2}, table.SpeedTotals())
	assert.Equal(t, []float64{3, 1, 1, 0}, table.DirectionTotals())
}

func TestWindFrequenciesNormed(t *testing.T) {
	speed := []float64{0.5, 1.5, 1.5, 2.5, 5}
	direction := []float64{0, 44, 45, 350, 180}

	table, err := WindFrequencies(speed, direction, []float64{0, 1, 2}, 4, true)
	require.NoError(t, err)

	assert.InDelta(t, 20.0, table.Table[0][0], 1e-9)
	total := 0.0
	for _, v := range table.DirectionTotals() {
		total += v
	}
	assert.InDelta(t, 100.0, total, 1e-9)
}

func TestWindFrequenciesSixteenSectors(t *testing.T) {
	table, err := WindFrequencies([]float64{3, 3, 3}, []float64{11, 12, 360}, MeteoFranceSpeedClasses, 16, false)
	require.NoError(t, err)

	dirs := table.DirectionTotals()
	require.Len(t, dirs, len(DirectionLabels))
	assert.Equal(t, 2.0, dirs[0], "11 and 360 degrees are North")
	assert.Equal(t, 1.0, dirs[1], "12 degrees starts N-NE")
	assert.Equal(t, 3.0, table.SpeedTotals()[2])
}

func TestWindFrequenciesErrors(t *testing.T) {
	_, err := WindFrequencies(nil, nil, DefaultSpeedClasses, 0, false)
	assert.Error(t, err)
	_, err = WindFrequencies(nil, nil, nil, 16, false)
	assert.Error(t, err)
	_, err = WindFrequencies(nil, nil, []float64{2, 1}, 16, false)
	assert.Error(t, err)
	_, err = WindFrequencies([]float64{1}, nil, DefaultSpeedClasses, 16, false)
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestLinearRegression(t *testing.T) {
	x := []float64{1, 2, 3, 4, nan}
	y := []float64{3, 5, 7, 9, 100}

	reg, err := LinearRegression(x, y)
	require.NoError(t, err)

	assert.InDelta(t, 2.0, reg.Slope, 1e-9)
	assert.InDelta(t, 1.0, reg.Intercept, 1e-9)
	assert.InDelta(t, 1.0, reg.Correlation, 1e-9)
	assert.Equal(t, 4, reg.N)
	assert.InDelta(t, 11.0, reg.Eval(5), 1e-9)
	assert.InDeltaSlice(t, []float64{1, 3}, reg.EvalAll([]float64{0, 1}), 1e-9)
	assert.Equal(t, "2 x + 1", reg.String())
}

func TestLinearRegressionNegativeIntercept(t *testing.T) {
	reg, err := LinearRegression([]float64{0, 1, 2}, []float64{-1, 1, 3})
	require.NoError(t, err)
	assert.Equal(t, "2 x - 1", reg.String())
}

func TestLinearRegressionErrors(t *testing.T) {
	_, err := LinearRegression([]float64{1, nan}, []float64{1, 2})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = LinearRegression([]float64{1, 1, 1}, []float64{1, 2, 3})
	assert.ErrorIs(t, err, ErrNoData)

	_, err = LinearRegression([]float64{1, 2}, []float64{1})
	assert.ErrorIs(t, err, ErrLengthMismatch)
}

func TestAtmoIndexClasses(t *testing.T) {
	counts := AtmoIndexClasses([]float64{1, 4.9, 5, 6, 7, 10.9, 11, 0, nan})
	assert.Equal(t, [3]int{2, 2, 2}, counts)
}
