package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"

	"github.com/user/pyair_go/internal/analysis"
)

// windGrid exposes a wind table as a heat map grid: columns are sectors,
// rows speed classes.
type windGrid struct {
	table *analysis.WindTable
}

func (g windGrid) Dims() (c, r int)   { return g.table.NSector, len(g.table.Table) }
func (g windGrid) Z(c, r int) float64 { return g.table.Table[r][c] }
func (g windGrid) X(c int) float64    { return float64(c) }
func (g windGrid) Y(r int) float64    { return float64(r) }

// max returns the largest cell of the grid.
func (g windGrid) max() float64 {
	m := 0.0
	for _, row := range g.table.Table {
		for _, v := range row {
			if v > m {
				m = v
			}
		}
	}
	return m
}

// WindTableHeatmap draws the frequency table as a grid of sectors by
// speed classes, a flat alternative to the rose for reports.
func WindTableHeatmap(table *analysis.WindTable, opts Options) ([]byte, error) {
	if table == nil || table.Counted == 0 {
		return nil, fmt.Errorf("%w: empty wind table", analysis.ErrNoData)
	}
	grid := windGrid{table: table}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "directions"
	p.Y.Label.Text = "m/s"

	var xTicks []plot.Tick
	for s := 0; s < table.NSector; s++ {
		var label string
		if table.NSector == len(analysis.DirectionLabels) {
			label = analysis.DirectionLabels[s]
		} else {
			label = fmt.Sprintf("%.0f", float64(s)*table.SectorWidth())
		}
		xTicks = append(xTicks, plot.Tick{Value: float64(s), Label: label})
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)

	yTicks := make([]plot.Tick, len(table.SpeedClasses))
	for k := range table.SpeedClasses {
		yTicks[k] = plot.Tick{Value: float64(k), Label: classLabel(table.SpeedClasses, k)}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)

	hm := plotter.NewHeatMap(grid, palette.Heat(12, 1))
	hm.Min = 0
	hm.Max = grid.max()
	if hm.Max == hm.Min {
		hm.Max = hm.Min + 1
	}
	hm.NaN = color.Gray{Y: 200}
	p.Add(hm)

	p.X.Min = -0.5
	p.X.Max = float64(table.NSector) - 0.5
	p.Y.Min = -0.5
	p.Y.Max = float64(len(table.SpeedClasses)) - 0.5

	return Render(p, opts, "2c")
}
