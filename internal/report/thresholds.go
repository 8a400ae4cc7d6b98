package report

import (
	"fmt"
	"image/color"
	"math"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
)

// Threshold is a regulatory limit drawn over a pollutant time series.
type Threshold struct {
	Label string
	Value float64
	Color color.Color
}

// PollutantLimits holds, per pollutant, the hourly thresholds in µg/m³:
// MVR (target), IR (information) and A (alert).
var PollutantLimits = map[string][]Threshold{
	"O3":  limits(150, 180, 240),
	"NO2": limits(135, 200, 400),
	"SO2": limits(200, 300, 500),
}

func limits(mvr, ir, alert float64) []Threshold {
	return []Threshold{
		{Label: "MVR", Value: mvr, Color: thresholdOK},
		{Label: "IR", Value: ir, Color: orange},
		{Label: "A", Value: alert, Color: valueRed},
	}
}

// PollutantThresholds overlays the thresholds of pollutant as horizontal
// lines across the current X range of p, each labelled "MVR (150)" and so
// on, and extends the Y axis to 100 above the highest one. p is left
// untouched for pollutants without thresholds. It reports whether
// anything was drawn.
func PollutantThresholds(p *plot.Plot, pollutant string) (bool, error) {
	thresholds, ok := PollutantLimits[pollutant]
	if !ok {
		return false, nil
	}
	x0, x1 := p.X.Min, p.X.Max
	if math.IsInf(x0, 0) || math.IsInf(x1, 0) {
		// Nothing plotted yet.
		x0, x1 = 0, 1
	} else if x0 >= x1 {
		x1 = x0 + 1
	}

	for _, th := range thresholds {
		line, err := plotter.NewLine(plotter.XYs{{X: x0, Y: th.Value}, {X: x1, Y: th.Value}})
		if err != nil {
			return false, fmt.Errorf("failed to create %s threshold line: %w", th.Label, err)
		}
		line.Color = th.Color
		line.Width = vg.Points(1)
		p.Add(line)
	}
	// Labels go in a second pass so they are drawn over every line.
	for _, th := range thresholds {
		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: x0, Y: th.Value}},
			Labels: []string{fmt.Sprintf("%s (%g)", th.Label, th.Value)},
		})
		if err != nil {
			return false, fmt.Errorf("failed to create %s threshold label: %w", th.Label, err)
		}
		labels.TextStyle[0].Color = th.Color
		labels.TextStyle[0].XAlign = text.XLeft
		labels.TextStyle[0].YAlign = text.YBottom
		p.Add(labels)
	}
	p.Y.Min = 0
	p.Y.Max = thresholds[len(thresholds)-1].Value + 100
	return true, nil
}

// NewTimeSeriesPlot plots a measurement series against time. NaN values
// break the line.
func NewTimeSeriesPlot(name, unit string, index []time.Time, values []float64, title string) (*plot.Plot, error) {
	if len(index) != len(values) {
		return nil, fmt.Errorf("time series %s has %d timestamps and %d values", name, len(index), len(values))
	}

	p := plot.New()
	p.Title.Text = title
	p.Y.Label.Text = UnitLabel(unit)
	p.X.Tick.Marker = plot.TimeTicks{Format: "2006-01-02\n15:04"}
	p.Add(plotter.NewGrid())

	var segment plotter.XYs
	flush := func() error {
		if len(segment) == 0 {
			return nil
		}
		line, err := plotter.NewLine(segment)
		if err != nil {
			return fmt.Errorf("failed to create line for %s: %w", name, err)
		}
		line.Color = barBlue
		p.Add(line)
		segment = nil
		return nil
	}
	for i, v := range values {
		if math.IsNaN(v) {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		segment = append(segment, plotter.XY{X: float64(index[i].Unix()), Y: v})
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return p, nil
}

// TimeSeriesPlot renders a pollutant series with its regulatory
// thresholds, when the pollutant has any.
func TimeSeriesPlot(pollutant, unit string, index []time.Time, values []float64, opts Options) ([]byte, error) {
	title := opts.Title
	if title == "" {
		title = pollutant
	}
	p, err := NewTimeSeriesPlot(pollutant, unit, index, values, title)
	if err != nil {
		return nil, err
	}
	if _, err := PollutantThresholds(p, pollutant); err != nil {
		return nil, err
	}
	return Render(p, opts, "2c")
}
