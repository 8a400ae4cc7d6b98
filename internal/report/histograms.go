package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/user/pyair_go/internal/analysis"
)

// valueLabels writes format % ys[i] at every (xs[i], ys[i]).
func valueLabels(xs, ys []float64, format string, clr color.Color, xAlign text.XAlignment, yAlign text.YAlignment) (*plotter.Labels, error) {
	data := plotter.XYLabels{
		XYs:    make(plotter.XYs, len(xs)),
		Labels: make([]string, len(xs)),
	}
	for i := range xs {
		data.XYs[i] = plotter.XY{X: xs[i], Y: ys[i]}
		data.Labels[i] = fmt.Sprintf(format, ys[i])
	}
	labels, err := plotter.NewLabels(data)
	if err != nil {
		return nil, fmt.Errorf("failed to create value labels: %w", err)
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = clr
		labels.TextStyle[i].XAlign = xAlign
		labels.TextStyle[i].YAlign = yAlign
	}
	return labels, nil
}

// rectangle returns a filled axis aligned box.
func rectangle(x0, y0, x1, y1 float64, fill color.Color) (*plotter.Polygon, error) {
	poly, err := plotter.NewPolygon(plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y0}, {X: x1, Y: y1}, {X: x0, Y: y1}})
	if err != nil {
		return nil, err
	}
	poly.Color = fill
	poly.LineStyle.Width = 0
	return poly, nil
}

// SpeedHistogram draws the share of observations per wind speed class.
// Each bar starts at its class bound and is 0.9 m/s wide.
func SpeedHistogram(classes, freq []float64, opts Options) ([]byte, error) {
	if len(classes) == 0 || len(classes) != len(freq) {
		return nil, fmt.Errorf("speed histogram needs one frequency per class, got %d classes and %d values", len(classes), len(freq))
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "m/s"
	p.Y.Label.Text = "%"

	centers := make([]float64, len(classes))
	for i, lo := range classes {
		bar, err := rectangle(lo, 0, lo+0.9, freq[i], barBlue)
		if err != nil {
			return nil, fmt.Errorf("failed to create bar for class %g: %w", lo, err)
		}
		p.Add(bar)
		centers[i] = lo + 0.5
	}
	labels, err := valueLabels(centers, freq, "%.1f", valueRed, text.XCenter, text.YBottom)
	if err != nil {
		return nil, err
	}
	p.Add(labels)
	p.X.Min = classes[0]
	p.X.Max = classes[len(classes)-1] + 1
	p.Y.Min = 0

	return Render(p, opts, "1c")
}

// DirectionHistogram draws the share of observations per direction
// sector, 16 sectors starting at North.
func DirectionHistogram(freq []float64, opts Options) ([]byte, error) {
	if len(freq) != len(analysis.DirectionLabels) {
		return nil, fmt.Errorf("direction histogram needs %d sectors, got %d", len(analysis.DirectionLabels), len(freq))
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = "directions"
	p.Y.Label.Text = "%"

	bars, err := plotter.NewBarChart(plotter.Values(freq), vg.Points(18))
	if err != nil {
		return nil, fmt.Errorf("failed to create direction bars: %w", err)
	}
	bars.Color = barBlue
	bars.LineStyle.Width = 0
	p.Add(bars)
	p.NominalX(analysis.DirectionLabels...)

	xs := make([]float64, len(freq))
	for i := range xs {
		xs[i] = float64(i)
	}
	labels, err := valueLabels(xs, freq, "%.1f", valueRed, text.XCenter, text.YBottom)
	if err != nil {
		return nil, err
	}
	p.Add(labels)
	p.Y.Min = 0

	return Render(p, opts, "2c")
}

// atmoClasses are the legend entries and colours of the ATMO classes.
var atmoClasses = []struct {
	Label string
	Color color.Color
}{
	{"1 à 4", atmoGreen},
	{"5 à 6", atmoYellow},
	{"7 à 10", atmoRed},
}

// IndexHistogram draws, for every year, three horizontal bars with the
// number of days in each ATMO class.
func IndexHistogram(counts [][3]int, years []string, opts Options) ([]byte, error) {
	if len(counts) != len(years) {
		return nil, fmt.Errorf("the number of years (%d) must match the number of rows (%d)", len(years), len(counts))
	}

	p := plot.New()
	p.Title.Text = opts.Title
	steps := [3]float64{0.25, 0.50, 0.75}

	for c, class := range atmoClasses {
		values := make(plotter.Values, len(counts))
		ys := make([]float64, len(counts))
		for i, row := range counts {
			values[i] = float64(row[c])
			ys[i] = float64(i) + steps[c]
		}
		bars, err := plotter.NewBarChart(values, vg.Points(6))
		if err != nil {
			return nil, fmt.Errorf("failed to create bars for class %s: %w", class.Label, err)
		}
		bars.Horizontal = true
		bars.XMin = steps[c]
		bars.Color = class.Color
		bars.LineStyle.Width = 0
		p.Add(bars)
		p.Legend.Add(class.Label, bars)

		// Count labels sit just right of each bar.
		xs := make([]float64, len(values))
		for i, v := range values {
			xs[i] = v + 5
		}
		labels, err := plotter.NewLabels(plotter.XYLabels{XYs: xyPairs(xs, ys), Labels: intLabels(values)})
		if err != nil {
			return nil, fmt.Errorf("failed to create count labels: %w", err)
		}
		for i := range labels.TextStyle {
			labels.TextStyle[i].YAlign = text.YCenter
		}
		p.Add(labels)
	}

	yTicks := make([]plot.Tick, len(years))
	for i, year := range years {
		yTicks[i] = plot.Tick{Value: float64(i) + 0.5, Label: year}
	}
	p.Y.Tick.Marker = plot.ConstantTicks(yTicks)
	p.Y.Min = 0
	p.Y.Max = float64(len(years)) + 1

	var xTicks []plot.Tick
	for x := 50; x < 360; x += 50 {
		xTicks = append(xTicks, plot.Tick{Value: float64(x), Label: fmt.Sprintf("%d", x)})
	}
	p.X.Tick.Marker = plot.ConstantTicks(xTicks)
	p.X.Min = 0
	p.X.Max = 360
	p.Legend.Top = true

	return Render(p, opts, "3c")
}

func xyPairs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i] = plotter.XY{X: xs[i], Y: ys[i]}
	}
	return pts
}

func intLabels(values plotter.Values) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = fmt.Sprintf("%d", int(v))
	}
	return out
}
