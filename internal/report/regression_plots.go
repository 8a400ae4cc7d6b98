package report

import (
	"fmt"
	"image/color"
	"math"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/user/pyair_go/internal/analysis"
)

var pointYellow = color.RGBA{R: 0xe6, G: 0xc8, A: 255}

// scatterWithFit makes the shared base of the regression and QQ plots:
// the observations, the dashed fitted line and the axis labels.
func scatterWithFit(xName, yName string, x, y []float64, opts Options) (*plot.Plot, *analysis.Regression, plotter.XYs, error) {
	reg, err := analysis.LinearRegression(x, y)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("regression of %s on %s: %w", yName, xName, err)
	}

	pts := make(plotter.XYs, 0, len(x))
	for i := range x {
		if math.IsNaN(x[i]) || math.IsNaN(y[i]) {
			continue
		}
		pts = append(pts, plotter.XY{X: x[i], Y: y[i]})
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.X.Label.Text = xName
	p.Y.Label.Text = yName
	p.Add(plotter.NewGrid())

	scatter, err := plotter.NewScatter(pts)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create scatter: %w", err)
	}
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Color = pointYellow
	scatter.GlyphStyle.Radius = vg.Points(3)
	p.Add(scatter)

	xmin, xmax := math.Inf(1), math.Inf(-1)
	for _, pt := range pts {
		xmin, xmax = math.Min(xmin, pt.X), math.Max(xmax, pt.X)
	}
	fitLine, err := plotter.NewLine(plotter.XYs{{X: xmin, Y: reg.Eval(xmin)}, {X: xmax, Y: reg.Eval(xmax)}})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to create fit line: %w", err)
	}
	fitLine.Color = color.Black
	fitLine.Dashes = []vg.Length{vg.Points(5), vg.Points(5)}
	p.Add(fitLine)
	p.Legend.Add(fmt.Sprintf("y = %s (r = %.3f)", reg, reg.Correlation), fitLine)
	p.Legend.Top = true
	p.Legend.Left = true

	return p, reg, pts, nil
}

// RegressionPlot draws y against x with the first degree least squares
// line and returns the fit along with the image.
func RegressionPlot(xName, yName string, x, y []float64, opts Options) ([]byte, *analysis.Regression, error) {
	p, reg, _, err := scatterWithFit(xName, yName, x, y, opts)
	if err != nil {
		return nil, nil, err
	}
	img, err := Render(p, opts, "defaut")
	if err != nil {
		return nil, nil, err
	}
	return img, reg, nil
}

// QQPlot is RegressionPlot with two red lines bounding the fitted values
// by fit*(1±interval).
func QQPlot(xName, yName string, x, y []float64, interval float64, opts Options) ([]byte, error) {
	if interval < 0 || interval > 1 {
		return nil, fmt.Errorf("interval must be within [0, 1], got %g", interval)
	}
	p, reg, pts, err := scatterWithFit(xName, yName, x, y, opts)
	if err != nil {
		return nil, err
	}

	// Sort by x so the bounds draw as straight segments.
	xs := make([]float64, len(pts))
	for i, pt := range pts {
		xs[i] = pt.X
	}
	sort.Float64s(xs)
	upper := make(plotter.XYs, len(xs))
	lower := make(plotter.XYs, len(xs))
	for i, xv := range xs {
		fit := reg.Eval(xv)
		upper[i] = plotter.XY{X: xv, Y: fit + fit*interval}
		lower[i] = plotter.XY{X: xv, Y: fit - fit*interval}
	}
	for _, bound := range []plotter.XYs{upper, lower} {
		line, err := plotter.NewLine(bound)
		if err != nil {
			return nil, fmt.Errorf("failed to create interval line: %w", err)
		}
		line.Color = valueRed
		p.Add(line)
	}

	return Render(p, opts, "defaut")
}
