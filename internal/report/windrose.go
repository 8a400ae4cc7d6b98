package report

import (
	"fmt"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"github.com/user/pyair_go/internal/analysis"
)

// roseOpening is the share of a sector covered by its wedge.
const roseOpening = 0.8

// arcSteps is the number of segments used to draw one wedge arc.
const arcSteps = 8

// polar converts a compass bearing in degrees and a radius to plot
// coordinates, North up and East right.
func polar(bearing, r float64) plotter.XY {
	rad := bearing * math.Pi / 180
	return plotter.XY{X: r * math.Sin(rad), Y: r * math.Cos(rad)}
}

// wedge returns the polygon between radii r0 < r1 spanning bearings
// [from, to].
func wedge(from, to, r0, r1 float64) plotter.XYs {
	pts := make(plotter.XYs, 0, 2*(arcSteps+1))
	for i := 0; i <= arcSteps; i++ {
		pts = append(pts, polar(from+(to-from)*float64(i)/arcSteps, r1))
	}
	for i := arcSteps; i >= 0; i-- {
		pts = append(pts, polar(from+(to-from)*float64(i)/arcSteps, r0))
	}
	return pts
}

// classLabel names speed class k, e.g. "[1.0 : 2.0)" or "[5.0 : inf)".
func classLabel(classes []float64, k int) string {
	if k+1 < len(classes) {
		return fmt.Sprintf("[%.1f : %.1f)", classes[k], classes[k+1])
	}
	return fmt.Sprintf("[%.1f : inf)", classes[k])
}

// WindRose draws the frequency table as a rose: one stacked wedge per
// sector, one colour per speed class, with reference circles every
// fifth of the longest petal.
func WindRose(table *analysis.WindTable, opts Options) ([]byte, error) {
	if table == nil || table.Counted == 0 {
		return nil, fmt.Errorf("%w: empty wind table", analysis.ErrNoData)
	}

	p := plot.New()
	p.Title.Text = opts.Title
	p.HideAxes()

	width := table.SectorWidth()
	half := width * roseOpening / 2
	colors := palette.Heat(len(table.SpeedClasses), 1).Colors()

	longest := 0.0
	for _, v := range table.DirectionTotals() {
		longest = math.Max(longest, v)
	}

	cumulative := make([]float64, table.NSector)
	for k, row := range table.Table {
		var thumb *plotter.Polygon
		for s, v := range row {
			if v <= 0 {
				continue
			}
			bearing := float64(s) * width
			poly, err := plotter.NewPolygon(wedge(bearing-half, bearing+half, cumulative[s], cumulative[s]+v))
			if err != nil {
				return nil, fmt.Errorf("failed to create wedge for sector %d: %w", s, err)
			}
			poly.Color = colors[k]
			poly.LineStyle.Color = colors[k]
			poly.LineStyle.Width = vg.Points(0.5)
			p.Add(poly)
			cumulative[s] += v
			thumb = poly
		}
		if thumb != nil {
			p.Legend.Add(classLabel(table.SpeedClasses, k), thumb)
		}
	}

	// Reference circles and their values along the North-East diagonal.
	unit := ""
	if table.Normed {
		unit = "%"
	}
	var ringLabels plotter.XYLabels
	for i := 1; i <= 5; i++ {
		r := longest * float64(i) / 5
		circle := make(plotter.XYs, 0, 73)
		for b := 0; b <= 360; b += 5 {
			circle = append(circle, polar(float64(b), r))
		}
		ring, err := plotter.NewLine(circle)
		if err != nil {
			return nil, fmt.Errorf("failed to create reference circle: %w", err)
		}
		ring.Color = gridGray
		ring.Dashes = []vg.Length{vg.Points(2), vg.Points(2)}
		p.Add(ring)
		ringLabels.XYs = append(ringLabels.XYs, polar(45, r))
		ringLabels.Labels = append(ringLabels.Labels, fmt.Sprintf("%.1f%s", r, unit))
	}
	rings, err := plotter.NewLabels(ringLabels)
	if err != nil {
		return nil, fmt.Errorf("failed to create circle labels: %w", err)
	}
	p.Add(rings)

	// Cardinal points just outside the longest petal.
	var cardinals plotter.XYLabels
	for i, name := range []string{"N", "E", "S", "O"} {
		cardinals.XYs = append(cardinals.XYs, polar(float64(i)*90, longest*1.12))
		cardinals.Labels = append(cardinals.Labels, name)
	}
	compass, err := plotter.NewLabels(cardinals)
	if err != nil {
		return nil, fmt.Errorf("failed to create cardinal labels: %w", err)
	}
	for i := range compass.TextStyle {
		compass.TextStyle[i].XAlign = text.XCenter
		compass.TextStyle[i].YAlign = text.YCenter
	}
	p.Add(compass)

	lim := longest * 1.25
	p.X.Min, p.X.Max = -lim, lim
	p.Y.Min, p.Y.Max = -lim, lim
	p.Legend.Top = true

	if opts.Width == 0 && opts.Height == 0 && opts.Size == "" {
		opts.Width, opts.Height = 8, 8
	}
	return Render(p, opts, "defaut")
}
