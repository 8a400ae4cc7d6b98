package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/user/pyair_go/internal/analysis"
	"github.com/user/pyair_go/internal/config"
	"github.com/user/pyair_go/internal/observability"
	"github.com/user/pyair_go/internal/parser"
	"github.com/user/pyair_go/internal/pivot"
	"github.com/user/pyair_go/internal/report"
)

// App runs the pyair pipelines with a loaded configuration.
type App struct {
	cfg    *config.Config
	logger observability.Logger
}

// NewApp creates a new App.
func NewApp(cfg *config.Config, logger observability.Logger) *App {
	return &App{cfg: cfg, logger: observability.OrNop(logger)}
}

func (a *App) sendStatus(message string, fields ...observability.Field) {
	a.logger.Info(message, fields...)
}

func (a *App) reportParseErrors(frame *parser.Frame) {
	for _, e := range frame.ParseErrors {
		a.logger.Warn("parse problem", observability.String("detail", e))
	}
}

func (a *App) pivotOptions() pivot.Options {
	return pivot.Options{
		NbCols: a.cfg.Pivot.NbCols,
		NbRows: a.cfg.Pivot.NbRows,
		Sep:    a.cfg.Pivot.Sep,
		Logger: a.logger,
	}
}

// Pivot pivots inPath into outPath.
func (a *App) Pivot(inPath, outPath string) (*pivot.Result, error) {
	a.sendStatus("pivoting", observability.String("input", inPath), observability.String("output", outPath))
	return pivot.PivotFile(inPath, outPath, a.pivotOptions())
}

// Unpivot rebuilds the wide table of a pivoted file.
func (a *App) Unpivot(inPath, outPath string, refLabels []string) (err error) {
	in, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	defer in.Close()

	table, err := pivot.Unpivot(in, a.pivotOptions())
	if err != nil {
		return err
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()
	if err := table.Write(out, a.cfg.Pivot.Sep, refLabels); err != nil {
		return err
	}
	a.sendStatus("unpivot complete",
		observability.Int("header_rows", len(table.Header)),
		observability.Int("rows", len(table.Rows)),
	)
	return nil
}

// WindRequest describes one wind rose run.
type WindRequest struct {
	Input   string
	OutDir  string
	Suffix  string
	PDFPath string // empty for no report
	// MeteoFrDat masks null directions and calm winds before counting.
	MeteoFrDat bool
}

// Wind draws the wind rose of a Météo-France export and returns the paths
// it wrote. A chart that fails is logged and skipped; the run carries on
// with the others.
func (a *App) Wind(req WindRequest) ([]string, error) {
	a.sendStatus("reading wind data", observability.String("input", req.Input))
	frame, err := parser.ReadFrame(req.Input, a.meteoOptions())
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}
	a.reportParseErrors(frame)

	speed, err := frame.Column(a.cfg.Meteo.Speed)
	if err != nil {
		return nil, err
	}
	direction, err := frame.Column(a.cfg.Meteo.Direction)
	if err != nil {
		return nil, err
	}

	var filter *analysis.WindFilter
	if req.MeteoFrDat {
		filter, err = analysis.FilterMeteoFranceWind(speed, direction, a.cfg.Wind.CalmLimit)
		if err != nil {
			return nil, err
		}
		speed, direction = filter.Speed, filter.Direction
		a.sendStatus("wind filtered",
			observability.Float64("null_direction_pct", filter.NullDirectionPct()),
			observability.Float64("calm_pct", filter.CalmPct()),
		)
	}

	table, err := analysis.WindFrequencies(speed, direction, a.cfg.Wind.SpeedClasses, a.cfg.Wind.Sectors, a.cfg.Wind.Normed)
	if err != nil {
		return nil, err
	}
	if table.Counted == 0 {
		return nil, fmt.Errorf("%w: no wind observation left in %s", analysis.ErrNoData, req.Input)
	}
	a.sendStatus("wind table computed", observability.Int("counted", table.Counted), observability.Int("excluded", table.Excluded))

	type chart struct {
		key, name string
		draw      func(report.Options) ([]byte, error)
	}
	charts := []chart{
		{report.ImageWindRose, "RDV", func(o report.Options) ([]byte, error) { return report.WindRose(table, o) }},
	}
	if a.cfg.Wind.Histograms {
		charts = append(charts, chart{report.ImageSpeedHisto, "VV_histo", func(o report.Options) ([]byte, error) {
			return report.SpeedHistogram(table.SpeedClasses, table.SpeedTotals(), o)
		}})
		if table.NSector == len(analysis.DirectionLabels) {
			charts = append(charts, chart{report.ImageDirHisto, "DV_histo", func(o report.Options) ([]byte, error) {
				return report.DirectionHistogram(table.DirectionTotals(), o)
			}})
		} else {
			a.logger.Warn("direction histogram needs 16 sectors", observability.Int("sectors", table.NSector))
		}
	}

	if err := os.MkdirAll(req.OutDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	opts := a.plotOptions("")
	var saved []string
	for _, c := range charts {
		img, err := c.draw(opts)
		if err != nil {
			a.logger.Error("error generating plot", observability.String("plot", c.name), observability.Error(err))
			continue
		}
		path := filepath.Join(req.OutDir, fmt.Sprintf("%s%s.%s", c.name, req.Suffix, opts.Format))
		if err := report.SaveImage(path, img); err != nil {
			a.logger.Error("error saving plot", observability.String("path", path), observability.Error(err))
			continue
		}
		saved = append(saved, path)
	}

	if req.PDFPath == "" {
		return saved, nil
	}

	// The PDF embeds PNG renders whatever the image format.
	pngOpts := opts
	pngOpts.Format = "png"
	images := make(map[string][]byte)
	charts = append(charts, chart{report.ImageWindHeatmap, "heatmap", func(o report.Options) ([]byte, error) {
		return report.WindTableHeatmap(table, o)
	}})
	for _, c := range charts {
		img, err := c.draw(pngOpts)
		if err != nil {
			a.logger.Error("error generating plot", observability.String("plot", c.name), observability.Error(err))
			continue
		}
		images[c.key] = img
	}
	a.sendStatus("generating PDF", observability.String("path", req.PDFPath))
	summary := report.WindSummary{Source: filepath.Base(req.Input), Filter: filter, Table: table}
	if err := report.BuildWindReport(req.PDFPath, summary, images); err != nil {
		return saved, fmt.Errorf("error generating PDF report: %w", err)
	}
	return append(saved, req.PDFPath), nil
}

func (a *App) meteoOptions() parser.ReadOptions {
	return parser.ReadOptions{
		Sep:        a.cfg.Meteo.Sep,
		Decimal:    a.cfg.Meteo.Decimal,
		DateColumn: a.cfg.Meteo.DateColumn,
		DateFormat: a.cfg.Meteo.DateFormat,
	}
}

// plotOptions builds chart options for out. The extension of out, when it
// has one, picks the image format.
func (a *App) plotOptions(out string) report.Options {
	opts := report.Options{Size: a.cfg.Plot.Size, Format: a.cfg.Plot.Format}
	if ext := strings.TrimPrefix(filepath.Ext(out), "."); ext != "" {
		opts.Format = strings.ToLower(ext)
	}
	if opts.Format == "" {
		opts.Format = "png"
	}
	return opts
}

// ScatterRequest describes a regression or quantile plot.
type ScatterRequest struct {
	Input string
	Read  parser.ReadOptions
	X, Y  string
	Out   string
	Title string
	// Interval draws the confidence band of a qqplot when set.
	Interval *float64
}

// Scatter plots Y against X with the regression line and returns the fit.
func (a *App) Scatter(req ScatterRequest) (*analysis.Regression, error) {
	frame, err := parser.ReadFrame(req.Input, req.Read)
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}
	a.reportParseErrors(frame)

	x, err := frame.Column(req.X)
	if err != nil {
		return nil, err
	}
	y, err := frame.Column(req.Y)
	if err != nil {
		return nil, err
	}

	opts := a.plotOptions(req.Out)
	opts.Title = req.Title
	var img []byte
	var reg *analysis.Regression
	if req.Interval != nil {
		if img, err = report.QQPlot(req.X, req.Y, x, y, *req.Interval, opts); err != nil {
			return nil, err
		}
		if reg, err = analysis.LinearRegression(x, y); err != nil {
			return nil, err
		}
	} else if img, reg, err = report.RegressionPlot(req.X, req.Y, x, y, opts); err != nil {
		return nil, err
	}
	if err := report.SaveImage(req.Out, img); err != nil {
		return nil, err
	}
	a.sendStatus("regression plotted", observability.String("output", req.Out), observability.String("fit", reg.String()))
	return reg, nil
}

// SeriesRequest describes a pollutant time series plot.
type SeriesRequest struct {
	Input     string
	Read      parser.ReadOptions
	Column    string
	Pollutant string // defaults to Column
	Unit      string
	Out       string
	Title     string
}

// Series plots a pollutant column over time with its thresholds.
func (a *App) Series(req SeriesRequest) error {
	frame, err := parser.ReadFrame(req.Input, req.Read)
	if err != nil {
		return fmt.Errorf("error parsing CSV: %w", err)
	}
	a.reportParseErrors(frame)
	if len(frame.Index) == 0 {
		return fmt.Errorf("%w: %s has no dated rows", analysis.ErrNoData, req.Input)
	}
	values, err := frame.Column(req.Column)
	if err != nil {
		return err
	}

	pollutant := req.Pollutant
	if pollutant == "" {
		pollutant = req.Column
	}
	if _, ok := report.PollutantLimits[pollutant]; !ok {
		a.logger.Warn("no thresholds known for pollutant", observability.String("pollutant", pollutant))
	}
	opts := a.plotOptions(req.Out)
	opts.Title = req.Title
	img, err := report.TimeSeriesPlot(pollutant, req.Unit, frame.Index, values, opts)
	if err != nil {
		return err
	}
	if err := report.SaveImage(req.Out, img); err != nil {
		return err
	}
	a.sendStatus("time series plotted", observability.String("output", req.Out))
	return nil
}

// YearCounts are the ATMO class counts of one year.
type YearCounts struct {
	Year   string
	Counts [3]int
}

// Indices counts daily ATMO indices per class and year and draws the
// matching histogram.
func (a *App) Indices(input string, read parser.ReadOptions, column, out, title string) ([]YearCounts, error) {
	frame, err := parser.ReadFrame(input, read)
	if err != nil {
		return nil, fmt.Errorf("error parsing CSV: %w", err)
	}
	a.reportParseErrors(frame)
	if len(frame.Index) == 0 {
		return nil, fmt.Errorf("%w: %s has no dated rows", analysis.ErrNoData, input)
	}
	values, err := frame.Column(column)
	if err != nil {
		return nil, err
	}

	byYear := make(map[int][]float64)
	for i, ts := range frame.Index {
		byYear[ts.Year()] = append(byYear[ts.Year()], values[i])
	}
	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	result := make([]YearCounts, 0, len(years))
	counts := make([][3]int, 0, len(years))
	labels := make([]string, 0, len(years))
	for _, y := range years {
		c := analysis.AtmoIndexClasses(byYear[y])
		result = append(result, YearCounts{Year: strconv.Itoa(y), Counts: c})
		counts = append(counts, c)
		labels = append(labels, strconv.Itoa(y))
	}

	opts := a.plotOptions(out)
	opts.Title = title
	img, err := report.IndexHistogram(counts, labels, opts)
	if err != nil {
		return nil, err
	}
	if err := report.SaveImage(out, img); err != nil {
		return nil, err
	}
	a.sendStatus("index histogram plotted", observability.String("output", out), observability.Int("years", len(years)))
	return result, nil
}
