package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/user/pyair_go/internal/config"
	"github.com/user/pyair_go/internal/observability"
	"github.com/user/pyair_go/internal/parser"
)

type command struct {
	summary string
	run     func(args []string, stdout io.Writer) error
}

var commands = map[string]command{
	"pivot":      {"turn a wide CSV into one line per record and column", runPivot},
	"unpivot":    {"rebuild the wide CSV from pivoted lines", runUnpivot},
	"wind":       {"wind rose and histograms from a Météo-France export", runWind},
	"regression": {"scatter plot with linear regression of two columns", runRegression},
	"qqplot":     {"regression plot with a confidence band", runQQPlot},
	"series":     {"pollutant time series with regulatory thresholds", runSeries},
	"indices":    {"yearly ATMO index class histogram", runIndices},
}

// commonFlags are accepted by every command.
type commonFlags struct {
	fs         *flag.FlagSet
	configPath string
	logLevel   string
	logFormat  string
}

func newFlagSet(name string, stdout io.Writer) *commonFlags {
	c := &commonFlags{fs: flag.NewFlagSet(name, flag.ContinueOnError)}
	c.fs.SetOutput(stdout)
	c.fs.StringVar(&c.configPath, "config", "", "Path to a YAML configuration file")
	c.fs.StringVar(&c.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	c.fs.StringVar(&c.logFormat, "log-format", "", "Log format (console, json)")
	return c
}

// parse parses args and reports the names of the flags given explicitly.
// A help request yields flag.ErrHelp.
func (c *commonFlags) parse(args []string) (map[string]bool, error) {
	if err := c.fs.Parse(args); err != nil {
		return nil, err
	}
	set := make(map[string]bool)
	c.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	return set, nil
}

// app loads the configuration, applies the logging flags and builds the App.
func (c *commonFlags) app(override func(*config.Config)) (*App, error) {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return nil, err
	}
	if c.logLevel != "" {
		cfg.Log.Level = c.logLevel
	}
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}
	if override != nil {
		override(cfg)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger, err := observability.NewLogger(cfg.Log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return NewApp(cfg, logger), nil
}

// helpOK turns a help request into a clean exit.
func helpOK(err error) error {
	if errors.Is(err, flag.ErrHelp) {
		return nil
	}
	return err
}

// decodeSep accepts the escape sequences people type for separators.
func decodeSep(s string) string {
	switch s {
	case `\t`, "tab":
		return "\t"
	case "space":
		return " "
	}
	return s
}

// parseFloats parses a comma separated list such as "1,2,3".
func parseFloats(s string) ([]float64, error) {
	var out []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		v, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in list: %w", part, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func requireFlags(fs *flag.FlagSet, values map[string]string) error {
	var missing []string
	for name, v := range values {
		if v == "" {
			missing = append(missing, "-"+name)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return fmt.Errorf("%s: missing required flags %s", fs.Name(), strings.Join(missing, ", "))
	}
	return nil
}

func runPivot(args []string, stdout io.Writer) error {
	c := newFlagSet("pivot", stdout)
	in := c.fs.String("in", "", "Input CSV file")
	out := c.fs.String("out", "", "Output CSV file (overwritten)")
	nbCols := c.fs.Int("nb-cols", 1, "Number of leading reference columns")
	nbRows := c.fs.Int("nb-rows", 1, "Number of header rows")
	sep := c.fs.String("sep", ",", `Field separator ("\t" for tab)`)
	set, err := c.parse(args)
	if err != nil {
		return helpOK(err)
	}
	if err := requireFlags(c.fs, map[string]string{"in": *in, "out": *out}); err != nil {
		return err
	}
	app, err := c.app(func(cfg *config.Config) {
		if set["nb-cols"] {
			cfg.Pivot.NbCols = *nbCols
		}
		if set["nb-rows"] {
			cfg.Pivot.NbRows = *nbRows
		}
		if set["sep"] {
			cfg.Pivot.Sep = decodeSep(*sep)
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = app.logger.Sync() }()

	res, err := app.Pivot(*in, *out)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%d lines written from %d data rows, %d row errors\n", res.LinesWritten, res.DataRows, len(res.RowErrors))
	return nil
}

func runUnpivot(args []string, stdout io.Writer) error {
	c := newFlagSet("unpivot", stdout)
	in := c.fs.String("in", "", "Pivoted CSV file")
	out := c.fs.String("out", "", "Output CSV file (overwritten)")
	nbCols := c.fs.Int("nb-cols", 1, "Number of reference columns")
	nbRows := c.fs.Int("nb-rows", 1, "Number of header label columns")
	sep := c.fs.String("sep", ",", "Field separator")
	refLabels := c.fs.String("ref-labels", "", "Comma separated names of the reference columns")
	set, err := c.parse(args)
	if err != nil {
		return helpOK(err)
	}
	if err := requireFlags(c.fs, map[string]string{"in": *in, "out": *out}); err != nil {
		return err
	}
	app, err := c.app(func(cfg *config.Config) {
		if set["nb-cols"] {
			cfg.Pivot.NbCols = *nbCols
		}
		if set["nb-rows"] {
			cfg.Pivot.NbRows = *nbRows
		}
		if set["sep"] {
			cfg.Pivot.Sep = decodeSep(*sep)
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = app.logger.Sync() }()

	var labels []string
	if *refLabels != "" {
		labels = strings.Split(*refLabels, ",")
	}
	return app.Unpivot(*in, *out, labels)
}

func runWind(args []string, stdout io.Writer) error {
	c := newFlagSet("wind", stdout)
	in := c.fs.String("in", "", "Météo-France CSV export")
	outDir := c.fs.String("out-dir", ".", "Directory for the images")
	suffix := c.fs.String("suffix", "", "Suffix appended to image names")
	pdfPath := c.fs.String("pdf", "", "Also write a PDF report to this path")
	raw := c.fs.Bool("raw", false, "Skip Météo-France null direction and calm wind filtering")
	classes := c.fs.String("classes", "", "Comma separated speed class bounds, e.g. 1,2,3,4,5,6")
	calm := c.fs.Float64("calm", 1, "Calm wind limit in m/s")
	noHisto := c.fs.Bool("no-histo", false, "Do not draw the speed and direction histograms")
	format := c.fs.String("format", "", "Image format (png, svg, pdf, jpg)")
	set, err := c.parse(args)
	if err != nil {
		return helpOK(err)
	}
	if err := requireFlags(c.fs, map[string]string{"in": *in}); err != nil {
		return err
	}
	var speedClasses []float64
	if *classes != "" {
		if speedClasses, err = parseFloats(*classes); err != nil {
			return err
		}
	}
	app, err := c.app(func(cfg *config.Config) {
		if speedClasses != nil {
			cfg.Wind.SpeedClasses = speedClasses
		}
		if set["calm"] {
			cfg.Wind.CalmLimit = *calm
		}
		if *noHisto {
			cfg.Wind.Histograms = false
		}
		if *format != "" {
			cfg.Plot.Format = *format
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = app.logger.Sync() }()

	saved, err := app.Wind(WindRequest{
		Input:      *in,
		OutDir:     *outDir,
		Suffix:     *suffix,
		PDFPath:    *pdfPath,
		MeteoFrDat: !*raw,
	})
	for _, path := range saved {
		fmt.Fprintln(stdout, path)
	}
	return err
}

// frameFlags are the dialect flags of commands reading a generic table.
type frameFlags struct {
	in, sep, decimal, dateColumn, dateFormat *string
}

func addFrameFlags(c *commonFlags, withDate bool) frameFlags {
	f := frameFlags{
		in:      c.fs.String("in", "", "Input CSV file"),
		sep:     c.fs.String("sep", ",", "Field separator"),
		decimal: c.fs.String("decimal", ".", "Decimal mark"),
	}
	if withDate {
		f.dateColumn = c.fs.String("date-column", "DATE", "Column holding timestamps")
		f.dateFormat = c.fs.String("date-format", "%Y%m%d%H", "strftime layout of the date column")
	}
	return f
}

func (f frameFlags) options() parser.ReadOptions {
	opts := parser.ReadOptions{Sep: decodeSep(*f.sep), Decimal: *f.decimal}
	if f.dateColumn != nil {
		opts.DateColumn = *f.dateColumn
		opts.DateFormat = *f.dateFormat
	}
	return opts
}

func runRegression(args []string, stdout io.Writer) error {
	return runScatter("regression", args, stdout, false)
}

func runQQPlot(args []string, stdout io.Writer) error {
	return runScatter("qqplot", args, stdout, true)
}

func runScatter(name string, args []string, stdout io.Writer, qq bool) error {
	c := newFlagSet(name, stdout)
	frame := addFrameFlags(c, false)
	x := c.fs.String("x", "", "Column plotted on X")
	y := c.fs.String("y", "", "Column plotted on Y")
	out := c.fs.String("out", "", "Output image")
	interval := c.fs.Float64("interval", 0.5, "Relative half width of the band around the fit (qqplot)")
	size := c.fs.String("size", "", "Figure size (1c, 2c, 2c_vert, 3c, defaut, A4_portrait, A4_landscape)")
	title := c.fs.String("title", "", "Chart title")
	if _, err := c.parse(args); err != nil {
		return helpOK(err)
	}
	if err := requireFlags(c.fs, map[string]string{"in": *frame.in, "x": *x, "y": *y, "out": *out}); err != nil {
		return err
	}
	app, err := c.app(func(cfg *config.Config) {
		if *size != "" {
			cfg.Plot.Size = *size
		}
	})
	if err != nil {
		return err
	}
	defer func() { _ = app.logger.Sync() }()

	req := ScatterRequest{Input: *frame.in, Read: frame.options(), X: *x, Y: *y, Out: *out, Title: *title}
	if qq {
		req.Interval = interval
	}
	reg, err := app.Scatter(req)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "%s = %s\nr = %.4f (n = %d)\n", *y, reg, reg.Correlation, reg.N)
	return nil
}

func runSeries(args []string, stdout io.Writer) error {
	c := newFlagSet("series", stdout)
	frame := addFrameFlags(c, true)
	column := c.fs.String("column", "", "Pollutant column")
	pollutant := c.fs.String("pollutant", "", "Pollutant whose thresholds are drawn (defaults to the column name)")
	unit := c.fs.String("unit", "micro", "Unit shorthand (micro, milli, deg) or label")
	out := c.fs.String("out", "", "Output image")
	title := c.fs.String("title", "", "Chart title")
	if _, err := c.parse(args); err != nil {
		return helpOK(err)
	}
	if err := requireFlags(c.fs, map[string]string{"in": *frame.in, "column": *column, "out": *out}); err != nil {
		return err
	}
	app, err := c.app(nil)
	if err != nil {
		return err
	}
	defer func() { _ = app.logger.Sync() }()

	return app.Series(SeriesRequest{
		Input:     *frame.in,
		Read:      frame.options(),
		Column:    *column,
		Pollutant: *pollutant,
		Unit:      *unit,
		Out:       *out,
		Title:     *title,
	})
}

func runIndices(args []string, stdout io.Writer) error {
	c := newFlagSet("indices", stdout)
	frame := addFrameFlags(c, true)
	column := c.fs.String("column", "ATMO", "Column with daily ATMO indices")
	out := c.fs.String("out", "", "Output image")
	title := c.fs.String("title", "", "Chart title")
	if _, err := c.parse(args); err != nil {
		return helpOK(err)
	}
	if err := requireFlags(c.fs, map[string]string{"in": *frame.in, "out": *out}); err != nil {
		return err
	}
	app, err := c.app(nil)
	if err != nil {
		return err
	}
	defer func() { _ = app.logger.Sync() }()

	counts, err := app.Indices(*frame.in, frame.options(), *column, *out, *title)
	if err != nil {
		return err
	}
	for _, yc := range counts {
		fmt.Fprintf(stdout, "%s: %d %d %d\n", yc.Year, yc.Counts[0], yc.Counts[1], yc.Counts[2])
	}
	return nil
}
