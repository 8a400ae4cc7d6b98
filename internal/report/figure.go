// Package report draws the air quality and meteorology charts with
// gonum/plot and bundles them into PDF reports.
package report

import (
	"bytes"
	"fmt"
	"image/color"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
)

// FigSize is a figure size in inches.
type FigSize struct {
	Width, Height float64
}

// FigSizes are the named figure sizes: column layouts for reports plus A4.
var FigSizes = map[string]FigSize{
	"1c":           {3.854, 3.154}, // 1 column, 1 row
	"2c":           {7.20, 3.154},  // 2 columns, 1 row
	"2c_vert":      {3.854, 6.308}, // 1 column, 2 rows
	"3c":           {7.20, 6.308},  // 2 columns, 2 rows
	"defaut":       {8, 6},
	"A4_portrait":  {8.267, 11.693},
	"A4_landscape": {11.693, 8.267},
}

// Units maps unit shorthands to axis labels. Unknown units are used as is.
var Units = map[string]string{
	"micro":     "µg/m³",
	"microg/m3": "µg/m³",
	"milli":     "mg/m³",
	"deg":       "degré",
}

// UnitLabel returns the axis label for a unit shorthand.
func UnitLabel(unit string) string {
	if label, ok := Units[unit]; ok {
		return label
	}
	return unit
}

// Options are the settings shared by every chart.
type Options struct {
	Title  string
	Size   string  // key of FigSizes; ignored when Width and Height are set
	Width  float64 // inches
	Height float64 // inches
	Format string  // png, svg, pdf, jpg...
}

// figSize resolves the size of a figure, falling back to def.
func (o Options) figSize(def string) (FigSize, error) {
	if o.Width > 0 && o.Height > 0 {
		return FigSize{o.Width, o.Height}, nil
	}
	name := o.Size
	if name == "" {
		name = def
	}
	size, ok := FigSizes[name]
	if !ok {
		return FigSize{}, fmt.Errorf("unknown figure size: %s", name)
	}
	return size, nil
}

func (o Options) format() string {
	if o.Format == "" {
		return "png"
	}
	return o.Format
}

// Render encodes p with the size and format of opts, defaulting to the
// def figure size.
func Render(p *plot.Plot, opts Options, def string) ([]byte, error) {
	size, err := opts.figSize(def)
	if err != nil {
		return nil, err
	}
	writer, err := p.WriterTo(vg.Length(size.Width)*vg.Inch, vg.Length(size.Height)*vg.Inch, opts.format())
	if err != nil {
		return nil, fmt.Errorf("failed to create plot writer: %w", err)
	}
	buf := new(bytes.Buffer)
	if _, err := writer.WriteTo(buf); err != nil {
		return nil, fmt.Errorf("failed to write plot to buffer: %w", err)
	}
	return buf.Bytes(), nil
}

// SaveImage writes rendered chart bytes to path.
func SaveImage(path string, img []byte) error {
	if err := os.WriteFile(path, img, 0o644); err != nil {
		return fmt.Errorf("failed to save image %s: %w", path, err)
	}
	return nil
}

// Colours used across the charts.
var (
	barBlue     = color.RGBA{R: 0x34, G: 0x8a, B: 0xbd, A: 255}
	valueRed    = color.RGBA{R: 255, A: 255}
	atmoGreen   = color.RGBA{G: 255, A: 255}
	atmoYellow  = color.RGBA{R: 0xf7, G: 0xc9, B: 0x01, A: 255}
	atmoRed     = color.RGBA{R: 255, A: 255}
	thresholdOK = color.RGBA{G: 128, A: 255}
	orange      = color.RGBA{R: 255, G: 165, A: 255}
	gridGray    = color.Gray{Y: 180}
)
