package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// strftimeVerbs maps the strftime directives found in data exports to
// Go reference layout fragments.
var strftimeVerbs = map[byte]string{
	'Y': "2006",
	'y': "06",
	'm': "01",
	'd': "02",
	'H': "15",
	'M': "04",
	'S': "05",
	'j': "002",
	'b': "Jan",
	'B': "January",
	'%': "%",
}

// StrftimeLayout converts a strftime format such as "%Y%m%d%H" to the Go
// layout "2006010215".
func StrftimeLayout(format string) (string, error) {
	var b strings.Builder
	for i := 0; i < len(format); i++ {
		if format[i] != '%' {
			b.WriteByte(format[i])
			continue
		}
		if i+1 >= len(format) {
			return "", fmt.Errorf("dangling %% in date format %q", format)
		}
		i++
		frag, ok := strftimeVerbs[format[i]]
		if !ok {
			return "", fmt.Errorf("unsupported directive %%%c in date format %q", format[i], format)
		}
		b.WriteString(frag)
	}
	return b.String(), nil
}

// ReadMeteoFrance reads a Météo-France CSV export into a time indexed Frame.
func ReadMeteoFrance(filepath string) (*Frame, error) {
	return ReadFrame(filepath, MeteoFranceOptions())
}

// ReadFrame reads a delimited file whose first row holds column names.
func ReadFrame(filepath string, opts ReadOptions) (*Frame, error) {
	file, err := os.Open(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer file.Close()

	return ReadFrameFromReader(file, opts)
}

// ReadFrameFromReader is ReadFrame over an io.Reader.
func ReadFrameFromReader(r io.Reader, opts ReadOptions) (*Frame, error) {
	if utf8.RuneCountInString(opts.Sep) != 1 {
		return nil, fmt.Errorf("separator must be a single character, got %q", opts.Sep)
	}
	if opts.Decimal == "" {
		opts.Decimal = "."
	}
	if opts.Decimal == opts.Sep {
		return nil, fmt.Errorf("decimal mark and separator are both %q", opts.Sep)
	}
	var layout string
	if opts.DateColumn != "" {
		l, err := StrftimeLayout(opts.DateFormat)
		if err != nil {
			return nil, err
		}
		layout = l
	}

	sep, _ := utf8.DecodeRuneInString(opts.Sep)
	reader := csv.NewReader(r)
	reader.Comma = sep
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	allRows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV data: %w", err)
	}
	if len(allRows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	frame := NewFrame()
	header := make([]string, len(allRows[0]))
	for i, name := range allRows[0] {
		header[i] = strings.TrimSpace(name)
	}

	dateIdx := -1
	if opts.DateColumn != "" {
		for i, name := range header {
			if name == opts.DateColumn {
				dateIdx = i
				break
			}
		}
		if dateIdx < 0 {
			return nil, fmt.Errorf("%w: date column %s", ErrUnknownColumn, opts.DateColumn)
		}
	}

	// Raw cells per column, rows with a bad date already dropped.
	raw := make([][]string, len(header))
	for rowIdx, row := range allRows[1:] {
		if len(row) == 1 && strings.TrimSpace(row[0]) == "" {
			continue
		}
		if dateIdx >= 0 {
			if dateIdx >= len(row) {
				frame.ParseErrors = append(frame.ParseErrors, fmt.Sprintf("Warning: CSV row %d has no %s value, row skipped.", rowIdx+2, opts.DateColumn))
				continue
			}
			ts, err := time.Parse(layout, strings.TrimSpace(row[dateIdx]))
			if err != nil {
				frame.ParseErrors = append(frame.ParseErrors, fmt.Sprintf("Warning: CSV row %d - invalid date '%s', row skipped: %v", rowIdx+2, row[dateIdx], err))
				continue
			}
			frame.Index = append(frame.Index, ts)
		}
		if len(row) != len(header) {
			frame.ParseErrors = append(frame.ParseErrors, fmt.Sprintf("Warning: CSV row %d has %d fields, expected %d. Missing cells set to NaN.", rowIdx+2, len(row), len(header)))
		}
		for c := range header {
			cell := ""
			if c < len(row) {
				cell = strings.TrimSpace(row[c])
			}
			raw[c] = append(raw[c], cell)
		}
	}

	for c, name := range header {
		if c == dateIdx {
			continue
		}
		values, numeric, errs := parseNumericColumn(raw[c], opts.Decimal)
		if !numeric {
			frame.Labels[name] = raw[c]
			continue
		}
		for _, e := range errs {
			frame.ParseErrors = append(frame.ParseErrors, fmt.Sprintf("Error converting value in column '%s': %s. Using NaN.", name, e))
		}
		frame.Columns = append(frame.Columns, name)
		frame.Data[name] = values
	}

	return frame, nil
}

// parseNumericColumn converts cells to floats. Empty cells are NaN without
// complaint. A column is numeric when at least one cell parses.
func parseNumericColumn(cells []string, decimal string) ([]float64, bool, []string) {
	values := make([]float64, len(cells))
	numeric := false
	var errs []string
	for i, cell := range cells {
		values[i] = math.NaN()
		if cell == "" {
			continue
		}
		s := cell
		if decimal != "." {
			s = strings.ReplaceAll(s, decimal, ".")
		}
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			errs = append(errs, fmt.Sprintf("row %d value '%s'", i+1, cell))
			continue
		}
		values[i] = v
		numeric = true
	}
	return values, numeric, errs
}
