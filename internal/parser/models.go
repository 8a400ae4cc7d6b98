package parser

import (
	"errors"
	"fmt"
	"time"
)

// ErrUnknownColumn is returned when a requested column does not exist.
var ErrUnknownColumn = errors.New("unknown column")

// Frame is a column oriented table read from a delimited file. Numeric
// columns live in Data, columns without a single numeric cell in Labels.
// When a date column was requested, Index holds one timestamp per row.
type Frame struct {
	Index       []time.Time
	Columns     []string // numeric columns, in file order
	Data        map[string][]float64
	Labels      map[string][]string
	ParseErrors []string // non-fatal problems met while reading
}

// NewFrame initialises an empty Frame.
func NewFrame() *Frame {
	return &Frame{
		Data:        make(map[string][]float64),
		Labels:      make(map[string][]string),
		ParseErrors: make([]string, 0),
	}
}

// Len returns the number of rows.
func (f *Frame) Len() int {
	if len(f.Index) > 0 {
		return len(f.Index)
	}
	for _, col := range f.Data {
		return len(col)
	}
	for _, col := range f.Labels {
		return len(col)
	}
	return 0
}

// Column returns the values of a numeric column.
func (f *Frame) Column(name string) ([]float64, error) {
	col, ok := f.Data[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownColumn, name)
	}
	return col, nil
}

// ReadOptions describes the dialect of a delimited file.
type ReadOptions struct {
	Sep        string // single character field separator
	Decimal    string // decimal mark used in numeric cells
	DateColumn string // column parsed into Frame.Index, empty for none
	DateFormat string // strftime style layout of DateColumn
}

// DefaultReadOptions reads plain comma separated files without an index.
func DefaultReadOptions() ReadOptions {
	return ReadOptions{Sep: ",", Decimal: "."}
}

// MeteoFranceOptions matches the CSV exports of Météo-France: semicolon
// separated, comma decimals and an hourly DATE column like 2012010123.
func MeteoFranceOptions() ReadOptions {
	return ReadOptions{Sep: ";", Decimal: ",", DateColumn: "DATE", DateFormat: "%Y%m%d%H"}
}
