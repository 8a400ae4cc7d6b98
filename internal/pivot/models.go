package pivot

import (
	"errors"
	"fmt"

	"github.com/user/pyair_go/internal/observability"
)

// ErrInvalidOptions is returned when Options fail validation.
var ErrInvalidOptions = errors.New("invalid pivot options")

// Errors reported per data row. They never abort a run.
var (
	ErrMissingValues  = errors.New("fewer values than header columns")
	ErrExtraValues    = errors.New("more values than header columns")
	ErrIncompleteHead = errors.New("incomplete header tuple")
)

// Options configures a pivot run.
type Options struct {
	NbCols int    // leading reference columns per data row
	NbRows int    // header rows at the top of the file
	Sep    string // field separator
	Logger observability.Logger
}

// DefaultOptions returns one reference column, one header row and a comma
// separator.
func DefaultOptions() Options {
	return Options{NbCols: 1, NbRows: 1, Sep: ","}
}

// Validate checks the options.
func (o Options) Validate() error {
	if o.NbCols < 0 {
		return fmt.Errorf("%w: nb_cols must be >= 0, got %d", ErrInvalidOptions, o.NbCols)
	}
	if o.NbRows < 0 {
		return fmt.Errorf("%w: nb_rows must be >= 0, got %d", ErrInvalidOptions, o.NbRows)
	}
	if o.Sep == "" {
		return fmt.Errorf("%w: separator must not be empty", ErrInvalidOptions)
	}
	return nil
}

// HeaderTuple holds the labels of a single data column, one per header row.
type HeaderTuple []string

// RowError describes a data row that could not be fully pivoted.
type RowError struct {
	Row    int // 0-based line index after the header block
	Line   int // 1-based line number in the input
	Column int // value index where the row stopped, -1 if not column specific
	Err    error
}

func (e RowError) Error() string {
	return fmt.Sprintf("error on row %d (line %d): %v", e.Row, e.Line, e.Err)
}

func (e RowError) Unwrap() error {
	return e.Err
}

// Result summarises a pivot run.
type Result struct {
	DataRows     int
	LinesWritten int
	RowErrors    []RowError
}
