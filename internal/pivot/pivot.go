// Package pivot turns wide delimited tables into long form: every
// (record, value column) pair of the input becomes one output line made of
// the record's reference fields, the column's header labels and the value.
//
//	Source_name,CO,NO2          ROUTE_1,CO,0.0020
//	ROUTE_1,0.0020,0.0003  -->  ROUTE_1,NO2,0.0003
package pivot

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"

	"github.com/user/pyair_go/internal/observability"
)

// PivotFile reads inPath completely, then writes the pivoted table to
// outPath, replacing any existing file. Failing to read the input or to
// write the output aborts the run; problems confined to a single data row
// are logged, recorded in the Result and skipped.
func PivotFile(inPath, outPath string, opts Options) (res *Result, err error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(inPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}
	lines := splitLines(string(data))

	out, err := os.Create(outPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to close output file: %w", cerr)
		}
	}()

	logger := observability.OrNop(opts.Logger).With(observability.String("input", inPath))
	return transform(lines, out, opts, logger)
}

// Pivot is PivotFile over streams. r is consumed entirely before anything
// is written to w.
func Pivot(r io.Reader, w io.Writer, opts Options) (*Result, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	return transform(splitLines(string(data)), w, opts, observability.OrNop(opts.Logger))
}

// Transpose turns header rows into per-column tuples: tuple i holds the
// i-th label of every row. Rows shorter than the widest one leave empty
// cells in the corresponding tuples.
func Transpose(rows [][]string) []HeaderTuple {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	tuples := make([]HeaderTuple, width)
	for i := range tuples {
		tuple := make(HeaderTuple, len(rows))
		for r, row := range rows {
			if i < len(row) {
				tuple[r] = row[i]
			}
		}
		tuples[i] = tuple
	}
	return tuples
}

// Untranspose is the inverse of Transpose for rectangular headers.
func Untranspose(tuples []HeaderTuple) [][]string {
	if len(tuples) == 0 {
		return nil
	}
	rows := make([][]string, len(tuples[0]))
	for r := range rows {
		row := make([]string, len(tuples))
		for i, tuple := range tuples {
			if r < len(tuple) {
				row[i] = tuple[r]
			}
		}
		rows[r] = row
	}
	return rows
}

// header is the parsed header block.
type header struct {
	tuples     []HeaderTuple
	incomplete []bool // tuple i lacks a label from at least one header row
}

func parseHeader(lines []string, opts Options) header {
	n := opts.NbRows
	if n > len(lines) {
		n = len(lines)
	}
	rows := make([][]string, n)
	for i := 0; i < n; i++ {
		fields := splitFields(lines[i], opts.Sep)
		rows[i] = fields[min(opts.NbCols, len(fields)):]
	}

	h := header{tuples: Transpose(rows)}
	h.incomplete = make([]bool, len(h.tuples))
	for _, row := range rows {
		for i := len(row); i < len(h.tuples); i++ {
			h.incomplete[i] = true
		}
	}
	return h
}

func transform(lines []string, w io.Writer, opts Options, logger observability.Logger) (*Result, error) {
	head := parseHeader(lines, opts)
	res := &Result{}
	bw := bufio.NewWriter(w)

	report := func(rowErr RowError) {
		res.RowErrors = append(res.RowErrors, rowErr)
		logger.Error("pivot: error on data row",
			observability.Int("row", rowErr.Row),
			observability.Int("line", rowErr.Line),
			observability.Int("column", rowErr.Column),
			observability.Error(rowErr.Err),
		)
	}

	start := min(opts.NbRows, len(lines))
	for nline, line := range lines[start:] {
		lineNo := start + nline + 1
		if trimLine(line, opts.Sep) == "" {
			logger.Debug("pivot: skipping blank line", observability.Int("line", lineNo))
			continue
		}
		res.DataRows++

		vals := splitFields(line, opts.Sep)
		refs := vals[:min(opts.NbCols, len(vals))]
		datas := vals[len(refs):]

		n := min(len(datas), len(head.tuples))
		stopped := false
		for i := 0; i < n; i++ {
			if head.incomplete[i] {
				report(RowError{Row: nline, Line: lineNo, Column: i,
					Err: fmt.Errorf("%w: column %d", ErrIncompleteHead, i)})
				stopped = true
				break
			}
			fields := make([]string, 0, len(refs)+len(head.tuples[i])+1)
			fields = append(fields, refs...)
			fields = append(fields, head.tuples[i]...)
			fields = append(fields, datas[i])
			if _, err := bw.WriteString(strings.Join(fields, opts.Sep) + "\n"); err != nil {
				return res, fmt.Errorf("failed to write output: %w", err)
			}
			res.LinesWritten++
		}
		if stopped {
			continue
		}

		switch {
		case len(datas) < len(head.tuples):
			report(RowError{Row: nline, Line: lineNo, Column: len(datas),
				Err: fmt.Errorf("%w: got %d, want %d", ErrMissingValues, len(datas), len(head.tuples))})
		case len(datas) > len(head.tuples):
			report(RowError{Row: nline, Line: lineNo, Column: len(head.tuples),
				Err: fmt.Errorf("%w: got %d, want %d", ErrExtraValues, len(datas), len(head.tuples))})
		}
	}

	if err := bw.Flush(); err != nil {
		return res, fmt.Errorf("failed to write output: %w", err)
	}
	logger.Info("pivot complete",
		observability.Int("data_rows", res.DataRows),
		observability.Int("lines_written", res.LinesWritten),
		observability.Int("row_errors", len(res.RowErrors)),
	)
	return res, nil
}

// splitLines splits text into lines. A final newline does not start an
// extra line.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.Split(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// trimLine strips surrounding whitespace, keeping characters that belong
// to the separator so that empty leading or trailing fields survive.
func trimLine(line, sep string) string {
	return strings.TrimFunc(line, func(r rune) bool {
		return unicode.IsSpace(r) && !strings.ContainsRune(sep, r)
	})
}

func splitFields(line, sep string) []string {
	return strings.Split(trimLine(line, sep), sep)
}
