package pivot

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// Table is a wide table rebuilt from pivoted lines.
type Table struct {
	Header [][]string // NbRows label rows, one cell per value column
	Rows   [][]string // reference fields followed by one value per column
	NbCols int
}

// Unpivot groups long-form lines back into a wide table. Records and
// columns keep the order in which they first appear; a column missing for
// a record is left empty. Lines that do not carry exactly
// NbCols+NbRows+1 fields are an error.
func Unpivot(r io.Reader, opts Options) (*Table, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}

	type record struct {
		refs   []string
		values map[int]string
	}
	var (
		records   []*record
		recordIdx = make(map[string]int)
		columns   []HeaderTuple
		columnIdx = make(map[string]int)
		want      = opts.NbCols + opts.NbRows + 1
	)

	for n, line := range splitLines(string(data)) {
		if trimLine(line, opts.Sep) == "" {
			continue
		}
		fields := splitFields(line, opts.Sep)
		if len(fields) != want {
			return nil, fmt.Errorf("line %d: expected %d fields, got %d", n+1, want, len(fields))
		}
		refs := fields[:opts.NbCols]
		labels := fields[opts.NbCols : opts.NbCols+opts.NbRows]

		rk := strings.Join(refs, opts.Sep)
		ri, ok := recordIdx[rk]
		if !ok {
			ri = len(records)
			recordIdx[rk] = ri
			records = append(records, &record{refs: refs, values: make(map[int]string)})
		}
		ck := strings.Join(labels, opts.Sep)
		ci, ok := columnIdx[ck]
		if !ok {
			ci = len(columns)
			columnIdx[ck] = ci
			columns = append(columns, HeaderTuple(labels))
		}
		records[ri].values[ci] = fields[want-1]
	}

	t := &Table{NbCols: opts.NbCols}
	t.Header = Untranspose(columns)
	if t.Header == nil {
		t.Header = make([][]string, opts.NbRows)
	}
	for _, rec := range records {
		row := make([]string, 0, len(rec.refs)+len(columns))
		row = append(row, rec.refs...)
		for ci := range columns {
			row = append(row, rec.values[ci])
		}
		t.Rows = append(t.Rows, row)
	}
	return t, nil
}

// Write serialises the table with sep. refLabels name the reference
// columns on every header line and are padded with empty fields up to
// NbCols.
func (t *Table) Write(w io.Writer, sep string, refLabels []string) error {
	bw := bufio.NewWriter(w)
	labels := make([]string, t.NbCols)
	copy(labels, refLabels)

	for _, row := range t.Header {
		line := append(append([]string{}, labels...), row...)
		if _, err := bw.WriteString(strings.Join(line, sep) + "\n"); err != nil {
			return fmt.Errorf("failed to write header: %w", err)
		}
	}
	for _, row := range t.Rows {
		if _, err := bw.WriteString(strings.Join(row, sep) + "\n"); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
	return bw.Flush()
}
