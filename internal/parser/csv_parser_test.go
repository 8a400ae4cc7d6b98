package parser

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const meteoFranceSample = `POSTE;DATE;FF;DD;NOM
69029001;2012010100;2,5;180;BRON
69029001;2012010101;0,4;0;BRON
69029001;2012010102;;270;BRON
69029001;20120101xx;3,1;90;BRON
69029001;2012010104;n/a;90;BRON
`

func TestStrftimeLayout(t *testing.T) {
	tests := []struct {
		format  string
		want    string
		wantErr bool
	}{
		{format: "%Y%m%d%H", want: "2006010215"},
		{format: "%d/%m/%Y %H:%M:%S", want: "02/01/2006 15:04:05"},
		{format: "%y-%j", want: "06-002"},
		{format: "100%%", want: "100%"},
		{format: "%Q", wantErr: true},
		{format: "%Y%", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			got, err := StrftimeLayout(tt.format)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestReadMeteoFrance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mf.csv")
	require.NoError(t, os.WriteFile(path, []byte(meteoFranceSample), 0o644))

	frame, err := ReadMeteoFrance(path)
	require.NoError(t, err)

	// The row with a broken date is dropped.
	require.Len(t, frame.Index, 4)
	assert.Equal(t, time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC), frame.Index[0])
	assert.Equal(t, time.Date(2012, 1, 1, 4, 0, 0, 0, time.UTC), frame.Index[3])
	assert.Equal(t, 4, frame.Len())

	assert.Equal(t, []string{"POSTE", "FF", "DD"}, frame.Columns)
	assert.Equal(t, []string{"BRON", "BRON", "BRON", "BRON"}, frame.Labels["NOM"])

	ff, err := frame.Column("FF")
	require.NoError(t, err)
	assert.InDelta(t, 2.5, ff[0], 1e-9)
	assert.InDelta(t, 0.4, ff[1], 1e-9)
	assert.True(t, math.IsNaN(ff[2]), "empty cell is NaN")
	assert.True(t, math.IsNaN(ff[3]), "unparsable cell is NaN")

	dd, err := frame.Column("DD")
	require.NoError(t, err)
	assert.Equal(t, []float64{180, 0, 270, 90}, dd)

	require.Len(t, frame.ParseErrors, 2)
	assert.Contains(t, frame.ParseErrors[0], "invalid date")
	assert.Contains(t, frame.ParseErrors[1], "n/a")
}

func TestReadFrameDefaults(t *testing.T) {
	frame, err := ReadFrameFromReader(strings.NewReader("x, y\n1,2\n3,4\n5\n"), DefaultReadOptions())
	require.NoError(t, err)

	assert.Empty(t, frame.Index)
	assert.Equal(t, []string{"x", "y"}, frame.Columns)
	y, err := frame.Column("y")
	require.NoError(t, err)
	assert.Equal(t, 2.0, y[0])
	assert.True(t, math.IsNaN(y[2]))
	assert.Len(t, frame.ParseErrors, 1)

	_, err = frame.Column("z")
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestReadFrameErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		opts  ReadOptions
	}{
		{name: "multi character separator", input: "a\n", opts: ReadOptions{Sep: "::"}},
		{name: "decimal equals separator", input: "a\n", opts: ReadOptions{Sep: ",", Decimal: ","}},
		{name: "bad date format", input: "DATE\n", opts: ReadOptions{Sep: ";", DateColumn: "DATE", DateFormat: "%Q"}},
		{name: "missing date column", input: "TIME;FF\n", opts: MeteoFranceOptions()},
		{name: "empty input", input: "", opts: DefaultReadOptions()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadFrameFromReader(strings.NewReader(tt.input), tt.opts)
			assert.Error(t, err)
		})
	}

	_, err := ReadFrame(filepath.Join(t.TempDir(), "missing.csv"), DefaultReadOptions())
	assert.ErrorContains(t, err, "failed to open CSV file")
}
