package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var quiet = []string{"-log-level", "error"}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func runArgs(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var stdout bytes.Buffer
	err := run(args, &stdout)
	return stdout.String(), err
}

func with(cmd string, args ...string) []string {
	return append(append([]string{cmd}, quiet...), args...)
}

// meteoFranceExport builds an hourly export with a few null directions
// and calm winds.
func meteoFranceExport(hours int) string {
	var b strings.Builder
	b.WriteString("POSTE;DATE;FF;DD\n")
	start := time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < hours; i++ {
		speed := fmt.Sprintf("%d,%d", i%7, (i*3)%10)
		direction := (i * 37) % 360
		fmt.Fprintf(&b, "69029001;%s;%s;%d\n", start.Add(time.Duration(i)*time.Hour).Format("2006010215"), speed, direction)
	}
	return b.String()
}

func TestRunUsageAndVersion(t *testing.T) {
	out, err := runArgs(t)
	require.NoError(t, err)
	for name := range commands {
		assert.Contains(t, out, name)
	}

	out, err = runArgs(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "pyair version dev\n", out)

	_, err = runArgs(t, "frobnicate")
	assert.ErrorContains(t, err, `unknown command "frobnicate"`)
}

func TestCommandHelpAndMissingFlags(t *testing.T) {
	out, err := runArgs(t, "pivot", "-h")
	require.NoError(t, err)
	assert.Contains(t, out, "-nb-cols")

	_, err = runArgs(t, "pivot", "-in", "x.csv")
	assert.ErrorContains(t, err, "missing required flags -out")

	_, err = runArgs(t, "regression", "-in", "x.csv")
	assert.ErrorContains(t, err, "-out, -x, -y")
}

func TestPivotAndUnpivotCommands(t *testing.T) {
	dir := t.TempDir()
	input := "site;CO;NO2\nROUTE_1;0.1;0.2\nROUTE_2;0.3\n"
	in := writeFile(t, dir, "wide.csv", input)
	long := filepath.Join(dir, "long.csv")

	out, err := runArgs(t, with("pivot", "-in", in, "-out", long, "-sep", ";")...)
	require.NoError(t, err)
	assert.Equal(t, "3 lines written from 2 data rows, 1 row errors\n", out)

	data, err := os.ReadFile(long)
	require.NoError(t, err)
	assert.Equal(t, "ROUTE_1;CO;0.1\nROUTE_1;NO2;0.2\nROUTE_2;CO;0.3\n", string(data))

	wide := filepath.Join(dir, "back.csv")
	_, err = runArgs(t, with("unpivot", "-in", long, "-out", wide, "-sep", ";", "-ref-labels", "site")...)
	require.NoError(t, err)
	data, err = os.ReadFile(wide)
	require.NoError(t, err)
	assert.Equal(t, "site;CO;NO2\nROUTE_1;0.1;0.2\nROUTE_2;0.3;\n", string(data))
}

func TestPivotCommandWithConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "pyair.yaml", "pivot:\n  nb_cols: 0\n  sep: \"\\t\"\n")
	in := writeFile(t, dir, "in.tsv", "CO\tNO2\n1\t2\n")
	outPath := filepath.Join(dir, "out.tsv")

	_, err := runArgs(t, with("pivot", "-config", cfg, "-in", in, "-out", outPath)...)
	require.NoError(t, err)
	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Equal(t, "CO\t1\nNO2\t2\n", string(data))
}

func TestPivotCommandFatalErrors(t *testing.T) {
	dir := t.TempDir()
	outPath := filepath.Join(dir, "out.csv")

	_, err := runArgs(t, with("pivot", "-in", filepath.Join(dir, "missing.csv"), "-out", outPath)...)
	assert.ErrorContains(t, err, "failed to read input file")
	assert.NoFileExists(t, outPath)

	in := writeFile(t, dir, "in.csv", "a,b\n")
	_, err = runArgs(t, with("pivot", "-in", in, "-out", outPath, "-nb-rows", "-1")...)
	assert.ErrorContains(t, err, "invalid configuration")
}

func TestWindCommand(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "bron.csv", meteoFranceExport(200))
	pdf := filepath.Join(dir, "wind.pdf")

	out, err := runArgs(t, with("wind", "-in", in, "-out-dir", dir, "-suffix", "_bron", "-pdf", pdf)...)
	require.NoError(t, err)

	for _, name := range []string{"RDV_bron.png", "VV_histo_bron.png", "DV_histo_bron.png", "wind.pdf"} {
		path := filepath.Join(dir, name)
		assert.FileExists(t, path)
		assert.Contains(t, out, path)
	}
	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestWindCommandOptions(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "bron.csv", meteoFranceExport(100))

	out, err := runArgs(t, with("wind", "-in", in, "-out-dir", dir, "-raw", "-no-histo", "-format", "svg", "-classes", "0,2,4")...)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "RDV.svg")+"\n", out)
	assert.NoFileExists(t, filepath.Join(dir, "VV_histo.svg"))

	_, err = runArgs(t, with("wind", "-in", in, "-classes", "1,x")...)
	assert.ErrorContains(t, err, `invalid number "x"`)

	empty := writeFile(t, dir, "calm.csv", "POSTE;DATE;FF;DD\n1;2012010100;0,2;0\n")
	_, err = runArgs(t, with("wind", "-in", empty, "-out-dir", dir)...)
	assert.ErrorContains(t, err, "no wind observation left")
}

func TestRegressionAndQQPlotCommands(t *testing.T) {
	dir := t.TempDir()
	in := writeFile(t, dir, "pairs.csv", "NO2,NOX\n10,21\n20,41\n30,61\n40,81\n,5\n")

	png := filepath.Join(dir, "reg.png")
	out, err := runArgs(t, with("regression", "-in", in, "-x", "NO2", "-y", "NOX", "-out", png)...)
	require.NoError(t, err)
	assert.Contains(t, out, "NOX = 2 x + 1")
	assert.Contains(t, out, "(n = 4)")
	assert.FileExists(t, png)

	svg := filepath.Join(dir, "qq.svg")
	_, err = runArgs(t, with("qqplot", "-in", in, "-x", "NO2", "-y", "NOX", "-out", svg, "-interval", "0.2")...)
	require.NoError(t, err)
	data, err := os.ReadFile(svg)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<svg")

	_, err = runArgs(t, with("regression", "-in", in, "-x", "CO", "-y", "NOX", "-out", png)...)
	assert.ErrorContains(t, err, "unknown column")
}

func TestSeriesCommand(t *testing.T) {
	dir := t.TempDir()
	var b strings.Builder
	b.WriteString("DATE,NO2\n")
	start := time.Date(2012, 7, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 24; i++ {
		fmt.Fprintf(&b, "%s,%d\n", start.Add(time.Duration(i)*time.Hour).Format("2006010215"), 40+i*5)
	}
	in := writeFile(t, dir, "no2.csv", b.String())
	outPath := filepath.Join(dir, "no2.png")

	_, err := runArgs(t, with("series", "-in", in, "-column", "NO2", "-out", outPath)...)
	require.NoError(t, err)
	assert.FileExists(t, outPath)
}

func TestIndicesCommand(t *testing.T) {
	dir := t.TempDir()
	input := strings.Join([]string{
		"DATE,ATMO",
		"2011-01-01,3",
		"2011-01-02,6",
		"2011-01-03,8",
		"2012-01-01,2",
		"2012-01-02,4",
		"2012-01-03,",
	}, "\n") + "\n"
	in := writeFile(t, dir, "atmo.csv", input)
	outPath := filepath.Join(dir, "atmo.png")

	out, err := runArgs(t, with("indices", "-in", in, "-date-format", "%Y-%m-%d", "-out", outPath)...)
	require.NoError(t, err)
	assert.Equal(t, "2011: 1 1 1\n2012: 2 0 0\n", out)
	assert.FileExists(t, outPath)
}
