package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.Equal(t, PivotConfig{NbCols: 1, NbRows: 1, Sep: ","}, cfg.Pivot)
	assert.Equal(t, "%Y%m%d%H", cfg.Meteo.DateFormat)
	assert.Equal(t, 16, cfg.Wind.Sectors)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromReader(t *testing.T) {
	t.Setenv("PYAIR_SEP", ";")
	input := `
log:
  level: debug
pivot:
  nb_rows: 2
  sep: "${PYAIR_SEP}"
wind:
  speed_classes: [0, 2, 4]
  calm_limit: ${PYAIR_CALM:-0.5}
`
	cfg, err := LoadFromReader(strings.NewReader(input))
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format, "unset keys keep their default")
	assert.Equal(t, 1, cfg.Pivot.NbCols)
	assert.Equal(t, 2, cfg.Pivot.NbRows)
	assert.Equal(t, ";", cfg.Pivot.Sep)
	assert.Equal(t, []float64{0, 2, 4}, cfg.Wind.SpeedClasses)
	assert.Equal(t, 0.5, cfg.Wind.CalmLimit)
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	path := filepath.Join(t.TempDir(), "pyair.yaml")
	require.NoError(t, os.WriteFile(path, []byte("plot:\n  format: svg\n"), 0o644))
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, "svg", cfg.Plot.Format)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config file")

	_, err = LoadFromReader(strings.NewReader("pivot: [unclosed"))
	assert.ErrorContains(t, err, "failed to parse YAML")
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{name: "negative rows", mutate: func(c *Config) { c.Pivot.NbRows = -1 }, want: "nb_rows"},
		{name: "empty separator", mutate: func(c *Config) { c.Pivot.Sep = "" }, want: "pivot.sep"},
		{name: "long meteo separator", mutate: func(c *Config) { c.Meteo.Sep = ";;" }, want: "meteo.sep"},
		{name: "no classes", mutate: func(c *Config) { c.Wind.SpeedClasses = nil }, want: "speed_classes"},
		{name: "unsorted classes", mutate: func(c *Config) { c.Wind.SpeedClasses = []float64{3, 1} }, want: "increasing"},
		{name: "no sectors", mutate: func(c *Config) { c.Wind.Sectors = 0 }, want: "sectors"},
		{name: "negative calm", mutate: func(c *Config) { c.Wind.CalmLimit = -1 }, want: "calm_limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			assert.ErrorIs(t, err, ErrInvalidConfig)
			assert.ErrorContains(t, err, tt.want)
		})
	}
}
