// Package config loads the settings of the pyair command from YAML.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/user/pyair_go/internal/observability"
)

// ErrInvalidConfig is returned by Validate.
var ErrInvalidConfig = errors.New("invalid configuration")

// envVarPattern matches ${VAR} and ${VAR:-default} patterns.
var envVarPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

// Config is the full configuration of the tool.
type Config struct {
	Log   observability.LogConfig `yaml:"log"`
	Pivot PivotConfig             `yaml:"pivot"`
	Meteo MeteoConfig             `yaml:"meteo"`
	Wind  WindConfig              `yaml:"wind"`
	Plot  PlotConfig              `yaml:"plot"`
}

// PivotConfig holds the default pivot dialect.
type PivotConfig struct {
	NbCols int    `yaml:"nb_cols"`
	NbRows int    `yaml:"nb_rows"`
	Sep    string `yaml:"sep"`
}

// MeteoConfig describes Météo-France exports.
type MeteoConfig struct {
	Sep        string `yaml:"sep"`
	Decimal    string `yaml:"decimal"`
	DateColumn string `yaml:"date_column"`
	DateFormat string `yaml:"date_format"`
	Speed      string `yaml:"speed_column"`
	Direction  string `yaml:"direction_column"`
}

// WindConfig drives the wind rose computation.
type WindConfig struct {
	SpeedClasses []float64 `yaml:"speed_classes"`
	Sectors      int       `yaml:"sectors"`
	CalmLimit    float64   `yaml:"calm_limit"`
	Normed       bool      `yaml:"normed"`
	Histograms   bool      `yaml:"histograms"`
}

// PlotConfig holds output settings shared by every chart.
type PlotConfig struct {
	Format string `yaml:"format"`
	Size   string `yaml:"size"`
}

// Default returns the built in configuration.
func Default() *Config {
	return &Config{
		Log:   observability.DefaultLogConfig(),
		Pivot: PivotConfig{NbCols: 1, NbRows: 1, Sep: ","},
		Meteo: MeteoConfig{
			Sep:        ";",
			Decimal:    ",",
			DateColumn: "DATE",
			DateFormat: "%Y%m%d%H",
			Speed:      "FF",
			Direction:  "DD",
		},
		Wind: WindConfig{
			SpeedClasses: []float64{1, 2, 3, 4, 5, 6},
			Sectors:      16,
			CalmLimit:    1,
			Normed:       true,
			Histograms:   true,
		},
		Plot: PlotConfig{Format: "png"},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return parse(data)
}

// LoadFromReader reads a YAML configuration from r over the defaults.
func LoadFromReader(r io.Reader) (*Config, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal([]byte(substituteEnvVars(string(data))), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return cfg, nil
}

// substituteEnvVars replaces ${VAR} and ${VAR:-default} with environment values.
func substituteEnvVars(content string) string {
	return envVarPattern.ReplaceAllStringFunc(content, func(match string) string {
		sub := envVarPattern.FindStringSubmatch(match)
		if value, ok := os.LookupEnv(sub[1]); ok {
			return value
		}
		return sub[2]
	})
}

// Validate checks the configuration and reports every problem at once.
func (c *Config) Validate() error {
	var problems []string
	if c.Pivot.NbCols < 0 || c.Pivot.NbRows < 0 {
		problems = append(problems, "pivot.nb_cols and pivot.nb_rows must be >= 0")
	}
	if c.Pivot.Sep == "" {
		problems = append(problems, "pivot.sep must not be empty")
	}
	if len([]rune(c.Meteo.Sep)) != 1 {
		problems = append(problems, "meteo.sep must be a single character")
	}
	if len(c.Wind.SpeedClasses) == 0 {
		problems = append(problems, "wind.speed_classes must not be empty")
	} else if !sort.Float64sAreSorted(c.Wind.SpeedClasses) {
		problems = append(problems, "wind.speed_classes must be increasing")
	}
	if c.Wind.Sectors <= 0 {
		problems = append(problems, "wind.sectors must be positive")
	}
	if c.Wind.CalmLimit < 0 {
		problems = append(problems, "wind.calm_limit must be >= 0")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
