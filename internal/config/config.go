// Package config loads sortbias settings from a YAML file, a .env file and
// SORTBIAS_* environment variables, in that order of precedence (later wins).
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/alexshd/sortbias"
)

// ErrInvalidConfig wraps every load or validation failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SORTBIAS_"

// Config represents the complete CLI configuration.
type Config struct {
	LogLevel   string           `yaml:"log_level" validate:"oneof=debug info warn error"`
	Table      TableConfig      `yaml:"table"`
	Estimator  EstimatorConfig  `yaml:"estimator"`
	Simulation SimulationConfig `yaml:"simulation"`
	Report     ReportConfig     `yaml:"report"`
}

// TableConfig holds the decision-table grid.
type TableConfig struct {
	Thresholds []float64 `yaml:"thresholds" validate:"required,min=1,dive,gt=0.5,lt=1"`
	BitWidths  []int     `yaml:"bit_widths" validate:"required,min=1,dive,min=1,max=64"`
	Log2N      []float64 `yaml:"log2n" validate:"required,min=1,dive,gte=0"`
	CheckPCrit float64   `yaml:"check_pcrit" validate:"gt=0.5,lt=1"`
}

// EstimatorConfig holds bit-width estimator settings.
type EstimatorConfig struct {
	SampleSize int   `yaml:"sample_size" validate:"min=2"`
	Rounds     int   `yaml:"rounds" validate:"min=1"`
	Seed       int64 `yaml:"seed"`
}

// SimulationConfig holds Monte Carlo settings.
type SimulationConfig struct {
	K        int   `yaml:"k" validate:"min=2"`
	BitWidth int   `yaml:"bit_width" validate:"min=1,max=64"`
	Trials   int   `yaml:"trials" validate:"min=1"`
	Workers  int   `yaml:"workers" validate:"min=1"`
	Seed     int64 `yaml:"seed"`
}

// ReportConfig holds report rendering settings.
type ReportConfig struct {
	Format string `yaml:"format" validate:"oneof=markdown html"`
	Output string `yaml:"output"` // Empty writes to stdout
}

// Default returns the built-in configuration.
func Default() *Config {
	est := sortbias.DefaultEstimatorConfig()
	sim := sortbias.DefaultSimulationConfig()
	rep := sortbias.DefaultReport()

	return &Config{
		LogLevel: "info",
		Table: TableConfig{
			Thresholds: append([]float64(nil), sortbias.DefaultThresholds...),
			BitWidths:  append([]int(nil), sortbias.StandardBitWidths...),
			Log2N:      append([]float64(nil), rep.Log2Ns...),
			CheckPCrit: rep.CheckPCrit,
		},
		Estimator: EstimatorConfig{
			SampleSize: est.SampleSize,
			Rounds:     est.Rounds,
			Seed:       1,
		},
		Simulation: SimulationConfig{
			K:        sim.K,
			BitWidth: sim.BitWidth,
			Trials:   sim.Trials,
			Workers:  sim.Workers,
			Seed:     sim.Seed,
		},
		Report: ReportConfig{
			Format: "markdown",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (skipped when
// empty), a .env file in the working directory if present, and SORTBIAS_*
// environment variables, then validates it.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: parsing %s: %v", ErrInvalidConfig, path, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: loading .env: %v", ErrInvalidConfig, err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks struct constraints.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}

// applyEnv overrides fields from the environment. Every malformed variable
// is reported, not just the first.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	var result *multierror.Error

	get := func(name string) (string, bool) {
		v, ok := lookup(EnvPrefix + name)
		return strings.TrimSpace(v), ok && strings.TrimSpace(v) != ""
	}
	fail := func(name string, err error) {
		result = multierror.Append(result, fmt.Errorf("%w: %s%s: %v", ErrInvalidConfig, EnvPrefix, name, err))
	}

	if v, ok := get("LOG_LEVEL"); ok {
		c.LogLevel = strings.ToLower(v)
	}
	if v, ok := get("THRESHOLDS"); ok {
		if fs, err := parseFloats(v); err != nil {
			fail("THRESHOLDS", err)
		} else {
			c.Table.Thresholds = fs
		}
	}
	if v, ok := get("BIT_WIDTHS"); ok {
		if is, err := parseInts(v); err != nil {
			fail("BIT_WIDTHS", err)
		} else {
			c.Table.BitWidths = is
		}
	}
	if v, ok := get("LOG2N"); ok {
		if fs, err := parseFloats(v); err != nil {
			fail("LOG2N", err)
		} else {
			c.Table.Log2N = fs
		}
	}
	if v, ok := get("SEED"); ok {
		if seed, err := strconv.ParseInt(v, 10, 64); err != nil {
			fail("SEED", err)
		} else {
			c.Estimator.Seed = seed
			c.Simulation.Seed = seed
		}
	}
	if v, ok := get("WORKERS"); ok {
		if n, err := strconv.Atoi(v); err != nil {
			fail("WORKERS", err)
		} else {
			c.Simulation.Workers = n
		}
	}
	if v, ok := get("REPORT_FORMAT"); ok {
		c.Report.Format = strings.ToLower(v)
	}
	if v, ok := get("REPORT_OUTPUT"); ok {
		c.Report.Output = v
	}

	return result.ErrorOrNil()
}

// SlogLevel maps LogLevel to a slog level.
func (c *Config) SlogLevel() slog.Level {
	switch c.LogLevel {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// EstimatorSettings converts to the library estimator configuration.
func (c *Config) EstimatorSettings(logger *slog.Logger) sortbias.EstimatorConfig {
	est := sortbias.DefaultEstimatorConfig()
	est.SampleSize = c.Estimator.SampleSize
	est.Rounds = c.Estimator.Rounds
	est.Logger = logger
	return est
}

// SimulationSettings converts to the library simulation configuration.
func (c *Config) SimulationSettings(logger *slog.Logger) sortbias.SimulationConfig {
	return sortbias.SimulationConfig{
		K:        c.Simulation.K,
		BitWidth: c.Simulation.BitWidth,
		Trials:   c.Simulation.Trials,
		Workers:  c.Simulation.Workers,
		Seed:     c.Simulation.Seed,
		Logger:   logger,
	}
}

// ReportSettings returns a report over the configured grid.
func (c *Config) ReportSettings() sortbias.Report {
	r := sortbias.DefaultReport()
	r.Thresholds = c.Table.Thresholds
	r.BitWidths = c.Table.BitWidths
	r.Log2Ns = c.Table.Log2N
	r.CheckPCrit = c.Table.CheckPCrit
	return r
}

func parseFloats(s string) ([]float64, error) {
	parts := strings.Split(s, ",")
	out := make([]float64, 0, len(parts))
	for _, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}

func parseInts(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}
