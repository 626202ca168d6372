// Package config loads swim_trends settings from YAML with SWIMFIT_ env
// overrides.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
	_ "time/tzdata"

	"gopkg.in/yaml.v3"
)

// TimezoneDevice dates sessions with the offset the watch recorded.
const TimezoneDevice = "device"

type Config struct {
	Input      InputConfig      `yaml:"input"`
	Output     OutputConfig     `yaml:"output"`
	Processing ProcessingConfig `yaml:"processing"`
	Trend      TrendConfig      `yaml:"trend"`
	Log        LogConfig        `yaml:"log"`
}

type InputConfig struct {
	Dir string `yaml:"dir"`
}

type OutputConfig struct {
	Dir       string `yaml:"dir"`
	Name      string `yaml:"name"`
	Format    string `yaml:"format"` // csv|parquet
	Overwrite bool   `yaml:"overwrite"`
}

type ProcessingConfig struct {
	Timezone string `yaml:"timezone"` // "device" or an IANA name
	Workers  int    `yaml:"workers"`  // 0 = one per CPU
	CacheDir string `yaml:"cache_dir"`
}

type TrendConfig struct {
	MaxSpeedMPS float64 `yaml:"max_speed_mps"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Input: InputConfig{Dir: "."},
		Output: OutputConfig{
			Dir:    "out",
			Name:   "swim_laps",
			Format: "csv",
		},
		Processing: ProcessingConfig{Timezone: TimezoneDevice},
		Trend:      TrendConfig{MaxSpeedMPS: 2.5},
		Log:        LogConfig{Level: "info"},
	}
}

// Load reads config from a YAML file on top of Default, then applies
// environment variable overrides. An empty path skips the file:
//
//	SWIMFIT_INPUT_DIR, SWIMFIT_OUT_DIR, SWIMFIT_FORMAT, SWIMFIT_TIMEZONE,
//	SWIMFIT_WORKERS, SWIMFIT_CACHE_DIR, SWIMFIT_MAX_SPEED_MPS,
//	SWIMFIT_LOG_LEVEL
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("SWIMFIT_INPUT_DIR"); v != "" {
		cfg.Input.Dir = v
	}
	if v := os.Getenv("SWIMFIT_OUT_DIR"); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv("SWIMFIT_FORMAT"); v != "" {
		cfg.Output.Format = v
	}
	if v := os.Getenv("SWIMFIT_TIMEZONE"); v != "" {
		cfg.Processing.Timezone = v
	}
	if v := os.Getenv("SWIMFIT_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Processing.Workers = n
		}
	}
	if v := os.Getenv("SWIMFIT_CACHE_DIR"); v != "" {
		cfg.Processing.CacheDir = v
	}
	if v := os.Getenv("SWIMFIT_MAX_SPEED_MPS"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trend.MaxSpeedMPS = f
		}
	}
	if v := os.Getenv("SWIMFIT_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
}

// Validate checks values that flags may also have changed.
func (c *Config) Validate() error {
	if c.Input.Dir == "" {
		return fmt.Errorf("input.dir is required")
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	if c.Output.Name == "" {
		return fmt.Errorf("output.name is required")
	}
	switch c.Output.Format {
	case "csv", "parquet":
	default:
		return fmt.Errorf("output.format must be csv or parquet, got %q", c.Output.Format)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Processing.Workers < 0 {
		return fmt.Errorf("processing.workers must be >= 0, got %d", c.Processing.Workers)
	}
	if !(c.Trend.MaxSpeedMPS > 0) {
		return fmt.Errorf("trend.max_speed_mps must be > 0, got %v", c.Trend.MaxSpeedMPS)
	}
	return nil
}

// Location resolves processing.timezone. A nil location means device time.
func (c *Config) Location() (*time.Location, error) {
	tz := c.Processing.Timezone
	if tz == "" || tz == TimezoneDevice {
		return nil, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("processing.timezone %q: %w", tz, err)
	}
	return loc, nil
}
