package config

import (
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
input:
  dir: "/data/fit"
output:
  dir: "/data/out"
  format: "parquet"
  overwrite: true
processing:
  timezone: "Europe/Berlin"
  workers: 4
  cache_dir: "/data/cache"
trend:
  max_speed_mps: 2.2
log:
  level: "debug"
`

func writeTemp(t *testing.T, content string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "swim_trends.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadValid(t *testing.T) {
	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Input.Dir != "/data/fit" {
		t.Errorf("input.dir = %q, want /data/fit", cfg.Input.Dir)
	}
	if cfg.Output.Format != "parquet" || !cfg.Output.Overwrite {
		t.Errorf("output = %+v", cfg.Output)
	}
	// Unset keys keep their defaults.
	if cfg.Output.Name != "swim_laps" {
		t.Errorf("output.name = %q, want swim_laps", cfg.Output.Name)
	}
	if cfg.Processing.Workers != 4 || cfg.Processing.CacheDir != "/data/cache" {
		t.Errorf("processing = %+v", cfg.Processing)
	}
	if cfg.Trend.MaxSpeedMPS != 2.2 {
		t.Errorf("trend.max_speed_mps = %v, want 2.2", cfg.Trend.MaxSpeedMPS)
	}
	loc, err := cfg.Location()
	if err != nil || loc == nil || loc.String() != "Europe/Berlin" {
		t.Errorf("location = %v, err %v", loc, err)
	}
}

func TestLoadWithoutFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Format != "csv" || cfg.Processing.Timezone != TimezoneDevice || cfg.Trend.MaxSpeedMPS != 2.5 {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if loc, err := cfg.Location(); err != nil || loc != nil {
		t.Errorf("device timezone should resolve to nil location, got %v %v", loc, err)
	}
}

func TestEnvOverride(t *testing.T) {
	t.Setenv("SWIMFIT_OUT_DIR", "/tmp/override")
	t.Setenv("SWIMFIT_FORMAT", "csv")
	t.Setenv("SWIMFIT_WORKERS", "2")
	t.Setenv("SWIMFIT_MAX_SPEED_MPS", "1.9")
	t.Setenv("SWIMFIT_TIMEZONE", "UTC")

	cfg, err := Load(writeTemp(t, validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Output.Dir != "/tmp/override" || cfg.Output.Format != "csv" {
		t.Errorf("output = %+v", cfg.Output)
	}
	if cfg.Processing.Workers != 2 || cfg.Processing.Timezone != "UTC" {
		t.Errorf("processing = %+v", cfg.Processing)
	}
	if cfg.Trend.MaxSpeedMPS != 1.9 {
		t.Errorf("trend.max_speed_mps = %v, want 1.9", cfg.Trend.MaxSpeedMPS)
	}
	// Unchanged fields keep YAML values.
	if cfg.Input.Dir != "/data/fit" {
		t.Errorf("input.dir = %q, want /data/fit", cfg.Input.Dir)
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"bad format", "output:\n  format: xlsx\n"},
		{"bad timezone", "processing:\n  timezone: Mars/Olympus\n"},
		{"negative workers", "processing:\n  workers: -1\n"},
		{"zero max speed", "trend:\n  max_speed_mps: 0\n"},
		{"empty name", "output:\n  name: \"\"\n"},
		{"malformed yaml", "output: [\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Load(writeTemp(t, tc.yaml)); err == nil {
				t.Fatalf("expected error for %s", tc.name)
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
