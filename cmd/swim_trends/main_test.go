package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/pflag"

	"github.com/lucasjlepore/swim-analyzer/internal/fixture"
)

func TestFlagsOverrideConfigOnlyWhenSet(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "swim_trends.yaml")
	yaml := "input:\n  dir: /from/config\noutput:\n  dir: /out/config\n  format: parquet\ntrend:\n  max_speed_mps: 2.1\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	flags := pflag.NewFlagSet("swim_trends", pflag.ContinueOnError)
	fv := &flagValues{}
	bindFlags(flags, fv)
	if err := flags.Parse([]string{"--config", cfgPath, "--in", "/from/flag", "--max-speed", "2.4"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}
	cfg, err := loadConfig(flags, fv)
	if err != nil {
		t.Fatalf("loadConfig error: %v", err)
	}
	if cfg.Input.Dir != "/from/flag" || cfg.Trend.MaxSpeedMPS != 2.4 {
		t.Fatalf("flags not applied: %+v", cfg)
	}
	if cfg.Output.Dir != "/out/config" || cfg.Output.Format != "parquet" {
		t.Fatalf("unset flags overrode config: %+v", cfg.Output)
	}
}

func TestRootCommandRuns(t *testing.T) {
	in := t.TempDir()
	data := fixture.Build(t, fixture.Workout{PoolMeters: 25, Lengths: []fixture.Length{fixture.Free(30), fixture.Rest(10), fixture.Free(31)}})
	if err := os.WriteFile(filepath.Join(in, "swim.fit"), data, 0o644); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(t.TempDir(), "out")

	cmd := newRootCmd()
	var stdout bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetArgs([]string{"--in", in, "--out", out, "--timezone", "UTC", "--log-level", "error"})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if !strings.Contains(stdout.String(), "Rows:            2") {
		t.Fatalf("unexpected output:\n%s", stdout.String())
	}
	if _, err := os.Stat(filepath.Join(out, "swim_laps.csv")); err != nil {
		t.Fatalf("lap table missing: %v", err)
	}

	bad := newRootCmd()
	bad.SetOut(&bytes.Buffer{})
	bad.SetErr(&bytes.Buffer{})
	bad.SetArgs([]string{"--in", in, "--out", out, "--format", "xlsx"})
	if err := bad.Execute(); err == nil {
		t.Fatal("expected error for bad format flag")
	}
}
