package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/lucasjlepore/swim-analyzer/config"
	"github.com/lucasjlepore/swim-analyzer/log"
	"github.com/lucasjlepore/swim-analyzer/pipeline"
)

type flagValues struct {
	configPath string
	inputDir   string
	outDir     string
	format     string
	timezone   string
	workers    int
	cacheDir   string
	maxSpeed   float64
	logLevel   string
	overwrite  bool
}

func newRootCmd() *cobra.Command {
	fv := &flagValues{}
	cmd := &cobra.Command{
		Use:   "swim_trends",
		Short: "Build a per-lap swim table and speed trends from a directory of FIT files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd.Flags(), fv)
			if err != nil {
				return err
			}
			return run(cmd, cfg)
		},
		SilenceUsage: true,
	}

	bindFlags(cmd.Flags(), fv)
	return cmd
}

func bindFlags(f *pflag.FlagSet, fv *flagValues) {
	f.StringVar(&fv.configPath, "config", "", "YAML config file")
	f.StringVar(&fv.inputDir, "in", "", "Directory containing .fit files")
	f.StringVar(&fv.outDir, "out", "", "Output directory")
	f.StringVar(&fv.format, "format", "", "Lap table format: csv|parquet")
	f.StringVar(&fv.timezone, "timezone", "", `Timezone for session dates: "device" or an IANA name`)
	f.IntVar(&fv.workers, "workers", 0, "Parallel file workers (0 = one per CPU)")
	f.StringVar(&fv.cacheDir, "cache-dir", "", "Directory for the extraction cache (empty disables it)")
	f.Float64Var(&fv.maxSpeed, "max-speed", 0, "Speeds above this many m/s are dropped from trend fits")
	f.StringVar(&fv.logLevel, "log-level", "", "Log level: debug|info|warn|error")
	f.BoolVar(&fv.overwrite, "overwrite", false, "Replace existing output files")
}

// loadConfig reads the config file and env, then applies only the flags the
// user actually set.
func loadConfig(flags *pflag.FlagSet, fv *flagValues) (*config.Config, error) {
	cfg, err := config.Load(fv.configPath)
	if err != nil {
		return nil, err
	}
	flags.Visit(func(f *pflag.Flag) {
		switch f.Name {
		case "in":
			cfg.Input.Dir = fv.inputDir
		case "out":
			cfg.Output.Dir = fv.outDir
		case "format":
			cfg.Output.Format = fv.format
		case "timezone":
			cfg.Processing.Timezone = fv.timezone
		case "workers":
			cfg.Processing.Workers = fv.workers
		case "cache-dir":
			cfg.Processing.CacheDir = fv.cacheDir
		case "max-speed":
			cfg.Trend.MaxSpeedMPS = fv.maxSpeed
		case "log-level":
			cfg.Log.Level = fv.logLevel
		case "overwrite":
			cfg.Output.Overwrite = fv.overwrite
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("flag validation: %w", err)
	}
	return cfg, nil
}

func run(cmd *cobra.Command, cfg *config.Config) error {
	logger, err := log.New(cfg.Log.Level)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	loc, err := cfg.Location()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := pipeline.Run(ctx, pipeline.Options{
		InputDir:    cfg.Input.Dir,
		OutDir:      cfg.Output.Dir,
		OutputName:  cfg.Output.Name,
		Format:      cfg.Output.Format,
		Location:    loc,
		Workers:     cfg.Processing.Workers,
		CacheDir:    cfg.Processing.CacheDir,
		MaxSpeedMPS: cfg.Trend.MaxSpeedMPS,
		Overwrite:   cfg.Output.Overwrite,
		Logger:      logger,
	})
	if err != nil {
		return fmt.Errorf("swim_trends failed: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "swim_trends complete\n")
	fmt.Fprintf(out, "Run id:          %s\n", result.RunID)
	fmt.Fprintf(out, "Files parsed:    %d (skipped %d)\n", result.FilesParsed, result.FilesSkipped)
	fmt.Fprintf(out, "Rows:            %d\n", result.Rows)
	fmt.Fprintf(out, "lap table:       %s\n", result.TablePath)
	fmt.Fprintf(out, "trend summary:   %s\n", result.TrendSummaryPath)
	fmt.Fprintf(out, "set summary:     %s\n", result.SetSummaryPath)
	fmt.Fprintf(out, "manifest.json:   %s\n", result.ManifestPath)
	return nil
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
