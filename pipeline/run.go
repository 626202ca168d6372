package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	swimfit "github.com/lucasjlepore/swim-analyzer"
	"github.com/lucasjlepore/swim-analyzer/extractcache"
	"github.com/lucasjlepore/swim-analyzer/log"
	"github.com/lucasjlepore/swim-analyzer/trend"
)

// Run extracts every FIT file in opts.InputDir, derives the enriched lap
// table and writes it with the trend summary, set summary and manifest.
// Files that cannot be read or decoded are skipped and listed in the
// manifest; only problems with the directories or the outputs are fatal.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.InputDir) == "" {
		return nil, fmt.Errorf("input directory is required")
	}
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("output directory is required")
	}
	format := strings.ToLower(strings.TrimSpace(opts.Format))
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatParquet {
		return nil, fmt.Errorf("unsupported format %q (expected csv|parquet)", format)
	}
	name := strings.TrimSpace(opts.OutputName)
	if name == "" {
		name = DefaultOutputName
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	logger := log.OrNop(opts.Logger)

	files, err := listFitFiles(opts.InputDir)
	if err != nil {
		return nil, err
	}

	tablePath := filepath.Join(opts.OutDir, name+"."+format)
	trendPath := filepath.Join(opts.OutDir, TrendSummaryName)
	setsPath := filepath.Join(opts.OutDir, SetSummaryName)
	manifestPath := filepath.Join(opts.OutDir, ManifestName)
	if err := ensureOutputDir(opts.OutDir, opts.Overwrite, tablePath, trendPath, setsPath, manifestPath); err != nil {
		return nil, err
	}

	var cache *extractcache.Cache
	if opts.CacheDir != "" {
		cache, err = extractcache.Open(opts.CacheDir)
		if err != nil {
			return nil, fmt.Errorf("open extraction cache: %w", err)
		}
		defer cache.Close()
	}

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))
	logger.Info("starting run",
		zap.String("input_dir", opts.InputDir),
		zap.Int("files", len(files)),
		zap.Int("workers", workers),
		zap.String("format", format),
	)

	outcomes, err := extractAll(ctx, files, workers, cache, logger)
	if err != nil {
		return nil, err
	}

	var (
		laps     []swimfit.LapRecord
		sessions []swimfit.SessionRecord
		statuses = make([]FileStatus, 0, len(outcomes))
	)
	manifest := Manifest{
		FormatVersion: ManifestFormatVersion,
		RunID:         runID,
		GeneratedAt:   time.Now().UTC(),
		InputDir:      opts.InputDir,
		Format:        format,
		Timezone:      timezoneLabel(opts.Location),
		FilesTotal:    len(files),
	}
	for _, o := range outcomes {
		statuses = append(statuses, o.status)
		if o.extract == nil {
			manifest.FilesSkipped++
			continue
		}
		manifest.FilesParsed++
		if o.status.Cached {
			manifest.CacheHits++
		}
		laps = append(laps, o.extract.Laps...)
		if o.extract.Session != nil {
			sessions = append(sessions, *o.extract.Session)
		}
	}
	manifest.LapsRead = len(laps)

	rows := swimfit.Derive(laps, swimfit.NumberSessions(sessions, opts.Location))
	perFile := make(map[string]int)
	for _, r := range rows {
		perFile[r.SourceFile]++
	}
	for i := range statuses {
		if statuses[i].Status == StatusParsed {
			statuses[i].Rows = perFile[statuses[i].File]
		}
	}
	manifest.Files = statuses
	manifest.RowsWritten = len(rows)

	switch format {
	case FormatCSV:
		if err := writeLapCSV(tablePath, rows); err != nil {
			return nil, fmt.Errorf("write lap csv: %w", err)
		}
	case FormatParquet:
		if err := writeLapParquet(tablePath, rows); err != nil {
			return nil, fmt.Errorf("write lap parquet: %w", err)
		}
	}

	summary, err := trend.Estimate(rows, trend.Options{MaxSpeedMPS: opts.MaxSpeedMPS})
	if err != nil {
		return nil, fmt.Errorf("estimate trends: %w", err)
	}
	if err := writeJSON(trendPath, summary); err != nil {
		return nil, fmt.Errorf("write %s: %w", TrendSummaryName, err)
	}
	if err := writeJSON(setsPath, swimfit.SummarizeSets(rows)); err != nil {
		return nil, fmt.Errorf("write %s: %w", SetSummaryName, err)
	}

	manifest.TablePath = tablePath
	manifest.TrendSummaryPath = trendPath
	manifest.SetSummaryPath = setsPath
	manifest.Trend = briefOf(summary)
	if err := writeJSON(manifestPath, manifest); err != nil {
		return nil, fmt.Errorf("write %s: %w", ManifestName, err)
	}

	logger.Info("run complete",
		zap.Int("parsed", manifest.FilesParsed),
		zap.Int("skipped", manifest.FilesSkipped),
		zap.Int("cache_hits", manifest.CacheHits),
		zap.Int("rows", len(rows)),
	)

	return &Result{
		RunID:            runID,
		OutputDir:        opts.OutDir,
		TablePath:        tablePath,
		TrendSummaryPath: trendPath,
		SetSummaryPath:   setsPath,
		ManifestPath:     manifestPath,
		FilesParsed:      manifest.FilesParsed,
		FilesSkipped:     manifest.FilesSkipped,
		Rows:             len(rows),
	}, nil
}

// listFitFiles returns the .fit files directly inside dir, sorted by name.
func listFitFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read input directory: %w", err)
	}
	files := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".fit") {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	return files, nil
}

type outcome struct {
	extract *swimfit.Extract
	status  FileStatus
}

// extractAll decodes files on a bounded pool. outcomes[i] always belongs to
// files[i], whatever order the workers finish in.
func extractAll(ctx context.Context, files []string, workers int, cache *extractcache.Cache, logger *zap.Logger) ([]outcome, error) {
	outcomes := make([]outcome, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, path := range files {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = extractOne(path, cache, logger)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("extract files: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("extract files: %w", err)
	}
	return outcomes, nil
}

func extractOne(path string, cache *extractcache.Cache, logger *zap.Logger) outcome {
	name := filepath.Base(path)
	status := FileStatus{File: name, Status: StatusSkipped}
	skip := func(err error) outcome {
		status.Error = err.Error()
		logger.Warn("skipping file", zap.String("file", name), zap.Error(err))
		return outcome{status: status}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return skip(fmt.Errorf("read FIT file: %w", err))
	}
	status.SizeBytes = int64(len(data))
	status.SHA256 = extractcache.HashBytes(data)

	var ex *swimfit.Extract
	if cache != nil {
		cached, ok, err := cache.Get(path, status.SizeBytes, status.SHA256)
		if err != nil {
			logger.Warn("cache lookup failed", zap.String("file", name), zap.Error(err))
		}
		if ok {
			ex = cached
			status.Cached = true
		}
	}
	if ex == nil {
		ex, err = swimfit.ExtractBytes(name, data)
		if err != nil {
			return skip(err)
		}
		if cache != nil {
			if err := cache.Put(path, status.SizeBytes, status.SHA256, ex); err != nil {
				logger.Warn("cache store failed", zap.String("file", name), zap.Error(err))
			}
		}
	}

	for _, w := range ex.Warnings {
		logger.Debug("extract warning", zap.String("file", name), zap.String("warning", w))
	}
	status.Status = StatusParsed
	status.Laps = len(ex.Laps)
	status.Session = ex.Session != nil
	status.Warnings = ex.Warnings
	return outcome{extract: ex, status: status}
}

// ensureOutputDir creates dir and refuses to replace existing artifacts
// unless overwrite is set.
func ensureOutputDir(dir string, overwrite bool, artifacts ...string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if overwrite {
		return nil
	}
	for _, p := range artifacts {
		if _, err := os.Stat(p); err == nil {
			return fmt.Errorf("output file exists: %s (set overwrite=true to allow)", p)
		}
	}
	return nil
}

func timezoneLabel(loc *time.Location) string {
	if loc == nil {
		return "device"
	}
	return loc.String()
}

func writeJSON(path string, v any) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
