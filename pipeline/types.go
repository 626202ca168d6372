package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/lucasjlepore/swim-analyzer/trend"
)

// ManifestFormatVersion is bumped when manifest.json changes shape.
const ManifestFormatVersion = "1"

const (
	FormatCSV     = "csv"
	FormatParquet = "parquet"

	DefaultOutputName = "swim_laps"

	TrendSummaryName = "trend_summary.json"
	SetSummaryName   = "set_summary.json"
	ManifestName     = "manifest.json"
)

// Options configures one batch run over a directory of FIT files.
type Options struct {
	InputDir   string
	OutDir     string
	OutputName string // table file name without extension
	Format     string // csv|parquet

	// Location dates sessions. Nil uses the device's recorded offset.
	Location *time.Location

	Workers     int    // 0 = runtime.NumCPU()
	CacheDir    string // empty disables the extraction cache
	MaxSpeedMPS float64
	Overwrite   bool
	Logger      *zap.Logger
}

// Result returns generated output paths and run counts.
type Result struct {
	RunID            string `json:"run_id"`
	OutputDir        string `json:"output_dir"`
	TablePath        string `json:"table_path"`
	TrendSummaryPath string `json:"trend_summary_path"`
	SetSummaryPath   string `json:"set_summary_path"`
	ManifestPath     string `json:"manifest_path"`
	FilesParsed      int    `json:"files_parsed"`
	FilesSkipped     int    `json:"files_skipped"`
	Rows             int    `json:"rows"`
}

const (
	StatusParsed  = "parsed"
	StatusSkipped = "skipped"
)

// FileStatus records what happened to one input file.
type FileStatus struct {
	File      string   `json:"file"`
	Status    string   `json:"status"` // parsed|skipped
	Error     string   `json:"error,omitempty"`
	SizeBytes int64    `json:"size_bytes"`
	SHA256    string   `json:"sha256,omitempty"`
	Cached    bool     `json:"cached"`
	Laps      int      `json:"laps"`
	Rows      int      `json:"rows"`
	Session   bool     `json:"session"`
	Warnings  []string `json:"warnings,omitempty"`
}

// Manifest describes one run and its outputs.
type Manifest struct {
	FormatVersion    string       `json:"format_version"`
	RunID            string       `json:"run_id"`
	GeneratedAt      time.Time    `json:"generated_at"`
	InputDir         string       `json:"input_dir"`
	Format           string       `json:"format"`
	Timezone         string       `json:"timezone"`
	FilesTotal       int          `json:"files_total"`
	FilesParsed      int          `json:"files_parsed"`
	FilesSkipped     int          `json:"files_skipped"`
	CacheHits        int          `json:"cache_hits"`
	LapsRead         int          `json:"laps_read"`
	RowsWritten      int          `json:"rows_written"`
	TablePath        string       `json:"table_path"`
	TrendSummaryPath string       `json:"trend_summary_path"`
	SetSummaryPath   string       `json:"set_summary_path"`
	Files            []FileStatus `json:"files"`
	Trend            TrendBrief   `json:"trend"`
}

// TrendBrief repeats the headline numbers of trend_summary.json.
type TrendBrief struct {
	UsableRows  int      `json:"usable_rows"`
	OutlierRows int      `json:"outlier_rows"`
	MaxSpeedMPS float64  `json:"max_speed_mps"`
	DaysSlope   *float64 `json:"days_slope_mps_per_day,omitempty"`
}

func briefOf(s *trend.Summary) TrendBrief {
	b := TrendBrief{UsableRows: s.UsableRows, OutlierRows: s.OutlierRows, MaxSpeedMPS: s.MaxSpeedMPS}
	for _, f := range s.Fits {
		if f.Predictor == trend.PredictorDays && f.Skipped == "" {
			slope := f.Slope
			b.DaysSlope = &slope
		}
	}
	return b
}
