// Package trend fits simple speed models to the enriched lap table.
package trend

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/samber/lo"
	"gonum.org/v1/gonum/stat"

	swimfit "github.com/lucasjlepore/swim-analyzer"
)

// DefaultMaxSpeedMPS is faster than any pool swimmer; laps above it are
// sensor glitches or missed wall touches.
const DefaultMaxSpeedMPS = 2.5

const (
	PredictorDays             = "days_since_first_session"
	PredictorPosWithinWorkout = "pos_within_workout"
	PredictorPosWithinSet     = "pos_within_set"
)

// Options tunes Estimate. A zero MaxSpeedMPS means DefaultMaxSpeedMPS.
type Options struct {
	MaxSpeedMPS float64
}

// SpeedRow is one lap usable as model input.
type SpeedRow struct {
	SourceFile       string
	SessionDate      string
	SwimStroke       string
	SpeedMPS         float64
	PosWithinWorkout float64
	PosWithinSet     float64
}

// Fit is one ordinary least squares fit of speed against a single predictor.
// Skipped explains why the coefficients are absent.
type Fit struct {
	Predictor string   `json:"predictor"`
	Stroke    string   `json:"stroke,omitempty"`
	N         int      `json:"n"`
	Intercept float64  `json:"intercept"`
	Slope     float64  `json:"slope"`
	RSquared  *float64 `json:"r_squared"`
	Skipped   string   `json:"skipped,omitempty"`
}

// Summary is the content of trend_summary.json: row accounting for the
// filtering step, the date range of dated rows and every fit.
type Summary struct {
	MaxSpeedMPS  float64 `json:"max_speed_mps"`
	InputRows    int     `json:"input_rows"`
	UsableRows   int     `json:"usable_rows"`
	MissingRows  int     `json:"missing_rows"`
	OutlierRows  int     `json:"outlier_rows"`
	FirstDate    string  `json:"first_date,omitempty"`
	LastDate     string  `json:"last_date,omitempty"`
	MeanSpeedMPS float64 `json:"mean_speed_mps"`
	Fits         []Fit   `json:"fits"`
	ByStroke     []Fit   `json:"by_stroke"`
}

// SpeedRows computes pool_length / total_elapsed_time per row. Rows missing
// either value, or with a non-positive time, are counted as missing; rows
// faster than maxSpeed are counted as outliers. Neither kind is returned.
func SpeedRows(rows []swimfit.EnrichedLap, maxSpeed float64) (out []SpeedRow, missing, outliers int) {
	if maxSpeed <= 0 {
		maxSpeed = DefaultMaxSpeedMPS
	}
	out = make([]SpeedRow, 0, len(rows))
	for _, r := range rows {
		if r.PoolLength == nil || r.TotalElapsedTime == nil || *r.TotalElapsedTime <= 0 || *r.PoolLength <= 0 {
			missing++
			continue
		}
		speed := *r.PoolLength / *r.TotalElapsedTime
		if speed > maxSpeed {
			outliers++
			continue
		}
		out = append(out, SpeedRow{
			SourceFile:       r.SourceFile,
			SessionDate:      r.SessionDate,
			SwimStroke:       r.SwimStroke,
			SpeedMPS:         speed,
			PosWithinWorkout: r.PosWithinWorkout,
			PosWithinSet:     r.PosWithinSet,
		})
	}
	return out, missing, outliers
}

// Estimate filters rows and fits speed against days since the first dated
// session, position within the workout and position within the set, then
// repeats the days fit per stroke.
func Estimate(rows []swimfit.EnrichedLap, opts Options) (*Summary, error) {
	maxSpeed := opts.MaxSpeedMPS
	if maxSpeed <= 0 {
		maxSpeed = DefaultMaxSpeedMPS
	}
	if math.IsNaN(maxSpeed) || math.IsInf(maxSpeed, 0) {
		return nil, fmt.Errorf("invalid max speed: %v", opts.MaxSpeedMPS)
	}

	usable, missing, outliers := SpeedRows(rows, maxSpeed)
	sum := &Summary{
		MaxSpeedMPS: maxSpeed,
		InputRows:   len(rows),
		UsableRows:  len(usable),
		MissingRows: missing,
		OutlierRows: outliers,
		Fits:        []Fit{},
		ByStroke:    []Fit{},
	}
	if len(usable) == 0 {
		return sum, nil
	}
	sum.MeanSpeedMPS = stat.Mean(lo.Map(usable, func(r SpeedRow, _ int) float64 { return r.SpeedMPS }), nil)

	dated, first, last, err := withDays(usable)
	if err != nil {
		return nil, err
	}
	if len(dated) > 0 {
		sum.FirstDate = first.Format(dateLayout)
		sum.LastDate = last.Format(dateLayout)
	}

	sum.Fits = append(sum.Fits,
		fitDays(PredictorDays, "", dated),
		fitLinear(PredictorPosWithinWorkout, "",
			lo.Map(usable, func(r SpeedRow, _ int) float64 { return r.PosWithinWorkout }),
			lo.Map(usable, func(r SpeedRow, _ int) float64 { return r.SpeedMPS })),
		fitLinear(PredictorPosWithinSet, "",
			lo.Map(usable, func(r SpeedRow, _ int) float64 { return r.PosWithinSet }),
			lo.Map(usable, func(r SpeedRow, _ int) float64 { return r.SpeedMPS })),
	)

	byStroke := lo.GroupBy(dated, func(d datedRow) string { return d.row.SwimStroke })
	strokes := lo.Keys(byStroke)
	sort.Strings(strokes)
	for _, stroke := range strokes {
		if stroke == "" {
			continue
		}
		sum.ByStroke = append(sum.ByStroke, fitDays(PredictorDays, stroke, byStroke[stroke]))
	}
	return sum, nil
}

const dateLayout = "2006-01-02"

type datedRow struct {
	row  SpeedRow
	days float64
}

// withDays keeps rows that have a session date and measures it in days from
// the earliest such date.
func withDays(rows []SpeedRow) ([]datedRow, time.Time, time.Time, error) {
	var first, last time.Time
	parsed := make([]time.Time, len(rows))
	for i, r := range rows {
		if r.SessionDate == "" {
			continue
		}
		d, err := time.Parse(dateLayout, r.SessionDate)
		if err != nil {
			return nil, first, last, fmt.Errorf("parse session date %q: %w", r.SessionDate, err)
		}
		parsed[i] = d
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if d.After(last) {
			last = d
		}
	}

	out := make([]datedRow, 0, len(rows))
	for i, r := range rows {
		if parsed[i].IsZero() {
			continue
		}
		out = append(out, datedRow{row: r, days: parsed[i].Sub(first).Hours() / 24})
	}
	return out, first, last, nil
}

func fitDays(predictor, stroke string, rows []datedRow) Fit {
	x := lo.Map(rows, func(d datedRow, _ int) float64 { return d.days })
	y := lo.Map(rows, func(d datedRow, _ int) float64 { return d.row.SpeedMPS })
	return fitLinear(predictor, stroke, x, y)
}

func fitLinear(predictor, stroke string, x, y []float64) Fit {
	f := Fit{Predictor: predictor, Stroke: stroke, N: len(x)}
	if len(x) < 2 {
		f.Skipped = "fewer than 2 rows"
		return f
	}
	if stat.Variance(x, nil) == 0 {
		f.Skipped = "predictor has zero variance"
		return f
	}
	f.Intercept, f.Slope = stat.LinearRegression(x, y, nil, false)
	if r2 := stat.RSquared(x, y, nil, f.Intercept, f.Slope); !math.IsNaN(r2) && !math.IsInf(r2, 0) {
		f.RSquared = &r2
	}
	return f
}
