package trend

import (
	"math"
	"testing"

	swimfit "github.com/lucasjlepore/swim-analyzer"
)

func lap(date, stroke string, pool, secs, posWorkout float64) swimfit.EnrichedLap {
	return swimfit.EnrichedLap{
		SourceFile:       date + ".fit",
		SessionDate:      date,
		PoolLength:       &pool,
		TotalElapsedTime: &secs,
		SwimStroke:       stroke,
		PosWithinWorkout: posWorkout,
		PosWithinSet:     1,
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestSpeedRowsDropsMissingAndOutliers(t *testing.T) {
	rows := []swimfit.EnrichedLap{
		lap("2024-01-01", "freestyle", 25, 25, 0.5),
		lap("2024-01-01", "freestyle", 25, 5, 1),
		{SourceFile: "x.fit", SessionDate: "2024-01-01"},
		lap("2024-01-01", "freestyle", 25, 0, 1),
	}
	got, missing, outliers := SpeedRows(rows, 2.5)
	if len(got) != 1 || missing != 2 || outliers != 1 {
		t.Fatalf("got %d rows, %d missing, %d outliers", len(got), missing, outliers)
	}
	if got[0].SpeedMPS != 1 {
		t.Fatalf("speed = %v, want 1", got[0].SpeedMPS)
	}

	// A higher cap keeps the fast lap.
	if got, _, _ := SpeedRows(rows, 10); len(got) != 2 {
		t.Fatalf("expected 2 rows under a 10 m/s cap, got %d", len(got))
	}
}

func TestEstimateDaysTrend(t *testing.T) {
	rows := []swimfit.EnrichedLap{
		lap("2024-01-01", "freestyle", 25, 25, 0.5),
		lap("2024-01-01", "freestyle", 25, 25, 1),
		lap("2024-01-11", "freestyle", 25, 20, 0.5),
		lap("2024-01-11", "freestyle", 25, 20, 1),
		lap("2024-01-11", "backstroke", 25, 5, 1),
	}
	sum, err := Estimate(rows, Options{})
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}
	if sum.MaxSpeedMPS != DefaultMaxSpeedMPS || sum.UsableRows != 4 || sum.OutlierRows != 1 {
		t.Fatalf("unexpected counts: %+v", sum)
	}
	if sum.FirstDate != "2024-01-01" || sum.LastDate != "2024-01-11" {
		t.Fatalf("date range %s..%s", sum.FirstDate, sum.LastDate)
	}
	if len(sum.Fits) != 3 {
		t.Fatalf("expected 3 fits, got %d", len(sum.Fits))
	}

	days := sum.Fits[0]
	if days.Predictor != PredictorDays || days.N != 4 || days.Skipped != "" {
		t.Fatalf("unexpected days fit: %+v", days)
	}
	if !near(days.Intercept, 1) || !near(days.Slope, 0.025) {
		t.Fatalf("days fit intercept %v slope %v, want 1 and 0.025", days.Intercept, days.Slope)
	}
	if days.RSquared == nil || !near(*days.RSquared, 1) {
		t.Fatalf("days fit r2 = %v, want 1", days.RSquared)
	}

	if workout := sum.Fits[1]; workout.Skipped != "" || !near(workout.Slope, 0) {
		t.Fatalf("pos_within_workout fit: %+v", workout)
	}
	if set := sum.Fits[2]; set.Skipped == "" {
		t.Fatalf("expected constant pos_within_set fit to be skipped: %+v", set)
	}

	// The backstroke lap was an outlier, leaving freestyle as the only stroke.
	if len(sum.ByStroke) != 1 || sum.ByStroke[0].Stroke != "freestyle" || !near(sum.ByStroke[0].Slope, 0.025) {
		t.Fatalf("unexpected per-stroke fits: %+v", sum.ByStroke)
	}
}

func TestEstimateSparseInput(t *testing.T) {
	sum, err := Estimate(nil, Options{MaxSpeedMPS: 3})
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}
	if sum.UsableRows != 0 || len(sum.Fits) != 0 {
		t.Fatalf("expected empty summary, got %+v", sum)
	}

	one := []swimfit.EnrichedLap{lap("2024-02-01", "freestyle", 25, 25, 1)}
	sum, err = Estimate(one, Options{})
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}
	for _, f := range sum.Fits {
		if f.Skipped == "" {
			t.Fatalf("single-row fit should be skipped: %+v", f)
		}
	}

	undated := []swimfit.EnrichedLap{lap("", "freestyle", 25, 25, 0.5), lap("", "freestyle", 25, 20, 1)}
	sum, err = Estimate(undated, Options{})
	if err != nil {
		t.Fatalf("Estimate error: %v", err)
	}
	if sum.Fits[0].N != 0 || sum.Fits[0].Skipped == "" || sum.Fits[1].Skipped != "" {
		t.Fatalf("undated rows should only feed position fits: %+v", sum.Fits)
	}
}

func TestEstimateRejectsBadDate(t *testing.T) {
	if _, err := Estimate([]swimfit.EnrichedLap{lap("04/03/2024", "freestyle", 25, 25, 1)}, Options{}); err == nil {
		t.Fatal("expected error for malformed session date")
	}
}
