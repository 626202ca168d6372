package pipeline

import (
	"encoding/csv"
	"os"
	"strconv"

	swimfit "github.com/lucasjlepore/swim-analyzer"
)

// LapColumns is the column order of the enriched lap table.
var LapColumns = []string{
	"session_date", "session_number", "pool_length", "total_elapsed_time", "set_id",
	"lap_index", "lap_in_set", "pos_within_workout", "pos_within_set", "swim_stroke",
}

// writeLapCSV writes rows with null fields as empty cells.
func writeLapCSV(path string, rows []swimfit.EnrichedLap) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(LapColumns); err != nil {
		return err
	}
	for _, r := range rows {
		row := []string{
			r.SessionDate,
			formatIntPtr(r.SessionNumber),
			formatFloatPtr(r.PoolLength),
			formatFloatPtr(r.TotalElapsedTime),
			strconv.Itoa(r.SetID),
			strconv.Itoa(r.LapIndex),
			strconv.Itoa(r.LapInSet),
			formatFloat(r.PosWithinWorkout),
			formatFloat(r.PosWithinSet),
			r.SwimStroke,
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 6, 64)
}

func formatFloatPtr(v *float64) string {
	if v == nil {
		return ""
	}
	return formatFloat(*v)
}

func formatIntPtr(v *int) string {
	if v == nil {
		return ""
	}
	return strconv.Itoa(*v)
}
