package swimfit

import (
	"fmt"
	"math"
	"sort"

	"github.com/samber/lo"
)

// SetSummary describes one set of a workout as seen in the enriched table.
type SetSummary struct {
	SourceFile       string   `json:"source_file"`
	SetID            int      `json:"set_id"`
	FirstLapIndex    int      `json:"first_lap_index"`
	LastLapIndex     int      `json:"last_lap_index"`
	Lengths          int      `json:"lengths"`
	DominantStroke   string   `json:"dominant_stroke,omitempty"`
	Strokes          []string `json:"strokes,omitempty"`
	TotalTimeSeconds float64  `json:"total_time_seconds"`
	AvgLengthSeconds float64  `json:"avg_length_seconds"`
	DistanceM        float64  `json:"distance_m,omitempty"`
	AvgSpeedMps      float64  `json:"avg_speed_mps,omitempty"`
	Description      string   `json:"description"`
}

// SummarizeSets groups enriched rows by file and set id, in row order.
func SummarizeSets(rows []EnrichedLap) []SetSummary {
	type key struct {
		file string
		set  int
	}
	order := make([]key, 0)
	groups := make(map[key][]EnrichedLap)
	for _, r := range rows {
		k := key{file: r.SourceFile, set: r.SetID}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], r)
	}

	out := make([]SetSummary, 0, len(order))
	for _, k := range order {
		out = append(out, summarizeSet(k.file, k.set, groups[k]))
	}
	return out
}

func summarizeSet(file string, setID int, rows []EnrichedLap) SetSummary {
	s := SetSummary{
		SourceFile:    file,
		SetID:         setID,
		FirstLapIndex: rows[0].LapIndex,
		LastLapIndex:  rows[len(rows)-1].LapIndex,
		Lengths:       len(rows),
	}

	strokes := lo.Filter(lo.Map(rows, func(r EnrichedLap, _ int) string { return r.SwimStroke }),
		func(v string, _ int) bool { return v != "" })
	counts := lo.CountValues(strokes)
	s.Strokes = lo.Keys(counts)
	sort.Strings(s.Strokes)
	best := 0
	for _, name := range s.Strokes {
		if counts[name] > best {
			best = counts[name]
			s.DominantStroke = name
		}
	}

	timed := 0
	timedDistance := 0.0
	for _, r := range rows {
		if r.PoolLength != nil {
			s.DistanceM += *r.PoolLength
		}
		if r.TotalElapsedTime == nil || *r.TotalElapsedTime <= 0 {
			continue
		}
		s.TotalTimeSeconds += *r.TotalElapsedTime
		timed++
		if r.PoolLength != nil {
			timedDistance += *r.PoolLength
		}
	}
	s.AvgLengthSeconds = safeDiv(s.TotalTimeSeconds, float64(timed))
	s.AvgSpeedMps = safeDiv(timedDistance, s.TotalTimeSeconds)
	s.Description = describeSet(s, rows)
	return s
}

func describeSet(s SetSummary, rows []EnrichedLap) string {
	stroke := s.DominantStroke
	if stroke == "" {
		stroke = "unknown stroke"
	}
	if len(s.Strokes) > 1 {
		stroke = "mixed (" + stroke + " mostly)"
	}
	pool := ""
	if rows[0].PoolLength != nil {
		pool = fmt.Sprintf("%sm", trimFloat(roundToNearest(*rows[0].PoolLength, 0.01)))
	}
	if s.AvgLengthSeconds > 0 {
		return fmt.Sprintf("%dx%s %s @ %s/length", s.Lengths, pool, stroke, shortDuration(s.AvgLengthSeconds))
	}
	return fmt.Sprintf("%dx%s %s", s.Lengths, pool, stroke)
}

func shortDuration(seconds float64) string {
	s := int(math.Round(seconds))
	if s <= 0 {
		return "0s"
	}
	if s < 60 {
		return fmt.Sprintf("%ds", s)
	}
	return fmt.Sprintf("%dm%02ds", s/60, s%60)
}

func trimFloat(v float64) string {
	if v == math.Trunc(v) {
		return fmt.Sprintf("%.0f", v)
	}
	return fmt.Sprintf("%.2f", v)
}

func roundToNearest(v, step float64) float64 {
	if v == 0 || step <= 0 {
		return v
	}
	return math.Round(v/step) * step
}

func safeDiv(num, den float64) float64 {
	if den <= 0 {
		return 0
	}
	return num / den
}
