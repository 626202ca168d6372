package swimfit

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// BuildSwimNotes renders a readable summary of one extracted workout. rows
// are the enriched rows derived from the same extract; loc is the location
// the session was numbered in (nil for device time).
func BuildSwimNotes(ex *Extract, rows []EnrichedLap, loc *time.Location) string {
	if ex == nil {
		return ""
	}

	var b strings.Builder
	fmt.Fprintf(&b, "File: %s\n", ex.SourceFile)

	if s := ex.Session; s != nil {
		fmt.Fprintf(&b, "Session: %s (%s)\n", s.Sport, s.SubSport)
		if !s.StartTime.IsZero() {
			fmt.Fprintf(&b, "Start: %s", localStart(*s, loc).Format("2006-01-02 15:04:05"))
			if s.SessionNumber > 0 {
				fmt.Fprintf(&b, " (session %d of the day)", s.SessionNumber)
			}
			b.WriteByte('\n')
		}
		if s.PoolLength != nil {
			fmt.Fprintf(&b, "Pool: %s\n", formatPool(*s.PoolLength, s.PoolLengthUnit))
		}
		if s.TotalDistanceM > 0 {
			fmt.Fprintf(&b, "Distance: %.0f m\n", s.TotalDistanceM)
		}
	} else {
		b.WriteString("Session: unavailable (no session message)\n")
	}

	idle, drill := 0, 0
	for _, lap := range ex.Laps {
		switch {
		case lap.LengthType == LengthTypeIdle:
			idle++
		case lap.SwimStroke == StrokeDrill:
			drill++
		}
	}
	fmt.Fprintf(
		&b,
		"Lengths: %d recorded | %d swum | %d drill | %d rest\n",
		len(ex.Laps),
		len(rows),
		drill,
		idle,
	)

	sets := SummarizeSets(rows)
	if len(sets) > 0 {
		b.WriteString("\nSets\n")
		for _, s := range sets {
			fmt.Fprintf(&b, "- Set %d: %s", s.SetID, s.Description)
			if s.AvgSpeedMps > 0 {
				fmt.Fprintf(&b, " (%s /100m)", pacePer100(s.AvgSpeedMps))
			}
			b.WriteByte('\n')
		}
		b.WriteString("\nPacing\n- ")
		b.WriteString(pacingAssessment(sets))
		b.WriteByte('\n')
	} else {
		b.WriteString("\nNo swum lengths were recorded.\n")
	}

	for _, w := range ex.Warnings {
		fmt.Fprintf(&b, "warning: %s\n", w)
	}
	return strings.TrimSpace(b.String())
}

// pacingAssessment compares average length time of the first and last
// multi-length sets.
func pacingAssessment(sets []SetSummary) string {
	var timed []SetSummary
	for _, s := range sets {
		if s.Lengths >= 2 && s.AvgLengthSeconds > 0 {
			timed = append(timed, s)
		}
	}
	if len(timed) < 2 {
		return "Not enough repeated sets to judge pacing across the workout."
	}
	first := timed[0].AvgLengthSeconds
	last := timed[len(timed)-1].AvgLengthSeconds
	change := ((last / first) - 1.0) * 100.0
	switch {
	case math.Abs(change) <= 3:
		return fmt.Sprintf("Length times held steady from first to last set (%+.1f%%).", change)
	case change > 0:
		return fmt.Sprintf("Length times slowed %.1f%% from first to last set; fatigue or easier closing work.", change)
	default:
		return fmt.Sprintf("Length times quickened %.1f%% from first to last set.", -change)
	}
}

func formatPool(meters float64, unit string) string {
	if unit == "statute" {
		return fmt.Sprintf("%s yd", trimFloat(roundToNearest(meters/0.9144, 0.01)))
	}
	return fmt.Sprintf("%s m", trimFloat(roundToNearest(meters, 0.01)))
}

func pacePer100(speedMps float64) string {
	if speedMps <= 0 {
		return "-"
	}
	secs := int(math.Round(100.0 / speedMps))
	return fmt.Sprintf("%d:%02d", secs/60, secs%60)
}
