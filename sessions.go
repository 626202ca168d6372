package swimfit

import (
	"sort"
	"time"
)

const dateLayout = "2006-01-02"

// NumberSessions returns a copy of sessions with Date and SessionNumber set.
// Dates are taken from the session start in loc; a nil loc uses the device's
// own UTC offset when the file recorded one and UTC otherwise. Sessions that
// share a date are numbered from 1 by start time, ties broken by file name.
// Sessions without a usable start time get neither a date nor a number.
func NumberSessions(sessions []SessionRecord, loc *time.Location) []SessionRecord {
	out := make([]SessionRecord, len(sessions))
	copy(out, sessions)

	idx := make([]int, 0, len(out))
	for i := range out {
		out[i].Date = ""
		out[i].SessionNumber = 0
		if out[i].StartTime.IsZero() {
			continue
		}
		out[i].Date = localStart(out[i], loc).Format(dateLayout)
		idx = append(idx, i)
	}

	sort.SliceStable(idx, func(a, b int) bool {
		sa, sb := out[idx[a]], out[idx[b]]
		if sa.Date != sb.Date {
			return sa.Date < sb.Date
		}
		if !sa.StartTime.Equal(sb.StartTime) {
			return sa.StartTime.Before(sb.StartTime)
		}
		return sa.SourceFile < sb.SourceFile
	})

	prevDate := ""
	n := 0
	for _, i := range idx {
		if out[i].Date != prevDate {
			prevDate = out[i].Date
			n = 0
		}
		n++
		out[i].SessionNumber = n
	}
	return out
}

func localStart(s SessionRecord, loc *time.Location) time.Time {
	if loc != nil {
		return s.StartTime.In(loc)
	}
	if s.UTCOffsetSeconds != nil {
		return s.StartTime.In(time.FixedZone("device", *s.UTCOffsetSeconds))
	}
	return s.StartTime.UTC()
}
