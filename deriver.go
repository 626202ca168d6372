package swimfit

// Derive segments lap records into sets, computes positional features and
// joins session metadata. Files keep the order in which they first appear in
// laps and each file keeps its recording order; nothing is re-sorted.
//
// Positions within a workout are measured against every recorded length of
// the file, idle and drill included. Positions within a set are measured
// against the lengths of that set that survive filtering, so the last kept
// length of every set sits at 1.
func Derive(laps []LapRecord, sessions []SessionRecord) []EnrichedLap {
	sessionByFile := make(map[string]SessionRecord, len(sessions))
	for _, s := range sessions {
		if _, dup := sessionByFile[s.SourceFile]; dup {
			continue
		}
		sessionByFile[s.SourceFile] = s
	}

	order, byFile := groupByFile(laps)
	out := make([]EnrichedLap, 0, len(laps))
	for _, file := range order {
		var session *SessionRecord
		if s, ok := sessionByFile[file]; ok {
			session = &s
		}
		out = append(out, deriveFile(file, byFile[file], session)...)
	}
	return out
}

func groupByFile(laps []LapRecord) ([]string, map[string][]LapRecord) {
	order := make([]string, 0)
	byFile := make(map[string][]LapRecord)
	for _, lap := range laps {
		if _, seen := byFile[lap.SourceFile]; !seen {
			order = append(order, lap.SourceFile)
		}
		byFile[lap.SourceFile] = append(byFile[lap.SourceFile], lap)
	}
	return order, byFile
}

func deriveFile(file string, laps []LapRecord, session *SessionRecord) []EnrichedLap {
	total := len(laps)
	if total == 0 {
		return nil
	}

	rows := make([]EnrichedLap, 0, total)
	setSize := make(map[int]int)
	setID := 1
	for i, lap := range laps {
		id := setID
		// The idle length closes the current set; the next set starts after it.
		if lap.LengthType == LengthTypeIdle {
			setID++
		}
		if !isSwum(lap) {
			continue
		}

		lapIndex := i + 1
		setSize[id]++
		rows = append(rows, EnrichedLap{
			SourceFile:       file,
			TotalElapsedTime: copyFloat(lap.TotalElapsedTime),
			SetID:            id,
			LapIndex:         lapIndex,
			LapInSet:         setSize[id],
			TotalLaps:        total,
			PosWithinWorkout: float64(lapIndex) / float64(total),
			SwimStroke:       lap.SwimStroke,
		})
	}

	for i := range rows {
		r := &rows[i]
		r.SetSize = setSize[r.SetID]
		r.PosWithinSet = float64(r.LapInSet) / float64(r.SetSize)
		if session != nil {
			r.SessionDate = session.Date
			if session.SessionNumber > 0 {
				n := session.SessionNumber
				r.SessionNumber = &n
			}
			r.PoolLength = copyFloat(session.PoolLength)
		}
	}
	return rows
}

func isSwum(lap LapRecord) bool {
	return lap.LengthType == LengthTypeActive && lap.SwimStroke != StrokeDrill
}

func copyFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	out := *v
	return &out
}
