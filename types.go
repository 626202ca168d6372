package swimfit

import "time"

// LengthType tags one pool length as swum or as rest.
type LengthType string

const (
	LengthTypeActive  LengthType = "active"
	LengthTypeIdle    LengthType = "idle"
	LengthTypeInvalid LengthType = "invalid"
)

// StrokeDrill is the stroke label devices record for drill lengths.
const StrokeDrill = "drill"

// LapRecord is one recorded pool length (or rest interval) from a FIT file.
// The slice order of records within a file is the recording order.
type LapRecord struct {
	SourceFile       string     `json:"source_file"`
	Index            int        `json:"index"`
	StartTime        time.Time  `json:"start_time"`
	LengthType       LengthType `json:"length_type"`
	SwimStroke       string     `json:"swim_stroke,omitempty"`
	TotalElapsedTime *float64   `json:"total_elapsed_time,omitempty"`
	TotalTimerTime   *float64   `json:"total_timer_time,omitempty"`
	TotalStrokes     *int       `json:"total_strokes,omitempty"`
	AvgSpeedMps      *float64   `json:"avg_speed_mps,omitempty"`
}

// SessionRecord is the workout-level metadata of one FIT file.
type SessionRecord struct {
	SourceFile       string    `json:"source_file"`
	StartTime        time.Time `json:"start_time"`
	UTCOffsetSeconds *int      `json:"utc_offset_seconds,omitempty"`
	Date             string    `json:"date,omitempty"`
	SessionNumber    int       `json:"session_number,omitempty"`
	PoolLength       *float64  `json:"pool_length,omitempty"`
	PoolLengthUnit   string    `json:"pool_length_unit,omitempty"` // metric|statute
	Sport            string    `json:"sport"`
	SubSport         string    `json:"sub_sport"`
	TotalDistanceM   float64   `json:"total_distance_m"`
	NumActiveLengths int       `json:"num_active_lengths"`
}

// Extract holds everything read from a single FIT file.
type Extract struct {
	SourceFile string         `json:"source_file"`
	Laps       []LapRecord    `json:"laps"`
	Session    *SessionRecord `json:"session,omitempty"`
	Warnings   []string       `json:"warnings,omitempty"`
}

// EnrichedLap is one active, non-drill length annotated with its position in
// the workout and in its set, joined with session metadata. Session fields are
// empty or nil when the file had no session message.
type EnrichedLap struct {
	SourceFile       string   `json:"source_file"`
	SessionDate      string   `json:"session_date,omitempty"`
	SessionNumber    *int     `json:"session_number,omitempty"`
	PoolLength       *float64 `json:"pool_length,omitempty"`
	TotalElapsedTime *float64 `json:"total_elapsed_time,omitempty"`
	SetID            int      `json:"set_id"`
	LapIndex         int      `json:"lap_index"`
	LapInSet         int      `json:"lap_in_set"`
	SetSize          int      `json:"set_size"`
	TotalLaps        int      `json:"total_laps"`
	PosWithinWorkout float64  `json:"pos_within_workout"`
	PosWithinSet     float64  `json:"pos_within_set"`
	SwimStroke       string   `json:"swim_stroke,omitempty"`
}
