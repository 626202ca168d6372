package swimfit

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/tormoder/fit"
)

var strokeNames = map[fit.SwimStroke]string{
	fit.SwimStrokeFreestyle:    "freestyle",
	fit.SwimStrokeBackstroke:   "backstroke",
	fit.SwimStrokeBreaststroke: "breaststroke",
	fit.SwimStrokeButterfly:    "butterfly",
	fit.SwimStrokeDrill:        StrokeDrill,
	fit.SwimStrokeMixed:        "mixed",
	fit.SwimStrokeIm:           "im",
}

// ExtractFile reads and decodes one FIT activity file.
func ExtractFile(path string) (*Extract, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read FIT file: %w", err)
	}
	return ExtractBytes(filepath.Base(path), data)
}

// ExtractBytes decodes FIT bytes into lap and session records. sourceFile is
// the identifier attached to every record.
func ExtractBytes(sourceFile string, data []byte) (*Extract, error) {
	warnings, err := checkIntegrity(data)
	if err != nil {
		return nil, fmt.Errorf("check FIT integrity: %w", err)
	}

	decoded, err := fit.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decode FIT file: %w", err)
	}
	activity, err := decoded.Activity()
	if err != nil {
		return nil, fmt.Errorf("activity FIT expected: %w", err)
	}

	ex := &Extract{
		SourceFile: sourceFile,
		Laps:       make([]LapRecord, 0, len(activity.Lengths)),
		Warnings:   warnings,
	}
	for i, msg := range activity.Lengths {
		if msg == nil {
			continue
		}
		ex.Laps = append(ex.Laps, lapFromLength(sourceFile, i, msg))
	}

	session := pickSwimSession(activity.Sessions)
	if session != nil {
		ex.Session = sessionFromMsg(sourceFile, session, deviceUTCOffset(activity.Activity))
	} else {
		ex.Warnings = append(ex.Warnings, "no session message; session fields will be empty")
	}
	return ex, nil
}

func lapFromLength(sourceFile string, index int, msg *fit.LengthMsg) LapRecord {
	lap := LapRecord{
		SourceFile:       sourceFile,
		Index:            index,
		StartTime:        validTimeOrZero(msg.StartTime),
		LengthType:       lengthType(msg.LengthType),
		SwimStroke:       strokeName(msg.SwimStroke),
		TotalElapsedTime: finitePtr(msg.GetTotalElapsedTimeScaled()),
		TotalTimerTime:   finitePtr(msg.GetTotalTimerTimeScaled()),
		AvgSpeedMps:      finitePtr(msg.GetAvgSpeedScaled()),
	}
	if msg.TotalStrokes != math.MaxUint16 {
		n := int(msg.TotalStrokes)
		lap.TotalStrokes = &n
	}
	return lap
}

func lengthType(t fit.LengthType) LengthType {
	switch t {
	case fit.LengthTypeActive:
		return LengthTypeActive
	case fit.LengthTypeIdle:
		return LengthTypeIdle
	default:
		return LengthTypeInvalid
	}
}

func strokeName(s fit.SwimStroke) string {
	if name, ok := strokeNames[s]; ok {
		return name
	}
	return ""
}

// pickSwimSession prefers the first swimming session and falls back to the
// first session of any sport.
func pickSwimSession(sessions []*fit.SessionMsg) *fit.SessionMsg {
	var first *fit.SessionMsg
	for _, s := range sessions {
		if s == nil {
			continue
		}
		if first == nil {
			first = s
		}
		if s.Sport == fit.SportSwimming {
			return s
		}
	}
	return first
}

func sessionFromMsg(sourceFile string, s *fit.SessionMsg, offset *int) *SessionRecord {
	rec := &SessionRecord{
		SourceFile:       sourceFile,
		StartTime:        validTimeOrZero(s.StartTime),
		UTCOffsetSeconds: offset,
		PoolLength:       positivePtr(s.GetPoolLengthScaled()),
		Sport:            fmt.Sprint(s.Sport),
		SubSport:         fmt.Sprint(s.SubSport),
		TotalDistanceM:   safePositive(s.GetTotalDistanceScaled()),
		NumActiveLengths: int(validUint16(s.NumActiveLengths)),
	}
	if rec.StartTime.IsZero() {
		rec.StartTime = validTimeOrZero(s.Timestamp)
	}
	switch s.PoolLengthUnit {
	case fit.DisplayMeasureMetric:
		rec.PoolLengthUnit = "metric"
	case fit.DisplayMeasureStatute:
		rec.PoolLengthUnit = "statute"
	}
	return rec
}

// deviceUTCOffset reads the wall-clock offset the device applied from the
// zone of the decoded local timestamp, rounded to the nearest quarter hour.
// Nil when the activity message lacks either clock.
func deviceUTCOffset(a *fit.ActivityMsg) *int {
	if a == nil {
		return nil
	}
	if validTimeOrZero(a.Timestamp).IsZero() || validTimeOrZero(a.LocalTimestamp).IsZero() {
		return nil
	}
	_, zoneSecs := a.LocalTimestamp.Zone()
	offset := (time.Duration(zoneSecs) * time.Second).Round(15 * time.Minute)
	if offset < -14*time.Hour || offset > 14*time.Hour {
		return nil
	}
	secs := int(offset / time.Second)
	return &secs
}

func validTimeOrZero(t time.Time) time.Time {
	if t.IsZero() || fit.IsBaseTime(t) {
		return time.Time{}
	}
	return t
}

func validUint16(v uint16) uint16 {
	if v == math.MaxUint16 {
		return 0
	}
	return v
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func safePositive(v float64) float64 {
	if !isFinite(v) || v <= 0 {
		return 0
	}
	return v
}

func finitePtr(v float64) *float64 {
	if !isFinite(v) {
		return nil
	}
	return &v
}

func positivePtr(v float64) *float64 {
	if !isFinite(v) || v <= 0 {
		return nil
	}
	return &v
}
