package pipeline

import (
	"os"

	parquetbuffer "github.com/xitongsys/parquet-go-source/buffer"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/writer"

	swimfit "github.com/lucasjlepore/swim-analyzer"
)

// lapParquetRow mirrors LapColumns. Nullable columns are OPTIONAL.
type lapParquetRow struct {
	SessionDate      *string  `parquet:"name=session_date, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	SessionNumber    *int32   `parquet:"name=session_number, type=INT32, repetitiontype=OPTIONAL"`
	PoolLength       *float64 `parquet:"name=pool_length, type=DOUBLE, repetitiontype=OPTIONAL"`
	TotalElapsedTime *float64 `parquet:"name=total_elapsed_time, type=DOUBLE, repetitiontype=OPTIONAL"`
	SetID            int64    `parquet:"name=set_id, type=INT64"`
	LapIndex         int64    `parquet:"name=lap_index, type=INT64"`
	LapInSet         int64    `parquet:"name=lap_in_set, type=INT64"`
	PosWithinWorkout float64  `parquet:"name=pos_within_workout, type=DOUBLE"`
	PosWithinSet     float64  `parquet:"name=pos_within_set, type=DOUBLE"`
	SwimStroke       *string  `parquet:"name=swim_stroke, type=BYTE_ARRAY, convertedtype=UTF8, encoding=PLAIN_DICTIONARY, repetitiontype=OPTIONAL"`
}

func writeLapParquet(path string, rows []swimfit.EnrichedLap) error {
	data, err := marshalLapParquet(rows)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func marshalLapParquet(rows []swimfit.EnrichedLap) ([]byte, error) {
	fw := parquetbuffer.NewBufferFile()
	pw, err := writer.NewParquetWriter(fw, new(lapParquetRow), 4)
	if err != nil {
		return nil, err
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY
	for _, r := range rows {
		row := lapParquetRow{
			SessionDate:      stringOrNil(r.SessionDate),
			PoolLength:       r.PoolLength,
			TotalElapsedTime: r.TotalElapsedTime,
			SetID:            int64(r.SetID),
			LapIndex:         int64(r.LapIndex),
			LapInSet:         int64(r.LapInSet),
			PosWithinWorkout: r.PosWithinWorkout,
			PosWithinSet:     r.PosWithinSet,
			SwimStroke:       stringOrNil(r.SwimStroke),
		}
		if r.SessionNumber != nil {
			n := int32(*r.SessionNumber)
			row.SessionNumber = &n
		}
		if err := pw.Write(row); err != nil {
			_ = pw.WriteStop()
			return nil, err
		}
	}
	if err := pw.WriteStop(); err != nil {
		return nil, err
	}
	if err := fw.Close(); err != nil {
		return nil, err
	}
	return append([]byte(nil), fw.Bytes()...), nil
}

func stringOrNil(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
