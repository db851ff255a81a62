package sweep

import (
	"testing"

	"github.com/iosweep/iosweep/model"
	"github.com/stretchr/testify/require"
)

func f(v float64) *float64 { return &v }

func record(op string, concurrency int, readIOPS, readLat, writeIOPS, writeLat *float64) model.SweepRecord {
	return model.SweepRecord{
		OpType:               op,
		BlockSizeKB:          4,
		Concurrency:          concurrency,
		ReadIOPS:             readIOPS,
		ReadMeanLatencyUsec:  readLat,
		WriteIOPS:            writeIOPS,
		WriteMeanLatencyUsec: writeLat,
	}
}

func fullLevel(concurrency int) []model.SweepRecord {
	base := float64(concurrency * 1000)
	return []model.SweepRecord{
		record(model.OpRead, concurrency, f(base+1), f(100), nil, nil),
		record(model.OpRandRead, concurrency, f(base+2), f(110), nil, nil),
		record(model.OpWrite, concurrency, nil, nil, f(base+3), f(120)),
		record(model.OpRandWrite, concurrency, nil, nil, f(base+4), f(130)),
	}
}

func TestAggregateFullSweep(t *testing.T) {
	var records []model.SweepRecord
	for _, level := range []int{2, 4, 8, 16} {
		records = append(records, fullLevel(level)...)
	}

	rows := Aggregate(records, 2, 16)
	require.Len(t, rows, 4)

	for i, level := range []int{2, 4, 8, 16} {
		row := rows[i]
		require.Equal(t, level, row.Concurrency)
		require.Equal(t, 4, row.BlockSizeKB)
		require.InDelta(t, float64(level*1000+1), *row.SeqReadIOPS, 0.001)
		require.InDelta(t, float64(level*1000+2), *row.RandReadIOPS, 0.001)
		require.InDelta(t, float64(level*1000+3), *row.SeqWriteIOPS, 0.001)
		require.InDelta(t, float64(level*1000+4), *row.RandWriteIOPS, 0.001)
		require.InDelta(t, 100, *row.SeqReadLatencyUsec, 0.001)
		require.InDelta(t, 130, *row.RandWriteLatencyUsec, 0.001)
	}
}

func TestAggregateInvertedBoundsYieldsNoRows(t *testing.T) {
	rows := Aggregate(fullLevel(2), 16, 2)
	require.Empty(t, rows)
}

func TestAggregateMissingOperationTypeLeavesFieldsNil(t *testing.T) {
	// No randwrite record at this level.
	records := []model.SweepRecord{
		record(model.OpRead, 4, f(1000), f(100), nil, nil),
		record(model.OpRandRead, 4, f(900), f(110), nil, nil),
		record(model.OpWrite, 4, nil, nil, f(800), f(120)),
	}

	rows := Aggregate(records, 4, 4)
	require.Len(t, rows, 1)

	row := rows[0]
	require.NotNil(t, row.SeqReadIOPS)
	require.NotNil(t, row.RandReadIOPS)
	require.NotNil(t, row.SeqWriteIOPS)
	require.Nil(t, row.RandWriteIOPS)
	require.Nil(t, row.RandWriteLatencyUsec)
}

func TestAggregateLevelsWithoutRecords(t *testing.T) {
	// Records only at level 2; levels 4 and 8 still emit rows.
	rows := Aggregate(fullLevel(2), 2, 8)
	require.Len(t, rows, 3)

	require.Equal(t, 4, rows[0].BlockSizeKB)
	require.Equal(t, 0, rows[1].BlockSizeKB)
	require.Nil(t, rows[1].SeqReadIOPS)
	require.Nil(t, rows[2].RandWriteIOPS)
}
