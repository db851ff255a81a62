// Package sweep aggregates raw sweep records into one row per concurrency
// level of the geometric queue-depth ladder.
package sweep

import "github.com/iosweep/iosweep/model"

// Aggregate walks the doubling sequence startThread, startThread*2, ... up to
// and including maxThread and emits one row per level, in increasing order.
// A level with no record for some operation type keeps nil metrics for that
// type; a missing record is not an error. maxThread < startThread yields no
// rows.
func Aggregate(records []model.SweepRecord, startThread, maxThread int) []model.AggregatedRow {
	if startThread <= 0 {
		return nil
	}

	var rows []model.AggregatedRow
	for level := startThread; level <= maxThread; level *= 2 {
		rows = append(rows, aggregateLevel(records, level))
	}
	return rows
}

// aggregateLevel builds the row for one concurrency level. The block size is
// taken from the first record at the level, on the assumption that all
// operation types share one block size per level.
func aggregateLevel(records []model.SweepRecord, level int) model.AggregatedRow {
	row := model.AggregatedRow{Concurrency: level}

	for _, rec := range records {
		if rec.Concurrency != level {
			continue
		}
		if row.BlockSizeKB == 0 {
			row.BlockSizeKB = rec.BlockSizeKB
		}
		switch rec.OpType {
		case model.OpRead:
			row.SeqReadIOPS = rec.ReadIOPS
			row.SeqReadLatencyUsec = rec.ReadMeanLatencyUsec
		case model.OpRandRead:
			row.RandReadIOPS = rec.ReadIOPS
			row.RandReadLatencyUsec = rec.ReadMeanLatencyUsec
		case model.OpWrite:
			row.SeqWriteIOPS = rec.WriteIOPS
			row.SeqWriteLatencyUsec = rec.WriteMeanLatencyUsec
		case model.OpRandWrite:
			row.RandWriteIOPS = rec.WriteIOPS
			row.RandWriteLatencyUsec = rec.WriteMeanLatencyUsec
		}
	}

	return row
}
