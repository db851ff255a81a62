package report

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/iosweep/iosweep/model"
)

// SweepHeader is the column-name line of the raw sweep table. The section
// splitter consumes it while switching sections, so the column layout is
// decoded from this constant rather than from the section body.
const SweepHeader = "Iteration,TestType,BlockSize,Threads,ReadIOPS,MaxOfReadMeanLatency,WriteIOPS,MaxOfWriteMeanLatency"

// sweepColumns maps column names from a header line to field indices.
func sweepColumns(header string) map[string]int {
	cols := make(map[string]int)
	for i, name := range strings.Split(header, ",") {
		cols[strings.TrimSpace(name)] = i
	}
	return cols
}

// ParseSweepTable decodes the raw sweep section into structured records.
// Columns are located by name from SweepHeader, except when the first line
// of the section is itself a column-name line, in which case that line wins.
// Empty metric cells decode to nil, never to zero.
func ParseSweepTable(lines []string) ([]model.SweepRecord, error) {
	header := SweepHeader
	if len(lines) > 0 && strings.HasPrefix(strings.TrimSpace(lines[0]), "Iteration,") {
		header = strings.TrimSpace(lines[0])
		lines = lines[1:]
	}
	cols := sweepColumns(header)

	for _, required := range []string{"Iteration", "TestType", "BlockSize", "Threads"} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("sweep table header missing %q column", required)
		}
	}

	var records []model.SweepRecord
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		fields := strings.Split(line, ",")
		rec, err := parseSweepRow(cols, fields)
		if err != nil {
			return nil, fmt.Errorf("sweep row %q: %w", line, err)
		}
		records = append(records, rec)
	}

	return records, nil
}

func parseSweepRow(cols map[string]int, fields []string) (model.SweepRecord, error) {
	var rec model.SweepRecord
	var err error

	if rec.Iteration, err = intColumn(cols, fields, "Iteration"); err != nil {
		return rec, err
	}
	rec.OpType = stringColumn(cols, fields, "TestType")

	bs := stringColumn(cols, fields, "BlockSize")
	if rec.BlockSizeKB, err = parseBlockSizeKB(bs); err != nil {
		return rec, err
	}

	if rec.Concurrency, err = intColumn(cols, fields, "Threads"); err != nil {
		return rec, err
	}

	if rec.ReadIOPS, err = floatColumn(cols, fields, "ReadIOPS"); err != nil {
		return rec, err
	}
	if rec.ReadMeanLatencyUsec, err = floatColumn(cols, fields, "MaxOfReadMeanLatency"); err != nil {
		return rec, err
	}
	if rec.WriteIOPS, err = floatColumn(cols, fields, "WriteIOPS"); err != nil {
		return rec, err
	}
	if rec.WriteMeanLatencyUsec, err = floatColumn(cols, fields, "MaxOfWriteMeanLatency"); err != nil {
		return rec, err
	}

	return rec, nil
}

// parseBlockSizeKB strips the fixed "K" unit suffix and parses the rest.
func parseBlockSizeKB(s string) (int, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(strings.TrimSuffix(s, "K"), "k")
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid block size %q", s)
	}
	return n, nil
}

func stringColumn(cols map[string]int, fields []string, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[i])
}

func intColumn(cols map[string]int, fields []string, name string) (int, error) {
	s := stringColumn(cols, fields, name)
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q", name, s)
	}
	return n, nil
}

// floatColumn returns nil for a missing column or empty cell.
func floatColumn(cols map[string]int, fields []string, name string) (*float64, error) {
	s := stringColumn(cols, fields, name)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s value %q", name, s)
	}
	return &v, nil
}
