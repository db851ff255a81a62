// Package report parses the artifacts downloaded from the client machine
// after a benchmark run: the multi-section result file and the
// environment-properties file.
package report

import "strings"

// Section identifies which part of the result file a line belongs to.
type Section int

const (
	// SectionNone is the state before any header has been seen.
	SectionNone Section = iota
	// SectionMaxIOPSByMode is the per-mode maximum IOPS summary.
	SectionMaxIOPSByMode
	// SectionMaxIOPSByBlockSize is the per-block-size maximum IOPS summary.
	SectionMaxIOPSByBlockSize
	// SectionRawSweep is the raw sweep table, one row per
	// (operation type, concurrency) pair.
	SectionRawSweep
)

// Sections holds the three sub-tables of the result file, header lines
// excluded, in the order the lines appeared.
type Sections struct {
	MaxIOPSByMode      []string
	MaxIOPSByBlockSize []string
	RawSweep           []string
}

const (
	modeHeader      = "Max IOPS of each mode"
	blockSizeHeader = "Max IOPS of each BlockSize"
	// The sweep table is introduced by its column-name line.
	sweepHeaderPrefix = "Iteration,TestType,BlockSize"
)

// isModeHeader reports whether line introduces the per-mode section.
func isModeHeader(line string) bool {
	return strings.Contains(line, modeHeader)
}

// isBlockSizeHeader reports whether line introduces the per-block-size section.
func isBlockSizeHeader(line string) bool {
	return strings.Contains(line, blockSizeHeader)
}

// isSweepHeader reports whether line is the sweep table's column-name line.
func isSweepHeader(line string) bool {
	return strings.HasPrefix(strings.TrimSpace(line), sweepHeaderPrefix)
}

// SplitSections walks the result file once and assigns every line to the
// section whose header most recently preceded it. Header lines are consumed
// by the switch itself and never emitted. Lines seen before any header
// belong to no section. Sections may appear in any order.
func SplitSections(lines []string) Sections {
	var out Sections
	current := SectionNone

	for _, line := range lines {
		switch {
		case isModeHeader(line):
			current = SectionMaxIOPSByMode
		case isBlockSizeHeader(line):
			current = SectionMaxIOPSByBlockSize
		case isSweepHeader(line):
			current = SectionRawSweep
		default:
			switch current {
			case SectionMaxIOPSByMode:
				out.MaxIOPSByMode = append(out.MaxIOPSByMode, line)
			case SectionMaxIOPSByBlockSize:
				out.MaxIOPSByBlockSize = append(out.MaxIOPSByBlockSize, line)
			case SectionRawSweep:
				out.RawSweep = append(out.RawSweep, line)
			}
		}
	}

	return out
}
