package run

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Reserved parameter keys bounding the concurrency sweep.
const (
	ParamStartThread = "startThread"
	ParamMaxThread   = "maxThread"
)

// BuildConstantsFile writes the test parameters to path, one key=value line
// per parameter in input order, echoing each line to the log, and parses the
// two reserved sweep-bound keys. Aggregation cannot proceed without them, so
// a missing or non-numeric bound is a configuration error.
func BuildConstantsFile(logger zerolog.Logger, path string, params []string) (startThread, maxThread int, err error) {
	var b strings.Builder
	for _, param := range params {
		logger.Info().Str("param", param).Msg("Test parameter")
		b.WriteString(param)
		b.WriteByte('\n')

		key, value, found := strings.Cut(param, "=")
		if !found {
			continue
		}
		switch key {
		case ParamStartThread:
			if startThread, err = parseSweepBound(key, value); err != nil {
				return 0, 0, err
			}
		case ParamMaxThread:
			if maxThread, err = parseSweepBound(key, value); err != nil {
				return 0, 0, err
			}
		}
	}

	if startThread == 0 {
		return 0, 0, configErrorf("parameter %s is missing", ParamStartThread)
	}
	if maxThread == 0 {
		return 0, 0, configErrorf("parameter %s is missing", ParamMaxThread)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return 0, 0, fmt.Errorf("failed to write constants file: %w", err)
	}

	return startThread, maxThread, nil
}

func parseSweepBound(key, value string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || n <= 0 {
		return 0, configErrorf("parameter %s must be a positive integer, got %q", key, value)
	}
	return n, nil
}
