package run

import "fmt"

// ConfigError is a fatal pre-flight failure: the run definition cannot
// produce a valid benchmark run, so nothing remote is attempted. It is the
// only error class that propagates past the step boundary.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "configuration error: " + e.Reason
}

func configErrorf(format string, args ...interface{}) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
