package cli

// This file loads the YAML run definition file consumed by the run command.

import (
	"fmt"
	"os"
	"time"

	"github.com/iosweep/iosweep/run"
	"gopkg.in/yaml.v3"
)

// runFile is the on-disk shape of a run definition. Durations are strings
// ("20s", "2h") and parsed into the config proper.
type runFile struct {
	run.Config   `yaml:",inline"`
	PollInterval string `yaml:"poll_interval"`
	Timeout      string `yaml:"timeout"`
}

func loadRunFile(path string) (run.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return run.Config{}, fmt.Errorf("failed to read run file: %w", err)
	}

	var rf runFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return run.Config{}, fmt.Errorf("failed to parse run file %s: %w", path, err)
	}

	if rf.PollInterval != "" {
		d, err := time.ParseDuration(rf.PollInterval)
		if err != nil {
			return run.Config{}, fmt.Errorf("invalid poll_interval: %w", err)
		}
		rf.Config.PollInterval = d
	}
	if rf.Timeout != "" {
		d, err := time.ParseDuration(rf.Timeout)
		if err != nil {
			return run.Config{}, fmt.Errorf("invalid timeout: %w", err)
		}
		rf.Config.Timeout = d
	}

	return rf.Config, nil
}
