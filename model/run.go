package model

import "time"

// JobStatus is the classification of the remote benchmark job.
type JobStatus string

const (
	// JobRunning means the remote job is still executing.
	JobRunning JobStatus = "running"
	// JobCompleted means the remote job finished and reported success.
	JobCompleted JobStatus = "completed"
	// JobFailed means the remote job finished and reported failure.
	JobFailed JobStatus = "failed"
	// JobAborted means the remote job was aborted, or its terminal status
	// could not be recognized.
	JobAborted JobStatus = "aborted"
	// JobUnknownRunning means the local job handle finished but the remote
	// status file still claims the test is running. Treated as a soft
	// success with a warning.
	JobUnknownRunning JobStatus = "unknown-running"
)

// Verdict is the final classification of a benchmark run.
type Verdict string

const (
	VerdictPass    Verdict = "PASS"
	VerdictFail    Verdict = "FAIL"
	VerdictAborted Verdict = "ABORTED"
)

// Result is what the benchmark step hands back to its caller. The Verdict
// field is always populated; Rows only on success.
type Result struct {
	// Final classification; defaults to ABORTED when the pipeline could
	// not reach a terminal state
	Verdict Verdict `json:"verdict"`
	// Human-readable summary of how the run ended
	Summary string `json:"summary"`
	// Aggregated rows, one per concurrency level (success only)
	Rows []AggregatedRow `json:"rows,omitempty"`
}

// StoreConfig holds the results-store coordinates. Persistence is disabled
// unless all five coordinates are set.
type StoreConfig struct {
	// Endpoint in host:port form
	Endpoint string `json:"endpoint" yaml:"endpoint"`
	// Login user
	User string `json:"user" yaml:"user"`
	// Login password
	Password string `json:"password" yaml:"password"`
	// Database name
	Database string `json:"database" yaml:"database"`
	// Table receiving one row per concurrency level
	Table string `json:"table" yaml:"table"`
	// Test-case tag written with every row
	TestCaseTag string `json:"test_case_tag" yaml:"test_case_tag"`
}

// Complete reports whether every coordinate required for a write is set.
func (c StoreConfig) Complete() bool {
	return c.Endpoint != "" && c.User != "" && c.Password != "" &&
		c.Database != "" && c.Table != ""
}

// RunRecord is the locally persisted summary of one benchmark run.
type RunRecord struct {
	// Unique ID for this run (16 random bytes, hex encoded)
	ID string `json:"id"`
	// Timestamp when the run started
	Timestamp time.Time `json:"timestamp"`
	// Duration of the whole run
	Duration time.Duration `json:"duration"`
	// Final classification
	Verdict Verdict `json:"verdict"`
	// Human-readable summary
	Summary string `json:"summary"`
	// Client machine the workload ran on (user@host)
	ClientHost string `json:"client_host,omitempty"`
	// Server machine the workload targeted (user@host)
	ServerHost string `json:"server_host,omitempty"`
	// Aggregated rows produced by the run (success only)
	Rows []AggregatedRow `json:"rows,omitempty"`
}
