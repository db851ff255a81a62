package model

// Operation types appearing in the raw sweep table. These match fio's mode
// names as they appear in the TestType column.
const (
	OpRead      = "read"
	OpRandRead  = "randread"
	OpWrite     = "write"
	OpRandWrite = "randwrite"
)

// SweepRecord is one row of the raw sweep table: the result of running one
// operation type at one concurrency level.
type SweepRecord struct {
	// Iteration index as reported by the benchmark
	Iteration int `json:"iteration"`
	// Operation type (read, randread, write, randwrite)
	OpType string `json:"op_type"`
	// Block size in KB (unit suffix already stripped)
	BlockSizeKB int `json:"block_size_kb"`
	// Concurrency level (queue depth) for this row
	Concurrency int `json:"concurrency"`
	// Read throughput; nil when the column was empty
	ReadIOPS *float64 `json:"read_iops,omitempty"`
	// Mean read latency in microseconds; nil when the column was empty
	ReadMeanLatencyUsec *float64 `json:"read_lat_usec,omitempty"`
	// Write throughput; nil when the column was empty
	WriteIOPS *float64 `json:"write_iops,omitempty"`
	// Mean write latency in microseconds; nil when the column was empty
	WriteMeanLatencyUsec *float64 `json:"write_lat_usec,omitempty"`
}

// AggregatedRow collapses the four operation types measured at one
// concurrency level into a single row, the shape the results store expects.
// Metric pointers are nil when the sweep table had no record for that
// operation type at this level.
type AggregatedRow struct {
	// Concurrency level (queue depth) this row aggregates
	Concurrency int `json:"concurrency"`
	// Block size in KB, taken from the first record at this level
	BlockSizeKB int `json:"block_size_kb"`

	SeqReadIOPS         *float64 `json:"seq_read_iops,omitempty"`
	SeqReadLatencyUsec  *float64 `json:"seq_read_lat_usec,omitempty"`
	RandReadIOPS        *float64 `json:"rand_read_iops,omitempty"`
	RandReadLatencyUsec *float64 `json:"rand_read_lat_usec,omitempty"`

	SeqWriteIOPS         *float64 `json:"seq_write_iops,omitempty"`
	SeqWriteLatencyUsec  *float64 `json:"seq_write_lat_usec,omitempty"`
	RandWriteIOPS        *float64 `json:"rand_write_iops,omitempty"`
	RandWriteLatencyUsec *float64 `json:"rand_write_lat_usec,omitempty"`

	// Environment metadata copied onto every row before persistence
	HostType      string `json:"host_type,omitempty"`
	HostBy        string `json:"host_by,omitempty"`
	HostOS        string `json:"host_os,omitempty"`
	GuestDistro   string `json:"guest_distro,omitempty"`
	GuestSize     string `json:"guest_size,omitempty"`
	KernelVersion string `json:"kernel_version,omitempty"`
}

// EnvProperties holds the values extracted from the environment-properties
// artifact downloaded alongside the report.
type EnvProperties struct {
	// Guest OS distribution as reported remotely
	OSType string `json:"os_type,omitempty"`
	// Hypervisor / host version string
	HostVersion string `json:"host_version,omitempty"`
	// Guest kernel version
	KernelVersion string `json:"kernel_version,omitempty"`
}
