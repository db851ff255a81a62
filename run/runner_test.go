package run

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iosweep/iosweep/model"
	"github.com/iosweep/iosweep/remote"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

const reportFixture = `Max IOPS of each mode
read,27210
randread,26413
Max IOPS of each BlockSize
4K,27210
4K,26413
Iteration,TestType,BlockSize,Threads,ReadIOPS,MaxOfReadMeanLatency,WriteIOPS,MaxOfWriteMeanLatency
0,read,4K,2,14530.2,137.4,,
1,read,4K,4,27210.8,146.5,,
2,randread,4K,2,13911.0,143.1,,
3,randread,4K,4,26413.9,150.9,,
4,write,4K,2,,,12219.5,163.0
5,write,4K,4,,,23498.1,169.8
6,randwrite,4K,2,,,11790.4,168.7
7,randwrite,4K,4,,,22601.3,176.2
`

const envPropsFixture = `vm01,OS type,Ubuntu 22.04.3 LTS
vm01,Host Version,10.0.20348
vm01,Kernel version,5.15.0-1053-azure
`

// fakeExecutor answers remote commands from canned data; the benchmark job
// finishes on the first liveness check.
type fakeExecutor struct {
	stateToken string
	commands   []string
}

func (f *fakeExecutor) RunCommand(ctx context.Context, m model.Machine, command string, opts remote.RunOptions) (string, error) {
	f.commands = append(f.commands, command)
	if strings.HasPrefix(command, "cat ") {
		return f.stateToken + "\n", nil
	}
	return "", nil
}

func (f *fakeExecutor) Start(ctx context.Context, m model.Machine, command string, opts remote.RunOptions) (remote.JobHandle, error) {
	f.commands = append(f.commands, command)
	return remote.JobHandle{Machine: m, PID: "4242", Elevated: opts.Elevate}, nil
}

func (f *fakeExecutor) JobRunning(ctx context.Context, handle remote.JobHandle) (bool, error) {
	return false, nil
}

// fakeTransport serves downloads from a map of artifact name to content.
type fakeTransport struct {
	artifacts map[string]string
	uploads   [][]string
}

func (f *fakeTransport) Upload(ctx context.Context, m model.Machine, localPaths []string, remoteDir string) error {
	f.uploads = append(f.uploads, localPaths)
	return nil
}

func (f *fakeTransport) Download(ctx context.Context, m model.Machine, remotePattern, localDir string) error {
	name := path.Base(remotePattern)
	content, ok := f.artifacts[name]
	if !ok {
		return errors.New("no such remote file: " + remotePattern)
	}
	return os.WriteFile(filepath.Join(localDir, name), []byte(content), 0o644)
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		Machines: []model.Machine{
			{Name: "perf-client-0", PublicAddress: "10.0.0.4", User: "azureuser"},
			{Name: "perf-server-0", PublicAddress: "10.0.0.5", User: "azureuser"},
		},
		Params:       []string{"startThread=2", "maxThread=4", "fileSize=4g"},
		HostType:     "HyperV",
		HostBy:       "westus2",
		GuestSize:    "Standard_D64s_v3",
		WorkDir:      t.TempDir(),
		PollInterval: time.Millisecond,
	}
}

func TestRunCompletesAndAggregates(t *testing.T) {
	exec := &fakeExecutor{stateToken: "TestCompleted"}
	transport := &fakeTransport{artifacts: map[string]string{
		"perf_fio.csv":      reportFixture,
		"VM_properties.csv": envPropsFixture,
	}}
	runner := New(zerolog.Nop(), exec, transport)

	result, err := runner.Run(context.Background(), testConfig(t))
	require.NoError(t, err)
	require.Equal(t, model.VerdictPass, result.Verdict)
	require.Len(t, result.Rows, 2)

	first := result.Rows[0]
	require.Equal(t, 2, first.Concurrency)
	require.Equal(t, 4, first.BlockSizeKB)
	require.InDelta(t, 14530.2, *first.SeqReadIOPS, 0.001)
	require.InDelta(t, 13911.0, *first.RandReadIOPS, 0.001)
	require.InDelta(t, 12219.5, *first.SeqWriteIOPS, 0.001)
	require.InDelta(t, 11790.4, *first.RandWriteIOPS, 0.001)

	second := result.Rows[1]
	require.Equal(t, 4, second.Concurrency)
	require.InDelta(t, 27210.8, *second.SeqReadIOPS, 0.001)
	require.InDelta(t, 176.2, *second.RandWriteLatencyUsec, 0.001)

	// Environment metadata lands on every row.
	for _, row := range result.Rows {
		require.Equal(t, "HyperV", row.HostType)
		require.Equal(t, "Standard_D64s_v3", row.GuestSize)
		require.Equal(t, "Ubuntu 22.04.3 LTS", row.GuestDistro)
		require.Equal(t, "10.0.20348", row.HostOS)
		require.Equal(t, "5.15.0-1053-azure", row.KernelVersion)
	}

	// The constants file was generated and uploaded.
	require.Len(t, transport.uploads, 1)
	require.Contains(t, transport.uploads[0][0], "constants.sh")
}

func TestRunClassifiesFailure(t *testing.T) {
	exec := &fakeExecutor{stateToken: "TestFailed"}
	transport := &fakeTransport{artifacts: map[string]string{}}
	runner := New(zerolog.Nop(), exec, transport)

	result, err := runner.Run(context.Background(), testConfig(t))
	require.NoError(t, err)
	require.Equal(t, model.VerdictFail, result.Verdict)
	require.Empty(t, result.Rows)
}

func TestRunUnrecognizedStatusAborts(t *testing.T) {
	exec := &fakeExecutor{stateToken: "kernel panic"}
	transport := &fakeTransport{artifacts: map[string]string{}}
	runner := New(zerolog.Nop(), exec, transport)

	result, err := runner.Run(context.Background(), testConfig(t))
	require.NoError(t, err)
	require.Equal(t, model.VerdictAborted, result.Verdict)
}

func TestRunUnknownRunningIsSoftSuccess(t *testing.T) {
	exec := &fakeExecutor{stateToken: "TestRunning"}
	transport := &fakeTransport{artifacts: map[string]string{
		"perf_fio.csv":      reportFixture,
		"VM_properties.csv": envPropsFixture,
	}}
	runner := New(zerolog.Nop(), exec, transport)

	result, err := runner.Run(context.Background(), testConfig(t))
	require.NoError(t, err)
	require.Equal(t, model.VerdictPass, result.Verdict)
	require.Contains(t, result.Summary, "still reported running")
	require.Len(t, result.Rows, 2)
}

func TestRunConfigErrorPropagates(t *testing.T) {
	cfg := testConfig(t)
	cfg.Machines = cfg.Machines[:1] // no server

	runner := New(zerolog.Nop(), &fakeExecutor{}, &fakeTransport{})
	_, err := runner.Run(context.Background(), cfg)

	var cfgErr *ConfigError
	require.True(t, errors.As(err, &cfgErr))
}

func TestRunAbortsWhenReportMissing(t *testing.T) {
	exec := &fakeExecutor{stateToken: "TestCompleted"}
	transport := &fakeTransport{artifacts: map[string]string{}}
	runner := New(zerolog.Nop(), exec, transport)

	result, err := runner.Run(context.Background(), testConfig(t))
	require.NoError(t, err)
	require.Equal(t, model.VerdictAborted, result.Verdict)
	require.Contains(t, result.Summary, "report")
}
