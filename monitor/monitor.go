// Package monitor drives one remote benchmark job from launch to a terminal
// classification.
package monitor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"al.essio.dev/pkg/shellescape"
	"github.com/iosweep/iosweep/model"
	"github.com/iosweep/iosweep/remote"
	"github.com/rs/zerolog"
)

// DefaultPollInterval is how long the monitor sleeps between liveness checks.
const DefaultPollInterval = 20 * time.Second

// Terminal status tokens the remote job writes into its state file.
const (
	tokenCompleted = "TestCompleted"
	tokenFailed    = "TestFailed"
	tokenAborted   = "TestAborted"
	tokenRunning   = "TestRunning"
)

// Monitor launches the benchmark command on the client machine and polls it
// until the job reaches a terminal state or the context expires.
type Monitor struct {
	logger zerolog.Logger
	exec   remote.Executor

	// PollInterval overrides DefaultPollInterval when positive.
	PollInterval time.Duration
	// StateFile is the remote path of the single-token terminal status file.
	StateFile string
	// ProgressFile is the remote path of the status log tailed on each poll.
	ProgressFile string
}

// New creates a monitor bound to an executor.
func New(logger zerolog.Logger, exec remote.Executor, stateFile, progressFile string) *Monitor {
	return &Monitor{
		logger:       logger,
		exec:         exec,
		StateFile:    stateFile,
		ProgressFile: progressFile,
	}
}

// Launch starts the benchmark command as a background job on the machine.
func (m *Monitor) Launch(ctx context.Context, machine model.Machine, command string) (remote.JobHandle, error) {
	m.logger.Info().
		Str("host", machine.Host()).
		Str("command", command).
		Msg("Launching benchmark job")

	handle, err := m.exec.Start(ctx, machine, command, remote.RunOptions{Elevate: true})
	if err != nil {
		return remote.JobHandle{}, fmt.Errorf("failed to launch benchmark: %w", err)
	}
	return handle, nil
}

// Wait polls the job until it is no longer running, then reads the remote
// state file and classifies the outcome. A cancelled or expired context
// classifies the run as aborted instead of blocking forever.
func (m *Monitor) Wait(ctx context.Context, handle remote.JobHandle) (model.JobStatus, error) {
	for {
		running, err := m.exec.JobRunning(ctx, handle)
		if err != nil {
			return model.JobAborted, fmt.Errorf("failed to check job state: %w", err)
		}
		if !running {
			break
		}

		m.logProgress(ctx, handle.Machine)

		select {
		case <-ctx.Done():
			m.logger.Warn().Err(ctx.Err()).Msg("Benchmark wait cancelled")
			return model.JobAborted, fmt.Errorf("benchmark wait cancelled: %w", ctx.Err())
		case <-time.After(m.pollInterval()):
		}
	}

	return m.readTerminalStatus(ctx, handle.Machine)
}

// readTerminalStatus fetches the one-token state file and decodes it.
func (m *Monitor) readTerminalStatus(ctx context.Context, machine model.Machine) (model.JobStatus, error) {
	out, err := m.exec.RunCommand(ctx, machine,
		"cat "+shellescape.Quote(m.StateFile), remote.RunOptions{})
	if err != nil {
		return model.JobAborted, fmt.Errorf("failed to read state file %s: %w", m.StateFile, err)
	}

	token := strings.TrimSpace(out)
	status, recognized := DecodeTerminalToken(token)

	switch {
	case !recognized:
		m.logger.Warn().Str("token", token).Msg("Unrecognized terminal status, treating as aborted")
	case status == model.JobUnknownRunning:
		m.logger.Warn().Msg("Job process ended but state file still reports running")
	default:
		m.logger.Info().Str("status", string(status)).Msg("Benchmark job finished")
	}

	return status, nil
}

// DecodeTerminalToken maps a terminal status token to a job status. The
// second return is false when the token matched nothing; such tokens decode
// to JobAborted, never to a silent fall-through.
func DecodeTerminalToken(token string) (model.JobStatus, bool) {
	switch {
	case strings.Contains(token, tokenFailed):
		return model.JobFailed, true
	case strings.Contains(token, tokenAborted):
		return model.JobAborted, true
	case strings.Contains(token, tokenCompleted):
		return model.JobCompleted, true
	case strings.Contains(token, tokenRunning):
		// Local handle finished while the remote side still claims the
		// test is running. A divergence, not a crash.
		return model.JobUnknownRunning, true
	default:
		return model.JobAborted, false
	}
}

// logProgress tails the remote progress log for observability. Failures are
// ignored; the file may not exist yet.
func (m *Monitor) logProgress(ctx context.Context, machine model.Machine) {
	if m.ProgressFile == "" {
		return
	}
	out, err := m.exec.RunCommand(ctx, machine,
		fmt.Sprintf("tail -n 3 %s 2>/dev/null || true", shellescape.Quote(m.ProgressFile)),
		remote.RunOptions{})
	if err != nil {
		m.logger.Debug().Err(err).Msg("Could not fetch progress log")
		return
	}
	if progress := strings.TrimSpace(out); progress != "" {
		m.logger.Info().Str("progress", progress).Msg("Benchmark still running")
	}
}

func (m *Monitor) pollInterval() time.Duration {
	if m.PollInterval > 0 {
		return m.PollInterval
	}
	return DefaultPollInterval
}
