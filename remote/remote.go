// Package remote defines the contracts the benchmark step uses to talk to
// provisioned machines, and an SSH-backed implementation of them.
package remote

import (
	"context"

	"github.com/iosweep/iosweep/model"
)

// RunOptions configures a single remote command execution.
type RunOptions struct {
	// Elevate runs the command through sudo.
	Elevate bool
}

// JobHandle identifies a background job started on a remote machine.
type JobHandle struct {
	// Machine the job runs on
	Machine model.Machine
	// PID of the remote process
	PID string
	// Elevated records whether the job was launched through sudo; the
	// liveness check must signal it with the same privilege
	Elevated bool
}

// Executor runs commands on remote machines. Blocking calls take a context
// so the caller can bound them.
type Executor interface {
	// RunCommand executes command and returns its stdout.
	RunCommand(ctx context.Context, m model.Machine, command string, opts RunOptions) (string, error)
	// Start launches command in the background and returns a handle to it.
	Start(ctx context.Context, m model.Machine, command string, opts RunOptions) (JobHandle, error)
	// JobRunning reports whether the job behind handle is still alive.
	JobRunning(ctx context.Context, handle JobHandle) (bool, error)
}

// Transport moves files to and from remote machines.
type Transport interface {
	// Upload copies local files into remoteDir on m.
	Upload(ctx context.Context, m model.Machine, localPaths []string, remoteDir string) error
	// Download copies files matching remotePattern on m into localDir.
	Download(ctx context.Context, m model.Machine, remotePattern, localDir string) error
}
