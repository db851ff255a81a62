package remote

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"al.essio.dev/pkg/shellescape"
	"github.com/iosweep/iosweep/model"
	"github.com/rs/zerolog"
)

// SSH implements Executor and Transport on top of the local ssh and scp
// binaries, with a multiplexed master connection per machine.
type SSH struct {
	logger         zerolog.Logger
	identityFile   string
	knownHostsFile string
	extraOptions   []string
	controlPaths   map[string]string
}

// SSHOption configures an SSH collaborator.
type SSHOption func(*SSH)

// WithIdentityFile sets the identity file (private key) to use for authentication.
func WithIdentityFile(path string) SSHOption {
	return func(s *SSH) {
		s.identityFile = path
	}
}

// WithKnownHostsFile sets the known hosts file to use for host verification.
func WithKnownHostsFile(path string) SSHOption {
	return func(s *SSH) {
		s.knownHostsFile = path
	}
}

// WithExtraOptions adds extra ssh -o options to every connection.
func WithExtraOptions(options ...string) SSHOption {
	return func(s *SSH) {
		s.extraOptions = append(s.extraOptions, options...)
	}
}

// NewSSH creates the SSH collaborator. Master connections are established
// lazily, on first use of each machine.
func NewSSH(logger zerolog.Logger, opts ...SSHOption) *SSH {
	s := &SSH{
		logger:       logger,
		controlPaths: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close tears down all master connections and their control sockets.
func (s *SSH) Close() {
	for host, controlPath := range s.controlPaths {
		s.logger.Debug().Str("host", host).Str("controlPath", controlPath).Msg("Cleaning up SSH multiplexing")

		cmd := exec.Command("ssh",
			"-o", fmt.Sprintf("ControlPath=%s", controlPath),
			"-O", "exit",
			host,
		)
		_ = cmd.Run() // Ignore errors on cleanup
		_ = os.Remove(controlPath)
	}
	s.controlPaths = make(map[string]string)
}

// RunCommand executes a command on the remote machine and returns its stdout.
func (s *SSH) RunCommand(ctx context.Context, m model.Machine, command string, opts RunOptions) (string, error) {
	if opts.Elevate {
		command = "sudo sh -c " + shellescape.Quote(command)
	}

	args, err := s.sshArgs(m)
	if err != nil {
		return "", err
	}
	args = append(args, m.Host(), command)

	cmd := exec.CommandContext(ctx, "ssh", args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	s.logger.Debug().
		Str("host", m.Host()).
		Str("command", command).
		Msg("Running remote command")

	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("command failed: %w (stderr: %s)", err, stderr.String())
	}

	return stdout.String(), nil
}

// launchCommand wraps a command so it detaches from the session and echoes
// the PID of the job back as the only output.
func launchCommand(command string, opts RunOptions) string {
	prefix := ""
	if opts.Elevate {
		prefix = "sudo "
	}
	return fmt.Sprintf("%snohup sh -c %s >/dev/null 2>&1 & echo $!", prefix, shellescape.Quote(command))
}

// livenessCommand builds the liveness check for a job. An elevated job runs
// as root, and kill -0 on a root-owned process fails with EPERM for a
// non-root login, so the check signals with the same privilege the launch
// used.
func livenessCommand(handle JobHandle) string {
	prefix := ""
	if handle.Elevated {
		prefix = "sudo "
	}
	return fmt.Sprintf("if %skill -0 %s 2>/dev/null; then echo RUNNING; else echo DONE; fi", prefix, shellescape.Quote(handle.PID))
}

// Start launches a command in the background on the remote machine and
// returns a handle carrying the remote PID.
func (s *SSH) Start(ctx context.Context, m model.Machine, command string, opts RunOptions) (JobHandle, error) {
	out, err := s.RunCommand(ctx, m, launchCommand(command, opts), RunOptions{})
	if err != nil {
		return JobHandle{}, fmt.Errorf("failed to launch background job: %w", err)
	}

	pid := strings.TrimSpace(out)
	if _, err := strconv.Atoi(pid); err != nil {
		return JobHandle{}, fmt.Errorf("unexpected PID output %q", pid)
	}

	s.logger.Debug().
		Str("host", m.Host()).
		Str("pid", pid).
		Bool("elevated", opts.Elevate).
		Msg("Background job started")

	return JobHandle{Machine: m, PID: pid, Elevated: opts.Elevate}, nil
}

// JobRunning reports whether the remote process behind the handle is alive.
func (s *SSH) JobRunning(ctx context.Context, handle JobHandle) (bool, error) {
	out, err := s.RunCommand(ctx, handle.Machine, livenessCommand(handle), RunOptions{})
	if err != nil {
		return false, fmt.Errorf("failed to check job %s: %w", handle.PID, err)
	}
	return strings.TrimSpace(out) == "RUNNING", nil
}

// Upload copies local files into remoteDir on the machine via scp.
func (s *SSH) Upload(ctx context.Context, m model.Machine, localPaths []string, remoteDir string) error {
	if _, err := s.RunCommand(ctx, m, fmt.Sprintf("mkdir -p %s", shellescape.Quote(remoteDir)), RunOptions{}); err != nil {
		return fmt.Errorf("failed to create remote directory: %w", err)
	}

	args, err := s.scpArgs(m)
	if err != nil {
		return err
	}
	args = append(args, localPaths...)
	args = append(args, fmt.Sprintf("%s:%s/", m.Host(), remoteDir))

	s.logger.Debug().
		Str("host", m.Host()).
		Strs("files", localPaths).
		Str("remoteDir", remoteDir).
		Msg("Uploading files")

	cmd := exec.CommandContext(ctx, "scp", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("upload failed: %w (stderr: %s)", err, stderr.String())
	}
	return nil
}

// Download copies files matching remotePattern into localDir via scp.
func (s *SSH) Download(ctx context.Context, m model.Machine, remotePattern, localDir string) error {
	if err := os.MkdirAll(localDir, 0o755); err != nil {
		return fmt.Errorf("failed to create local directory: %w", err)
	}

	args, err := s.scpArgs(m)
	if err != nil {
		return err
	}
	args = append(args, fmt.Sprintf("%s:%s", m.Host(), remotePattern), localDir)

	s.logger.Debug().
		Str("host", m.Host()).
		Str("pattern", remotePattern).
		Str("localDir", localDir).
		Msg("Downloading files")

	cmd := exec.CommandContext(ctx, "scp", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("download failed: %w (stderr: %s)", err, stderr.String())
	}
	return nil
}

// sshArgs constructs the ssh arguments with all configured options.
func (s *SSH) sshArgs(m model.Machine) ([]string, error) {
	controlPath, err := s.controlPath(m)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-o", fmt.Sprintf("ControlPath=%s", controlPath),
		"-o", "ControlMaster=no",
	}
	if m.Port != 0 {
		args = append(args, "-p", strconv.Itoa(m.Port))
	}
	args = append(args, s.commonArgs()...)
	return args, nil
}

// scpArgs constructs the scp arguments with all configured options.
func (s *SSH) scpArgs(m model.Machine) ([]string, error) {
	controlPath, err := s.controlPath(m)
	if err != nil {
		return nil, err
	}

	args := []string{
		"-o", fmt.Sprintf("ControlPath=%s", controlPath),
		"-o", "ControlMaster=no",
	}
	if m.Port != 0 {
		args = append(args, "-P", strconv.Itoa(m.Port))
	}
	args = append(args, s.commonArgs()...)
	return args, nil
}

func (s *SSH) commonArgs() []string {
	var args []string
	if s.identityFile != "" {
		args = append(args, "-i", s.identityFile)
	}
	if s.knownHostsFile != "" {
		args = append(args, "-o", fmt.Sprintf("UserKnownHostsFile=%s", s.knownHostsFile))
	}
	for _, opt := range s.extraOptions {
		args = append(args, "-o", opt)
	}
	return args
}

// controlPath returns the control socket for the machine, establishing the
// master connection on first use.
func (s *SSH) controlPath(m model.Machine) (string, error) {
	host := m.Host()
	if path, ok := s.controlPaths[host]; ok {
		return path, nil
	}

	controlDir := s.controlSocketDir()
	if err := os.MkdirAll(controlDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create control directory: %w", err)
	}

	// Hash the host to stay under the Unix socket path length limit
	// (typically 104-108 chars).
	hash := sha256.Sum256([]byte(host))
	hostHash := hex.EncodeToString(hash[:])[:12]
	controlPath := filepath.Join(controlDir, fmt.Sprintf("ssh-%s", hostHash))

	args := []string{
		"-o", "ControlMaster=auto",
		"-o", fmt.Sprintf("ControlPath=%s", controlPath),
		"-o", "ControlPersist=30s",
		"-o", "ConnectTimeout=10",
		"-o", "ServerAliveInterval=15",
		"-o", "ServerAliveCountMax=3",
	}
	if m.Port != 0 {
		args = append(args, "-p", strconv.Itoa(m.Port))
	}
	args = append(args, s.commonArgs()...)
	args = append(args,
		"-f", // Run in background
		"-N", // Don't execute a remote command
		host,
	)

	s.logger.Debug().
		Str("host", host).
		Str("controlPath", controlPath).
		Msg("Setting up SSH multiplexing")

	cmd := exec.Command("ssh", args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to establish SSH master connection: %w (stderr: %s)", err, stderr.String())
	}

	s.controlPaths[host] = controlPath
	return controlPath, nil
}

// controlSocketDir returns the directory to use for SSH control sockets.
func (s *SSH) controlSocketDir() string {
	// Prefer XDG_RUNTIME_DIR for runtime sockets; keep the path short.
	if xdgRuntime := os.Getenv("XDG_RUNTIME_DIR"); xdgRuntime != "" {
		return filepath.Join(xdgRuntime, "iosweep")
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if home := os.Getenv("HOME"); home != "" {
			configHome = filepath.Join(home, ".config")
		}
	}
	if configHome != "" {
		return filepath.Join(configHome, "iosweep")
	}

	return filepath.Join(os.TempDir(), "iosweep")
}
