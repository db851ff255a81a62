// Package run orchestrates one benchmark run: role resolution, constants
// generation, remote launch and monitoring, report parsing, aggregation and
// best-effort persistence. It always hands back a classified result; only
// configuration errors propagate.
package run

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/iosweep/iosweep/model"
	"github.com/iosweep/iosweep/monitor"
	"github.com/iosweep/iosweep/remote"
	"github.com/iosweep/iosweep/report"
	"github.com/iosweep/iosweep/store"
	"github.com/iosweep/iosweep/sweep"
	"github.com/rs/zerolog"
)

// Remote artifact names, relative to the remote working directory.
const (
	constantsFileName = "constants.sh"
	stateFileName     = "state.txt"
	progressFileName  = "fioConsoleLogs.txt"
)

// Config describes one benchmark run.
type Config struct {
	// Machines provisioned for the run; exactly one client and one server
	Machines []model.Machine `yaml:"machines"`
	// Params are key=value test parameters, written to the constants file
	// in order. startThread and maxThread are required.
	Params []string `yaml:"params"`
	// Store coordinates; persistence is skipped when incomplete
	Store model.StoreConfig `yaml:"store"`

	// Environment metadata copied onto every aggregated row
	HostType    string `yaml:"host_type"`
	HostBy      string `yaml:"host_by"`
	GuestSize   string `yaml:"guest_size"`
	GuestDistro string `yaml:"guest_distro"`

	// WorkDir is the local scratch directory for generated and downloaded
	// artifacts
	WorkDir string `yaml:"work_dir"`
	// UploadFiles are benchmark scripts uploaded next to the constants file
	UploadFiles []string `yaml:"upload_files"`
	// RemoteDir is the working directory on the client machine
	RemoteDir string `yaml:"remote_dir"`
	// BenchmarkCommand launches the workload on the client machine
	BenchmarkCommand string `yaml:"benchmark_command"`
	// ReportCommand generates the report after a completed run
	ReportCommand string `yaml:"report_command"`
	// ReportFile is the report artifact name in RemoteDir
	ReportFile string `yaml:"report_file"`
	// EnvPropsFile is the environment-properties artifact name in RemoteDir
	EnvPropsFile string `yaml:"env_props_file"`

	// PollInterval between remote job liveness checks; default 20s. Set by the
	// loader, which parses it from a duration string.
	PollInterval time.Duration `yaml:"-"`
	// Timeout bounds the whole remote phase; 0 means no deadline
	Timeout time.Duration `yaml:"-"`
}

func (c *Config) applyDefaults() {
	if c.WorkDir == "" {
		c.WorkDir = "."
	}
	if c.RemoteDir == "" {
		c.RemoteDir = "iosweep"
	}
	if c.BenchmarkCommand == "" {
		c.BenchmarkCommand = fmt.Sprintf("cd %s && bash ./StartFioTest.sh", c.RemoteDir)
	}
	if c.ReportCommand == "" {
		c.ReportCommand = fmt.Sprintf("cd %s && bash ./ParseFioTestLogs.sh", c.RemoteDir)
	}
	if c.ReportFile == "" {
		c.ReportFile = "perf_fio.csv"
	}
	if c.EnvPropsFile == "" {
		c.EnvPropsFile = "VM_properties.csv"
	}
}

// Runner executes benchmark runs against a pair of provisioned machines.
type Runner struct {
	logger    zerolog.Logger
	exec      remote.Executor
	transport remote.Transport
}

// New creates a runner from the remote collaborators.
func New(logger zerolog.Logger, exec remote.Executor, transport remote.Transport) *Runner {
	return &Runner{logger: logger, exec: exec, transport: transport}
}

// Run drives the full lifecycle and returns a classified result. The error
// return is non-nil only for configuration errors, which abort before any
// remote work; every other failure is folded into the result, whose verdict
// defaults to ABORTED until a terminal state is reached.
func (r *Runner) Run(ctx context.Context, cfg Config) (model.Result, error) {
	cfg.applyDefaults()
	result := model.Result{Verdict: model.VerdictAborted}

	client, server, err := ResolveRoles(cfg.Machines)
	if err != nil {
		return result, err
	}
	r.logger.Info().
		Str("client", client.Host()).
		Str("server", server.Host()).
		Msg("Machine roles resolved")

	constantsPath := filepath.Join(cfg.WorkDir, constantsFileName)
	startThread, maxThread, err := BuildConstantsFile(r.logger, constantsPath, cfg.Params)
	if err != nil {
		return result, err
	}

	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	files := append([]string{constantsPath}, cfg.UploadFiles...)
	if err := r.transport.Upload(ctx, client, files, cfg.RemoteDir); err != nil {
		result.Summary = fmt.Sprintf("upload to client failed: %v", err)
		r.logger.Error().Err(err).Msg("Upload failed")
		return result, nil
	}

	mon := monitor.New(r.logger, r.exec,
		path.Join(cfg.RemoteDir, stateFileName),
		path.Join(cfg.RemoteDir, progressFileName))
	mon.PollInterval = cfg.PollInterval

	handle, err := mon.Launch(ctx, client, cfg.BenchmarkCommand)
	if err != nil {
		result.Summary = fmt.Sprintf("benchmark launch failed: %v", err)
		r.logger.Error().Err(err).Msg("Launch failed")
		return result, nil
	}

	status, err := mon.Wait(ctx, handle)
	if err != nil {
		result.Summary = fmt.Sprintf("benchmark did not reach a terminal state: %v", err)
		return result, nil
	}

	switch status {
	case model.JobFailed:
		result.Verdict = model.VerdictFail
		result.Summary = "remote benchmark reported failure"
		return result, nil
	case model.JobAborted:
		result.Summary = "remote benchmark aborted"
		return result, nil
	}

	// Completed, or UnknownRunning downgraded to a soft success.
	rows, err := r.collectRows(ctx, client, cfg, startThread, maxThread)
	if err != nil {
		result.Summary = fmt.Sprintf("report processing failed: %v", err)
		r.logger.Error().Err(err).Msg("Report processing failed")
		return result, nil
	}

	result.Verdict = model.VerdictPass
	result.Rows = rows
	result.Summary = fmt.Sprintf("benchmark completed, %d concurrency levels aggregated", len(rows))
	if status == model.JobUnknownRunning {
		result.Summary += " (remote state file still reported running)"
	}

	// Persistence runs only after the verdict is final and cannot change it.
	if skipped, err := store.New(r.logger, cfg.Store).Persist(ctx, rows); err != nil {
		r.logger.Error().Err(err).Msg("Result persistence failed")
	} else if !skipped {
		r.logger.Info().Msg("Aggregated rows persisted")
	}

	return result, nil
}

// collectRows runs remote report generation, downloads the artifacts and
// aggregates the sweep table.
func (r *Runner) collectRows(ctx context.Context, client model.Machine, cfg Config, startThread, maxThread int) ([]model.AggregatedRow, error) {
	if _, err := r.exec.RunCommand(ctx, client, cfg.ReportCommand, remote.RunOptions{Elevate: true}); err != nil {
		return nil, fmt.Errorf("report generation failed: %w", err)
	}

	if err := r.transport.Download(ctx, client, path.Join(cfg.RemoteDir, cfg.ReportFile), cfg.WorkDir); err != nil {
		return nil, fmt.Errorf("report download failed: %w", err)
	}

	// The environment artifact is informational; a failed download only
	// loses metadata.
	props := model.EnvProperties{}
	if err := r.transport.Download(ctx, client, path.Join(cfg.RemoteDir, cfg.EnvPropsFile), cfg.WorkDir); err != nil {
		r.logger.Warn().Err(err).Msg("Environment properties download failed")
	} else {
		lines, err := readLines(filepath.Join(cfg.WorkDir, cfg.EnvPropsFile))
		if err != nil {
			r.logger.Warn().Err(err).Msg("Could not read environment properties")
		} else {
			props = report.ParseEnvProperties(lines)
		}
	}

	lines, err := readLines(filepath.Join(cfg.WorkDir, cfg.ReportFile))
	if err != nil {
		return nil, fmt.Errorf("could not read report: %w", err)
	}

	sections := report.SplitSections(lines)
	records, err := report.ParseSweepTable(sections.RawSweep)
	if err != nil {
		return nil, fmt.Errorf("could not parse sweep table: %w", err)
	}

	rows := sweep.Aggregate(records, startThread, maxThread)
	r.applyEnvMetadata(rows, cfg, props)

	r.logger.Info().
		Int("records", len(records)).
		Int("rows", len(rows)).
		Msg("Sweep table aggregated")

	return rows, nil
}

// applyEnvMetadata copies run-level environment metadata onto every row.
func (r *Runner) applyEnvMetadata(rows []model.AggregatedRow, cfg Config, props model.EnvProperties) {
	guestDistro := cfg.GuestDistro
	if guestDistro == "" {
		guestDistro = props.OSType
	}
	for i := range rows {
		rows[i].HostType = cfg.HostType
		rows[i].HostBy = cfg.HostBy
		rows[i].GuestSize = cfg.GuestSize
		rows[i].GuestDistro = guestDistro
		rows[i].HostOS = props.HostVersion
		rows[i].KernelVersion = props.KernelVersion
	}
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	text := strings.ReplaceAll(string(data), "\r\n", "\n")
	return strings.Split(text, "\n"), nil
}
