package cli

// This file contains the run command: it executes one benchmark run from a
// run definition file, prints the aggregated rows and records the outcome.

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/iosweep/iosweep/history"
	"github.com/iosweep/iosweep/model"
	"github.com/iosweep/iosweep/remote"
	"github.com/iosweep/iosweep/run"
	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"
)

func (a *App) runBenchmark(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return cli.Exit("expected exactly one run definition file", 2)
	}

	cfg, err := loadRunFile(ctx.Args().First())
	if err != nil {
		return err
	}
	if t := ctx.Duration("timeout"); t > 0 {
		cfg.Timeout = t
	}

	var opts []remote.SSHOption
	if f := ctx.String("identity-file"); f != "" {
		opts = append(opts, remote.WithIdentityFile(f))
	}
	if f := ctx.String("known-hosts"); f != "" {
		opts = append(opts, remote.WithKnownHostsFile(f))
	}
	ssh := remote.NewSSH(a.logger, opts...)
	defer ssh.Close()

	startTime := time.Now()
	runner := run.New(a.logger, ssh, ssh)
	result, err := runner.Run(ctx.Context, cfg)
	if err != nil {
		// Configuration errors abort before any remote work starts.
		return err
	}

	a.logger.Info().
		Str("verdict", string(result.Verdict)).
		Str("summary", result.Summary).
		Msg("Benchmark run finished")

	if len(result.Rows) > 0 {
		printRows(result.Rows)
	}

	if !ctx.Bool("no-record") {
		a.recordRun(cfg, result, startTime, time.Since(startTime))
	}

	if result.Verdict != model.VerdictPass {
		return cli.Exit(fmt.Sprintf("run finished: %s", result.Verdict), 1)
	}
	return nil
}

// recordRun saves a local record of the run. Failures only cost the record.
func (a *App) recordRun(cfg run.Config, result model.Result, startTime time.Time, duration time.Duration) {
	record := model.RunRecord{
		ID:        newRunID(),
		Timestamp: startTime,
		Duration:  duration,
		Verdict:   result.Verdict,
		Summary:   result.Summary,
		Rows:      result.Rows,
	}
	if client, server, err := run.ResolveRoles(cfg.Machines); err == nil {
		record.ClientHost = client.Host()
		record.ServerHost = server.Host()
	}

	root, err := history.Root(".")
	if err != nil {
		a.logger.Warn().Err(err).Msg("Could not create history directory")
		return
	}
	if _, err := history.SaveRecord(a.logger, root, record); err != nil {
		a.logger.Warn().Err(err).Msg("Could not save run record")
	}
}

// printRows renders the aggregated rows as a table on stdout.
func printRows(rows []model.AggregatedRow) {
	table := tablewriter.NewWriter(os.Stdout)
	table.Header("QDepth", "BlockSizeKB",
		"SeqReadIOPS", "SeqReadLat(us)", "RandReadIOPS", "RandReadLat(us)",
		"SeqWriteIOPS", "SeqWriteLat(us)", "RandWriteIOPS", "RandWriteLat(us)")

	for _, row := range rows {
		table.Append([]string{
			strconv.Itoa(row.Concurrency),
			strconv.Itoa(row.BlockSizeKB),
			fmtMetric(row.SeqReadIOPS),
			fmtMetric(row.SeqReadLatencyUsec),
			fmtMetric(row.RandReadIOPS),
			fmtMetric(row.RandReadLatencyUsec),
			fmtMetric(row.SeqWriteIOPS),
			fmtMetric(row.SeqWriteLatencyUsec),
			fmtMetric(row.RandWriteIOPS),
			fmtMetric(row.RandWriteLatencyUsec),
		})
	}

	table.Render()
}

// fmtMetric renders a nullable metric; absent values stay empty.
func fmtMetric(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', 1, 64)
}

// newRunID generates a unique ID for a run (16 random bytes, hex encoded).
func newRunID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
