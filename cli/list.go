package cli

// This file contains the list command for displaying previous benchmark runs.

import (
	"fmt"
	"sort"
	"time"

	"github.com/iosweep/iosweep/history"
	"github.com/iosweep/iosweep/model"
	"github.com/urfave/cli/v2"
)

func (a *App) list(ctx *cli.Context) error {
	limit := ctx.Int("limit")

	root, err := history.Root(".")
	if err != nil {
		return err
	}

	entries, err := history.LoadEntries(a.logger, root)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}

	if len(entries) == 0 {
		fmt.Println("No benchmark runs found")
		return nil
	}

	// Sort by timestamp (newest first)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Record.Timestamp.After(entries[j].Record.Timestamp)
	})

	displayRuns := entries
	if limit > 0 && limit < len(displayRuns) {
		displayRuns = displayRuns[:limit]
	}

	fmt.Printf("\n=== Benchmark runs (%d total) ===\n\n", len(entries))

	for _, entry := range displayRuns {
		rec := entry.Record
		timestamp := rec.Timestamp.Format("2006-01-02 15:04:05")
		duration := rec.Duration.Round(time.Second)

		status := "✓"
		if rec.Verdict != model.VerdictPass {
			status = "✗"
		}

		shortID := rec.ID
		if len(shortID) > 8 {
			shortID = shortID[:8]
		}

		fmt.Printf("%s  %s  [%s]  %s  id=%s\n", status, timestamp, duration, rec.Verdict, shortID)
		if rec.Summary != "" {
			fmt.Printf("   %s\n", rec.Summary)
		}
		if rec.ClientHost != "" {
			fmt.Printf("   Client: %s  Server: %s\n", rec.ClientHost, rec.ServerHost)
		}
		if len(rec.Rows) > 0 {
			fmt.Printf("   Rows: %d concurrency levels\n", len(rec.Rows))
		}
		fmt.Printf("   %s\n", entry.FullPath)
		fmt.Println()
	}

	return nil
}
