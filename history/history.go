// Package history persists and loads local records of past benchmark runs.
package history

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iosweep/iosweep/model"
	"github.com/rs/zerolog"
)

const (
	rootDirName    = ".iosweep"
	recordFileName = "run.json"
)

// Entry is one loaded run record plus its location on disk.
type Entry struct {
	Record   model.RunRecord
	FullPath string
}

// Root returns the history directory under baseDir, creating it if needed.
func Root(baseDir string) (string, error) {
	root := filepath.Join(baseDir, rootDirName, "history")
	if err := os.MkdirAll(root, 0o755); err != nil {
		return "", fmt.Errorf("failed to create history directory: %w", err)
	}
	return root, nil
}

// SaveRecord writes the run record into its own directory under root,
// named <timestamp>-<short id>.
func SaveRecord(logger zerolog.Logger, root string, record model.RunRecord) (string, error) {
	shortID := record.ID
	if len(shortID) > 8 {
		shortID = shortID[:8]
	}
	runName := fmt.Sprintf("%s-%s", record.Timestamp.Format("20060102-150405"), shortID)
	runDir := filepath.Join(root, runName)

	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run record: %w", err)
	}

	recordPath := filepath.Join(runDir, recordFileName)
	if err := os.WriteFile(recordPath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write run record: %w", err)
	}

	logger.Debug().Str("dir", runDir).Str("id", record.ID).Msg("Recorded benchmark run")
	return runDir, nil
}

// LoadEntries loads all run records under root. Unparseable records are
// logged and skipped.
func LoadEntries(logger zerolog.Logger, root string) ([]Entry, error) {
	var entries []Entry

	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if d.IsDir() {
			recordPath := filepath.Join(path, recordFileName)
			if _, err := os.Stat(recordPath); err == nil {
				record, err := parseRecord(recordPath)
				if err != nil {
					logger.Warn().Err(err).Str("path", recordPath).Msg("Failed to parse run record")
					return nil
				}

				entries = append(entries, Entry{
					Record:   record,
					FullPath: path,
				})
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to walk history directory: %w", err)
	}

	return entries, nil
}

func parseRecord(path string) (model.RunRecord, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return model.RunRecord{}, err
	}

	var record model.RunRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.RunRecord{}, err
	}

	return record, nil
}
