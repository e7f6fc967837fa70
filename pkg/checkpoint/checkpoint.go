// Package checkpoint persists community-detection run state as JSON
// files, so an interrupted or failed run can be inspected and rerun
// with identical parameters.
package checkpoint

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/soundprediction/graphling/pkg/partition"
	"github.com/soundprediction/graphling/pkg/types"
)

// ErrInvalidRunID is returned when a run ID contains invalid characters
var ErrInvalidRunID = errors.New("invalid run ID: contains path traversal or invalid characters")

// Step represents a stage of a detection run
type Step string

const (
	StepInitial    Step = "initial"
	StepPrepared   Step = "prepared"
	StepDetected   Step = "detected"
	StepSummarized Step = "summarized"
	StepCompleted  Step = "completed"
)

// RunCheckpoint represents the state of a community-detection run
type RunCheckpoint struct {
	RunID  string           `json:"run_id"`
	Step   Step             `json:"step"`
	Params partition.Params `json:"params"`

	CreatedAt     time.Time `json:"created_at"`
	LastUpdatedAt time.Time `json:"last_updated_at"`
	AttemptCount  int       `json:"attempt_count"`
	LastError     string    `json:"last_error,omitempty"`

	// Progress
	LevelsCompleted int                `json:"levels_completed"`
	Communities     []*types.Community `json:"communities,omitempty"`
}

// Manager manages detection-run checkpoints on disk
type Manager struct {
	checkpointDir string
}

// NewManager creates a checkpoint manager. An empty dir defaults to
// os.TempDir()/graphling-checkpoints.
func NewManager(checkpointDir string) (*Manager, error) {
	if checkpointDir == "" {
		checkpointDir = filepath.Join(os.TempDir(), "graphling-checkpoints")
	}

	if err := os.MkdirAll(checkpointDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create checkpoint directory: %w", err)
	}

	return &Manager{checkpointDir: checkpointDir}, nil
}

// validateRunID checks that the run ID is safe for use in file paths.
// It rejects IDs containing path separators, path traversal sequences,
// or null bytes.
func validateRunID(runID string) error {
	if runID == "" {
		return ErrInvalidRunID
	}
	if strings.Contains(runID, "..") {
		return ErrInvalidRunID
	}
	if strings.ContainsAny(runID, `/\`) {
		return ErrInvalidRunID
	}
	if strings.ContainsRune(runID, '\x00') {
		return ErrInvalidRunID
	}
	return nil
}

// isPathWithinDirectory checks that the resolved path is within the
// expected directory, as defense-in-depth against path traversal.
func isPathWithinDirectory(path, directory string) bool {
	cleanPath := filepath.Clean(path)
	cleanDir := filepath.Clean(directory)

	if !strings.HasSuffix(cleanDir, string(filepath.Separator)) {
		cleanDir += string(filepath.Separator)
	}
	return strings.HasPrefix(cleanPath, cleanDir) || cleanPath == filepath.Clean(directory)
}

// Path returns the file path for a run's checkpoint, rejecting unsafe ids.
func (m *Manager) Path(runID string) (string, error) {
	if err := validateRunID(runID); err != nil {
		return "", err
	}

	fullPath := filepath.Join(m.checkpointDir, fmt.Sprintf("run_%s.json", runID))
	if !isPathWithinDirectory(fullPath, m.checkpointDir) {
		return "", ErrInvalidRunID
	}
	return fullPath, nil
}

// Save persists the checkpoint to disk, atomically via temp+rename.
func (m *Manager) Save(ctx context.Context, checkpoint *RunCheckpoint) error {
	checkpoint.LastUpdatedAt = time.Now()
	if checkpoint.CreatedAt.IsZero() {
		checkpoint.CreatedAt = checkpoint.LastUpdatedAt
	}

	data, err := json.MarshalIndent(checkpoint, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal checkpoint: %w", err)
	}

	path, err := m.Path(checkpoint.RunID)
	if err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write checkpoint file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return fmt.Errorf("failed to rename checkpoint file: %w", err)
	}
	return nil
}

// Load retrieves a checkpoint from disk. A missing checkpoint returns
// (nil, nil).
func (m *Manager) Load(ctx context.Context, runID string) (*RunCheckpoint, error) {
	path, err := m.Path(runID)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read checkpoint file: %w", err)
	}

	var checkpoint RunCheckpoint
	if err := json.Unmarshal(data, &checkpoint); err != nil {
		return nil, fmt.Errorf("failed to unmarshal checkpoint: %w", err)
	}
	return &checkpoint, nil
}

// Delete removes a checkpoint from disk. Deleting a missing checkpoint
// is not an error.
func (m *Manager) Delete(ctx context.Context, runID string) error {
	path, err := m.Path(runID)
	if err != nil {
		return err
	}

	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete checkpoint file: %w", err)
	}
	return nil
}

// Exists checks if a checkpoint exists for a run
func (m *Manager) Exists(ctx context.Context, runID string) (bool, error) {
	path, err := m.Path(runID)
	if err != nil {
		return false, err
	}

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to check checkpoint existence: %w", err)
	}
	return true, nil
}

// List returns all checkpoints in the checkpoint directory
func (m *Manager) List(ctx context.Context) ([]*RunCheckpoint, error) {
	entries, err := os.ReadDir(m.checkpointDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read checkpoint directory: %w", err)
	}

	var checkpoints []*RunCheckpoint
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		data, err := os.ReadFile(filepath.Join(m.checkpointDir, entry.Name()))
		if err != nil {
			continue
		}

		var checkpoint RunCheckpoint
		if err := json.Unmarshal(data, &checkpoint); err != nil {
			continue
		}
		checkpoints = append(checkpoints, &checkpoint)
	}
	return checkpoints, nil
}

// RecordError records a failure on the run's checkpoint
func (m *Manager) RecordError(ctx context.Context, runID string, runErr error) error {
	checkpoint, err := m.Load(ctx, runID)
	if err != nil {
		return err
	}
	if checkpoint == nil {
		return fmt.Errorf("checkpoint not found for run %s", runID)
	}

	checkpoint.AttemptCount++
	checkpoint.LastError = runErr.Error()
	return m.Save(ctx, checkpoint)
}

// Dir returns the checkpoint directory path
func (m *Manager) Dir() string {
	return m.checkpointDir
}

// CleanOld removes checkpoints older than maxAge and reports how many
// were removed.
func (m *Manager) CleanOld(ctx context.Context, maxAge time.Duration) (int, error) {
	checkpoints, err := m.List(ctx)
	if err != nil {
		return 0, err
	}

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for _, checkpoint := range checkpoints {
		if checkpoint.LastUpdatedAt.Before(cutoff) {
			if err := m.Delete(ctx, checkpoint.RunID); err != nil {
				continue
			}
			removed++
		}
	}
	return removed, nil
}
