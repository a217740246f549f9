package pipeline

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Checkpoint records how far a reprocessing run got, so an interrupted
// run resumes past the batches that already committed.
type Checkpoint struct {
	LastRowID int64     `json:"last_row_id"`
	StartedAt time.Time `json:"started_at"`
	SavedAt   time.Time `json:"saved_at"`
	Stats     struct {
		Updated int `json:"updated"`
		Flagged int `json:"flagged"`
		Deleted int `json:"deleted"`
	} `json:"stats"`
}

// CheckpointManager persists reprocessing state as a small JSON file next
// to the store.
type CheckpointManager struct {
	filePath string
}

func NewCheckpointManager(filePath string) *CheckpointManager {
	return &CheckpointManager{filePath: filePath}
}

// Save writes the checkpoint after a batch commit.
func (c *CheckpointManager) Save(cp Checkpoint) error {
	cp.SavedAt = time.Now()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal checkpoint: %w", err)
	}
	if err := os.WriteFile(c.filePath, data, 0o644); err != nil {
		return fmt.Errorf("write checkpoint: %w", err)
	}
	return nil
}

// Load returns the saved checkpoint, or nil when none exists.
func (c *CheckpointManager) Load() (*Checkpoint, error) {
	data, err := os.ReadFile(c.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read checkpoint: %w", err)
	}

	var cp Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, fmt.Errorf("unmarshal checkpoint: %w", err)
	}
	return &cp, nil
}

// Delete removes the checkpoint file after a completed run.
func (c *CheckpointManager) Delete() error {
	if err := os.Remove(c.filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete checkpoint: %w", err)
	}
	return nil
}
