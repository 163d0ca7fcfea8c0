package sqlexec

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/cespare/xxhash/v2"
)

// Checkpoint records how far a file run has progressed: the first
// statement index that has not completed yet, a checksum of the parsed
// script to detect source edits between runs, and the counters
// accumulated so far.
type Checkpoint struct {
	File           string `json:"file"`
	ScriptChecksum uint64 `json:"script_checksum"`
	NextIndex      int    `json:"next_index"`
	Stats          *Stats `json:"stats"`
}

// CheckpointStore persists per-file run progress. When a store is
// configured on the runner:
//
//  1. A checkpoint is saved after each statement completes.
//  2. A retry attempt (or a fresh process) resumes at NextIndex instead
//     of redoing finished statements, provided the script checksum still
//     matches the source file.
//  3. The checkpoint is cleared when the file run completes.
//
// Statements near the interruption point may be partially re-executed on
// resume; keep side-effecting statements idempotent if you enable
// checkpointing, the same way a retried run must be safe from a clean
// state.
type CheckpointStore interface {
	// Load retrieves the checkpoint for file.
	// Returns (nil, nil) if no checkpoint exists (fresh start).
	Load(ctx context.Context, file string) (*Checkpoint, error)

	// Save persists the checkpoint. Called after each completed statement.
	Save(ctx context.Context, cp *Checkpoint) error

	// Clear removes the checkpoint for file. Called after a successful run.
	Clear(ctx context.Context, file string) error
}

// FileCheckpointStore keeps checkpoints as JSON sidecar files in a
// directory, one per source file.
type FileCheckpointStore struct {
	dir string
}

// NewFileCheckpointStore returns a store writing under dir, creating it
// on first save if needed.
func NewFileCheckpointStore(dir string) *FileCheckpointStore {
	return &FileCheckpointStore{dir: dir}
}

func (s *FileCheckpointStore) path(file string) string {
	base := filepath.Base(file)
	sum := xxhash.Sum64String(file)
	return filepath.Join(s.dir, base+"."+strconv.FormatUint(sum, 16)+".checkpoint.json")
}

// Load implements CheckpointStore.
func (s *FileCheckpointStore) Load(_ context.Context, file string) (*Checkpoint, error) {
	data, err := os.ReadFile(s.path(file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	cp := &Checkpoint{}
	if err := json.Unmarshal(data, cp); err != nil {
		return nil, fmt.Errorf("load checkpoint: %w", err)
	}
	return cp, nil
}

// Save implements CheckpointStore.
func (s *FileCheckpointStore) Save(_ context.Context, cp *Checkpoint) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	tmp := s.path(cp.File) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	if err := os.Rename(tmp, s.path(cp.File)); err != nil {
		return fmt.Errorf("save checkpoint: %w", err)
	}
	return nil
}

// Clear implements CheckpointStore.
func (s *FileCheckpointStore) Clear(_ context.Context, file string) error {
	err := os.Remove(s.path(file))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}
