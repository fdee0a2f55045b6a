// Package backup produces timestamped full-store snapshots. One snapshot is
// taken after every successful mutation; the files are immutable and never
// deleted by the engine (retention is unbounded — a deliberate open
// question, not an oversight).
package backup

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Snapshotter is the slice of repository.Store the manager needs.
type Snapshotter interface {
	Snapshot(ctx context.Context, dst string) error
	Ext() string
}

// Manager writes snapshots into a dedicated directory, named
// backup_YYYYMMDD_HHMMSS plus the store's file extension. Second
// resolution: repeated snapshots within the same second reuse the slot,
// last write wins.
type Manager struct {
	store  Snapshotter
	dir    string
	logger *slog.Logger
	now    func() time.Time
}

// NewManager creates a manager writing into dir. The directory is created
// lazily on the first snapshot.
func NewManager(store Snapshotter, dir string, logger *slog.Logger) *Manager {
	return &Manager{
		store:  store,
		dir:    dir,
		logger: logger,
		now:    time.Now,
	}
}

// Snapshot writes one full-store snapshot and returns its path.
func (m *Manager) Snapshot(ctx context.Context) (string, error) {
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: creating directory %s: %w", m.dir, err)
	}

	name := "backup_" + m.now().Format("20060102_150405") + m.store.Ext()
	dst := filepath.Join(m.dir, name)

	// Same-second collision: replace the slot. Removing first also keeps
	// snapshot mechanisms that refuse to overwrite (VACUUM INTO) happy.
	if err := os.Remove(dst); err != nil && !os.IsNotExist(err) {
		return "", fmt.Errorf("backup: clearing slot %s: %w", dst, err)
	}

	if err := m.store.Snapshot(ctx, dst); err != nil {
		return "", fmt.Errorf("backup: writing %s: %w", dst, err)
	}

	m.logger.Debug("backup written", slog.String("path", dst))
	return dst, nil
}

// AfterMutation takes a best-effort snapshot. The triggering operation has
// already committed, so a failed backup is logged and swallowed, never
// surfaced to the caller.
func (m *Manager) AfterMutation(ctx context.Context) {
	if _, err := m.Snapshot(ctx); err != nil {
		m.logger.Warn("backup failed", slog.String("error", err.Error()))
	}
}
