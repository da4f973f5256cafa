// Moderation rule corpus: a directory of plain-text documents, loaded
// wholesale and exposed as an immutable ordered snapshot.
package rules

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"
)

// Manager loads rule documents from a directory. Reload swaps the exposed
// snapshot in one atomic operation; readers never observe a half-updated
// corpus. Documents are ordered lexicographically by filename, so corpus
// order is deterministic across platforms.
type Manager struct {
	Logger *slog.Logger
	Dir    string

	snapshot atomic.Pointer[[]string]
}

func NewManager(logger *slog.Logger, dir string) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	m := &Manager{
		Logger: logger.With("component", "rules"),
		Dir:    dir,
	}
	empty := []string{}
	m.snapshot.Store(&empty)
	return m
}

// Reload reads every regular file in the rules directory into a fresh list,
// then swaps the snapshot. A missing or unreadable directory is not fatal:
// the previous snapshot stays live. A read failure on an individual file
// aborts the reload (old snapshot kept) and is returned to the caller.
func (m *Manager) Reload() error {
	entries, err := os.ReadDir(m.Dir)
	if err != nil {
		m.Logger.Warn("rules directory not readable, keeping current snapshot", "dir", m.Dir, "err", err)
		return nil
	}

	// os.ReadDir returns entries sorted by filename
	fresh := make([]string, 0, len(entries))
	for _, ent := range entries {
		if ent.IsDir() {
			continue
		}
		raw, err := os.ReadFile(filepath.Join(m.Dir, ent.Name()))
		if err != nil {
			return fmt.Errorf("reading rule document %s: %w", ent.Name(), err)
		}
		fresh = append(fresh, string(raw))
	}

	m.snapshot.Store(&fresh)
	m.Logger.Info("rule corpus reloaded", "dir", m.Dir, "count", len(fresh))
	return nil
}

// GetRules returns the current snapshot. Callers must treat the returned
// slice as read-only.
func (m *Manager) GetRules() []string {
	return *m.snapshot.Load()
}
