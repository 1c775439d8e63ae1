// Package workspace manages scratch directories used by builds and the
// publish checkout.
package workspace

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/IQDevs/blog/internal/logfields"
)

// Manager handles workspace directories, either ephemeral (timestamped temp
// dirs removed on Cleanup) or persistent (a fixed directory kept across runs,
// e.g. the publish repository checkout).
type Manager struct {
	baseDir    string
	dir        string
	persistent bool
}

// NewManager creates a workspace manager with ephemeral timestamped directories.
func NewManager(baseDir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	return &Manager{baseDir: baseDir}
}

// NewPersistentManager creates a workspace manager using a fixed directory
// (baseDir/subdir) that Cleanup leaves in place.
func NewPersistentManager(baseDir, subdir string) *Manager {
	if baseDir == "" {
		baseDir = os.TempDir()
	}
	if subdir == "" {
		subdir = "working"
	}
	return &Manager{
		baseDir:    baseDir,
		dir:        filepath.Join(baseDir, subdir),
		persistent: true,
	}
}

// Create ensures the workspace directory exists. Ephemeral managers get a
// fresh timestamped directory per call.
func (m *Manager) Create() error {
	if m.persistent {
		if err := os.MkdirAll(m.dir, 0o750); err != nil {
			return fmt.Errorf("create persistent workspace: %w", err)
		}
		slog.Debug("Using persistent workspace", logfields.Path(m.dir))
		return nil
	}

	stamp := time.Now().Format("20060102-150405")
	dir := filepath.Join(m.baseDir, fmt.Sprintf("blog-%s", stamp))
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}

	m.dir = dir
	slog.Debug("Created workspace", logfields.Path(dir))
	return nil
}

// Path returns the workspace directory, empty until Create succeeds.
func (m *Manager) Path() string { return m.dir }

// Cleanup removes ephemeral workspaces. Persistent workspaces are kept.
func (m *Manager) Cleanup() error {
	if m.dir == "" || m.persistent {
		return nil
	}
	if err := os.RemoveAll(m.dir); err != nil {
		return fmt.Errorf("cleanup workspace: %w", err)
	}
	slog.Debug("Cleaned up workspace", logfields.Path(m.dir))
	m.dir = ""
	return nil
}

// Subdir creates and returns a subdirectory within the workspace.
func (m *Manager) Subdir(name string) (string, error) {
	if m.dir == "" {
		return "", fmt.Errorf("workspace not created")
	}
	sub := filepath.Join(m.dir, name)
	if err := os.MkdirAll(sub, 0o750); err != nil {
		return "", fmt.Errorf("create subdirectory: %w", err)
	}
	return sub, nil
}
