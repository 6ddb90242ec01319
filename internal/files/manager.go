package files

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"wdicli/internal/config"
)

// Manager provides file management operations rooted at the application
// directories. Relative paths resolve into the data directory unless
// prefixed with "output/" or "logs/".
type Manager struct {
	paths *config.Paths
}

// NewManager creates a new file manager instance
func NewManager(paths *config.Paths) *Manager {
	return &Manager{paths: paths}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	fullPath := m.ResolvePath(path)
	_, err := os.Stat(fullPath)
	exists := err == nil

	slog.Debug("FileExists check",
		slog.String("path", path),
		slog.String("full_path", fullPath),
		slog.Bool("exists", exists))

	return exists
}

// TempPath returns a hidden temporary sibling for finalPath, unique per
// run. Keeping it in the destination directory makes the final rename a
// same-filesystem move.
func (m *Manager) TempPath(finalPath, runID string) string {
	fullPath := m.ResolvePath(finalPath)
	dir := filepath.Dir(fullPath)
	base := filepath.Base(fullPath)
	return filepath.Join(dir, fmt.Sprintf(".%s.%s.tmp", base, runID))
}

// ReplaceFile moves src over dst, creating dst's directory if needed.
// Rename is atomic on the same filesystem; a copy-and-delete fallback
// covers cross-filesystem moves.
func (m *Manager) ReplaceFile(src, dst string) error {
	srcPath := m.ResolvePath(src)
	dstPath := m.ResolvePath(dst)

	slog.Debug("Replacing file",
		slog.String("src", srcPath),
		slog.String("dst", dstPath))

	dstDir := filepath.Dir(dstPath)
	if err := os.MkdirAll(dstDir, 0755); err != nil {
		return fmt.Errorf("failed to create destination directory: %w", err)
	}

	if err := os.Rename(srcPath, dstPath); err == nil {
		return nil
	}

	if err := copyFile(srcPath, dstPath); err != nil {
		return err
	}

	return os.Remove(srcPath)
}

// copyFile copies srcPath to dstPath and syncs the destination
func copyFile(srcPath, dstPath string) error {
	srcFile, err := os.Open(srcPath)
	if err != nil {
		return fmt.Errorf("failed to open source file: %w", err)
	}
	defer srcFile.Close()

	dstFile, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dstFile.Close()

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		return fmt.Errorf("failed to copy file content: %w", err)
	}

	return dstFile.Sync()
}

// RemoveIfExists deletes a file, treating a missing file as success
func (m *Manager) RemoveIfExists(path string) error {
	fullPath := m.ResolvePath(path)
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// GetFileSize returns the size of a file in bytes
func (m *Manager) GetFileSize(path string) (int64, error) {
	fullPath := m.ResolvePath(path)
	info, err := os.Stat(fullPath)
	if err != nil {
		return 0, err
	}
	return info.Size(), nil
}

// ResolvePath resolves a path relative to the appropriate base directory
func (m *Manager) ResolvePath(path string) string {
	// If the path is already absolute, return it as-is
	if filepath.IsAbs(path) {
		return path
	}

	switch {
	case strings.HasPrefix(path, "output/"):
		return m.paths.GetOutputPath(strings.TrimPrefix(path, "output/"))
	case strings.HasPrefix(path, "logs/"):
		return m.paths.GetLogPath(strings.TrimPrefix(path, "logs/"))
	default:
		// Input files live in the data directory
		return m.paths.GetDataPath(path)
	}
}
