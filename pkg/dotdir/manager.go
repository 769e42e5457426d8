// Package dotdir resolves the .textstream/ and ~/.textstream directories that
// hold the textstream config file.
package dotdir

import (
	"fmt"
	"os"
	"path/filepath"
)

const (
	// dirName is the name of the textstream directory.
	dirName = ".textstream"
)

type Manager struct{}

func NewManager() *Manager {
	return &Manager{}
}

// Target returns the absolute path to a .textstream/ directory.
// Order of precedence is as follows:
//  1. Provided override (created if missing)
//  2. Local ./.textstream/ dir
//  3. Home ~/.textstream/ dir
//
// An empty path is returned when no override is given and neither the local
// nor the home directory exists.
func (m *Manager) Target(overrideDir string) (string, error) {
	if overrideDir != "" {
		return m.create(overrideDir)
	}

	if dir, ok := m.existing(); ok {
		return dir, nil
	}

	return "", nil
}

// Create behaves like Target but falls back to creating ~/.textstream/ when
// nothing was found.
func (m *Manager) Create(overrideDir string) (string, error) {
	dir, err := m.Target(overrideDir)
	if err != nil || dir != "" {
		return dir, err
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}

	return m.create(filepath.Join(home, dirName))
}

func (m *Manager) create(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating textstream directory %s: %w", dir, err)
	}

	return filepath.Abs(dir)
}

// existing checks the working directory, then the home directory, for a
// .textstream/ directory.
func (m *Manager) existing() (string, bool) {
	candidates := make([]string, 0, 2)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, dirName))
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, dirName))
	}

	for _, dir := range candidates {
		info, err := os.Stat(dir)
		if err == nil && info.IsDir() {
			return dir, true
		}
	}

	return "", false
}
