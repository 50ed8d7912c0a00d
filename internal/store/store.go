// Package store is the persistence gateway for course outlines: flat
// parent/child/position rows in a workspace-local SQLite database, an
// append-only audit event log, and small best-effort UI state files.
package store

import (
	"os"
	"path/filepath"
)

const (
	workspaceDirName = ".coursetree"
	dbFileName       = "index.sqlite"
)

type Store struct {
	Dir string
}

// DiscoverDir walks up from start looking for an existing workspace dir.
func DiscoverDir(start string) (string, bool) {
	dir := start
	for {
		candidate := filepath.Join(dir, workspaceDirName)
		if st, err := os.Stat(candidate); err == nil && st.IsDir() {
			return candidate, true
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}

// DefaultDir returns the discovered workspace dir, or the would-be
// workspace dir under the current directory when none exists yet.
func DefaultDir() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	if found, ok := DiscoverDir(cwd); ok {
		return found, nil
	}
	return filepath.Join(cwd, workspaceDirName), nil
}

func (s Store) Ensure() error {
	return os.MkdirAll(s.Dir, 0o755)
}

func (s Store) sqlitePath() string {
	return filepath.Join(s.Dir, dbFileName)
}

// SQLitePath exposes the database location for file watchers.
func (s Store) SQLitePath() string {
	return s.sqlitePath()
}
