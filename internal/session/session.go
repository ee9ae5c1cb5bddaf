// Package session persists a user's working state between runs.
//
// The core packages are stateless; the CLI owns the session object and
// passes its contents into each operation explicitly.
package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/rumor-ml/taxease/internal/domain"
)

// CurrentVersion is the current session file format version
const CurrentVersion = 1

// Session carries the state worth keeping between runs: the income profile
// the user last entered and the report last generated from it.
type Session struct {
	Version int                   `json:"version"`
	Profile *domain.IncomeProfile `json:"profile,omitempty"`
	Report  *domain.TaxReport     `json:"report,omitempty"`
	SavedAt time.Time             `json:"savedAt"`
}

// New creates an empty session at the current version.
func New() *Session {
	return &Session{Version: CurrentVersion}
}

// Load reads a session file from disk.
// Returns os.IsNotExist error if the file doesn't exist (caller should
// handle by starting fresh).
func Load(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err // Preserve os.IsNotExist for caller
	}

	var s Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse session file %s: %w", path, err)
	}

	if s.Version != CurrentVersion {
		return nil, fmt.Errorf("unsupported session version %d in %s (expected %d)",
			s.Version, path, CurrentVersion)
	}

	return &s, nil
}

// Save writes the session atomically: temp file in the same directory, then
// rename. A crash mid-save leaves the previous file intact.
func (s *Session) Save(path string) error {
	s.Version = CurrentVersion
	s.SavedAt = time.Now()

	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create session directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp session file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write session data: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp session file: %w", err)
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to finalize session file %s: %w", path, err)
	}
	return nil
}
