package recording

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// TimestampFormat names recordings after the UTC time they were saved.
const TimestampFormat = "2006-01-02T15:04:05.000Z"

// ErrNoDirectory is returned when the storage location cannot be resolved.
var ErrNoDirectory = errors.New("recording directory unavailable")

// Store writes recorded payloads under an application-managed directory.
type Store struct {
	resolveDir func() (string, error)
	ext        string
	now        func() time.Time
}

// NewStore creates a store that asks resolveDir for its directory on every
// save and names audio files with ext.
func NewStore(resolveDir func() (string, error), ext string) *Store {
	return &Store{resolveDir: resolveDir, ext: ext, now: time.Now}
}

// Save writes an audio payload and returns its path.
func (s *Store) Save(payload []byte) (string, error) {
	return s.SaveAs(s.ext, payload)
}

// SaveAs writes payload with the given extension and returns its path.
func (s *Store) SaveAs(ext string, payload []byte) (string, error) {
	dir, err := s.resolveDir()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrNoDirectory, err)
	}
	if dir == "" {
		return "", ErrNoDirectory
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create recording directory: %w", err)
	}

	path := filepath.Join(dir, s.now().UTC().Format(TimestampFormat)+"."+ext)
	if err := os.WriteFile(path, payload, 0o644); err != nil {
		return "", fmt.Errorf("write recording: %w", err)
	}
	return path, nil
}
