package blob

import (
	"fmt"
	"os"
	"path/filepath"
)

// Store persists content-addressed blobs on disk under a base directory.
// Blobs are keyed by their content hash; the path fans out on the first two
// hash characters to keep directory sizes bounded.
type Store struct {
	baseDir string
}

// NewStore ensures the base directory exists and returns a handle.
func NewStore(baseDir string) (*Store, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("blob store: base directory is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("create blob directory: %w", err)
	}
	return &Store{baseDir: baseDir}, nil
}

// Write stores the blob under its hash. Writes go to a temp file first and are
// renamed into place so readers never observe partial content.
func (s *Store) Write(hash string, data []byte) error {
	path := s.resolve(hash)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("prepare blob directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), ".tmp-*")
	if err != nil {
		return fmt.Errorf("create blob temp file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write blob: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("close blob temp file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("finalize blob: %w", err)
	}
	return nil
}

// Read returns the blob bytes for a hash. A missing blob surfaces the
// underlying fs.ErrNotExist so callers can distinguish it from IO failures.
func (s *Store) Read(hash string) ([]byte, error) {
	data, err := os.ReadFile(s.resolve(hash))
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Exists reports whether the blob is present on disk.
func (s *Store) Exists(hash string) bool {
	_, err := os.Stat(s.resolve(hash))
	return err == nil
}

// Delete removes a blob if present.
func (s *Store) Delete(hash string) error {
	if err := os.Remove(s.resolve(hash)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("delete blob: %w", err)
	}
	return nil
}

// Path exposes the underlying absolute path (useful for debugging).
func (s *Store) Path(hash string) string {
	return s.resolve(hash)
}

func (s *Store) resolve(hash string) string {
	fanout := hash
	if len(hash) > 2 {
		fanout = hash[:2]
	}
	return filepath.Join(s.baseDir, fanout, hash)
}
