package document

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Store writes and removes uploaded file blobs under a single directory.
// Files are always addressed by their generated stored name, never by a
// caller-supplied path.
type Store struct {
	dir string
}

// NewStore creates the upload directory if needed and returns a Store.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("upload directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Save writes the uploaded bytes to disk under storedName.
func (s *Store) Save(storedName string, r io.Reader) error {
	f, err := os.OpenFile(s.Path(storedName), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create stored file: %w", err)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		os.Remove(f.Name())
		return fmt.Errorf("failed to write stored file: %w", err)
	}

	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return fmt.Errorf("failed to close stored file: %w", err)
	}
	return nil
}

// Open opens a stored file for reading.
func (s *Store) Open(storedName string) (*os.File, error) {
	f, err := os.Open(s.Path(storedName))
	if err != nil {
		return nil, fmt.Errorf("failed to open stored file: %w", err)
	}
	return f, nil
}

// Remove deletes a stored file. Missing files are not an error: the
// metadata row may already be gone or the blob never written.
func (s *Store) Remove(storedName string) error {
	err := os.Remove(s.Path(storedName))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove stored file: %w", err)
	}
	return nil
}

// Path returns the on-disk location for a stored name. The base name is
// flattened to keep lookups inside the upload directory.
func (s *Store) Path(storedName string) string {
	return filepath.Join(s.dir, filepath.Base(storedName))
}
