// Package cache persists bag metadata between the extract and filter actions.
//
// The store holds one active record, the most recently inspected bag, and
// any number of write-only archival records named after their bags.
package cache

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pandeptwidyaop/bagfilter/internal/models"
)

// recordMode is the permission of active and archival records.
const recordMode os.FileMode = 0644

// Store is a file-backed metadata store.
type Store struct {
	path string
}

// New creates a store whose active record lives at path. Archival records
// are kept next to it.
func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the location of the active record.
func (s *Store) Path() string {
	return s.path
}

// Load reads the active record. A missing record yields (nil, nil).
func (s *Store) Load() (*models.BagMetadata, error) {
	data, err := os.ReadFile(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read cache: %w", err)
	}

	var meta models.BagMetadata
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("failed to parse cache %s: %w", s.Path(), err)
	}
	return &meta, nil
}

// Save overwrites the active record.
func (s *Store) Save(meta *models.BagMetadata) error {
	return s.write(s.Path(), meta)
}

// Archive writes the per-bag record and returns its path. Archival records
// are never read back.
func (s *Store) Archive(meta *models.BagMetadata) (string, error) {
	path := s.ArchivePath(meta.Path)
	if err := s.write(path, meta); err != nil {
		return "", err
	}
	return path, nil
}

// ArchivePath derives the archival record location from a bag path.
func (s *Store) ArchivePath(bagPath string) string {
	base := filepath.Base(bagPath)
	if ext := filepath.Ext(base); ext != "" {
		base = strings.TrimSuffix(base, ext)
	}
	return filepath.Join(filepath.Dir(s.path), base+".yaml")
}

// Remove deletes the active record. Removing a missing record is not an error.
func (s *Store) Remove() error {
	err := os.Remove(s.Path())
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to remove cache: %w", err)
	}
	return nil
}

// ModTime reports when the active record was last written.
func (s *Store) ModTime() (time.Time, bool, error) {
	info, err := os.Stat(s.Path())
	if errors.Is(err, os.ErrNotExist) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	return info.ModTime(), true, nil
}

func (s *Store) write(path string, meta *models.BagMetadata) error {
	if meta == nil {
		return errors.New("cannot store nil metadata")
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(meta); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("failed to encode metadata: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create cache directory: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(buf.Bytes()); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Chmod(recordMode); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
