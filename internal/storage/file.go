package storage

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// File stores the state blob as a single JSON file.
type File struct {
	path string
}

// NewFile returns a File store at path. The file is created on first save.
func NewFile(path string) *File {
	return &File{path: path}
}

// LoadState returns the file contents, or nil if the file does not exist.
func (f *File) LoadState() ([]byte, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read state file %s: %w", f.path, err)
	}
	return data, nil
}

// SaveState replaces the file by writing a sibling temp file and renaming it,
// so a reader never sees a partial write.
func (f *File) SaveState(data []byte) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create state dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(f.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp state file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write state file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close state file: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return fmt.Errorf("failed to replace state file %s: %w", f.path, err)
	}
	return nil
}

// Close is a no-op so File satisfies the same interface as DB.
func (f *File) Close() error {
	return nil
}
