// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"os"
	"path/filepath"
)

// storage is the location of the archive bytes. The path is stable for the
// lifetime of the archive, so every backend can be reopened from it.
type storage struct {
	path string

	// tempDir is owned by the archive and removed on release, empty if the
	// bytes live in a caller-chosen location
	tempDir string
}

// newTempStorage returns a storage for name inside a new temporary directory.
func newTempStorage(name string) (*storage, error) {
	dir, err := os.MkdirTemp("", "arkiv-*")
	if err != nil {
		return nil, err
	}
	return &storage{path: filepath.Join(dir, name), tempDir: dir}, nil
}

// newDirStorage returns a storage for name inside dir, which is created if absent.
func newDirStorage(dir string, name string, mode os.FileMode) (*storage, error) {
	if err := os.MkdirAll(dir, mode.Perm()); err != nil {
		return nil, err
	}
	return &storage{path: filepath.Join(dir, name)}, nil
}

// create creates or truncates the file at the storage path.
func (s *storage) create() (*os.File, error) {
	return os.Create(s.path)
}

// release removes the temporary directory, if any. Files in caller-chosen
// locations are kept.
func (s *storage) release() error {
	if s.tempDir == "" {
		return nil
	}
	return removeTempDir(s.tempDir)
}

// discard removes the stored file and the temporary directory.
func (s *storage) discard() error {
	if s.tempDir == "" {
		if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil
	}
	return removeTempDir(s.tempDir)
}

func removeTempDir(dir string) error {
	return os.RemoveAll(dir)
}
