// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"time"
)

// TargetDisk is the [Target] backed by the local filesystem.
type TargetDisk struct{}

// NewTargetDisk returns a [Target] for the local filesystem.
func NewTargetDisk() *TargetDisk {
	return &TargetDisk{}
}

// CreateDir creates path and all missing parents with mode (respecting umask).
func (d *TargetDisk) CreateDir(path string, mode fs.FileMode) error {
	return os.MkdirAll(path, mode.Perm())
}

// CreateFile creates a file at path with src as content, see [Target].
func (d *TargetDisk) CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error) {
	flags := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if !overwrite {
		flags |= os.O_EXCL
	}

	f, err := os.OpenFile(path, flags, mode.Perm())
	if err != nil {
		return 0, err
	}

	n, err := io.Copy(newLimitErrorWriter(f, maxSize), src)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = cerr
	}
	if err != nil {
		return n, fmt.Errorf("write %s: %w", path, err)
	}
	return n, nil
}

// CreateSymlink creates newname as a symbolic link to oldname, see [Target].
func (d *TargetDisk) CreateSymlink(oldname string, newname string, overwrite bool) error {
	if overwrite {
		if err := os.Remove(newname); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return err
		}
	}
	return os.Symlink(oldname, newname)
}

// Lstat returns the FileInfo structure describing the named file without following symlinks.
func (d *TargetDisk) Lstat(name string) (fs.FileInfo, error) {
	return os.Lstat(name)
}

// Chmod changes the mode of the named file to mode, independent of the umask.
func (d *TargetDisk) Chmod(name string, mode fs.FileMode) error {
	return os.Chmod(name, mode.Perm())
}

// Chtimes changes the access and modification times of the named file.
func (d *TargetDisk) Chtimes(name string, atime, mtime time.Time) error {
	return os.Chtimes(name, atime, mtime)
}

// Lchtimes changes the access and modification times of the named symlink. Platforms
// that cannot change symlink times silently keep the current ones.
func (d *TargetDisk) Lchtimes(name string, atime, mtime time.Time) error {
	if !canMaintainSymlinkTimestamps {
		return nil
	}
	return lchtimes(name, atime, mtime)
}
