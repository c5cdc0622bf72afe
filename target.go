// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"time"
)

// Target is the filesystem an archive is unpacked into.
type Target interface {
	// CreateFile creates a file at path with src as content and returns the number of bytes
	// written. An existing file is truncated if overwrite is true, otherwise an error wrapping
	// fs.ErrExist is returned. If maxSize >= 0, writing more than maxSize bytes fails with
	// ErrMaxExtractionSizeExceeded.
	CreateFile(path string, src io.Reader, mode fs.FileMode, overwrite bool, maxSize int64) (int64, error)

	// CreateDir creates path and all missing parents. Existing directories are kept.
	CreateDir(path string, mode fs.FileMode) error

	// CreateSymlink creates newname as a symbolic link to oldname. An existing newname is
	// replaced if overwrite is true.
	CreateSymlink(oldname string, newname string, overwrite bool) error

	// Lstat see docs for os.Lstat.
	Lstat(path string) (fs.FileInfo, error)

	// Chmod see docs for os.Chmod.
	Chmod(name string, mode fs.FileMode) error

	// Chtimes see docs for os.Chtimes.
	Chtimes(name string, atime, mtime time.Time) error

	// Lchtimes changes the times of a symlink itself, not of the file it points to.
	Lchtimes(name string, atime, mtime time.Time) error
}

var (
	errPathTraversal = errors.New("path traversal detected")
	errSymlinkInPath = errors.New("symlink in path")
	errAbsoluteLink  = errors.New("symlink with absolute target")
)

// layout maps archive-internal names onto a root directory of a [Target].
type layout struct {
	t     Target
	root  string
	cfg   *Config
	ready bool
}

// prepare ensures that the root directory exists. It is created with the
// configured directory mode if allowed.
func (l *layout) prepare() error {
	if l.ready {
		return nil
	}

	_, err := l.t.Lstat(l.root)
	switch {
	case err == nil:
	case !errors.Is(err, fs.ErrNotExist):
		return newError(ErrIo, "unpack", l.root, err)
	case !l.cfg.CreateDestination():
		return newError(ErrIo, "unpack", l.root, err)
	default:
		if err := l.t.CreateDir(l.root, l.cfg.CustomCreateDirMode()); err != nil {
			return newError(ErrIo, "unpack", l.root, err)
		}
		l.cfg.Logger().Info("created destination directory", "path", l.root)
	}

	l.ready = true
	return nil
}

// resolve returns the location of name below the root. Unless traversal is
// explicitly allowed, names that leave the root and paths that cross an
// existing symlink are rejected. The last element is only inspected if
// checkLast is set.
func (l *layout) resolve(name string, checkLast bool) (string, error) {
	rel := filepath.FromSlash(strings.TrimSuffix(name, "/"))

	if l.cfg.InsecureAllowTraversal() {
		return filepath.Join(l.root, rel), nil
	}

	if !filepath.IsLocal(rel) {
		return "", newError(ErrInvalidArchive, "unpack", name, errPathTraversal)
	}

	elems := strings.Split(filepath.Clean(rel), string(filepath.Separator))
	if !checkLast {
		elems = elems[:len(elems)-1]
	}
	current := l.root
	for _, elem := range elems {
		current = filepath.Join(current, elem)
		fi, err := l.t.Lstat(current)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return "", newError(ErrIo, "unpack", name, err)
		}
		if fi.Mode()&fs.ModeSymlink != 0 {
			return "", newError(ErrInvalidArchive, "unpack", name, errSymlinkInPath)
		}
	}

	return filepath.Join(l.root, rel), nil
}

// checkLink rejects link targets that are absolute or point outside of the
// root when resolved relative to the link located at name.
func (l *layout) checkLink(name string, linkname string) error {
	if l.cfg.InsecureAllowTraversal() {
		return nil
	}
	if filepath.IsAbs(linkname) || strings.HasPrefix(linkname, "/") {
		return newError(ErrInvalidArchive, "unpack", name, errAbsoluteLink)
	}
	dir := filepath.Dir(filepath.FromSlash(strings.TrimSuffix(name, "/")))
	if !filepath.IsLocal(filepath.Join(dir, filepath.FromSlash(linkname))) {
		return newError(ErrInvalidArchive, "unpack", name, errPathTraversal)
	}
	return nil
}

// mkdirParents creates the missing parents of path with the configured mode.
func (l *layout) mkdirParents(name string, path string) error {
	if err := l.t.CreateDir(filepath.Dir(path), l.cfg.CustomCreateDirMode()); err != nil {
		return newError(ErrIo, "unpack", name, err)
	}
	return nil
}
