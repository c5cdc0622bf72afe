// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"archive/tar"
	"io"
	"io/fs"
	"os"
	"time"
)

// fileExtensionTar is the file extension for tar files
const fileExtensionTar = "tar"

// decompressionFunc wraps a compressed stream into a decompressing reader.
type decompressionFunc func(io.Reader) (io.Reader, error)

// tarOpener returns a backendOpener for tar archives, optionally wrapped in
// the codec dec. The resulting backend is forward-only.
func tarOpener(dec decompressionFunc) backendOpener {
	return func(path string) (backend, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, newError(ErrIo, "open", path, err)
		}

		// closers run in order, codec before file
		var src io.Reader = f
		closers := []io.Closer{f}
		if dec != nil {
			ds, err := dec(f)
			if err != nil {
				f.Close()
				return nil, translateError("open", path, err)
			}
			if c, ok := ds.(io.Closer); ok {
				closers = []io.Closer{c, f}
			}
			src = ds
		}

		return &streamBackend{
			source:  path,
			walker:  &tarWalker{tr: tar.NewReader(src)},
			closers: closers,
		}, nil
	}
}

// tarWalker is a walker for tar files
type tarWalker struct {
	tr *tar.Reader
}

// Next returns the next entry in the tar archive
func (t *tarWalker) Next() (archiveEntry, error) {
	hdr, err := t.tr.Next()
	if err != nil {
		return nil, err
	}
	return &tarEntry{hdr, t.tr}, nil
}

// tarEntry is an entry in a tar archive
type tarEntry struct {
	hdr *tar.Header
	tr  *tar.Reader
}

// Name returns the name of the entry
func (t *tarEntry) Name() string {
	return t.hdr.Name
}

// Size returns the size of the entry
func (t *tarEntry) Size() int64 {
	return t.hdr.Size
}

// Mode returns the mode of the entry
func (t *tarEntry) Mode() fs.FileMode {
	return t.hdr.FileInfo().Mode()
}

// ModTime returns the modification time of the entry
func (t *tarEntry) ModTime() time.Time {
	return t.hdr.ModTime
}

// Linkname returns the linkname of the entry
func (t *tarEntry) Linkname() string {
	return t.hdr.Linkname
}

// IsRegular returns true if the entry is a regular file
func (t *tarEntry) IsRegular() bool {
	return t.hdr.Typeflag == tar.TypeReg
}

// IsDir returns true if the entry is a directory
func (t *tarEntry) IsDir() bool {
	return t.hdr.Typeflag == tar.TypeDir
}

// IsSymlink returns true if the entry is a symlink
func (t *tarEntry) IsSymlink() bool {
	return t.hdr.Typeflag == tar.TypeSymlink
}

// Open returns a reader for the entry. The reader is only valid until the
// walker advances.
func (t *tarEntry) Open() (io.ReadCloser, error) {
	return io.NopCloser(t.tr), nil
}
