// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"io"
	"io/fs"
	"time"

	"github.com/bodgit/sevenzip"
)

// fileExtension7zip is the file extension for 7zip files
const fileExtension7zip = "7z"

// open7zip opens the 7z archive at path as a random-access backend.
func open7zip(path string) (backend, error) {
	r, err := sevenzip.OpenReader(path)
	if err != nil {
		return nil, translateError("open", path, err)
	}

	files := make([]archiveEntry, len(r.File))
	for i, f := range r.File {
		files[i] = &sevenZipEntry{f}
	}
	return &indexedBackend{source: path, files: files, closers: []io.Closer{r}}, nil
}

// sevenZipEntry is an entry in a 7z archive
type sevenZipEntry struct {
	f *sevenzip.File
}

func (z *sevenZipEntry) Name() string {
	return z.f.Name
}

func (z *sevenZipEntry) Size() int64 {
	return z.f.FileInfo().Size()
}

func (z *sevenZipEntry) Mode() fs.FileMode {
	return z.f.FileInfo().Mode()
}

func (z *sevenZipEntry) ModTime() time.Time {
	return z.f.FileInfo().ModTime()
}

// Linkname symlinks are not supported.
func (z *sevenZipEntry) Linkname() string {
	return ""
}

func (z *sevenZipEntry) IsRegular() bool {
	return z.f.FileInfo().Mode().IsRegular()
}

func (z *sevenZipEntry) IsDir() bool {
	return z.f.FileInfo().Mode().IsDir()
}

func (z *sevenZipEntry) IsSymlink() bool {
	return false
}

func (z *sevenZipEntry) Open() (io.ReadCloser, error) {
	return z.f.Open()
}
