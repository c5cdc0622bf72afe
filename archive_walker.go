// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"io"
	"io/fs"
	"time"
)

// archiveWalker is the native forward cursor of a container library. Next
// returns io.EOF once the container is exhausted.
type archiveWalker interface {
	Next() (archiveEntry, error)
}

// archiveEntry is an item of a container as seen by its library
type archiveEntry interface {
	IsRegular() bool
	IsDir() bool
	IsSymlink() bool
	Linkname() string
	Mode() fs.FileMode
	ModTime() time.Time
	Name() string
	Open() (io.ReadCloser, error)
	Size() int64
}
