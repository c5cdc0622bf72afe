// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"time"
)

// EntryKind is the kind of an item in an archive.
type EntryKind int

const (
	// EntryFile is a regular file.
	EntryFile EntryKind = iota

	// EntryDirectory is a directory.
	EntryDirectory

	// EntrySymlink is a symbolic link.
	EntrySymlink

	// EntryOther is neither a file, a directory nor a symlink, e.g. a fifo or a device.
	EntryOther
)

// String returns the name of the kind.
func (k EntryKind) String() string {
	switch k {
	case EntryFile:
		return "file"
	case EntryDirectory:
		return "directory"
	case EntrySymlink:
		return "symlink"
	default:
		return "other"
	}
}

// Entry is an immutable snapshot of one item in an archive. The path is the
// archive-internal name as recorded by the container.
type Entry struct {
	path     string
	size     int64
	kind     EntryKind
	mode     fs.FileMode
	modTime  time.Time
	linkname string

	// index is the position of the entry in a random-access backend, -1 if the
	// backend only offers a forward cursor. It is only meaningful for the
	// archive identified by source.
	index  int
	source string
}

// Path returns the archive-internal path of the entry.
func (e Entry) Path() string {
	return e.path
}

// Size returns the uncompressed size of the entry in bytes.
func (e Entry) Size() int64 {
	return e.size
}

// Kind returns the kind of the entry.
func (e Entry) Kind() EntryKind {
	return e.kind
}

// IsFile returns true if the entry is a regular file.
func (e Entry) IsFile() bool {
	return e.kind == EntryFile
}

// IsDir returns true if the entry is a directory.
func (e Entry) IsDir() bool {
	return e.kind == EntryDirectory
}

// Mode returns the file mode recorded in the archive.
func (e Entry) Mode() fs.FileMode {
	return e.mode
}

// ModTime returns the modification time recorded in the archive.
func (e Entry) ModTime() time.Time {
	return e.modTime
}

// Linkname returns the target of a symlink entry.
func (e Entry) Linkname() string {
	return e.linkname
}

// String returns the path of the entry.
func (e Entry) String() string {
	return e.path
}

// GoString is used by %#v.
func (e Entry) GoString() string {
	return fmt.Sprintf("arkiv.Entry{Path: %q, Size: %d, Kind: %s}", e.path, e.size, e.kind)
}

// Entries is a lazy, forward-only sequence of entries. Next returns [io.EOF]
// once the archive is exhausted. An Entries value cannot be restarted; ask the
// [Archive] for a new one instead.
type Entries interface {
	Next() (Entry, error)
}

// All adapts entries to a range-over-func iterator. Iteration stops after the
// first error, which is yielded together with a zero Entry.
func All(entries Entries) iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		for {
			e, err := entries.Next()
			if errors.Is(err, io.EOF) {
				return
			}
			if err != nil {
				yield(Entry{}, err)
				return
			}
			if !yield(e, nil) {
				return
			}
		}
	}
}

// filteredEntries skips entries that do not satisfy keep. Errors of the
// underlying sequence are returned immediately.
type filteredEntries struct {
	src  Entries
	keep func(Entry) bool
}

// Next returns the next matching entry.
func (f *filteredEntries) Next() (Entry, error) {
	for {
		e, err := f.src.Next()
		if err != nil {
			return Entry{}, err
		}
		if f.keep(e) {
			return e, nil
		}
	}
}

// toEntry takes a snapshot of ae.
func toEntry(ae archiveEntry, index int, source string) Entry {
	e := Entry{
		path:    ae.Name(),
		size:    ae.Size(),
		mode:    ae.Mode(),
		modTime: ae.ModTime(),
		index:   index,
		source:  source,
	}
	switch {
	case ae.IsDir():
		e.kind = EntryDirectory
		e.size = 0
	case ae.IsSymlink():
		e.kind = EntrySymlink
		e.linkname = ae.Linkname()
	case ae.IsRegular():
		e.kind = EntryFile
	default:
		e.kind = EntryOther
	}
	return e
}
