// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"errors"
	"io"
	"iter"
	"os"
	"runtime"
	"time"
)

// Archive provides uniform access to an archive file of any supported format.
//
// Each operation that needs a pass over the archive discards the backend used
// by the previous operation and opens a new one on the stored file, so entries
// can be listed any number of times and entries behind the cursor of a
// forward-only format can still be extracted.
//
// An Archive is not safe for concurrent use.
type Archive struct {
	format  Format
	store   *storage
	cfg     *Config
	open    backendOpener
	current backend
	closed  bool

	// removes a temporary download directory if Close is never called
	cleanup runtime.Cleanup
}

// Open returns an [Archive] for the file at path. The format is inferred from
// the name; names that do not resolve to a registered archive format fail with
// [ErrUnsupportedArchive]. The file itself is not accessed before the first
// operation.
func Open(path string, opts ...ConfigOption) (*Archive, error) {
	return newArchive(&storage{path: path}, NewConfig(opts...))
}

func newArchive(s *storage, cfg *Config) (*Archive, error) {
	format := InferFormat(s.path)
	open, ok := lookupBackend(format)
	if !ok {
		return nil, newError(ErrUnsupportedArchive, "open", s.path, nil)
	}

	a := &Archive{format: format, store: s, cfg: cfg, open: open}
	if s.tempDir != "" {
		a.cleanup = runtime.AddCleanup(a, func(dir string) { _ = removeTempDir(dir) }, s.tempDir)
	}
	return a, nil
}

// Format returns the inferred format.
func (a *Archive) Format() Format {
	return a.format
}

// Path returns the location of the archive file.
func (a *Archive) Path() string {
	return a.store.path
}

// Entries returns the paths of all entries in container order. The whole
// listing is held in memory.
func (a *Archive) Entries() ([]string, error) {
	entries, err := a.EntriesIter()
	if err != nil {
		return nil, err
	}

	var paths []string
	for e, err := range All(entries) {
		if err != nil {
			return nil, err
		}
		paths = append(paths, e.String())
	}
	return paths, nil
}

// EntriesIter returns a lazy sequence over the entries, starting a new pass.
// The sequence stays valid until the next operation on the archive.
func (a *Archive) EntriesIter() (Entries, error) {
	b, err := a.freshBackend()
	if err != nil {
		return nil, err
	}
	return b.listEntries(), nil
}

// Walk returns an iterator over the entries, starting a new pass.
func (a *Archive) Walk() iter.Seq2[Entry, error] {
	return func(yield func(Entry, error) bool) {
		entries, err := a.EntriesIter()
		if err != nil {
			yield(Entry{}, err)
			return
		}
		for e, err := range All(entries) {
			if !yield(e, err) {
				return
			}
		}
	}
}

// EntryByName returns the first entry whose path equals name. If there is
// none, an error matching [ErrFileNotFound] is returned.
func (a *Archive) EntryByName(name string) (Entry, error) {
	matches, err := a.Find(func(e Entry) bool { return e.Path() == name })
	if err != nil {
		return Entry{}, err
	}

	e, err := matches.Next()
	if errors.Is(err, io.EOF) {
		return Entry{}, newError(ErrFileNotFound, "entry", name, nil)
	}
	return e, err
}

// Find returns a lazy sequence of the entries that satisfy keep, starting a
// new pass. Errors of the pass are returned immediately, not skipped.
func (a *Archive) Find(keep func(Entry) bool) (Entries, error) {
	entries, err := a.EntriesIter()
	if err != nil {
		return nil, err
	}
	return &filteredEntries{src: entries, keep: keep}, nil
}

// Unpack extracts all entries below dst on the local filesystem.
func (a *Archive) Unpack(ctx context.Context, dst string) error {
	return a.UnpackTo(ctx, NewTargetDisk(), dst)
}

// UnpackTo extracts all entries below dst on t.
func (a *Archive) UnpackTo(ctx context.Context, t Target, dst string) (err error) {
	td := a.newTelemetryData("unpack")
	start := time.Now()
	defer func() { td.finish(ctx, a.cfg, start, err) }()

	b, err := a.freshBackend()
	if err != nil {
		return err
	}
	defer a.discardInto(&err)

	a.cfg.Logger().Debug("unpack", "format", a.format, "path", a.store.path, "dst", dst)
	u := newUnpacker(t, dst, a.cfg, td)
	if err := b.unpackAll(ctx, u); err != nil {
		return err
	}
	return u.finish()
}

// UnpackEntry extracts the single entry e below dst on the local filesystem.
// e is usually obtained from the same archive; an entry that cannot be found
// fails with [ErrFileNotFound].
func (a *Archive) UnpackEntry(ctx context.Context, e Entry, dst string) error {
	return a.UnpackEntryTo(ctx, NewTargetDisk(), e, dst)
}

// UnpackEntryTo extracts the single entry e below dst on t.
func (a *Archive) UnpackEntryTo(ctx context.Context, t Target, e Entry, dst string) (err error) {
	td := a.newTelemetryData("unpack_entry")
	start := time.Now()
	defer func() { td.finish(ctx, a.cfg, start, err) }()

	// the entry may lie behind the cursor of a previous pass
	b, err := a.freshBackend()
	if err != nil {
		return err
	}
	defer a.discardInto(&err)

	a.cfg.Logger().Debug("unpack entry", "format", a.format, "entry", e.Path(), "dst", dst)
	u := newUnpacker(t, dst, a.cfg, td)
	if err := b.extractOne(ctx, e, u); err != nil {
		return err
	}
	return u.finish()
}

// Close releases the current backend and removes temporary storage created
// by a download. The archive cannot be used afterwards.
func (a *Archive) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true
	if a.store.tempDir != "" {
		a.cleanup.Stop()
	}

	err := a.discard()
	if rerr := a.store.release(); err == nil && rerr != nil {
		err = newError(ErrIo, "close", a.store.path, rerr)
	}
	return err
}

// freshBackend discards the cached backend and opens a new one on the stored
// file.
func (a *Archive) freshBackend() (backend, error) {
	if a.closed {
		return nil, newError(ErrIo, "open", a.store.path, os.ErrClosed)
	}
	if err := a.discard(); err != nil {
		return nil, err
	}

	a.cfg.Logger().Debug("open backend", "format", a.format, "path", a.store.path)
	b, err := a.open(a.store.path)
	if err != nil {
		return nil, err
	}
	a.current = b
	return b, nil
}

// discard closes the cached backend, if any.
func (a *Archive) discard() error {
	if a.current == nil {
		return nil
	}
	err := a.current.Close()
	a.current = nil
	if err != nil {
		a.cfg.Logger().Debug("close backend", "path", a.store.path, "error", err)
		return newError(ErrIo, "close", a.store.path, err)
	}
	return nil
}

// discardInto closes the cached backend and stores a close error in err,
// unless err is already set.
func (a *Archive) discardInto(err *error) {
	if cerr := a.discard(); *err == nil {
		*err = cerr
	}
}

func (a *Archive) newTelemetryData(op string) *TelemetryData {
	td := &TelemetryData{Operation: op, ExtractedType: a.format.String()}
	if fi, err := os.Stat(a.store.path); err == nil {
		td.InputSize = fi.Size()
	}
	return td
}
