// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"errors"
	"io"
)

// backend is implemented once per container technology. A backend represents
// exactly one pass over the byte source: once listEntries, unpackAll or
// extractOne consumed it, the archive discards it and opens a new one.
type backend interface {
	// unpackAll extracts every entry with u.
	unpackAll(ctx context.Context, u *unpacker) error

	// listEntries returns the entries in container order.
	listEntries() Entries

	// extractOne extracts the single entry e with u. If the entry cannot be
	// found, an error matching ErrFileNotFound is returned.
	extractOne(ctx context.Context, e Entry, u *unpacker) error

	// Close releases the byte source.
	Close() error
}

// backendOpener opens a fresh backend on the archive stored at path.
type backendOpener func(path string) (backend, error)

// indexedBackend adapts random-access containers (zip, 7z). Entries are
// addressed by their position in the central directory.
type indexedBackend struct {
	source  string
	files   []archiveEntry
	closers []io.Closer
}

func (b *indexedBackend) listEntries() Entries {
	return &indexedEntries{b: b}
}

func (b *indexedBackend) unpackAll(ctx context.Context, u *unpacker) error {
	for _, f := range b.files {
		if err := u.write(ctx, f); err != nil {
			return err
		}
	}
	return nil
}

func (b *indexedBackend) extractOne(ctx context.Context, e Entry, u *unpacker) error {
	// direct lookup, only valid for entries produced by this archive
	if e.source == b.source && e.index >= 0 && e.index < len(b.files) && b.files[e.index].Name() == e.path {
		return u.write(ctx, b.files[e.index])
	}

	for _, f := range b.files {
		if f.Name() == e.path {
			return u.write(ctx, f)
		}
	}
	return newError(ErrFileNotFound, "extract", e.path, nil)
}

func (b *indexedBackend) Close() error {
	return closeAll(b.closers)
}

// indexedEntries walks the positions 0..len(files).
type indexedEntries struct {
	b   *indexedBackend
	pos int
}

// Next returns the entry at the current position.
func (i *indexedEntries) Next() (Entry, error) {
	if i.pos >= len(i.b.files) {
		return Entry{}, io.EOF
	}
	defer func() { i.pos++ }()
	return toEntry(i.b.files[i.pos], i.pos, i.b.source), nil
}

// streamBackend adapts forward-only containers (tar wrapped in a codec, rar).
// There is no random access: extractOne scans forward from the current
// cursor position.
type streamBackend struct {
	source  string
	walker  archiveWalker
	closers []io.Closer

	// failed is set once the pass returned a decoding error
	failed bool
}

func (b *streamBackend) listEntries() Entries {
	return &streamEntries{b: b}
}

func (b *streamBackend) unpackAll(ctx context.Context, u *unpacker) error {
	for {
		ae, err := b.next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := u.write(ctx, ae); err != nil {
			return err
		}
	}
}

func (b *streamBackend) extractOne(ctx context.Context, e Entry, u *unpacker) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ae, err := b.next()
		if errors.Is(err, io.EOF) {
			return newError(ErrFileNotFound, "extract", e.path, nil)
		}
		if err != nil {
			return err
		}
		if ae.Name() == e.path {
			return u.write(ctx, ae)
		}
	}
}

// next advances the native cursor and translates library errors.
func (b *streamBackend) next() (archiveEntry, error) {
	ae, err := b.walker.Next()
	if errors.Is(err, io.EOF) {
		return nil, io.EOF
	}
	if err != nil {
		b.failed = true
		return nil, translateError("read", b.source, err)
	}
	return ae, nil
}

// Close releases the codec and the file. Codecs report their decoding error
// again on Close, which is dropped if the pass already returned it.
func (b *streamBackend) Close() error {
	err := closeAll(b.closers)
	if b.failed {
		return nil
	}
	return err
}

// streamEntries drains the native cursor of a streamBackend.
type streamEntries struct {
	b *streamBackend
}

// Next returns the entry under the cursor.
func (s *streamEntries) Next() (Entry, error) {
	ae, err := s.b.next()
	if err != nil {
		return Entry{}, err
	}
	return toEntry(ae, -1, s.b.source), nil
}

// closeAll closes all closers in order and returns the first error.
func closeAll(closers []io.Closer) error {
	var first error
	for _, c := range closers {
		if err := c.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
