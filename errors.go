// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
)

// Error kinds. Every error returned by this package matches exactly one of them
// with [errors.Is], except context cancellation errors which are returned as is.
var (
	// ErrIo is returned for any underlying filesystem or network transport fault.
	ErrIo = errors.New("i/o error")

	// ErrInvalidArchive is returned if the container bytes are structurally malformed.
	ErrInvalidArchive = errors.New("invalid archive")

	// ErrUnsupportedArchive is returned if the name does not resolve to an archive
	// format or no backend is registered for the format.
	ErrUnsupportedArchive = errors.New("unsupported archive")

	// ErrFileNotFound is returned if the requested entry has no match in the archive.
	ErrFileNotFound = errors.New("specified file not found in archive")

	// ErrInvalidURL is returned if no file name can be derived from a download URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidRequest is returned if a download request failed, returned a non-success
	// status or lacked a usable content-length while progress tracking was requested.
	ErrInvalidRequest = errors.New("invalid request")
)

var (
	// ErrMaxFilesExceeded indicates that the maximum number of entries has been exceeded.
	ErrMaxFilesExceeded = errors.New("maximum files exceeded")

	// ErrMaxExtractionSizeExceeded indicates that the maximum size of extracted data has been exceeded.
	ErrMaxExtractionSizeExceeded = errors.New("maximum extraction size exceeded")

	// ErrMaxInputSizeExceeded indicates that the maximum size of a download has been exceeded.
	ErrMaxInputSizeExceeded = errors.New("maximum input size exceeded")
)

// Error is the concrete error type returned by the package. Kind is one of
// the Err* kinds above, Err the lower-level cause if there is one.
type Error struct {
	Kind error
	Op   string
	Path string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	b.WriteString("arkiv: ")
	if e.Op != "" {
		b.WriteString(e.Op)
		if e.Path != "" {
			b.WriteString(" ")
			b.WriteString(e.Path)
		}
		b.WriteString(": ")
	}
	b.WriteString(e.Kind.Error())
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Is reports whether target is the kind of e.
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

// Unwrap returns the lower-level cause.
func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, op string, path string, err error) *Error {
	return &Error{Kind: kind, Op: op, Path: path, Err: err}
}

// translateError maps errors of the container and codec libraries into the
// package error kinds. Filesystem faults become [ErrIo], everything else the
// libraries report while decoding becomes [ErrInvalidArchive].
func translateError(op string, path string, err error) error {
	if err == nil {
		return nil
	}

	// already translated
	var e *Error
	if errors.As(err, &e) {
		return err
	}

	// cancellation is reported unchanged
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var (
		pathErr    *fs.PathError
		linkErr    *os.LinkError
		syscallErr *os.SyscallError
	)
	if errors.As(err, &pathErr) || errors.As(err, &linkErr) || errors.As(err, &syscallErr) {
		return newError(ErrIo, op, path, err)
	}

	return newError(ErrInvalidArchive, op, path, err)
}
