// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import "io"

// limitErrorWriter passes at most L bytes to W. The write that crosses the
// limit is cut and fails with ErrMaxExtractionSizeExceeded.
type limitErrorWriter struct {
	W io.Writer // underlying writer
	L int64     // limit, -1 to disable
	N int64     // number of bytes written
}

// Write writes p to the underlying writer, up to the limit.
func (l *limitErrorWriter) Write(p []byte) (int, error) {
	if l.L < 0 {
		n, err := l.W.Write(p)
		l.N += int64(n)
		return n, err
	}

	remaining := l.L - l.N
	if int64(len(p)) <= remaining {
		n, err := l.W.Write(p)
		l.N += int64(n)
		return n, err
	}

	n, err := l.W.Write(p[:remaining])
	l.N += int64(n)
	if err != nil {
		return n, err
	}
	return n, ErrMaxExtractionSizeExceeded
}

// newLimitErrorWriter wraps w with limit. A negative limit disables the check.
func newLimitErrorWriter(w io.Writer, limit int64) *limitErrorWriter {
	if limit < 0 {
		limit = -1
	}
	return &limitErrorWriter{W: w, L: limit}
}
