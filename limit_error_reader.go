// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import "io"

// limitErrorReader reads at most L bytes from R. Once the limit is reached
// and R still has data, Read fails with ErrMaxInputSizeExceeded instead of
// reporting a silent EOF like io.LimitReader does.
type limitErrorReader struct {
	R io.Reader // underlying reader
	L int64     // limit, -1 to disable
	N int64     // number of bytes read
}

// Read reads from the underlying reader into p, up to the limit.
func (l *limitErrorReader) Read(p []byte) (int, error) {
	if l.L >= 0 {
		remaining := l.L - l.N
		if remaining <= 0 {
			// check for more data
			var extra [1]byte
			n, err := l.R.Read(extra[:])
			if n > 0 {
				return 0, ErrMaxInputSizeExceeded
			}
			return 0, err
		}
		if int64(len(p)) > remaining {
			p = p[:remaining]
		}
	}

	n, err := l.R.Read(p)
	l.N += int64(n)
	return n, err
}

// newLimitErrorReader returns a reader that reads at most limit bytes from r.
// A negative limit disables the check.
func newLimitErrorReader(r io.Reader, limit int64) *limitErrorReader {
	if limit < 0 {
		limit = -1
	}
	return &limitErrorReader{R: r, L: limit}
}
