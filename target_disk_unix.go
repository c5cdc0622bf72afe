// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build unix

package arkiv

import (
	"time"

	"golang.org/x/sys/unix"
)

// symlink times can be set with lutimes
const canMaintainSymlinkTimestamps = true

// lchtimes sets the times of the link at path itself.
func lchtimes(path string, atime, mtime time.Time) error {
	return unix.Lutimes(path, []unix.Timeval{unixTimeval(atime), unixTimeval(mtime)})
}

// unixTimeval converts t into a timeval, rounding up to the next microsecond.
func unixTimeval(t time.Time) unix.Timeval {
	return unix.NsecToTimeval(t.UnixNano())
}
