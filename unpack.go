// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"context"
	"io/fs"
	"time"
)

// unpacker writes archive entries below a root directory. It holds the state
// of one Unpack or UnpackEntry call: the limits apply per call.
type unpacker struct {
	dst *layout
	cfg *Config
	td  *TelemetryData

	objects int64 // created files, directories and symlinks
	bytes   int64 // written file content

	// recorded directory modes, applied by finish
	dirModes []dirMode
}

type dirMode struct {
	path string
	mode fs.FileMode
}

func newUnpacker(t Target, root string, cfg *Config, td *TelemetryData) *unpacker {
	return &unpacker{
		dst: &layout{t: t, root: root, cfg: cfg},
		cfg: cfg,
		td:  td,
	}
}

// write creates ae below the root. Entries that are neither files,
// directories nor symlinks are skipped and counted as unsupported.
func (u *unpacker) write(ctx context.Context, ae archiveEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := u.dst.prepare(); err != nil {
		return err
	}

	name := ae.Name()
	if !ae.IsDir() && !ae.IsRegular() && !ae.IsSymlink() {
		u.skip(name, "unsupported entry type")
		return nil
	}
	if ae.IsSymlink() && u.cfg.DenySymlinkExtraction() {
		u.skip(name, "symlink extraction denied")
		return nil
	}

	u.objects++
	if err := u.cfg.CheckMaxFiles(u.objects); err != nil {
		return newError(ErrInvalidArchive, "unpack", name, err)
	}

	switch {
	case ae.IsDir():
		return u.writeDir(ae)
	case ae.IsSymlink():
		return u.writeSymlink(ae)
	default:
		return u.writeFile(ae)
	}
}

func (u *unpacker) skip(name string, reason string) {
	u.td.UnsupportedFiles++
	u.td.LastUnsupportedFile = name
	u.cfg.Logger().Debug("skip entry", "name", name, "reason", reason)
}

func (u *unpacker) writeDir(ae archiveEntry) error {
	path, err := u.dst.resolve(ae.Name(), true)
	if err != nil {
		return err
	}

	if err := u.dst.t.CreateDir(path, u.cfg.CustomCreateDirMode()); err != nil {
		return newError(ErrIo, "unpack", ae.Name(), err)
	}
	if mode, ok := u.recordedMode(ae); ok {
		u.dirModes = append(u.dirModes, dirMode{path: path, mode: mode})
	}

	u.td.ExtractedDirs++
	return nil
}

// finish applies the recorded directory modes in reverse order. They are
// deferred until all entries are written, a read-only directory would
// otherwise reject its own children.
func (u *unpacker) finish() error {
	for i := len(u.dirModes) - 1; i >= 0; i-- {
		d := u.dirModes[i]
		if err := u.dst.t.Chmod(d.path, d.mode); err != nil {
			return newError(ErrIo, "unpack", d.path, err)
		}
	}
	u.dirModes = nil
	return nil
}

func (u *unpacker) writeFile(ae archiveEntry) error {
	name := ae.Name()

	// fail early on the recorded size, the writer enforces the actual one
	if err := u.cfg.CheckExtractionSize(u.bytes + ae.Size()); err != nil {
		return newError(ErrInvalidArchive, "unpack", name, err)
	}

	path, err := u.dst.resolve(name, true)
	if err != nil {
		return err
	}
	if err := u.dst.mkdirParents(name, path); err != nil {
		return err
	}

	src, err := ae.Open()
	if err != nil {
		return translateError("unpack", name, err)
	}
	defer src.Close()

	limit := int64(-1)
	if maxSize := u.cfg.MaxExtractionSize(); maxSize >= 0 {
		limit = maxSize - u.bytes
	}
	n, err := u.dst.t.CreateFile(path, src, u.fileMode(ae), u.cfg.Overwrite(), limit)
	u.bytes += n
	u.td.ExtractionSize = u.bytes
	if err != nil {
		return translateError("unpack", name, err)
	}

	// the creation mode is subject to the umask and ignored for existing files
	if mode, ok := u.recordedMode(ae); ok {
		if err := u.dst.t.Chmod(path, mode); err != nil {
			return newError(ErrIo, "unpack", name, err)
		}
	}
	if err := u.restoreTimes(ae, path, u.dst.t.Chtimes); err != nil {
		return err
	}

	u.td.ExtractedFiles++
	return nil
}

func (u *unpacker) writeSymlink(ae archiveEntry) error {
	name, linkname := ae.Name(), ae.Linkname()

	if err := u.dst.checkLink(name, linkname); err != nil {
		return err
	}
	path, err := u.dst.resolve(name, false)
	if err != nil {
		return err
	}
	if err := u.dst.mkdirParents(name, path); err != nil {
		return err
	}

	if err := u.dst.t.CreateSymlink(linkname, path, u.cfg.Overwrite()); err != nil {
		return newError(ErrIo, "unpack", name, err)
	}
	if err := u.restoreTimes(ae, path, u.dst.t.Lchtimes); err != nil {
		return err
	}

	u.td.ExtractedSymlinks++
	return nil
}

// fileMode returns the recorded permission bits of ae, or the configured
// default if there are none or attributes are dropped.
func (u *unpacker) fileMode(ae archiveEntry) fs.FileMode {
	if mode, ok := u.recordedMode(ae); ok {
		return mode
	}
	return u.cfg.CustomFileMode()
}

// recordedMode returns the permission bits of ae that are restored after
// writing.
func (u *unpacker) recordedMode(ae archiveEntry) (fs.FileMode, bool) {
	mode := ae.Mode().Perm()
	if mode == 0 || u.cfg.DropFileAttributes() {
		return 0, false
	}
	return mode, true
}

func (u *unpacker) restoreTimes(ae archiveEntry, path string, chtimes func(string, time.Time, time.Time) error) error {
	modTime := ae.ModTime()
	if u.cfg.DropFileAttributes() || modTime.IsZero() {
		return nil
	}
	if err := chtimes(path, modTime, modTime); err != nil {
		return newError(ErrIo, "unpack", ae.Name(), err)
	}
	return nil
}
