// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"path/filepath"
	"strings"
)

// Format is the container and/or codec kind of a file, inferred from its name.
type Format int

const (
	// Unknown is returned for names without a recognized suffix.
	Unknown Format = iota

	// Zip is a zip archive.
	Zip

	// Tar is an uncompressed tar archive.
	Tar

	// SevenZip is a 7z archive.
	SevenZip

	// Rar is a rar archive.
	Rar

	// Gzip is a single file compressed with gzip.
	Gzip

	// Bzip2 is a single file compressed with bzip2.
	Bzip2

	// Xz is a single file compressed with xz.
	Xz

	// Zstd is a single file compressed with zstandard.
	Zstd

	// Lz4 is a single file compressed with lz4.
	Lz4

	// Brotli is a single file compressed with brotli.
	Brotli

	// Snappy is a single file compressed with the snappy framing format.
	Snappy

	// Zlib is a single file compressed with zlib.
	Zlib

	// TarGzip is a tar archive compressed with gzip.
	TarGzip

	// TarBzip2 is a tar archive compressed with bzip2.
	TarBzip2

	// TarXz is a tar archive compressed with xz.
	TarXz

	// TarZstd is a tar archive compressed with zstandard.
	TarZstd

	// TarLz4 is a tar archive compressed with lz4.
	TarLz4

	// TarBrotli is a tar archive compressed with brotli.
	TarBrotli

	// TarSnappy is a tar archive compressed with snappy.
	TarSnappy

	// TarZlib is a tar archive compressed with zlib.
	TarZlib
)

// formatInfo describes the static properties of a format.
type formatInfo struct {
	name      string
	extension string
	archive   bool
}

var formatInfos = map[Format]formatInfo{
	Unknown:   {"unknown", "", false},
	Zip:       {"zip", fileExtensionZip, true},
	Tar:       {"tar", fileExtensionTar, true},
	SevenZip:  {"7z", fileExtension7zip, true},
	Rar:       {"rar", fileExtensionRar, true},
	Gzip:      {"gzip", fileExtensionGZip, false},
	Bzip2:     {"bzip2", fileExtensionBzip2, false},
	Xz:        {"xz", fileExtensionXz, false},
	Zstd:      {"zstd", fileExtensionZstd, false},
	Lz4:       {"lz4", fileExtensionLZ4, false},
	Brotli:    {"brotli", fileExtensionBrotli, false},
	Snappy:    {"snappy", fileExtensionSnappy, false},
	Zlib:      {"zlib", fileExtensionZlib, false},
	TarGzip:   {"tar.gzip", fileExtensionTar + "." + fileExtensionGZip, true},
	TarBzip2:  {"tar.bzip2", fileExtensionTar + "." + fileExtensionBzip2, true},
	TarXz:     {"tar.xz", fileExtensionTar + "." + fileExtensionXz, true},
	TarZstd:   {"tar.zstd", fileExtensionTar + "." + fileExtensionZstd, true},
	TarLz4:    {"tar.lz4", fileExtensionTar + "." + fileExtensionLZ4, true},
	TarBrotli: {"tar.brotli", fileExtensionTar + "." + fileExtensionBrotli, true},
	TarSnappy: {"tar.snappy", fileExtensionTar + "." + fileExtensionSnappy, true},
	TarZlib:   {"tar.zlib", fileExtensionTar + "." + fileExtensionZlib, true},
}

// compoundSuffixes are matched against the last two suffixes of a name and
// take precedence over singleSuffixes.
var compoundSuffixes = map[string]Format{
	"tar.gz":   TarGzip,
	"tar.bz2":  TarBzip2,
	"tar.xz":   TarXz,
	"tar.zst":  TarZstd,
	"tar.zstd": TarZstd,
	"tar.lz4":  TarLz4,
	"tar.br":   TarBrotli,
	"tar.sz":   TarSnappy,
	"tar.zz":   TarZlib,
}

var singleSuffixes = map[string]Format{
	"zip":  Zip,
	"tar":  Tar,
	"tgz":  TarGzip,
	"7z":   SevenZip,
	"rar":  Rar,
	"gz":   Gzip,
	"bz2":  Bzip2,
	"xz":   Xz,
	"zst":  Zstd,
	"zstd": Zstd,
	"lz4":  Lz4,
	"br":   Brotli,
	"sz":   Snappy,
	"zz":   Zlib,
}

// InferFormat infers the format from the suffixes of name. The match is case-insensitive,
// compound suffixes like "tar.gz" are checked before single ones. Unrecognized names
// yield [Unknown]. InferFormat performs no I/O.
func InferFormat(name string) Format {
	base := strings.ToLower(filepath.Base(name))

	stem, last, ok := cutSuffix(base)
	if !ok {
		return Unknown
	}
	if _, prev, ok := cutSuffix(stem); ok {
		if f, found := compoundSuffixes[prev+"."+last]; found {
			return f
		}
	}
	if f, found := singleSuffixes[last]; found {
		return f
	}
	return Unknown
}

// cutSuffix splits name at its last dot. Names that start with their only dot
// (".zip") have no suffix.
func cutSuffix(name string) (string, string, bool) {
	i := strings.LastIndexByte(name, '.')
	if i <= 0 || i == len(name)-1 {
		return name, "", false
	}
	return name[:i], name[i+1:], true
}

// IsArchive returns true for container-bearing formats. Plain codecs, which
// wrap a single file, are not archives.
func (f Format) IsArchive() bool {
	return formatInfos[f].archive
}

// IsCompressed returns true for every format except plain tar.
func (f Format) IsCompressed() bool {
	return f != Tar
}

// Extension returns the canonical file extension without a leading dot.
func (f Format) Extension() string {
	return formatInfos[f].extension
}

// String returns the name of the format.
func (f Format) String() string {
	if info, ok := formatInfos[f]; ok {
		return info.name
	}
	return formatInfos[Unknown].name
}
