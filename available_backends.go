// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import "sort"

// availableBackends is the registry of formats that can be opened, each with
// the opener of its backend. Archive-shaped formats missing here are
// reported as unsupported.
var availableBackends = map[Format]backendOpener{
	Zip:       openZip,
	SevenZip:  open7zip,
	Rar:       openRar,
	Tar:       tarOpener(nil),
	TarGzip:   tarOpener(decompressGZipStream),
	TarBzip2:  tarOpener(decompressBz2Stream),
	TarXz:     tarOpener(decompressXzStream),
	TarZstd:   tarOpener(decompressZstdStream),
	TarLz4:    tarOpener(decompressLZ4Stream),
	TarBrotli: tarOpener(decompressBrotliStream),
	TarSnappy: tarOpener(decompressSnappyStream),
	TarZlib:   tarOpener(decompressZlibStream),
}

// SupportedFormats returns all formats that have a registered backend, in
// declaration order.
func SupportedFormats() []Format {
	formats := make([]Format, 0, len(availableBackends))
	for f := range availableBackends {
		formats = append(formats, f)
	}
	sort.Slice(formats, func(i, j int) bool { return formats[i] < formats[j] })
	return formats
}

// lookupBackend returns the opener registered for f.
func lookupBackend(f Format) (backendOpener, bool) {
	if !f.IsArchive() {
		return nil, false
	}
	open, ok := availableBackends[f]
	return open, ok
}
