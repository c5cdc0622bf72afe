// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

// Package arkiv provides uniform access to archive files of heterogeneous formats.
//
// The format of an archive is inferred from its name (see [InferFormat]), and
// [Open] selects a backend for it: zip and 7z are read with random access, tar
// wrapped in a compression codec (gzip, bzip2, xz, zstd, lz4, brotli, snappy,
// zlib) and rar are read with a forward-only cursor. [Archive] hides the
// difference: entries can be listed repeatedly, looked up by name, filtered,
// and extracted one by one or all at once.
//
// Archives can also be fetched over HTTP with the [Downloader], which reports
// progress and stores the file in a temporary or named directory.
//
// Configuration is done using the [Config] and its options. Telemetry data of
// every unpack and download is passed to an optional [TelemetryHook].
package arkiv
