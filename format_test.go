// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv_test

import (
	"testing"

	"github.com/hashicorp/go-arkiv"
	"github.com/stretchr/testify/assert"
)

func TestInferFormat(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect arkiv.Format
	}{
		{name: "zip", input: "sample.zip", expect: arkiv.Zip},
		{name: "tar", input: "sample.tar", expect: arkiv.Tar},
		{name: "tar.gz", input: "sample.tar.gz", expect: arkiv.TarGzip},
		{name: "tgz alias", input: "sample.tgz", expect: arkiv.TarGzip},
		{name: "tar.bz2", input: "sample.tar.bz2", expect: arkiv.TarBzip2},
		{name: "tar.xz", input: "sample.tar.xz", expect: arkiv.TarXz},
		{name: "tar.zst", input: "sample.tar.zst", expect: arkiv.TarZstd},
		{name: "tar.zstd", input: "sample.tar.zstd", expect: arkiv.TarZstd},
		{name: "tar.lz4", input: "sample.tar.lz4", expect: arkiv.TarLz4},
		{name: "tar.br", input: "sample.tar.br", expect: arkiv.TarBrotli},
		{name: "tar.sz", input: "sample.tar.sz", expect: arkiv.TarSnappy},
		{name: "tar.zz", input: "sample.tar.zz", expect: arkiv.TarZlib},
		{name: "7z", input: "sample.7z", expect: arkiv.SevenZip},
		{name: "rar", input: "sample.rar", expect: arkiv.Rar},
		{name: "bare gz", input: "sample.gz", expect: arkiv.Gzip},
		{name: "bare bz2", input: "sample.bz2", expect: arkiv.Bzip2},
		{name: "bare xz", input: "sample.xz", expect: arkiv.Xz},
		{name: "bare zst", input: "sample.zst", expect: arkiv.Zstd},
		{name: "bare zstd", input: "sample.zstd", expect: arkiv.Zstd},
		{name: "bare lz4", input: "sample.lz4", expect: arkiv.Lz4},
		{name: "bare br", input: "sample.br", expect: arkiv.Brotli},
		{name: "bare sz", input: "sample.sz", expect: arkiv.Snappy},
		{name: "bare zz", input: "sample.zz", expect: arkiv.Zlib},
		{name: "upper case", input: "sample.TAR.GZ", expect: arkiv.TarGzip},
		{name: "mixed case", input: "Sample.Zip", expect: arkiv.Zip},
		{name: "with directory", input: "/tmp/some.dir/sample.tar.xz", expect: arkiv.TarXz},
		{name: "version in name", input: "release-1.2.3.tar.gz", expect: arkiv.TarGzip},
		{name: "codec without tar", input: "sample.txt.gz", expect: arkiv.Gzip},
		{name: "unknown suffix", input: "sample.txt", expect: arkiv.Unknown},
		{name: "no suffix", input: "sample", expect: arkiv.Unknown},
		{name: "trailing dot", input: "sample.", expect: arkiv.Unknown},
		{name: "hidden file", input: ".zip", expect: arkiv.Unknown},
		{name: "empty", input: "", expect: arkiv.Unknown},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, arkiv.InferFormat(tc.input))
		})
	}
}

func TestFormatPredicates(t *testing.T) {
	assert.True(t, arkiv.Tar.IsArchive())
	assert.False(t, arkiv.Gzip.IsArchive())
	assert.False(t, arkiv.Tar.IsCompressed())
	assert.True(t, arkiv.TarGzip.IsCompressed())

	archives := []arkiv.Format{
		arkiv.Zip, arkiv.Tar, arkiv.SevenZip, arkiv.Rar,
		arkiv.TarGzip, arkiv.TarBzip2, arkiv.TarXz, arkiv.TarZstd,
		arkiv.TarLz4, arkiv.TarBrotli, arkiv.TarSnappy, arkiv.TarZlib,
	}
	for _, f := range archives {
		assert.True(t, f.IsArchive(), f.String())
	}

	codecs := []arkiv.Format{
		arkiv.Gzip, arkiv.Bzip2, arkiv.Xz, arkiv.Zstd,
		arkiv.Lz4, arkiv.Brotli, arkiv.Snappy, arkiv.Zlib,
	}
	for _, f := range codecs {
		assert.False(t, f.IsArchive(), f.String())
		assert.True(t, f.IsCompressed(), f.String())
	}

	assert.False(t, arkiv.Unknown.IsArchive())
}

func TestFormatExtensionRoundTrip(t *testing.T) {
	for _, f := range append(arkiv.SupportedFormats(), arkiv.Gzip, arkiv.Zstd, arkiv.Brotli) {
		assert.Equal(t, f, arkiv.InferFormat("file."+f.Extension()), f.String())
	}
}

func TestFormatString(t *testing.T) {
	assert.Equal(t, "tar.gzip", arkiv.TarGzip.String())
	assert.Equal(t, "zip", arkiv.Zip.String())
	assert.Equal(t, "unknown", arkiv.Unknown.String())
	assert.Equal(t, "unknown", arkiv.Format(999).String())
}

func TestSupportedFormats(t *testing.T) {
	formats := arkiv.SupportedFormats()
	assert.Len(t, formats, 12)
	assert.IsIncreasing(t, formats)
	assert.Contains(t, formats, arkiv.SevenZip)
	assert.Contains(t, formats, arkiv.Rar)
	assert.NotContains(t, formats, arkiv.Gzip)
	assert.NotContains(t, formats, arkiv.Unknown)
}
