// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv_test

import (
	"archive/tar"
	"archive/zip"
	"bytes"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/andybalholm/brotli"
	"github.com/dsnet/compress/bzip2"
	"github.com/hashicorp/go-arkiv"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/snappy"
	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/require"
	"github.com/ulikunitz/xz"
)

// archiveContent describes one entry of a generated test archive
type archiveContent struct {
	Name       string
	Content    []byte
	Mode       fs.FileMode
	Filetype   byte
	Linktarget string
	ModTime    time.Time
}

// sampleContents is the content of the sample archive used across tests
var sampleContents = []archiveContent{
	{Name: "sample/", Mode: 0755, Filetype: tar.TypeDir},
	{Name: "sample/sample.txt", Content: []byte("sample\n"), Mode: 0644, Filetype: tar.TypeReg},
}

// sampleModTime is the modification time of all generated entries without own time
var sampleModTime = time.Date(2024, 5, 17, 10, 30, 0, 0, time.UTC)

// packTar returns a tar archive of contents.
func packTar(t *testing.T, contents []archiveContent) []byte {
	t.Helper()

	var buf bytes.Buffer
	tw := tar.NewWriter(&buf)
	for _, c := range contents {
		modTime := c.ModTime
		if modTime.IsZero() {
			modTime = sampleModTime
		}
		hdr := &tar.Header{
			Name:     c.Name,
			Mode:     int64(c.Mode.Perm()),
			Typeflag: c.Filetype,
			Linkname: c.Linktarget,
			Size:     int64(len(c.Content)),
			ModTime:  modTime,
			Format:   tar.FormatPAX,
		}
		require.NoError(t, tw.WriteHeader(hdr))
		if len(c.Content) > 0 {
			_, err := tw.Write(c.Content)
			require.NoError(t, err)
		}
	}
	require.NoError(t, tw.Close())
	return buf.Bytes()
}

// packZip returns a zip archive of contents. Symlinks store their target as content.
func packZip(t *testing.T, contents []archiveContent) []byte {
	t.Helper()

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, c := range contents {
		modTime := c.ModTime
		if modTime.IsZero() {
			modTime = sampleModTime
		}
		hdr := &zip.FileHeader{Name: c.Name, Method: zip.Deflate, Modified: modTime}
		content := c.Content
		switch c.Filetype {
		case tar.TypeDir:
			hdr.SetMode(fs.ModeDir | c.Mode.Perm())
		case tar.TypeSymlink:
			hdr.SetMode(fs.ModeSymlink | 0777)
			content = []byte(c.Linktarget)
		default:
			hdr.SetMode(c.Mode.Perm())
		}
		w, err := zw.CreateHeader(hdr)
		require.NoError(t, err)
		_, err = w.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, zw.Close())
	return buf.Bytes()
}

// compressWith compresses data with the codec of format. Tar returns data unchanged.
func compressWith(t *testing.T, format arkiv.Format, data []byte) []byte {
	t.Helper()

	var buf bytes.Buffer
	var w io.WriteCloser
	var err error
	switch format {
	case arkiv.Tar:
		return data
	case arkiv.TarGzip, arkiv.Gzip:
		w = gzip.NewWriter(&buf)
	case arkiv.TarBzip2, arkiv.Bzip2:
		w, err = bzip2.NewWriter(&buf, &bzip2.WriterConfig{})
	case arkiv.TarXz, arkiv.Xz:
		w, err = xz.NewWriter(&buf)
	case arkiv.TarZstd, arkiv.Zstd:
		w, err = zstd.NewWriter(&buf)
	case arkiv.TarLz4, arkiv.Lz4:
		w = lz4.NewWriter(&buf)
	case arkiv.TarBrotli, arkiv.Brotli:
		w = brotli.NewWriter(&buf)
	case arkiv.TarSnappy, arkiv.Snappy:
		w = snappy.NewBufferedWriter(&buf)
	case arkiv.TarZlib, arkiv.Zlib:
		w = zlib.NewWriter(&buf)
	default:
		t.Fatalf("no codec for %s", format)
	}
	require.NoError(t, err)

	_, err = w.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// packArchive returns contents packed in format.
func packArchive(t *testing.T, format arkiv.Format, contents []archiveContent) []byte {
	t.Helper()
	if format == arkiv.Zip {
		return packZip(t, contents)
	}
	return compressWith(t, format, packTar(t, contents))
}

// writeArchive writes data to a file called name in a new temporary directory.
func writeArchive(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

// openSample writes the sample archive in format and opens it.
func openSample(t *testing.T, format arkiv.Format, opts ...arkiv.ConfigOption) *arkiv.Archive {
	t.Helper()
	path := writeArchive(t, "sample."+format.Extension(), packArchive(t, format, sampleContents))
	a, err := arkiv.Open(path, opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

// generatedFormats are the archive formats for which fixtures can be written
var generatedFormats = []arkiv.Format{
	arkiv.Zip,
	arkiv.Tar,
	arkiv.TarGzip,
	arkiv.TarBzip2,
	arkiv.TarXz,
	arkiv.TarZstd,
	arkiv.TarLz4,
	arkiv.TarBrotli,
	arkiv.TarSnappy,
	arkiv.TarZlib,
}
