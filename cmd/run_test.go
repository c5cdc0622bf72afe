// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"archive/tar"
	"bytes"
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/hashicorp/go-arkiv"
	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeTarGz writes a tar.gz archive with files (name to content) into dir.
func writeTarGz(t *testing.T, dir string, name string, files map[string]string) string {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for n, content := range files {
		require.NoError(t, tw.WriteHeader(&tar.Header{Name: n, Mode: 0644, Size: int64(len(content)), Typeflag: tar.TypeReg}))
		_, err := tw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, tw.Close())
	require.NoError(t, gw.Close())

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0600))
	return path
}

// run parses args like the binary does and executes the selected command.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var cli CLI
	parser, err := kong.New(&cli, kong.Name("arkiv"), kong.Exit(func(int) { t.Fatal("unexpected exit") }))
	require.NoError(t, err)
	kctx, err := parser.Parse(args)
	require.NoError(t, err)

	var out bytes.Buffer
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	e := &env{
		ctx:    context.Background(),
		logger: logger,
		out:    &out,
		opts:   []arkiv.ConfigOption{arkiv.WithLogger(logger)},
	}
	err = kctx.Run(e)
	return out.String(), err
}

func TestFormatsCmd(t *testing.T) {
	out, err := run(t, "formats")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.Len(t, lines, len(arkiv.SupportedFormats()))
	assert.Contains(t, out, ".tar.gz")
	assert.Contains(t, out, ".7z")
}

func TestListCmd(t *testing.T) {
	path := writeTarGz(t, t.TempDir(), "sample.tar.gz", map[string]string{"sample.txt": "sample\n"})

	out, err := run(t, "list", path)
	require.NoError(t, err)
	assert.Equal(t, "sample.txt\n", out)

	out, err = run(t, "list", "-l", path)
	require.NoError(t, err)
	assert.Contains(t, out, "file")
	assert.Contains(t, out, "-rw-r--r--")
	assert.Contains(t, out, "sample.txt")
}

func TestListCmdUnsupported(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.txt")
	require.NoError(t, os.WriteFile(path, []byte("plain"), 0600))

	_, err := run(t, "list", path)
	assert.ErrorIs(t, err, arkiv.ErrUnsupportedArchive)
}

func TestUnpackCmd(t *testing.T) {
	src := t.TempDir()
	first := writeTarGz(t, src, "first.tar.gz", map[string]string{"a.txt": "a"})
	second := writeTarGz(t, src, "second.tgz", map[string]string{"b.txt": "b"})

	t.Run("single archive", func(t *testing.T) {
		dst := t.TempDir()
		_, err := run(t, "unpack", dst, first)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dst, "a.txt"))
	})

	t.Run("multiple archives", func(t *testing.T) {
		dst := t.TempDir()
		_, err := run(t, "unpack", dst, first, second)
		require.NoError(t, err)
		assert.FileExists(t, filepath.Join(dst, "first", "a.txt"))
		assert.FileExists(t, filepath.Join(dst, "second", "b.txt"))
	})

	t.Run("max files", func(t *testing.T) {
		_, err := run(t, "unpack", "--max-files", "0", t.TempDir(), first)
		assert.ErrorIs(t, err, arkiv.ErrMaxFilesExceeded)
	})
}

func TestExtractCmd(t *testing.T) {
	path := writeTarGz(t, t.TempDir(), "sample.tar.gz", map[string]string{"a.txt": "a", "b.txt": "b"})
	dst := t.TempDir()

	_, err := run(t, "extract", path, "b.txt", dst)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dst, "b.txt"))
	assert.NoFileExists(t, filepath.Join(dst, "a.txt"))

	_, err = run(t, "extract", path, "c.txt", dst)
	assert.ErrorIs(t, err, arkiv.ErrFileNotFound)
}

func TestArchiveStem(t *testing.T) {
	tests := []struct {
		input  string
		expect string
	}{
		{input: "/tmp/release.tar.gz", expect: "release"},
		{input: "release.tgz", expect: "release"},
		{input: "release-1.2.zip", expect: "release-1.2"},
		{input: "release.tar.zst", expect: "release"},
		{input: "notes.txt", expect: "notes"},
		{input: ".zip", expect: ".zip"},
		{input: "plain", expect: "plain"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			assert.Equal(t, tc.expect, archiveStem(tc.input))
		})
	}
}

func TestProgressPrinter(t *testing.T) {
	var buf bytes.Buffer
	progress := progressPrinter(slog.New(slog.NewTextHandler(&buf, nil)))

	for written := int64(0); written <= 100; written++ {
		progress(written, 100)
	}
	// one line per tenth, including 0 and 100 percent
	assert.Equal(t, 11, strings.Count(buf.String(), "download progress"))
}
