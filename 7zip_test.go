// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv_test

import (
	"context"
	"encoding/hex"
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-arkiv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 7z archive with the file test/data containing "Hello World!"
const test7zipArchiveHex = "377abcaf271c00049af18e7973000000000000002000000000000000a7e80f9801000b48656c6c6f20576f726c6421000000813307ae0fcef2b20c07c8437f41b1fafddb88b6d7636b8bd58a0e24a2f717a5f156e37f41fd00833298421d5d088c0cf987b30c0473663599e4d2f21cb69620038f10458109662135c3024189f42799abe3227b174a853e824f808b2efaab000017061001096300070b01000123030101055d001000000c760a015bcfa0a70000"

func open7zipSample(t *testing.T, opts ...arkiv.ConfigOption) *arkiv.Archive {
	t.Helper()
	data, err := hex.DecodeString(test7zipArchiveHex)
	require.NoError(t, err)

	a, err := arkiv.Open(writeArchive(t, "sample.7z", data), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestArchive7zipEntries(t *testing.T) {
	a := open7zipSample(t)
	assert.Equal(t, arkiv.SevenZip, a.Format())

	for range 2 {
		entries, err := a.Entries()
		require.NoError(t, err)
		assert.Contains(t, entries, "test/data")
	}

	e, err := a.EntryByName("test/data")
	require.NoError(t, err)
	assert.True(t, e.IsFile())
	assert.Equal(t, int64(len("Hello World!")), e.Size())

	_, err = a.EntryByName("test/missing")
	assert.ErrorIs(t, err, arkiv.ErrFileNotFound)
}

func TestArchive7zipUnpack(t *testing.T) {
	a := open7zipSample(t)
	dst := t.TempDir()

	require.NoError(t, a.Unpack(context.Background(), dst))
	content, err := os.ReadFile(filepath.Join(dst, "test", "data"))
	require.NoError(t, err)
	assert.Equal(t, "Hello World!", string(content))
}

func TestArchive7zipUnpackEntry(t *testing.T) {
	a := open7zipSample(t)
	e, err := a.EntryByName("test/data")
	require.NoError(t, err)

	dst := t.TempDir()
	for range 2 {
		require.NoError(t, a.UnpackEntry(context.Background(), e, dst))
		content, err := os.ReadFile(filepath.Join(dst, "test", "data"))
		require.NoError(t, err)
		assert.Equal(t, "Hello World!", string(content))
	}
}

func TestArchive7zipExtractionLimit(t *testing.T) {
	a := open7zipSample(t, arkiv.WithMaxExtractionSize(5))

	err := a.Unpack(context.Background(), t.TempDir())
	assert.ErrorIs(t, err, arkiv.ErrInvalidArchive)
	assert.ErrorIs(t, err, arkiv.ErrMaxExtractionSizeExceeded)
}
