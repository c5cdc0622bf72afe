// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv_test

import (
	"context"
	"encoding/base64"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-arkiv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rar archive with the entries dir/foo, file, link (symlink to dir/foo) and dir
var testRarArchiveBase64 = "UmFyIRoHAQAzkrXlCgEFBgAFAQGAgAADk1YoJQIDC50ABJ0ApIMClAgA9IAAAQdkaXIvZm9vCgMTQPjXZsjBSQhNaSAgNCBTZXAgMjAyNCAwODowMzo0NCBDRVNUCpQdu+oiAgMLnQAEnQCkgwI+z7uqgAABBGZpbGUKAxPEDddmxHsQDkRpICAzIFNlcCAyMDI0IDE1OjIzOjE2IENFU1QKe1xvKCwCAxcABAftwwIAAAAAgAABBGxpbmsKAxNM+NdmSCZHGAsFAQAHZGlyL2Zvb0A2hh0bAgMLAAEA7YMBgAABA2RpcgoDE0D412Z533kHHXdWUQMFBAA="

func openRarSample(t *testing.T) *arkiv.Archive {
	t.Helper()
	data, err := base64.StdEncoding.DecodeString(testRarArchiveBase64)
	require.NoError(t, err)

	a, err := arkiv.Open(writeArchive(t, "sample.rar", data))
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestArchiveRarEntries(t *testing.T) {
	a := openRarSample(t)
	assert.Equal(t, arkiv.Rar, a.Format())

	// listing twice needs a reopen of the forward-only decoder
	for range 2 {
		entries, err := a.Entries()
		require.NoError(t, err)
		assert.Len(t, entries, 4)
		assert.Contains(t, entries, "dir/foo")
		assert.Contains(t, entries, "file")
	}

	e, err := a.EntryByName("file")
	require.NoError(t, err)
	assert.True(t, e.IsFile())
}

func TestArchiveRarUnpack(t *testing.T) {
	a := openRarSample(t)
	dst := t.TempDir()

	require.NoError(t, a.Unpack(context.Background(), dst))
	assert.FileExists(t, filepath.Join(dst, "dir", "foo"))
	assert.FileExists(t, filepath.Join(dst, "file"))
}

func TestArchiveRarUnpackEntry(t *testing.T) {
	a := openRarSample(t)

	// "file" lies behind the cursor after the lookup of "dir"
	e, err := a.EntryByName("file")
	require.NoError(t, err)
	_, err = a.EntryByName("dir")
	require.NoError(t, err)

	dst := t.TempDir()
	require.NoError(t, a.UnpackEntry(context.Background(), e, dst))
	assert.FileExists(t, filepath.Join(dst, "file"))
	assert.NoFileExists(t, filepath.Join(dst, "dir", "foo"))
}
