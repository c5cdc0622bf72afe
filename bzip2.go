// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package arkiv

import (
	"io"

	"github.com/dsnet/compress/bzip2"
)

// fileExtensionBzip2 is the file extension for bzip2 files
const fileExtensionBzip2 = "bz2"

// decompressBz2Stream returns an io.Reader that decompresses src with bzip2 algorithm.
// reference: https://github.com/dsnet/compress/blob/master/doc/bzip2-format.pdf
func decompressBz2Stream(src io.Reader) (io.Reader, error) {
	return bzip2.NewReader(src, nil)
}
