// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

//go:build !unix

package arkiv

import (
	"fmt"
	"runtime"
	"time"
)

// os.Chtimes follows links, there is no portable replacement
const canMaintainSymlinkTimestamps = false

func lchtimes(_ string, _, _ time.Time) error {
	return fmt.Errorf("lchtimes is not supported on %s", runtime.GOOS)
}
