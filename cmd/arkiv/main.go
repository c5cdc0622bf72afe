// Copyright IBM Corp. 2023, 2025
// SPDX-License-Identifier: MPL-2.0

package main

import "github.com/hashicorp/go-arkiv/cmd"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

// main starts the arkiv cli
func main() {
	cmd.Run(version, commit, date)
}
