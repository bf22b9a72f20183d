// GeoRisk - Public Health Intervention Recommendations
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/georisk

// Package main provides the georisk command-line tool.
//
// Usage:
//
//	georisk [flags] <command> [args]
//
// Commands:
//
//	recommend  - Rank interventions for a health profile
//	corpus     - Load the intervention corpus and print its summary
//	version    - Print the build version
//
// Configuration is read the same way as the server (config.yaml, .env and
// environment variables); flags override it.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
