// =============================================================================
// SAS7BDAT Converter - Main Entry Point
// =============================================================================
//
// This is the main entry point for the SAS7BDAT Converter CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   converter convert <format> <source> <destination>  - Convert one file
//   converter batch <format> <jobs.yaml>                 - Convert a job list
//   converter dir <format> <source-dir> [dest-dir]       - Convert a directory
//   converter version                                    - Display the version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Readers, writers and the conversion driver
//   - pkg/           : Shared file utilities
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sas7bdat-converter/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
