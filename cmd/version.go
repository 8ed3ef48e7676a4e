// =============================================================================
// SAS7BDAT Converter - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   converter version
//
// OUTPUT:
//   SAS7BDAT Converter
//   Version:    1.0.0
//   Build Date: 2024-01-01
//   Go Version: go1.24.11
//   Parquet:    disabled (build with -tags parquet)
//
// =============================================================================

package cmd

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sas7bdat-converter/internal/parquetwriter"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/sas7bdat-converter/cmd.Version=1.0.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// =============================================================================
// VERSION COMMAND DEFINITION
// =============================================================================

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, Go runtime version and optional backends.`,
	Run: func(cmd *cobra.Command, args []string) {
		printVersion(cmd.OutOrStdout())
	},
}

// init registers the version command with the root command.
func init() {
	rootCmd.AddCommand(versionCmd)
}

// printVersion writes the build information to w.
func printVersion(w io.Writer) {
	fmt.Fprintln(w, "SAS7BDAT Converter")
	fmt.Fprintf(w, "Version:    %s\n", Version)
	fmt.Fprintf(w, "Build Date: %s\n", BuildDate)
	fmt.Fprintf(w, "Go Version: %s\n", runtime.Version())
	if parquetwriter.Available {
		fmt.Fprintln(w, "Parquet:    enabled")
	} else {
		fmt.Fprintln(w, "Parquet:    disabled (build with -tags parquet)")
	}
}
