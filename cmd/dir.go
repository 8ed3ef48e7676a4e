// =============================================================================
// SAS7BDAT Converter - Directory Command
// =============================================================================
//
// This file defines the 'dir' command, which converts every .sas7bdat and
// .xpt file directly inside a directory.
//
// COMMAND USAGE:
//   converter dir <format> <source-dir> [destination-dir] [flags]
//
// Outputs are named after the source file with the format's extension
// (people.sas7bdat -> people.csv). Without a destination directory they are
// written next to the sources.
//
// =============================================================================

package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sas7bdat-converter/internal/converter"
)

// dirCmd represents the 'dir' command.
var dirCmd = &cobra.Command{
	Use:   "dir <format> <source-dir> [destination-dir]",
	Short: "Convert every SAS file in a directory",
	Long: `Convert every .sas7bdat and .xpt file directly inside source-dir.
Subdirectories are not searched. The destination directory is created if it
does not exist.`,
	Args: cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		dst := ""
		if len(args) == 3 {
			dst = args[2]
		}
		return runDir(cmd, args[0], args[1], dst)
	},
}

// init registers the dir command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(dirCmd)
	addRunFlags(dirCmd)
}

// runDir converts a directory.
func runDir(cmd *cobra.Command, formatName, srcDir, dstDir string) error {
	spec, err := converter.LookupFormat(formatName)
	if err != nil {
		return err
	}

	conv, _, err := newConverter()
	if err != nil {
		return err
	}

	opts := batchOptions(cmd)
	start := time.Now()
	outcomes, runErr := conv.Directory(spec.Name, srcDir, dstDir, opts)

	return finishRun(spec.Name, outcomes, runErr, start)
}
