// =============================================================================
// SAS7BDAT Converter - Batch Command
// =============================================================================
//
// This file defines the 'batch' command, which converts the jobs listed in a
// YAML file.
//
// COMMAND USAGE:
//   converter batch <format> <jobs.yaml> [flags]
//
// JOBS FILE:
//   jobs:
//     - sourcePath: data/a.sas7bdat
//       destinationPath: out/a.xml
//       rootNodeName: people        # xml only, optional
//       recordNodeName: person      # xml only, optional
//
// =============================================================================

package cmd

import (
	"time"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sas7bdat-converter/internal/config"
	"github.com/ginjaninja78/sas7bdat-converter/internal/converter"
	"github.com/ginjaninja78/sas7bdat-converter/pkg/utils"
)

// batchCmd represents the 'batch' command.
var batchCmd = &cobra.Command{
	Use:   "batch <format> <jobs.yaml>",
	Short: "Convert the files listed in a YAML jobs file",
	Long: `Convert each job in a YAML jobs file, in order.

Every job must have exactly sourcePath and destinationPath; xml jobs may also
set rootNodeName and recordNodeName. A job with any other key set stops the
run immediately, even with --continue-on-error.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBatch(cmd, args[0], args[1])
	},
}

// init registers the batch command with the root command and sets up flags.
func init() {
	rootCmd.AddCommand(batchCmd)
	addRunFlags(batchCmd)
}

// runBatch loads the jobs file and converts every job.
func runBatch(cmd *cobra.Command, formatName, jobsPath string) error {
	spec, err := converter.LookupFormat(formatName)
	if err != nil {
		return err
	}

	if !utils.FileExists(jobsPath) {
		return errors.Newf("jobs file not found: %s", jobsPath)
	}

	jobs, err := config.LoadJobs(jobsPath)
	if err != nil {
		return err
	}

	requests := make([]converter.Request, len(jobs))
	for i, j := range jobs {
		requests[i] = converter.Request(j)
	}

	conv, _, err := newConverter()
	if err != nil {
		return err
	}

	opts := batchOptions(cmd)
	start := time.Now()
	outcomes, runErr := conv.Batch(spec.Name, requests, opts)

	return finishRun(spec.Name, outcomes, runErr, start)
}
