// =============================================================================
// SAS7BDAT Converter - Run Flags and Summary
// =============================================================================
//
// This file holds the flags shared by the 'batch' and 'dir' commands and the
// result printing used by every conversion command.
//
// FLAGS:
//   --continue-on-error : Keep converting after a file fails
//   --quiet, -q         : Do not report individual failures
//   --workers, -w       : Concurrent conversions when continuing on error
//   --report            : Write a YAML run report to report_dir
//
// =============================================================================

package cmd

import (
	"path/filepath"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sas7bdat-converter/internal/converter"
	"github.com/ginjaninja78/sas7bdat-converter/pkg/utils"
)

// =============================================================================
// RUN FLAGS
// =============================================================================

// continueOnError keeps a batch or directory run going after a failure.
var continueOnError bool

// quiet suppresses the per-file failure notice in continue-on-error runs.
var quiet bool

// workers bounds concurrent conversions in continue-on-error runs.
var workers int

// report writes a YAML run report to the configured report directory.
var report bool

// addRunFlags registers the flags shared by batch and dir.
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&continueOnError, "continue-on-error", false, "Keep converting after a file fails")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Do not report individual failures when continuing on error")
	cmd.Flags().IntVarP(&workers, "workers", "w", 1, "Concurrent conversions when continuing on error")
	cmd.Flags().BoolVar(&report, "report", false, "Write a YAML run report")
}

// batchOptions merges the configuration with any flags set on the command line.
func batchOptions(cmd *cobra.Command) converter.BatchOptions {
	opts := converter.BatchOptions{
		ContinueOnError: cfg.ContinueOnError,
		Verbose:         cfg.Verbose,
		Workers:         cfg.Workers,
	}
	if cmd.Flags().Changed("continue-on-error") {
		opts.ContinueOnError = continueOnError
	}
	if cmd.Flags().Changed("quiet") {
		opts.Verbose = !quiet
	}
	if cmd.Flags().Changed("workers") {
		opts.Workers = workers
	}
	return opts
}

// =============================================================================
// RESULT REPORTING
// =============================================================================

// finishRun prints the outcomes, writes the report when asked, and returns
// the error the command should exit with.
func finishRun(format converter.Format, outcomes []converter.Outcome, runErr error, start time.Time) error {
	end := time.Now()
	printOutcomes(format, outcomes, end.Sub(start))

	if report {
		path, err := utils.WriteSummaryLog(buildSummary(format, outcomes, start, end), cfg.ReportDir)
		if err != nil {
			log.Errorw("Failed to write run report", "error", err)
		} else {
			pterm.Info.Printfln("Report written to %s", path)
		}
	}

	if runErr != nil {
		return runErr
	}
	if failed := countFailed(outcomes); failed > 0 {
		return errors.Newf("%d of %d file(s) failed to convert", failed, len(outcomes))
	}
	return nil
}

// printOutcomes prints one line per outcome and the totals.
func printOutcomes(format converter.Format, outcomes []converter.Outcome, elapsed time.Duration) {
	for _, o := range outcomes {
		if o.Err == nil {
			pterm.Success.Printfln("%s -> %s", filepath.Base(o.Source), o.Destination)
		} else {
			pterm.Error.Printfln("%s: %v", filepath.Base(o.Source), o.Err)
		}
	}

	failed := countFailed(outcomes)
	pterm.Println()
	pterm.Printfln("Format:       %s", format)
	pterm.Printfln("Total files:  %d", len(outcomes))
	pterm.Printfln("Successful:   %d", len(outcomes)-failed)
	pterm.Printfln("Errors:       %d", failed)
	pterm.Printfln("Time elapsed: %s", elapsed.Round(time.Millisecond))
}

// buildSummary converts outcomes into a run report.
func buildSummary(format converter.Format, outcomes []converter.Outcome, start, end time.Time) utils.ProcessingSummary {
	summary := utils.ProcessingSummary{
		RunID:      utils.NewRunID(),
		Format:     string(format),
		StartTime:  start,
		EndTime:    end,
		TotalFiles: len(outcomes),
	}
	for _, o := range outcomes {
		if o.Err == nil {
			summary.SuccessfulFiles++
			summary.ProcessedFiles = append(summary.ProcessedFiles, utils.ProcessedFileInfo{
				InputFile:  o.Source,
				OutputFile: o.Destination,
			})
			continue
		}
		summary.FailedFiles++
		summary.FailedFilesList = append(summary.FailedFilesList, utils.FailedFileInfo{
			InputFile:  o.Source,
			OutputFile: o.Destination,
			Error:      o.Err.Error(),
		})
	}
	return summary
}

// countFailed returns the number of outcomes with an error.
func countFailed(outcomes []converter.Outcome) int {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	return failed
}
