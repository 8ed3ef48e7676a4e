// =============================================================================
// SAS7BDAT Converter - Batch Driver
// =============================================================================
//
// This module converts an ordered list of requests under the run's error
// policy. Every request's keys are checked before any conversion starts.
//
// ERROR POLICY:
//   - Key schema errors always stop the run
//   - Fail-fast (default): the first conversion error is returned unchanged
//   - Continue on error: failures are recorded and, when verbose, handed to
//     the failure sink
//
// Continue-on-error runs with more than one worker convert in parallel.
// Results are reported in input order.
//
// =============================================================================

package converter

import (
	"fmt"
	"path/filepath"

	"golang.org/x/sync/errgroup"

	"github.com/ginjaninja78/sas7bdat-converter/internal/logger"
	"github.com/ginjaninja78/sas7bdat-converter/internal/validation"
)

// =============================================================================
// BATCH TYPES
// =============================================================================

// Request is one batch job: sourcePath and destinationPath, plus
// rootNodeName and recordNodeName for markup jobs.
type Request map[string]interface{}

// BatchOptions controls error handling for batch and directory runs.
type BatchOptions struct {
	// ContinueOnError keeps going after a file fails to convert.
	// Key schema errors always stop the run.
	ContinueOnError bool

	// Verbose hands each failure to the failure sink when ContinueOnError is set.
	Verbose bool

	// Workers bounds concurrent conversions in continue-on-error runs.
	// Values below 2 run sequentially.
	Workers int
}

// DefaultBatchOptions returns fail-fast, verbose, sequential options.
func DefaultBatchOptions() BatchOptions {
	return BatchOptions{ContinueOnError: false, Verbose: true, Workers: 1}
}

// Outcome records the result of one attempted conversion.
type Outcome struct {
	// Index is the position of the item in the batch or directory listing.
	Index int

	Source      string
	Destination string

	// Err is nil on success.
	Err error
}

// FailureSink receives failed outcomes in verbose continue-on-error runs.
type FailureSink func(Outcome)

// logFailure is the default FailureSink.
func (c *Converter) logFailure(o Outcome) {
	c.logger.Warnw("Error converting "+o.Source,
		logger.FieldIndex, o.Index,
		logger.FieldSource, o.Source,
		logger.FieldDestination, o.Destination,
		logger.FieldError, o.Err,
	)
}

// job is a normalized conversion waiting to run.
type job struct {
	index       int
	source      string
	destination string
	markup      *MarkupOptions

	// err is set when the request could not be normalized. The job then
	// fails without converting.
	err error
}

// =============================================================================
// BATCH DRIVER
// =============================================================================

// Batch converts each request in order.
//
// PARAMETERS:
//   - format: The target format for every request.
//   - requests: The jobs. Each must carry exactly the format's key schema.
//   - opts: Error handling options.
//
// RETURNS:
//   - One Outcome per attempted conversion, in input order.
//   - An *validation.InvalidKeySchemaError as soon as a request has a bad
//     key set, regardless of ContinueOnError. Requests before it are still
//     converted.
//   - The first conversion error, unchanged, when ContinueOnError is false.
func (c *Converter) Batch(format Format, requests []Request, opts BatchOptions) ([]Outcome, error) {
	spec, err := LookupFormat(string(format))
	if err != nil {
		return nil, err
	}

	jobs := make([]job, 0, len(requests))
	var keyErr error
	for i, req := range requests {
		if err := validation.ValidateRequest(req, RequiredKeys, spec.OptionalKeys()); err != nil {
			keyErr = err
			break
		}
		jobs = append(jobs, newJob(i, spec, req))
	}

	outcomes, err := c.run(spec, jobs, opts)
	if err != nil {
		return outcomes, err
	}
	return outcomes, keyErr
}

// newJob normalizes a validated request.
func newJob(index int, spec FormatSpec, req Request) job {
	j := job{index: index}

	var err error
	if j.source, err = PathString(req[KeySourcePath]); err != nil {
		j.source = fmt.Sprint(req[KeySourcePath])
		j.err = err
	}
	if j.destination, err = PathString(req[KeyDestinationPath]); err != nil {
		j.destination = fmt.Sprint(req[KeyDestinationPath])
		if j.err == nil {
			j.err = err
		}
	}

	if spec.AcceptsMarkupOptions {
		markup := &MarkupOptions{}
		if v, ok := req[KeyRootNodeName]; ok {
			markup.RootNodeName = fmt.Sprint(v)
		}
		if v, ok := req[KeyRecordNodeName]; ok {
			markup.RecordNodeName = fmt.Sprint(v)
		}
		j.markup = markup
	}

	return j
}

// run executes jobs under the error policy in opts.
func (c *Converter) run(spec FormatSpec, jobs []job, opts BatchOptions) ([]Outcome, error) {
	if opts.ContinueOnError && opts.Workers > 1 && len(jobs) > 1 {
		return c.runParallel(spec, jobs, opts), nil
	}

	outcomes := make([]Outcome, 0, len(jobs))
	for _, j := range jobs {
		outcome := c.runJob(spec, j)
		outcomes = append(outcomes, outcome)

		if outcome.Err == nil {
			continue
		}
		if !opts.ContinueOnError {
			return outcomes, outcome.Err
		}
		if opts.Verbose {
			c.sink(outcome)
		}
	}

	c.logSummary(spec, outcomes, 1)
	return outcomes, nil
}

// runParallel converts jobs on a bounded errgroup. Jobs that share a
// destination run one after another in input order on the same worker, so
// the last of them decides the file on disk. Outcomes and diagnostics are
// reported in input order once every job has finished.
func (c *Converter) runParallel(spec FormatSpec, jobs []job, opts BatchOptions) []Outcome {
	outcomes := make([]Outcome, len(jobs))

	var g errgroup.Group
	g.SetLimit(opts.Workers)
	for _, chain := range destinationChains(jobs) {
		g.Go(func() error {
			for _, i := range chain {
				outcomes[i] = c.runJob(spec, jobs[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	if opts.Verbose {
		for _, outcome := range outcomes {
			if outcome.Err != nil {
				c.sink(outcome)
			}
		}
	}

	c.logSummary(spec, outcomes, opts.Workers)
	return outcomes
}

// destinationChains groups job positions by destination file, keeping input
// order within each group and ordering groups by their first job.
func destinationChains(jobs []job) [][]int {
	byDestination := make(map[string]int, len(jobs))
	var chains [][]int
	for i, j := range jobs {
		key := destinationKey(j.destination)
		n, ok := byDestination[key]
		if !ok {
			n = len(chains)
			byDestination[key] = n
			chains = append(chains, nil)
		}
		chains[n] = append(chains[n], i)
	}
	return chains
}

// destinationKey identifies the file a destination path refers to.
func destinationKey(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// runJob converts one job.
func (c *Converter) runJob(spec FormatSpec, j job) Outcome {
	outcome := Outcome{Index: j.index, Source: j.source, Destination: j.destination, Err: j.err}
	if outcome.Err == nil {
		outcome.Err = c.convert(spec, j.source, j.destination, j.markup)
	}
	return outcome
}

// logSummary logs the totals of a completed run.
func (c *Converter) logSummary(spec FormatSpec, outcomes []Outcome, workers int) {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	c.logger.Infow("Conversion run complete",
		logger.FieldFormat, spec.Name,
		logger.FieldCount, len(outcomes),
		logger.FieldFailed, failed,
		logger.FieldWorkers, workers,
	)
}
