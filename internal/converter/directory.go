// =============================================================================
// SAS7BDAT Converter - Directory Driver
// =============================================================================
//
// This module converts every .sas7bdat and .xpt file directly inside a
// directory, using the same error policy as the batch driver.
//
// =============================================================================

package converter

import (
	"github.com/ginjaninja78/sas7bdat-converter/pkg/utils"
)

// Directory converts every .sas7bdat and .xpt file directly inside srcDir.
//
// PARAMETERS:
//   - format: The target format.
//   - srcDir: The directory to scan. Subdirectories are ignored.
//   - dstDir: Where outputs go. Empty means srcDir. Created if missing.
//   - opts: Error handling options, as for Batch.
//
// Each output is named {stem}.{canonical extension}. XML outputs use the
// configured node names.
//
// RETURNS:
//   - One Outcome per attempted file, in file-name order.
//   - The error from reading srcDir or creating dstDir, unchanged.
//   - The first conversion error when ContinueOnError is false.
func (c *Converter) Directory(format Format, srcDir, dstDir string, opts BatchOptions) ([]Outcome, error) {
	spec, err := LookupFormat(string(format))
	if err != nil {
		return nil, err
	}

	sources, err := utils.DiscoverSourceFiles(srcDir, SourceExtensions)
	if err != nil {
		return nil, err
	}

	if dstDir == "" {
		dstDir = srcDir
	}
	if err := utils.EnsureDirectory(dstDir); err != nil {
		return nil, err
	}

	jobs := make([]job, len(sources))
	for i, src := range sources {
		jobs[i] = job{
			index:       i,
			source:      src,
			destination: utils.DestinationPath(dstDir, src, spec.Canonical),
		}
	}

	return c.run(spec, jobs, opts)
}
