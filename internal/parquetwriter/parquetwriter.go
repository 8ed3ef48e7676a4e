// =============================================================================
// SAS7BDAT Converter - Parquet Writer Module
// =============================================================================
//
// This module writes a table as a Parquet file with one optional column per
// table column:
//   - numeric  -> DOUBLE
//   - text     -> BYTE_ARRAY (STRING)
//   - temporal -> INT64 (TIMESTAMP, milliseconds, UTC)
//
// The encoder is compiled only with the `parquet` build tag. Without it,
// Write reports ErrBackendUnavailable.
//
// =============================================================================

package parquetwriter

import "github.com/cockroachdb/errors"

// Component names the optional backend in error messages.
const Component = "parquet backend"

// ErrBackendUnavailable is returned when the binary was built without Parquet support.
var ErrBackendUnavailable = errors.New("parquet backend not compiled in (build with -tags parquet)")
