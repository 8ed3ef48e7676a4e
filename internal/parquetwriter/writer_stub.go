//go:build !parquet

package parquetwriter

import (
	"io"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// Available reports whether Parquet support is compiled in.
const Available = false

// Write always fails with ErrBackendUnavailable in this build.
func Write(_ io.Writer, _ *types.Table) error {
	return ErrBackendUnavailable
}
