// =============================================================================
// SAS7BDAT Converter - CSV Writer Module
// =============================================================================
//
// This module writes a table as delimited text using the non-numeric quoting
// convention:
//
//   "id","name","visit"
//   1,"Smith, J","2020-01-02 00:00:00"
//   2.5,"O""Brien",
//
//   - The header row is always quoted.
//   - Text and temporal cells are quoted; embedded quotes are doubled.
//   - Numeric cells are written bare.
//   - Missing cells are written as an empty field.
//
// =============================================================================

package csvwriter

import (
	"bufio"
	"io"
	"strings"

	"github.com/cockroachdb/errors"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// Settings contains settings for writing delimited text.
type Settings struct {
	// Delimiter separates fields.
	// Default: ','
	Delimiter rune
}

// DefaultSettings returns the default CSV settings.
func DefaultSettings() Settings {
	return Settings{Delimiter: ','}
}

// Write writes table to w.
//
// PARAMETERS:
//   - w: The destination writer.
//   - table: The table to write. Row order is preserved.
//   - settings: The CSV settings.
//
// RETURNS:
//   - An error if writing fails.
func Write(w io.Writer, table *types.Table, settings Settings) error {
	if settings.Delimiter == 0 {
		settings.Delimiter = DefaultSettings().Delimiter
	}
	if settings.Delimiter == '"' || settings.Delimiter == '\n' || settings.Delimiter == '\r' {
		return errors.Newf("invalid csv delimiter %q", settings.Delimiter)
	}

	buf := bufio.NewWriter(w)

	// Header row.
	for j, name := range table.ColumnNames() {
		if j > 0 {
			buf.WriteRune(settings.Delimiter)
		}
		writeQuoted(buf, name)
	}
	buf.WriteString("\n")

	// Data rows.
	for i := 0; i < table.RowCount(); i++ {
		for j, col := range table.Columns {
			if j > 0 {
				buf.WriteRune(settings.Delimiter)
			}
			writeCell(buf, col.Values[i])
		}
		buf.WriteString("\n")
	}

	if err := buf.Flush(); err != nil {
		return errors.Wrap(err, "failed to write csv")
	}
	return nil
}

// writeCell writes one value using the non-numeric quoting rule.
func writeCell(buf *bufio.Writer, v interface{}) {
	switch v.(type) {
	case nil:
		// Missing: empty field.
	case float64, int64:
		buf.WriteString(types.FormatValue(v))
	default:
		writeQuoted(buf, types.FormatValue(v))
	}
}

// writeQuoted writes s wrapped in double quotes with embedded quotes doubled.
func writeQuoted(buf *bufio.Writer, s string) {
	buf.WriteByte('"')
	buf.WriteString(strings.ReplaceAll(s, `"`, `""`))
	buf.WriteByte('"')
}
