// =============================================================================
// SAS7BDAT Converter - Shared Types
// =============================================================================
//
// This package contains the in-memory table shared by the source parser and
// every format writer. Keeping it here avoids import cycles between:
//   - sasparser
//   - converter
//   - csvwriter, jsonwriter, xlsxwriter, xmlwriter, parquetwriter
//
// =============================================================================

package types

import (
	"fmt"
	"strconv"
	"time"
)

// =============================================================================
// COLUMN TYPES
// =============================================================================

// ColumnType is the uniform element type of a column.
type ColumnType int

const (
	// Numeric columns hold float64 values.
	Numeric ColumnType = iota

	// Text columns hold decoded UTF-8 strings.
	Text

	// Temporal columns hold time.Time values.
	Temporal
)

// String returns the lower-case name of the column type.
func (t ColumnType) String() string {
	switch t {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	case Temporal:
		return "temporal"
	default:
		return "unknown"
	}
}

// TimeLayout is the text form used for temporal cells in text outputs.
const TimeLayout = "2006-01-02 15:04:05"

// =============================================================================
// TABLE TYPES
// =============================================================================

// Table is a parsed source file: an ordered list of named columns of equal
// length. Row order is significant and must be preserved by every writer.
type Table struct {
	// Columns in source order.
	Columns []Column
}

// Column is a single named, typed column.
type Column struct {
	// Name is the column name as stored in the source file.
	Name string

	// Type is the element type shared by every non-missing value.
	Type ColumnType

	// Values holds one entry per row: float64, string or time.Time
	// depending on Type, or nil for a missing cell.
	Values []interface{}
}

// RowCount returns the number of rows in the table.
func (t *Table) RowCount() int {
	if t == nil || len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnNames returns the column names in order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, col := range t.Columns {
		names[i] = col.Name
	}
	return names
}

// Row returns the values of row i in column order.
func (t *Table) Row(i int) []interface{} {
	row := make([]interface{}, len(t.Columns))
	for j, col := range t.Columns {
		row[j] = col.Values[i]
	}
	return row
}

// =============================================================================
// VALUE FORMATTING
// =============================================================================

// FormatValue returns the natural text form of a cell value.
// Missing cells render as the empty string.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case time.Time:
		return val.Format(TimeLayout)
	case int64:
		return strconv.FormatInt(val, 10)
	default:
		return fmt.Sprint(val)
	}
}
