// =============================================================================
// SAS7BDAT Converter - XLSX Writer Module
// =============================================================================
//
// This module writes a table as a single-sheet workbook:
//   - Row 1 holds the column names.
//   - Each following row holds one record, in table order.
//   - Numeric cells are numbers, temporal cells are dates, missing cells
//     are left blank.
//
// Rows are streamed through excelize's StreamWriter so large tables do not
// build the whole sheet in memory.
//
// =============================================================================

package xlsxwriter

import (
	"io"

	"github.com/cockroachdb/errors"
	"github.com/xuri/excelize/v2"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// defaultSheet is the sheet excelize creates in a new workbook.
const defaultSheet = "Sheet1"

// Settings contains settings for writing workbooks.
type Settings struct {
	// SheetName is the name of the data sheet.
	// Default: "Sheet1"
	SheetName string
}

// DefaultSettings returns the default workbook settings.
func DefaultSettings() Settings {
	return Settings{SheetName: defaultSheet}
}

// Write writes table to w as an .xlsx workbook.
//
// PARAMETERS:
//   - w: The destination writer.
//   - table: The table to write.
//   - settings: The workbook settings.
//
// RETURNS:
//   - An error if the sheet cannot be created or written.
func Write(w io.Writer, table *types.Table, settings Settings) error {
	sheet := settings.SheetName
	if sheet == "" {
		sheet = defaultSheet
	}

	f := excelize.NewFile()
	defer f.Close()

	if sheet != defaultSheet {
		if err := f.SetSheetName(defaultSheet, sheet); err != nil {
			return errors.Wrapf(err, "failed to name sheet %q", sheet)
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return errors.Wrap(err, "failed to create stream writer")
	}

	// Header row.
	header := make([]interface{}, len(table.Columns))
	for j, name := range table.ColumnNames() {
		header[j] = name
	}
	if err := sw.SetRow("A1", header); err != nil {
		return errors.Wrap(err, "failed to write header row")
	}

	// Data rows.
	for i := 0; i < table.RowCount(); i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return errors.Wrapf(err, "row %d", i+1)
		}
		if err := sw.SetRow(cell, table.Row(i)); err != nil {
			return errors.Wrapf(err, "failed to write row %d", i+1)
		}
	}

	if err := sw.Flush(); err != nil {
		return errors.Wrap(err, "failed to flush sheet")
	}

	if err := f.Write(w); err != nil {
		return errors.Wrap(err, "failed to write workbook")
	}
	return nil
}
