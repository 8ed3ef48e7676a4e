// =============================================================================
// SAS7BDAT Converter - JSON Writer Module
// =============================================================================
//
// This module writes a table as a JSON document. Column order is preserved
// in both layouts, so objects are written key by key instead of through maps.
//
// ORIENTS:
//   - "columns" (default): {"id":{"0":1,"1":2},"name":{"0":"a","1":"b"}}
//   - "records":           [{"id":1,"name":"a"},{"id":2,"name":"b"}]
//
// Missing cells are null. Temporal cells are epoch milliseconds by default
// or ISO-8601 text.
//
// =============================================================================

package jsonwriter

import (
	"bufio"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// Orient values.
const (
	OrientColumns = "columns"
	OrientRecords = "records"
)

// Date format values.
const (
	DateEpoch = "epoch"
	DateISO   = "iso"
)

// isoLayout is the text form of temporal cells when DateFormat is "iso".
const isoLayout = "2006-01-02T15:04:05.000"

// Settings contains settings for writing JSON.
type Settings struct {
	// Orient selects the document layout.
	// Default: "columns"
	Orient string

	// DateFormat selects how temporal cells are written.
	// Default: "epoch"
	DateFormat string
}

// DefaultSettings returns the default JSON settings.
func DefaultSettings() Settings {
	return Settings{Orient: OrientColumns, DateFormat: DateEpoch}
}

// Write writes table to w as a single JSON document.
func Write(w io.Writer, table *types.Table, settings Settings) error {
	if settings.Orient == "" {
		settings.Orient = OrientColumns
	}
	if settings.DateFormat == "" {
		settings.DateFormat = DateEpoch
	}
	if settings.DateFormat != DateEpoch && settings.DateFormat != DateISO {
		return errors.Newf("unknown json date format %q", settings.DateFormat)
	}

	buf := bufio.NewWriter(w)

	var err error
	switch settings.Orient {
	case OrientColumns:
		err = writeColumns(buf, table, settings)
	case OrientRecords:
		err = writeRecords(buf, table, settings)
	default:
		return errors.Newf("unknown json orient %q", settings.Orient)
	}
	if err != nil {
		return err
	}

	if err := buf.Flush(); err != nil {
		return errors.Wrap(err, "failed to write json")
	}
	return nil
}

// writeColumns writes {"col":{"0":v,...},...}.
func writeColumns(buf *bufio.Writer, table *types.Table, settings Settings) error {
	rows := table.RowCount()

	buf.WriteByte('{')
	for j, col := range table.Columns {
		if j > 0 {
			buf.WriteByte(',')
		}
		if err := writeKey(buf, col.Name); err != nil {
			return err
		}
		buf.WriteByte('{')
		for i := 0; i < rows; i++ {
			if i > 0 {
				buf.WriteByte(',')
			}
			buf.WriteByte('"')
			buf.WriteString(strconv.Itoa(i))
			buf.WriteString(`":`)
			if err := writeValue(buf, col.Values[i], settings); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte('}')
	return nil
}

// writeRecords writes [{"col":v,...},...].
func writeRecords(buf *bufio.Writer, table *types.Table, settings Settings) error {
	rows := table.RowCount()

	buf.WriteByte('[')
	for i := 0; i < rows; i++ {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteByte('{')
		for j, col := range table.Columns {
			if j > 0 {
				buf.WriteByte(',')
			}
			if err := writeKey(buf, col.Name); err != nil {
				return err
			}
			if err := writeValue(buf, col.Values[i], settings); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	}
	buf.WriteByte(']')
	return nil
}

// writeKey writes a quoted object key and the colon.
func writeKey(buf *bufio.Writer, name string) error {
	key, err := json.Marshal(name)
	if err != nil {
		return errors.Wrapf(err, "failed to encode column name %q", name)
	}
	buf.Write(key)
	buf.WriteByte(':')
	return nil
}

// writeValue writes one cell.
func writeValue(buf *bufio.Writer, v interface{}, settings Settings) error {
	if t, ok := v.(time.Time); ok {
		if settings.DateFormat == DateISO {
			v = t.UTC().Format(isoLayout)
		} else {
			v = t.UnixMilli()
		}
	}

	data, err := json.Marshal(v)
	if err != nil {
		return errors.Wrap(err, "failed to encode value")
	}
	buf.Write(data)
	return nil
}
