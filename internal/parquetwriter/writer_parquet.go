//go:build parquet

package parquetwriter

import (
	"fmt"
	"io"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/parquet-go/parquet-go"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// Available reports whether Parquet support is compiled in.
const Available = true

// Write writes table to w as a Parquet file.
//
// PARAMETERS:
//   - w: The destination writer.
//   - table: The table to write. Row order is preserved.
//
// RETURNS:
//   - An error if the schema cannot be built or writing fails.
func Write(w io.Writer, table *types.Table) error {
	schema, err := buildSchema(table)
	if err != nil {
		return err
	}

	leaves := schema.Columns()
	if len(leaves) != len(table.Columns) {
		return errors.Newf("parquet schema has %d columns, table has %d", len(leaves), len(table.Columns))
	}
	for leaf, path := range leaves {
		if len(path) != 1 || path[0] != table.Columns[leaf].Name {
			return errors.Newf("parquet column %d is %v, expected %q", leaf, path, table.Columns[leaf].Name)
		}
	}

	writer := parquet.NewWriter(w, schema)

	rows := make([]parquet.Row, 0, table.RowCount())
	for i := 0; i < table.RowCount(); i++ {
		row := make(parquet.Row, len(table.Columns))
		for leaf, col := range table.Columns {
			row[leaf] = toValue(col.Type, col.Values[i]).Level(0, definitionLevel(col.Values[i]), leaf)
		}
		rows = append(rows, row)
	}

	if _, err := writer.WriteRows(rows); err != nil {
		return errors.Wrap(err, "failed to write parquet rows")
	}
	if err := writer.Close(); err != nil {
		return errors.Wrap(err, "failed to close parquet writer")
	}
	return nil
}

// buildSchema creates a flat schema of optional leaves in table column order.
//
// parquet.Group sorts its fields by name; a struct type keeps table.Columns
// order.
func buildSchema(table *types.Table) (schema *parquet.Schema, err error) {
	seen := make(map[string]bool, len(table.Columns))
	fields := make([]reflect.StructField, len(table.Columns))
	for i, col := range table.Columns {
		if col.Name == "" || col.Name == "-" || strings.Contains(col.Name, ",") {
			return nil, errors.Newf("column name %q cannot be used in a parquet schema", col.Name)
		}
		if seen[col.Name] {
			return nil, errors.Newf("duplicate column name %q", col.Name)
		}
		seen[col.Name] = true

		goType, tag := fieldFor(col)
		fields[i] = reflect.StructField{
			Name: fmt.Sprintf("C%d", i),
			Type: goType,
			Tag:  reflect.StructTag("parquet:" + strconv.Quote(tag)),
		}
	}

	// SchemaOf panics on tags it cannot parse.
	defer func() {
		if r := recover(); r != nil {
			schema, err = nil, errors.Newf("failed to build parquet schema: %v", r)
		}
	}()
	return parquet.SchemaOf(reflect.New(reflect.StructOf(fields)).Interface()), nil
}

// fieldFor maps a column to a nullable Go field type and its parquet tag.
func fieldFor(col types.Column) (reflect.Type, string) {
	switch col.Type {
	case types.Text:
		return reflect.TypeOf((*string)(nil)), col.Name
	case types.Temporal:
		return reflect.TypeOf((*time.Time)(nil)), col.Name + ",timestamp(millisecond)"
	default:
		return reflect.TypeOf((*float64)(nil)), col.Name
	}
}

// definitionLevel is 1 for a present optional value and 0 for null.
func definitionLevel(v interface{}) int {
	if v == nil {
		return 0
	}
	return 1
}

// toValue converts a cell to a Parquet value.
func toValue(t types.ColumnType, v interface{}) parquet.Value {
	if v == nil {
		return parquet.NullValue()
	}
	switch t {
	case types.Text:
		return parquet.ByteArrayValue([]byte(types.FormatValue(v)))
	case types.Temporal:
		if ts, ok := v.(time.Time); ok {
			return parquet.Int64Value(ts.UnixMilli())
		}
		return parquet.NullValue()
	default:
		if f, ok := v.(float64); ok {
			return parquet.DoubleValue(f)
		}
		return parquet.NullValue()
	}
}
