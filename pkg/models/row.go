package models

import (
	"strings"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Row is an insertion-ordered mapping of column name to scalar value.
// Payload rows, filter mappings and fetched records all use it so that
// column order survives from the wire to the generated SQL and back.
type Row = orderedmap.OrderedMap[string, any]

// NewRow returns an empty Row.
func NewRow() *Row {
	return orderedmap.New[string, any]()
}

// RowOf builds a Row from alternating column/value arguments.
// A trailing column without a value is stored as nil.
func RowOf(kv ...any) *Row {
	row := NewRow()
	for i := 0; i < len(kv); i += 2 {
		key, _ := kv[i].(string)
		var value any
		if i+1 < len(kv) {
			value = kv[i+1]
		}
		row.Set(key, value)
	}
	return row
}

// Columns returns the row's column names in insertion order.
func Columns(row *Row) []string {
	if row == nil {
		return nil
	}
	cols := make([]string, 0, row.Len())
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		cols = append(cols, pair.Key)
	}
	return cols
}

// Values returns the row's values in insertion order.
func Values(row *Row) []any {
	if row == nil {
		return nil
	}
	values := make([]any, 0, row.Len())
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		values = append(values, pair.Value)
	}
	return values
}

// CloneRow returns a shallow copy of row.
func CloneRow(row *Row) *Row {
	clone := NewRow()
	if row == nil {
		return clone
	}
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		clone.Set(pair.Key, pair.Value)
	}
	return clone
}

// WithoutColumns returns a copy of row minus the named columns.
func WithoutColumns(row *Row, columns ...string) *Row {
	clone := CloneRow(row)
	for _, col := range columns {
		clone.Delete(col)
	}
	return clone
}

// RenameColumn moves a value from one column name to another, keeping the
// value at the end of the row. No-op when from is absent.
func RenameColumn(row *Row, from, to string) {
	value, ok := row.Get(from)
	if !ok {
		return
	}
	row.Delete(from)
	row.Set(to, value)
}

// HasValue reports whether v counts as supplied: nil and whitespace-only
// strings do not.
func HasValue(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(t) != ""
	case *string:
		return t != nil && strings.TrimSpace(*t) != ""
	default:
		return true
	}
}

// RowHasValue reports whether row holds a supplied value for column.
func RowHasValue(row *Row, column string) bool {
	if row == nil {
		return false
	}
	v, ok := row.Get(column)
	return ok && HasValue(v)
}
