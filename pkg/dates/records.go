package dates

import (
	"slices"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// Selector decides which columns of a row are date fields. The zero value
// uses the IsDateField name heuristic; a selector built with Fields only
// matches the listed columns.
type Selector struct {
	fields []string
}

// Fields returns a Selector for an explicit set of columns.
func Fields(names ...string) Selector {
	if names == nil {
		names = []string{}
	}
	return Selector{fields: names}
}

// Heuristic returns the name-based Selector.
func Heuristic() Selector {
	return Selector{}
}

// Match reports whether column is selected.
func (s Selector) Match(column string) bool {
	if s.fields == nil {
		return IsDateField(column)
	}
	return slices.Contains(s.fields, column)
}

// FormatRow rewrites the selected columns of row for output, in place.
func FormatRow(row *models.Row, sel Selector) *models.Row {
	return apply(row, sel, FormatValue)
}

// FormatRows applies FormatRow to every row.
func FormatRows(rows []*models.Row, sel Selector) []*models.Row {
	for _, row := range rows {
		FormatRow(row, sel)
	}
	return rows
}

// NormalizeRow parses the selected columns of an inbound row, in place.
func NormalizeRow(row *models.Row, sel Selector) *models.Row {
	return apply(row, sel, ParseValue)
}

// NormalizeRows applies NormalizeRow to every row.
func NormalizeRows(rows []*models.Row, sel Selector) []*models.Row {
	for _, row := range rows {
		NormalizeRow(row, sel)
	}
	return rows
}

func apply(row *models.Row, sel Selector, fn func(any) any) *models.Row {
	if row == nil {
		return nil
	}
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		if sel.Match(pair.Key) {
			pair.Value = fn(pair.Value)
		}
	}
	return row
}
