package sql

import (
	"fmt"
	"slices"
	"strings"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// Select builds "SELECT * FROM table", an AND-joined equality WHERE clause
// over filters in insertion order, and an optional ORDER BY. Values are
// returned as parameters in the same order; only validated identifiers are
// embedded in the text.
func (f Flavor) Select(table string, filters *models.Row, orderBy string) (string, []any, error) {
	return f.SelectPrefixMatch(table, filters, "", nil, orderBy)
}

// SelectPrefixMatch extends Select with "(column LIKE ? OR ...)" over the
// given prefixes, each bound as "prefix%" after the equality parameters.
// With no prefixes it is identical to Select.
func (f Flavor) SelectPrefixMatch(table string, filters *models.Row, column string, prefixes []string, orderBy string) (string, []any, error) {
	if err := EnsureSafeIdentifier(table); err != nil {
		return "", nil, err
	}

	var b strings.Builder
	b.WriteString("SELECT * FROM ")
	b.WriteString(f.Ident(table))

	conditions, params, err := f.equalities(filters, nil)
	if err != nil {
		return "", nil, err
	}

	if len(prefixes) > 0 {
		if err := EnsureSafeIdentifier(column); err != nil {
			return "", nil, err
		}
		likes := make([]string, 0, len(prefixes))
		for _, prefix := range prefixes {
			likes = append(likes, f.Ident(column)+" LIKE ?")
			params = append(params, prefix+"%")
		}
		conditions = append(conditions, "("+strings.Join(likes, " OR ")+")")
	}

	if len(conditions) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(conditions, " AND "))
	}

	if orderBy != "" {
		if err := EnsureSafeIdentifier(orderBy); err != nil {
			return "", nil, err
		}
		b.WriteString(" ORDER BY ")
		b.WriteString(f.Ident(orderBy))
	}

	return f.Rebind(b.String()), params, nil
}

// Merge builds a single-row MERGE statement matching on keys. Matched rows
// have every non-key column updated from the source; unmatched rows are
// inserted with every column, or every non-key column when
// excludeKeysFromInsert is set for identity keys.
func (f Flavor) Merge(table string, row *models.Row, keys []string, excludeKeysFromInsert bool) (string, []any, error) {
	cols, err := f.checkWrite(table, row, keys)
	if err != nil {
		return "", nil, err
	}

	sourceCols := make([]string, 0, len(cols))
	for _, col := range cols {
		sourceCols = append(sourceCols, "? AS "+f.Ident(col))
	}

	match := make([]string, 0, len(keys))
	for _, key := range keys {
		match = append(match, fmt.Sprintf("target.%s = source.%s", f.Ident(key), f.Ident(key)))
	}

	var updates, insertCols, insertVals []string
	for _, col := range cols {
		isKey := slices.Contains(keys, col)
		if !isKey {
			updates = append(updates, fmt.Sprintf("%s = source.%s", f.Ident(col), f.Ident(col)))
		}
		if isKey && excludeKeysFromInsert {
			continue
		}
		insertCols = append(insertCols, f.Ident(col))
		insertVals = append(insertVals, "source."+f.Ident(col))
	}

	if len(updates) == 0 && len(insertCols) == 0 {
		return "", nil, fmt.Errorf("merge into %s: row has nothing to update or insert", table)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MERGE INTO %s AS target USING (SELECT %s) AS source ON %s",
		f.Ident(table), strings.Join(sourceCols, ", "), strings.Join(match, " AND "))
	if len(updates) > 0 {
		b.WriteString(" WHEN MATCHED THEN UPDATE SET ")
		b.WriteString(strings.Join(updates, ", "))
	}
	if len(insertCols) > 0 {
		fmt.Fprintf(&b, " WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
			strings.Join(insertCols, ", "), strings.Join(insertVals, ", "))
	}
	b.WriteString(";")

	return f.Rebind(b.String()), models.Values(row), nil
}

// Exists builds "SELECT 1 FROM table WHERE <keys>" for upsert emulation.
func (f Flavor) Exists(table string, row *models.Row, keys []string) (string, []any, error) {
	if _, err := f.checkWrite(table, row, keys); err != nil {
		return "", nil, err
	}
	where, params, err := f.keyEqualities(row, keys)
	if err != nil {
		return "", nil, err
	}
	query := fmt.Sprintf("SELECT 1 FROM %s WHERE %s", f.Ident(table), where)
	return f.Rebind(query), params, nil
}

// Update builds "UPDATE table SET <non-key columns> WHERE <keys>". It
// returns an empty statement when the row holds only key columns.
func (f Flavor) Update(table string, row *models.Row, keys []string) (string, []any, error) {
	if _, err := f.checkWrite(table, row, keys); err != nil {
		return "", nil, err
	}

	var sets []string
	var params []any
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		if slices.Contains(keys, pair.Key) {
			continue
		}
		sets = append(sets, f.Ident(pair.Key)+" = ?")
		params = append(params, pair.Value)
	}
	if len(sets) == 0 {
		return "", nil, nil
	}

	where, keyParams, err := f.keyEqualities(row, keys)
	if err != nil {
		return "", nil, err
	}
	params = append(params, keyParams...)

	query := fmt.Sprintf("UPDATE %s SET %s WHERE %s", f.Ident(table), strings.Join(sets, ", "), where)
	return f.Rebind(query), params, nil
}

// Insert builds a single-row INSERT. When returning is set the statement
// yields that column of the new row (identity values).
func (f Flavor) Insert(table string, row *models.Row, returning string) (string, []any, error) {
	cols, err := f.checkWrite(table, row, nil)
	if err != nil {
		return "", nil, err
	}
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("insert into %s: row has no columns", table)
	}
	if returning != "" {
		if err := EnsureSafeIdentifier(returning); err != nil {
			return "", nil, err
		}
	}

	quoted := make([]string, 0, len(cols))
	marks := make([]string, 0, len(cols))
	for _, col := range cols {
		quoted = append(quoted, f.Ident(col))
		marks = append(marks, "?")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s)", f.Ident(table), strings.Join(quoted, ", "))
	if returning != "" && f.OutputInserted {
		b.WriteString(" OUTPUT INSERTED." + f.Ident(returning))
	}
	fmt.Fprintf(&b, " VALUES (%s)", strings.Join(marks, ", "))
	if returning != "" && !f.OutputInserted {
		b.WriteString(" RETURNING " + f.Ident(returning))
	}

	return f.Rebind(b.String()), models.Values(row), nil
}

// Delete builds "DELETE FROM table WHERE <keys>".
func (f Flavor) Delete(table string, row *models.Row, keys []string) (string, []any, error) {
	if _, err := f.checkWrite(table, row, keys); err != nil {
		return "", nil, err
	}
	where, params, err := f.keyEqualities(row, keys)
	if err != nil {
		return "", nil, err
	}
	query := fmt.Sprintf("DELETE FROM %s WHERE %s", f.Ident(table), where)
	return f.Rebind(query), params, nil
}

// UpdateColumn builds "UPDATE table SET column = ? WHERE whereColumn = ?".
func (f Flavor) UpdateColumn(table, column string, value any, whereColumn string, whereValue any) (string, []any, error) {
	if err := EnsureSafeIdentifiers(table, column, whereColumn); err != nil {
		return "", nil, err
	}
	query := fmt.Sprintf("UPDATE %s SET %s = ? WHERE %s = ?", f.Ident(table), f.Ident(column), f.Ident(whereColumn))
	return f.Rebind(query), []any{value, whereValue}, nil
}

// checkWrite validates the table, every row column and every key, and
// returns the row's columns.
func (f Flavor) checkWrite(table string, row *models.Row, keys []string) ([]string, error) {
	if err := EnsureSafeIdentifier(table); err != nil {
		return nil, err
	}
	cols := models.Columns(row)
	if err := EnsureSafeIdentifiers(cols...); err != nil {
		return nil, err
	}
	if err := EnsureSafeIdentifiers(keys...); err != nil {
		return nil, err
	}
	return cols, nil
}

func (f Flavor) keyEqualities(row *models.Row, keys []string) (string, []any, error) {
	if len(keys) == 0 {
		return "", nil, fmt.Errorf("no key columns given")
	}
	conditions, params, err := f.equalities(row, keys)
	if err != nil {
		return "", nil, err
	}
	return strings.Join(conditions, " AND "), params, nil
}

// equalities renders "col = ?" for each column in only (or every column of
// row when only is nil), in that order.
func (f Flavor) equalities(row *models.Row, only []string) ([]string, []any, error) {
	var conditions []string
	var params []any

	if only != nil {
		if row == nil {
			return nil, nil, fmt.Errorf("no row given")
		}
		for _, col := range only {
			value, ok := row.Get(col)
			if !ok {
				return nil, nil, fmt.Errorf("key column %s missing from row", col)
			}
			conditions = append(conditions, f.Ident(col)+" = ?")
			params = append(params, value)
		}
		return conditions, params, nil
	}

	if row == nil {
		return nil, nil, nil
	}
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		if err := EnsureSafeIdentifier(pair.Key); err != nil {
			return nil, nil, err
		}
		conditions = append(conditions, f.Ident(pair.Key)+" = ?")
		params = append(params, pair.Value)
	}
	return conditions, params, nil
}
