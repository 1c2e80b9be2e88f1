package database

import (
	"database/sql"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/golang-sql/civil"
	mssql "github.com/microsoft/go-mssqldb"
	"github.com/shopspring/decimal"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// BindArgs converts engine values into forms the driver binds. SQL Server
// takes civil.Date natively; PostgreSQL gets a midnight UTC time.Time and
// SQLite the ISO date text. Nested JSON objects or arrays are stored as
// their JSON text. Booleans become 0/1 on PostgreSQL.
func (db *DB) BindArgs(args []any) []any {
	out := make([]any, len(args))
	for i, arg := range args {
		out[i] = db.bindArg(arg)
	}
	return out
}

func (db *DB) bindArg(arg any) any {
	switch v := arg.(type) {
	case civil.Date:
		switch db.Dialect {
		case DialectPostgres:
			return v.In(time.UTC)
		case DialectSQLite:
			return v.String()
		}
		return v
	case time.Time:
		if db.Dialect == DialectSQLite {
			return v.Format("2006-01-02 15:04:05.999999999")
		}
		return v
	case bool:
		// Flag columns are SMALLINT on PostgreSQL.
		if db.Dialect == DialectPostgres {
			if v {
				return int64(1)
			}
			return int64(0)
		}
		return v
	case json.Number:
		return v.String()
	case map[string]any, []any:
		data, err := json.Marshal(v)
		if err != nil {
			return nil
		}
		return string(data)
	case *models.Row:
		data, err := v.MarshalJSON()
		if err != nil {
			return nil
		}
		return string(data)
	}
	return arg
}

var decimalTypes = map[string]bool{
	"DECIMAL":    true,
	"NUMERIC":    true,
	"MONEY":      true,
	"SMALLMONEY": true,
}

// ScanRows reads every row into an ordered Row keyed by column name in
// result-set order. Decimal columns become float64, text arrives as
// string, and NaN floats become nil so the row stays JSON-serialisable.
func ScanRows(rows *sql.Rows) ([]*models.Row, error) {
	columns, err := rows.ColumnTypes()
	if err != nil {
		return nil, err
	}

	result := make([]*models.Row, 0)
	for rows.Next() {
		values := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}

		row := models.NewRow()
		for i, col := range columns {
			row.Set(col.Name(), normalizeScanned(values[i], strings.ToUpper(col.DatabaseTypeName())))
		}
		result = append(result, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func normalizeScanned(v any, dbType string) any {
	switch val := v.(type) {
	case []byte:
		if dbType == "UNIQUEIDENTIFIER" {
			var id mssql.UniqueIdentifier
			if err := id.Scan(val); err == nil {
				return id.String()
			}
		}
		if decimalTypes[dbType] {
			return decimalToFloat(string(val))
		}
		return string(val)
	case string:
		if decimalTypes[dbType] {
			return decimalToFloat(val)
		}
		return val
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return nil
		}
		return val
	case float32:
		f := float64(val)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
		return f
	default:
		return v
	}
}

func decimalToFloat(s string) any {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return s
	}
	return d.InexactFloat64()
}
