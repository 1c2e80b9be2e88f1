package jsonutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

// maxExactFloat is the largest integer a float64 holds without loss.
const maxExactFloat = 1 << 53

// FlexibleString renders a scalar payload value as text, handling clients
// that send numbers or booleans where strings are expected. Returns empty
// string for nil.
func FlexibleString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case json.Number:
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < maxExactFloat {
			return strconv.FormatInt(int64(t), 10)
		}
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// DecodeRow decodes a JSON object into an ordered Row.
func DecodeRow(data []byte) (*models.Row, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || data[0] != '{' {
		return nil, fmt.Errorf("expected a JSON object")
	}
	row := models.NewRow()
	if err := json.Unmarshal(data, row); err != nil {
		return nil, fmt.Errorf("failed to decode row: %w", err)
	}
	normalizeNumbers(row)
	return row, nil
}

// DecodeRows decodes a JSON array of objects into ordered Rows.
// A single object is accepted and returned as a one-element slice.
func DecodeRows(data []byte) ([]*models.Row, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, fmt.Errorf("empty body")
	}
	if data[0] == '{' {
		row, err := DecodeRow(data)
		if err != nil {
			return nil, err
		}
		return []*models.Row{row}, nil
	}

	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("failed to decode rows: %w", err)
	}
	rows := make([]*models.Row, 0, len(raws))
	for i, raw := range raws {
		row, err := DecodeRow(raw)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i, err)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// normalizeNumbers turns integral JSON numbers into int64 so they bind as
// integers rather than floats.
func normalizeNumbers(row *models.Row) {
	for pair := row.Oldest(); pair != nil; pair = pair.Next() {
		f, ok := pair.Value.(float64)
		if !ok {
			continue
		}
		if f == math.Trunc(f) && math.Abs(f) < maxExactFloat {
			pair.Value = int64(f)
		}
	}
}
