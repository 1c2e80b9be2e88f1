package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRowOf_KeepsOrder(t *testing.T) {
	row := RowOf("PolMod", "00", "CustomerNum", "C1", "Trailing")

	assert.Equal(t, []string{"PolMod", "CustomerNum", "Trailing"}, Columns(row))
	assert.Equal(t, []any{"00", "C1", nil}, Values(row))

	data, err := json.Marshal(row)
	require.NoError(t, err)
	assert.JSONEq(t, `{"PolMod":"00","CustomerNum":"C1","Trailing":null}`, string(data))
	assert.Equal(t, `{"PolMod":"00","CustomerNum":"C1","Trailing":null}`, string(data))
}

func TestWithoutColumns_LeavesInputAlone(t *testing.T) {
	row := RowOf("PK_Number", 7, "CustomerNum", "C1")

	out := WithoutColumns(row, "PK_Number", "Missing")

	assert.Equal(t, []string{"CustomerNum"}, Columns(out))
	assert.Equal(t, []string{"PK_Number", "CustomerNum"}, Columns(row))
}

func TestRenameColumn(t *testing.T) {
	row := RowOf("CustomerNum", "C1", "UserName", "Pat")

	RenameColumn(row, "CustomerNum", "CustNum")
	assert.Equal(t, []string{"UserName", "CustNum"}, Columns(row))

	RenameColumn(row, "Missing", "Other")
	assert.Equal(t, 2, row.Len())
}

func TestHasValue(t *testing.T) {
	assert.False(t, HasValue(nil))
	assert.False(t, HasValue("  "))
	assert.True(t, HasValue("x"))
	assert.True(t, HasValue(0))
	assert.True(t, HasValue(false))

	blank := " "
	assert.False(t, HasValue(&blank))
	assert.False(t, RowHasValue(RowOf("A", ""), "A"))
	assert.False(t, RowHasValue(nil, "A"))
	assert.True(t, RowHasValue(RowOf("A", 1), "A"))
}
