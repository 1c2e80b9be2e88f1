package database

import (
	"math"
	"testing"
	"time"

	"github.com/golang-sql/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/sac-engine/pkg/models"
)

func TestBindArgs_Dates(t *testing.T) {
	d := civil.Date{Year: 2024, Month: time.March, Day: 5}

	mssqlDB, err := New(nil, DialectMSSQL, 0)
	require.NoError(t, err)
	assert.Equal(t, d, mssqlDB.BindArgs([]any{d})[0])

	pgDB, err := New(nil, DialectPostgres, 0)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC), pgDB.BindArgs([]any{d})[0])

	liteDB, err := New(nil, DialectSQLite, 0)
	require.NoError(t, err)
	assert.Equal(t, "2024-03-05", liteDB.BindArgs([]any{d})[0])
}

func TestBindArgs_PassThroughAndJSON(t *testing.T) {
	db, err := New(nil, DialectMSSQL, 0)
	require.NoError(t, err)

	args := db.BindArgs([]any{"C1", int64(3), nil, true, map[string]any{"a": 1}, models.RowOf("x", "y")})
	assert.Equal(t, "C1", args[0])
	assert.Equal(t, int64(3), args[1])
	assert.Nil(t, args[2])
	assert.Equal(t, true, args[3])
	assert.Equal(t, `{"a":1}`, args[4])
	assert.Equal(t, `{"x":"y"}`, args[5])
}

func TestBindArgs_PostgresBooleansBecomeBits(t *testing.T) {
	db, err := New(nil, DialectPostgres, 0)
	require.NoError(t, err)

	args := db.BindArgs([]any{true, false})
	assert.Equal(t, int64(1), args[0])
	assert.Equal(t, int64(0), args[1])
}

func TestNormalizeScanned(t *testing.T) {
	assert.Equal(t, 1250.5, normalizeScanned([]byte("1250.50"), "DECIMAL"))
	assert.Equal(t, 99.99, normalizeScanned("99.99", "NUMERIC"))
	assert.Equal(t, "Gold", normalizeScanned([]byte("Gold"), "NVARCHAR"))
	assert.Nil(t, normalizeScanned(math.NaN(), "FLOAT"))
	assert.Nil(t, normalizeScanned(math.Inf(1), "FLOAT"))
	assert.Equal(t, int64(7), normalizeScanned(int64(7), "INT"))
	assert.Equal(t, "not-a-number", normalizeScanned("not-a-number", "DECIMAL"))

	guid := []byte{0x78, 0x56, 0x34, 0x12, 0x34, 0x12, 0x78, 0x56, 0x12, 0x34, 0x56, 0x78, 0x9a, 0xbc, 0xde, 0xf0}
	assert.Equal(t, "12345678-1234-5678-1234-56789ABCDEF0", normalizeScanned(guid, "UNIQUEIDENTIFIER"))
}
