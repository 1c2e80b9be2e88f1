package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/database"
	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/testhelpers"
)

func TestEmbeddedCatalogs(t *testing.T) {
	search, err := SearchCatalog()
	require.NoError(t, err)
	assert.Equal(t, []string{"AccountName", "CustomerNum", "PolicyNamedInsured", "PolicyNum", "ProducerCode"}, search.Names())

	dropdowns, err := DropdownCatalog()
	require.NoError(t, err)
	assert.Equal(t, []string{
		"AcctOwner", "BranchName", "CreatedBy", "LossCtlRep1", "LossCtlRep2",
		"RiskSolMgr", "SAC_Contact1", "SAC_Contact2", "ServLevel", "all",
	}, dropdowns.Names())
	assert.Equal(t, []any{"Yes"}, dropdowns["LossCtlRep2"].Params)

	for name, q := range search {
		assert.NotContains(t, q.SQL, ";", name)
		assert.NotEmpty(t, q.Postgres, name)
	}
}

func TestCatalogQuery_For(t *testing.T) {
	q := CatalogQuery{SQL: "SELECT a FROM t", Postgres: `SELECT "a" FROM "t"`}
	assert.Equal(t, q.SQL, q.For(database.DialectMSSQL))
	assert.Equal(t, q.SQL, q.For(database.DialectSQLite))
	assert.Equal(t, q.Postgres, q.For(database.DialectPostgres))

	assert.Equal(t, "SELECT a FROM t", CatalogQuery{SQL: "SELECT a FROM t"}.For(database.DialectPostgres))
}

func TestParseCatalog_BracketsAndComments(t *testing.T) {
	c, err := ParseCatalog([]byte("x:\n  sql: SELECT CustomerName AS [Name; Full] FROM tblAcctSpecial; -- trailing\n"))
	require.NoError(t, err)
	assert.Equal(t, "SELECT CustomerName AS [Name; Full] FROM tblAcctSpecial", c["x"].SQL)
}

func TestParseCatalog_Rejects(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"missing sql", "x:\n  postgres: SELECT 1\n"},
		{"multiple statements", "x:\n  sql: SELECT a FROM t; DELETE FROM t\n"},
		{"column mismatch", "x:\n  sql: SELECT a, b FROM t\n  postgres: SELECT \"a\" FROM \"t\"\n"},
		{"not yaml", "x: [\n"},
		{"not a select", "x:\n  sql: DELETE FROM t\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCatalog([]byte(tt.yaml))
			assert.Error(t, err)
		})
	}
}

func TestSearchService(t *testing.T) {
	db, records := setupRecords(t)
	ctx := context.Background()

	testhelpers.Exec(t, db, `INSERT INTO tblAcctSpecial (CustomerNum, CustomerName, OnBoardDate, ServLevel, Stage, isSubmitted)
		VALUES (?, ?, ?, ?, ?, ?)`, "C1", "Acme", "2024-01-05", "Primary", "Admin", 1)
	testhelpers.Exec(t, db, `INSERT INTO tblAcctSpecial (CustomerNum, CustomerName, Stage, isSubmitted)
		VALUES (?, ?, ?, ?)`, "C2", "Draft Co", "Underwriting", 0)
	testhelpers.Exec(t, db, `INSERT INTO tblPolicies (CustomerNum, PolicyNum, PolMod) VALUES (?, ?, ?)`, "C1", "P1", "00")
	testhelpers.Exec(t, db, `INSERT INTO tblPolicies (CustomerNum, PolicyNum, PolMod) VALUES (?, ?, ?)`, "C2", "P2", "00")

	svc, err := NewSearchService(records, database.DialectSQLite, zap.NewNop())
	require.NoError(t, err)
	assert.Contains(t, svc.Kinds(), "PolicyNum")

	rows, err := svc.Search(ctx, "PolicyNum")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Policy Number", "Customer Number", "Customer Name", "On Board Date", "Service Level"}, models.Columns(rows[0]))
	assert.Equal(t, "P1", value(rows[0], "Policy Number"))
	assert.Equal(t, "05-01-2024", value(rows[0], "On Board Date"))

	rows, err = svc.Search(ctx, "AccountName")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", value(rows[0], "Customer Name"))

	_, err = svc.Search(ctx, "Nickname")
	assert.True(t, errors.Is(err, apperrors.ErrUnknownSearch))
}

func TestDropdownService(t *testing.T) {
	db, records := setupRecords(t)
	ctx := context.Background()

	testhelpers.Exec(t, db, `INSERT INTO tblLossCtrl (RepName, Active, LCEmail) VALUES (?, ?, ?)`, "Zed", "Yes", "z@example.com")
	testhelpers.Exec(t, db, `INSERT INTO tblLossCtrl (RepName, Active, LCEmail) VALUES (?, ?, ?)`, "Amy", "No", "a@example.com")
	testhelpers.Exec(t, db, `INSERT INTO tbl_DropDowns (DD_Type, DD_Value, DD_SortOrder) VALUES (?, ?, ?)`, "TermCode", "Sold", 2)
	testhelpers.Exec(t, db, `INSERT INTO tbl_DropDowns (DD_Type, DD_Value, DD_SortOrder) VALUES (?, ?, ?)`, "TermCode", "Closed", 1)
	testhelpers.Exec(t, db, `INSERT INTO tbl_DropDowns (DD_Type, DD_Value) VALUES (?, ?)`, "OBMethod", "Email")

	svc, err := NewDropdownService(records, database.DialectSQLite, zap.NewNop())
	require.NoError(t, err)

	t.Run("parameterised query", func(t *testing.T) {
		rows, err := svc.Values(ctx, "LossCtlRep2")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, "Zed", value(rows[0], "RepName"))
	})

	t.Run("bracketed columns", func(t *testing.T) {
		rows, err := svc.Values(ctx, " ServLevel ")
		require.NoError(t, err)
		require.Len(t, rows, 9)
		assert.Equal(t, "Comprehensive", value(rows[0], "service Level"))
	})

	t.Run("all is case insensitive", func(t *testing.T) {
		rows, err := svc.Values(ctx, "ALL")
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "OBMethod", value(rows[0], "DD_Type"))
		assert.Equal(t, "Closed", value(rows[1], "DD_Value"))
		assert.Equal(t, "Sold", value(rows[2], "DD_Value"))
	})

	t.Run("blank name", func(t *testing.T) {
		_, err := svc.Values(ctx, "  ")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
		assert.Contains(t, err.Error(), "Dropdown type is required")
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := svc.Values(ctx, "Colour")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrUnknownDropdown))
		assert.Contains(t, err.Error(), "Unknown dropdown 'Colour'")
	})
}
