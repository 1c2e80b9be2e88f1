//go:build mssql

package repositories

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/sac-engine/pkg/models"
	"github.com/ekaya-inc/sac-engine/pkg/testhelpers"
)

// These run against SQL Server in a container and exercise the native
// MERGE path. Skipped with -short.

func TestRecordRepository_MSSQL_MergeUpsert(t *testing.T) {
	tdb := testhelpers.GetMSSQLTestDB(t)
	repo := NewRecordRepository(tdb.DB, zap.NewNop())
	ctx := context.Background()
	customer := "C-" + uuid.NewString()[:8]

	for _, stage := range []string{"Underwriting", "Admin"} {
		res, err := repo.Upsert(ctx, "tblPolicies", []*models.Row{policy(customer, "P1", "00", stage)}, policyKeys, false)
		require.NoError(t, err)
		assert.Equal(t, 1, res.Count)
	}

	rows, err := repo.FetchRecords(ctx, "tblPolicies", models.RowOf("CustomerNum", customer), "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	stage, _ := rows[0].Get("Stage")
	assert.Equal(t, "Admin", stage)

	res, err := repo.Delete(ctx, "tblPolicies", []*models.Row{policy(customer, "P1", "00", "")}, policyKeys)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, 0, testhelpers.Count(t, tdb.DB, "tblPolicies", "CustomerNum = ?", customer))
}

func TestRecordRepository_MSSQL_InsertReturningIDs(t *testing.T) {
	tdb := testhelpers.GetMSSQLTestDB(t)
	repo := NewRecordRepository(tdb.DB, zap.NewNop())
	ctx := context.Background()
	customer := "C-" + uuid.NewString()[:8]

	res, err := repo.InsertReturningIDs(ctx, "tblAffiliates", []*models.Row{
		models.RowOf("CustomerNum", customer, "AffiliateName", "North"),
		models.RowOf("CustomerNum", customer, "AffiliateName", "South"),
	}, "PK_Number")
	require.NoError(t, err)
	require.Len(t, res.IDs, 2)
	assert.Less(t, res.IDs[0], res.IDs[1])

	res, err = repo.Upsert(ctx, "tblAffiliates", []*models.Row{
		models.RowOf("PK_Number", res.IDs[0], "CustomerNum", customer, "AffiliateName", "North East"),
	}, []string{"PK_Number"}, true)
	require.NoError(t, err)
	assert.Equal(t, 1, testhelpers.Count(t, tdb.DB, "tblAffiliates", "AffiliateName = ?", "North East"))
}
