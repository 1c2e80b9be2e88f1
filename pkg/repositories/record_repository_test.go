package repositories

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

func setupRecords(t *testing.T) (*database.DB, RecordRepository) {
	t.Helper()
	db := testhelpers.NewSQLiteDB(t)
	return db, NewRecordRepository(db, zap.NewNop())
}

func policy(customer, num, mod, stage string) *models.Row {
	return models.RowOf("CustomerNum", customer, "PolicyNum", num, "PolMod", mod, "Stage", stage)
}

var policyKeys = []string{"CustomerNum", "PolicyNum", "PolMod"}

func TestRecordRepository_UpsertIsIdempotent(t *testing.T) {
	db, repo := setupRecords(t)
	ctx := context.Background()

	row := policy("C1", "P1", "00", "Underwriting")
	for i := 0; i < 2; i++ {
		res, err := repo.Upsert(ctx, "tblPolicies", []*models.Row{row}, policyKeys, false)
		require.NoError(t, err)
		assert.Equal(t, MsgTransactionSuccessful, res.Message)
		assert.Equal(t, 1, res.Count)
	}
	assert.Equal(t, 1, testhelpers.Count(t, db, "tblPolicies", ""))

	_, err := repo.Upsert(ctx, "tblPolicies", []*models.Row{policy("C1", "P1", "00", "Admin")}, policyKeys, false)
	require.NoError(t, err)

	rows, err := repo.FetchRecords(ctx, "tblPolicies", models.RowOf("CustomerNum", "C1"), "")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	stage, _ := rows[0].Get("Stage")
	assert.Equal(t, "Admin", stage)
}

func TestRecordRepository_UpsertRollsBackWholeBatch(t *testing.T) {
	db, repo := setupRecords(t)

	// CustomerNum is NOT NULL, so row 2 fails inside the database.
	rows := []*models.Row{
		policy("C1", "P1", "00", "Admin"),
		models.RowOf("CustomerNum", nil, "PolicyNum", "P2", "PolMod", "00", "Stage", "Admin"),
		policy("C1", "P3", "00", "Admin"),
	}

	_, err := repo.Upsert(context.Background(), "tblPolicies", rows, policyKeys, false)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrUpsertFailed))

	var writeErr *apperrors.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "tblPolicies", writeErr.Table)

	assert.Equal(t, 0, testhelpers.Count(t, db, "tblPolicies", ""))
}

func TestRecordRepository_UpsertEmptyAndMissingKey(t *testing.T) {
	_, repo := setupRecords(t)
	ctx := context.Background()

	res, err := repo.Upsert(ctx, "tblPolicies", nil, policyKeys, false)
	require.NoError(t, err)
	assert.Equal(t, &models.WriteResult{Message: MsgNoData, Count: 0}, res)

	_, err = repo.Upsert(ctx, "tblPolicies", []*models.Row{models.RowOf("CustomerNum", "C1", "PolicyNum", "P1")}, policyKeys, false)
	var missing *apperrors.MissingKeyFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "PolMod", missing.Field)
	assert.Equal(t, "upsert", missing.Op)
}

func TestRecordRepository_UpsertRejectsUnsafeIdentifiers(t *testing.T) {
	_, repo := setupRecords(t)

	_, err := repo.Upsert(context.Background(), "tblPolicies; DROP TABLE x", []*models.Row{policy("C1", "P1", "00", "A")}, policyKeys, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)

	_, err = repo.Upsert(context.Background(), "tblPolicies", []*models.Row{models.RowOf("CustomerNum", "C1", "PolicyNum", "P1", "PolMod", "0", "Bad Col", 1)}, policyKeys, false)
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
}

func TestRecordRepository_IdentityMerge(t *testing.T) {
	db, repo := setupRecords(t)
	ctx := context.Background()

	res, err := repo.InsertReturningIDs(ctx, "tblHCMUsers", []*models.Row{
		models.RowOf("CustNum", "C1", "UserName", "Ann"),
		models.RowOf("CustNum", "C1", "UserName", "Bob", "PK_Number", nil),
	}, "PK_Number")
	require.NoError(t, err)
	require.Len(t, res.IDs, 2)
	assert.Less(t, res.IDs[0], res.IDs[1])

	_, err = repo.Upsert(ctx, "tblHCMUsers", []*models.Row{
		models.RowOf("PK_Number", res.IDs[1], "CustNum", "C1", "UserName", "Robert"),
	}, []string{"PK_Number"}, true)
	require.NoError(t, err)

	assert.Equal(t, 2, testhelpers.Count(t, db, "tblHCMUsers", ""))
	assert.Equal(t, 1, testhelpers.Count(t, db, "tblHCMUsers", "UserName = ?", "Robert"))

	// An unknown identity inserts a new row with a database-assigned key.
	_, err = repo.Upsert(ctx, "tblHCMUsers", []*models.Row{
		models.RowOf("PK_Number", int64(999), "CustNum", "C2", "UserName", "Cy"),
	}, []string{"PK_Number"}, true)
	require.NoError(t, err)
	assert.Equal(t, 0, testhelpers.Count(t, db, "tblHCMUsers", "PK_Number = ?", 999))
	assert.Equal(t, 1, testhelpers.Count(t, db, "tblHCMUsers", "UserName = ?", "Cy"))
}

func TestRecordRepository_Delete(t *testing.T) {
	db, repo := setupRecords(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "tblPolicies", []*models.Row{
		policy("C1", "P1", "00", "A"),
		policy("C1", "P2", "00", "A"),
	}, policyKeys, false)
	require.NoError(t, err)

	_, err = repo.Delete(ctx, "tblPolicies", []*models.Row{models.RowOf("CustomerNum", "C1", "PolicyNum", "P1")}, policyKeys)
	var missing *apperrors.MissingKeyFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "PolMod is required for deletion", missing.Error())
	assert.Equal(t, 2, testhelpers.Count(t, db, "tblPolicies", ""))

	res, err := repo.Delete(ctx, "tblPolicies", []*models.Row{policy("C1", "P1", "00", "ignored")}, policyKeys)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Count)
	assert.Equal(t, MsgDeletionSuccessful, res.Message)
	assert.Equal(t, 1, testhelpers.Count(t, db, "tblPolicies", ""))

	res, err = repo.Delete(ctx, "tblPolicies", nil, policyKeys)
	require.NoError(t, err)
	assert.Equal(t, MsgNoDataForDeletion, res.Message)
}

func TestRecordRepository_UpsertRollsBackOnTriggerAbort(t *testing.T) {
	db, repo := setupRecords(t)
	testhelpers.Exec(t, db, `CREATE TRIGGER block_p2_insert BEFORE INSERT ON tblPolicies
		WHEN new.PolicyNum = 'P2' BEGIN SELECT RAISE(ABORT, 'blocked'); END`)

	_, err := repo.Upsert(context.Background(), "tblPolicies", []*models.Row{
		policy("C1", "P1", "00", "Admin"),
		policy("C1", "P2", "00", "Admin"),
		policy("C1", "P3", "00", "Admin"),
	}, policyKeys, false)
	require.ErrorIs(t, err, apperrors.ErrUpsertFailed)
	assert.Contains(t, err.Error(), "blocked")
	assert.Equal(t, 0, testhelpers.Count(t, db, "tblPolicies", ""))
}

func TestRecordRepository_DeleteRollsBackWholeBatch(t *testing.T) {
	db, repo := setupRecords(t)
	ctx := context.Background()

	rows := []*models.Row{
		policy("C1", "P1", "00", "Admin"),
		policy("C1", "P2", "00", "Admin"),
		policy("C1", "P3", "00", "Admin"),
	}
	_, err := repo.Upsert(ctx, "tblPolicies", rows, policyKeys, false)
	require.NoError(t, err)

	testhelpers.Exec(t, db, `CREATE TRIGGER block_p2_delete BEFORE DELETE ON tblPolicies
		WHEN old.PolicyNum = 'P2' BEGIN SELECT RAISE(ABORT, 'blocked'); END`)

	res, err := repo.Delete(ctx, "tblPolicies", rows, policyKeys)
	require.Error(t, err)
	assert.Nil(t, res)
	assert.ErrorIs(t, err, apperrors.ErrDeleteFailed)

	var writeErr *apperrors.WriteError
	require.ErrorAs(t, err, &writeErr)
	assert.Equal(t, "tblPolicies", writeErr.Table)

	// P1 was deleted before P2 aborted; the rollback restores it.
	assert.Equal(t, 3, testhelpers.Count(t, db, "tblPolicies", ""))
	assert.Equal(t, 1, testhelpers.Count(t, db, "tblPolicies", "PolicyNum = ?", "P1"))
}

func TestRecordRepository_FetchRecords(t *testing.T) {
	db, repo := setupRecords(t)
	ctx := context.Background()

	for _, m := range []int{3, 1, 2} {
		testhelpers.Exec(t, db, "INSERT INTO tblLossRunFrequency (CustomerNum, MthNum, RptType) VALUES (?, ?, ?)", "C1", m, "Full")
	}
	testhelpers.Exec(t, db, "INSERT INTO tblLossRunFrequency (CustomerNum, MthNum) VALUES (?, ?)", "C2", 1)

	rows, err := repo.FetchRecords(ctx, "tblLossRunFrequency", models.RowOf("CustomerNum", "C1"), "MthNum")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	var months []any
	for _, row := range rows {
		v, _ := row.Get("MthNum")
		months = append(months, v)
	}
	assert.Equal(t, []any{int64(1), int64(2), int64(3)}, months)
	assert.Equal(t, []string{"CustomerNum", "MthNum", "RptMth", "CompDate", "RptType", "DelivMeth"}, models.Columns(rows[0]))

	rptMth, ok := rows[0].Get("RptMth")
	assert.True(t, ok)
	assert.Nil(t, rptMth)

	_, err = repo.FetchRecords(ctx, "tblLossRunFrequency", nil, "MthNum DESC")
	assert.ErrorIs(t, err, apperrors.ErrInvalidIdentifier)
}

func TestRecordRepository_FetchPrefixMatch(t *testing.T) {
	db, repo := setupRecords(t)

	for _, a := range [][2]string{{"C1", "Chicago North"}, {"C2", "Chicago South"}, {"C3", "Dallas"}, {"C4", "Denver"}} {
		testhelpers.Exec(t, db, "INSERT INTO tblAcctSpecial (CustomerNum, BranchName, Stage) VALUES (?, ?, ?)", a[0], a[1], "Admin")
	}

	rows, err := repo.FetchPrefixMatch(context.Background(), "tblAcctSpecial", models.RowOf("Stage", "Admin"),
		"BranchName", []string{"Chicago", "Dal"}, "CustomerNum")
	require.NoError(t, err)
	require.Len(t, rows, 3)
	first, _ := rows[0].Get("CustomerNum")
	last, _ := rows[2].Get("CustomerNum")
	assert.Equal(t, "C1", first)
	assert.Equal(t, "C3", last)
}

func TestRecordRepository_RunRawQueryAndUpdateColumn(t *testing.T) {
	_, repo := setupRecords(t)
	ctx := context.Background()

	_, err := repo.Upsert(ctx, "tblPolicies", []*models.Row{
		policy("C1", "P1", "00", "Underwriting"),
		policy("C1", "P1", "01", "Underwriting"),
		policy("C2", "P9", "00", "Underwriting"),
	}, policyKeys, false)
	require.NoError(t, err)

	n, err := repo.UpdateColumn(ctx, "tblPolicies", "Stage", "Admin", "PolicyNum", "P1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, err := repo.RunRawQuery(ctx, "SELECT PolMod FROM tblPolicies WHERE Stage = ? ORDER BY PolMod", "Admin")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"PolMod"}, models.Columns(rows[0]))
}
