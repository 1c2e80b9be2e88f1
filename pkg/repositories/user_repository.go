package repositories

import (
	"context"
	"fmt"
	"strconv"

	"github.com/ekaya-inc/sac-engine/pkg/apperrors"
	"github.com/ekaya-inc/sac-engine/pkg/jsonutil"
	"github.com/ekaya-inc/sac-engine/pkg/models"
)

const usersTable = "tblUsers"

// UserRepository defines the interface for login user data access.
type UserRepository interface {
	// GetActiveByEmail returns the active user with the given email, or
	// apperrors.ErrNotFound.
	GetActiveByEmail(ctx context.Context, email string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, hash string) error
}

type userRepository struct {
	records RecordRepository
}

// NewUserRepository creates a user repository on top of the record engine.
func NewUserRepository(records RecordRepository) UserRepository {
	return &userRepository{records: records}
}

var _ UserRepository = (*userRepository)(nil)

func (r *userRepository) GetActiveByEmail(ctx context.Context, email string) (*models.User, error) {
	rows, err := r.records.FetchRecords(ctx, usersTable, models.RowOf("active", 1, "Email", email), "")
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	if len(rows) != 1 {
		return nil, apperrors.ErrNotFound
	}
	return userFromRow(rows[0])
}

func (r *userRepository) UpdatePassword(ctx context.Context, userID int64, hash string) error {
	affected, err := r.records.UpdateColumn(ctx, usersTable, "Password", hash, "ID", userID)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if affected == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func userFromRow(row *models.Row) (*models.User, error) {
	get := func(col string) string {
		v, _ := row.Get(col)
		return jsonutil.FlexibleString(v)
	}

	id, err := strconv.ParseInt(get("ID"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid user id %q: %w", get("ID"), err)
	}

	return &models.User{
		ID:           id,
		FirstName:    get("FirstName"),
		LastName:     get("LastName"),
		Email:        get("Email"),
		Role:         get("Role"),
		Branch:       get("BranchName"),
		PasswordHash: get("Password"),
	}, nil
}
