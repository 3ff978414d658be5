package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/pkg/apperrors"
)

// ProfileRepository reads user profiles
type ProfileRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewProfileRepository creates a new ProfileRepository
func NewProfileRepository(db DBTX) *ProfileRepository {
	return &ProfileRepository{db: db, sb: newStatementBuilder()}
}

// GetProfile retrieves a profile by user id
func (r *ProfileRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error) {
	query, args, err := r.sb.Select("id", "COALESCE(email, '')", "COALESCE(full_name, '')").
		From("profiles").
		Where(squirrel.Eq{"id": userID.String()}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get profile query: %w", err)
	}

	var p models.Profile
	if err := r.db.QueryRow(ctx, query, args...).Scan(&p.ID, &p.Email, &p.FullName); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewResourceNotFoundError("profile not found")
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}
