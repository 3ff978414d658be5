package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/nsbs/certify/internal/app/models"
)

// PurchaseRepository reads purchase rows written by the payment webhook
type PurchaseRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewPurchaseRepository creates a new PurchaseRepository
func NewPurchaseRepository(db DBTX) *PurchaseRepository {
	return &PurchaseRepository{db: db, sb: newStatementBuilder()}
}

// HasCompletedPurchase reports whether the user owns the course
func (r *PurchaseRepository) HasCompletedPurchase(ctx context.Context, userID uuid.UUID, courseSlug string) (bool, error) {
	sub, args, err := r.sb.Select("1").
		From("purchases").
		Where(squirrel.Eq{
			"user_id":     userID.String(),
			"course_slug": courseSlug,
			"status":      string(models.PurchaseCompleted),
		}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build purchase query: %w", err)
	}

	var exists bool
	if err := r.db.QueryRow(ctx, "SELECT EXISTS("+sub+")", args...).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check purchase: %w", err)
	}
	return exists, nil
}
