package repositories

import (
	"context"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/nsbs/certify/internal/app/models"
)

// VerificationRepository writes the certificate verification audit trail
type VerificationRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewVerificationRepository creates a new VerificationRepository
func NewVerificationRepository(db DBTX) *VerificationRepository {
	return &VerificationRepository{db: db, sb: newStatementBuilder()}
}

// Record inserts one audit row
func (r *VerificationRepository) Record(ctx context.Context, v *models.CertificateVerification) error {
	query, args, err := r.sb.Insert("certificate_verifications").
		Columns("id", "certificate_id", "verified_at", "ip_address", "user_agent").
		Values(v.ID, v.CertificateID, v.VerifiedAt, v.IPAddress, v.UserAgent).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build verification audit query: %w", err)
	}
	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to record certificate verification: %w", err)
	}
	return nil
}
