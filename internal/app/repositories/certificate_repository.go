package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/pkg/apperrors"
	"github.com/nsbs/certify/internal/pkg/dberrors"
	"github.com/nsbs/certify/internal/pkg/logger"
)

const (
	certificateNumberConstraint = "certificates_certificate_number_key"
	certificateUserCourseKey    = "(user_id, course_slug)"
)

var certificateColumns = []string{
	"c.id", "c.user_id", "c.course_slug", "c.certificate_number", "c.issued_at",
	"c.exam_attempt_id", "c.revoked", "c.revoked_at", "c.revoked_reason",
}

// CertificateRepository handles certificate database operations
type CertificateRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewCertificateRepository creates a new CertificateRepository
func NewCertificateRepository(db DBTX) *CertificateRepository {
	return &CertificateRepository{db: db, sb: newStatementBuilder()}
}

func scanCertificate(row pgx.Row, extra ...any) (*models.Certificate, error) {
	var c models.Certificate
	dest := []any{
		&c.ID, &c.UserID, &c.CourseSlug, &c.CertificateNumber, &c.IssuedAt,
		&c.ExamAttemptID, &c.Revoked, &c.RevokedAt, &c.RevokedReason,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return nil, err
	}
	return &c, nil
}

// Issue inserts the certificate unless the user already holds one for the course,
// in which case the existing certificate is returned unchanged. The write runs
// under a savepoint so a failure leaves the caller's transaction usable.
func (r *CertificateRepository) Issue(ctx context.Context, cert *models.Certificate) (*models.Certificate, error) {
	sp, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open certificate savepoint: %w", err)
	}
	defer sp.Rollback(ctx) //nolint:errcheck

	query, args, err := r.sb.Insert("certificates").
		Columns("id", "user_id", "course_slug", "certificate_number", "issued_at", "exam_attempt_id", "revoked").
		Values(cert.ID, cert.UserID, cert.CourseSlug, cert.CertificateNumber, cert.IssuedAt, cert.ExamAttemptID, false).
		Suffix("ON CONFLICT " + certificateUserCourseKey + " DO NOTHING RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build issue certificate query: %w", err)
	}

	var insertedID uuid.UUID
	err = sp.QueryRow(ctx, query, args...).Scan(&insertedID)
	switch {
	case err == nil:
		if err := sp.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to release certificate savepoint: %w", err)
		}
		issued := *cert
		return &issued, nil
	case errors.Is(err, pgx.ErrNoRows):
		// Conflict on (user_id, course_slug): keep the certificate already issued.
		existing, err := r.getByUserCourse(ctx, sp, cert.UserID, cert.CourseSlug)
		if err != nil {
			return nil, err
		}
		if err := sp.Commit(ctx); err != nil {
			return nil, fmt.Errorf("failed to release certificate savepoint: %w", err)
		}
		return existing, nil
	case dberrors.IsDuplicateConstraintError(err, certificateNumberConstraint):
		return nil, apperrors.NewCustomError(apperrors.ErrConflict, "certificate number collision")
	default:
		logger.Error().Err(err).Str("userID", cert.UserID.String()).Str("courseSlug", cert.CourseSlug).Msg("Error inserting certificate")
		return nil, fmt.Errorf("failed to issue certificate: %w", err)
	}
}

func (r *CertificateRepository) getByUserCourse(ctx context.Context, q DBTX, userID uuid.UUID, courseSlug string) (*models.Certificate, error) {
	query, args, err := r.sb.Select(certificateColumns...).
		From("certificates c").
		Where(squirrel.Eq{"c.user_id": userID.String(), "c.course_slug": courseSlug}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get certificate query: %w", err)
	}

	cert, err := scanCertificate(q.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to get certificate: %w", err)
	}
	return cert, nil
}

// FindForVerification resolves a certificate by number or id, joined with the
// course title and the holder's display name.
func (r *CertificateRepository) FindForVerification(ctx context.Context, identifier string) (*models.Certificate, error) {
	cond := squirrel.Or{squirrel.Eq{"c.certificate_number": identifier}}
	if id, err := uuid.Parse(identifier); err == nil {
		cond = append(cond, squirrel.Eq{"c.id": id.String()})
	}

	columns := append(append([]string{}, certificateColumns...),
		"co.title",
		"COALESCE(NULLIF(p.full_name, ''), p.email, '')",
	)
	query, args, err := r.sb.Select(columns...).
		From("certificates c").
		Join("courses co ON co.slug = c.course_slug").
		LeftJoin("profiles p ON p.id = c.user_id").
		Where(cond).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build verification query: %w", err)
	}

	var title, holder string
	cert, err := scanCertificate(r.db.QueryRow(ctx, query, args...), &title, &holder)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCertificateNotFound
		}
		logger.Error().Err(err).Msg("Error scanning certificate for verification")
		return nil, fmt.Errorf("failed to find certificate: %w", err)
	}
	cert.CourseTitle = title
	cert.HolderName = holder
	return cert, nil
}

// ListByUser returns the user's certificates, newest first
func (r *CertificateRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	query, args, err := r.sb.Select(certificateColumns...).
		From("certificates c").
		Where(squirrel.Eq{"c.user_id": userID.String()}).
		OrderBy("c.issued_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list certificates query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query certificates: %w", err)
	}
	defer rows.Close()

	certs := []models.Certificate{}
	for rows.Next() {
		c, err := scanCertificate(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan certificate row: %w", err)
		}
		certs = append(certs, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating certificate rows: %w", err)
	}
	return certs, nil
}

// Revoke marks a certificate revoked. Revoking twice keeps the first timestamp and reason.
func (r *CertificateRepository) Revoke(ctx context.Context, number, reason string, at time.Time) (*models.Certificate, error) {
	query, args, err := r.sb.Update("certificates").
		Set("revoked", true).
		Set("revoked_at", squirrel.Expr("COALESCE(revoked_at, ?)", at)).
		Set("revoked_reason", squirrel.Expr("COALESCE(revoked_reason, ?)", reason)).
		Where(squirrel.Eq{"certificate_number": number}).
		Suffix("RETURNING id, user_id, course_slug, certificate_number, issued_at, exam_attempt_id, revoked, revoked_at, revoked_reason").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build revoke query: %w", err)
	}

	cert, err := scanCertificate(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCertificateNotFound
		}
		return nil, fmt.Errorf("failed to revoke certificate: %w", err)
	}
	return cert, nil
}
