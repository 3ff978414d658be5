package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/db"
)

// ExamTx is the set of exam operations available inside one locked transaction
type ExamTx interface {
	ListAttempts(ctx context.Context, userID uuid.UUID, courseSlug string) ([]models.ExamAttempt, error)
	CreateAttempt(ctx context.Context, attempt *models.ExamAttempt) error
	LockLatestActiveAttempt(ctx context.Context, userID uuid.UUID, courseSlug string) (*models.ExamAttempt, error)
	CompleteAttempt(ctx context.Context, attempt *models.ExamAttempt) error
	IssueCertificate(ctx context.Context, cert *models.Certificate) (*models.Certificate, error)
}

// ExamStore runs exam state transitions in transactions serialized per (user, course)
type ExamStore struct {
	db *db.PostgresDB
}

// NewExamStore creates a new ExamStore
func NewExamStore(database *db.PostgresDB) *ExamStore {
	return &ExamStore{db: database}
}

// WithinTx runs fn in a transaction holding the (user, course) advisory lock
func (s *ExamStore) WithinTx(ctx context.Context, userID uuid.UUID, courseSlug string, fn func(ctx context.Context, tx ExamTx) error) error {
	key := "exam:" + userID.String() + ":" + courseSlug
	return s.db.WithLockedTransaction(ctx, key, func(ctx context.Context, tx pgx.Tx) error {
		return fn(ctx, &pgExamTx{
			attempts:     NewExamAttemptRepository(tx),
			certificates: NewCertificateRepository(tx),
		})
	})
}

type pgExamTx struct {
	attempts     *ExamAttemptRepository
	certificates *CertificateRepository
}

func (t *pgExamTx) ListAttempts(ctx context.Context, userID uuid.UUID, courseSlug string) ([]models.ExamAttempt, error) {
	return t.attempts.ListForCourse(ctx, userID, courseSlug)
}

func (t *pgExamTx) CreateAttempt(ctx context.Context, attempt *models.ExamAttempt) error {
	return t.attempts.Create(ctx, attempt)
}

func (t *pgExamTx) LockLatestActiveAttempt(ctx context.Context, userID uuid.UUID, courseSlug string) (*models.ExamAttempt, error) {
	return t.attempts.LockLatestActive(ctx, userID, courseSlug)
}

func (t *pgExamTx) CompleteAttempt(ctx context.Context, attempt *models.ExamAttempt) error {
	return t.attempts.Complete(ctx, attempt)
}

func (t *pgExamTx) IssueCertificate(ctx context.Context, cert *models.Certificate) (*models.Certificate, error) {
	return t.certificates.Issue(ctx, cert)
}
