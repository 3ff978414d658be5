package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/nsbs/certify/internal/db"
)

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx, so every repository
// can run standalone or inside a caller's transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

func newStatementBuilder() squirrel.StatementBuilderType {
	return squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)
}

// Repositories holds all the repository instances
type Repositories struct {
	CourseRepository       *CourseRepository
	PurchaseRepository     *PurchaseRepository
	ProfileRepository      *ProfileRepository
	ExamAttemptRepository  *ExamAttemptRepository
	CertificateRepository  *CertificateRepository
	VerificationRepository *VerificationRepository
	ExamStore              *ExamStore
}

// NewRepositories initializes all repositories
func NewRepositories(database *db.PostgresDB) *Repositories {
	pool := database.Pool
	return &Repositories{
		CourseRepository:       NewCourseRepository(pool),
		PurchaseRepository:     NewPurchaseRepository(pool),
		ProfileRepository:      NewProfileRepository(pool),
		ExamAttemptRepository:  NewExamAttemptRepository(pool),
		CertificateRepository:  NewCertificateRepository(pool),
		VerificationRepository: NewVerificationRepository(pool),
		ExamStore:              NewExamStore(database),
	}
}
