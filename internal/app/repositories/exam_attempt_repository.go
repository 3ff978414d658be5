package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/pkg/apperrors"
	"github.com/nsbs/certify/internal/pkg/logger"
)

var attemptColumns = []string{
	"id", "user_id", "course_slug", "status", "started_at", "completed_at",
	"score", "answers", "questions_snapshot", "time_spent_seconds", "passed",
}

// ExamAttemptRepository handles exam attempt database operations
type ExamAttemptRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewExamAttemptRepository creates a new ExamAttemptRepository
func NewExamAttemptRepository(db DBTX) *ExamAttemptRepository {
	return &ExamAttemptRepository{db: db, sb: newStatementBuilder()}
}

func scanAttempt(row pgx.Row) (*models.ExamAttempt, error) {
	var a models.ExamAttempt
	var status string
	var rawAnswers, rawQuestions []byte

	err := row.Scan(
		&a.ID, &a.UserID, &a.CourseSlug, &status, &a.StartedAt, &a.CompletedAt,
		&a.Score, &rawAnswers, &rawQuestions, &a.TimeSpentSeconds, &a.Passed,
	)
	if err != nil {
		return nil, err
	}
	a.Status = models.AttemptStatus(status)

	if err := json.Unmarshal(rawAnswers, &a.Answers); err != nil {
		return nil, fmt.Errorf("failed to decode answers of attempt %s: %w", a.ID, err)
	}
	if err := json.Unmarshal(rawQuestions, &a.Questions); err != nil {
		return nil, fmt.Errorf("failed to decode question snapshot of attempt %s: %w", a.ID, err)
	}
	if a.Answers == nil {
		a.Answers = map[string]models.AnswerRecord{}
	}
	return &a, nil
}

// ListForCourse returns every attempt of the user for the course, newest first
func (r *ExamAttemptRepository) ListForCourse(ctx context.Context, userID uuid.UUID, courseSlug string) ([]models.ExamAttempt, error) {
	query, args, err := r.sb.Select(attemptColumns...).
		From("exam_attempts").
		Where(squirrel.Eq{"user_id": userID.String(), "course_slug": courseSlug}).
		OrderBy("started_at DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build list attempts query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("courseSlug", courseSlug).Msg("Error querying exam attempts")
		return nil, fmt.Errorf("failed to query exam attempts: %w", err)
	}
	defer rows.Close()

	attempts := []models.ExamAttempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan exam attempt row: %w", err)
		}
		attempts = append(attempts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exam attempt rows: %w", err)
	}
	return attempts, nil
}

// Create inserts a new attempt together with its question snapshot
func (r *ExamAttemptRepository) Create(ctx context.Context, a *models.ExamAttempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}
	snapshot, err := json.Marshal(a.Questions)
	if err != nil {
		return fmt.Errorf("failed to encode question snapshot: %w", err)
	}

	query, args, err := r.sb.Insert("exam_attempts").
		Columns("id", "user_id", "course_slug", "status", "started_at", "answers", "questions_snapshot", "time_spent_seconds", "passed").
		Values(a.ID, a.UserID, a.CourseSlug, string(a.Status), a.StartedAt, answers, snapshot, a.TimeSpentSeconds, a.Passed).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build create attempt query: %w", err)
	}

	if _, err := r.db.Exec(ctx, query, args...); err != nil {
		logger.Error().Err(err).Str("attemptID", a.ID.String()).Msg("Error inserting exam attempt")
		return fmt.Errorf("failed to create exam attempt: %w", err)
	}
	return nil
}

// LockLatestActive returns the most recently started in-progress attempt and
// holds a row lock on it until the surrounding transaction ends.
func (r *ExamAttemptRepository) LockLatestActive(ctx context.Context, userID uuid.UUID, courseSlug string) (*models.ExamAttempt, error) {
	query, args, err := r.sb.Select(attemptColumns...).
		From("exam_attempts").
		Where(squirrel.Eq{
			"user_id":     userID.String(),
			"course_slug": courseSlug,
			"status":      string(models.AttemptInProgress),
		}).
		OrderBy("started_at DESC").
		Limit(1).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build active attempt query: %w", err)
	}

	a, err := scanAttempt(r.db.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNoActiveAttempt
		}
		return nil, fmt.Errorf("failed to get active attempt: %w", err)
	}
	return a, nil
}

// Complete transitions an in-progress attempt to completed. The status guard
// makes the transition happen at most once; a lost race yields ErrAttemptNotActive.
func (r *ExamAttemptRepository) Complete(ctx context.Context, a *models.ExamAttempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return fmt.Errorf("failed to encode answers: %w", err)
	}

	query, args, err := r.sb.Update("exam_attempts").
		Set("status", string(models.AttemptCompleted)).
		Set("completed_at", a.CompletedAt).
		Set("score", a.Score).
		Set("answers", answers).
		Set("time_spent_seconds", a.TimeSpentSeconds).
		Set("passed", a.Passed).
		Where(squirrel.Eq{"id": a.ID.String(), "status": string(models.AttemptInProgress)}).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build complete attempt query: %w", err)
	}

	tag, err := r.db.Exec(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("attemptID", a.ID.String()).Msg("Error completing exam attempt")
		return fmt.Errorf("failed to complete exam attempt: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrAttemptNotActive
	}
	a.Status = models.AttemptCompleted
	return nil
}
