package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/pkg/apperrors"
	"github.com/nsbs/certify/internal/pkg/logger"
)

// CourseRepository reads course metadata and question banks
type CourseRepository struct {
	db DBTX
	sb squirrel.StatementBuilderType
}

// NewCourseRepository creates a new CourseRepository
func NewCourseRepository(db DBTX) *CourseRepository {
	return &CourseRepository{db: db, sb: newStatementBuilder()}
}

// GetCourse retrieves a course by slug
func (r *CourseRepository) GetCourse(ctx context.Context, slug string) (*models.Course, error) {
	query, args, err := r.sb.Select(
		"slug", "title", "passing_score", "max_attempts", "exam_duration_minutes", "created_at", "updated_at",
	).
		From("courses").
		Where(squirrel.Eq{"slug": slug}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get course query: %w", err)
	}

	var c models.Course
	err = r.db.QueryRow(ctx, query, args...).Scan(
		&c.Slug, &c.Title, &c.PassingScore, &c.MaxAttempts, &c.ExamDurationMinutes, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseNotFound
		}
		logger.Error().Err(err).Str("slug", slug).Msg("Error scanning course row")
		return nil, fmt.Errorf("failed to get course: %w", err)
	}
	return &c, nil
}

// GetQuestions returns the course's question bank in authored order
func (r *CourseRepository) GetQuestions(ctx context.Context, slug string) ([]models.ExamQuestion, error) {
	query, args, err := r.sb.Select("id", "position", "question", "type", "options", "correct_answer").
		From("exam_questions").
		Where(squirrel.Eq{"course_slug": slug}).
		OrderBy("position ASC", "id ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build get questions query: %w", err)
	}

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		logger.Error().Err(err).Str("slug", slug).Msg("Error querying exam questions")
		return nil, fmt.Errorf("failed to query exam questions: %w", err)
	}
	defer rows.Close()

	questions := []models.ExamQuestion{}
	for rows.Next() {
		var q models.ExamQuestion
		var rawOptions []byte
		if err := rows.Scan(&q.ID, &q.Position, &q.Question, &q.Type, &rawOptions, &q.CorrectAnswer); err != nil {
			return nil, fmt.Errorf("failed to scan exam question row: %w", err)
		}
		if err := json.Unmarshal(rawOptions, &q.Options); err != nil {
			return nil, fmt.Errorf("failed to decode options of question %s: %w", q.ID, err)
		}
		questions = append(questions, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating exam question rows: %w", err)
	}

	return questions, nil
}

// UpsertCourse creates or updates a course together with its full question bank.
// Questions absent from the new bank are removed.
func (r *CourseRepository) UpsertCourse(ctx context.Context, course *models.Course, questions []models.ExamQuestion) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin course upsert: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query, args, err := r.sb.Insert("courses").
		Columns("slug", "title", "passing_score", "max_attempts", "exam_duration_minutes").
		Values(course.Slug, course.Title, course.PassingScore, course.MaxAttempts, course.ExamDurationMinutes).
		Suffix(`ON CONFLICT (slug) DO UPDATE SET
			title = EXCLUDED.title,
			passing_score = EXCLUDED.passing_score,
			max_attempts = EXCLUDED.max_attempts,
			exam_duration_minutes = EXCLUDED.exam_duration_minutes,
			updated_at = now()`).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build upsert course query: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to upsert course %s: %w", course.Slug, err)
	}

	ids := make([]string, 0, len(questions))
	for i, q := range questions {
		options, err := json.Marshal(q.Options)
		if err != nil {
			return fmt.Errorf("failed to encode options of question %s: %w", q.ID, err)
		}
		query, args, err := r.sb.Insert("exam_questions").
			Columns("id", "course_slug", "position", "question", "type", "options", "correct_answer").
			Values(q.ID, course.Slug, i, q.Question, q.Type, options, q.CorrectAnswer).
			Suffix(`ON CONFLICT (course_slug, id) DO UPDATE SET
				position = EXCLUDED.position,
				question = EXCLUDED.question,
				type = EXCLUDED.type,
				options = EXCLUDED.options,
				correct_answer = EXCLUDED.correct_answer`).
			ToSql()
		if err != nil {
			return fmt.Errorf("failed to build upsert question query: %w", err)
		}
		if _, err := tx.Exec(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to upsert question %s: %w", q.ID, err)
		}
		ids = append(ids, q.ID)
	}

	del := r.sb.Delete("exam_questions").Where(squirrel.Eq{"course_slug": course.Slug})
	if len(ids) > 0 {
		del = del.Where(squirrel.NotEq{"id": ids})
	}
	query, args, err = del.ToSql()
	if err != nil {
		return fmt.Errorf("failed to build prune questions query: %w", err)
	}
	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("failed to prune questions of %s: %w", course.Slug, err)
	}

	return tx.Commit(ctx)
}
