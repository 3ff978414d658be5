package seed

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/pkg/apperrors"
	"github.com/nsbs/certify/internal/pkg/validation"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// CourseUpserter persists a course with its question bank
type CourseUpserter interface {
	UpsertCourse(ctx context.Context, course *models.Course, questions []models.ExamQuestion) error
}

// CourseFile is the layout of the course seed file
type CourseFile struct {
	Courses []CourseEntry `yaml:"courses"`
}

// CourseEntry is one course and its question bank
type CourseEntry struct {
	Slug                string                `yaml:"slug"`
	Title               string                `yaml:"title"`
	PassingScore        *int                  `yaml:"passing_score"`
	MaxAttempts         *int                  `yaml:"max_attempts"`
	ExamDurationMinutes *int                  `yaml:"exam_duration_minutes"`
	Questions           []models.ExamQuestion `yaml:"questions"`
}

// LoadCourseFile reads and parses the course seed file
func LoadCourseFile(path string) (*CourseFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read course file: %w", err)
	}

	var file CourseFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse course file %s: %w", path, err)
	}
	return &file, nil
}

// Validate checks a course entry and normalizes question types.
// Every question needs an explicit, unique id.
func (e *CourseEntry) Validate() error {
	if !validation.IsCourseSlug(e.Slug) {
		return apperrors.NewValidationError("slug", fmt.Sprintf("course slug %q must be lowercase words joined by hyphens", e.Slug))
	}
	if strings.TrimSpace(e.Title) == "" {
		return apperrors.NewValidationError("title", fmt.Sprintf("course %s: title is required", e.Slug))
	}
	if e.PassingScore != nil && (*e.PassingScore < 0 || *e.PassingScore > 100) {
		return apperrors.NewValidationError("passing_score", fmt.Sprintf("course %s: passing_score must be between 0 and 100", e.Slug))
	}
	if e.MaxAttempts != nil && *e.MaxAttempts < 1 {
		return apperrors.NewValidationError("max_attempts", fmt.Sprintf("course %s: max_attempts must be at least 1", e.Slug))
	}
	if e.ExamDurationMinutes != nil && *e.ExamDurationMinutes < 0 {
		return apperrors.NewValidationError("exam_duration_minutes", fmt.Sprintf("course %s: exam_duration_minutes cannot be negative", e.Slug))
	}

	seen := make(map[string]struct{}, len(e.Questions))
	for i := range e.Questions {
		q := &e.Questions[i]
		q.ID = strings.TrimSpace(q.ID)
		if q.ID == "" {
			return fmt.Errorf("course %s: question %d has no id: %w", e.Slug, i+1, apperrors.ErrInvalidQuestion)
		}
		if _, dup := seen[q.ID]; dup {
			return fmt.Errorf("course %s: duplicate question id %s: %w", e.Slug, q.ID, apperrors.ErrInvalidQuestion)
		}
		seen[q.ID] = struct{}{}
		if strings.TrimSpace(q.Question) == "" || q.CorrectAnswer == "" {
			return fmt.Errorf("course %s: question %s needs text and a correct answer: %w", e.Slug, q.ID, apperrors.ErrInvalidQuestion)
		}
		if q.Type == "" {
			q.Type = models.QuestionTypeMultipleChoice
		}
		q.Position = i
	}
	return nil
}

// SeedCourses upserts every course in the seed file. An invalid course is skipped
// and reported; the rest are still written. A missing file is not an error.
func SeedCourses(ctx context.Context, repo CourseUpserter, path string, lgr zerolog.Logger) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		lgr.Info().Str("file", path).Msg("Course seed file not found, skipping")
		return nil
	}

	file, err := LoadCourseFile(path)
	if err != nil {
		return err
	}

	lgr.Info().Int("courses", len(file.Courses)).Msg("Seeding courses...")
	var finalErr error

	for i := range file.Courses {
		entry := &file.Courses[i]
		if err := entry.Validate(); err != nil {
			lgr.Error().Err(err).Str("course", entry.Slug).Msg("Skipping invalid course")
			finalErr = errors.Join(finalErr, err)
			continue
		}

		course := &models.Course{
			Slug:                entry.Slug,
			Title:               entry.Title,
			PassingScore:        entry.PassingScore,
			MaxAttempts:         entry.MaxAttempts,
			ExamDurationMinutes: entry.ExamDurationMinutes,
		}
		if err := repo.UpsertCourse(ctx, course, entry.Questions); err != nil {
			lgr.Error().Err(err).Str("course", entry.Slug).Msg("Error seeding course")
			finalErr = errors.Join(finalErr, err)
			continue
		}
		lgr.Info().Str("course", entry.Slug).Int("questions", len(entry.Questions)).Msg("Course seeded")
	}

	return finalErr
}
