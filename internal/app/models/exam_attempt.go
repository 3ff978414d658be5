package models

import (
	"time"

	"github.com/google/uuid"
)

// AnswerRecord is the stored outcome for a single question.
// It intentionally holds no correct answer.
type AnswerRecord struct {
	Answer  string `json:"answer"`
	Correct bool   `json:"correct"`
}

// ExamAttempt defines the exam attempt model based on the 'exam_attempts' table
type ExamAttempt struct {
	ID               uuid.UUID               `json:"id" db:"id"`
	UserID           uuid.UUID               `json:"userId" db:"user_id"`
	CourseSlug       string                  `json:"courseSlug" db:"course_slug"`
	Status           AttemptStatus           `json:"status" db:"status"`
	StartedAt        time.Time               `json:"startedAt" db:"started_at"`
	CompletedAt      *time.Time              `json:"completedAt,omitempty" db:"completed_at"`
	Score            *int                    `json:"score,omitempty" db:"score"`
	Answers          map[string]AnswerRecord `json:"answers" db:"answers"`
	TimeSpentSeconds int                     `json:"timeSpentSeconds" db:"time_spent_seconds"`
	Passed           bool                    `json:"passed" db:"passed"`

	// Questions is the snapshot captured at start; server-side only.
	Questions []ExamQuestion `json:"-" db:"questions_snapshot"`
}

// IsActive reports whether the attempt can still be submitted
func (a *ExamAttempt) IsActive() bool {
	return a.Status == AttemptInProgress
}
