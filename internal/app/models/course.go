package models

import "time"

// QuestionTypeMultipleChoice is the default question type
const QuestionTypeMultipleChoice = "multiple_choice"

// Course defines the course model based on the 'courses' table.
// Nil thresholds fall back to the configured exam defaults.
type Course struct {
	Slug                string    `json:"slug" db:"slug" example:"aml-foundations"`
	Title               string    `json:"title" db:"title" example:"AML Foundations"`
	PassingScore        *int      `json:"passingScore,omitempty" db:"passing_score" example:"80"`
	MaxAttempts         *int      `json:"maxAttempts,omitempty" db:"max_attempts" example:"3"`
	ExamDurationMinutes *int      `json:"examDurationMinutes,omitempty" db:"exam_duration_minutes" example:"90"`
	CreatedAt           time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt           time.Time `json:"updatedAt" db:"updated_at"`
}

// ExamQuestion defines one entry of a course's question bank.
// CorrectAnswer must never reach a client response.
type ExamQuestion struct {
	ID            string   `json:"id" yaml:"id"`
	Position      int      `json:"position" yaml:"-"`
	Question      string   `json:"question" yaml:"question"`
	Type          string   `json:"type" yaml:"type"`
	Options       []string `json:"options" yaml:"options"`
	CorrectAnswer string   `json:"correctAnswer" yaml:"correct_answer"`
}
