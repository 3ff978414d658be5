package dto

import (
	"time"

	"github.com/google/uuid"
	"github.com/nsbs/certify/internal/app/models"
)

// PublicQuestion is an exam question as served to the candidate, without its answer key
type PublicQuestion struct {
	ID       string   `json:"id" example:"aml-q1"`
	Question string   `json:"question" example:"Which stage of money laundering comes first?"`
	Type     string   `json:"type" example:"multiple_choice"`
	Options  []string `json:"options"`
}

// StartExamResponse is returned when the attempt gate admits a new attempt
type StartExamResponse struct {
	AttemptID uuid.UUID        `json:"attemptId"`
	Questions []PublicQuestion `json:"questions"`
	StartedAt time.Time        `json:"startedAt"`
	// DeadlineAt is omitted when the exam has no server-side time limit
	DeadlineAt *time.Time `json:"deadlineAt,omitempty"`
}

// SubmitExamRequest is the decoded and validated submit body
type SubmitExamRequest struct {
	Answers   map[string]string
	TimeSpent float64
}

// SubmitExamResponse is the authoritative exam result
type SubmitExamResponse struct {
	AttemptID         uuid.UUID `json:"attemptId"`
	Score             int       `json:"score" example:"80"`
	Passed            bool      `json:"passed" example:"true"`
	CorrectAnswers    int       `json:"correctAnswers" example:"8"`
	TotalQuestions    int       `json:"totalQuestions" example:"10"`
	CertificateNumber *string   `json:"certificateNumber" example:"NSBS-7K3M-9QX2-ABCD"`
}

// EligibilityResponse reports the attempt gate decision without starting an attempt
type EligibilityResponse struct {
	Decision     string `json:"decision" example:"allowed" enums:"allowed,alreadyPassed,maxAttemptsReached,notPurchased"`
	AttemptsUsed int    `json:"attemptsUsed" example:"1"`
	MaxAttempts  int    `json:"maxAttempts" example:"3"`
	PassingScore int    `json:"passingScore" example:"80"`
}

// AttemptSummary is a client-safe view of a stored attempt
type AttemptSummary struct {
	ID               uuid.UUID  `json:"id"`
	Status           string     `json:"status" example:"completed"`
	Score            *int       `json:"score"`
	Passed           bool       `json:"passed"`
	StartedAt        time.Time  `json:"startedAt"`
	CompletedAt      *time.Time `json:"completedAt,omitempty"`
	TimeSpentSeconds int        `json:"timeSpentSeconds"`
	CorrectAnswers   int        `json:"correctAnswers"`
	TotalQuestions   int        `json:"totalQuestions"`
}

// AttemptListResponse wraps the caller's attempts for a course
type AttemptListResponse struct {
	Attempts []AttemptSummary `json:"attempts"`
}

// ToPublicQuestions strips answer keys from a question set
func ToPublicQuestions(questions []models.ExamQuestion) []PublicQuestion {
	out := make([]PublicQuestion, 0, len(questions))
	for _, q := range questions {
		options := q.Options
		if options == nil {
			options = []string{}
		}
		out = append(out, PublicQuestion{
			ID:       q.ID,
			Question: q.Question,
			Type:     q.Type,
			Options:  options,
		})
	}
	return out
}

// ToAttemptSummary converts a stored attempt into its client-safe view
func ToAttemptSummary(a *models.ExamAttempt) AttemptSummary {
	correct := 0
	for _, rec := range a.Answers {
		if rec.Correct {
			correct++
		}
	}
	return AttemptSummary{
		ID:               a.ID,
		Status:           string(a.Status),
		Score:            a.Score,
		Passed:           a.Passed,
		StartedAt:        a.StartedAt,
		CompletedAt:      a.CompletedAt,
		TimeSpentSeconds: a.TimeSpentSeconds,
		CorrectAnswers:   correct,
		TotalQuestions:   len(a.Questions),
	}
}
