package services

import (
	"time"

	"github.com/nsbs/certify/internal/app/models"
)

// GateDecision is the outcome of the attempt gate
type GateDecision string

const (
	DecisionAllowed            GateDecision = "allowed"
	DecisionAlreadyPassed      GateDecision = "alreadyPassed"
	DecisionMaxAttemptsReached GateDecision = "maxAttemptsReached"
	DecisionNotPurchased       GateDecision = "notPurchased"
)

// ExamDefaults are the configured thresholds used when a course leaves them unset
type ExamDefaults struct {
	PassingScore    int
	MaxAttempts     int
	Duration        time.Duration
	SubmissionGrace time.Duration
	MaxTimeSpent    int
}

// ExamPolicy is the effective set of thresholds for one course
type ExamPolicy struct {
	PassingScore    int
	MaxAttempts     int
	Duration        time.Duration
	SubmissionGrace time.Duration
}

// PolicyFor resolves the course's thresholds against the defaults
func (d ExamDefaults) PolicyFor(course *models.Course) ExamPolicy {
	p := ExamPolicy{
		PassingScore:    d.PassingScore,
		MaxAttempts:     d.MaxAttempts,
		Duration:        d.Duration,
		SubmissionGrace: d.SubmissionGrace,
	}
	if course == nil {
		return p
	}
	if course.PassingScore != nil {
		p.PassingScore = *course.PassingScore
	}
	if course.MaxAttempts != nil {
		p.MaxAttempts = *course.MaxAttempts
	}
	if course.ExamDurationMinutes != nil {
		p.Duration = time.Duration(*course.ExamDurationMinutes) * time.Minute
	}
	return p
}

// Deadline returns when an attempt started at startedAt stops accepting
// submissions. ok is false when the exam is untimed.
func (p ExamPolicy) Deadline(startedAt time.Time) (deadline time.Time, ok bool) {
	if p.Duration <= 0 {
		return time.Time{}, false
	}
	return startedAt.Add(p.Duration), true
}

// Expired reports whether a submission at now falls outside the duration plus grace
func (p ExamPolicy) Expired(startedAt, now time.Time) bool {
	deadline, ok := p.Deadline(startedAt)
	if !ok {
		return false
	}
	return now.After(deadline.Add(p.SubmissionGrace))
}

// EvaluateGate decides whether another attempt may start, given every prior attempt
// for the (user, course) pair. A passing score on any attempt blocks further attempts
// before the attempt ceiling is considered.
func EvaluateGate(attempts []models.ExamAttempt, policy ExamPolicy) GateDecision {
	for _, a := range attempts {
		if a.Score != nil && *a.Score >= policy.PassingScore {
			return DecisionAlreadyPassed
		}
	}
	if len(attempts) >= policy.MaxAttempts {
		return DecisionMaxAttemptsReached
	}
	return DecisionAllowed
}
