package services

import (
	"testing"
	"time"

	"github.com/nsbs/certify/internal/app/models"
)

func intPtr(v int) *int { return &v }

func TestPolicyForCourseOverrides(t *testing.T) {
	defaults := ExamDefaults{PassingScore: 80, MaxAttempts: 3, Duration: 90 * time.Minute, SubmissionGrace: 2 * time.Minute}

	p := defaults.PolicyFor(&models.Course{Slug: "kyc"})
	if p.PassingScore != 80 || p.MaxAttempts != 3 || p.Duration != 90*time.Minute {
		t.Fatalf("defaults not applied: %+v", p)
	}

	p = defaults.PolicyFor(&models.Course{
		Slug:                "aml",
		PassingScore:        intPtr(85),
		MaxAttempts:         intPtr(2),
		ExamDurationMinutes: intPtr(0),
	})
	if p.PassingScore != 85 || p.MaxAttempts != 2 || p.Duration != 0 {
		t.Fatalf("course overrides not applied: %+v", p)
	}
	if _, ok := p.Deadline(time.Now()); ok {
		t.Fatalf("zero duration must be untimed")
	}
}

func TestPolicyExpired(t *testing.T) {
	p := ExamPolicy{Duration: 30 * time.Minute, SubmissionGrace: time.Minute}
	start := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)

	if p.Expired(start, start.Add(31*time.Minute)) {
		t.Fatalf("submission inside grace must be accepted")
	}
	if !p.Expired(start, start.Add(31*time.Minute+time.Second)) {
		t.Fatalf("submission past grace must be rejected")
	}
	if (ExamPolicy{}).Expired(start, start.Add(1000*time.Hour)) {
		t.Fatalf("untimed exam never expires")
	}
}

func TestEvaluateGate(t *testing.T) {
	policy := ExamPolicy{PassingScore: 80, MaxAttempts: 2}
	completed := func(score int) models.ExamAttempt {
		return models.ExamAttempt{Status: models.AttemptCompleted, Score: intPtr(score)}
	}

	tests := []struct {
		name     string
		attempts []models.ExamAttempt
		want     GateDecision
	}{
		{"first attempt", nil, DecisionAllowed},
		{"one failed", []models.ExamAttempt{completed(50)}, DecisionAllowed},
		{"two failed", []models.ExamAttempt{completed(50), completed(79)}, DecisionMaxAttemptsReached},
		{"passed once", []models.ExamAttempt{completed(80)}, DecisionAlreadyPassed},
		{"passed beats ceiling", []models.ExamAttempt{completed(10), completed(90)}, DecisionAlreadyPassed},
		{"in progress counts", []models.ExamAttempt{completed(10), {Status: models.AttemptInProgress}}, DecisionMaxAttemptsReached},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := EvaluateGate(tt.attempts, policy); got != tt.want {
				t.Fatalf("EvaluateGate = %s, want %s", got, tt.want)
			}
		})
	}
}
