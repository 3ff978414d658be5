package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/app/models/dto"
	"github.com/nsbs/certify/internal/app/repositories"
	"github.com/nsbs/certify/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// CourseReader reads course metadata and question banks
type CourseReader interface {
	GetCourse(ctx context.Context, slug string) (*models.Course, error)
	GetQuestions(ctx context.Context, slug string) ([]models.ExamQuestion, error)
}

// PurchaseChecker reports whether the user has paid for a course
type PurchaseChecker interface {
	HasCompletedPurchase(ctx context.Context, userID uuid.UUID, courseSlug string) (bool, error)
}

// AttemptReader lists attempts outside of a locked transaction
type AttemptReader interface {
	ListForCourse(ctx context.Context, userID uuid.UUID, courseSlug string) ([]models.ExamAttempt, error)
}

// ExamTransactor runs fn in a transaction serialized per (user, course)
type ExamTransactor interface {
	WithinTx(ctx context.Context, userID uuid.UUID, courseSlug string, fn func(ctx context.Context, tx repositories.ExamTx) error) error
}

// ExamService defines the interface for exam operations
type ExamService interface {
	StartExam(ctx context.Context, userID uuid.UUID, courseSlug string) (*dto.StartExamResponse, error)
	SubmitExam(ctx context.Context, userID uuid.UUID, courseSlug string, req *dto.SubmitExamRequest) (*dto.SubmitExamResponse, error)
	Eligibility(ctx context.Context, userID uuid.UUID, courseSlug string) (*dto.EligibilityResponse, error)
	ListAttempts(ctx context.Context, userID uuid.UUID, courseSlug string) (*dto.AttemptListResponse, error)
}

// examServiceImpl implements ExamService
type examServiceImpl struct {
	courses      CourseReader
	purchases    PurchaseChecker
	attempts     AttemptReader
	store        ExamTransactor
	certificates CertificateService
	notifier     NotificationService
	defaults     ExamDefaults
	now          func() time.Time
	logger       zerolog.Logger
}

// NewExamService creates a new ExamService
func NewExamService(
	courses CourseReader,
	purchases PurchaseChecker,
	attempts AttemptReader,
	store ExamTransactor,
	certificates CertificateService,
	notifier NotificationService,
	defaults ExamDefaults,
	logger zerolog.Logger,
) ExamService {
	return &examServiceImpl{
		courses:      courses,
		purchases:    purchases,
		attempts:     attempts,
		store:        store,
		certificates: certificates,
		notifier:     notifier,
		defaults:     defaults,
		now:          time.Now,
		logger:       logger,
	}
}

func gateError(decision GateDecision) error {
	switch decision {
	case DecisionAlreadyPassed:
		return apperrors.ErrAlreadyPassed
	case DecisionMaxAttemptsReached:
		return apperrors.ErrMaxAttemptsReached
	case DecisionNotPurchased:
		return apperrors.ErrNotPurchased
	default:
		return nil
	}
}

func (s *examServiceImpl) requirePurchase(ctx context.Context, userID uuid.UUID, courseSlug string) error {
	purchased, err := s.purchases.HasCompletedPurchase(ctx, userID, courseSlug)
	if err != nil {
		return fmt.Errorf("error checking purchase: %w", err)
	}
	if !purchased {
		return apperrors.ErrNotPurchased
	}
	return nil
}

// StartExam runs the attempt gate and, when allowed, opens a new attempt with a
// snapshot of the current question bank. The gate and insert share one locked
// transaction, so concurrent starts cannot exceed the attempt ceiling.
func (s *examServiceImpl) StartExam(ctx context.Context, userID uuid.UUID, courseSlug string) (*dto.StartExamResponse, error) {
	course, err := s.courses.GetCourse(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	if err := s.requirePurchase(ctx, userID, courseSlug); err != nil {
		return nil, err
	}

	questions, err := s.courses.GetQuestions(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	if len(questions) == 0 {
		return nil, apperrors.ErrQuestionsNotFound
	}

	policy := s.defaults.PolicyFor(course)
	attempt := &models.ExamAttempt{
		ID:         uuid.New(),
		UserID:     userID,
		CourseSlug: courseSlug,
		Status:     models.AttemptInProgress,
		StartedAt:  s.now().UTC(),
		Answers:    map[string]models.AnswerRecord{},
		Questions:  questions,
	}

	err = s.store.WithinTx(ctx, userID, courseSlug, func(ctx context.Context, tx repositories.ExamTx) error {
		prior, err := tx.ListAttempts(ctx, userID, courseSlug)
		if err != nil {
			return err
		}
		if decision := EvaluateGate(prior, policy); decision != DecisionAllowed {
			return gateError(decision)
		}
		return tx.CreateAttempt(ctx, attempt)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("attemptID", attempt.ID.String()).
		Str("userID", userID.String()).
		Str("courseSlug", courseSlug).
		Int("questions", len(questions)).
		Msg("Exam attempt started")

	resp := &dto.StartExamResponse{
		AttemptID: attempt.ID,
		Questions: dto.ToPublicQuestions(questions),
		StartedAt: attempt.StartedAt,
	}
	if deadline, ok := policy.Deadline(attempt.StartedAt); ok {
		resp.DeadlineAt = &deadline
	}
	return resp, nil
}

// SubmitExam grades the latest in-progress attempt, completes it exactly once and,
// on a pass, issues the certificate in the same transaction. A certificate failure
// is logged and the result is still returned without a number.
func (s *examServiceImpl) SubmitExam(ctx context.Context, userID uuid.UUID, courseSlug string, req *dto.SubmitExamRequest) (*dto.SubmitExamResponse, error) {
	course, err := s.courses.GetCourse(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	policy := s.defaults.PolicyFor(course)

	var (
		result   GradeResult
		attempt  *models.ExamAttempt
		cert     *models.Certificate
		timedOut bool
	)

	err = s.store.WithinTx(ctx, userID, courseSlug, func(ctx context.Context, tx repositories.ExamTx) error {
		var err error
		attempt, err = tx.LockLatestActiveAttempt(ctx, userID, courseSlug)
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if policy.Expired(attempt.StartedAt, now) {
			timedOut = true
			return s.closeExpired(ctx, tx, attempt, now)
		}

		questions := attempt.Questions
		if len(questions) == 0 {
			// Attempts opened before snapshots existed grade against the live bank.
			if questions, err = s.courses.GetQuestions(ctx, courseSlug); err != nil {
				return err
			}
			if len(questions) == 0 {
				return apperrors.ErrQuestionsNotFound
			}
		}

		result = GradeSubmission(questions, req.Answers, policy.PassingScore)

		score := result.Score
		attempt.CompletedAt = &now
		attempt.Score = &score
		attempt.Passed = result.Passed
		attempt.Answers = result.Answers
		attempt.TimeSpentSeconds = int(math.Round(req.TimeSpent))
		if err := tx.CompleteAttempt(ctx, attempt); err != nil {
			return err
		}

		if result.Passed {
			cert, err = s.certificates.Issue(ctx, tx, attempt)
			if err != nil {
				s.logger.Error().Err(err).
					Str("attemptID", attempt.ID.String()).
					Str("userID", userID.String()).
					Str("courseSlug", courseSlug).
					Msg("Certificate issuance failed; exam result kept")
				cert = nil
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrAttemptNotActive) {
			return nil, apperrors.ErrNoActiveAttempt
		}
		return nil, err
	}
	if timedOut {
		return nil, apperrors.ErrTimeLimitExceeded
	}

	resp := &dto.SubmitExamResponse{
		AttemptID:      attempt.ID,
		Score:          result.Score,
		Passed:         result.Passed,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
	}
	notice := ExamResultNotice{
		UserID:         userID,
		CourseTitle:    course.Title,
		Score:          result.Score,
		PassingScore:   policy.PassingScore,
		Passed:         result.Passed,
		CorrectAnswers: result.CorrectAnswers,
		TotalQuestions: result.TotalQuestions,
	}
	if cert != nil {
		number := cert.CertificateNumber
		resp.CertificateNumber = &number
		notice.CertificateNumber = number
	}

	s.logger.Info().
		Str("attemptID", attempt.ID.String()).
		Str("userID", userID.String()).
		Str("courseSlug", courseSlug).
		Int("score", result.Score).
		Bool("passed", result.Passed).
		Msg("Exam attempt graded")

	s.notifier.NotifyExamResult(notice)
	return resp, nil
}

// closeExpired completes an attempt submitted past its deadline with a zero score
func (s *examServiceImpl) closeExpired(ctx context.Context, tx repositories.ExamTx, attempt *models.ExamAttempt, now time.Time) error {
	zero := 0
	attempt.CompletedAt = &now
	attempt.Score = &zero
	attempt.Passed = false
	attempt.TimeSpentSeconds = int(math.Min(now.Sub(attempt.StartedAt).Seconds(), float64(s.defaults.MaxTimeSpent)))
	if err := tx.CompleteAttempt(ctx, attempt); err != nil {
		return err
	}
	s.logger.Warn().
		Str("attemptID", attempt.ID.String()).
		Str("courseSlug", attempt.CourseSlug).
		Time("startedAt", attempt.StartedAt).
		Msg("Exam submitted after time limit; attempt closed with score 0")
	return nil
}

// Eligibility evaluates the attempt gate without opening an attempt
func (s *examServiceImpl) Eligibility(ctx context.Context, userID uuid.UUID, courseSlug string) (*dto.EligibilityResponse, error) {
	course, err := s.courses.GetCourse(ctx, courseSlug)
	if err != nil {
		return nil, err
	}
	policy := s.defaults.PolicyFor(course)

	resp := &dto.EligibilityResponse{
		MaxAttempts:  policy.MaxAttempts,
		PassingScore: policy.PassingScore,
	}

	purchased, err := s.purchases.HasCompletedPurchase(ctx, userID, courseSlug)
	if err != nil {
		return nil, fmt.Errorf("error checking purchase: %w", err)
	}
	if !purchased {
		resp.Decision = string(DecisionNotPurchased)
		return resp, nil
	}

	attempts, err := s.attempts.ListForCourse(ctx, userID, courseSlug)
	if err != nil {
		return nil, fmt.Errorf("error listing attempts: %w", err)
	}
	resp.AttemptsUsed = len(attempts)
	resp.Decision = string(EvaluateGate(attempts, policy))
	return resp, nil
}

// ListAttempts returns the caller's attempts for the course, newest first
func (s *examServiceImpl) ListAttempts(ctx context.Context, userID uuid.UUID, courseSlug string) (*dto.AttemptListResponse, error) {
	if _, err := s.courses.GetCourse(ctx, courseSlug); err != nil {
		return nil, err
	}

	attempts, err := s.attempts.ListForCourse(ctx, userID, courseSlug)
	if err != nil {
		return nil, fmt.Errorf("error listing attempts: %w", err)
	}

	resp := &dto.AttemptListResponse{Attempts: make([]dto.AttemptSummary, 0, len(attempts))}
	for i := range attempts {
		resp.Attempts = append(resp.Attempts, dto.ToAttemptSummary(&attempts[i]))
	}
	return resp, nil
}
