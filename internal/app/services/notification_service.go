package services

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/pkg/email"
	"github.com/rs/zerolog"
)

// ProfileReader loads the user's contact details
type ProfileReader interface {
	GetProfile(ctx context.Context, userID uuid.UUID) (*models.Profile, error)
}

// ExamResultNotice is everything the result email needs
type ExamResultNotice struct {
	UserID            uuid.UUID
	CourseTitle       string
	Score             int
	PassingScore      int
	Passed            bool
	CorrectAnswers    int
	TotalQuestions    int
	CertificateNumber string
}

// NotificationService delivers best-effort notifications off the request path
type NotificationService interface {
	NotifyExamResult(notice ExamResultNotice)
	Wait(ctx context.Context) error
}

// notificationServiceImpl implements NotificationService
type notificationServiceImpl struct {
	profiles      ProfileReader
	mailer        email.Mailer
	timeout       time.Duration
	verifyBaseURL string
	logger        zerolog.Logger

	// mu guards closing so no wg.Add runs once Wait has started draining
	mu      sync.Mutex
	closing bool
	wg      sync.WaitGroup
}

// NewNotificationService creates a new NotificationService
func NewNotificationService(profiles ProfileReader, mailer email.Mailer, timeout time.Duration, verifyBaseURL string, logger zerolog.Logger) NotificationService {
	return &notificationServiceImpl{
		profiles:      profiles,
		mailer:        mailer,
		timeout:       timeout,
		verifyBaseURL: strings.TrimRight(verifyBaseURL, "/"),
		logger:        logger,
	}
}

// NotifyExamResult emails the result on a background goroutine. It never blocks
// the caller and never reports failure; errors are logged. Notices arriving after
// Wait has been called are dropped.
func (s *notificationServiceImpl) NotifyExamResult(notice ExamResultNotice) {
	s.mu.Lock()
	if s.closing {
		s.mu.Unlock()
		s.logger.Warn().Str("userID", notice.UserID.String()).Msg("Notifier is shutting down, exam result email dropped")
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error().Interface("panic", r).Msg("Exam result notification panicked")
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		if err := s.sendExamResult(ctx, notice); err != nil {
			s.logger.Error().Err(err).
				Str("userID", notice.UserID.String()).
				Msg("Failed to send exam result email")
		}
	}()
}

func (s *notificationServiceImpl) sendExamResult(ctx context.Context, notice ExamResultNotice) error {
	profile, err := s.profiles.GetProfile(ctx, notice.UserID)
	if err != nil {
		return fmt.Errorf("failed to load profile: %w", err)
	}
	if strings.TrimSpace(profile.Email) == "" {
		s.logger.Debug().Str("userID", notice.UserID.String()).Msg("No email on file, skipping exam result email")
		return nil
	}

	data := email.ExamResultData{
		Name:              profile.DisplayName(),
		CourseTitle:       notice.CourseTitle,
		Score:             notice.Score,
		PassingScore:      notice.PassingScore,
		Passed:            notice.Passed,
		CorrectAnswers:    notice.CorrectAnswers,
		TotalQuestions:    notice.TotalQuestions,
		CertificateNumber: notice.CertificateNumber,
	}
	if notice.CertificateNumber != "" && s.verifyBaseURL != "" {
		data.VerifyURL = s.verifyBaseURL + "/" + url.PathEscape(notice.CertificateNumber)
	}

	subject, body, err := email.RenderExamResult(data)
	if err != nil {
		return err
	}

	if err := s.mailer.Send(ctx, email.Message{To: profile.Email, Subject: subject, HTML: body}); err != nil {
		return err
	}
	s.logger.Info().Str("userID", notice.UserID.String()).Bool("passed", notice.Passed).Msg("Exam result email sent")
	return nil
}

// Wait stops accepting notices, then blocks until every pending notification
// finishes or ctx is done
func (s *notificationServiceImpl) Wait(ctx context.Context) error {
	s.mu.Lock()
	s.closing = true
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pending notifications not drained: %w", ctx.Err())
	}
}
