package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/app/models/dto"
	"github.com/nsbs/certify/internal/pkg/apperrors"
	"github.com/rs/zerolog"
)

// crockfordAlphabet omits I, L, O and U so numbers survive being read aloud or retyped
const crockfordAlphabet = "0123456789ABCDEFGHJKMNPQRSTVWXYZ"

const (
	certificateTokenLength  = 12
	certificateTokenGroup   = 4
	maxCertificateNumberTry = 5
)

// CertificateWriter persists a certificate inside the caller's transaction
type CertificateWriter interface {
	IssueCertificate(ctx context.Context, cert *models.Certificate) (*models.Certificate, error)
}

// CertificateStore is the certificate persistence used outside the grading transaction
type CertificateStore interface {
	FindForVerification(ctx context.Context, identifier string) (*models.Certificate, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Certificate, error)
	Revoke(ctx context.Context, number, reason string, at time.Time) (*models.Certificate, error)
}

// VerificationRecorder writes the verification audit trail
type VerificationRecorder interface {
	Record(ctx context.Context, v *models.CertificateVerification) error
}

// VerificationRequest describes who asked to verify a certificate
type VerificationRequest struct {
	Identifier string
	IPAddress  string
	UserAgent  string
}

// CertificateService defines the interface for certificate operations
type CertificateService interface {
	Issue(ctx context.Context, w CertificateWriter, attempt *models.ExamAttempt) (*models.Certificate, error)
	Verify(ctx context.Context, req VerificationRequest) (*models.Certificate, error)
	ListForUser(ctx context.Context, userID uuid.UUID) (*dto.CertificateListResponse, error)
	Revoke(ctx context.Context, number, reason string) (*dto.CertificateResponse, error)
}

// certificateServiceImpl implements CertificateService
type certificateServiceImpl struct {
	store        CertificateStore
	audit        VerificationRecorder
	prefix       string
	randomSource func([]byte) (int, error)
	now          func() time.Time
	logger       zerolog.Logger
}

// NewCertificateService creates a new CertificateService
func NewCertificateService(store CertificateStore, audit VerificationRecorder, prefix string, logger zerolog.Logger) CertificateService {
	return &certificateServiceImpl{
		store:        store,
		audit:        audit,
		prefix:       prefix,
		randomSource: rand.Read,
		now:          time.Now,
		logger:       logger,
	}
}

// NewCertificateNumber returns prefix-XXXX-XXXX-XXXX built from a cryptographically random token
func NewCertificateNumber(prefix string, randomSource func([]byte) (int, error)) (string, error) {
	buf := make([]byte, certificateTokenLength)
	if _, err := randomSource(buf); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}

	var b strings.Builder
	b.WriteString(prefix)
	for i, v := range buf {
		if i%certificateTokenGroup == 0 {
			b.WriteByte('-')
		}
		// 256 is a multiple of 32, so masking keeps the distribution uniform
		b.WriteByte(crockfordAlphabet[v&31])
	}
	return b.String(), nil
}

// Issue writes the certificate for a passing attempt. When the user already holds a
// certificate for the course the existing one is returned. Number collisions are retried.
func (s *certificateServiceImpl) Issue(ctx context.Context, w CertificateWriter, attempt *models.ExamAttempt) (*models.Certificate, error) {
	if !attempt.Passed {
		return nil, apperrors.NewBadRequestError("certificate requires a passing attempt")
	}

	for try := 1; try <= maxCertificateNumberTry; try++ {
		number, err := NewCertificateNumber(s.prefix, s.randomSource)
		if err != nil {
			return nil, err
		}

		cert, err := w.IssueCertificate(ctx, &models.Certificate{
			ID:                uuid.New(),
			UserID:            attempt.UserID,
			CourseSlug:        attempt.CourseSlug,
			CertificateNumber: number,
			IssuedAt:          s.now().UTC(),
			ExamAttemptID:     attempt.ID,
		})
		if err == nil {
			return cert, nil
		}
		if !errors.Is(err, apperrors.ErrConflict) {
			return nil, err
		}
		s.logger.Warn().Int("try", try).Str("courseSlug", attempt.CourseSlug).Msg("Certificate number collision, regenerating")
	}

	return nil, fmt.Errorf("could not allocate a unique certificate number after %d tries", maxCertificateNumberTry)
}

// Verify resolves a certificate by number or id and records the lookup.
// A revoked certificate is returned together with ErrCertificateRevoked.
func (s *certificateServiceImpl) Verify(ctx context.Context, req VerificationRequest) (*models.Certificate, error) {
	identifier := strings.TrimSpace(req.Identifier)
	if identifier == "" {
		return nil, apperrors.ErrCertificateNotFound
	}

	// Numbers are upper case; uuids parse in either case.
	cert, err := s.store.FindForVerification(ctx, strings.ToUpper(identifier))
	if err != nil {
		return nil, err
	}

	audit := &models.CertificateVerification{
		ID:            uuid.New(),
		CertificateID: cert.ID,
		VerifiedAt:    s.now().UTC(),
		IPAddress:     req.IPAddress,
		UserAgent:     req.UserAgent,
	}
	if err := s.audit.Record(ctx, audit); err != nil {
		s.logger.Error().Err(err).Str("certificateID", cert.ID.String()).Msg("Failed to record certificate verification")
	}

	if cert.Revoked {
		return cert, apperrors.ErrCertificateRevoked
	}
	return cert, nil
}

// ListForUser returns the caller's certificates
func (s *certificateServiceImpl) ListForUser(ctx context.Context, userID uuid.UUID) (*dto.CertificateListResponse, error) {
	certs, err := s.store.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("error listing certificates: %w", err)
	}

	resp := &dto.CertificateListResponse{Certificates: make([]dto.CertificateResponse, 0, len(certs))}
	for i := range certs {
		resp.Certificates = append(resp.Certificates, dto.ToCertificateResponse(&certs[i]))
	}
	return resp, nil
}

// Revoke marks a certificate revoked
func (s *certificateServiceImpl) Revoke(ctx context.Context, number, reason string) (*dto.CertificateResponse, error) {
	cert, err := s.store.Revoke(ctx, strings.ToUpper(strings.TrimSpace(number)), strings.TrimSpace(reason), s.now().UTC())
	if err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("certificateNumber", cert.CertificateNumber).
		Str("reason", reason).
		Msg("Certificate revoked")

	resp := dto.ToCertificateResponse(cert)
	return &resp, nil
}
