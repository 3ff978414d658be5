package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/app/repositories"
	"github.com/nsbs/certify/internal/pkg/apperrors"
)

type fakeCourses struct {
	courses   map[string]*models.Course
	questions map[string][]models.ExamQuestion
}

func (f *fakeCourses) GetCourse(_ context.Context, slug string) (*models.Course, error) {
	c, ok := f.courses[slug]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return c, nil
}

func (f *fakeCourses) GetQuestions(_ context.Context, slug string) ([]models.ExamQuestion, error) {
	return f.questions[slug], nil
}

type fakePurchases struct {
	paid map[string]bool
}

func (f *fakePurchases) HasCompletedPurchase(_ context.Context, userID uuid.UUID, courseSlug string) (bool, error) {
	return f.paid[userID.String()+":"+courseSlug], nil
}

// memStore mimics the transactional exam store: each WithinTx call is serialized
// and its writes are discarded when fn fails.
type memStore struct {
	mu              sync.Mutex
	attempts        []models.ExamAttempt
	certs           map[string]models.Certificate
	failCertificate error
}

func newMemStore() *memStore {
	return &memStore{certs: map[string]models.Certificate{}}
}

func (m *memStore) WithinTx(ctx context.Context, _ uuid.UUID, _ string, fn func(ctx context.Context, tx repositories.ExamTx) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	savedAttempts := append([]models.ExamAttempt(nil), m.attempts...)
	savedCerts := make(map[string]models.Certificate, len(m.certs))
	for k, v := range m.certs {
		savedCerts[k] = v
	}

	if err := fn(ctx, &memTx{m}); err != nil {
		m.attempts = savedAttempts
		m.certs = savedCerts
		return err
	}
	return nil
}

func (m *memStore) ListForCourse(_ context.Context, userID uuid.UUID, courseSlug string) ([]models.ExamAttempt, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(userID, courseSlug), nil
}

func (m *memStore) list(userID uuid.UUID, courseSlug string) []models.ExamAttempt {
	out := []models.ExamAttempt{}
	for i := len(m.attempts) - 1; i >= 0; i-- {
		a := m.attempts[i]
		if a.UserID == userID && a.CourseSlug == courseSlug {
			out = append(out, a)
		}
	}
	return out
}

func (m *memStore) attemptsFor(userID uuid.UUID, courseSlug string) []models.ExamAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.list(userID, courseSlug)
}

func (m *memStore) certificateCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.certs)
}

type memTx struct {
	m *memStore
}

func (t *memTx) ListAttempts(_ context.Context, userID uuid.UUID, courseSlug string) ([]models.ExamAttempt, error) {
	return t.m.list(userID, courseSlug), nil
}

func (t *memTx) CreateAttempt(_ context.Context, attempt *models.ExamAttempt) error {
	t.m.attempts = append(t.m.attempts, *attempt)
	return nil
}

func (t *memTx) LockLatestActiveAttempt(_ context.Context, userID uuid.UUID, courseSlug string) (*models.ExamAttempt, error) {
	for i := len(t.m.attempts) - 1; i >= 0; i-- {
		a := t.m.attempts[i]
		if a.UserID == userID && a.CourseSlug == courseSlug && a.Status == models.AttemptInProgress {
			return &a, nil
		}
	}
	return nil, apperrors.ErrNoActiveAttempt
}

func (t *memTx) CompleteAttempt(_ context.Context, attempt *models.ExamAttempt) error {
	for i := range t.m.attempts {
		if t.m.attempts[i].ID == attempt.ID {
			if t.m.attempts[i].Status != models.AttemptInProgress {
				return apperrors.ErrAttemptNotActive
			}
			attempt.Status = models.AttemptCompleted
			t.m.attempts[i] = *attempt
			return nil
		}
	}
	return apperrors.ErrAttemptNotActive
}

func (t *memTx) IssueCertificate(_ context.Context, cert *models.Certificate) (*models.Certificate, error) {
	if t.m.failCertificate != nil {
		return nil, t.m.failCertificate
	}
	key := cert.UserID.String() + ":" + cert.CourseSlug
	if existing, ok := t.m.certs[key]; ok {
		return &existing, nil
	}
	t.m.certs[key] = *cert
	issued := *cert
	return &issued, nil
}

type recordingNotifier struct {
	mu      sync.Mutex
	notices []ExamResultNotice
}

func (n *recordingNotifier) NotifyExamResult(notice ExamResultNotice) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.notices = append(n.notices, notice)
}

func (n *recordingNotifier) Wait(context.Context) error { return nil }

type fakeCertificateStore struct {
	byNumber map[string]*models.Certificate
	revoked  []string
}

func (f *fakeCertificateStore) FindForVerification(_ context.Context, identifier string) (*models.Certificate, error) {
	if c, ok := f.byNumber[identifier]; ok {
		return c, nil
	}
	for _, c := range f.byNumber {
		if id, err := uuid.Parse(identifier); err == nil && c.ID == id {
			return c, nil
		}
	}
	return nil, apperrors.ErrCertificateNotFound
}

func (f *fakeCertificateStore) ListByUser(_ context.Context, userID uuid.UUID) ([]models.Certificate, error) {
	out := []models.Certificate{}
	for _, c := range f.byNumber {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeCertificateStore) Revoke(_ context.Context, number, reason string, at time.Time) (*models.Certificate, error) {
	c, ok := f.byNumber[number]
	if !ok {
		return nil, apperrors.ErrCertificateNotFound
	}
	if !c.Revoked {
		c.Revoked = true
		c.RevokedAt = &at
		c.RevokedReason = &reason
	}
	f.revoked = append(f.revoked, number)
	return c, nil
}

type fakeAudit struct {
	records []models.CertificateVerification
	err     error
}

func (f *fakeAudit) Record(_ context.Context, v *models.CertificateVerification) error {
	if f.err != nil {
		return f.err
	}
	f.records = append(f.records, *v)
	return nil
}

var errBoom = errors.New("boom")
