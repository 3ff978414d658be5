package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/app/models/dto"
	"github.com/nsbs/certify/internal/app/services"
	"github.com/nsbs/certify/internal/middleware"
	"github.com/nsbs/certify/internal/pkg/apperrors"
	"github.com/nsbs/certify/internal/pkg/auth"
	"github.com/nsbs/certify/internal/pkg/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterGinRules(); err != nil {
		panic(err)
	}
}

const testOrigin = "https://academy.example.com"

type fakeExamService struct {
	submitted *dto.SubmitExamRequest
	submitErr error
	startErr  error
}

func (f *fakeExamService) StartExam(_ context.Context, _ uuid.UUID, slug string) (*dto.StartExamResponse, error) {
	if f.startErr != nil {
		return nil, f.startErr
	}
	return &dto.StartExamResponse{
		AttemptID: uuid.New(),
		Questions: []dto.PublicQuestion{{ID: "q1", Question: "Q?", Type: models.QuestionTypeMultipleChoice, Options: []string{"A", "B"}}},
		StartedAt: time.Now(),
	}, nil
}

func (f *fakeExamService) SubmitExam(_ context.Context, _ uuid.UUID, _ string, req *dto.SubmitExamRequest) (*dto.SubmitExamResponse, error) {
	f.submitted = req
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	number := "NSBS-AAAA-BBBB-CCCC"
	return &dto.SubmitExamResponse{Score: 80, Passed: true, CorrectAnswers: 8, TotalQuestions: 10, CertificateNumber: &number}, nil
}

func (f *fakeExamService) Eligibility(context.Context, uuid.UUID, string) (*dto.EligibilityResponse, error) {
	return &dto.EligibilityResponse{Decision: string(services.DecisionAllowed), MaxAttempts: 3, PassingScore: 80}, nil
}

func (f *fakeExamService) ListAttempts(context.Context, uuid.UUID, string) (*dto.AttemptListResponse, error) {
	return &dto.AttemptListResponse{Attempts: []dto.AttemptSummary{}}, nil
}

type fakeCertificateService struct {
	cert      *models.Certificate
	verifyErr error
	lastReq   services.VerificationRequest
	revoked   string
}

func (f *fakeCertificateService) Issue(context.Context, services.CertificateWriter, *models.ExamAttempt) (*models.Certificate, error) {
	return nil, errors.New("not used")
}

func (f *fakeCertificateService) Verify(_ context.Context, req services.VerificationRequest) (*models.Certificate, error) {
	f.lastReq = req
	return f.cert, f.verifyErr
}

func (f *fakeCertificateService) ListForUser(context.Context, uuid.UUID) (*dto.CertificateListResponse, error) {
	return &dto.CertificateListResponse{Certificates: []dto.CertificateResponse{}}, nil
}

func (f *fakeCertificateService) Revoke(_ context.Context, number, reason string) (*dto.CertificateResponse, error) {
	f.revoked = number
	now := time.Now()
	return &dto.CertificateResponse{CertificateNumber: number, Revoked: true, RevokedAt: &now}, nil
}

type staticPinger struct{ err error }

func (p staticPinger) Ping(context.Context) error { return p.err }

type testServer struct {
	router *gin.Engine
	exams  *fakeExamService
	certs  *fakeCertificateService
	token  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", Audience: "authenticated"})
	token, err := jwtService.IssueToken(uuid.New(), "jane@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}
	adminHash, err := auth.HashAPIKey("admin-key-0123456789")
	if err != nil {
		t.Fatalf("HashAPIKey failed: %v", err)
	}

	ts := &testServer{exams: &fakeExamService{}, certs: &fakeCertificateService{}, token: token}
	authMW := middleware.NewAuthMiddleware(jwtService, "sb-access-token", adminHash)
	examController := NewExamController(ts.exams, 86400)
	certController := NewCertificateController(ts.certs)
	health := NewHealthController(staticPinger{})

	r := gin.New()
	api := r.Group("/api")
	api.GET("/health", health.Health)
	api.GET("/verification/:certificateId", certController.VerifyCertificate)
	exams := api.Group("/exams/:slug")
	exams.GET("/eligibility", authMW.JWTAuth(), examController.GetEligibility)
	state := exams.Group("", middleware.OriginCheck([]string{testOrigin}), authMW.JWTAuth())
	state.POST("/start", examController.StartExam)
	state.POST("/submit", examController.SubmitExam)
	api.GET("/certificates", authMW.JWTAuth(), certController.ListCertificates)
	api.POST("/admin/certificates/:number/revoke", authMW.AdminKey(), certController.RevokeCertificate)

	ts.router = r
	return ts
}

func (ts *testServer) do(method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func (ts *testServer) authHeaders() map[string]string {
	return map[string]string{"Authorization": "Bearer " + ts.token, "Origin": testOrigin}
}

func decodeJSON(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("invalid JSON %q: %v", w.Body.String(), err)
	}
}

func TestSubmitExam(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/exams/aml/submit", `{"answers":{"q1":"A","q2":3},"timeSpent":120}`, ts.authHeaders())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
	}
	var resp dto.SubmitExamResponse
	decodeJSON(t, w, &resp)
	if resp.Score != 80 || !resp.Passed || resp.CertificateNumber == nil {
		t.Fatalf("response = %+v", resp)
	}
	if ts.exams.submitted.Answers["q2"] != "3" || ts.exams.submitted.TimeSpent != 120 {
		t.Fatalf("decoded request = %+v", ts.exams.submitted)
	}
}

func TestSubmitExamRejectsInvalidBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"negative time", `{"answers":{},"timeSpent":-1}`},
		{"time above a day", `{"answers":{},"timeSpent":86401}`},
		{"answers array", `{"answers":["A"],"timeSpent":10}`},
		{"missing time", `{"answers":{}}`},
		{"not json", `answers=A`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := newTestServer(t)
			w := ts.do(http.MethodPost, "/api/exams/aml/submit", tt.body, ts.authHeaders())
			if w.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", w.Code)
			}
			var resp dto.ErrorResponse
			decodeJSON(t, w, &resp)
			if resp.Error == "" || resp.Code != dto.ErrorCodeValidationFailed {
				t.Fatalf("response = %+v", resp)
			}
			if ts.exams.submitted != nil {
				t.Fatalf("service must not be called for an invalid body")
			}
		})
	}
}

func TestExamRoutesRequireAuthAndOrigin(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/exams/aml/start", "", map[string]string{"Origin": testOrigin})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", w.Code)
	}

	w = ts.do(http.MethodPost, "/api/exams/aml/start", "", map[string]string{"Authorization": "Bearer " + ts.token, "Origin": "https://evil.example.net"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("bad origin: status = %d, want 403", w.Code)
	}

	w = ts.do(http.MethodPost, "/api/exams/aml/submit", `{"answers":{},"timeSpent":1}`, map[string]string{"Origin": "https://evil.example.net"})
	if w.Code != http.StatusForbidden {
		t.Fatalf("bad origin without token: status = %d, want 403", w.Code)
	}

	w = ts.do(http.MethodGet, "/api/exams/aml/eligibility", "", map[string]string{"Authorization": "Bearer " + ts.token})
	if w.Code != http.StatusOK {
		t.Fatalf("eligibility needs no origin: status = %d", w.Code)
	}
}

func TestStartExamMapsGateErrors(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   dto.ErrorCode
	}{
		{apperrors.ErrNotPurchased, http.StatusForbidden, dto.ErrorCodeNotPurchased},
		{apperrors.ErrAlreadyPassed, http.StatusBadRequest, dto.ErrorCodeAlreadyPassed},
		{apperrors.ErrMaxAttemptsReached, http.StatusBadRequest, dto.ErrorCodeMaxAttempts},
		{apperrors.ErrCourseNotFound, http.StatusNotFound, dto.ErrorCodeResourceNotFound},
	}

	for _, tt := range tests {
		ts := newTestServer(t)
		ts.exams.startErr = tt.err
		w := ts.do(http.MethodPost, "/api/exams/aml/start", "", ts.authHeaders())
		if w.Code != tt.status {
			t.Errorf("%v: status = %d, want %d", tt.err, w.Code, tt.status)
			continue
		}
		var resp dto.ErrorResponse
		decodeJSON(t, w, &resp)
		if resp.Code != tt.code {
			t.Errorf("%v: code = %s, want %s", tt.err, resp.Code, tt.code)
		}
	}
}

func TestMalformedSlugIsUnknownCourse(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/api/exams/AML%20Foundations/eligibility", "", ts.authHeaders())
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
}

func TestStartExamHidesAnswerKeys(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodPost, "/api/exams/aml/start", "", ts.authHeaders())
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if strings.Contains(w.Body.String(), "correct") {
		t.Fatalf("answer key leaked: %s", w.Body.String())
	}
}

func TestSubmitExamNoActiveAttempt(t *testing.T) {
	ts := newTestServer(t)
	ts.exams.submitErr = apperrors.ErrNoActiveAttempt

	w := ts.do(http.MethodPost, "/api/exams/aml/submit", `{"answers":{},"timeSpent":5}`, ts.authHeaders())
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
	var resp dto.ErrorResponse
	decodeJSON(t, w, &resp)
	if resp.Error != "No active exam attempt found" {
		t.Fatalf("error = %q", resp.Error)
	}
}

func TestVerifyCertificate(t *testing.T) {
	issued := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	revokedAt := issued.Add(48 * time.Hour)
	cert := &models.Certificate{
		ID:                uuid.New(),
		CertificateNumber: "NSBS-AAAA-BBBB-CCCC",
		CourseTitle:       "AML Foundations",
		HolderName:        "Jane Doe",
		IssuedAt:          issued,
	}

	t.Run("valid", func(t *testing.T) {
		ts := newTestServer(t)
		ts.certs.cert = cert
		w := ts.do(http.MethodGet, "/api/verification/NSBS-AAAA-BBBB-CCCC", "", map[string]string{"User-Agent": "verifier/1.0"})
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp dto.VerificationResponse
		decodeJSON(t, w, &resp)
		if !resp.Valid || resp.Certificate == nil || resp.Certificate.UserName != "Jane Doe" || resp.Certificate.CourseTitle != "AML Foundations" {
			t.Fatalf("response = %+v", resp)
		}
		if ts.certs.lastReq.UserAgent != "verifier/1.0" || ts.certs.lastReq.IPAddress == "" {
			t.Fatalf("audit context not passed: %+v", ts.certs.lastReq)
		}
	})

	t.Run("not found", func(t *testing.T) {
		ts := newTestServer(t)
		ts.certs.verifyErr = apperrors.ErrCertificateNotFound
		w := ts.do(http.MethodGet, "/api/verification/NSBS-ZZZZ-ZZZZ-ZZZZ", "", nil)
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d", w.Code)
		}
		var resp dto.VerificationResponse
		decodeJSON(t, w, &resp)
		if resp.Valid || resp.Error == "" {
			t.Fatalf("response = %+v", resp)
		}
	})

	t.Run("revoked", func(t *testing.T) {
		ts := newTestServer(t)
		revoked := *cert
		revoked.Revoked = true
		revoked.RevokedAt = &revokedAt
		ts.certs.cert = &revoked
		ts.certs.verifyErr = apperrors.ErrCertificateRevoked
		w := ts.do(http.MethodGet, "/api/verification/NSBS-AAAA-BBBB-CCCC", "", nil)
		if w.Code != http.StatusGone {
			t.Fatalf("status = %d", w.Code)
		}
		var resp dto.VerificationResponse
		decodeJSON(t, w, &resp)
		if resp.Valid || resp.RevokedAt == nil || !resp.RevokedAt.Equal(revokedAt) || resp.Certificate != nil {
			t.Fatalf("response = %+v", resp)
		}
	})

	t.Run("internal error", func(t *testing.T) {
		ts := newTestServer(t)
		ts.certs.verifyErr = errors.New("connection reset")
		w := ts.do(http.MethodGet, "/api/verification/NSBS-AAAA-BBBB-CCCC", "", nil)
		if w.Code != http.StatusInternalServerError || strings.Contains(w.Body.String(), "connection reset") {
			t.Fatalf("status = %d body = %s", w.Code, w.Body.String())
		}
	})
}

func TestRevokeCertificate(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(http.MethodPost, "/api/admin/certificates/NSBS-AAAA-BBBB-CCCC/revoke", `{"reason":"issued in error"}`, nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no key: status = %d", w.Code)
	}

	headers := map[string]string{middleware.AdminKeyHeader: "admin-key-0123456789"}
	w = ts.do(http.MethodPost, "/api/admin/certificates/NSBS-AAAA-BBBB-CCCC/revoke", `{"reason":""}`, headers)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("empty reason: status = %d", w.Code)
	}

	w = ts.do(http.MethodPost, "/api/admin/certificates/NSBS-AAAA-BBBB-CCCC/revoke", `{"reason":"     "}`, headers)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("blank reason: status = %d", w.Code)
	}

	w = ts.do(http.MethodPost, "/api/admin/certificates/NSBS-AAAA-BBBB-CCCC/revoke", `{"reason":"issued in error"}`, headers)
	if w.Code != http.StatusOK || ts.certs.revoked != "NSBS-AAAA-BBBB-CCCC" {
		t.Fatalf("status = %d revoked = %q", w.Code, ts.certs.revoked)
	}
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	w := ts.do(http.MethodGet, "/api/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	down := NewHealthController(staticPinger{err: errors.New("down")})
	r := gin.New()
	r.GET("/health", down.Health)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}
}
