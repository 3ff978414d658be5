package routes

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/nsbs/certify/internal/app/controllers"
	"github.com/nsbs/certify/internal/app/models"
	"github.com/nsbs/certify/internal/app/models/dto"
	"github.com/nsbs/certify/internal/app/services"
	"github.com/nsbs/certify/internal/middleware"
	"github.com/nsbs/certify/internal/pkg/auth"
)

const allowedOrigin = "https://academy.example.com"

type stubExamService struct{ calls int }

func (s *stubExamService) StartExam(context.Context, uuid.UUID, string) (*dto.StartExamResponse, error) {
	s.calls++
	return &dto.StartExamResponse{AttemptID: uuid.New(), Questions: []dto.PublicQuestion{}, StartedAt: time.Now()}, nil
}

func (s *stubExamService) SubmitExam(context.Context, uuid.UUID, string, *dto.SubmitExamRequest) (*dto.SubmitExamResponse, error) {
	s.calls++
	return &dto.SubmitExamResponse{Score: 100, Passed: true, CorrectAnswers: 1, TotalQuestions: 1}, nil
}

func (s *stubExamService) Eligibility(context.Context, uuid.UUID, string) (*dto.EligibilityResponse, error) {
	return &dto.EligibilityResponse{Decision: string(services.DecisionAllowed)}, nil
}

func (s *stubExamService) ListAttempts(context.Context, uuid.UUID, string) (*dto.AttemptListResponse, error) {
	return &dto.AttemptListResponse{Attempts: []dto.AttemptSummary{}}, nil
}

type stubCertificateService struct{}

func (stubCertificateService) Issue(context.Context, services.CertificateWriter, *models.ExamAttempt) (*models.Certificate, error) {
	return nil, nil
}

func (stubCertificateService) Verify(context.Context, services.VerificationRequest) (*models.Certificate, error) {
	return &models.Certificate{CertificateNumber: "NSBS-AAAA-BBBB-CCCC"}, nil
}

func (stubCertificateService) ListForUser(context.Context, uuid.UUID) (*dto.CertificateListResponse, error) {
	return &dto.CertificateListResponse{Certificates: []dto.CertificateResponse{}}, nil
}

func (stubCertificateService) Revoke(context.Context, string, string) (*dto.CertificateResponse, error) {
	return &dto.CertificateResponse{}, nil
}

type okPinger struct{}

func (okPinger) Ping(context.Context) error { return nil }

func newRouter(t *testing.T) (*gin.Engine, *stubExamService, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jwtService := auth.NewJWTService(auth.JWTConfig{SecretKey: "test-secret", Audience: "authenticated"})
	token, err := jwtService.IssueToken(uuid.New(), "jane@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	exams := &stubExamService{}
	r := gin.New()
	SetupRouter(r,
		controllers.NewExamController(exams, 86400),
		controllers.NewCertificateController(stubCertificateService{}),
		controllers.NewHealthController(okPinger{}),
		Middlewares{
			Auth:        middleware.NewAuthMiddleware(jwtService, "sb-access-token", ""),
			OriginCheck: middleware.OriginCheck([]string{allowedOrigin}),
			RateLimit:   func(c *gin.Context) { c.Next() },
		},
	)
	return r, exams, token
}

func serve(r *gin.Engine, method, path, body string, headers map[string]string) int {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Code
}

func TestStateChangingExamRoutesCheckOriginBeforeSession(t *testing.T) {
	r, exams, token := newRouter(t)
	body := `{"answers":{},"timeSpent":1}`

	tests := []struct {
		name    string
		path    string
		headers map[string]string
		want    int
	}{
		{"bad origin without token", "/api/exams/aml/submit", map[string]string{"Origin": "https://evil.example.net"}, http.StatusForbidden},
		{"no origin without token", "/api/exams/aml/start", nil, http.StatusForbidden},
		{"bad origin with token", "/api/exams/aml/start", map[string]string{"Origin": "https://evil.example.net", "Authorization": "Bearer " + token}, http.StatusForbidden},
		{"good origin without token", "/api/exams/aml/submit", map[string]string{"Origin": allowedOrigin}, http.StatusUnauthorized},
		{"good origin with token", "/api/exams/aml/submit", map[string]string{"Origin": allowedOrigin, "Authorization": "Bearer " + token}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := serve(r, http.MethodPost, tt.path, body, tt.headers); got != tt.want {
				t.Fatalf("status = %d, want %d", got, tt.want)
			}
		})
	}
	if exams.calls != 1 {
		t.Fatalf("service calls = %d, want 1", exams.calls)
	}
}

func TestReadRoutesNeedSessionOnly(t *testing.T) {
	r, _, token := newRouter(t)

	if got := serve(r, http.MethodGet, "/api/exams/aml/eligibility", "", nil); got != http.StatusUnauthorized {
		t.Fatalf("eligibility without token: status = %d, want 401", got)
	}
	if got := serve(r, http.MethodGet, "/api/exams/aml/attempts", "", map[string]string{"Authorization": "Bearer " + token}); got != http.StatusOK {
		t.Fatalf("attempts with token: status = %d, want 200", got)
	}
	if got := serve(r, http.MethodGet, "/api/certificates", "", map[string]string{"Authorization": "Bearer " + token}); got != http.StatusOK {
		t.Fatalf("certificates with token: status = %d, want 200", got)
	}
	if got := serve(r, http.MethodGet, "/api/verification/NSBS-AAAA-BBBB-CCCC", "", nil); got != http.StatusOK {
		t.Fatalf("public verification: status = %d, want 200", got)
	}
}
