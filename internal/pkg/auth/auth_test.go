package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func newTestService() *JWTService {
	return NewJWTService(JWTConfig{SecretKey: "test-secret", Audience: "authenticated"})
}

func TestIssueAndValidateToken(t *testing.T) {
	svc := newTestService()
	userID := uuid.New()

	token, err := svc.IssueToken(userID, "jane@example.com", time.Hour)
	if err != nil {
		t.Fatalf("IssueToken failed: %v", err)
	}

	claims, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken failed: %v", err)
	}
	got, err := claims.UserID()
	if err != nil || got != userID {
		t.Fatalf("UserID = %v (%v), want %v", got, err, userID)
	}
	if claims.Email != "jane@example.com" {
		t.Fatalf("Email = %q", claims.Email)
	}
}

func TestValidateTokenRejections(t *testing.T) {
	svc := newTestService()

	expired, _ := svc.IssueToken(uuid.New(), "a@example.com", -time.Minute)
	if _, err := svc.ValidateToken(expired); !errors.Is(err, ErrExpiredToken) {
		t.Fatalf("expired token err = %v", err)
	}

	other := NewJWTService(JWTConfig{SecretKey: "other-secret", Audience: "authenticated"})
	forged, _ := other.IssueToken(uuid.New(), "a@example.com", time.Hour)
	if _, err := svc.ValidateToken(forged); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("forged token err = %v", err)
	}

	wrongAud := NewJWTService(JWTConfig{SecretKey: "test-secret", Audience: "anon"})
	anon, _ := wrongAud.IssueToken(uuid.New(), "a@example.com", time.Hour)
	if _, err := svc.ValidateToken(anon); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("wrong audience err = %v", err)
	}

	if _, err := svc.ValidateToken("not-a-jwt"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("malformed token err = %v", err)
	}

	bad := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "42",
			Audience:  jwt.ClaimStrings{"authenticated"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	})
	signed, _ := bad.SignedString([]byte("test-secret"))
	if _, err := svc.ValidateToken(signed); !errors.Is(err, ErrInvalidToken) {
		t.Fatalf("non-uuid subject err = %v", err)
	}
}

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		header  string
		want    string
		wantErr bool
	}{
		{"Bearer abc.def.ghi", "abc.def.ghi", false},
		{"", "", true},
		{"Bearer ", "", true},
		{"Basic dXNlcjpwYXNz", "", true},
	}
	for _, tt := range tests {
		got, err := ExtractBearerToken(tt.header)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ExtractBearerToken(%q) = %q, %v", tt.header, got, err)
		}
	}
}

func TestVerifyAPIKey(t *testing.T) {
	hash, err := HashAPIKey("s3cret-admin-key")
	if err != nil {
		t.Fatalf("HashAPIKey failed: %v", err)
	}
	if err := VerifyAPIKey(hash, "s3cret-admin-key"); err != nil {
		t.Fatalf("valid key rejected: %v", err)
	}
	if err := VerifyAPIKey(hash, "wrong"); !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("wrong key err = %v", err)
	}
	if err := VerifyAPIKey("", "s3cret-admin-key"); !errors.Is(err, ErrInvalidAPIKey) {
		t.Fatalf("unset hash err = %v", err)
	}
}
