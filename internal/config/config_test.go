package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadConfigDefaultsAndFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: file-secret
exam:
  passing_score: 85
  max_attempts: 2
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Exam.PassingScore != 85 || cfg.Exam.MaxAttempts != 2 {
		t.Fatalf("exam config = %d/%d, want 85/2", cfg.Exam.PassingScore, cfg.Exam.MaxAttempts)
	}
	if cfg.Server.Port != "8080" {
		t.Fatalf("default port = %q, want 8080", cfg.Server.Port)
	}
	if cfg.Certificate.Prefix != "NSBS" {
		t.Fatalf("default certificate prefix = %q", cfg.Certificate.Prefix)
	}
	if cfg.Exam.MaxTimeSpent != MaxTimeSpentCeiling {
		t.Fatalf("default max time spent = %d", cfg.Exam.MaxTimeSpent)
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
auth:
  jwt_secret: file-secret
exam:
  passing_score: 85
`)
	t.Setenv("EXAM_PASSING_SCORE", "70")
	t.Setenv("AUTH_JWT_SECRET", "env-secret")
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Exam.PassingScore != 70 {
		t.Fatalf("passing score = %d, want 70", cfg.Exam.PassingScore)
	}
	if cfg.Auth.JWTSecret != "env-secret" {
		t.Fatalf("jwt secret = %q, want env-secret", cfg.Auth.JWTSecret)
	}
	if cfg.RateLimit.Enabled {
		t.Fatalf("rate limit should be disabled by env")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing secret", "exam:\n  passing_score: 80\n"},
		{"passing score above 100", "auth:\n  jwt_secret: s\nexam:\n  passing_score: 101\n"},
		{"zero max attempts", "auth:\n  jwt_secret: s\nexam:\n  max_attempts: 0\n"},
		{"bad duration", "auth:\n  jwt_secret: s\nexam:\n  duration: soon\n"},
		{"resend without key", "auth:\n  jwt_secret: s\nemail:\n  provider: resend\n"},
		{"redis without addr", "auth:\n  jwt_secret: s\nrate_limit:\n  store: redis\n"},
		{"max time spent too large", "auth:\n  jwt_secret: s\nexam:\n  max_time_spent: 90000\n"},
		{"certificate prefix with separator", "auth:\n  jwt_secret: s\ncertificate:\n  prefix: NS-BS\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := LoadConfig(writeConfig(t, tt.body)); err == nil {
				t.Fatalf("expected validation error")
			}
		})
	}
}

func TestLoadConfigUpperCasesCertificatePrefix(t *testing.T) {
	path := writeConfig(t, "auth:\n  jwt_secret: s\ncertificate:\n  prefix: \" acme \"\n")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Certificate.Prefix != "ACME" {
		t.Fatalf("certificate prefix = %q, want ACME", cfg.Certificate.Prefix)
	}
}

func TestAllowedOriginList(t *testing.T) {
	cfg := &Config{}
	cfg.Server.SiteURL = "https://academy.example.com/"
	cfg.Server.AllowedOrigins = " https://www.example.com , ,https://admin.example.com/"

	got := cfg.AllowedOriginList()
	want := []string{"https://academy.example.com", "https://www.example.com", "https://admin.example.com"}
	if len(got) != len(want) {
		t.Fatalf("origins = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("origins[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
