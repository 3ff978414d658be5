package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// MaxTimeSpentCeiling is the largest client-reported exam duration ever accepted (one day).
const MaxTimeSpentCeiling = 86400

// Config structure represents the application configuration
type Config struct {
	Server struct {
		Port           string `yaml:"port" env:"SERVER_PORT"`
		Mode           string `yaml:"mode" env:"SERVER_MODE"`
		SiteURL        string `yaml:"site_url" env:"SITE_URL"`
		AllowedOrigins string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS"`
		TrustedProxies string `yaml:"trusted_proxies" env:"TRUSTED_PROXIES"`
	} `yaml:"server"`

	Database struct {
		Host            string `yaml:"host" env:"DB_HOST"`
		Port            string `yaml:"port" env:"DB_PORT"`
		User            string `yaml:"user" env:"DB_USER"`
		Password        string `yaml:"password" env:"DB_PASSWORD"`
		DBName          string `yaml:"dbname" env:"DB_NAME"`
		SSLMode         string `yaml:"sslmode" env:"DB_SSLMODE"`
		MaxIdleConns    int    `yaml:"max_idle_conns" env:"DB_MAX_IDLE_CONNS"`
		MaxOpenConns    int    `yaml:"max_open_conns" env:"DB_MAX_OPEN_CONNS"`
		ConnMaxLifetime string `yaml:"conn_max_lifetime" env:"DB_CONN_MAX_LIFETIME"`
		MigrationsDir   string `yaml:"migrations_dir" env:"DB_MIGRATIONS_DIR"`
	} `yaml:"database"`

	Auth struct {
		JWTSecret    string `yaml:"jwt_secret" env:"AUTH_JWT_SECRET"`
		Issuer       string `yaml:"issuer" env:"AUTH_ISSUER"`
		Audience     string `yaml:"audience" env:"AUTH_AUDIENCE"`
		CookieName   string `yaml:"cookie_name" env:"AUTH_COOKIE_NAME"`
		AdminKeyHash string `yaml:"admin_key_hash" env:"ADMIN_KEY_HASH"`
	} `yaml:"auth"`

	Exam struct {
		PassingScore    int    `yaml:"passing_score" env:"EXAM_PASSING_SCORE"`
		MaxAttempts     int    `yaml:"max_attempts" env:"EXAM_MAX_ATTEMPTS"`
		Duration        string `yaml:"duration" env:"EXAM_DURATION"`
		SubmissionGrace string `yaml:"submission_grace" env:"EXAM_SUBMISSION_GRACE"`
		MaxTimeSpent    int    `yaml:"max_time_spent" env:"EXAM_MAX_TIME_SPENT"`
		CoursesFile     string `yaml:"courses_file" env:"EXAM_COURSES_FILE"`
	} `yaml:"exam"`

	Certificate struct {
		Prefix        string `yaml:"prefix" env:"CERTIFICATE_PREFIX"`
		VerifyBaseURL string `yaml:"verify_base_url" env:"CERTIFICATE_VERIFY_BASE_URL"`
	} `yaml:"certificate"`

	Email struct {
		Provider     string `yaml:"provider" env:"EMAIL_PROVIDER"`
		FromName     string `yaml:"from_name" env:"EMAIL_FROM_NAME"`
		FromEmail    string `yaml:"from_email" env:"EMAIL_FROM"`
		ResendAPIKey string `yaml:"resend_api_key" env:"RESEND_API_KEY"`
		SMTPHost     string `yaml:"smtp_host" env:"SMTP_HOST"`
		SMTPPort     int    `yaml:"smtp_port" env:"SMTP_PORT"`
		SMTPUsername string `yaml:"smtp_username" env:"SMTP_USERNAME"`
		SMTPPassword string `yaml:"smtp_password" env:"SMTP_PASSWORD"`
		SendTimeout  string `yaml:"send_timeout" env:"EMAIL_SEND_TIMEOUT"`
	} `yaml:"email"`

	RateLimit struct {
		Enabled   bool   `yaml:"enabled" env:"RATE_LIMIT_ENABLED"`
		Store     string `yaml:"store" env:"RATE_LIMIT_STORE"`
		RedisAddr string `yaml:"redis_addr" env:"RATE_LIMIT_REDIS_ADDR"`
		Requests  int    `yaml:"requests" env:"RATE_LIMIT_REQUESTS"`
		Window    string `yaml:"window" env:"RATE_LIMIT_WINDOW"`
	} `yaml:"rate_limit"`

	Logging struct {
		Level      string `yaml:"level" env:"LOG_LEVEL"`
		Format     string `yaml:"format" env:"LOG_FORMAT"`
		File       string `yaml:"file" env:"LOG_FILE"`
		MaxSizeMB  int    `yaml:"max_size_mb" env:"LOG_MAX_SIZE_MB"`
		MaxBackups int    `yaml:"max_backups" env:"LOG_MAX_BACKUPS"`
		MaxAgeDays int    `yaml:"max_age_days" env:"LOG_MAX_AGE_DAYS"`
	} `yaml:"logging"`
}

// LoadConfig loads configuration from a file and environment variables
func LoadConfig(configPath string) (*Config, error) {
	config := &Config{}
	setDefaults(config)

	if _, err := os.Stat(configPath); err == nil {
		file, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(file, config); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	if err := processStructFields(config); err != nil {
		return nil, fmt.Errorf("failed to load from environment: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults sets default values for the configuration
func setDefaults(config *Config) {
	config.Server.Port = "8080"
	config.Server.Mode = "development"
	config.Server.SiteURL = "http://localhost:3000"

	config.Database.Host = "localhost"
	config.Database.Port = "5432"
	config.Database.User = "postgres"
	config.Database.Password = "postgres"
	config.Database.DBName = "certify"
	config.Database.SSLMode = "disable"
	config.Database.MaxIdleConns = 2
	config.Database.MaxOpenConns = 20
	config.Database.ConnMaxLifetime = "1h"
	config.Database.MigrationsDir = "migrations"

	config.Auth.Audience = "authenticated"
	config.Auth.CookieName = "sb-access-token"

	// Deployments have run with 80/3 and 85/2; both are configuration, never literals in the flow.
	config.Exam.PassingScore = 80
	config.Exam.MaxAttempts = 3
	config.Exam.Duration = "90m"
	config.Exam.SubmissionGrace = "2m"
	config.Exam.MaxTimeSpent = MaxTimeSpentCeiling
	config.Exam.CoursesFile = "configs/courses.yaml"

	config.Certificate.Prefix = "NSBS"

	config.Email.Provider = "log"
	config.Email.FromName = "NSBS Certification"
	config.Email.SMTPPort = 587
	config.Email.SendTimeout = "15s"

	config.RateLimit.Enabled = true
	config.RateLimit.Store = "memory"
	config.RateLimit.Requests = 30
	config.RateLimit.Window = "1m"

	config.Logging.Level = "info"
	config.Logging.Format = "json"
	config.Logging.MaxSizeMB = 50
	config.Logging.MaxBackups = 5
	config.Logging.MaxAgeDays = 30
}

// validateConfig ensures that the configuration is valid
func validateConfig(config *Config) error {
	if config.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if config.Auth.JWTSecret == "" {
		return fmt.Errorf("JWT secret is required")
	}

	if config.Exam.PassingScore < 0 || config.Exam.PassingScore > 100 {
		return fmt.Errorf("exam passing score must be between 0 and 100, got %d", config.Exam.PassingScore)
	}

	if config.Exam.MaxAttempts < 1 {
		return fmt.Errorf("exam max attempts must be at least 1, got %d", config.Exam.MaxAttempts)
	}

	if config.Exam.MaxTimeSpent < 0 || config.Exam.MaxTimeSpent > MaxTimeSpentCeiling {
		return fmt.Errorf("exam max time spent must be between 0 and %d seconds", MaxTimeSpentCeiling)
	}

	for name, value := range map[string]string{
		"exam duration":         config.Exam.Duration,
		"exam submission grace": config.Exam.SubmissionGrace,
		"email send timeout":    config.Email.SendTimeout,
		"rate limit window":     config.RateLimit.Window,
	} {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid %s format: %w", name, err)
		}
	}

	switch strings.ToLower(config.Email.Provider) {
	case "log", "smtp":
	case "resend":
		if config.Email.ResendAPIKey == "" {
			return fmt.Errorf("resend API key is required when email provider is resend")
		}
	default:
		return fmt.Errorf("unknown email provider %q", config.Email.Provider)
	}

	switch strings.ToLower(config.RateLimit.Store) {
	case "memory":
	case "redis":
		if config.RateLimit.RedisAddr == "" {
			return fmt.Errorf("redis address is required when rate limit store is redis")
		}
	default:
		return fmt.Errorf("unknown rate limit store %q", config.RateLimit.Store)
	}

	// Verification upper-cases identifiers, so issued numbers must be upper case too
	config.Certificate.Prefix = strings.ToUpper(strings.TrimSpace(config.Certificate.Prefix))
	if config.Certificate.Prefix == "" {
		return fmt.Errorf("certificate prefix is required")
	}
	for _, r := range config.Certificate.Prefix {
		if (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return fmt.Errorf("certificate prefix must be letters and digits only, got %q", config.Certificate.Prefix)
		}
	}

	return nil
}

// GetPostgresConnectionString returns postgres connection string
func (c *Config) GetPostgresConnectionString() string {
	sslMode := c.Database.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
		sslMode,
	)
}

// AllowedOriginList returns the origins accepted for state-changing requests.
// The site URL is always included.
func (c *Config) AllowedOriginList() []string {
	origins := []string{strings.TrimRight(c.Server.SiteURL, "/")}
	for _, o := range strings.Split(c.Server.AllowedOrigins, ",") {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}

// TrustedProxyList returns the configured trusted proxy CIDRs/IPs.
func (c *Config) TrustedProxyList() []string {
	var proxies []string
	for _, p := range strings.Split(c.Server.TrustedProxies, ",") {
		if p = strings.TrimSpace(p); p != "" {
			proxies = append(proxies, p)
		}
	}
	return proxies
}
