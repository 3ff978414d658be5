package email

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
)

// Message is a single outbound HTML email
type Message struct {
	To      string
	Subject string
	HTML    string
}

// Mailer delivers transactional email
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// Config selects and configures the mail transport
type Config struct {
	Provider     string // log, smtp or resend
	FromName     string
	FromEmail    string
	ResendAPIKey string
	SMTP         SMTPConfig
}

// From returns the RFC 5322 sender address
func (c Config) From() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return fmt.Sprintf("%s <%s>", c.FromName, c.FromEmail)
}

// NewMailer builds the transport named by cfg.Provider
func NewMailer(cfg Config, logger zerolog.Logger) (Mailer, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "log":
		return NewLogMailer(logger), nil
	case "smtp":
		smtpCfg := cfg.SMTP
		smtpCfg.From = cfg.From()
		smtpCfg.FromEmail = cfg.FromEmail
		return NewSMTPMailer(smtpCfg, logger), nil
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend API key is required")
		}
		return NewResendMailer(cfg.ResendAPIKey, cfg.From(), logger), nil
	default:
		return nil, fmt.Errorf("unknown email provider %q", cfg.Provider)
	}
}

// LogMailer writes messages to the log instead of delivering them. Used in development.
type LogMailer struct {
	logger zerolog.Logger
}

// NewLogMailer creates a new LogMailer
func NewLogMailer(logger zerolog.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

// Send logs the message
func (m *LogMailer) Send(_ context.Context, msg Message) error {
	m.logger.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Int("htmlBytes", len(msg.HTML)).
		Msg("Email transport not configured - message logged instead of sent")
	return nil
}
