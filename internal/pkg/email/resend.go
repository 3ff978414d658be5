package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ResendMailer sends mail through the Resend API
type ResendMailer struct {
	client *resend.Client
	from   string
	logger zerolog.Logger
}

// NewResendMailer creates a new ResendMailer
func NewResendMailer(apiKey, from string, logger zerolog.Logger) *ResendMailer {
	return &ResendMailer{
		client: resend.NewClient(apiKey),
		from:   from,
		logger: logger,
	}
}

// Send delivers the message
func (m *ResendMailer) Send(ctx context.Context, msg Message) error {
	resp, err := m.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    m.from,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return fmt.Errorf("resend: failed to send email: %w", err)
	}
	m.logger.Debug().Str("messageID", resp.Id).Str("to", msg.To).Msg("Email accepted by Resend")
	return nil
}
