package email

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v3"

	"github.com/dtroode/sessionkeeper/internal/model"
)

var _ model.EmailSender = (*ResendSender)(nil)

// ResendSender delivers confirmation and recovery codes through the Resend
// API.
type ResendSender struct {
	client *resend.Client
	from   string
}

// NewResendSender creates a sender using the given API key and verified
// sender address.
func NewResendSender(apiKey, from string) *ResendSender {
	return &ResendSender{
		client: resend.NewClient(apiKey),
		from:   from,
	}
}

func (s *ResendSender) SendConfirmationCode(ctx context.Context, email, code string) error {
	return s.send(ctx, email, "Confirm your registration",
		fmt.Sprintf("<p>Your confirmation code is <b>%s</b>. It expires shortly, so use it right away.</p>", code))
}

func (s *ResendSender) SendRecoveryCode(ctx context.Context, email, code string) error {
	return s.send(ctx, email, "Password recovery",
		fmt.Sprintf("<p>Your password recovery code is <b>%s</b>. If you did not request a password change, ignore this message.</p>", code))
}

func (s *ResendSender) send(ctx context.Context, to, subject, html string) error {
	params := &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{to},
		Subject: subject,
		Html:    html,
	}

	if _, err := s.client.Emails.SendWithContext(ctx, params); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}
