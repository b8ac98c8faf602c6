package notify

import (
	"context"
	"fmt"

	"github.com/resend/resend-go/v2"

	"github.com/smartspend/smartspend/internal/domain"
)

// EmailSink delivers notifications over Resend.
type EmailSink struct {
	client *resend.Client
	from   string
}

// NewEmailSink builds an email sink sending from the given address.
func NewEmailSink(apiKey, from string) *EmailSink {
	return &EmailSink{client: resend.NewClient(apiKey), from: from}
}

func (e *EmailSink) Name() string { return "email" }

// Send emails the message to the user's address.
func (e *EmailSink) Send(ctx context.Context, user *domain.User, msg Message) error {
	if user.Email == "" {
		return fmt.Errorf("user %s has no email address", user.ID)
	}
	_, err := e.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    e.from,
		To:      []string{user.Email},
		Subject: msg.Subject,
		Text:    msg.Text,
	})
	if err != nil {
		return fmt.Errorf("sending email: %w", err)
	}
	return nil
}
