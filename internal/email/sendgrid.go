// Package email sends transactional notification emails through SendGrid.
package email

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// Mailer delivers a single notification email. Implementations must be safe
// for concurrent use by the notification worker.
type Mailer interface {
	Send(toEmail, toName, subject, body string) error
}

// SendGridMailer is the production Mailer.
type SendGridMailer struct {
	client     *sendgrid.Client
	from       *sgmail.Email
	subjPrefix string
	log        zerolog.Logger
}

// NewSendGridMailer creates a Mailer using the given API key. The app name
// becomes both the sender display name and a subject prefix.
func NewSendGridMailer(key, appName, fromEmail string, log zerolog.Logger) *SendGridMailer {
	return &SendGridMailer{
		client:     sendgrid.NewSendClient(key),
		from:       sgmail.NewEmail(appName, fromEmail),
		subjPrefix: "[" + appName + "] ",
		log:        log.With().Str("component", "sendgrid_mailer").Logger(),
	}
}

// Send delivers one plain-text email.
func (m *SendGridMailer) Send(toEmail, toName, subject, body string) error {
	to := sgmail.NewEmail(toName, toEmail)
	msg := sgmail.NewSingleEmail(m.from, m.subjPrefix+subject, to, body, "")

	resp, err := m.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid send: %w", err)
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("sendgrid send: status %d: %s", resp.StatusCode, resp.Body)
	}

	m.log.Debug().Str("to", toEmail).Str("subject", subject).Msg("Email sent")
	return nil
}

// NopMailer drops all emails. Used when no SendGrid key is configured so
// notifications stay in-app only.
type NopMailer struct{}

func (NopMailer) Send(toEmail, toName, subject, body string) error { return nil }
