package mail

import (
	"context"
	"time"

	"github.com/mailgun/mailgun-go/v4"
)

const sendTimeout = 10 * time.Second

type Mailgun struct {
	from string
	mg   *mailgun.MailgunImpl
}

func NewMailgun(domain, apiKey, apiBase, from string) *Mailgun {
	mg := mailgun.NewMailgun(domain, apiKey)
	if apiBase != "" {
		mg.SetAPIBase(apiBase)
	}
	return &Mailgun{from: from, mg: mg}
}

func (m *Mailgun) SendMfaOtp(ctx context.Context, to, code string, expiresAt time.Time) error {
	return m.send(ctx, mfaOtpEmail(m.from, to, code, expiresAt))
}

func (m *Mailgun) SendPasswordReset(ctx context.Context, to, link string, expiresAt time.Time) error {
	return m.send(ctx, passwordResetEmail(m.from, to, link, expiresAt))
}

func (m *Mailgun) send(ctx context.Context, e *Email) error {
	message := m.mg.NewMessage(e.From, e.Subject, e.Body, e.To...)

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, _, err := m.mg.Send(ctx, message)
	return err
}
