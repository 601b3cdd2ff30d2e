package mail

import (
	"context"
	"log/slog"
	"time"
)

// LogMailer stands in for a mail provider in development. Codes are logged at debug
// level only.
type LogMailer struct {
	from   string
	logger *slog.Logger
}

func NewLogMailer(from string, logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{from: from, logger: logger}
}

func (l *LogMailer) SendMfaOtp(ctx context.Context, to, code string, expiresAt time.Time) error {
	e := mfaOtpEmail(l.from, to, code, expiresAt)
	l.logger.InfoContext(ctx, "email not sent, no provider configured", "to", to, "subject", e.Subject)
	l.logger.DebugContext(ctx, "mfa code", "to", to, "code", code, "expires_at", expiresAt)
	return nil
}

func (l *LogMailer) SendPasswordReset(ctx context.Context, to, link string, expiresAt time.Time) error {
	e := passwordResetEmail(l.from, to, link, expiresAt)
	l.logger.InfoContext(ctx, "email not sent, no provider configured", "to", to, "subject", e.Subject)
	l.logger.DebugContext(ctx, "reset link", "to", to, "link", link, "expires_at", expiresAt)
	return nil
}
