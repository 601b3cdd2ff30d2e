package service

import (
	"context"
	"time"
)

type EmailService interface {
	SendMfaOtp(ctx context.Context, to, code string, expiresAt time.Time) error
	SendPasswordReset(ctx context.Context, to, link string, expiresAt time.Time) error
}
