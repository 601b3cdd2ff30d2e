package service

import (
	"context"

	"hrms/internal/domain"
)

// CredentialService owns the security state of a credential record: password
// verification, lockout, the emailed one-time code and the reset token.
// Methods taking a context persist the record they mutate.
type CredentialService interface {
	VerifyPassword(user *domain.User, plaintext string) bool
	SetPassword(user *domain.User, plaintext string) error
	IsPasswordExpired(user *domain.User) bool

	RecordFailedLogin(ctx context.Context, user *domain.User) error
	ResetFailedLogins(ctx context.Context, user *domain.User) error
	IsAccountLocked(ctx context.Context, user *domain.User) (bool, error)

	GenerateMfaOtp(ctx context.Context, user *domain.User) (string, error)
	VerifyMfaOtp(ctx context.Context, user *domain.User, code string) (bool, error)

	GenerateResetToken(ctx context.Context, user *domain.User) (string, error)
}
