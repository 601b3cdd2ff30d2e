package impl

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"math/big"
	"time"

	"hrms/internal/domain"
	"hrms/internal/observability/metrics"
	"hrms/internal/service"
)

const (
	ResetTokenTTL   = 30 * time.Minute
	resetTokenBytes = 32
	otpDigits       = 6
)

type CredentialPolicy struct {
	MaxLoginAttempts int
	LockDuration     time.Duration
	// PasswordExpiry of zero means passwords never expire.
	PasswordExpiry time.Duration
	MfaOtpTTL      time.Duration
}

type userSaver interface {
	Save(ctx context.Context, usr *domain.User) error
}

type CredentialServiceImpl struct {
	users     userSaver
	passwords service.PasswordService
	policy    CredentialPolicy
	now       func() time.Time
}

func NewCredentialService(users userSaver, passwords service.PasswordService, policy CredentialPolicy) *CredentialServiceImpl {
	return &CredentialServiceImpl{
		users:     users,
		passwords: passwords,
		policy:    policy,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock replaces the time source.
func (c *CredentialServiceImpl) WithClock(now func() time.Time) *CredentialServiceImpl {
	c.now = now
	return c
}

func (c *CredentialServiceImpl) VerifyPassword(user *domain.User, plaintext string) bool {
	return c.passwords.Verify(user.PasswordHash, plaintext)
}

// SetPassword re-hashes plaintext and restarts the password validity window. It does
// not persist.
func (c *CredentialServiceImpl) SetPassword(user *domain.User, plaintext string) error {
	h, err := c.passwords.Hash(plaintext)
	if err != nil {
		return err
	}
	now := c.now()
	user.PasswordHash = h
	user.PasswordChangedAt = now
	user.PasswordExpiryDate = nil
	if c.policy.PasswordExpiry > 0 {
		exp := now.Add(c.policy.PasswordExpiry)
		user.PasswordExpiryDate = &exp
	}
	return nil
}

func (c *CredentialServiceImpl) IsPasswordExpired(user *domain.User) bool {
	return user.PasswordExpiryDate != nil && c.now().After(*user.PasswordExpiryDate)
}

func (c *CredentialServiceImpl) RecordFailedLogin(ctx context.Context, user *domain.User) error {
	user.FailedLoginAttempts++
	if user.FailedLoginAttempts >= c.policy.MaxLoginAttempts {
		until := c.now().Add(c.policy.LockDuration)
		if !user.IsLocked {
			metrics.AccountLockoutsTotal.Inc()
		}
		user.IsLocked = true
		user.LockedUntil = &until
	}
	return c.persist(ctx, user)
}

func (c *CredentialServiceImpl) ResetFailedLogins(ctx context.Context, user *domain.User) error {
	user.ClearLock()
	return c.persist(ctx, user)
}

// IsAccountLocked unlocks lazily: a lock whose expiry has passed is cleared and
// persisted here, never by a background job.
func (c *CredentialServiceImpl) IsAccountLocked(ctx context.Context, user *domain.User) (bool, error) {
	if !user.IsLocked {
		return false, nil
	}
	if user.LockedUntil != nil && c.now().After(*user.LockedUntil) {
		user.ClearLock()
		if err := c.persist(ctx, user); err != nil {
			return false, err
		}
		return false, nil
	}
	return true, nil
}

func (c *CredentialServiceImpl) GenerateMfaOtp(ctx context.Context, user *domain.User) (string, error) {
	code, err := randomDigits(otpDigits)
	if err != nil {
		return "", err
	}
	exp := c.now().Add(c.policy.MfaOtpTTL)
	user.MfaOtp = &code
	user.MfaOtpExpiry = &exp
	if err := c.persist(ctx, user); err != nil {
		return "", err
	}
	return code, nil
}

// VerifyMfaOtp increments the failed counter on a mismatch but never locks the
// account; only RecordFailedLogin does.
func (c *CredentialServiceImpl) VerifyMfaOtp(ctx context.Context, user *domain.User, code string) (bool, error) {
	if user.MfaOtp == nil || user.MfaOtpExpiry == nil {
		return false, nil
	}
	if subtle.ConstantTimeCompare([]byte(*user.MfaOtp), []byte(code)) != 1 {
		user.FailedLoginAttempts++
		return false, c.persist(ctx, user)
	}
	if c.now().After(*user.MfaOtpExpiry) {
		user.ClearMfaOtp()
		return false, c.persist(ctx, user)
	}
	user.ClearMfaOtp()
	user.FailedLoginAttempts = 0
	if err := c.persist(ctx, user); err != nil {
		return false, err
	}
	return true, nil
}

// GenerateResetToken stores only the SHA-256 of the returned token.
func (c *CredentialServiceImpl) GenerateResetToken(ctx context.Context, user *domain.User) (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	hashed := HashResetToken(token)
	exp := c.now().Add(ResetTokenTTL)
	user.ResetPasswordToken = &hashed
	user.ResetPasswordExpiry = &exp
	if err := c.persist(ctx, user); err != nil {
		return "", err
	}
	return token, nil
}

func HashResetToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

func (c *CredentialServiceImpl) persist(ctx context.Context, user *domain.User) error {
	if err := c.users.Save(ctx, user); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func randomDigits(n int) (string, error) {
	lo := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(n-1)), nil)
	span := new(big.Int).Sub(new(big.Int).Mul(lo, big.NewInt(10)), lo)
	v, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", err
	}
	return v.Add(v, lo).String(), nil
}

var _ service.CredentialService = (*CredentialServiceImpl)(nil)
