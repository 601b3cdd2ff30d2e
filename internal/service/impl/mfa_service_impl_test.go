package impl

import (
	"strings"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"

	"hrms/internal/domain"
)

func TestProvisionAndVerifyTOTP(t *testing.T) {
	now := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	m := NewMFAServiceTOTP("HRMS").WithClock(func() time.Time { return now })
	u := &domain.User{Email: "alice@example.com"}

	setup, err := m.ProvisionTOTP(u)
	require.NoError(t, err)
	require.True(t, u.TwoFactorEnabled)
	require.NotNil(t, u.TwoFactorSecret)
	require.Equal(t, setup.Secret, *u.TwoFactorSecret)
	require.True(t, strings.HasPrefix(setup.OtpAuthURL, "otpauth://totp/"))

	code, err := totp.GenerateCode(setup.Secret, now)
	require.NoError(t, err)
	require.True(t, m.VerifyTOTP(u, code))

	stale, err := totp.GenerateCode(setup.Secret, now.Add(-10*time.Minute))
	require.NoError(t, err)
	if stale != code {
		require.False(t, m.VerifyTOTP(u, stale))
	}
	require.False(t, m.VerifyTOTP(u, ""))
}

func TestVerifyTOTPWithoutSecret(t *testing.T) {
	m := NewMFAServiceTOTP("HRMS")
	require.False(t, m.VerifyTOTP(&domain.User{}, "123456"))
}
