package impl

import (
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"

	"hrms/internal/domain"
	"hrms/internal/dto"
)

var totpOpts = totp.ValidateOpts{
	Period:    30,
	Skew:      1,
	Digits:    otp.DigitsSix,
	Algorithm: otp.AlgorithmSHA1,
}

type MFAServiceImpl struct {
	issuer string
	now    func() time.Time
}

func NewMFAServiceTOTP(issuer string) *MFAServiceImpl {
	return &MFAServiceImpl{issuer: issuer, now: time.Now}
}

func (m *MFAServiceImpl) WithClock(now func() time.Time) *MFAServiceImpl {
	m.now = now
	return m
}

// ProvisionTOTP generates a fresh secret and turns two-factor on for user.
func (m *MFAServiceImpl) ProvisionTOTP(user *domain.User) (*dto.MFASetupResponse, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      m.issuer,
		AccountName: user.Email,
		Period:      uint(totpOpts.Period),
		Digits:      totpOpts.Digits,
		Algorithm:   totpOpts.Algorithm,
	})
	if err != nil {
		return nil, err
	}
	secret := key.Secret()
	user.TwoFactorSecret = &secret
	user.TwoFactorEnabled = true
	return &dto.MFASetupResponse{Secret: secret, OtpAuthURL: key.URL()}, nil
}

func (m *MFAServiceImpl) VerifyTOTP(user *domain.User, code string) bool {
	if user.TwoFactorSecret == nil || *user.TwoFactorSecret == "" || code == "" {
		return false
	}
	ok, err := totp.ValidateCustom(code, *user.TwoFactorSecret, m.now().UTC(), totpOpts)
	return err == nil && ok
}
