package impl

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"hrms/internal/apperr"
	"hrms/internal/domain"
	"hrms/internal/dto"
	"hrms/internal/events"
	"hrms/internal/netutil"
	"hrms/internal/observability/metrics"
	"hrms/internal/observability/middleware"
	"hrms/internal/service"
	"hrms/internal/store"
)

type AuthConfig struct {
	FrontendURL string
	// ExposeResetToken echoes the plaintext reset token in the forgot-password
	// response. Never set in production.
	ExposeResetToken bool
	Policy           PasswordPolicy
}

type AuthServiceImpl struct {
	Store       dataStore
	Credentials service.CredentialService
	Tokens      service.TokenService
	MFA         service.MFAService
	Email       service.EmailService
	cfg         AuthConfig
	now         func() time.Time
}

func NewAuthServiceImpl(
	st *store.Store,
	creds service.CredentialService,
	tokens service.TokenService,
	mfa service.MFAService,
	email service.EmailService,
	cfg AuthConfig,
) *AuthServiceImpl {
	return &AuthServiceImpl{
		Store:       gormStoreAdapter{store: st},
		Credentials: creds,
		Tokens:      tokens,
		MFA:         mfa,
		Email:       email,
		cfg:         cfg,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func (a *AuthServiceImpl) WithClock(now func() time.Time) *AuthServiceImpl {
	a.now = now
	return a
}

type dataStore interface {
	Users() userStore
	Employees() employeeStore
	Audit() auditStore
	WithTx(ctx context.Context, fn func(tx dataStore) error) error
}

type userStore interface {
	Create(ctx context.Context, usr *domain.User) error
	Save(ctx context.Context, usr *domain.User) error
	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByResetToken(ctx context.Context, tokenHash string, now time.Time) (*domain.User, error)
	ExistsByUsernameOrEmail(ctx context.Context, username, email string, exclude domain.UserID) (bool, error)
}

type employeeStore interface {
	FindByID(ctx context.Context, id domain.EmployeeID) (*domain.Employee, error)
	UpdatePhoneNumber(ctx context.Context, id domain.EmployeeID, phone string) error
}

type auditStore interface {
	Append(ctx context.Context, userID *domain.UserID, action string, metadata any, ip, ua string) error
}

type gormStoreAdapter struct {
	store *store.Store
}

func (g gormStoreAdapter) Users() userStore         { return g.store.Users() }
func (g gormStoreAdapter) Employees() employeeStore { return g.store.Employees() }
func (g gormStoreAdapter) Audit() auditStore        { return g.store.Audit() }

func (g gormStoreAdapter) WithTx(ctx context.Context, fn func(tx dataStore) error) error {
	if g.store == nil {
		return errors.New("nil store")
	}
	return g.store.WithTx(ctx, func(tx *store.Store) error {
		return fn(gormStoreAdapter{store: tx})
	})
}

// ====== Session ======

func (a *AuthServiceImpl) Login(ctx context.Context, r dto.LoginRequest, meta dto.RequestMeta) (*dto.LoginResponse, error) {
	result := "failure"
	defer func() { metrics.AuthLoginsTotal.WithLabelValues(result).Inc() }()

	r.Username = strings.TrimSpace(r.Username)
	if err := dto.Validate(&r); err != nil {
		return nil, err
	}

	user, err := a.Store.Users().FindByUsername(ctx, r.Username)
	if errors.Is(err, store.ErrRecordNotFound) {
		a.audit(ctx, nil, events.ActionLoginFailed, events.LoginAttempt{Username: r.Username, Reason: "unknown_user", At: a.now()}, meta)
		return nil, apperr.ErrInvalidCredentials
	}
	if err != nil {
		return nil, persistence(err)
	}
	if !user.IsActive {
		result = "disabled"
		return nil, apperr.ErrAccountDisabled
	}

	locked, err := a.Credentials.IsAccountLocked(ctx, user)
	if err != nil {
		return nil, err
	}
	if locked {
		result = "locked"
		return nil, apperr.ErrAccountLocked
	}

	if !a.Credentials.VerifyPassword(user, r.Password) {
		if err := a.Credentials.RecordFailedLogin(ctx, user); err != nil {
			return nil, err
		}
		a.audit(ctx, &user.ID, events.ActionLoginFailed, events.LoginAttempt{
			Username: user.Username, Reason: "bad_password", Attempts: user.FailedLoginAttempts, At: a.now(),
		}, meta)
		if user.IsLocked {
			a.audit(ctx, &user.ID, events.ActionAccountLocked, events.AccountLocked{
				UserID: user.ID.String(), Attempts: user.FailedLoginAttempts, LockedUntil: *user.LockedUntil,
			}, meta)
		}
		return nil, apperr.ErrInvalidCredentials
	}

	now := a.now()
	user.LastLoginAt = &now
	if err := a.Credentials.ResetFailedLogins(ctx, user); err != nil {
		return nil, err
	}

	if user.TwoFactorEnabled {
		code, err := a.Credentials.GenerateMfaOtp(ctx, user)
		if err != nil {
			return nil, err
		}
		delivered := a.deliver(ctx, "mfa_otp", func() error {
			return a.Email.SendMfaOtp(ctx, user.Email, code, *user.MfaOtpExpiry)
		})
		a.audit(ctx, &user.ID, events.ActionMFAChallengeIssued, events.MFAChallenge{
			UserID: user.ID.String(), Method: "email_otp", ExpiresAt: *user.MfaOtpExpiry, Delivered: delivered,
		}, meta)
		result = "mfa_required"
		return &dto.LoginResponse{RequiresMFA: true, Email: user.Email}, nil
	}

	tokens, err := a.Tokens.IssuePair(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	a.audit(ctx, &user.ID, events.ActionLoginSucceeded, events.LoginAttempt{Username: user.Username, At: now}, meta)
	a.log(ctx).Info("user logged in", "user_id", user.ID)
	result = "success"
	return &dto.LoginResponse{User: dto.NewUserView(user), TokenResponse: tokens}, nil
}

func (a *AuthServiceImpl) VerifyMFA(ctx context.Context, r dto.VerifyMFARequest, meta dto.RequestMeta) (*dto.LoginResponse, error) {
	result := "failure"
	defer func() { metrics.MFAVerificationsTotal.WithLabelValues("email_otp", result).Inc() }()

	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if err := dto.Validate(&r); err != nil {
		return nil, err
	}
	user, err := a.Store.Users().FindByEmail(ctx, r.Email)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, persistence(err)
	}
	if !user.IsActive {
		return nil, apperr.ErrAccountDisabled
	}

	ok, err := a.Credentials.VerifyMfaOtp(ctx, user, r.Otp)
	if err != nil {
		return nil, err
	}
	if !ok {
		a.audit(ctx, &user.ID, events.ActionMFAFailed, events.MFAResult{UserID: user.ID.String(), Method: "email_otp", At: a.now()}, meta)
		return nil, apperr.ErrInvalidOTP
	}

	tokens, err := a.Tokens.IssuePair(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	a.audit(ctx, &user.ID, events.ActionMFAVerified, events.MFAResult{UserID: user.ID.String(), Method: "email_otp", At: a.now()}, meta)
	result = "success"
	return &dto.LoginResponse{User: dto.NewUserView(user), TokenResponse: tokens}, nil
}

// Logout is an acknowledgement only; issued tokens stay valid until they expire.
func (a *AuthServiceImpl) Logout(ctx context.Context, userID domain.UserID, meta dto.RequestMeta) error {
	a.audit(ctx, &userID, events.ActionLogout, events.SessionEnded{UserID: userID.String(), At: a.now()}, meta)
	a.log(ctx).Info("user logged out", "user_id", userID)
	return nil
}

// ====== Accounts ======

func (a *AuthServiceImpl) Register(ctx context.Context, r dto.RegisterRequest, meta dto.RequestMeta) (*dto.UserView, error) {
	result := "failure"
	defer func() { metrics.AuthRegistrationsTotal.WithLabelValues(result).Inc() }()

	user, err := a.createUser(ctx, r, domain.RoleEmployee)
	if err != nil {
		if errors.Is(err, apperr.ErrUserExists) {
			result = "duplicate"
		}
		return nil, err
	}
	a.audit(ctx, &user.ID, events.ActionUserRegistered, events.UserRegistered{
		UserID:       user.ID.String(),
		Username:     user.Username,
		Email:        user.Email,
		Roles:        user.Roles,
		RegisteredBy: meta.ActorID,
		At:           user.CreatedAt,
	}, meta)
	a.log(ctx).Info("user registered", "user_id", user.ID, "registered_by", meta.ActorID)
	result = "success"
	return dto.NewUserView(user), nil
}

func (a *AuthServiceImpl) Bootstrap(ctx context.Context, r dto.RegisterRequest) (bool, error) {
	exists, err := a.Store.Users().ExistsByUsernameOrEmail(ctx, r.Username, r.Email, uuid.Nil)
	if err != nil {
		return false, persistence(err)
	}
	if exists {
		return false, nil
	}
	user, err := a.createUser(ctx, r, domain.RoleAdmin)
	if err != nil {
		return false, err
	}
	a.audit(ctx, &user.ID, events.ActionUserRegistered, events.UserRegistered{
		UserID: user.ID.String(), Username: user.Username, Email: user.Email, Roles: user.Roles,
		RegisteredBy: "bootstrap", At: user.CreatedAt,
	}, dto.RequestMeta{})
	return true, nil
}

func (a *AuthServiceImpl) createUser(ctx context.Context, r dto.RegisterRequest, defaultRole string) (*domain.User, error) {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	if err := dto.Validate(&r); err != nil {
		return nil, err
	}
	if err := a.cfg.Policy.Check("password", r.Password); err != nil {
		return nil, err
	}

	roles := domain.NewRoles(r.Roles...)
	if len(roles) == 0 {
		roles = domain.NewRoles(defaultRole)
	}
	user := &domain.User{
		ID:       uuid.New(),
		Username: r.Username,
		Email:    r.Email,
		Roles:    roles,
		IsActive: true,
	}
	if err := a.Credentials.SetPassword(user, r.Password); err != nil {
		return nil, apperr.Internal(err)
	}

	err := a.Store.WithTx(ctx, func(tx dataStore) error {
		exists, err := tx.Users().ExistsByUsernameOrEmail(ctx, user.Username, user.Email, uuid.Nil)
		if err != nil {
			return persistence(err)
		}
		if exists {
			return apperr.ErrUserExists
		}
		if r.EmployeeID != nil {
			eid := uuid.MustParse(*r.EmployeeID)
			emp, err := tx.Employees().FindByID(ctx, eid)
			if errors.Is(err, store.ErrRecordNotFound) {
				return apperr.Validation(apperr.FieldError{Field: "employeeId", Message: "Employee not found"})
			}
			if err != nil {
				return persistence(err)
			}
			user.EmployeeID = &emp.ID
			user.Employee = emp
		}
		if err := tx.Users().Create(ctx, user); err != nil {
			if errors.Is(err, store.ErrDuplicate) {
				return apperr.ErrUserExists
			}
			return persistence(err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (a *AuthServiceImpl) GetProfile(ctx context.Context, userID domain.UserID) (*dto.UserView, error) {
	user, err := a.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	return dto.NewUserView(user), nil
}

func (a *AuthServiceImpl) GetUser(ctx context.Context, userID domain.UserID) (*dto.UserView, error) {
	return a.GetProfile(ctx, userID)
}

func (a *AuthServiceImpl) UpdateProfile(ctx context.Context, userID domain.UserID, r dto.UpdateProfileRequest) (*dto.UserView, error) {
	if err := dto.Validate(&r); err != nil {
		return nil, err
	}
	user, err := a.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if r.PhoneNumber != nil && user.EmployeeID == nil {
		return nil, apperr.Validation(apperr.FieldError{Field: "phone_number", Message: "No employee profile is linked to this account"})
	}

	err = a.Store.WithTx(ctx, func(tx dataStore) error {
		if r.Email != nil {
			email := strings.ToLower(strings.TrimSpace(*r.Email))
			if email != user.Email {
				taken, err := tx.Users().ExistsByUsernameOrEmail(ctx, "", email, user.ID)
				if err != nil {
					return persistence(err)
				}
				if taken {
					return apperr.ErrUserExists.WithMessage("Email already in use")
				}
				user.Email = email
				if err := tx.Users().Save(ctx, user); err != nil {
					if errors.Is(err, store.ErrDuplicate) {
						return apperr.ErrUserExists.WithMessage("Email already in use")
					}
					return persistence(err)
				}
			}
		}
		if r.PhoneNumber != nil {
			if err := tx.Employees().UpdatePhoneNumber(ctx, *user.EmployeeID, strings.TrimSpace(*r.PhoneNumber)); err != nil {
				return persistence(err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return a.GetProfile(ctx, userID)
}

func (a *AuthServiceImpl) UnlockAccount(ctx context.Context, userID domain.UserID, meta dto.RequestMeta) (*dto.UserView, error) {
	user, err := a.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := a.Credentials.ResetFailedLogins(ctx, user); err != nil {
		return nil, err
	}
	a.audit(ctx, &user.ID, events.ActionAccountUnlocked, events.AccountUnlocked{
		UserID: user.ID.String(), UnlockedBy: meta.ActorID, At: a.now(),
	}, meta)
	return dto.NewUserView(user), nil
}

// ====== Passwords ======

func (a *AuthServiceImpl) ChangePassword(ctx context.Context, userID domain.UserID, r dto.ChangePasswordRequest, meta dto.RequestMeta) error {
	if err := dto.Validate(&r); err != nil {
		return err
	}
	user, err := a.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !a.Credentials.VerifyPassword(user, r.CurrentPassword) {
		return apperr.ErrInvalidPassword
	}
	if err := a.cfg.Policy.Check("newPassword", r.NewPassword); err != nil {
		return err
	}
	if err := a.Credentials.SetPassword(user, r.NewPassword); err != nil {
		return apperr.Internal(err)
	}
	if err := a.Store.Users().Save(ctx, user); err != nil {
		return persistence(err)
	}
	a.audit(ctx, &user.ID, events.ActionPasswordChanged, events.PasswordChanged{
		UserID: user.ID.String(), Via: "change", ExpiresAt: user.PasswordExpiryDate, At: user.PasswordChangedAt,
	}, meta)
	return nil
}

// ForgotPassword answers identically whether or not the email is known.
func (a *AuthServiceImpl) ForgotPassword(ctx context.Context, r dto.ForgotPasswordRequest, meta dto.RequestMeta) (*dto.ForgotPasswordResponse, error) {
	if err := dto.Validate(&r); err != nil {
		return nil, err
	}
	user, err := a.Store.Users().FindByEmail(ctx, strings.ToLower(strings.TrimSpace(r.Email)))
	if errors.Is(err, store.ErrRecordNotFound) {
		a.log(ctx).Info("password reset requested for unknown email")
		return &dto.ForgotPasswordResponse{}, nil
	}
	if err != nil {
		return nil, persistence(err)
	}

	token, err := a.Credentials.GenerateResetToken(ctx, user)
	if err != nil {
		return nil, err
	}
	link := a.resetLink(token)
	delivered := a.deliver(ctx, "password_reset", func() error {
		return a.Email.SendPasswordReset(ctx, user.Email, link, *user.ResetPasswordExpiry)
	})
	a.audit(ctx, &user.ID, events.ActionPasswordResetRequested, events.PasswordResetRequested{
		UserID: user.ID.String(), ExpiresAt: *user.ResetPasswordExpiry, Delivered: delivered,
	}, meta)

	out := &dto.ForgotPasswordResponse{}
	if a.cfg.ExposeResetToken {
		out.ResetToken = token
	}
	return out, nil
}

func (a *AuthServiceImpl) ResetPassword(ctx context.Context, r dto.ResetPasswordRequest, meta dto.RequestMeta) error {
	if err := dto.Validate(&r); err != nil {
		return err
	}
	if err := a.cfg.Policy.Check("password", r.Password); err != nil {
		return err
	}
	user, err := a.Store.Users().FindByResetToken(ctx, HashResetToken(r.Token), a.now())
	if errors.Is(err, store.ErrRecordNotFound) {
		return apperr.ErrInvalidResetToken
	}
	if err != nil {
		return persistence(err)
	}

	if err := a.Credentials.SetPassword(user, r.Password); err != nil {
		return apperr.Internal(err)
	}
	user.ClearResetToken()
	if err := a.Store.Users().Save(ctx, user); err != nil {
		return persistence(err)
	}
	a.audit(ctx, &user.ID, events.ActionPasswordReset, events.PasswordChanged{
		UserID: user.ID.String(), Via: "reset", ExpiresAt: user.PasswordExpiryDate, At: user.PasswordChangedAt,
	}, meta)
	return nil
}

// ====== Second factor ======

// EnableMFA issues a new authenticator secret. Replacing an enrolled secret
// needs a valid code from it as well as the password.
func (a *AuthServiceImpl) EnableMFA(ctx context.Context, userID domain.UserID, r dto.EnableMFARequest, meta dto.RequestMeta) (*dto.MFASetupResponse, error) {
	if err := dto.Validate(&r); err != nil {
		return nil, err
	}
	user, err := a.findUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !a.Credentials.VerifyPassword(user, r.Password) {
		return nil, apperr.ErrInvalidPassword
	}
	if user.TwoFactorEnabled && user.TwoFactorSecret != nil && *user.TwoFactorSecret != "" {
		if r.Code == "" {
			return nil, apperr.ErrMFARequired
		}
		if !a.MFA.VerifyTOTP(user, r.Code) {
			a.audit(ctx, &user.ID, events.ActionMFAFailed, events.MFAResult{UserID: user.ID.String(), Method: "totp", At: a.now()}, meta)
			return nil, apperr.ErrMFATokenInvalid
		}
	}
	setup, err := a.MFA.ProvisionTOTP(user)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	if err := a.Store.Users().Save(ctx, user); err != nil {
		return nil, persistence(err)
	}
	a.audit(ctx, &user.ID, events.ActionMFAEnabled, events.MFAResult{UserID: user.ID.String(), Method: "totp", At: a.now()}, meta)
	return setup, nil
}

func (a *AuthServiceImpl) DisableMFA(ctx context.Context, userID domain.UserID, r dto.DisableMFARequest, meta dto.RequestMeta) error {
	if err := dto.Validate(&r); err != nil {
		return err
	}
	user, err := a.findUser(ctx, userID)
	if err != nil {
		return err
	}
	if !a.Credentials.VerifyPassword(user, r.Password) {
		return apperr.ErrInvalidPassword
	}
	user.TwoFactorEnabled = false
	user.TwoFactorSecret = nil
	user.ClearMfaOtp()
	if err := a.Store.Users().Save(ctx, user); err != nil {
		return persistence(err)
	}
	a.audit(ctx, &user.ID, events.ActionMFADisabled, events.MFAResult{UserID: user.ID.String(), Method: "totp", At: a.now()}, meta)
	return nil
}

// ====== Helpers ======

func (a *AuthServiceImpl) findUser(ctx context.Context, id domain.UserID) (*domain.User, error) {
	user, err := a.Store.Users().FindByID(ctx, id)
	if errors.Is(err, store.ErrRecordNotFound) {
		return nil, apperr.ErrUserNotFound
	}
	if err != nil {
		return nil, persistence(err)
	}
	return user, nil
}

func (a *AuthServiceImpl) resetLink(token string) string {
	return strings.TrimRight(a.cfg.FrontendURL, "/") + "/reset-password?token=" + url.QueryEscape(token)
}

// deliver runs send and reports whether it succeeded. Failures are logged only.
func (a *AuthServiceImpl) deliver(ctx context.Context, kind string, send func() error) bool {
	if a.Email == nil {
		return false
	}
	if err := send(); err != nil {
		a.log(ctx).Error("email delivery failed", "kind", kind, "error", err)
		return false
	}
	return true
}

func (a *AuthServiceImpl) audit(ctx context.Context, userID *domain.UserID, action string, metadata any, meta dto.RequestMeta) {
	ip, ok := netutil.NormalizeIP(meta.IP)
	if !ok {
		ip = ""
	}
	ua := netutil.TruncateUserAgent(meta.UserAgent)
	if err := a.Store.Audit().Append(ctx, userID, action, metadata, ip, ua); err != nil {
		a.log(ctx).Error("audit write failed", "action", action, "error", err)
	}
}

func (a *AuthServiceImpl) log(ctx context.Context) *slog.Logger {
	return middleware.Logger(ctx)
}

func persistence(err error) error {
	return fmt.Errorf("%w: %w", ErrPersistence, err)
}

var _ service.AuthService = (*AuthServiceImpl)(nil)
