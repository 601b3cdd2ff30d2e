package http_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"hrms/internal/authz"
	"hrms/internal/dto"
	"hrms/internal/service/impl"
	"hrms/internal/store"
	"hrms/internal/store/storetest"
	transport "hrms/internal/transport/http"
)

type otpInbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (o *otpInbox) SendMfaOtp(ctx context.Context, to, code string, expiresAt time.Time) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.codes[to] = code
	return nil
}

func (o *otpInbox) SendPasswordReset(ctx context.Context, to, link string, expiresAt time.Time) error {
	return nil
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Code    string          `json:"code"`
	Data    json.RawMessage `json:"data"`
	Errors  []struct {
		Field   string `json:"field"`
		Message string `json:"message"`
	} `json:"errors"`
}

type testAPI struct {
	st      *store.Store
	inbox   *otpInbox
	handler http.Handler
}

func newTestAPI(t *testing.T, authLimit int) *testAPI {
	t.Helper()
	st := storetest.Open(t)
	inbox := &otpInbox{codes: map[string]string{}}

	creds := impl.NewCredentialService(st.Users(), impl.NewPasswordServiceBcrypt(bcrypt.MinCost), impl.CredentialPolicy{
		MaxLoginAttempts: 5,
		LockDuration:     30 * time.Minute,
		PasswordExpiry:   90 * 24 * time.Hour,
		MfaOtpTTL:        5 * time.Minute,
	})
	tokens, err := impl.NewTokenServiceHS256(impl.TokenConfig{
		Issuer: "hrms-test", AccessTTL: time.Hour, RefreshTTL: 24 * time.Hour, SigningKey: []byte("router-secret"),
	})
	require.NoError(t, err)
	mfa := impl.NewMFAServiceTOTP("HRMS")
	auth := impl.NewAuthServiceImpl(st, creds, tokens, mfa, inbox, impl.AuthConfig{
		FrontendURL:      "http://localhost:3000",
		ExposeResetToken: true,
		Policy:           impl.PasswordPolicy{MinLength: 8, RequireUpper: true, RequireLower: true, RequireNumber: true},
	})

	created, err := auth.Bootstrap(context.Background(), dto.RegisterRequest{
		Username: "admin", Email: "admin@example.com", Password: "Admin123!",
	})
	require.NoError(t, err)
	require.True(t, created)

	rs := transport.Responder{Production: false}
	guard := authz.NewGuard(authz.GuardConfig{
		Tokens:      tokens,
		Users:       st.Users(),
		Credentials: creds,
		MFA:         mfa,
		MFAEnabled:  true,
		WriteError:  rs.Error,
	})
	h := transport.NewRouter(transport.RouterConfig{
		APIPrefix:        "/api/v1",
		RateLimitWindow:  time.Minute,
		RateLimitMax:     10000,
		AuthRateLimitMax: authLimit,
	}, transport.NewHandler(auth, rs), guard, rs)

	return &testAPI{st: st, inbox: inbox, handler: h}
}

func (a *testAPI) do(t *testing.T, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	return a.doWithHeaders(t, method, path, token, nil, body)
}

func (a *testAPI) doWithHeaders(t *testing.T, method, path, token string, headers map[string]string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	a.handler.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	}
	return rec, env
}

func (a *testAPI) login(t *testing.T, username, password string) dto.LoginResponse {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": username, "password": password})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	return out
}

func (a *testAPI) register(t *testing.T, adminToken, username, email string) {
	t.Helper()
	rec, env := a.do(t, http.MethodPost, "/api/v1/auth/register", adminToken, map[string]any{
		"username": username, "email": email, "password": "Secret123!",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.True(t, env.Success)
}

func TestLoginThenProfile(t *testing.T) {
	api := newTestAPI(t, 1000)
	res := api.login(t, "admin", "Admin123!")
	require.NotEmpty(t, res.AccessToken)
	require.EqualValues(t, 3600, res.ExpiresIn)

	rec, env := api.do(t, http.MethodGet, "/api/v1/auth/profile", res.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
	var profile dto.UserView
	require.NoError(t, json.Unmarshal(env.Data, &profile))
	require.Equal(t, "admin", profile.Username)
	require.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	require.NotContains(t, string(env.Data), "passwordHash")
	require.NotContains(t, string(env.Data), "password_hash")
}

func TestTamperedTokenRejected(t *testing.T) {
	api := newTestAPI(t, 1000)
	tok := api.login(t, "admin", "Admin123!").AccessToken

	i := strings.LastIndex(tok, ".") + 1
	c := "A"
	if tok[i] == 'A' {
		c = "B"
	}
	tampered := tok[:i] + c + tok[i+1:]

	rec, env := api.do(t, http.MethodGet, "/api/v1/auth/profile", tampered, nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.False(t, env.Success)
	require.Equal(t, "AUTH_007", env.Code)

	rec, env = api.do(t, http.MethodGet, "/api/v1/auth/profile", "", nil)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "AUTH_001", env.Code)
}

func TestSixthAttemptIsLocked(t *testing.T) {
	api := newTestAPI(t, 1000)
	admin := api.login(t, "admin", "Admin123!").AccessToken
	api.register(t, admin, "alice", "alice@example.com")

	for i := 0; i < 5; i++ {
		rec, env := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "wrong"})
		require.Equal(t, http.StatusUnauthorized, rec.Code)
		require.Equal(t, "INVALID_CREDENTIALS", env.Code)
	}
	rec, env := api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "alice", "password": "Secret123!"})
	require.Equal(t, http.StatusLocked, rec.Code)
	require.Equal(t, "ACCOUNT_LOCKED", env.Code)

	alice, err := api.st.Users().FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	rec, _ = api.do(t, http.MethodPost, "/api/v1/auth/users/"+alice.ID.String()+"/unlock", admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	api.login(t, "alice", "Secret123!")
}

func TestRegisterRequiresAdmin(t *testing.T) {
	api := newTestAPI(t, 1000)
	admin := api.login(t, "admin", "Admin123!").AccessToken
	api.register(t, admin, "alice", "alice@example.com")
	alice := api.login(t, "alice", "Secret123!").AccessToken

	rec, env := api.do(t, http.MethodPost, "/api/v1/auth/register", alice, map[string]any{
		"username": "mallory", "email": "mallory@example.com", "password": "Secret123!",
	})
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "AUTH_010", env.Code)

	rec, env = api.do(t, http.MethodPost, "/api/v1/auth/register", admin, map[string]any{
		"username": "alice", "email": "other@example.com", "password": "Secret123!",
	})
	require.Equal(t, http.StatusConflict, rec.Code)
	require.Equal(t, "USER_EXISTS", env.Code)

	rec, env = api.do(t, http.MethodPost, "/api/v1/auth/register", admin, map[string]any{
		"username": "x", "email": "not-an-email", "password": "Secret123!",
	})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", env.Code)
	require.NotEmpty(t, env.Errors)
}

func TestGetUserSelfOrAdmin(t *testing.T) {
	api := newTestAPI(t, 1000)
	admin := api.login(t, "admin", "Admin123!").AccessToken
	api.register(t, admin, "alice", "alice@example.com")
	api.register(t, admin, "bob", "bob@example.com")
	alice := api.login(t, "alice", "Secret123!")
	bob, err := api.st.Users().FindByUsername(context.Background(), "bob")
	require.NoError(t, err)

	rec, _ := api.do(t, http.MethodGet, "/api/v1/auth/users/"+alice.User.ID, alice.AccessToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env := api.do(t, http.MethodGet, "/api/v1/auth/users/"+bob.ID.String(), alice.AccessToken, nil)
	require.Equal(t, http.StatusForbidden, rec.Code)
	require.Equal(t, "AUTH_012", env.Code)

	rec, _ = api.do(t, http.MethodGet, "/api/v1/auth/users/"+bob.ID.String(), admin, nil)
	require.Equal(t, http.StatusOK, rec.Code)
}

func TestForgotAndResetPassword(t *testing.T) {
	api := newTestAPI(t, 1000)
	admin := api.login(t, "admin", "Admin123!").AccessToken
	api.register(t, admin, "alice", "alice@example.com")

	rec, env := api.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "ghost@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
	require.Empty(t, env.Data)
	generic := env.Message

	rec, env = api.do(t, http.MethodPost, "/api/v1/auth/forgot-password", "", map[string]string{"email": "alice@example.com"})
	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, generic, env.Message)
	var forgot dto.ForgotPasswordResponse
	require.NoError(t, json.Unmarshal(env.Data, &forgot))
	require.NotEmpty(t, forgot.ResetToken)

	reset := map[string]string{"token": forgot.ResetToken, "password": "Changed123!"}
	rec, _ = api.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", reset)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = api.do(t, http.MethodPost, "/api/v1/auth/reset-password", "", reset)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_RESET_TOKEN", env.Code)

	api.login(t, "alice", "Changed123!")
}

func TestEmailOtpLogin(t *testing.T) {
	api := newTestAPI(t, 1000)
	admin := api.login(t, "admin", "Admin123!").AccessToken
	api.register(t, admin, "alice", "alice@example.com")

	ctx := context.Background()
	u, err := api.st.Users().FindByUsername(ctx, "alice")
	require.NoError(t, err)
	u.TwoFactorEnabled = true
	require.NoError(t, api.st.Users().Save(ctx, u))

	res := api.login(t, "alice", "Secret123!")
	require.True(t, res.RequiresMFA)
	require.Nil(t, res.TokenResponse)

	code := api.inbox.codes["alice@example.com"]
	rec, env := api.do(t, http.MethodPost, "/api/v1/auth/mfa/verify", "", map[string]string{"email": "alice@example.com", "otp": code})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out dto.LoginResponse
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.NotEmpty(t, out.AccessToken)

	rec, env = api.do(t, http.MethodPost, "/api/v1/auth/mfa/verify", "", map[string]string{"email": "alice@example.com", "otp": code})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "INVALID_OTP", env.Code)
}

func TestEnvelopeShapes(t *testing.T) {
	api := newTestAPI(t, 1000)

	rec, env := api.do(t, http.MethodGet, "/api/v1/nowhere", "", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)
	require.False(t, env.Success)
	require.Equal(t, "NOT_FOUND", env.Code)

	rec, env = api.do(t, http.MethodPost, "/api/v1/auth/login", "", nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "BAD_REQUEST", env.Code)

	rec, env = api.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"username": "admin"})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", env.Code)
	require.Equal(t, "password", env.Errors[0].Field)

	rec, env = api.do(t, http.MethodGet, "/healthz", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.True(t, env.Success)
}

func TestAuthRateLimit(t *testing.T) {
	api := newTestAPI(t, 2)
	body := map[string]string{"username": "nobody", "password": "whatever"}

	for i := 0; i < 2; i++ {
		rec, _ := api.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
		require.Equal(t, http.StatusUnauthorized, rec.Code)
	}
	rec, env := api.do(t, http.MethodPost, "/api/v1/auth/login", "", body)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.Equal(t, "AUTH_RATE_LIMIT_EXCEEDED", env.Code)
}

func TestReEnableMFANeedsCurrentCode(t *testing.T) {
	api := newTestAPI(t, 1000)
	admin := api.login(t, "admin", "Admin123!").AccessToken
	password := map[string]string{"password": "Admin123!"}

	rec, env := api.do(t, http.MethodPost, "/api/v1/auth/mfa/enable", admin, map[string]string{})
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Equal(t, "VALIDATION_ERROR", env.Code)

	rec, env = api.do(t, http.MethodPost, "/api/v1/auth/mfa/enable", admin, password)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var setup dto.MFASetupResponse
	require.NoError(t, json.Unmarshal(env.Data, &setup))
	require.NotEmpty(t, setup.Secret)

	newUser := map[string]any{"username": "alice", "email": "alice@example.com", "password": "Secret123!"}
	rec, env = api.do(t, http.MethodPost, "/api/v1/auth/register", admin, newUser)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "AUTH_014", env.Code)

	rec, env = api.do(t, http.MethodPost, "/api/v1/auth/mfa/enable", admin, password)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "AUTH_014", env.Code)

	rec, env = api.doWithHeaders(t, http.MethodPost, "/api/v1/auth/mfa/enable", admin,
		map[string]string{authz.HeaderMFAToken: "12345x"}, password)
	require.Equal(t, http.StatusUnauthorized, rec.Code)
	require.Equal(t, "AUTH_015", env.Code)

	code, err := totp.GenerateCode(setup.Secret, time.Now())
	require.NoError(t, err)
	mfa := map[string]string{authz.HeaderMFAToken: code}

	rec, env = api.doWithHeaders(t, http.MethodPost, "/api/v1/auth/register", admin, mfa, newUser)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.True(t, env.Success)

	rec, env = api.doWithHeaders(t, http.MethodPost, "/api/v1/auth/mfa/enable", admin, mfa, password)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var rotated dto.MFASetupResponse
	require.NoError(t, json.Unmarshal(env.Data, &rotated))
	require.NotEqual(t, setup.Secret, rotated.Secret)
}
