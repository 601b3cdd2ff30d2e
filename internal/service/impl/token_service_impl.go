package impl

import (
	"errors"
	"log/slog"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"hrms/internal/apperr"
	"hrms/internal/domain"
	"hrms/internal/dto"
	"hrms/internal/observability/metrics"
	"hrms/internal/service"
)

const (
	TokenTypeAccess  = "access"
	TokenTypeRefresh = "refresh"
)

type TokenConfig struct {
	Issuer     string
	AccessTTL  time.Duration // default 7 days
	RefreshTTL time.Duration // default 30 days
	SigningKey []byte        // HS256 secret shared by both token kinds
}

type AccessClaims struct {
	EmployeeID *string  `json:"employeeId,omitempty"`
	Username   string   `json:"username"`
	Email      string   `json:"email"`
	Roles      []string `json:"roles"`
	Type       string   `json:"type"`
	jwt.RegisteredClaims
}

type RefreshClaims struct {
	Type string `json:"type"`
	jwt.RegisteredClaims
}

type TokenServiceImpl struct {
	cfg    TokenConfig
	now    func() time.Time
	parser *jwt.Parser
}

func NewTokenServiceHS256(cfg TokenConfig) (*TokenServiceImpl, error) {
	if len(cfg.SigningKey) == 0 {
		return nil, ErrMissingSecret
	}
	t := &TokenServiceImpl{cfg: cfg}
	t.WithClock(func() time.Time { return time.Now().UTC() })
	return t, nil
}

// WithClock replaces the time source used for both signing and verification.
func (t *TokenServiceImpl) WithClock(now func() time.Time) *TokenServiceImpl {
	t.now = now
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(now),
	}
	if t.cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(t.cfg.Issuer))
	}
	t.parser = jwt.NewParser(opts...)
	return t
}

func (t *TokenServiceImpl) IssueAccessToken(user *domain.User) (string, error) {
	now := t.now()
	var emp *string
	if user.EmployeeID != nil {
		s := user.EmployeeID.String()
		emp = &s
	}
	claims := AccessClaims{
		EmployeeID: emp,
		Username:   user.Username,
		Email:      user.Email,
		Roles:      append([]string{}, user.Roles...),
		Type:       TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return t.sign(claims, TokenTypeAccess)
}

func (t *TokenServiceImpl) IssueRefreshToken(user *domain.User) (string, error) {
	now := t.now()
	claims := RefreshClaims{
		Type: TokenTypeRefresh,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    t.cfg.Issuer,
			Subject:   user.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(t.cfg.RefreshTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			ID:        uuid.NewString(),
		},
	}
	return t.sign(claims, TokenTypeRefresh)
}

func (t *TokenServiceImpl) IssuePair(user *domain.User) (*dto.TokenResponse, error) {
	access, err := t.IssueAccessToken(user)
	if err != nil {
		return nil, err
	}
	refresh, err := t.IssueRefreshToken(user)
	if err != nil {
		return nil, err
	}
	slog.Debug("issued tokens", "user_id", user.ID)
	return &dto.TokenResponse{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresIn:    int64(t.cfg.AccessTTL.Seconds()),
	}, nil
}

// VerifyAccessToken checks the signature before any claim, so a tampered token
// reports invalid even when it is also expired.
func (t *TokenServiceImpl) VerifyAccessToken(tokenStr string) (*service.TokenClaims, error) {
	claims := &AccessClaims{}
	_, err := t.parser.ParseWithClaims(tokenStr, claims, func(*jwt.Token) (interface{}, error) {
		return t.cfg.SigningKey, nil
	})
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return nil, apperr.ErrTokenExpired.Wrap(err)
	default:
		return nil, apperr.ErrTokenInvalid.Wrap(err)
	}
	if claims.Type != TokenTypeAccess {
		return nil, apperr.ErrTokenInvalid.Wrap(ErrInvalidTokenType)
	}
	uid, err := uuid.Parse(claims.Subject)
	if err != nil {
		return nil, apperr.ErrTokenInvalid.Wrap(err)
	}

	out := &service.TokenClaims{
		UserID:   uid,
		Username: claims.Username,
		Email:    claims.Email,
		Roles:    claims.Roles,
	}
	if claims.EmployeeID != nil {
		if eid, err := uuid.Parse(*claims.EmployeeID); err == nil {
			out.EmployeeID = &eid
		}
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

func (t *TokenServiceImpl) sign(claims jwt.Claims, kind string) (string, error) {
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.cfg.SigningKey)
	if err != nil {
		slog.Error("sign token", "kind", kind, "error", err)
		return "", err
	}
	metrics.TokensIssuedTotal.WithLabelValues(kind).Inc()
	return s, nil
}

var _ service.TokenService = (*TokenServiceImpl)(nil)
