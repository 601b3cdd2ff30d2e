package authz

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"hrms/internal/apperr"
	"hrms/internal/domain"
	"hrms/internal/observability/metrics"
	obsmw "hrms/internal/observability/middleware"
	"hrms/internal/service"
	"hrms/internal/store"
)

// ErrorWriter renders a rejected request.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

type userFinder interface {
	FindByID(ctx context.Context, id domain.UserID) (*domain.User, error)
}

type Guard struct {
	tokens     service.TokenService
	users      userFinder
	creds      service.CredentialService
	mfa        service.MFAService
	mfaEnabled bool
	writeError ErrorWriter
}

type GuardConfig struct {
	Tokens      service.TokenService
	Users       userFinder
	Credentials service.CredentialService
	MFA         service.MFAService
	// MFAEnabled switches the X-MFA-Token gate on.
	MFAEnabled bool
	WriteError ErrorWriter
}

func NewGuard(cfg GuardConfig) *Guard {
	return &Guard{
		tokens:     cfg.Tokens,
		users:      cfg.Users,
		creds:      cfg.Credentials,
		mfa:        cfg.MFA,
		mfaEnabled: cfg.MFAEnabled,
		writeError: cfg.WriteError,
	}
}

// Authenticate verifies the bearer token and re-checks the live account state on
// every request before attaching the caller's Identity.
func (g *Guard) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		raw, ok := bearerToken(r)
		if !ok {
			g.reject(w, r, apperr.ErrNoToken)
			return
		}

		claims, err := g.tokens.VerifyAccessToken(raw)
		if err != nil {
			g.reject(w, r, err)
			return
		}

		user, err := g.users.FindByID(ctx, claims.UserID)
		if errors.Is(err, store.ErrRecordNotFound) {
			g.reject(w, r, apperr.ErrTokenUserMissing)
			return
		}
		if err != nil {
			g.reject(w, r, fmt.Errorf("guard: load user: %w", err))
			return
		}

		if !user.IsActive {
			g.reject(w, r, apperr.ErrUserInactive)
			return
		}

		locked, err := g.creds.IsAccountLocked(ctx, user)
		if err != nil {
			g.reject(w, r, err)
			return
		}
		if locked {
			g.reject(w, r, apperr.ErrGuardLocked)
			return
		}

		if g.creds.IsPasswordExpired(user) {
			g.reject(w, r, apperr.ErrPasswordExpired)
			return
		}

		ctx = ContextWithIdentity(ctx, IdentityFromUser(user))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequireRoles passes when the caller holds any of roles.
func (g *Guard) RequireRoles(roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				g.reject(w, r, apperr.ErrRoleNoIdentity)
				return
			}
			if !id.Roles.HasAny(roles...) {
				obsmw.Logger(r.Context()).Warn("role check failed",
					"user_id", id.ID, "roles", []string(id.Roles), "required", roles)
				g.reject(w, r, apperr.ErrInsufficientRole)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (g *Guard) reject(w http.ResponseWriter, r *http.Request, err error) {
	metrics.GuardRejectionsTotal.WithLabelValues(apperr.From(err).Code).Inc()
	obsmw.Logger(r.Context()).Warn("request rejected by guard",
		"path", r.URL.Path, "code", apperr.From(err).Code, "error", err)
	g.writeError(w, r, err)
}

func bearerToken(r *http.Request) (string, bool) {
	raw := r.Header.Get("Authorization")
	const prefix = "bearer "
	if len(raw) <= len(prefix) || !strings.EqualFold(raw[:len(prefix)], prefix) {
		return "", false
	}
	tok := strings.TrimSpace(raw[len(prefix):])
	return tok, tok != ""
}
