package authz

import (
	"fmt"
	"net/http"

	"hrms/internal/apperr"
	"hrms/internal/observability/metrics"
)

const HeaderMFAToken = "X-MFA-Token"

// RequireMFA demands a current authenticator code in X-MFA-Token from callers that
// have two-factor enabled. It is a no-op while the feature flag is off.
func (g *Guard) RequireMFA(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !g.mfaEnabled {
			next.ServeHTTP(w, r)
			return
		}
		id, ok := IdentityFrom(r.Context())
		if !ok {
			g.reject(w, r, apperr.ErrMFANoIdentity)
			return
		}
		user, err := g.users.FindByID(r.Context(), id.ID)
		if err != nil {
			g.reject(w, r, apperr.ErrMFACheckFailed.Wrap(fmt.Errorf("load user: %w", err)))
			return
		}
		if !user.TwoFactorEnabled {
			next.ServeHTTP(w, r)
			return
		}
		code := r.Header.Get(HeaderMFAToken)
		if code == "" {
			g.reject(w, r, apperr.ErrMFARequired)
			return
		}
		if !g.mfa.VerifyTOTP(user, code) {
			metrics.MFAVerificationsTotal.WithLabelValues("totp", "failure").Inc()
			g.reject(w, r, apperr.ErrMFATokenInvalid)
			return
		}
		metrics.MFAVerificationsTotal.WithLabelValues("totp", "success").Inc()
		next.ServeHTTP(w, r)
	})
}
