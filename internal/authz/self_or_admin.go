package authz

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrms/internal/apperr"
)

const maxTargetBody = 1 << 20

// SelfOrAdmin lets a request through when the target user id, taken from the path
// parameter param or else from a JSON body field "userId", is the caller's own id,
// or when the caller holds an administrative role.
func (g *Guard) SelfOrAdmin(param string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := IdentityFrom(r.Context())
			if !ok {
				g.reject(w, r, apperr.ErrSelfNoIdentity)
				return
			}
			if id.IsAdmin() {
				next.ServeHTTP(w, r)
				return
			}
			target := chi.URLParam(r, param)
			if target == "" {
				target = bodyUserID(r)
			}
			if target == "" || !strings.EqualFold(target, id.ID.String()) {
				g.reject(w, r, apperr.ErrNotSelfOrAdmin)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// bodyUserID peeks at the JSON body and restores it for the next handler.
func bodyUserID(r *http.Request) string {
	if r.Body == nil {
		return ""
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxTargetBody))
	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil || len(raw) == 0 {
		return ""
	}
	var body struct {
		UserID string `json:"userId"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	return body.UserID
}
