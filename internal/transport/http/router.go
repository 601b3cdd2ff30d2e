package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hrms/internal/apperr"
	"hrms/internal/authz"
	"hrms/internal/domain"
	obsmw "hrms/internal/observability/middleware"
)

type RouterConfig struct {
	APIPrefix        string
	CORSOrigins      []string
	RateLimitWindow  time.Duration
	RateLimitMax     int
	AuthRateLimitMax int
}

func NewRouter(cfg RouterConfig, h *Handler, guard *authz.Guard, rs Responder) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(obsmw.WithRequestAndTrace)
	r.Use(rs.Recoverer)
	r.Use(obsmw.WithMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   originsIfSet(cfg.CORSOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type", obsmw.HeaderRequestID, obsmw.HeaderTraceID, authz.HeaderMFAToken},
		ExposedHeaders:   []string{obsmw.HeaderRequestID, obsmw.HeaderTraceID},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		rs.OK(w, http.StatusOK, "ok", nil)
	})
	r.Handle("/metrics", promhttp.Handler())

	apiLimit := httprate.Limit(cfg.RateLimitMax, cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			rs.Error(w, r, apperr.ErrRateLimited)
		}),
	)
	authLimit := httprate.Limit(cfg.AuthRateLimitMax, cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP, httprate.KeyByEndpoint),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			rs.Error(w, r, apperr.ErrAuthRateLimited)
		}),
	)

	r.Route(cfg.APIPrefix, func(api chi.Router) {
		api.Use(apiLimit)

		api.Route("/auth", func(ar chi.Router) {
			// public
			ar.With(authLimit).Post("/login", h.Login)
			ar.With(authLimit).Post("/forgot-password", h.ForgotPassword)
			ar.With(authLimit).Post("/mfa/verify", h.VerifyMFA)
			ar.Post("/reset-password", h.ResetPassword)

			ar.Group(func(pr chi.Router) {
				pr.Use(guard.Authenticate)

				pr.Get("/profile", h.GetProfile)
				pr.Put("/profile", h.UpdateProfile)
				pr.Post("/change-password", h.ChangePassword)
				pr.Post("/logout", h.Logout)
				pr.Post("/mfa/enable", h.EnableMFA)
				pr.Post("/mfa/disable", h.DisableMFA)
				pr.With(guard.SelfOrAdmin("id")).Get("/users/{id}", h.GetUser)

				pr.Group(func(adm chi.Router) {
					adm.Use(guard.RequireRoles(domain.AdminRoles...))
					adm.Use(guard.RequireMFA)

					adm.Post("/register", h.Register)
					adm.Post("/users/{id}/unlock", h.UnlockAccount)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		rs.Error(w, r, apperr.ErrNotFound.WithMessage("Route not found"))
	})
	return r
}

// originsIfSet falls back to allowing every origin when none is configured.
func originsIfSet(in []string) []string {
	out := []string{}
	for _, o := range in {
		if o != "" {
			out = append(out, o)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
