package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime/debug"

	"hrms/internal/apperr"
	"hrms/internal/observability/middleware"
)

const maxBodyBytes = 1 << 20

type successEnvelope struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

type errorEnvelope struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Code    string              `json:"code"`
	Errors  []apperr.FieldError `json:"errors,omitempty"`
	Detail  string              `json:"detail,omitempty"`
}

// Responder renders the JSON envelopes. Outside production, error responses carry
// the underlying cause in detail.
type Responder struct {
	Production bool
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (Responder) OK(w http.ResponseWriter, status int, message string, data any) {
	writeJSON(w, status, successEnvelope{Success: true, Message: message, Data: data})
}

// Error is the single mapping from errors to the failure envelope.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	ae := apperr.From(err)
	logger := middleware.Logger(r.Context())
	if ae.Status >= http.StatusInternalServerError {
		logger.Error("request failed", "method", r.Method, "path", r.URL.Path, "code", ae.Code, "error", err)
	} else {
		logger.Debug("request rejected", "method", r.Method, "path", r.URL.Path, "code", ae.Code, "error", err)
	}

	env := errorEnvelope{
		Success: false,
		Message: ae.Message,
		Code:    ae.Code,
		Errors:  ae.Fields,
	}
	if !rs.Production && ae.Err != nil {
		env.Detail = ae.Err.Error()
	}
	writeJSON(w, ae.Status, env)
}

// Recoverer turns panics into a 500 envelope.
func (rs Responder) Recoverer(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			stack := debug.Stack()
			middleware.Logger(r.Context()).Error("panic recovered", "panic", rec, "stack", string(stack))
			cause := fmt.Errorf("panic: %v", rec)
			if !rs.Production {
				cause = fmt.Errorf("panic: %v\n%s", rec, stack)
			}
			rs.Error(w, r, apperr.Internal(cause))
		}()
		next.ServeHTTP(w, r)
	})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.ErrBadRequest.WithMessage("Request body is required")
		}
		return apperr.ErrBadRequest.Wrap(err)
	}
	return nil
}
