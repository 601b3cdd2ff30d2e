// Package apperr defines the client-facing error taxonomy. Every value carries the
// HTTP status and machine-readable code the boundary handler writes to the envelope.
package apperr

import (
	"errors"
	"net/http"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type Error struct {
	Status  int
	Code    string
	Message string
	Fields  []FieldError
	Err     error
}

func New(status int, code, message string) *Error {
	return &Error{Status: status, Code: code, Message: message}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Code + ": " + e.Message + ": " + e.Err.Error()
	}
	return e.Code + ": " + e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches on Code so wrapped copies still compare equal to the sentinels below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Code == e.Code
}

// Wrap returns a copy of e carrying cause.
func (e *Error) Wrap(cause error) *Error {
	cp := *e
	cp.Err = cause
	return &cp
}

// WithMessage returns a copy of e with a different client message.
func (e *Error) WithMessage(msg string) *Error {
	cp := *e
	cp.Message = msg
	return &cp
}

func Validation(fields ...FieldError) *Error {
	e := ErrValidation.WithMessage("Validation failed")
	e.Fields = fields
	return e
}

// Internal wraps an unexpected error; the cause is logged, never shown to clients in production.
func Internal(cause error) *Error {
	return ErrInternal.Wrap(cause)
}

// From extracts the *Error in err's chain, falling back to INTERNAL_ERROR.
func From(err error) *Error {
	var ae *Error
	if errors.As(err, &ae) {
		return ae
	}
	return Internal(err)
}

var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "INVALID_CREDENTIALS", "Invalid credentials")
	ErrAccountDisabled    = New(http.StatusUnauthorized, "ACCOUNT_DISABLED", "Account is disabled")
	ErrAccountLocked      = New(http.StatusLocked, "ACCOUNT_LOCKED", "Account is locked. Try again later.")
	ErrInvalidPassword    = New(http.StatusBadRequest, "INVALID_PASSWORD", "Current password is incorrect")
	ErrInvalidResetToken  = New(http.StatusBadRequest, "INVALID_RESET_TOKEN", "Invalid or expired reset token")
	ErrInvalidOTP         = New(http.StatusBadRequest, "INVALID_OTP", "Invalid OTP")
	ErrUserExists         = New(http.StatusConflict, "USER_EXISTS", "Username or email already exists")
	ErrUserNotFound       = New(http.StatusNotFound, "USER_NOT_FOUND", "User not found")
	ErrValidation         = New(http.StatusBadRequest, "VALIDATION_ERROR", "Validation failed")
	ErrBadRequest         = New(http.StatusBadRequest, "BAD_REQUEST", "Malformed request body")
	ErrNotFound           = New(http.StatusNotFound, "NOT_FOUND", "Resource not found")
	ErrRateLimited        = New(http.StatusTooManyRequests, "RATE_LIMIT_EXCEEDED", "Too many requests, please try again later.")
	ErrAuthRateLimited    = New(http.StatusTooManyRequests, "AUTH_RATE_LIMIT_EXCEEDED", "Too many authentication attempts, please try again later.")
	ErrInternal           = New(http.StatusInternalServerError, "INTERNAL_ERROR", "Internal server error")
)

// Guard rejections.
var (
	ErrNoToken          = New(http.StatusUnauthorized, "AUTH_001", "Access denied. No token provided.")
	ErrTokenUserMissing = New(http.StatusUnauthorized, "AUTH_002", "User not found.")
	ErrUserInactive     = New(http.StatusUnauthorized, "AUTH_003", "Account is inactive.")
	ErrGuardLocked      = New(http.StatusUnauthorized, "AUTH_004", "Account is locked.")
	ErrPasswordExpired  = New(http.StatusUnauthorized, "AUTH_005", "Password has expired. Please reset your password.")
	ErrTokenExpired     = New(http.StatusUnauthorized, "AUTH_006", "Authentication token has expired.")
	ErrTokenInvalid     = New(http.StatusUnauthorized, "AUTH_007", "Invalid authentication token.")
	ErrRoleNoIdentity   = New(http.StatusUnauthorized, "AUTH_009", "Authentication required.")
	ErrInsufficientRole = New(http.StatusForbidden, "AUTH_010", "Access denied. Insufficient permissions.")
	ErrSelfNoIdentity   = New(http.StatusUnauthorized, "AUTH_011", "Authentication required.")
	ErrNotSelfOrAdmin   = New(http.StatusForbidden, "AUTH_012", "Access denied. You can only access your own data.")
	ErrMFANoIdentity    = New(http.StatusUnauthorized, "AUTH_013", "Authentication required.")
	ErrMFARequired      = New(http.StatusUnauthorized, "AUTH_014", "MFA verification required.")
	ErrMFATokenInvalid  = New(http.StatusUnauthorized, "AUTH_015", "Invalid MFA token.")
	ErrMFACheckFailed   = New(http.StatusInternalServerError, "AUTH_016", "MFA verification failed.")
)
