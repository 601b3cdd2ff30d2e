package impl

import "errors"

var (
	ErrEmptyPassword    = errors.New("empty password")
	ErrPasswordTooLong  = errors.New("password exceeds 72 bytes")
	ErrPersistence      = errors.New("credential store unavailable")
	ErrMissingSecret    = errors.New("empty signing key")
	ErrInvalidTokenType = errors.New("unexpected token type")
)
