package impl

import (
	"fmt"
	"unicode"

	"hrms/internal/apperr"
)

type PasswordPolicy struct {
	MinLength      int
	RequireUpper   bool
	RequireLower   bool
	RequireNumber  bool
	RequireSpecial bool
}

// Check returns a VALIDATION_ERROR naming field for every rule password breaks.
func (p PasswordPolicy) Check(field, password string) error {
	var fields []apperr.FieldError
	add := func(msg string) {
		fields = append(fields, apperr.FieldError{Field: field, Message: msg})
	}

	if len(password) < p.MinLength {
		add(fmt.Sprintf("Password must be at least %d characters long", p.MinLength))
	}
	if len(password) > MaxPasswordBytes {
		add(fmt.Sprintf("Password must be at most %d bytes long", MaxPasswordBytes))
	}

	var upper, lower, number, special bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			number = true
		case unicode.IsPunct(r) || unicode.IsSymbol(r):
			special = true
		}
	}
	if p.RequireUpper && !upper {
		add("Password must contain at least one uppercase letter")
	}
	if p.RequireLower && !lower {
		add("Password must contain at least one lowercase letter")
	}
	if p.RequireNumber && !number {
		add("Password must contain at least one number")
	}
	if p.RequireSpecial && !special {
		add("Password must contain at least one special character")
	}

	if len(fields) == 0 {
		return nil
	}
	return apperr.Validation(fields...)
}
