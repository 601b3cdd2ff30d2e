package dto

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"hrms/internal/apperr"
)

func TestValidateReportsJSONFieldNames(t *testing.T) {
	err := Validate(&RegisterRequest{Username: "al", Email: "not-an-email"})
	require.Error(t, err)
	require.True(t, errors.Is(err, apperr.ErrValidation))

	ae := apperr.From(err)
	fields := map[string]string{}
	for _, f := range ae.Fields {
		fields[f.Field] = f.Message
	}
	require.Contains(t, fields, "username")
	require.Contains(t, fields, "email")
	require.Contains(t, fields, "password")
	require.Equal(t, "Valid email is required", fields["email"])
}

func TestValidateAcceptsWellFormedRequests(t *testing.T) {
	id := "6f1c2b8e-2c4b-4f5e-9a3c-1d2e3f4a5b6c"
	require.NoError(t, Validate(&RegisterRequest{
		Username:   "alice",
		Email:      "alice@example.com",
		Password:   "Secret123!",
		Roles:      []string{"Employee"},
		EmployeeID: &id,
	}))
	require.NoError(t, Validate(&VerifyMFARequest{Email: "alice@example.com", Otp: "123456"}))
}

func TestValidateOtpShape(t *testing.T) {
	cases := []string{"12345", "1234567", "12a456", ""}
	for _, otp := range cases {
		err := Validate(&VerifyMFARequest{Email: "alice@example.com", Otp: otp})
		require.Errorf(t, err, "otp %q should be rejected", otp)
	}
}
