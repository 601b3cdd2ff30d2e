package service

import (
	"hrms/internal/domain"
	"hrms/internal/dto"
)

// MFAService manages the authenticator-app second factor. It mutates the user
// but leaves persistence to the caller.
type MFAService interface {
	ProvisionTOTP(user *domain.User) (*dto.MFASetupResponse, error)
	VerifyTOTP(user *domain.User, code string) bool
}
