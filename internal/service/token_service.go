package service

import (
	"time"

	"hrms/internal/domain"
	"hrms/internal/dto"
)

// TokenClaims is what a verified access token asserts about its bearer.
type TokenClaims struct {
	UserID     domain.UserID
	EmployeeID *domain.EmployeeID
	Username   string
	Email      string
	Roles      []string
	ExpiresAt  time.Time
}

type TokenService interface {
	IssueAccessToken(user *domain.User) (string, error)
	IssueRefreshToken(user *domain.User) (string, error)
	IssuePair(user *domain.User) (*dto.TokenResponse, error)
	// VerifyAccessToken fails with apperr.ErrTokenExpired or apperr.ErrTokenInvalid.
	VerifyAccessToken(token string) (*TokenClaims, error)
}
