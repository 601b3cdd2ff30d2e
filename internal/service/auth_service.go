package service

import (
	"context"

	"hrms/internal/domain"
	"hrms/internal/dto"
)

type AuthService interface {
	Login(ctx context.Context, r dto.LoginRequest, meta dto.RequestMeta) (*dto.LoginResponse, error)
	VerifyMFA(ctx context.Context, r dto.VerifyMFARequest, meta dto.RequestMeta) (*dto.LoginResponse, error)
	Logout(ctx context.Context, userID domain.UserID, meta dto.RequestMeta) error

	Register(ctx context.Context, r dto.RegisterRequest, meta dto.RequestMeta) (*dto.UserView, error)
	// Bootstrap creates an administrator unless the username or email is taken.
	Bootstrap(ctx context.Context, r dto.RegisterRequest) (created bool, err error)

	GetProfile(ctx context.Context, userID domain.UserID) (*dto.UserView, error)
	UpdateProfile(ctx context.Context, userID domain.UserID, r dto.UpdateProfileRequest) (*dto.UserView, error)
	GetUser(ctx context.Context, userID domain.UserID) (*dto.UserView, error)
	UnlockAccount(ctx context.Context, userID domain.UserID, meta dto.RequestMeta) (*dto.UserView, error)

	ChangePassword(ctx context.Context, userID domain.UserID, r dto.ChangePasswordRequest, meta dto.RequestMeta) error
	ForgotPassword(ctx context.Context, r dto.ForgotPasswordRequest, meta dto.RequestMeta) (*dto.ForgotPasswordResponse, error)
	ResetPassword(ctx context.Context, r dto.ResetPasswordRequest, meta dto.RequestMeta) error

	EnableMFA(ctx context.Context, userID domain.UserID, r dto.EnableMFARequest, meta dto.RequestMeta) (*dto.MFASetupResponse, error)
	DisableMFA(ctx context.Context, userID domain.UserID, r dto.DisableMFARequest, meta dto.RequestMeta) error
}
