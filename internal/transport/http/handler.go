package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"hrms/internal/apperr"
	"hrms/internal/authz"
	"hrms/internal/dto"
	"hrms/internal/netutil"
	"hrms/internal/service"
)

type Handler struct {
	auth service.AuthService
	rs   Responder
}

func NewHandler(auth service.AuthService, rs Responder) *Handler {
	return &Handler{auth: auth, rs: rs}
}

func requestMeta(r *http.Request) dto.RequestMeta {
	meta := dto.RequestMeta{
		IP:        netutil.ClientIP(r),
		UserAgent: netutil.TruncateUserAgent(r.UserAgent()),
	}
	if id, ok := authz.IdentityFrom(r.Context()); ok {
		meta.ActorID = id.ID.String()
	}
	return meta
}

// caller is only reached behind Guard.Authenticate.
func caller(r *http.Request) (*authz.Identity, error) {
	id, ok := authz.IdentityFrom(r.Context())
	if !ok {
		return nil, apperr.ErrNoToken
	}
	return id, nil
}

func pathUserID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.Validation(apperr.FieldError{Field: "id", Message: "id must be a valid UUID"})
	}
	return id, nil
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	res, err := h.auth.Login(r.Context(), req, requestMeta(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if res.RequiresMFA {
		h.rs.OK(w, http.StatusOK, "OTP sent to your registered email", res)
		return
	}
	h.rs.OK(w, http.StatusOK, "Login successful", res)
}

func (h *Handler) VerifyMFA(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyMFARequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	res, err := h.auth.VerifyMFA(r.Context(), req, requestMeta(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusOK, "MFA verification successful", res)
}

func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.auth.Logout(r.Context(), id.ID, requestMeta(r)); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusOK, "Logout successful", nil)
}

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.auth.Register(r.Context(), req, requestMeta(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusCreated, "User registered successfully", user)
}

func (h *Handler) GetProfile(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.auth.GetProfile(r.Context(), id.ID)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusOK, "", user)
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	var req dto.UpdateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.auth.UpdateProfile(r.Context(), id.ID, req)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusOK, "Profile updated successfully", user)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	target, err := pathUserID(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.auth.GetUser(r.Context(), target)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusOK, "", user)
}

func (h *Handler) UnlockAccount(w http.ResponseWriter, r *http.Request) {
	target, err := pathUserID(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	user, err := h.auth.UnlockAccount(r.Context(), target, requestMeta(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusOK, "Account unlocked", user)
}

func (h *Handler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	var req dto.ChangePasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.auth.ChangePassword(r.Context(), id.ID, req, requestMeta(r)); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusOK, "Password changed successfully", nil)
}

func (h *Handler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	res, err := h.auth.ForgotPassword(r.Context(), req, requestMeta(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	var data any
	if res.ResetToken != "" {
		data = res
	}
	h.rs.OK(w, http.StatusOK, "If the email exists, a password reset link has been sent", data)
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.auth.ResetPassword(r.Context(), req, requestMeta(r)); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusOK, "Password reset successful", nil)
}

func (h *Handler) EnableMFA(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	var req dto.EnableMFARequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	req.Code = r.Header.Get(authz.HeaderMFAToken)
	setup, err := h.auth.EnableMFA(r.Context(), id.ID, req, requestMeta(r))
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusOK, "Two-factor authentication enabled", setup)
}

func (h *Handler) DisableMFA(w http.ResponseWriter, r *http.Request) {
	id, err := caller(r)
	if err != nil {
		h.rs.Error(w, r, err)
		return
	}
	var req dto.DisableMFARequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	if err := h.auth.DisableMFA(r.Context(), id.ID, req, requestMeta(r)); err != nil {
		h.rs.Error(w, r, err)
		return
	}
	h.rs.OK(w, http.StatusOK, "Two-factor authentication disabled", nil)
}
