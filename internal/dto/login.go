package dto

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse holds either an MFA challenge or the issued tokens, which are
// flattened into the top level object.
type LoginResponse struct {
	RequiresMFA bool      `json:"requiresMFA"`
	Email       string    `json:"email,omitempty"`
	User        *UserView `json:"user,omitempty"`
	*TokenResponse
}

type VerifyMFARequest struct {
	Email string `json:"email" validate:"required,email"`
	Otp   string `json:"otp" validate:"required,len=6,numeric"`
}

type MFASetupResponse struct {
	Secret     string `json:"secret"`
	OtpAuthURL string `json:"otpauthUrl"`
}

// EnableMFARequest re-authenticates the caller before a secret is issued. Code is
// the current authenticator code, required when a secret is already enrolled.
type EnableMFARequest struct {
	Password string `json:"password" validate:"required"`
	Code     string `json:"-"`
}

type DisableMFARequest struct {
	Password string `json:"password" validate:"required"`
}

// RequestMeta is the caller context recorded in the audit trail.
type RequestMeta struct {
	IP        string
	UserAgent string
	// ActorID is the authenticated caller, empty on public routes.
	ActorID string
}
