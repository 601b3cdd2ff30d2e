// Package events holds the payloads written as audit log metadata.
package events

import "time"

const (
	ActionUserRegistered         = "user_registered"
	ActionLoginSucceeded         = "login_succeeded"
	ActionLoginFailed            = "login_failed"
	ActionAccountLocked          = "account_locked"
	ActionMFAChallengeIssued     = "mfa_challenge_issued"
	ActionMFAVerified            = "mfa_verified"
	ActionMFAFailed              = "mfa_failed"
	ActionPasswordChanged        = "password_changed"
	ActionPasswordResetRequested = "password_reset_requested"
	ActionPasswordReset          = "password_reset"
	ActionLogout                 = "logout"
	ActionAccountUnlocked        = "account_unlocked"
	ActionMFAEnabled             = "mfa_enabled"
	ActionMFADisabled            = "mfa_disabled"
)

type UserRegistered struct {
	UserID       string    `json:"userId"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Roles        []string  `json:"roles"`
	RegisteredBy string    `json:"registeredBy,omitempty"`
	At           time.Time `json:"at"`
}

type LoginAttempt struct {
	Username string    `json:"username"`
	Reason   string    `json:"reason,omitempty"`
	Attempts int       `json:"failedAttempts,omitempty"`
	At       time.Time `json:"at"`
}

type AccountLocked struct {
	UserID      string    `json:"userId"`
	Attempts    int       `json:"failedAttempts"`
	LockedUntil time.Time `json:"lockedUntil"`
}

type AccountUnlocked struct {
	UserID     string    `json:"userId"`
	UnlockedBy string    `json:"unlockedBy,omitempty"`
	At         time.Time `json:"at"`
}

type MFAChallenge struct {
	UserID    string    `json:"userId"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expiresAt,omitempty"`
	Delivered bool      `json:"delivered"`
}

type MFAResult struct {
	UserID string    `json:"userId"`
	Method string    `json:"method"`
	At     time.Time `json:"at"`
}
