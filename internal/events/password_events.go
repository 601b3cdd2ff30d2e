package events

import "time"

type PasswordChanged struct {
	UserID    string     `json:"userId"`
	Via       string     `json:"via"`
	ExpiresAt *time.Time `json:"expiresAt,omitempty"`
	At        time.Time  `json:"at"`
}

type PasswordResetRequested struct {
	UserID    string    `json:"userId"`
	ExpiresAt time.Time `json:"expiresAt"`
	Delivered bool      `json:"delivered"`
}

type SessionEnded struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}
