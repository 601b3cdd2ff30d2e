// Package mail delivers the one-time codes and reset links produced by the auth flows.
package mail

import (
	"fmt"
	"time"
)

type Email struct {
	Subject string
	Body    string
	From    string
	To      []string
}

func mfaOtpEmail(from, to, code string, expiresAt time.Time) *Email {
	return &Email{
		From:    from,
		To:      []string{to},
		Subject: "Your HRMS verification code",
		Body: fmt.Sprintf("Your verification code is %s.\n\nIt expires at %s UTC. If you did not try to sign in, contact your administrator.",
			code, expiresAt.UTC().Format("15:04")),
	}
}

func passwordResetEmail(from, to, link string, expiresAt time.Time) *Email {
	return &Email{
		From:    from,
		To:      []string{to},
		Subject: "Reset your HRMS password",
		Body: fmt.Sprintf("A password reset was requested for your account.\n\nOpen this link to choose a new password:\n%s\n\nThe link expires at %s UTC. If you did not request a reset, ignore this email.",
			link, expiresAt.UTC().Format("15:04")),
	}
}
