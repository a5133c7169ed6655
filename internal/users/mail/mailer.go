package mail

import (
	"context"

	"github.com/chirpnet/chirp/pkg/slogx"
)

// Mailer delivers the account flow emails. Sends are fire-and-forget from
// the caller's perspective; implementations report errors for logging only.
type Mailer interface {
	// SendVerificationEmail mails the email-verification link.
	SendVerificationEmail(ctx context.Context, toEmail, token string) error

	// SendPasswordResetEmail mails the password-reset link.
	SendPasswordResetEmail(ctx context.Context, toEmail, token string) error
}

// LogMailer writes the links to the log instead of sending mail. Used in
// development when no SMTP host is configured.
type LogMailer struct{}

func (LogMailer) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	slogx.FromContext(ctx).Info("verification email (smtp disabled)",
		"email", toEmail,
		"token", token,
	)
	return nil
}

func (LogMailer) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	slogx.FromContext(ctx).Info("password reset email (smtp disabled)",
		"email", toEmail,
		"token", token,
	)
	return nil
}
