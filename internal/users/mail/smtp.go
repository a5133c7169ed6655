package mail

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/chirpnet/chirp/pkg/slogx"
)

const verifyTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Verify your email address</h2>
    <p>Thanks for signing up to Chirp! Click the link below to verify your email address and activate your account.</p>
    <p><a href="{{.Link}}">Verify Email Address</a></p>
    <p>Or copy and paste this link into your browser:</p>
    <p style="word-break: break-all;">{{.Link}}</p>
    <p>If you didn't create an account, you can safely ignore this email.</p>
    <p style="font-size: 12px; color: #666;">This link will expire in 24 hours.</p>
</body>
</html>
`

const resetTemplate = `
<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Reset your password</h2>
    <p>You requested to reset your Chirp password. Click the link below to choose a new one.</p>
    <p><a href="{{.Link}}">Reset Password</a></p>
    <p>Or copy and paste this link into your browser:</p>
    <p style="word-break: break-all;">{{.Link}}</p>
    <p>If you didn't request a password reset, you can safely ignore this email. Your password will remain unchanged.</p>
    <p style="font-size: 12px; color: #666;">This link will expire in 1 hour.</p>
</body>
</html>
`

// SMTPMailer sends the account flow emails over plain SMTP.
type SMTPMailer struct {
	host      string
	port      string
	user      string
	password  string
	fromEmail string
	appURL    string

	verifyTmpl *template.Template
	resetTmpl  *template.Template
}

func NewSMTPMailer(host, port, user, password, appURL string) (*SMTPMailer, error) {
	verifyTmpl, err := template.New("verify").Parse(verifyTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse verify template: %w", err)
	}
	resetTmpl, err := template.New("reset").Parse(resetTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse reset template: %w", err)
	}

	return &SMTPMailer{
		host:       host,
		port:       port,
		user:       user,
		password:   password,
		fromEmail:  user,
		appURL:     appURL,
		verifyTmpl: verifyTmpl,
		resetTmpl:  resetTmpl,
	}, nil
}

func (m *SMTPMailer) SendVerificationEmail(ctx context.Context, toEmail, token string) error {
	log := slogx.FromContext(ctx)

	link := fmt.Sprintf("%s/verify-email?token=%s", m.appURL, token)
	body, err := render(m.verifyTmpl, link)
	if err != nil {
		log.Error("failed to render verification email", "err", err)
		return err
	}

	if err := m.send(toEmail, "Verify your email address", body); err != nil {
		log.Error("failed to send verification email", "email", toEmail, "err", err)
		return fmt.Errorf("send email: %w", err)
	}

	log.Info("verification email sent", "email", toEmail)
	return nil
}

func (m *SMTPMailer) SendPasswordResetEmail(ctx context.Context, toEmail, token string) error {
	log := slogx.FromContext(ctx)

	link := fmt.Sprintf("%s/reset-password?token=%s", m.appURL, token)
	body, err := render(m.resetTmpl, link)
	if err != nil {
		log.Error("failed to render password reset email", "err", err)
		return err
	}

	if err := m.send(toEmail, "Reset your password", body); err != nil {
		log.Error("failed to send password reset email", "email", toEmail, "err", err)
		return fmt.Errorf("send email: %w", err)
	}

	log.Info("password reset email sent", "email", toEmail)
	return nil
}

func render(tmpl *template.Template, link string) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, struct{ Link string }{Link: link}); err != nil {
		return "", fmt.Errorf("execute template: %w", err)
	}
	return buf.String(), nil
}

func (m *SMTPMailer) send(to, subject, body string) error {
	auth := smtp.PlainAuth("", m.user, m.password, m.host)

	msg := fmt.Appendf(nil,
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s\r\n",
		m.fromEmail, to, subject, body,
	)

	return smtp.SendMail(m.host+":"+m.port, auth, m.fromEmail, []string{to}, msg)
}
