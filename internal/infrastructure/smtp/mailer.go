package smtp

import (
	"fmt"
	"net/smtp"

	"github.com/siuupriyanshu/auth-core/internal/config"
)

// Mailer sends emails.
type Mailer interface {
	SendEmail(to, subject, body string) error
}

type mailer struct {
	host     string
	port     string
	from     string
	username string
	password string
}

func NewMailer(cfg *config.Config) Mailer {
	return &mailer{
		host:     cfg.SMTPHost,
		port:     cfg.SMTPPort,
		from:     cfg.SMTPFrom,
		username: cfg.SMTPUsername,
		password: cfg.SMTPPassword,
	}
}

func (m *mailer) SendEmail(to, subject, body string) error {
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s", m.from, to, subject, body)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	return smtp.SendMail(addr, auth, m.from, []string{to}, []byte(msg))
}

// VerificationBody renders the plain-text email carrying the verification link.
func VerificationBody(link string) string {
	return "Hi,\n\nPlease verify your email by clicking the link below:\n" +
		link + "\n\nIf you didn't sign up, you can ignore this email.\n"
}

// ResetBody renders the plain-text email carrying the password reset link.
func ResetBody(link string) string {
	return "Hi,\n\nWe received a request to reset your password. Use the link below:\n" +
		link + "\n\nIf you didn't request this, you can ignore this email.\n"
}
