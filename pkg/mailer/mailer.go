// Package mailer sends plain-text notification emails over SMTP with
// STARTTLS. When SMTP is not configured the mailer logs and drops the
// message instead of failing the caller.
package mailer

import (
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/afisha-events/backend/config"
)

// Mailer sends notification emails.
type Mailer struct {
	cfg    config.EmailConfig
	logger *zap.Logger
}

// New creates a Mailer from email config.
func New(cfg config.EmailConfig, logger *zap.Logger) *Mailer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Mailer{cfg: cfg, logger: logger}
}

// Configured reports whether SMTP credentials are present.
func (m *Mailer) Configured() bool {
	return m.cfg.SMTPHost != "" && m.cfg.SMTPUser != "" && m.cfg.SMTPPass != ""
}

// Send delivers a plain-text email to a single recipient.
func (m *Mailer) Send(to, subject, body string) error {
	if !m.Configured() {
		m.logger.Warn("SMTP not configured, dropping email",
			zap.String("to", to), zap.String("subject", subject))
		return nil
	}

	from := m.cfg.FromAddress
	msg := buildMessage(m.cfg.FromName, from, to, subject, body)

	addr := fmt.Sprintf("%s:%d", m.cfg.SMTPHost, m.cfg.SMTPPort)
	auth := smtp.PlainAuth("", m.cfg.SMTPUser, m.cfg.SMTPPass, m.cfg.SMTPHost)
	if err := smtp.SendMail(addr, auth, from, []string{to}, msg); err != nil {
		return fmt.Errorf("send mail: %w", err)
	}
	m.logger.Info("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

func buildMessage(fromName, from, to, subject, body string) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s <%s>\r\n", fromName, from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(body)
	return []byte(b.String())
}
