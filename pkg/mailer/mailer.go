package mailer

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/elizabethadegbaju/crystalims/pkg/config"
	"github.com/elizabethadegbaju/crystalims/pkg/logger"
)

// Mailer delivers transactional email.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

type smtpMailer struct {
	cfg config.SMTPConfig
}

// NewSMTP returns a Mailer backed by plain SMTP with optional auth.
func NewSMTP(cfg config.SMTPConfig) (Mailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	if cfg.From == "" {
		return nil, fmt.Errorf("smtp from address is required")
	}
	return &smtpMailer{cfg: cfg}, nil
}

func (m *smtpMailer) Send(_ context.Context, to, subject, body string) error {
	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("recipient is required")
	}

	msg := strings.Builder{}
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n")
	msg.WriteString(body)

	addr := fmt.Sprintf("%s:%d", m.cfg.Host, m.cfg.Port)
	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}
	if err := smtp.SendMail(addr, auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}

type logMailer struct {
	logg *logger.Logger
}

// NewLog returns a Mailer that only logs deliveries, for dev environments
// without an SMTP relay.
func NewLog(logg *logger.Logger) Mailer {
	return &logMailer{logg: logg}
}

func (m *logMailer) Send(ctx context.Context, to, subject, _ string) error {
	ctx = m.logg.WithFields(ctx, map[string]any{"to": to, "subject": subject})
	m.logg.Info(ctx, "mail delivery skipped (log mailer)")
	return nil
}
