package mailer

import (
	"context"
	"fmt"

	"github.com/go-gomail/gomail"
	"go.uber.org/zap"

	"github.com/classicdental/dental-scheduler/internal/config"
)

// Sender delivers the password-reset code to a user.
type Sender interface {
	SendResetCode(ctx context.Context, to, code string) error
}

// New returns an SMTP sender when SMTP is configured and a logging sender
// otherwise.
func New(cfg config.SMTPConfig, log *zap.Logger) Sender {
	if !cfg.Enabled() {
		return &LogSender{log: log}
	}
	return &SMTPSender{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

// ======================================================
// SMTP
// ======================================================

type SMTPSender struct {
	from   string
	dialer *gomail.Dialer
}

func (s *SMTPSender) SendResetCode(_ context.Context, to, code string) error {
	m := resetMessage(s.from, to, code)
	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("send reset code: %w", err)
	}
	return nil
}

func resetMessage(from, to, code string) *gomail.Message {
	m := gomail.NewMessage()
	m.SetHeader("From", from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Classic Dental password reset code")
	m.SetBody("text/plain", resetBody(code))
	return m
}

func resetBody(code string) string {
	return fmt.Sprintf(
		"Your password reset code is %s.\n\n"+
			"It expires shortly and can only be used once. "+
			"If you did not ask for a reset, ignore this email.\n",
		code,
	)
}

// ======================================================
// DEV
// ======================================================

// LogSender writes deliveries to the log. Used when SMTP is not configured.
type LogSender struct {
	log *zap.Logger
}

func (s *LogSender) SendResetCode(_ context.Context, to, code string) error {
	s.log.Info("reset code (smtp disabled)",
		zap.String("to", to),
		zap.String("code", code))
	return nil
}
