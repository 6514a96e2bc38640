// Package mail sends transactional email. Callers treat delivery as best
// effort; a failed send never fails the business operation that asked for it.
package mail

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"gopkg.in/gomail.v2"

	"github.com/doppler-bar/barpos/internal/config"
)

type Sender interface {
	Send(to, subject, body string) error
}

type smtpSender struct {
	dialer *gomail.Dialer
	from   string
}

// NewSender returns an SMTP-backed sender, or a logging no-op when the SMTP
// host is not configured so the rest of the system works without a mail
// server.
func NewSender(cfg config.SMTPConfig) Sender {
	if cfg.Host == "" {
		log.Warn().Msg("SMTP host not configured, outgoing email will only be logged")
		return &logSender{}
	}
	return &smtpSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
	}
}

func (s *smtpSender) Send(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/plain", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("mail: failed to send to %s: %w", to, err)
	}
	return nil
}

type logSender struct{}

func (s *logSender) Send(to, subject, body string) error {
	log.Info().Str("to", to).Str("subject", subject).Msg("Email suppressed (no SMTP configured)")
	return nil
}
