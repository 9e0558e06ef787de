package email

import (
	"context"

	gomail "gopkg.in/gomail.v2"

	apperrors "barbearia/pkg/errors"
)

// SMTPConfig is loaded from the environment (see internal/config). The
// transport is fully described here so tests and deployments can swap it
// without touching the dispatcher.
type SMTPConfig struct {
	Host     string `envconfig:"SMTP_HOST" default:"localhost"`
	Port     int    `envconfig:"SMTP_PORT" default:"587"`
	Username string `envconfig:"SMTP_USERNAME"`
	Password string `envconfig:"SMTP_PASSWORD"`
	From     string `envconfig:"SMTP_FROM" default:"no-reply@barbearia.local"`
}

// SMTPSender delivers messages over SMTP via gomail.
type SMTPSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewSMTPSender(cfg SMTPConfig) *SMTPSender {
	return &SMTPSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

func (s *SMTPSender) Send(ctx context.Context, msg *Message) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/html", msg.HTMLBody)

	if err := s.dialer.DialAndSend(m); err != nil {
		return apperrors.Delivery("smtp delivery failed", err)
	}
	return nil
}

var _ Service = (*SMTPSender)(nil)
