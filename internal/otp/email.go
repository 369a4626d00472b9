package otp

import (
	"fmt"

	"github.com/folioworks/identity/config"
	"gopkg.in/gomail.v2"
)

// EmailSender sends verification codes over SMTP.
type EmailSender struct {
	dialer *gomail.Dialer
	from   string
}

func NewEmailSender(cfg config.SMTPConfig) *EmailSender {
	return &EmailSender{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
	}
}

// SendCode emails a one-time verification code.
func (s *EmailSender) SendCode(to, code string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", "Your verification code")
	m.SetBody("text/plain", fmt.Sprintf(
		"Your verification code is %s.\n\nIf you did not request this code, you can ignore this message.\n", code))

	return s.dialer.DialAndSend(m)
}
