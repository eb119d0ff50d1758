package mail

import (
	"context"
	"time"

	gomail "github.com/go-mail/mail/v2"

	"github.com/lessismore22/Quickfund/internal/config"
)

// Sender delivers HTML mail over SMTP. A disabled sender accepts every
// message and drops it, so local and mock setups need no SMTP server.
type Sender struct {
	dialer  *gomail.Dialer
	from    string
	enabled bool
}

func NewSender(cfg config.Config) *Sender {
	d := gomail.NewDialer(cfg.SMTPHost, int(cfg.SMTPPort), cfg.SMTPUsername, cfg.SMTPPassword)
	d.Timeout = 10 * time.Second
	return &Sender{
		dialer:  d,
		from:    cfg.MailFrom,
		enabled: cfg.MailEnabled,
	}
}

func (s *Sender) SendHTML(ctx context.Context, to, subject, htmlBody string) error {
	if !s.enabled {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	return s.dialer.DialAndSend(m)
}
