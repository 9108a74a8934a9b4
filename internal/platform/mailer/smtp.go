package mailer

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"gopkg.in/mail.v2"
)

type SMTPMailer struct {
	dialer   *mail.Dialer
	from     string
	fromName string
}

// NewSMTPMailer works against Mailpit on 1025 (no auth) as well as a real
// relay. STARTTLS is used when the server offers it.
func NewSMTPMailer(host string, port int, fromName, from, user, pass string) *SMTPMailer {
	d := mail.NewDialer(strings.TrimSpace(host), port, strings.TrimSpace(user), strings.TrimSpace(pass))
	d.StartTLSPolicy = mail.OpportunisticStartTLS
	if port == 465 {
		d.SSL = true
	}
	return &SMTPMailer{
		dialer:   d,
		from:     strings.TrimSpace(from),
		fromName: fromName,
	}
}

func (s *SMTPMailer) Send(ctx context.Context, in Message) (string, error) {
	to := strings.TrimSpace(in.ToEmail)
	if to == "" {
		return "", fmt.Errorf("empty recipient email")
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetAddressHeader("To", to, in.ToName)
	m.SetHeader("Subject", in.Subject)
	m.SetBody("text/plain", in.Text)
	if strings.TrimSpace(in.HTML) != "" {
		m.AddAlternative("text/html", in.HTML)
	}
	for _, a := range in.Attachments {
		m.AttachReader(a.Filename, bytes.NewReader(a.Content))
	}

	if err := s.dialer.DialAndSend(m); err != nil {
		return "", fmt.Errorf("smtp send failed: %w", err)
	}
	return "", nil
}
