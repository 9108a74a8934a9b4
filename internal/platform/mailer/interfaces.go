package mailer

import (
	"context"

	"github.com/skypark/bookings/pkg/config"
	"github.com/skypark/bookings/pkg/logger"
)

type Attachment struct {
	Filename string
	Content  []byte
}

type Message struct {
	ToEmail     string
	ToName      string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

// Service sends a message and returns the provider message id when it has one.
type Service interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// New picks the transport: dev mode logs, a MailerSend key selects the API,
// anything else goes over SMTP.
func New(cfg config.EmailConfig) Service {
	switch {
	case cfg.DevMode:
		logger.Info("mailer: dev mode, emails are logged only")
		return NewLogMailer()
	case cfg.MailerSendKey != "":
		logger.Info("mailer: using MailerSend")
		return NewMailer(cfg.MailerSendKey, cfg.FromName, cfg.SMTPFrom)
	default:
		logger.Info("mailer: using SMTP", "host", cfg.SMTPHost, "port", cfg.SMTPPort)
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.FromName, cfg.SMTPFrom, cfg.SMTPUser, cfg.SMTPPass)
	}
}
