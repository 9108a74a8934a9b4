package mailer

import (
	"context"

	"github.com/google/uuid"

	"github.com/skypark/bookings/pkg/logger"
)

// LogMailer prints messages instead of sending them.
type LogMailer struct{}

func NewLogMailer() *LogMailer { return &LogMailer{} }

func (LogMailer) Send(ctx context.Context, in Message) (string, error) {
	id := uuid.NewString()
	names := make([]string, 0, len(in.Attachments))
	for _, a := range in.Attachments {
		names = append(names, a.Filename)
	}
	logger.InfoContext(ctx, "email (dev mode)",
		"message_id", id,
		"to", in.ToEmail,
		"subject", in.Subject,
		"attachments", names,
		"text", in.Text,
	)
	return id, nil
}
