package notify

import (
	"context"
	"log/slog"

	"github.com/springlanenursery/spring-lane-nursery-app-sub001/internal/provider"
)

// LogMailer logs messages instead of sending them. It is used when email
// delivery is disabled.
type LogMailer struct {
	log *slog.Logger
}

// NewLogMailer creates a LogMailer.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	return &LogMailer{log: logger.With("adapter", "log_mailer")}
}

func (m *LogMailer) Send(ctx context.Context, msg provider.Email) error {
	m.log.InfoContext(ctx, "email delivery disabled, message logged",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("attachments", len(msg.Attachments)),
	)
	return nil
}
