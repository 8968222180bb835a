package email

import (
	"context"

	"github.com/rs/zerolog"
)

// LogNotifier writes messages to the log instead of delivering them. Used in
// development and when no mail provider is configured.
type LogNotifier struct {
	logger zerolog.Logger
}

func NewLogNotifier(logger zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Send(_ context.Context, msg *Message) error {
	n.logger.Info().
		Str("template", string(msg.Template)).
		Str("to", msg.To.String()).
		Str("subject", msg.Subject).
		Str("body", msg.TextContent).
		Msg("Notification (log provider, not delivered)")
	return nil
}
