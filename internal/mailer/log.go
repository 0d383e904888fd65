package mailer

import (
	"context"

	"github.com/rs/zerolog"
)

// LogSender writes mail to the log instead of delivering it. Default in
// development; never enable it where real codes are in play, the body is
// logged verbatim.
type LogSender struct {
	log zerolog.Logger
}

func NewLogSender(log zerolog.Logger) *LogSender {
	return &LogSender{log: log}
}

func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.log.Info().
		Str("to", msg.To).
		Str("subject", msg.Subject).
		Str("body", msg.Body).
		Msg("mail (log backend)")
	return nil
}
