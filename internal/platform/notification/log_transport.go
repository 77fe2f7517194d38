package notification

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogTransport writes notices to the log instead of delivering them. Used in
// development and in deployments where delivery is handled out-of-band.
type LogTransport struct {
	Logger zerolog.Logger
}

func (t *LogTransport) SendEmail(_ context.Context, to, subject, body string) error {
	t.Logger.Info().Str("channel", "email").Str("to", to).Str("subject", subject).Msg(body)
	return nil
}

func (t *LogTransport) SendSMS(_ context.Context, to, body string) error {
	t.Logger.Info().Str("channel", "sms").Str("to", to).Msg(body)
	return nil
}

// StaticDirectory routes every escalation to a single configured contact.
type StaticDirectory struct {
	Email string
	Phone string
}

func (d *StaticDirectory) SupervisorContact(_ context.Context, _ uuid.UUID) (string, string, error) {
	return d.Email, d.Phone, nil
}
