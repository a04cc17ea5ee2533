// Package email defines the injected mail capability. Actual transport is
// out of scope for this service; production wires an SMTP or provider
// implementation behind Sender.
package email

import (
	"context"
	"log/slog"
)

// Message is a plain-text email.
type Message struct {
	Recipient string
	Subject   string
	Body      string
}

// Sender delivers a message out of band. Failures must be surfaced to the
// caller: registration rolls back its staged record when delivery fails.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender logs messages instead of delivering them. Development only —
// the OTP ends up in the process log.
type LogSender struct {
	logger *slog.Logger
}

func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Send(ctx context.Context, msg Message) error {
	s.logger.InfoContext(ctx, "email (log sender)",
		"recipient", msg.Recipient,
		"subject", msg.Subject,
		"body", msg.Body,
	)
	return nil
}
