// Package notification delivers outbound SMS.
package notification

import (
	"context"
	"log/slog"
)

const (
	// KindMorningPrompt is the daily goal-setting prompt.
	KindMorningPrompt = "morning_prompt"
	// KindEveningStatus is the daily progress check-in.
	KindEveningStatus = "evening_status"
)

// Message describes an outbound SMS.
type Message struct {
	Kind string
	To   string
	Body string
}

// Sender delivers messages. Callers log failures and carry on.
type Sender interface {
	Send(ctx context.Context, message Message) error
}

// LoggerSender writes messages to the structured logger instead of sending
// them. It is used when no provider credentials are configured.
type LoggerSender struct {
	logger *slog.Logger
}

// NewLoggerSender constructs a logging sender.
func NewLoggerSender(logger *slog.Logger) *LoggerSender {
	return &LoggerSender{logger: logger}
}

// Send writes the message to the logger.
func (s *LoggerSender) Send(_ context.Context, message Message) error {
	if s == nil || s.logger == nil {
		return nil
	}
	s.logger.Info("sms", "kind", message.Kind, "to", message.To, "body", message.Body)
	return nil
}
