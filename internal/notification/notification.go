package notification

import (
	"context"
	"log/slog"
)

const (
	// KindGoalReached indicates a deposit pushed a wallet past its savings goal.
	KindGoalReached = "goal_reached"
	// KindOverdraft indicates a confirmed withdrawal drove a wallet negative.
	KindOverdraft = "overdraft"
)

// Message describes a notification payload.
type Message struct {
	Kind      string
	Principal string
	Wallet    string
	Body      string
}

// Notifier delivers notifications to downstream systems.
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier is a stub implementation that writes notifications to the logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier stub.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification",
		"kind", message.Kind,
		"principal", message.Principal,
		"wallet", message.Wallet,
		"body", message.Body)
	return nil
}
