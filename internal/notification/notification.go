package notification

import (
	"context"
	"log/slog"
)

const (
	// KindPayoutSubmitted indicates a payout request was accepted.
	KindPayoutSubmitted = "payout_submitted"
	// KindPayoutCancelled indicates a pending payout was cancelled.
	KindPayoutCancelled = "payout_cancelled"
	// KindStatusInquiry indicates a transaction status re-check completed.
	KindStatusInquiry = "status_inquiry"
)

// Message describes a notification payload shown to the operator.
type Message struct {
	Kind        string
	Destination string
	Body        string
}

// Notifier delivers operator-facing notifications (the toast analog).
type Notifier interface {
	Send(ctx context.Context, message Message) error
}

// LoggerNotifier writes notifications to the structured logger.
type LoggerNotifier struct {
	logger *slog.Logger
}

// NewLoggerNotifier constructs a logging notifier.
func NewLoggerNotifier(logger *slog.Logger) *LoggerNotifier {
	return &LoggerNotifier{logger: logger}
}

// Send writes the message to the structured logger.
func (n *LoggerNotifier) Send(_ context.Context, message Message) error {
	if n == nil || n.logger == nil {
		return nil
	}
	n.logger.Info("notification", "kind", message.Kind, "destination", message.Destination, "body", message.Body)
	return nil
}
