// Package notify is the boundary to platform notification delivery. The
// core's contract: exactly one notification per qualifying chat append or
// status transition, never for the actor's own messages. How the event
// reaches a device is the collaborator's problem.
package notify

import (
	"context"
	"io"
	"log"

	"plugdrop/internal/domain"
)

// Notification is the event handed to the delivery collaborator.
type Notification struct {
	Title     string      `json:"title"`
	Body      string      `json:"body,omitempty"`
	Recipient domain.Role `json:"recipientRole"`
	OrderID   string      `json:"orderId"`
}

// Notifier delivers notifications best-effort. Delivery failures must not
// fail the mutation that triggered them.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to a logger. Default when no broker is
// configured, and handy in tests.
type LogNotifier struct {
	logger *log.Logger
}

func NewLog(logger *log.Logger) *LogNotifier {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &LogNotifier{logger: logger}
}

func (l *LogNotifier) Notify(_ context.Context, n Notification) {
	l.logger.Printf("notify: order=%s recipient=%s title=%q", n.OrderID, n.Recipient, n.Title)
}
