package notify

import (
	"context"

	"go.uber.org/zap"
)

// Notification is the payload handed to the dispatcher. URL points the
// member at the screen where they can act on the message.
type Notification struct {
	Title string
	Body  string
	URL   string
}

// Notifier dispatches a notification to a single member. Delivery is
// best effort: callers log failures and carry on, they never fail the
// triggering operation because a notification could not be sent.
type Notifier interface {
	Notify(ctx context.Context, memberID string, n Notification) error
}

// LogNotifier writes notifications to the structured log. It stands in
// for a real push/email transport, which is owned by an external system.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, memberID string, msg Notification) error {
	n.logger.Info("notify",
		zap.String("member_id", memberID),
		zap.String("title", msg.Title),
		zap.String("body", msg.Body),
		zap.String("url", msg.URL),
	)
	return nil
}
