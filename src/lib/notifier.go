package lib

import (
	"context"

	log "github.com/sirupsen/logrus"
)

// Notifier hands a rendered ticket mail to some transport. A nil error means
// the transport accepted the message.
type Notifier interface {
	Name() string
	Send(ctx context.Context, to, subject, body string) error
}

// LogNotifier only records the delivery. Used for local runs.
type LogNotifier struct {
	logger log.FieldLogger
}

func NewLogNotifier() *LogNotifier {
	return &LogNotifier{logger: log.WithField("component", "notifier")}
}

func (n *LogNotifier) Name() string {
	return "log"
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, body string) error {
	n.logger.WithFields(log.Fields{
		"to":      to,
		"subject": subject,
		"size":    len(body),
	}).Info("[Notifier] Ticket delivered")
	return nil
}
