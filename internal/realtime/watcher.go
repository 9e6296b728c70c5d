package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/irmandades/ghala-backend/pkg/logger"
)

// ChangeHandler reacts to one change hint. Returning an error nacks the
// message so delivery is retried.
type ChangeHandler func(ctx context.Context, change Change) error

// Watcher consumes the change feed and dispatches each hint to a handler.
type Watcher struct {
	subscriber *pubsub.Subscriber
	handler    ChangeHandler
	logg       *logger.Logger
}

// NewWatcher wires a change-feed consumer.
func NewWatcher(subscriber *pubsub.Subscriber, handler ChangeHandler, logg *logger.Logger) (*Watcher, error) {
	if subscriber == nil {
		return nil, fmt.Errorf("change subscriber required")
	}
	if handler == nil {
		return nil, fmt.Errorf("change handler required")
	}
	return &Watcher{
		subscriber: subscriber,
		handler:    handler,
		logg:       logg,
	}, nil
}

// Run blocks receiving change hints until the context is cancelled.
// Malformed payloads are acked and dropped; they would never parse on retry.
func (w *Watcher) Run(ctx context.Context) error {
	return w.subscriber.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		var change Change
		if err := json.Unmarshal(msg.Data, &change); err != nil {
			if w.logg != nil {
				w.logg.Error(ctx, "drop malformed change notification", err)
			}
			msg.Ack()
			return
		}

		if err := w.handler(ctx, change); err != nil {
			if w.logg != nil {
				w.logg.Error(ctx, "handle change notification", err)
			}
			msg.Nack()
			return
		}
		msg.Ack()
	})
}
