package realtime

import (
	"context"
	"encoding/json"
	"time"

	pubsub "cloud.google.com/go/pubsub/v2"
	"github.com/irmandades/ghala-backend/pkg/logger"
)

// Change describes one mutation of a dashboard table. Connected clients use
// it as a hint to refetch; the payload never carries row data.
type Change struct {
	Table      string    `json:"table"`
	EntityID   string    `json:"entity_id"`
	Action     string    `json:"action"`
	OccurredAt time.Time `json:"occurred_at"`
}

const (
	ActionCreated = "created"
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Notifier fans out change hints after successful mutations.
type Notifier interface {
	Notify(ctx context.Context, table, entityID, action string)
}

type notifier struct {
	publisher *pubsub.Publisher
	logg      *logger.Logger
}

// NewNotifier wraps a change-feed publisher. Publishing is best effort:
// failures are logged and never surfaced to the caller.
func NewNotifier(publisher *pubsub.Publisher, logg *logger.Logger) Notifier {
	if publisher == nil {
		return nopNotifier{}
	}
	return &notifier{publisher: publisher, logg: logg}
}

func (n *notifier) Notify(ctx context.Context, table, entityID, action string) {
	change := Change{
		Table:      table,
		EntityID:   entityID,
		Action:     action,
		OccurredAt: time.Now().UTC(),
	}
	payload, err := json.Marshal(change)
	if err != nil {
		if n.logg != nil {
			n.logg.Error(ctx, "marshal change notification", err)
		}
		return
	}

	result := n.publisher.Publish(ctx, &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"table":  table,
			"action": action,
		},
	})
	if _, err := result.Get(ctx); err != nil {
		if n.logg != nil {
			n.logg.Error(ctx, "publish change notification", err)
		}
	}
}

type nopNotifier struct{}

// NewNopNotifier returns a notifier that drops every change. Used when the
// change feed is not configured.
func NewNopNotifier() Notifier { return nopNotifier{} }

func (nopNotifier) Notify(ctx context.Context, table, entityID, action string) {}
