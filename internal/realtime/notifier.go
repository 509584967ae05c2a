package realtime

import (
	"context"
	"encoding/json"
	"time"

	"userhub/internal/model"
	"userhub/internal/service"
	"userhub/internal/worker"
)

const publishTimeout = 3 * time.Second

// Notifier pushes events without blocking the caller. Publishing runs on
// the worker pool; when its queue is full the event is dropped and logged.
type Notifier struct {
	broker Broker
	pool   worker.Pool
	log    service.Logger
}

func NewNotifier(b Broker, p worker.Pool, logger service.Logger) *Notifier {
	return &Notifier{broker: b, pool: p, log: logger}
}

// Push sends an event of eventType on topic. Delivery is best effort.
func (n *Notifier) Push(topic, eventType string, data any) {
	payload, err := json.Marshal(NewEvent(topic, eventType, data))
	if err != nil {
		n.log.Errorf("realtime: encode %s: %v", eventType, err)
		return
	}

	accepted := n.pool.TrySubmit(func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := n.broker.Publish(ctx, topic, payload); err != nil {
			n.log.Warnf("realtime: publish %s on %s: %v", eventType, topic, err)
		}
	})
	if !accepted {
		n.log.Warnf("realtime: queue full, dropped %s on %s", eventType, topic)
	}
}

// UserCreated implements service.UserEvents. The event goes to the new
// user's own topic and to the admin feed.
func (n *Notifier) UserCreated(u model.User) {
	n.Push(TopicForUser(u.ID), EventUserCreated, u)
	n.Push(TopicAllUsers, EventUserCreated, u)
}
