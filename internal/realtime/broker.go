package realtime

import (
	"context"
	"strings"

	"userhub/internal/cache"
)

// ChannelPrefix namespaces realtime topics on the Redis pub/sub bus.
const ChannelPrefix = "userhub:"

// Broker carries a topic payload to every instance's hub.
type Broker interface {
	Publish(ctx context.Context, topic string, payload []byte) error
}

// LocalBroker delivers straight into an in-process hub. Used when only a
// single instance runs, and in tests.
type LocalBroker struct {
	hub *Hub
}

func NewLocalBroker(h *Hub) *LocalBroker {
	return &LocalBroker{hub: h}
}

func (b *LocalBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.hub.Deliver(topic, payload)
	return nil
}

// RedisBroker publishes through Redis so every instance running Listen
// receives the payload, including the publisher itself.
type RedisBroker struct {
	cache cache.Cache
}

func NewRedisBroker(c cache.Cache) *RedisBroker {
	return &RedisBroker{cache: c}
}

func (b *RedisBroker) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.cache.Publish(ctx, ChannelPrefix+topic, payload).Err()
}

// Listen subscribes to every user topic and feeds messages into h until
// ctx is done or the subscription breaks.
func (b *RedisBroker) Listen(ctx context.Context, h *Hub) error {
	ps := b.cache.PSubscribe(ctx, ChannelPrefix+"users.*")
	defer ps.Close()

	// 等待訂閱確認，連線失敗時立即回報
	if _, err := ps.Receive(ctx); err != nil {
		return err
	}

	ch := ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			h.Deliver(strings.TrimPrefix(msg.Channel, ChannelPrefix), []byte(msg.Payload))
		}
	}
}
