package realtime

import (
	"context"
	"errors"
	"testing"
	"time"

	"userhub/internal/cache"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisBrokerPublish(t *testing.T) {
	var gotChannel string
	var gotMessage any
	fc := &cache.FakeCache{PublishFn: func(_ context.Context, channel string, message any) *redis.IntCmd {
		gotChannel, gotMessage = channel, message
		return redis.NewIntResult(1, nil)
	}}

	err := NewRedisBroker(fc).Publish(context.Background(), "users.3", []byte(`{"a":1}`))
	require.NoError(t, err)
	require.Equal(t, "userhub:users.3", gotChannel)
	require.Equal(t, []byte(`{"a":1}`), gotMessage)
}

func TestRedisBrokerPublishError(t *testing.T) {
	fc := &cache.FakeCache{PublishFn: func(context.Context, string, any) *redis.IntCmd {
		return redis.NewIntResult(0, errors.New("conn reset"))
	}}
	err := NewRedisBroker(fc).Publish(context.Background(), "users.3", nil)
	require.EqualError(t, err, "conn reset")
}

func TestRedisBrokerListenUnreachable(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 200 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	err := NewRedisBroker(rdb).Listen(ctx, newTestHub(t))
	require.Error(t, err)
}

func TestLocalBroker(t *testing.T) {
	h := newTestHub(t)
	conn := newFakeConn()
	c, err := h.Accept(conn, "users.5")
	require.NoError(t, err)
	go c.Serve()

	require.NoError(t, NewLocalBroker(h).Publish(context.Background(), "users.5", []byte("hi")))
	select {
	case msg := <-conn.wrote:
		require.Equal(t, "hi", string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}
}
