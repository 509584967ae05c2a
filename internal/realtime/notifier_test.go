package realtime

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"userhub/internal/model"
	"userhub/internal/worker"

	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/require"
)

type stubPool struct {
	accept bool
	tasks  []worker.Task
}

func (p *stubPool) Submit(t worker.Task) { p.tasks = append(p.tasks, t) }

func (p *stubPool) TrySubmit(t worker.Task) bool {
	if !p.accept {
		return false
	}
	p.tasks = append(p.tasks, t)
	return true
}

func (p *stubPool) Stop() {}

type recordBroker struct {
	topic   string
	payload []byte
	err     error
}

func (b *recordBroker) Publish(_ context.Context, topic string, payload []byte) error {
	b.topic, b.payload = topic, payload
	return b.err
}

func fixEventClock() {
	newEventID = func() string { return "evt-1" }
	eventNow = func() time.Time { return time.Date(2025, 5, 1, 12, 0, 0, 0, time.UTC) }
}

func newBufLogger() (*log.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := log.New("test")
	l.SetOutput(buf)
	return l, buf
}

func TestNotifierUserCreated(t *testing.T) {
	origID, origNow := newEventID, eventNow
	t.Cleanup(func() { newEventID, eventNow = origID, origNow })
	fixEventClock()

	logger, _ := newBufLogger()
	pool := &stubPool{accept: true}
	b := &recordBroker{}
	n := NewNotifier(b, pool, logger)

	n.UserCreated(model.User{ID: 7, Username: "alice", Email: "a@x.com", PasswordHash: "secret"})
	require.Len(t, pool.tasks, 2)
	require.Empty(t, b.topic, "publish must not run on the caller")

	pool.tasks[1]()
	require.Equal(t, TopicAllUsers, b.topic)

	pool.tasks[0]()
	require.Equal(t, "users.7", b.topic)

	var ev map[string]any
	require.NoError(t, json.Unmarshal(b.payload, &ev))
	require.Equal(t, "evt-1", ev["id"])
	require.Equal(t, EventUserCreated, ev["type"])
	require.Equal(t, "users.7", ev["topic"])
	require.Equal(t, "2025-05-01T12:00:00Z", ev["occurred_at"])
	data := ev["data"].(map[string]any)
	require.Equal(t, "alice", data["username"])
	require.NotContains(t, string(b.payload), "secret")
}

func TestNotifierQueueFull(t *testing.T) {
	logger, buf := newBufLogger()
	b := &recordBroker{}
	n := NewNotifier(b, &stubPool{accept: false}, logger)

	n.Push("users.1", EventUserCreated, nil)
	require.Empty(t, b.topic)
	require.Contains(t, buf.String(), "queue full")
}

func TestNotifierPublishFailureLogged(t *testing.T) {
	logger, buf := newBufLogger()
	pool := &stubPool{accept: true}
	n := NewNotifier(&recordBroker{err: errors.New("redis down")}, pool, logger)

	n.Push("users.1", EventUserCreated, nil)
	pool.tasks[0]()
	require.Contains(t, buf.String(), "redis down")
}

func TestNotifierEncodeFailure(t *testing.T) {
	logger, buf := newBufLogger()
	pool := &stubPool{accept: true}
	n := NewNotifier(&recordBroker{}, pool, logger)

	n.Push("users.1", "bad", make(chan int))
	require.Empty(t, pool.tasks)
	require.Contains(t, buf.String(), "encode")
}
