package realtime

import (
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/gommon/log"
	"github.com/stretchr/testify/require"
)

// fakeConn 以 channel 模擬 websocket 連線
type fakeConn struct {
	mu      sync.Mutex
	written [][]byte
	closed  bool
	wrote   chan []byte
	reads   chan error
}

func newFakeConn() *fakeConn {
	return &fakeConn{wrote: make(chan []byte, 16), reads: make(chan error, 1)}
}

func (f *fakeConn) SetReadLimit(int64)                        {}
func (f *fakeConn) SetReadDeadline(time.Time) error           { return nil }
func (f *fakeConn) SetWriteDeadline(time.Time) error          { return nil }
func (f *fakeConn) SetPongHandler(func(string) error)         {}
func (f *fakeConn) WriteControl(int, []byte, time.Time) error { return nil }

func (f *fakeConn) ReadMessage() (int, []byte, error) {
	err, ok := <-f.reads
	if !ok {
		return 0, nil, io.EOF
	}
	return 0, nil, err
}

func (f *fakeConn) WriteMessage(mt int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if mt == websocket.TextMessage {
		f.written = append(f.written, data)
		f.wrote <- data
	}
	return nil
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.reads)
	}
	return nil
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func newTestHub(t *testing.T) *Hub {
	t.Helper()
	logger := log.New("test")
	logger.SetOutput(io.Discard)
	h := NewHub(logger)
	t.Cleanup(h.Close)
	return h
}

func TestTopicForUser(t *testing.T) {
	require.Equal(t, "users.42", TopicForUser(42))
}

func TestAcceptRejects(t *testing.T) {
	h := newTestHub(t)

	_, err := h.Accept(newFakeConn(), "")
	require.ErrorIs(t, err, ErrRejected)

	h.Close()
	_, err = h.Accept(newFakeConn(), "users.1")
	require.ErrorIs(t, err, ErrRejected)
}

func TestDeliverToTopicOnly(t *testing.T) {
	h := newTestHub(t)

	a, b := newFakeConn(), newFakeConn()
	ca, err := h.Accept(a, "users.1")
	require.NoError(t, err)
	cb, err := h.Accept(b, "users.2")
	require.NoError(t, err)
	go ca.Serve()
	go cb.Serve()
	require.Equal(t, 1, h.Clients("users.1"))

	h.Deliver("users.1", []byte("hello"))
	select {
	case msg := <-a.wrote:
		require.Equal(t, "hello", string(msg))
	case <-time.After(2 * time.Second):
		t.Fatal("message not delivered")
	}

	h.Deliver("users.3", []byte("nobody"))
	select {
	case msg := <-b.wrote:
		t.Fatalf("unexpected message %q", msg)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestClientDisconnectUnregisters(t *testing.T) {
	h := newTestHub(t)

	conn := newFakeConn()
	c, err := h.Accept(conn, "users.7")
	require.NoError(t, err)
	done := make(chan struct{})
	go func() { c.Serve(); close(done) }()

	conn.reads <- errors.New("closed by peer")
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return")
	}
	require.Eventually(t, func() bool { return h.Clients("users.7") == 0 }, time.Second, 10*time.Millisecond)
	require.True(t, conn.isClosed())
}

func TestSlowClientDropped(t *testing.T) {
	h := newTestHub(t)

	// 不啟動 Serve，send buffer 不會被消耗
	c, err := h.Accept(newFakeConn(), "users.9")
	require.NoError(t, err)
	for i := 0; i <= sendBuffer; i++ {
		h.Deliver("users.9", []byte("x"))
	}
	require.Eventually(t, func() bool { return h.Clients("users.9") == 0 }, time.Second, 10*time.Millisecond)

	n := 0
	for range c.send {
		n++
	}
	require.Equal(t, sendBuffer, n)
}

func TestCloseDisconnectsClients(t *testing.T) {
	h := newTestHub(t)

	conn := newFakeConn()
	c, err := h.Accept(conn, "users.1")
	require.NoError(t, err)
	done := make(chan struct{})
	go func() { c.Serve(); close(done) }()

	h.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("serve did not return after close")
	}
	require.True(t, conn.isClosed())
	require.Equal(t, 0, h.Clients("users.1"))
}
