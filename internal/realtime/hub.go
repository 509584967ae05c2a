package realtime

import (
	"errors"
	"sync"
	"time"

	"userhub/internal/service"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBuffer     = 256
)

// ErrRejected is returned by Accept when the connection cannot join a topic.
var ErrRejected = errors.New("realtime: connection rejected")

// Conn is the part of *websocket.Conn the hub uses.
type Conn interface {
	SetReadLimit(limit int64)
	SetReadDeadline(t time.Time) error
	SetWriteDeadline(t time.Time) error
	SetPongHandler(h func(appData string) error)
	ReadMessage() (messageType int, p []byte, err error)
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	Close() error
}

// Client represents a websocket connection bound to a topic.
type Client struct {
	hub   *Hub
	conn  Conn
	topic string
	send  chan []byte
}

type delivery struct {
	topic   string
	payload []byte
}

type countReq struct {
	topic string
	resp  chan int
}

// Hub manages active clients per topic. The client map is owned by the
// run goroutine.
type Hub struct {
	register   chan *Client
	unregister chan *Client
	deliver    chan delivery
	count      chan countReq
	done       chan struct{}
	closeOnce  sync.Once
	log        service.Logger

	clientsByTopic map[string]map[*Client]struct{}
}

// NewHub creates and starts a new Hub loop.
func NewHub(logger service.Logger) *Hub {
	h := &Hub{
		register:       make(chan *Client),
		unregister:     make(chan *Client),
		deliver:        make(chan delivery, sendBuffer),
		count:          make(chan countReq),
		done:           make(chan struct{}),
		log:            logger,
		clientsByTopic: make(map[string]map[*Client]struct{}),
	}
	go h.run()
	return h
}

func (h *Hub) run() {
	for {
		select {
		case c := <-h.register:
			set, ok := h.clientsByTopic[c.topic]
			if !ok {
				set = make(map[*Client]struct{})
				h.clientsByTopic[c.topic] = set
			}
			set[c] = struct{}{}
		case c := <-h.unregister:
			h.remove(c)
		case d := <-h.deliver:
			for c := range h.clientsByTopic[d.topic] {
				select {
				case c.send <- d.payload:
				default:
					// slow client: drop it, its writer closes the socket
					h.log.Warnf("realtime: dropping slow client on %s", d.topic)
					h.remove(c)
				}
			}
		case req := <-h.count:
			req.resp <- len(h.clientsByTopic[req.topic])
		case <-h.done:
			for topic, set := range h.clientsByTopic {
				for c := range set {
					close(c.send)
				}
				delete(h.clientsByTopic, topic)
			}
			return
		}
	}
}

func (h *Hub) remove(c *Client) {
	set, ok := h.clientsByTopic[c.topic]
	if !ok {
		return
	}
	if _, exists := set[c]; !exists {
		return
	}
	delete(set, c)
	close(c.send)
	if len(set) == 0 {
		delete(h.clientsByTopic, c.topic)
	}
}

// Accept registers conn under topic. It returns ErrRejected for an empty
// topic or a closed hub; otherwise the connection is established and the
// caller must run Serve.
func (h *Hub) Accept(conn Conn, topic string) (*Client, error) {
	if topic == "" {
		return nil, ErrRejected
	}
	if h.closed() {
		return nil, ErrRejected
	}
	c := &Client{hub: h, conn: conn, topic: topic, send: make(chan []byte, sendBuffer)}
	select {
	case h.register <- c:
		return c, nil
	case <-h.done:
		return nil, ErrRejected
	}
}

// Deliver hands payload to every local client of topic. It does not wait
// for the clients to write.
func (h *Hub) Deliver(topic string, payload []byte) {
	select {
	case h.deliver <- delivery{topic: topic, payload: payload}:
	case <-h.done:
	}
}

// Clients reports how many local clients are subscribed to topic.
func (h *Hub) Clients(topic string) int {
	if h.closed() {
		return 0
	}
	req := countReq{topic: topic, resp: make(chan int, 1)}
	select {
	case h.count <- req:
		return <-req.resp
	case <-h.done:
		return 0
	}
}

func (h *Hub) closed() bool {
	select {
	case <-h.done:
		return true
	default:
		return false
	}
}

// Close disconnects every client and stops the hub.
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// Serve pumps messages until the connection or the hub goes away. Reads
// run on their own goroutine; writes run on the caller's.
func (c *Client) Serve() {
	go c.readPump()
	c.writePump()
}

func (c *Client) readPump() {
	defer func() {
		select {
		case c.hub.unregister <- c:
		case <-c.hub.done:
		}
		_ = c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		// inbound messages carry no meaning yet
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()
	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
