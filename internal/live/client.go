package live

import (
	"effisense-go/pkg/log"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024
	sendBuffer     = 64
)

var clientIDCounter atomic.Uint64

// Client is one connected browser session.
type Client struct {
	id     uint64
	userID uint
	hub    *Hub
	conn   *websocket.Conn
	send   chan Message
	closed atomic.Bool
}

// NewClient wraps conn for the given hub. userID is only used for logging.
func NewClient(hub *Hub, conn *websocket.Conn, userID uint) *Client {
	return &Client{
		id:     clientIDCounter.Add(1),
		userID: userID,
		hub:    hub,
		conn:   conn,
		send:   make(chan Message, sendBuffer),
	}
}

// ID returns the client's process-unique identifier.
func (c *Client) ID() uint64 {
	return c.id
}

func (c *Client) markClosed() {
	c.closed.Store(true)
}

func (c *Client) isClosed() bool {
	return c.closed.Load()
}

// Start registers the client and runs its read and write pumps.
func (c *Client) Start() {
	c.hub.Register(c)
	go c.writePump()
	go c.readPump()
}

// readPump consumes client frames until the connection drops. The only frame
// clients send is a ping, answered with a pong.
func (c *Client) readPump() {
	defer func() {
		c.markClosed()
		c.hub.Unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		log.Error("live: failed to set read deadline", err)
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Warnf("live: unexpected close for client %d: %v", c.id, err)
			}
			return
		}
		if msg.Type == MessageTypePing {
			c.reply(Message{Type: MessageTypePong})
		}
	}
}

// reply queues msg unless the client is already closed or backed up.
func (c *Client) reply(msg Message) {
	c.hub.mu.RLock()
	defer c.hub.mu.RUnlock()
	if c.isClosed() {
		return
	}
	select {
	case c.send <- msg:
	default:
	}
}

// writePump drains the send queue to the socket and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if !ok {
				// The hub closed the queue.
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				log.Warnf("live: write to client %d failed: %v", c.id, err)
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
