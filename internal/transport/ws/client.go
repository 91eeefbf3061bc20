package ws

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/gameroom-go/internal/model"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong from the peer
	pongWait = 60 * time.Second

	// Time between keepalive pings; must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	// Maximum inbound message size
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client is a single websocket connection and its outbound buffer
type Client struct {
	id     model.ConnectionID
	fabric *Fabric
	conn   *websocket.Conn
	logger *slog.Logger

	// mu makes enqueue and closeSend mutually exclusive, so a broadcast
	// racing a disconnect can never write to a closed channel.
	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func newClient(id model.ConnectionID, fabric *Fabric, conn *websocket.Conn, logger *slog.Logger) *Client {
	return &Client{
		id:     id,
		fabric: fabric,
		conn:   conn,
		send:   make(chan []byte, sendBufferSize),
		logger: logger.With(slog.String("connection_id", string(id))),
	}
}

// enqueue offers a message to the outbound buffer. It reports whether
// the message was accepted; a full buffer or an already-closed client
// drops the message instead of blocking.
func (c *Client) enqueue(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// closeSend shuts the outbound buffer exactly once, which ends the
// write pump. Safe to call concurrently with enqueue.
func (c *Client) closeSend() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// readPump reads inbound messages and hands them to the fabric for
// dispatch. It runs in its own goroutine; when the read side fails the
// connection is considered gone and the disconnect path runs.
func (c *Client) readPump() {
	defer func() {
		c.fabric.disconnected(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("websocket read error", slog.Any("error", err))
			}
			return
		}
		c.fabric.dispatch(c, message)
	}
}

// writePump drains the outbound buffer to the peer and sends keepalive
// pings. It exits when the send channel is closed or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Fabric closed the channel
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
