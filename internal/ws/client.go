package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

var errClientClosed = errors.New("ws client closed")

const (
	writeWait = 10 * time.Second
	// sendBuffer bounds how far a slow reader may fall behind before its
	// sends start failing and the hub evicts it.
	sendBuffer = 32
)

// Client adapts a gorilla websocket connection to the hub's Conn interface.
// A single writer goroutine owns the connection; Send only enqueues, so the
// hub never blocks on a slow client.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

// NewClient wraps the connection and starts the writer goroutine. A
// non-zero pingInterval adds a keepalive ping; the ticker stops when the
// client closes, so no goroutine outlives the connection.
func NewClient(conn *websocket.Conn, pingInterval time.Duration) *Client {
	c := &Client{
		conn: conn,
		send: make(chan []byte, sendBuffer),
		done: make(chan struct{}),
	}
	go c.writeLoop(pingInterval)
	return c
}

// Send enqueues a payload for the writer goroutine. A full buffer or a
// closed client counts as a failed delivery.
func (c *Client) Send(data []byte) error {
	select {
	case <-c.done:
		return errClientClosed
	default:
	}
	select {
	case c.send <- data:
		return nil
	default:
		return errors.New("ws client send buffer full")
	}
}

// SendJSON marshals and sends a direct (non-broadcast) message, used for
// handshake replies and pong frames. It goes through the same queue as
// broadcasts: the writer goroutine is the only one touching the connection.
func (c *Client) SendJSON(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return c.Send(payload)
}

// Close tears the connection down; safe to call more than once.
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

func (c *Client) writeLoop(pingInterval time.Duration) {
	var ping *time.Ticker
	var pingCh <-chan time.Time
	if pingInterval > 0 {
		ping = time.NewTicker(pingInterval)
		pingCh = ping.C
		defer ping.Stop()
	}
	defer c.Close()

	for {
		select {
		case <-c.done:
			return
		case payload := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-pingCh:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
