// Package ws implements the in-process broadcast manager: named channels,
// per-channel subscriber sets and fire-and-forget JSON fan-out. There is no
// delivery guarantee and no persistence of missed events; a briefly
// disconnected client simply misses what was published in that window.
package ws

import (
	"encoding/json"
	"io"
	"log"
	"sync"
	"time"
)

// Well-known channel names.
const (
	ChannelAdminDashboard = "admin-dashboard"
	ChannelProducts       = "products"
	ChannelOrders         = "orders"
)

// CartChannel is the per-user cart channel name.
func CartChannel(userID string) string {
	return "cart_" + userID
}

// Event is the outbound broadcast envelope. Timestamp and Channel are
// stamped by Publish.
type Event struct {
	Type      string    `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Channel   string    `json:"channel"`
}

// Conn is a subscriber transport. Send must be safe for concurrent use and
// must not block indefinitely; an error marks the connection dead.
type Conn interface {
	Send(data []byte) error
}

// Hub owns the channel to subscriber-set registry. It is the only shared
// mutable in-process state in the service, so every access goes through the
// mutex: subscribers come and go from arbitrary handler goroutines while
// Publish walks the same sets.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[Conn]struct{}
	logger   *log.Logger
}

func NewHub(logger *log.Logger) *Hub {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Hub{
		channels: make(map[string]map[Conn]struct{}),
		logger:   logger,
	}
}

// Subscribe registers a connection under a channel. Callers authenticate
// before subscribing where the channel requires it.
func (h *Hub) Subscribe(channel string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set, ok := h.channels[channel]
	if !ok {
		set = make(map[Conn]struct{})
		h.channels[channel] = set
	}
	set[conn] = struct{}{}
	h.logger.Printf("ws hub: subscribed channel=%s subscribers=%d", channel, len(set))
}

// Unsubscribe removes a connection from a channel. Unknown pairs are a no-op.
func (h *Hub) Unsubscribe(channel string, conn Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.remove(channel, conn)
}

func (h *Hub) remove(channel string, conn Conn) {
	set, ok := h.channels[channel]
	if !ok {
		return
	}
	if _, ok := set[conn]; !ok {
		return
	}
	delete(set, conn)
	if len(set) == 0 {
		delete(h.channels, channel)
	}
	h.logger.Printf("ws hub: unsubscribed channel=%s subscribers=%d", channel, len(set))
}

// Publish fans an event out to every subscriber of the channel. A send
// failure evicts only the failed connection; remaining subscribers still
// receive the event. Publishing to a channel with no subscribers is a no-op.
func (h *Hub) Publish(channel string, typ string, data any) {
	h.mu.RLock()
	set := h.channels[channel]
	conns := make([]Conn, 0, len(set))
	for conn := range set {
		conns = append(conns, conn)
	}
	h.mu.RUnlock()

	if len(conns) == 0 {
		return
	}

	payload, err := json.Marshal(Event{
		Type:      typ,
		Data:      data,
		Timestamp: time.Now().UTC(),
		Channel:   channel,
	})
	if err != nil {
		h.logger.Printf("ws hub: marshal channel=%s type=%s error=%v", channel, typ, err)
		return
	}

	var failed []Conn
	for _, conn := range conns {
		if err := conn.Send(payload); err != nil {
			h.logger.Printf("ws hub: send channel=%s error=%v", channel, err)
			failed = append(failed, conn)
		}
	}

	if len(failed) > 0 {
		h.mu.Lock()
		for _, conn := range failed {
			h.remove(channel, conn)
		}
		h.mu.Unlock()
	}
}

// SubscriberCount reports the current subscriber count for a channel.
func (h *Hub) SubscriberCount(channel string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[channel])
}
