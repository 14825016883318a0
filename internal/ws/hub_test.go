package ws

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
)

type stubConn struct {
	mu       sync.Mutex
	payloads [][]byte
	sendErr  error
}

func (s *stubConn) Send(data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sendErr != nil {
		return s.sendErr
	}
	s.payloads = append(s.payloads, data)
	return nil
}

func (s *stubConn) received() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.payloads)
}

func TestPublishNoSubscribersIsNoop(t *testing.T) {
	hub := NewHub(nil)
	// Must not panic or error.
	hub.Publish(ChannelOrders, "order_created", map[string]string{"id": "o1"})
	if got := hub.SubscriberCount(ChannelOrders); got != 0 {
		t.Fatalf("subscriber count = %d, want 0", got)
	}
}

func TestPublishDeliversEnvelope(t *testing.T) {
	hub := NewHub(nil)
	conn := &stubConn{}
	hub.Subscribe(ChannelProducts, conn)

	hub.Publish(ChannelProducts, "product_updated", map[string]string{"id": "p1"})

	if conn.received() != 1 {
		t.Fatalf("received %d payloads, want 1", conn.received())
	}
	var event Event
	if err := json.Unmarshal(conn.payloads[0], &event); err != nil {
		t.Fatalf("unmarshal payload: %v", err)
	}
	if event.Type != "product_updated" {
		t.Fatalf("type = %q, want product_updated", event.Type)
	}
	if event.Channel != ChannelProducts {
		t.Fatalf("channel = %q, want %q", event.Channel, ChannelProducts)
	}
	if event.Timestamp.IsZero() {
		t.Fatalf("timestamp not stamped")
	}
}

func TestPublishEvictsOnlyFailedConn(t *testing.T) {
	hub := NewHub(nil)
	good1 := &stubConn{}
	bad := &stubConn{sendErr: errors.New("broken pipe")}
	good2 := &stubConn{}
	hub.Subscribe(ChannelOrders, good1)
	hub.Subscribe(ChannelOrders, bad)
	hub.Subscribe(ChannelOrders, good2)

	hub.Publish(ChannelOrders, "order_created", nil)

	if good1.received() != 1 || good2.received() != 1 {
		t.Fatalf("healthy conns received %d/%d payloads, want 1/1", good1.received(), good2.received())
	}
	if got := hub.SubscriberCount(ChannelOrders); got != 2 {
		t.Fatalf("subscriber count after eviction = %d, want 2", got)
	}

	// The evicted conn stays gone on the next publish.
	hub.Publish(ChannelOrders, "order_updated", nil)
	if good1.received() != 2 || good2.received() != 2 {
		t.Fatalf("healthy conns received %d/%d payloads, want 2/2", good1.received(), good2.received())
	}
}

func TestUnsubscribeRemovesConn(t *testing.T) {
	hub := NewHub(nil)
	conn := &stubConn{}
	channel := CartChannel("u1")
	hub.Subscribe(channel, conn)
	hub.Unsubscribe(channel, conn)

	hub.Publish(channel, "cart_updated", nil)
	if conn.received() != 0 {
		t.Fatalf("received %d payloads after unsubscribe, want 0", conn.received())
	}
}

func TestUnsubscribeUnknownPairIsNoop(t *testing.T) {
	hub := NewHub(nil)
	hub.Unsubscribe("never-seen", &stubConn{})
}

func TestConcurrentSubscribePublish(t *testing.T) {
	hub := NewHub(nil)
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			conn := &stubConn{}
			hub.Subscribe(ChannelOrders, conn)
			hub.Unsubscribe(ChannelOrders, conn)
		}()
		go func() {
			defer wg.Done()
			hub.Publish(ChannelOrders, "order_created", nil)
		}()
	}
	wg.Wait()
}
