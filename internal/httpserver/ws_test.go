package httpserver

import (
	"encoding/json"
	"log"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"storefront-api/internal/domain"
	"storefront-api/internal/ws"
)

func wsTestServer(t *testing.T, sessions sessionResolver) (*httptest.Server, *ws.Hub) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	hub := ws.NewHub(nil)
	handlers := newWSHandlers(hub, sessions, 2*time.Second, log.New(testWriter{t}, "", 0))

	router := gin.New()
	router.GET("/ws/products", handlers.channel(ws.ChannelProducts))
	router.GET("/ws/cart", handlers.cart())
	router.GET("/ws/admin-dashboard", handlers.adminDashboard())

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)
	return srv, hub
}

type testWriter struct{ t *testing.T }

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Log(strings.TrimSpace(string(p)))
	return len(p), nil
}

func wsURL(srv *httptest.Server, path string) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + path
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial %s: %v", url, err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, raw, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var msg map[string]any
	if err := json.Unmarshal(raw, &msg); err != nil {
		t.Fatalf("decode %q: %v", raw, err)
	}
	return msg
}

func waitForSubscribers(t *testing.T, hub *ws.Hub, channel string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if hub.SubscriberCount(channel) >= want {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("channel %s never reached %d subscribers", channel, want)
}

func TestProductsChannelReceivesBroadcast(t *testing.T) {
	srv, hub := wsTestServer(t, &stubSessions{})

	conn := dial(t, wsURL(srv, "/ws/products"))
	waitForSubscribers(t, hub, ws.ChannelProducts, 1)

	hub.Publish(ws.ChannelProducts, "product_updated", map[string]string{"id": "p1"})

	msg := readEvent(t, conn)
	if msg["type"] != "product_updated" || msg["channel"] != "products" {
		t.Fatalf("unexpected event: %v", msg)
	}
}

func TestProductsChannelPingPong(t *testing.T) {
	srv, hub := wsTestServer(t, &stubSessions{})

	conn := dial(t, wsURL(srv, "/ws/products"))
	waitForSubscribers(t, hub, ws.ChannelProducts, 1)

	if err := conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"ping"}`)); err != nil {
		t.Fatalf("write: %v", err)
	}
	msg := readEvent(t, conn)
	if msg["type"] != "pong" {
		t.Fatalf("expected pong, got %v", msg)
	}
}

func TestCartChannelRequiresOwningSession(t *testing.T) {
	sessions := &stubSessions{users: map[string]*domain.User{
		"tok-1": {ID: "u1", Role: domain.RoleCustomer},
	}}
	srv, hub := wsTestServer(t, sessions)

	if _, _, err := websocket.DefaultDialer.Dial(wsURL(srv, "/ws/cart?token=wrong"), nil); err == nil {
		t.Fatalf("expected dial to fail without a valid session")
	}

	conn := dial(t, wsURL(srv, "/ws/cart?token=tok-1"))
	waitForSubscribers(t, hub, ws.CartChannel("u1"), 1)

	hub.Publish(ws.CartChannel("u1"), "cart_updated", map[string]any{"itemCount": 1})
	msg := readEvent(t, conn)
	if msg["type"] != "cart_updated" {
		t.Fatalf("unexpected event: %v", msg)
	}
}

func TestAdminDashboardAuthHandshake(t *testing.T) {
	sessions := &stubSessions{users: map[string]*domain.User{
		"admin-tok":    {ID: "a1", Role: domain.RoleAdmin},
		"customer-tok": {ID: "u1", Role: domain.RoleCustomer},
	}}
	srv, hub := wsTestServer(t, sessions)

	conn := dial(t, wsURL(srv, "/ws/admin-dashboard"))
	if err := conn.WriteJSON(map[string]string{"type": "auth", "token": "admin-tok"}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	if msg := readEvent(t, conn); msg["type"] != "auth_success" {
		t.Fatalf("expected auth_success, got %v", msg)
	}
	waitForSubscribers(t, hub, ws.ChannelAdminDashboard, 1)

	hub.Publish(ws.ChannelAdminDashboard, "order_created", map[string]string{"orderNumber": "IWX20260828ABCDEF"})
	if msg := readEvent(t, conn); msg["type"] != "order_created" {
		t.Fatalf("unexpected event: %v", msg)
	}
}

func TestAdminDashboardRejectsCustomerToken(t *testing.T) {
	sessions := &stubSessions{users: map[string]*domain.User{
		"customer-tok": {ID: "u1", Role: domain.RoleCustomer},
	}}
	srv, hub := wsTestServer(t, sessions)

	conn := dial(t, wsURL(srv, "/ws/admin-dashboard"))
	if err := conn.WriteJSON(map[string]string{"type": "auth", "token": "customer-tok"}); err != nil {
		t.Fatalf("write auth: %v", err)
	}
	if msg := readEvent(t, conn); msg["type"] != "auth_failed" {
		t.Fatalf("expected auth_failed, got %v", msg)
	}
	if hub.SubscriberCount(ws.ChannelAdminDashboard) != 0 {
		t.Fatalf("rejected connection was subscribed")
	}
}

func TestAdminDashboardRejectsNonAuthFirstMessage(t *testing.T) {
	srv, _ := wsTestServer(t, &stubSessions{})

	conn := dial(t, wsURL(srv, "/ws/admin-dashboard"))
	if err := conn.WriteJSON(map[string]string{"type": "ping"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if msg := readEvent(t, conn); msg["type"] != "auth_failed" {
		t.Fatalf("expected auth_failed, got %v", msg)
	}
}
