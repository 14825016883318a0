package httpserver

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"storefront-api/internal/ws"
)

const adminPingInterval = 30 * time.Second

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origins are already filtered by the CORS layer for REST; the
	// WS channels carry no privileged data without their own auth.
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsHandlers struct {
	hub         *ws.Hub
	sessions    sessionResolver
	authTimeout time.Duration
	logger      *log.Logger
}

func newWSHandlers(hub *ws.Hub, sessions sessionResolver, authTimeout time.Duration, logger *log.Logger) *wsHandlers {
	if authTimeout <= 0 {
		authTimeout = 10 * time.Second
	}
	return &wsHandlers{hub: hub, sessions: sessions, authTimeout: authTimeout, logger: logger}
}

// channel serves an open broadcast channel: no auth, no keepalive pings.
func (h *wsHandlers) channel(name string) gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := ws.NewClient(conn, 0)
		h.hub.Subscribe(name, client)
		h.readPump(conn, client, name)
	}
}

// cart serves the per-user cart channel. The bearer token comes in a query
// parameter because browsers cannot set headers on WebSocket dials; the
// resolved session decides which cart channel the connection may join.
func (h *wsHandlers) cart() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := h.sessions.GetByToken(c.Request.Context(), c.Query("token"))
		if err != nil {
			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid or expired token")
			return
		}
		conn, upgradeErr := upgrader.Upgrade(c.Writer, c.Request, nil)
		if upgradeErr != nil {
			return
		}
		channel := ws.CartChannel(u.ID)
		client := ws.NewClient(conn, 0)
		h.hub.Subscribe(channel, client)
		h.readPump(conn, client, channel)
	}
}

type wsAuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

// adminDashboard upgrades first and authenticates with the connection's
// first message: {"type":"auth","token":...} within the deadline, answered
// with auth_success or auth_failed. Authenticated connections get a
// keepalive ping so idle dashboards survive proxies.
func (h *wsHandlers) adminDashboard() gin.HandlerFunc {
	return func(c *gin.Context) {
		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			return
		}
		client := ws.NewClient(conn, adminPingInterval)

		conn.SetReadDeadline(time.Now().Add(h.authTimeout))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			client.Close()
			return
		}
		var msg wsAuthMessage
		if jsonErr := json.Unmarshal(raw, &msg); jsonErr != nil || msg.Type != "auth" {
			client.SendJSON(gin.H{"type": "auth_failed", "message": "expected auth message"})
			closeSoon(client)
			return
		}
		u, err := h.sessions.GetByToken(c.Request.Context(), msg.Token)
		if err != nil || !u.Role.CanManageOrders() {
			client.SendJSON(gin.H{"type": "auth_failed", "message": "invalid credentials"})
			closeSoon(client)
			return
		}
		conn.SetReadDeadline(time.Time{})
		client.SendJSON(gin.H{"type": "auth_success"})
		h.hub.Subscribe(ws.ChannelAdminDashboard, client)
		h.readPump(conn, client, ws.ChannelAdminDashboard)
	}
}

// readPump drains inbound frames until the peer goes away, answering ping
// with pong and ignoring everything else. It owns the unsubscribe on exit.
func (h *wsHandlers) readPump(conn *websocket.Conn, client *ws.Client, channel string) {
	defer func() {
		h.hub.Unsubscribe(channel, client)
		client.Close()
	}()
	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		var msg struct {
			Type string `json:"type"`
		}
		if json.Unmarshal(raw, &msg) == nil && msg.Type == "ping" {
			client.SendJSON(gin.H{"type": "pong"})
		}
	}
}

// closeSoon gives the writer goroutine a moment to flush the failure reply
// before tearing the connection down.
func closeSoon(client *ws.Client) {
	time.AfterFunc(time.Second, client.Close)
}
