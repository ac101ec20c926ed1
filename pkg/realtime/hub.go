// Package realtime pushes domain events to connected websocket clients.
//
// Events are addressed either to one user or to a set of roles. When a Publisher
// (redis) is configured every instance receives every event and delivers it to its
// own connections; otherwise delivery is in-process only.
package realtime

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/prasanthzodiac/College-connect-sub001/pkg/metrics"
)

const (
	sendBuffer   = 16
	writeWait    = 10 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = (pongWait * 9) / 10
	maxReadBytes = 512
)

// Event is one broadcast message.
type Event struct {
	Type   string      `json:"type"`
	UserID string      `json:"userId,omitempty"`
	Roles  []string    `json:"roles,omitempty"`
	Data   interface{} `json:"data,omitempty"`
	At     time.Time   `json:"at"`
}

// Publisher fans encoded events out across instances.
type Publisher interface {
	PublishEvent(ctx context.Context, payload []byte) error
	SubscribeEvents(ctx context.Context, handle func(payload []byte)) error
}

type client struct {
	conn   *websocket.Conn
	userID string
	role   string
	send   chan []byte
}

// Hub tracks connections and delivers events.
type Hub struct {
	upgrader websocket.Upgrader
	pub      Publisher
	logger   *zap.Logger
	metrics  *metrics.Metrics

	mu      sync.RWMutex
	clients map[*client]struct{}
}

// NewHub creates a hub. pub may be nil.
func NewHub(pub Publisher, allowOrigins []string, logger *zap.Logger, m *metrics.Metrics) *Hub {
	origins := make(map[string]bool, len(allowOrigins))
	for _, o := range allowOrigins {
		origins[o] = true
	}
	return &Hub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins[origin]
			},
		},
		pub:     pub,
		logger:  logger,
		metrics: m,
		clients: make(map[*client]struct{}),
	}
}

// Run relays events published by other instances until ctx is cancelled.
func (h *Hub) Run(ctx context.Context) error {
	if h.pub == nil {
		<-ctx.Done()
		return nil
	}
	return h.pub.SubscribeEvents(ctx, func(payload []byte) {
		var ev Event
		if err := json.Unmarshal(payload, &ev); err != nil {
			h.logger.Warn("dropping malformed event", zap.Error(err))
			return
		}
		h.deliver(ev, payload)
	})
}

// Broadcast sends ev to every matching connection on every instance.
func (h *Hub) Broadcast(ctx context.Context, ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		h.logger.Error("encode event", zap.String("type", ev.Type), zap.Error(err))
		return
	}
	h.metrics.EventsBroadcast.WithLabelValues(ev.Type).Inc()

	if h.pub != nil {
		err := h.pub.PublishEvent(ctx, payload)
		if err == nil {
			return
		}
		h.logger.Warn("publish event failed, delivering locally", zap.String("type", ev.Type), zap.Error(err))
	}
	h.deliver(ev, payload)
}

// ClientCount number of open connections on this instance.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Serve upgrades the request and streams events addressed to userID/role until the peer goes away.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID, role string) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	c := &client{conn: conn, userID: userID, role: role, send: make(chan []byte, sendBuffer)}
	h.add(c)
	defer h.remove(c)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	go h.writePump(ctx, c)
	h.readPump(c)
}

func (h *Hub) add(c *client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.metrics.WSConnectionsActive.Inc()
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		close(c.send)
	}
	h.mu.Unlock()
	h.metrics.WSConnectionsActive.Dec()
	_ = c.conn.Close()
}

func (h *Hub) deliver(ev Event, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.clients {
		if !ev.addressedTo(c.userID, c.role) {
			continue
		}
		select {
		case c.send <- payload:
		default:
			// slow consumer, drop rather than block every other connection
			h.logger.Debug("dropping event for slow client", zap.String("user_id", c.userID))
		}
	}
}

// readPump only serves to detect disconnects and keep the read deadline alive.
func (h *Hub) readPump(c *client) {
	c.conn.SetReadLimit(maxReadBytes)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket closed", zap.String("user_id", c.userID), zap.Error(err))
			}
			return
		}
	}
}

func (h *Hub) writePump(ctx context.Context, c *client) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
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
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// addressedTo user-addressed events go to that user only; role-addressed to any listed role.
func (e Event) addressedTo(userID, role string) bool {
	if e.UserID != "" {
		return e.UserID == userID
	}
	for _, r := range e.Roles {
		if r == role {
			return true
		}
	}
	return false
}
