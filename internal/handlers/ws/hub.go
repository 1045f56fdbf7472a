package ws

import (
	"encoding/json"
	"sync"

	"github.com/alieuroshub001/euroshub-management/internal/metrics"
	"github.com/alieuroshub001/euroshub-management/internal/service"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Conn is the part of a websocket connection the hub writes to.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Client is one registered connection. All writes go through its send queue
// and a single writer goroutine.
type Client struct {
	Ctx  service.ConnContext
	conn Conn
	send chan []byte
	done chan struct{}
}

// Done is closed once the writer goroutine has exited and the connection is
// no longer written to.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Hub manages all active WebSocket connections and implements
// service.Broker on top of them.
type Hub struct {
	mu        sync.RWMutex
	clients   map[uuid.UUID]*Client
	users     map[uint]map[uuid.UUID]*Client
	queueSize int
	metrics   *metrics.Metrics
	log       *zap.Logger
}

var _ service.Broker = (*Hub)(nil)

func NewHub(queueSize int, m *metrics.Metrics, log *zap.Logger) *Hub {
	if queueSize < 1 {
		queueSize = 1
	}
	return &Hub{
		clients:   make(map[uuid.UUID]*Client),
		users:     make(map[uint]map[uuid.UUID]*Client),
		queueSize: queueSize,
		metrics:   m,
		log:       log,
	}
}

// Register adds a connection bound to cc and starts its writer.
func (h *Hub) Register(cc service.ConnContext, conn Conn) *Client {
	client := &Client{
		Ctx:  cc,
		conn: conn,
		send: make(chan []byte, h.queueSize),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	h.clients[cc.ConnID] = client
	conns, ok := h.users[cc.UserID]
	if !ok {
		conns = make(map[uuid.UUID]*Client)
		h.users[cc.UserID] = conns
	}
	conns[cc.ConnID] = client
	total := len(h.clients)
	h.mu.Unlock()

	go h.writePump(client)

	h.metrics.ConnectionOpened()
	h.log.Debug("connection registered",
		zap.String("conn_id", cc.ConnID.String()),
		zap.Uint("user_id", cc.UserID),
		zap.Int("total", total),
	)
	return client
}

// Unregister removes the client and stops its writer. Calling it more than
// once is a no-op.
func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	if _, ok := h.clients[client.Ctx.ConnID]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, client.Ctx.ConnID)
	if conns, ok := h.users[client.Ctx.UserID]; ok {
		delete(conns, client.Ctx.ConnID)
		if len(conns) == 0 {
			delete(h.users, client.Ctx.UserID)
		}
	}
	close(client.send)
	total := len(h.clients)
	h.mu.Unlock()

	h.metrics.ConnectionClosed()
	h.log.Debug("connection unregistered",
		zap.String("conn_id", client.Ctx.ConnID.String()),
		zap.Uint("user_id", client.Ctx.UserID),
		zap.Int("total", total),
	)
}

func (h *Hub) writePump(client *Client) {
	defer close(client.done)

	failed := false
	for data := range client.send {
		if failed {
			continue
		}
		if err := client.conn.WriteMessage(websocket.TextMessage, data); err != nil {
			h.log.Debug("write failed",
				zap.String("conn_id", client.Ctx.ConnID.String()),
				zap.Error(err),
			)
			// Closing the socket ends the read loop, which unregisters us.
			_ = client.conn.Close()
			failed = true
		}
	}
}

func (h *Hub) PublishToUser(userID uint, ev service.Event) {
	data, ok := h.encode(ev)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.users[userID] {
		h.enqueue(client, ev.Type, data)
	}
}

func (h *Hub) PublishToConn(connID uuid.UUID, ev service.Event) {
	data, ok := h.encode(ev)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if client, ok := h.clients[connID]; ok {
		h.enqueue(client, ev.Type, data)
	}
}

func (h *Hub) PublishToAll(ev service.Event, exceptUserID uint) {
	data, ok := h.encode(ev)
	if !ok {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		if client.Ctx.UserID == exceptUserID {
			continue
		}
		h.enqueue(client, ev.Type, data)
	}
}

// enqueue must be called with h.mu held so the send channel cannot be
// closed underneath it.
func (h *Hub) enqueue(client *Client, eventType string, data []byte) {
	select {
	case client.send <- data:
		h.metrics.EventEmitted(eventType)
	default:
		h.metrics.EventDropped()
		h.log.Warn("outbound queue full, event dropped",
			zap.String("conn_id", client.Ctx.ConnID.String()),
			zap.Uint("user_id", client.Ctx.UserID),
			zap.String("type", eventType),
		)
	}
}

func (h *Hub) encode(ev service.Event) ([]byte, bool) {
	data, err := json.Marshal(ev)
	if err != nil {
		h.log.Error("marshal event", zap.String("type", ev.Type), zap.Error(err))
		return nil, false
	}
	return data, true
}

// IsSubscribed reports whether userID has at least one registered connection.
func (h *Hub) IsSubscribed(userID uint) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.users[userID]) > 0
}

// Count returns the number of connected clients
func (h *Hub) Count() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
