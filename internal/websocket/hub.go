package websocket

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"

	"fteapp/internal/infrastructure"
)

// Event types pushed to browsers
const (
	TypeConnection   = "connection"
	TypeTableSaved   = "table_saved"
	TypeCacheCleared = "cache_cleared"
)

const broadcastQueueSize = 64

// Event is the JSON envelope of every message sent to clients
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	TraceID   string      `json:"trace_id,omitempty"`
}

type outbound struct {
	eventType string
	payload   []byte
}

// Hub keeps the set of connected clients and fans events out to them
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan outbound
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}

	mu      sync.RWMutex
	running bool
	stopped bool

	pingPeriod time.Duration
	pongWait   time.Duration

	totalConnections int64
	messagesSent     int64
	messagesDropped  int64

	metrics *hubMetrics
	logger  *slog.Logger
}

// HubOption customizes a Hub
type HubOption func(*Hub)

// WithKeepalive sets the ping interval and the read deadline extended by each pong
func WithKeepalive(pingPeriod, pongWait time.Duration) HubOption {
	return func(h *Hub) {
		if pingPeriod > 0 {
			h.pingPeriod = pingPeriod
		}
		if pongWait > 0 {
			h.pongWait = pongWait
		}
	}
}

// WithMeter records hub metrics on meter
func WithMeter(meter metric.Meter) HubOption {
	return func(h *Hub) {
		if meter == nil {
			return
		}
		m, err := newHubMetrics(meter)
		if err != nil {
			h.logger.Warn("WebSocket metrics disabled", slog.String("error", err.Error()))
			return
		}
		h.metrics = m
	}
}

// NewHub creates a hub. Call Start before serving clients.
func NewHub(logger *slog.Logger, opts ...HubOption) *Hub {
	if logger == nil {
		logger = infrastructure.GetLogger()
	}

	h := &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan outbound, broadcastQueueSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		pingPeriod: 30 * time.Second,
		pongWait:   60 * time.Second,
		logger:     infrastructure.WithComponent(logger, "websocket.hub"),
	}
	for _, opt := range opts {
		opt(h)
	}
	if h.pingPeriod >= h.pongWait {
		h.pingPeriod = h.pongWait * 9 / 10
	}
	return h
}

// Start runs the hub loop in a goroutine. Calling it twice is a no-op.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running || h.stopped {
		return
	}
	h.running = true
	go h.run()
}

// Stop ends the hub loop and closes every client's send channel
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.stopped {
		return
	}
	h.stopped = true
	h.running = false
	close(h.quit)

	for client := range h.clients {
		close(client.send)
		delete(h.clients, client)
	}
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			h.logger.Info("Hub shutting down")
			return

		case client := <-h.register:
			h.addClient(client)

		case client := <-h.unregister:
			h.removeClient(client)

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

func (h *Hub) addClient(client *Client) {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		close(client.send)
		return
	}
	h.clients[client] = true
	h.totalConnections++
	count := len(h.clients)
	h.mu.Unlock()

	ctx := client.context()
	h.metrics.connected(ctx)
	h.logger.InfoContext(ctx, "Client registered",
		slog.String("client_id", client.id),
		slog.String("remote_addr", client.remoteAddr),
		slog.Int("total_clients", count))

	payload, err := json.Marshal(Event{
		Type: TypeConnection,
		Data: map[string]interface{}{
			"status":    "connected",
			"client_id": client.id,
		},
		Timestamp: time.Now().UTC(),
		TraceID:   client.traceID,
	})
	if err != nil {
		return
	}
	select {
	case client.send <- payload:
	default:
		h.logger.WarnContext(ctx, "Client buffer full, connection message dropped",
			slog.String("client_id", client.id))
	}
}

func (h *Hub) removeClient(client *Client) {
	h.mu.Lock()
	_, ok := h.clients[client]
	if ok {
		delete(h.clients, client)
		close(client.send)
	}
	count := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	ctx := client.context()
	h.metrics.disconnected(ctx)
	h.logger.InfoContext(ctx, "Client unregistered",
		slog.String("client_id", client.id),
		slog.Int("total_clients", count),
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

func (h *Hub) fanOut(msg outbound) {
	h.mu.Lock()
	delivered, dropped := 0, 0
	for client := range h.clients {
		select {
		case client.send <- msg.payload:
			delivered++
		default:
			close(client.send)
			delete(h.clients, client)
			dropped++
			h.logger.Warn("Client send buffer full, disconnecting",
				slog.String("client_id", client.id))
		}
	}
	h.messagesSent += int64(delivered)
	h.mu.Unlock()

	ctx := context.Background()
	h.metrics.sent(ctx, msg.eventType, delivered)
	for i := 0; i < dropped; i++ {
		h.metrics.droppedClient(ctx)
	}

	h.logger.Debug("Event broadcast",
		slog.String("type", msg.eventType),
		slog.Int("delivered", delivered),
		slog.Int("dropped", dropped),
		slog.Int("payload_size", len(msg.payload)))
}

// Broadcast queues an event for every connected client. It never blocks:
// events are dropped when the hub is stopped or its queue is full.
func (h *Hub) Broadcast(ctx context.Context, eventType string, data interface{}) {
	payload, err := json.Marshal(Event{
		Type:      eventType,
		Data:      data,
		Timestamp: time.Now().UTC(),
		TraceID:   infrastructure.GetTraceID(ctx),
	})
	if err != nil {
		h.logger.ErrorContext(ctx, "Error marshaling event",
			slog.String("type", eventType),
			slog.String("error", err.Error()))
		return
	}

	select {
	case <-h.quit:
		return
	default:
	}

	select {
	case h.broadcast <- outbound{eventType: eventType, payload: payload}:
	case <-h.quit:
	default:
		h.mu.Lock()
		h.messagesDropped++
		h.mu.Unlock()
		h.logger.WarnContext(ctx, "Broadcast queue full, event dropped",
			slog.String("type", eventType))
	}
}

// Register hands a client to the hub loop
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.quit:
		client.conn.Close()
	}
}

// Unregister removes a client; it is safe after Stop
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.quit:
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// HubStats summarizes hub activity
type HubStats struct {
	Running          bool  `json:"running"`
	ActiveClients    int   `json:"active_clients"`
	TotalConnections int64 `json:"total_connections"`
	MessagesSent     int64 `json:"messages_sent"`
	EventsDropped    int64 `json:"events_dropped"`
}

// Stats returns a snapshot of hub activity
func (h *Hub) Stats() HubStats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return HubStats{
		Running:          h.running,
		ActiveClients:    len(h.clients),
		TotalConnections: h.totalConnections,
		MessagesSent:     h.messagesSent,
		EventsDropped:    h.messagesDropped,
	}
}
