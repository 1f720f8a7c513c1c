package websocket

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// hubMetrics holds the hub's OpenTelemetry instruments. A nil *hubMetrics
// records nothing.
type hubMetrics struct {
	connections   metric.Int64Counter
	activeClients metric.Int64UpDownCounter
	messagesSent  metric.Int64Counter
	dropped       metric.Int64Counter
}

func newHubMetrics(meter metric.Meter) (*hubMetrics, error) {
	m := &hubMetrics{}
	var err error

	m.connections, err = meter.Int64Counter("fte_websocket_connections_total",
		metric.WithDescription("WebSocket clients that have connected"),
	)
	if err != nil {
		return nil, err
	}

	m.activeClients, err = meter.Int64UpDownCounter("fte_websocket_active_clients",
		metric.WithDescription("WebSocket clients currently connected"),
	)
	if err != nil {
		return nil, err
	}

	m.messagesSent, err = meter.Int64Counter("fte_websocket_messages_sent_total",
		metric.WithDescription("Events queued to WebSocket clients"),
	)
	if err != nil {
		return nil, err
	}

	m.dropped, err = meter.Int64Counter("fte_websocket_dropped_clients_total",
		metric.WithDescription("Clients disconnected because their send buffer was full"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *hubMetrics) connected(ctx context.Context) {
	if m == nil {
		return
	}
	m.connections.Add(ctx, 1)
	m.activeClients.Add(ctx, 1)
}

func (m *hubMetrics) disconnected(ctx context.Context) {
	if m == nil {
		return
	}
	m.activeClients.Add(ctx, -1)
}

func (m *hubMetrics) sent(ctx context.Context, eventType string, n int) {
	if m == nil || n == 0 {
		return
	}
	m.messagesSent.Add(ctx, int64(n), metric.WithAttributes(attribute.String("type", eventType)))
}

func (m *hubMetrics) droppedClient(ctx context.Context) {
	if m == nil {
		return
	}
	m.dropped.Add(ctx, 1)
	m.activeClients.Add(ctx, -1)
}
