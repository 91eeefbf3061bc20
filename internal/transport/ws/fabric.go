// Package ws is the websocket connection fabric: it upgrades HTTP
// requests, assigns connection ids, decodes inbound event envelopes for
// the session layer, and delivers outbound events back to connections.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/mcoot/gameroom-go/internal/model"
)

// Handler consumes decoded inbound events. The session orchestrator
// implements this.
type Handler interface {
	HandleCreateGame(ctx context.Context, conn model.ConnectionID, payload model.CreateGamePayload)
	HandleJoinGame(ctx context.Context, conn model.ConnectionID, payload model.JoinGamePayload)
	HandleGameAction(ctx context.Context, conn model.ConnectionID, action json.RawMessage)
	HandleDisconnect(ctx context.Context, conn model.ConnectionID)
}

// envelope is the inbound wire frame
type envelope struct {
	Type    model.EventType `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// Fabric tracks live websocket clients and implements the outbound
// event sink. The handler is set after construction because the
// orchestrator needs the fabric as its sink.
type Fabric struct {
	mu      sync.RWMutex
	clients map[model.ConnectionID]*Client

	handler  Handler
	upgrader websocket.Upgrader
	logger   *slog.Logger
}

// NewFabric creates a fabric with no connected clients
func NewFabric(logger *slog.Logger) *Fabric {
	return &Fabric{
		clients: make(map[model.ConnectionID]*Client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		logger: logger.With(slog.String("component", "ws")),
	}
}

// SetHandler wires the inbound event consumer. Must be called before
// the fabric serves any connection.
func (f *Fabric) SetHandler(handler Handler) {
	f.handler = handler
}

// ServeHTTP upgrades the request and runs the connection's pumps
func (f *Fabric) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := f.upgrader.Upgrade(w, r, nil)
	if err != nil {
		f.logger.Warn("websocket upgrade failed", slog.Any("error", err))
		return
	}

	id := model.ConnectionID(uuid.NewString())
	client := newClient(id, f, conn, f.logger)

	f.mu.Lock()
	f.clients[id] = client
	clientCount := len(f.clients)
	f.mu.Unlock()

	f.logger.Info("websocket client connected",
		slog.String("connection_id", string(id)),
		slog.Int("total_clients", clientCount))

	go client.writePump()
	go client.readPump()
}

// Send delivers an event to a connection. Delivery is fire-and-forget:
// events to unknown connections are dropped, and a client whose buffer
// is full loses the event rather than blocking the caller.
func (f *Fabric) Send(conn model.ConnectionID, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		f.logger.Error("event marshal failed",
			slog.String("event_type", string(event.Type)),
			slog.Any("error", err))
		return
	}

	f.mu.RLock()
	client, ok := f.clients[conn]
	f.mu.RUnlock()
	if !ok {
		return
	}

	if !client.enqueue(data) {
		f.logger.Warn("event dropped",
			slog.String("connection_id", string(conn)),
			slog.String("event_type", string(event.Type)))
	}
}

// ClientCount returns the number of connected clients
func (f *Fabric) ClientCount() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.clients)
}

// dispatch decodes an inbound frame and routes it to the handler
func (f *Fabric) dispatch(client *Client, data []byte) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		f.sendDecodeError(client, "Malformed event")
		return
	}

	ctx := context.Background()
	switch env.Type {
	case model.EventCreateGame:
		var payload model.CreateGamePayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			f.sendDecodeError(client, "Malformed create-game payload")
			return
		}
		f.handler.HandleCreateGame(ctx, client.id, payload)

	case model.EventJoinGame:
		var payload model.JoinGamePayload
		if err := json.Unmarshal(env.Payload, &payload); err != nil {
			f.sendDecodeError(client, "Malformed join-game payload")
			return
		}
		f.handler.HandleJoinGame(ctx, client.id, payload)

	case model.EventGameAction:
		f.handler.HandleGameAction(ctx, client.id, env.Payload)

	default:
		f.sendDecodeError(client, "Unknown event type")
	}
}

func (f *Fabric) sendDecodeError(client *Client, message string) {
	f.Send(client.id, model.Event{
		Type:    model.EventError,
		Payload: model.ErrorPayload{Message: message},
	})
}

// disconnected removes a client after its read pump exits and notifies
// the handler exactly once per connection lifetime.
func (f *Fabric) disconnected(client *Client) {
	f.mu.Lock()
	if _, ok := f.clients[client.id]; !ok {
		f.mu.Unlock()
		return
	}
	delete(f.clients, client.id)
	clientCount := len(f.clients)
	f.mu.Unlock()

	client.closeSend()

	f.logger.Info("websocket client disconnected",
		slog.String("connection_id", string(client.id)),
		slog.Int("total_clients", clientCount))

	f.handler.HandleDisconnect(context.Background(), client.id)
}
