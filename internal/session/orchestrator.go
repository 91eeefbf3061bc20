// Package session implements the top-level coordinator between the
// connection fabric and rooms: it maps each connection to at most one
// room, routes inbound events to the right room, and fans results out
// to the room's members.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/gameroom-go/internal/directory"
	"github.com/mcoot/gameroom-go/internal/model"
	"github.com/mcoot/gameroom-go/internal/room"
)

// Orchestrator routes connection events to rooms and re-broadcasts
// results. The connection→room index is strictly derived from room
// membership: an index entry always refers to a live room that contains
// a player with that connection id.
type Orchestrator struct {
	mu    sync.RWMutex
	index map[model.ConnectionID]model.RoomID

	directory *directory.Directory
	sink      Sink
	logger    *slog.Logger
}

// NewOrchestrator creates an orchestrator with an empty index
func NewOrchestrator(dir *directory.Directory, sink Sink, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		index:     make(map[model.ConnectionID]model.RoomID),
		directory: dir,
		sink:      sink,
		logger:    logger.With(slog.String("component", "session")),
	}
}

// HandleCreateGame creates a room for the requested game type and
// attaches the requesting connection as its first player. The
// acknowledgment goes to the requester only.
func (o *Orchestrator) HandleCreateGame(ctx context.Context, conn model.ConnectionID, payload model.CreateGamePayload) {
	o.detach(ctx, conn)

	r, err := o.directory.CreateRoom(ctx, payload.GameType)
	if err != nil {
		o.sendError(conn, err)
		return
	}

	if _, err := r.AddPlayer(conn, payload.PlayerName); err != nil {
		// Unreachable for a fresh room unless max players is misconfigured
		o.directory.DestroyRoom(ctx, r.ID())
		o.sendError(conn, err)
		return
	}
	o.attach(conn, r.ID())

	snap := r.Snapshot()
	o.sink.Send(conn, model.Event{
		Type: model.EventGameCreated,
		Payload: model.GameCreatedPayload{
			RoomID:   snap.RoomID,
			GameType: snap.GameType,
			Players:  snap.Players,
		},
	})

	o.logger.Info("game created",
		slog.String("room_id", string(r.ID())),
		slog.String("game_type", string(payload.GameType)),
		slog.String("connection_id", string(conn)),
	)
}

// HandleJoinGame attaches a connection to an existing room. Every member
// observes the join broadcast before any start broadcast; if this join
// fills the room, the game starts exactly once.
func (o *Orchestrator) HandleJoinGame(ctx context.Context, conn model.ConnectionID, payload model.JoinGamePayload) {
	o.detach(ctx, conn)

	r, err := o.directory.GetRoom(payload.RoomID)
	if err != nil {
		o.sendError(conn, err)
		return
	}

	player, err := r.AddPlayer(conn, payload.PlayerName)
	if err != nil {
		o.sendError(conn, err)
		return
	}
	o.attach(conn, r.ID())

	o.broadcast(r, model.Event{
		Type: model.EventPlayerJoined,
		Payload: model.PlayerJoinedPayload{
			Players: r.Snapshot().Players,
			Message: fmt.Sprintf("%s joined the room", player.DisplayName),
		},
	})

	// Start returns whether this call performed the transition, so a race
	// of two simultaneous fills broadcasts game-started exactly once.
	if r.IsFull() && r.Start() {
		o.broadcast(r, model.Event{
			Type:    model.EventGameStarted,
			Payload: r.Snapshot(),
		})
		o.logger.Info("game started",
			slog.String("room_id", string(r.ID())),
		)
	}
}

// HandleGameAction routes an action to the connection's current room.
// Actions from unattached connections are stale or duplicate events and
// are dropped silently.
func (o *Orchestrator) HandleGameAction(ctx context.Context, conn model.ConnectionID, action json.RawMessage) {
	roomID, ok := o.roomFor(conn)
	if !ok {
		return
	}
	r, err := o.directory.GetRoom(roomID)
	if err != nil {
		// Only reachable when the connection detached between the index
		// read and the lookup; the action is stale and dropped
		o.logger.Debug("action for torn-down room dropped",
			slog.String("room_id", string(roomID)),
			slog.String("connection_id", string(conn)),
		)
		return
	}

	result, err := r.ApplyAction(conn, action)
	if err != nil {
		o.sendError(conn, err)
		return
	}
	if result == nil || result.Payload == nil {
		return
	}

	o.broadcast(r, model.Event{
		Type:    model.EventGameUpdate,
		Payload: result.Payload,
	})
}

// HandleDisconnect detaches a connection from its room, if any. Safe to
// invoke twice for the same connection: duplicate notifications from the
// fabric find no index entry and are no-ops.
func (o *Orchestrator) HandleDisconnect(ctx context.Context, conn model.ConnectionID) {
	o.detach(ctx, conn)
}

// RoomFor returns the room a connection is currently attached to
func (o *Orchestrator) RoomFor(conn model.ConnectionID) (model.RoomID, bool) {
	return o.roomFor(conn)
}

func (o *Orchestrator) roomFor(conn model.ConnectionID) (model.RoomID, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	roomID, ok := o.index[conn]
	return roomID, ok
}

func (o *Orchestrator) attach(conn model.ConnectionID, roomID model.RoomID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.index[conn] = roomID
}

// detach removes the connection's player from its room, tells the
// remaining members, and tears the room down if it emptied. A connection
// with no current room is a no-op.
func (o *Orchestrator) detach(ctx context.Context, conn model.ConnectionID) {
	o.mu.Lock()
	roomID, ok := o.index[conn]
	if ok {
		delete(o.index, conn)
	}
	o.mu.Unlock()
	if !ok {
		return
	}

	r, err := o.directory.GetRoom(roomID)
	if err != nil {
		return
	}

	name, result, err := r.RemovePlayer(conn)
	if errors.Is(err, model.ErrPlayerNotFound) {
		return
	}

	o.broadcast(r, model.Event{
		Type: model.EventPlayerLeft,
		Payload: model.PlayerLeftPayload{
			Players: r.Snapshot().Players,
			Message: fmt.Sprintf("%s left the room", name),
		},
	})
	if result != nil && result.Payload != nil {
		o.broadcast(r, model.Event{
			Type:    model.EventGameUpdate,
			Payload: result.Payload,
		})
	}

	// CloseIfEmpty is atomic with the emptiness check, so a join racing
	// this teardown either keeps the room alive or fails against the
	// closed room; an index entry never outlives its room.
	if r.CloseIfEmpty() {
		o.directory.DestroyRoom(ctx, roomID)
	}

	o.logger.Info("connection detached",
		slog.String("room_id", string(roomID)),
		slog.String("connection_id", string(conn)),
	)
}

// broadcast fans an event out to every current member of a room
func (o *Orchestrator) broadcast(r *room.Room, event model.Event) {
	for _, conn := range r.Members() {
		o.sink.Send(conn, event)
	}
}

// sendError reports a resolution failure to the originating connection
// only; it never affects other rooms or players.
func (o *Orchestrator) sendError(conn model.ConnectionID, err error) {
	o.sink.Send(conn, model.Event{
		Type:    model.EventError,
		Payload: model.ErrorPayload{Message: errorMessage(err)},
	})
}

// errorMessage maps the error taxonomy to client-facing messages
func errorMessage(err error) string {
	switch {
	case errors.Is(err, model.ErrUnknownGameType):
		return "Unknown game type"
	case errors.Is(err, model.ErrRoomNotFound):
		return "Room not found"
	case errors.Is(err, model.ErrRoomFull):
		return "Room is full"
	case errors.Is(err, model.ErrInvalidAction):
		return err.Error()
	default:
		return "Internal error"
	}
}
