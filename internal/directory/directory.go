// Package directory owns room lifetime: it mints room codes, creates and
// looks up rooms, and tears them down, recording a summary of each
// destroyed room.
package directory

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mcoot/gameroom-go/internal/dependencies/clock"
	"github.com/mcoot/gameroom-go/internal/dependencies/random"
	"github.com/mcoot/gameroom-go/internal/gametype"
	"github.com/mcoot/gameroom-go/internal/model"
	"github.com/mcoot/gameroom-go/internal/room"
	"github.com/mcoot/gameroom-go/internal/storage"
)

const (
	// RoomCodeLength is the length of generated room codes
	RoomCodeLength = 6
	// RoomCodeAlphabet is the characters used in room codes (avoid confusing chars)
	RoomCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// maxCodeAttempts bounds collision resampling. With a 32^6 codespace
	// hitting this is a configuration fault, not an expected condition.
	maxCodeAttempts = 100
)

// Directory is the sole owner of room lifetime. No other component may
// construct or destroy a room. The directory's own map is protected
// independently of any room's internal lock, so room operations never
// block unrelated lookups.
type Directory struct {
	mu    sync.RWMutex
	rooms map[model.RoomID]*room.Room

	registry *gametype.Registry
	storage  storage.Storage
	clock    clock.Clock
	random   random.Random
	logger   *slog.Logger
}

// New creates an empty directory
func New(
	registry *gametype.Registry,
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	logger *slog.Logger,
) *Directory {
	return &Directory{
		rooms:    make(map[model.RoomID]*room.Room),
		registry: registry,
		storage:  store,
		clock:    clk,
		random:   rnd,
		logger:   logger.With(slog.String("component", "directory")),
	}
}

// CreateRoom creates a room for the given game type with a fresh code
func (d *Directory) CreateRoom(ctx context.Context, gameType model.GameTypeID) (*room.Room, error) {
	reg, err := d.registry.Resolve(gameType)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	id, err := d.generateCodeLocked()
	if err != nil {
		return nil, err
	}

	r := room.New(id, gameType, reg.MaxPlayers, reg.Factory(), d.clock)
	d.rooms[id] = r

	d.logger.Info("room created",
		slog.String("room_id", string(id)),
		slog.String("game_type", string(gameType)),
		slog.Int("max_players", reg.MaxPlayers),
	)
	return r, nil
}

// GetRoom retrieves a room by code
func (d *Directory) GetRoom(id model.RoomID) (*room.Room, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	r, ok := d.rooms[id]
	if !ok {
		return nil, model.ErrRoomNotFound
	}
	return r, nil
}

// DestroyRoom removes a room from the directory and records its summary.
// The room is closed so it can never gain another player; destroying an
// absent id is a no-op.
func (d *Directory) DestroyRoom(ctx context.Context, id model.RoomID) {
	d.mu.Lock()
	r, ok := d.rooms[id]
	if ok {
		delete(d.rooms, id)
	}
	d.mu.Unlock()
	if !ok {
		return
	}
	r.Close()

	snap := r.Snapshot()
	names := make([]string, 0, len(snap.Players))
	for _, p := range snap.Players {
		names = append(names, p.DisplayName)
	}
	summary := &model.RoomSummary{
		RoomID:       snap.RoomID,
		GameType:     snap.GameType,
		FinalStatus:  snap.Status,
		RoundsPlayed: snap.CurrentRound,
		PlayerNames:  names,
		CreatedAt:    r.CreatedAt(),
		ClosedAt:     d.clock.Now(),
	}
	if err := d.storage.SaveSummary(ctx, summary); err != nil {
		d.logger.Error("failed to save room summary",
			slog.String("room_id", string(id)),
			slog.String("error", err.Error()),
		)
	}

	d.logger.Info("room destroyed",
		slog.String("room_id", string(id)),
		slog.String("final_status", string(snap.Status)),
	)
}

// ListRooms returns snapshots of all live rooms
func (d *Directory) ListRooms() []model.RoomSnapshot {
	d.mu.RLock()
	rooms := make([]*room.Room, 0, len(d.rooms))
	for _, r := range d.rooms {
		rooms = append(rooms, r)
	}
	d.mu.RUnlock()

	// Take snapshots outside the directory lock; each room serializes its own
	snaps := make([]model.RoomSnapshot, 0, len(rooms))
	for _, r := range rooms {
		snaps = append(snaps, r.Snapshot())
	}
	return snaps
}

// generateCodeLocked mints an unused room code with bounded resampling.
// Callers must hold d.mu.
func (d *Directory) generateCodeLocked() (model.RoomID, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		id := model.RoomID(d.random.Code(RoomCodeLength, RoomCodeAlphabet))
		if _, exists := d.rooms[id]; !exists {
			return id, nil
		}
	}
	d.logger.Error("room code generation exhausted",
		slog.Int("attempts", maxCodeAttempts),
		slog.Int("live_rooms", len(d.rooms)),
	)
	return "", fmt.Errorf("%w after %d attempts", model.ErrCodeSpaceExhausted, maxCodeAttempts)
}
