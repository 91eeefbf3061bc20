// Package room implements the per-room state machine: a bounded player
// set plus one game-type instance, with all operations linearized by a
// per-room lock.
package room

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/mcoot/gameroom-go/internal/dependencies/clock"
	"github.com/mcoot/gameroom-go/internal/gametype"
	"github.com/mcoot/gameroom-go/internal/model"
)

// Room owns one game's state machine and its player set. All exported
// methods are safe for concurrent use; operations on a single Room are
// serialized, operations on different Rooms never contend.
type Room struct {
	mu sync.Mutex

	id         model.RoomID
	gameType   model.GameTypeID
	maxPlayers int

	status       model.RoomStatus
	currentRound int
	closed       bool
	players      map[model.ConnectionID]model.Player
	joinOrder    []model.ConnectionID
	game         gametype.Game

	clock     clock.Clock
	createdAt time.Time
}

// New creates a room in the waiting state with no players
func New(id model.RoomID, gameType model.GameTypeID, maxPlayers int, game gametype.Game, clk clock.Clock) *Room {
	return &Room{
		id:         id,
		gameType:   gameType,
		maxPlayers: maxPlayers,
		status:     model.RoomStatusWaiting,
		players:    make(map[model.ConnectionID]model.Player),
		game:       game,
		clock:      clk,
		createdAt:  clk.Now(),
	}
}

// ID returns the room's code
func (r *Room) ID() model.RoomID {
	return r.id
}

// GameType returns the room's game type id
func (r *Room) GameType() model.GameTypeID {
	return r.gameType
}

// CreatedAt returns the room's creation time
func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

// AddPlayer attaches a connection to the room. It fails with ErrRoomFull
// without mutating the player set when the room is at capacity, and with
// ErrRoomNotFound when the room has been closed: a caller holding a room
// handle may race the room's teardown, and a closed room must never gain
// a member.
func (r *Room) AddPlayer(conn model.ConnectionID, displayName string) (model.Player, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return model.Player{}, model.ErrRoomNotFound
	}
	if len(r.players) >= r.maxPlayers {
		return model.Player{}, model.ErrRoomFull
	}

	player := model.Player{
		ConnectionID: conn,
		DisplayName:  displayName,
		JoinedAt:     r.clock.Now(),
	}
	r.players[conn] = player
	r.joinOrder = append(r.joinOrder, conn)
	return player, nil
}

// RemovePlayer detaches a connection from the room and returns the
// removed player's display name. Removing an unknown connection reports
// ErrPlayerNotFound without aborting anything else. If the game is in
// progress and tracks its player set, the departure is forwarded to it;
// a non-nil result is returned for the caller to broadcast, since the
// departure may complete a round the departed player was holding up.
func (r *Room) RemovePlayer(conn model.ConnectionID) (string, *gametype.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	player, ok := r.players[conn]
	if !ok {
		return "", nil, model.ErrPlayerNotFound
	}
	delete(r.players, conn)
	for i, id := range r.joinOrder {
		if id == conn {
			r.joinOrder = append(r.joinOrder[:i], r.joinOrder[i+1:]...)
			break
		}
	}

	var result *gametype.Result
	if r.status == model.RoomStatusPlaying {
		if tracker, ok := r.game.(gametype.PlayerTracker); ok {
			result = tracker.PlayerLeft(conn)
			r.applyResultLocked(result)
		}
	}
	return player.DisplayName, result, nil
}

// IsFull reports whether the room is at capacity
func (r *Room) IsFull() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) >= r.maxPlayers
}

// IsEmpty reports whether the room has no players
func (r *Room) IsEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players) == 0
}

// Members returns the connection ids of all current players in join order
func (r *Room) Members() []model.ConnectionID {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]model.ConnectionID(nil), r.joinOrder...)
}

// Start transitions the room from waiting to playing, sets the round to
// 1, and initializes the game. It returns whether this call performed
// the transition: concurrent join-completion checks may race, so calling
// Start on a non-waiting room is a no-op rather than an error.
func (r *Room) Start() bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != model.RoomStatusWaiting {
		return false
	}
	r.status = model.RoomStatusPlaying
	r.currentRound = 1
	r.game.Init(r.playersLocked())
	return true
}

// ApplyAction delegates a player action to the game's state machine.
// The connection must be a current player and the room must be playing;
// otherwise the action is rejected with ErrInvalidAction and no state
// changes. A nil result with nil error means the game accepted the
// action but has nothing to broadcast.
func (r *Room) ApplyAction(conn model.ConnectionID, action json.RawMessage) (*gametype.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.status != model.RoomStatusPlaying {
		return nil, fmt.Errorf("%w: room is not playing", model.ErrInvalidAction)
	}
	if _, ok := r.players[conn]; !ok {
		return nil, fmt.Errorf("%w: connection is not a player in this room", model.ErrInvalidAction)
	}

	result, err := r.game.HandleAction(conn, action)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", model.ErrInvalidAction, err)
	}
	r.applyResultLocked(result)
	return result, nil
}

// applyResultLocked folds a game result into the room's lifecycle state.
// Callers must hold r.mu.
func (r *Room) applyResultLocked(result *gametype.Result) {
	if result != nil {
		if result.AdvanceRound {
			r.currentRound++
		}
		if result.GameOver {
			r.status = model.RoomStatusFinished
		}
	}
	if r.status == model.RoomStatusPlaying && r.game.IsOver() {
		r.status = model.RoomStatusFinished
	}
}

// Close marks the room as torn down. A closed room never gains another
// player; everything else about it stays readable for summary recording.
func (r *Room) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
}

// CloseIfEmpty closes the room only if it has no players, atomically
// with the emptiness check, and reports whether it did. This is the
// teardown gate: a join racing the last member's departure either lands
// before the close (and keeps the room alive) or fails against the
// closed room.
func (r *Room) CloseIfEmpty() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed || len(r.players) > 0 {
		return false
	}
	r.closed = true
	return true
}

// End transitions the room to finished; subsequent actions are rejected
func (r *Room) End() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.status = model.RoomStatusFinished
}

// Status returns the room's current lifecycle state
func (r *Room) Status() model.RoomStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.status
}

// Snapshot returns a read-only projection of the room safe to serialize
// and broadcast; it shares no mutable references with the room.
func (r *Room) Snapshot() model.RoomSnapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	snap := model.RoomSnapshot{
		RoomID:       r.id,
		GameType:     r.gameType,
		Status:       r.status,
		CurrentRound: r.currentRound,
		MaxPlayers:   r.maxPlayers,
		Players:      r.playersLocked(),
	}
	if r.status != model.RoomStatusWaiting {
		snap.GameData = r.game.Snapshot()
	}
	return snap
}

// playersLocked returns a copy of the player list in join order.
// Callers must hold r.mu.
func (r *Room) playersLocked() []model.Player {
	players := make([]model.Player, 0, len(r.players))
	for _, conn := range r.joinOrder {
		players = append(players, r.players[conn])
	}
	return players
}
