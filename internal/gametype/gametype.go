package gametype

import (
	"encoding/json"

	"github.com/mcoot/gameroom-go/internal/model"
)

// Result is the outcome of a game action. A nil Result means there is
// nothing to broadcast.
type Result struct {
	// Payload is the serializable data broadcast to the room
	Payload any
	// AdvanceRound asks the hosting room to increment its round counter
	AdvanceRound bool
	// GameOver asks the hosting room to transition to finished
	GameOver bool
}

// Game is the capability set a game type must implement to be hosted by
// a room. Implementations are not safe for concurrent use; the hosting
// room serializes all calls.
type Game interface {
	// Init sets up game state for the given players. Called exactly once,
	// when the room transitions from waiting to playing.
	Init(players []model.Player)

	// HandleAction applies one player action. The action payload is
	// game-specific JSON. Returning an error rejects the action without
	// mutating room state; returning a nil Result accepts it silently.
	HandleAction(player model.ConnectionID, action json.RawMessage) (*Result, error)

	// IsOver reports whether the game has reached a terminal state
	IsOver() bool

	// Snapshot returns a serializable copy of the game state, sharing no
	// mutable references with the game
	Snapshot() any
}

// PlayerTracker is implemented by game types whose progression depends
// on the current player set, such as games that wait for an answer from
// every player. The hosting room invokes PlayerLeft when a player leaves
// mid-game; a non-nil Result is broadcast like an action result, because
// the departure may complete a round the departed player was holding up.
type PlayerTracker interface {
	PlayerLeft(player model.ConnectionID) *Result
}

// Factory constructs a fresh Game instance for a new room
type Factory func() Game
