package model

import "time"

// RoomID is a short human-readable code for joining rooms
type RoomID string

// GameTypeID identifies a registered game type
type GameTypeID string

// RoomStatus represents the lifecycle state of a room
type RoomStatus string

const (
	RoomStatusWaiting  RoomStatus = "waiting"  // Waiting for players
	RoomStatusPlaying  RoomStatus = "playing"  // Game in progress
	RoomStatusFinished RoomStatus = "finished" // Game over, room awaiting teardown
)

// RoomSnapshot is a read-only projection of a room's state, safe to
// serialize and broadcast. It shares no mutable references with the room.
type RoomSnapshot struct {
	RoomID       RoomID     `json:"roomId"`
	GameType     GameTypeID `json:"gameType"`
	Status       RoomStatus `json:"status"`
	CurrentRound int        `json:"currentRound"`
	MaxPlayers   int        `json:"maxPlayers"`
	Players      []Player   `json:"players"`
	GameData     any        `json:"gameData,omitempty"`
}

// RoomSummary is the record kept after a room is torn down
type RoomSummary struct {
	RoomID       RoomID     `json:"roomId"`
	GameType     GameTypeID `json:"gameType"`
	FinalStatus  RoomStatus `json:"finalStatus"`
	RoundsPlayed int        `json:"roundsPlayed"`
	PlayerNames  []string   `json:"playerNames"`
	CreatedAt    time.Time  `json:"createdAt"`
	ClosedAt     time.Time  `json:"closedAt"`
}
