package model

// EventType identifies the type of an event on the wire
type EventType string

// Inbound event types consumed from the connection fabric
const (
	EventCreateGame EventType = "create-game"
	EventJoinGame   EventType = "join-game"
	EventGameAction EventType = "game-action"
)

// Outbound event types produced by the orchestrator
const (
	EventGameCreated  EventType = "game-created"
	EventPlayerJoined EventType = "player-joined"
	EventGameStarted  EventType = "game-started"
	EventGameUpdate   EventType = "game-update"
	EventPlayerLeft   EventType = "player-left"
	EventError        EventType = "error"
)

// Event is the envelope for all outbound events
type Event struct {
	Type    EventType `json:"type"`
	Payload any       `json:"payload"`
}

// CreateGamePayload is the inbound payload for create-game
type CreateGamePayload struct {
	GameType   GameTypeID `json:"gameType"`
	PlayerName string     `json:"playerName"`
}

// JoinGamePayload is the inbound payload for join-game
type JoinGamePayload struct {
	RoomID     RoomID `json:"roomId"`
	PlayerName string `json:"playerName"`
}

// GameCreatedPayload acknowledges room creation to the requester only
type GameCreatedPayload struct {
	RoomID   RoomID     `json:"roomId"`
	GameType GameTypeID `json:"gameType"`
	Players  []Player   `json:"players"`
}

// PlayerJoinedPayload contains data for player-joined broadcasts
type PlayerJoinedPayload struct {
	Players []Player `json:"players"`
	Message string   `json:"message"`
}

// PlayerLeftPayload contains data for player-left broadcasts
type PlayerLeftPayload struct {
	Players []Player `json:"players"`
	Message string   `json:"message"`
}

// ErrorPayload is sent to the originating connection on resolution failures
type ErrorPayload struct {
	Message string `json:"message"`
}
