package model

import "time"

// ConnectionID identifies one client's duplex channel for its lifetime.
// The core never touches the underlying socket; it only routes by id.
type ConnectionID string

// Player is a connection's membership in a room. A connection id maps to
// at most one Player across the whole system at any time.
type Player struct {
	ConnectionID ConnectionID `json:"connectionId"`
	DisplayName  string       `json:"displayName"`
	JoinedAt     time.Time    `json:"joinedAt"`
}
