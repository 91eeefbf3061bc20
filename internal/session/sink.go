package session

import "github.com/mcoot/gameroom-go/internal/model"

// Sink delivers outbound events to connections. Delivery is
// fire-and-forget: the orchestrator never waits for acknowledgment, and
// per-connection ordering is whatever the underlying fabric guarantees.
type Sink interface {
	Send(conn model.ConnectionID, event model.Event)
}
