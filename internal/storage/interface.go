package storage

import (
	"context"

	"github.com/mcoot/gameroom-go/internal/model"
)

// Storage defines the interface for room-history persistence. Live room
// state never goes through here; only summaries of torn-down rooms.
type Storage interface {
	SaveSummary(ctx context.Context, summary *model.RoomSummary) error
	GetSummary(ctx context.Context, roomID model.RoomID) (*model.RoomSummary, error)
	ListSummaries(ctx context.Context) ([]*model.RoomSummary, error)
	DeleteSummary(ctx context.Context, roomID model.RoomID) error
}
