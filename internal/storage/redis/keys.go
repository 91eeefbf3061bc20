package redis

import (
	"fmt"

	"github.com/mcoot/gameroom-go/internal/model"
)

// Key prefix for all room-history data
const keyPrefix = "gameroom"

// summaryKey returns the Redis key for a RoomSummary
func summaryKey(roomID model.RoomID) string {
	return fmt.Sprintf("%s:summary:%s", keyPrefix, roomID)
}

// summaryIndexKey returns the Redis key for the SET of all summary room ids
func summaryIndexKey() string {
	return fmt.Sprintf("%s:idx:summaries", keyPrefix)
}
