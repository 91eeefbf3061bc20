package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrPlayerNotFound = errors.New("player not found in room")

	// Game type errors
	ErrUnknownGameType = errors.New("unknown game type")

	// Action errors; covers non-members and rooms not in the playing state
	ErrInvalidAction = errors.New("invalid action")

	// Directory errors. Code exhaustion is a configuration-level fault:
	// with a 32^6 codespace it is unreachable in practice.
	ErrCodeSpaceExhausted = errors.New("room code space exhausted")

	// History errors
	ErrSummaryNotFound = errors.New("room summary not found")
)
