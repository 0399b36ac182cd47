package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound      = errors.New("room not found")
	ErrRoomFull          = errors.New("room is full")
	ErrRegistryExhausted = errors.New("no free room code available")
	ErrNameTaken         = errors.New("player name is already taken in this room")
	ErrInvalidPlayer     = errors.New("invalid player descriptor")
	ErrInvalidTicket     = errors.New("invalid seat ticket")

	// Game errors
	ErrIllegalMove       = errors.New("illegal move")
	ErrNotYourTurn       = errors.New("not this seat's turn")
	ErrGameNotInProgress = errors.New("game is not in progress")
	ErrPeerAbandoned     = errors.New("peer abandoned the game")
	ErrGameNotFound      = errors.New("game not found")
	ErrLocalGameNotFound = errors.New("local game not found")

	// Catalog errors
	ErrCatalogUnavailable = errors.New("handicap catalog unavailable")
	ErrHandicapNotFound   = errors.New("handicap not found")

	// Client errors
	ErrStaleSync = errors.New("stale state sync")
)
