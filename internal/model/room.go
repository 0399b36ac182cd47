package model

import "time"

// RoomCode is a short human-readable identifier for joining rooms
type RoomCode string

// RoomState represents the lifecycle state of a room. Transitions only move forward.
type RoomState string

const (
	RoomStateAwaitingPeer RoomState = "awaiting_peer"
	RoomStatePaired       RoomState = "paired"
	RoomStateFinished     RoomState = "finished"
	RoomStateDissolved    RoomState = "dissolved"
)

// Color is the side a seat plays
type Color string

const (
	White Color = "white"
	Black Color = "black"
)

// Opposite returns the other color
func (c Color) Opposite() Color {
	if c == White {
		return Black
	}
	return White
}

// Valid reports whether c is white or black
func (c Color) Valid() bool {
	return c == White || c == Black
}

// RoomInfo is the public view of a room
type RoomInfo struct {
	Code      RoomCode  `json:"code"`
	State     RoomState `json:"state"`
	White     string    `json:"white,omitempty"`
	Black     string    `json:"black,omitempty"`
	MoveCount int       `json:"move_count"`
	Result    Result    `json:"result"`
	CreatedAt time.Time `json:"created_at"`
}
