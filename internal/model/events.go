package model

import "time"

// EventType identifies the type of event
type EventType string

const (
	// Seat events, delivered to subscribers
	EventStateSync        EventType = "state_sync"
	EventPeerDisconnected EventType = "peer_disconnected"
	EventPeerReconnected  EventType = "peer_reconnected"
	EventAbandoned        EventType = "abandoned"
	EventDrawOffered      EventType = "draw_offered"
	EventRoomPaired       EventType = "room_paired"

	// Lifecycle events, exported to the event bus
	EventRoomCreated   EventType = "room_created"
	EventRoomDissolved EventType = "room_dissolved"
	EventGameFinished  EventType = "game_finished"
)

// Event is the base structure for all events
type Event struct {
	Type      EventType `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	RoomCode  RoomCode  `json:"room_code"`
	Payload   any       `json:"payload,omitempty"`
}

// PeerPayload names the peer a connectivity event is about
type PeerPayload struct {
	Color Color  `json:"color"`
	Name  string `json:"name"`
}

// AbandonedPayload is sent to the remaining seat when the peer's grace period expires
type AbandonedPayload struct {
	Color  Color  `json:"color"`
	Name   string `json:"name"`
	Result Result `json:"result"`
}

// DrawOfferedPayload is sent to the seat that may accept the offer
type DrawOfferedPayload struct {
	By Color `json:"by"`
}

// RoomPairedPayload tells the creator who joined
type RoomPairedPayload struct {
	Opponent string `json:"opponent"`
}

// RoomCreatedPayload is exported when a room opens
type RoomCreatedPayload struct {
	Creator string `json:"creator"`
}

// RoomDissolvedPayload is exported when a room closes
type RoomDissolvedPayload struct {
	Reason string `json:"reason"`
}

// GameFinishedPayload is exported when a game ends
type GameFinishedPayload struct {
	RecordID GameID       `json:"record_id"`
	Result   Result       `json:"result"`
	Reason   FinishReason `json:"reason"`
	Moves    int          `json:"moves"`
}
