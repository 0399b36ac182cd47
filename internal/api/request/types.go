package request

import "github.com/mcoot/elostealo/internal/model"

// Player is the participant descriptor sent when creating or joining
type Player struct {
	Name     string           `json:"name"`
	Rating   int              `json:"rating,omitempty"`
	Handicap model.HandicapID `json:"handicap,omitempty"`
}

// ToModel converts to a model.PlayerDescriptor
func (p Player) ToModel() model.PlayerDescriptor {
	return model.PlayerDescriptor{Name: p.Name, Rating: p.Rating, Handicap: p.Handicap}
}

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest = Player

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest = Player

// MoveRequest is the request body for submitting a move
type MoveRequest struct {
	Move string `json:"move"`
}

// PairingRequest is the request body for the stateless pairing helper
type PairingRequest struct {
	RatingA   int              `json:"rating_a"`
	RatingB   int              `json:"rating_b"`
	HandicapA model.HandicapID `json:"handicap_a,omitempty"`
	HandicapB model.HandicapID `json:"handicap_b,omitempty"`
}

// CreateLocalGameRequest is the request body for starting a local game
type CreateLocalGameRequest struct {
	White Player `json:"white"`
	Black Player `json:"black"`
}

// LocalMoveRequest is the request body for a local game move
type LocalMoveRequest struct {
	Color model.Color `json:"color"`
	Move  string      `json:"move"`
}
