package response

import (
	"time"

	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/services/localgame"
	"github.com/mcoot/elostealo/internal/services/session"
)

// Seat is returned when a room is created or joined. The ticket is only ever sent here.
type Seat struct {
	Code   model.RoomCode  `json:"code"`
	Color  model.Color     `json:"color"`
	Ticket string          `json:"ticket"`
	Room   *model.RoomInfo `json:"room,omitempty"`
}

// SeatFromSession builds a Seat response
func SeatFromSession(code model.RoomCode, seat session.Seat, info *model.RoomInfo) Seat {
	return Seat{
		Code:   code,
		Color:  seat.Color,
		Ticket: seat.Ticket,
		Room:   info,
	}
}

// HandicapList is the response for the catalog listing
type HandicapList struct {
	Handicaps []model.Handicap `json:"handicaps"`
}

// Pairing is the response for the pairing helper
type Pairing struct {
	HandicapA model.HandicapID `json:"handicap_a"`
	HandicapB model.HandicapID `json:"handicap_b"`
}

// GameList is the response for listing finished games
type GameList struct {
	Games []*model.GameRecord `json:"games"`
}

// LocalGame is a local game with its current position
type LocalGame struct {
	ID         model.GameID           `json:"id"`
	White      model.PlayerDescriptor `json:"white"`
	Black      model.PlayerDescriptor `json:"black"`
	Moves      []string               `json:"moves"`
	Board      string                 `json:"board"`
	LegalMoves []string               `json:"legal_moves"`
	Turn       model.Color            `json:"turn"`
	MoveCount  int                    `json:"move_count"`
	Result     model.Result           `json:"result"`
	Reason     model.FinishReason     `json:"reason,omitempty"`
	CreatedAt  time.Time              `json:"created_at"`
	UpdatedAt  time.Time              `json:"updated_at"`
}

// LocalGameFromView converts a localgame.View
func LocalGameFromView(v *localgame.View) LocalGame {
	return LocalGame{
		ID:         v.Game.ID,
		White:      v.Game.White,
		Black:      v.Game.Black,
		Moves:      v.Game.Moves,
		Board:      v.State.Board,
		LegalMoves: v.State.LegalMoves,
		Turn:       v.State.Turn,
		MoveCount:  v.State.MoveCount,
		Result:     v.State.Result,
		Reason:     v.State.Reason,
		CreatedAt:  v.Game.CreatedAt,
		UpdatedAt:  v.Game.UpdatedAt,
	}
}

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}

// Status is a plain acknowledgement
type Status struct {
	Status string `json:"status"`
}
