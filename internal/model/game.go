package model

import "time"

// Result of a game as seen on the wire
type Result string

const (
	ResultNone  Result = "none"
	ResultWhite Result = "white"
	ResultBlack Result = "black"
	ResultDraw  Result = "draw"
)

// Winner returns the result in favour of c
func Winner(c Color) Result {
	if c == White {
		return ResultWhite
	}
	return ResultBlack
}

// Finished reports whether the game has ended
func (r Result) Finished() bool {
	return r != ResultNone && r != ""
}

// FinishReason explains how a game ended
type FinishReason string

const (
	ReasonNone        FinishReason = ""
	ReasonCheckmate   FinishReason = "checkmate"
	ReasonNoMoves     FinishReason = "no_moves"
	ReasonStalemate   FinishReason = "stalemate"
	ReasonEngineDraw  FinishReason = "draw"
	ReasonDrawAgreed  FinishReason = "draw_agreed"
	ReasonResignation FinishReason = "resignation"
	ReasonAbandoned   FinishReason = "abandoned"
)

// StateSync is the authoritative snapshot of a game, addressed to one seat
type StateSync struct {
	RoomCode   RoomCode     `json:"room_code,omitempty"`
	MoveCount  int          `json:"move_count"`
	Board      string       `json:"board"`
	LegalMoves []string     `json:"legal_moves"`
	Result     Result       `json:"result"`
	Reason     FinishReason `json:"reason,omitempty"`
	Turn       Color        `json:"turn"`
	LastMove   string       `json:"last_move,omitempty"`
	You        Color        `json:"you,omitempty"`
	White      PlayerView   `json:"white"`
	Black      PlayerView   `json:"black"`
	Resync     bool         `json:"resync,omitempty"`
}

// SameSnapshot reports whether two syncs describe the same game position and outcome
func (s StateSync) SameSnapshot(o StateSync) bool {
	if s.MoveCount != o.MoveCount || s.Board != o.Board || s.Result != o.Result || s.Turn != o.Turn {
		return false
	}
	if len(s.LegalMoves) != len(o.LegalMoves) {
		return false
	}
	for i := range s.LegalMoves {
		if s.LegalMoves[i] != o.LegalMoves[i] {
			return false
		}
	}
	return true
}

// GameID identifies an archived or local game
type GameID string

// GameRecord is the archived result of an online game
type GameRecord struct {
	ID         GameID           `json:"id"`
	RoomCode   RoomCode         `json:"room_code"`
	White      PlayerDescriptor `json:"white"`
	Black      PlayerDescriptor `json:"black"`
	Moves      []string         `json:"moves"`
	Result     Result           `json:"result"`
	Reason     FinishReason     `json:"reason"`
	StartedAt  time.Time        `json:"started_at"`
	FinishedAt time.Time        `json:"finished_at"`
}

// LocalGame is a game played by two people on the same device
type LocalGame struct {
	ID        GameID           `json:"id"`
	White     PlayerDescriptor `json:"white"`
	Black     PlayerDescriptor `json:"black"`
	Moves     []string         `json:"moves"`
	Result    Result           `json:"result"`
	Reason    FinishReason     `json:"reason,omitempty"`
	CreatedAt time.Time        `json:"created_at"`
	UpdatedAt time.Time        `json:"updated_at"`
}
