package postgres

import (
	"encoding/json"
	"time"

	"github.com/mcoot/elostealo/internal/model"
)

// GameRecordRow is a row of the game_records table
type GameRecordRow struct {
	ID            string `gorm:"primaryKey"`
	RoomCode      string `gorm:"not null"`
	WhiteName     string `gorm:"not null"`
	WhiteRating   int
	WhiteHandicap int
	BlackName     string `gorm:"not null"`
	BlackRating   int
	BlackHandicap int
	Moves         string `gorm:"type:text;not null"`
	Result        string `gorm:"not null"`
	Reason        string
	StartedAt     time.Time
	FinishedAt    time.Time `gorm:"index"`
}

func (GameRecordRow) TableName() string {
	return "game_records"
}

// LocalGameRow is a row of the local_games table
type LocalGameRow struct {
	ID            string `gorm:"primaryKey"`
	WhiteName     string `gorm:"not null"`
	WhiteRating   int
	WhiteHandicap int
	BlackName     string `gorm:"not null"`
	BlackRating   int
	BlackHandicap int
	Moves         string `gorm:"type:text;not null"`
	Result        string `gorm:"not null"`
	Reason        string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (LocalGameRow) TableName() string {
	return "local_games"
}

func encodeMoves(moves []string) (string, error) {
	if moves == nil {
		moves = []string{}
	}
	data, err := json.Marshal(moves)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func decodeMoves(s string) ([]string, error) {
	moves := []string{}
	if s == "" {
		return moves, nil
	}
	if err := json.Unmarshal([]byte(s), &moves); err != nil {
		return nil, err
	}
	return moves, nil
}

func recordToRow(r *model.GameRecord) (*GameRecordRow, error) {
	moves, err := encodeMoves(r.Moves)
	if err != nil {
		return nil, err
	}
	return &GameRecordRow{
		ID:            string(r.ID),
		RoomCode:      string(r.RoomCode),
		WhiteName:     r.White.Name,
		WhiteRating:   r.White.Rating,
		WhiteHandicap: int(r.White.Handicap),
		BlackName:     r.Black.Name,
		BlackRating:   r.Black.Rating,
		BlackHandicap: int(r.Black.Handicap),
		Moves:         moves,
		Result:        string(r.Result),
		Reason:        string(r.Reason),
		StartedAt:     r.StartedAt,
		FinishedAt:    r.FinishedAt,
	}, nil
}

func rowToRecord(row *GameRecordRow) (*model.GameRecord, error) {
	moves, err := decodeMoves(row.Moves)
	if err != nil {
		return nil, err
	}
	return &model.GameRecord{
		ID:       model.GameID(row.ID),
		RoomCode: model.RoomCode(row.RoomCode),
		White: model.PlayerDescriptor{
			Name:     row.WhiteName,
			Rating:   row.WhiteRating,
			Handicap: model.HandicapID(row.WhiteHandicap),
		},
		Black: model.PlayerDescriptor{
			Name:     row.BlackName,
			Rating:   row.BlackRating,
			Handicap: model.HandicapID(row.BlackHandicap),
		},
		Moves:      moves,
		Result:     model.Result(row.Result),
		Reason:     model.FinishReason(row.Reason),
		StartedAt:  row.StartedAt,
		FinishedAt: row.FinishedAt,
	}, nil
}

func localToRow(g *model.LocalGame) (*LocalGameRow, error) {
	moves, err := encodeMoves(g.Moves)
	if err != nil {
		return nil, err
	}
	return &LocalGameRow{
		ID:            string(g.ID),
		WhiteName:     g.White.Name,
		WhiteRating:   g.White.Rating,
		WhiteHandicap: int(g.White.Handicap),
		BlackName:     g.Black.Name,
		BlackRating:   g.Black.Rating,
		BlackHandicap: int(g.Black.Handicap),
		Moves:         moves,
		Result:        string(g.Result),
		Reason:        string(g.Reason),
		CreatedAt:     g.CreatedAt,
		UpdatedAt:     g.UpdatedAt,
	}, nil
}

func rowToLocal(row *LocalGameRow) (*model.LocalGame, error) {
	moves, err := decodeMoves(row.Moves)
	if err != nil {
		return nil, err
	}
	return &model.LocalGame{
		ID: model.GameID(row.ID),
		White: model.PlayerDescriptor{
			Name:     row.WhiteName,
			Rating:   row.WhiteRating,
			Handicap: model.HandicapID(row.WhiteHandicap),
		},
		Black: model.PlayerDescriptor{
			Name:     row.BlackName,
			Rating:   row.BlackRating,
			Handicap: model.HandicapID(row.BlackHandicap),
		},
		Moves:     moves,
		Result:    model.Result(row.Result),
		Reason:    model.FinishReason(row.Reason),
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}
