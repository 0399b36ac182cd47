package storage

import (
	"context"

	"github.com/mcoot/elostealo/internal/model"
)

// Storage defines the interface for data persistence. Live rooms are never persisted; only
// finished game records and local games are.
type Storage interface {
	// Game record operations
	SaveGameRecord(ctx context.Context, record *model.GameRecord) error
	GetGameRecord(ctx context.Context, id model.GameID) (*model.GameRecord, error)
	// ListGameRecords returns the most recently finished records first
	ListGameRecords(ctx context.Context, limit int) ([]*model.GameRecord, error)

	// Local game operations
	SaveLocalGame(ctx context.Context, game *model.LocalGame) error
	GetLocalGame(ctx context.Context, id model.GameID) (*model.LocalGame, error)
	DeleteLocalGame(ctx context.Context, id model.GameID) error

	Close() error
}
