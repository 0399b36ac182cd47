package memory

import (
	"context"
	"slices"
	"sort"
	"sync"

	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/storage"
)

// Storage is an in-memory implementation of the storage interface
type Storage struct {
	mu sync.RWMutex

	records    map[model.GameID]*model.GameRecord
	localGames map[model.GameID]*model.LocalGame
}

// New creates a new in-memory storage instance
func New() *Storage {
	return &Storage{
		records:    make(map[model.GameID]*model.GameRecord),
		localGames: make(map[model.GameID]*model.LocalGame),
	}
}

// Ensure Storage implements the interface
var _ storage.Storage = (*Storage)(nil)

// Game record operations

func (s *Storage) SaveGameRecord(ctx context.Context, record *model.GameRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ID] = cloneRecord(record)
	return nil
}

func (s *Storage) GetGameRecord(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[id]
	if !ok {
		return nil, model.ErrGameNotFound
	}
	return cloneRecord(record), nil
}

func (s *Storage) ListGameRecords(ctx context.Context, limit int) ([]*model.GameRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.GameRecord, 0, len(s.records))
	for _, r := range s.records {
		out = append(out, cloneRecord(r))
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].FinishedAt.After(out[j].FinishedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Local game operations

func (s *Storage) SaveLocalGame(ctx context.Context, game *model.LocalGame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.localGames[game.ID] = cloneLocal(game)
	return nil
}

func (s *Storage) GetLocalGame(ctx context.Context, id model.GameID) (*model.LocalGame, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	game, ok := s.localGames[id]
	if !ok {
		return nil, model.ErrLocalGameNotFound
	}
	return cloneLocal(game), nil
}

func (s *Storage) DeleteLocalGame(ctx context.Context, id model.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.localGames, id)
	return nil
}

// Close is a no-op
func (s *Storage) Close() error {
	return nil
}

func cloneRecord(r *model.GameRecord) *model.GameRecord {
	c := *r
	c.Moves = slices.Clone(r.Moves)
	return &c
}

func cloneLocal(g *model.LocalGame) *model.LocalGame {
	c := *g
	c.Moves = slices.Clone(g.Moves)
	return &c
}
