// Package storagetest holds the behaviour every storage backend must share.
package storagetest

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/storage"
)

// Suite runs the shared storage behaviour against a backend. Embed it and set Storage in
// SetupTest.
type Suite struct {
	suite.Suite
	Storage storage.Storage
	Ctx     context.Context
}

func record(id model.GameID, finishedAt time.Time) *model.GameRecord {
	return &model.GameRecord{
		ID:         id,
		RoomCode:   "ABC123",
		White:      model.PlayerDescriptor{Name: "alice", Rating: 1600, Handicap: 5},
		Black:      model.PlayerDescriptor{Name: "bob", Rating: 1400},
		Moves:      []string{"e2e4", "e7e5"},
		Result:     model.ResultBlack,
		Reason:     model.ReasonResignation,
		StartedAt:  finishedAt.Add(-time.Minute),
		FinishedAt: finishedAt,
	}
}

func (s *Suite) TestSaveAndGetGameRecord() {
	now := time.Now().UTC().Truncate(time.Second)
	rec := record("g-1", now)

	s.Require().NoError(s.Storage.SaveGameRecord(s.Ctx, rec))

	got, err := s.Storage.GetGameRecord(s.Ctx, "g-1")
	s.Require().NoError(err)
	s.Equal(rec.RoomCode, got.RoomCode)
	s.Equal(rec.White, got.White)
	s.Equal(rec.Moves, got.Moves)
	s.Equal(model.ResultBlack, got.Result)
	s.True(rec.FinishedAt.Equal(got.FinishedAt))
}

func (s *Suite) TestGetGameRecordNotFound() {
	_, err := s.Storage.GetGameRecord(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrGameNotFound)
}

func (s *Suite) TestListGameRecords_NewestFirst() {
	base := time.Now().UTC().Truncate(time.Second)
	s.Require().NoError(s.Storage.SaveGameRecord(s.Ctx, record("old", base.Add(-2*time.Hour))))
	s.Require().NoError(s.Storage.SaveGameRecord(s.Ctx, record("new", base)))
	s.Require().NoError(s.Storage.SaveGameRecord(s.Ctx, record("mid", base.Add(-time.Hour))))

	all, err := s.Storage.ListGameRecords(s.Ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(model.GameID("new"), all[0].ID)
	s.Equal(model.GameID("mid"), all[1].ID)
	s.Equal(model.GameID("old"), all[2].ID)

	limited, err := s.Storage.ListGameRecords(s.Ctx, 2)
	s.Require().NoError(err)
	s.Len(limited, 2)
}

func (s *Suite) TestLocalGameLifecycle() {
	now := time.Now().UTC().Truncate(time.Second)
	game := &model.LocalGame{
		ID:        "l-1",
		White:     model.PlayerDescriptor{Name: "alice"},
		Black:     model.PlayerDescriptor{Name: "bob", Handicap: 18},
		Moves:     []string{"e2e4"},
		Result:    model.ResultNone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.Require().NoError(s.Storage.SaveLocalGame(s.Ctx, game))

	got, err := s.Storage.GetLocalGame(s.Ctx, "l-1")
	s.Require().NoError(err)
	s.Equal([]string{"e2e4"}, got.Moves)
	s.Equal(model.HandicapID(18), got.Black.Handicap)

	// stored copies are independent of the caller's value
	game.Moves = append(game.Moves, "e7e5")
	got, err = s.Storage.GetLocalGame(s.Ctx, "l-1")
	s.Require().NoError(err)
	s.Len(got.Moves, 1)

	s.Require().NoError(s.Storage.DeleteLocalGame(s.Ctx, "l-1"))
	_, err = s.Storage.GetLocalGame(s.Ctx, "l-1")
	s.ErrorIs(err, model.ErrLocalGameNotFound)
}
