package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	mini    *miniredis.Miniredis
	storage *Storage
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RecordTTL = time.Hour
	cfg.LocalGameTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.Storage = s.storage
	s.Ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) TestKeysAndTTL() {
	rec := &model.GameRecord{ID: "g-9", FinishedAt: time.Now()}
	s.Require().NoError(s.storage.SaveGameRecord(s.Ctx, rec))

	s.True(s.mini.Exists("elostealo:record:g-9"))
	s.Equal(time.Hour, s.mini.TTL("elostealo:record:g-9"))

	members, err := s.mini.ZMembers("elostealo:idx:records")
	s.Require().NoError(err)
	s.Equal([]string{"g-9"}, members)
}

func (s *StorageSuite) TestLocalGameExpires() {
	game := &model.LocalGame{ID: "l-9"}
	s.Require().NoError(s.storage.SaveLocalGame(s.Ctx, game))

	s.mini.FastForward(2 * time.Hour)

	_, err := s.storage.GetLocalGame(s.Ctx, "l-9")
	s.ErrorIs(err, model.ErrLocalGameNotFound)
}

func (s *StorageSuite) TestListSkipsExpiredRecords() {
	s.Require().NoError(s.storage.SaveGameRecord(s.Ctx, &model.GameRecord{ID: "g-1", FinishedAt: time.Now()}))
	s.mini.FastForward(2 * time.Hour)
	s.Require().NoError(s.storage.SaveGameRecord(s.Ctx, &model.GameRecord{ID: "g-2", FinishedAt: time.Now()}))

	records, err := s.storage.ListGameRecords(s.Ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(model.GameID("g-2"), records[0].ID)

	members, err := s.mini.ZMembers("elostealo:idx:records")
	s.Require().NoError(err)
	s.Equal([]string{"g-2"}, members)
}

func (s *StorageSuite) TestNewRejectsBadURL() {
	_, err := New(Config{URL: "not a url"})
	s.Error(err)
}
