package postgres

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/mcoot/elostealo/internal/storage/storagetest"
)

type StorageSuite struct {
	storagetest.Suite
	db *gorm.DB
}

func TestStorageSuite(t *testing.T) {
	if os.Getenv("TEST_DATABASE_URL") == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.Ctx = context.Background()

	db, err := Open(os.Getenv("TEST_DATABASE_URL"))
	s.Require().NoError(err)
	s.db = db

	store, err := New(s.Ctx, db)
	s.Require().NoError(err)
	s.Require().NoError(db.Exec("TRUNCATE game_records, local_games").Error)
	s.Storage = store
}

func (s *StorageSuite) TearDownTest() {
	if s.Storage != nil {
		_ = s.Storage.Close()
	}
}
