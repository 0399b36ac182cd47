package postgres

import (
	"context"
	"errors"
	"fmt"

	pg "gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/storage"
)

// Storage is a Postgres-backed implementation of the storage interface
type Storage struct {
	db *gorm.DB
}

var _ storage.Storage = (*Storage)(nil)

// Open connects to Postgres using dsn
func Open(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(pg.Open(dsn), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}
	return db, nil
}

// New creates a storage over an open connection and migrates its tables
func New(ctx context.Context, db *gorm.DB) (*Storage, error) {
	if err := db.WithContext(ctx).AutoMigrate(&GameRecordRow{}, &LocalGameRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate: %w", err)
	}
	return &Storage{db: db}, nil
}

// DB exposes the connection so other components can share it
func (s *Storage) DB() *gorm.DB {
	return s.db
}

func (s *Storage) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func (s *Storage) SaveGameRecord(ctx context.Context, record *model.GameRecord) error {
	row, err := recordToRow(record)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
}

func (s *Storage) GetGameRecord(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	var row GameRecordRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrGameNotFound
		}
		return nil, err
	}
	return rowToRecord(&row)
}

func (s *Storage) ListGameRecords(ctx context.Context, limit int) ([]*model.GameRecord, error) {
	q := s.db.WithContext(ctx).Order("finished_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []GameRecordRow
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]*model.GameRecord, 0, len(rows))
	for i := range rows {
		rec, err := rowToRecord(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (s *Storage) SaveLocalGame(ctx context.Context, game *model.LocalGame) error {
	row, err := localToRow(game)
	if err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(row).Error
}

func (s *Storage) GetLocalGame(ctx context.Context, id model.GameID) (*model.LocalGame, error) {
	var row LocalGameRow
	err := s.db.WithContext(ctx).First(&row, "id = ?", string(id)).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, model.ErrLocalGameNotFound
		}
		return nil, err
	}
	return rowToLocal(&row)
}

func (s *Storage) DeleteLocalGame(ctx context.Context, id model.GameID) error {
	return s.db.WithContext(ctx).Delete(&LocalGameRow{}, "id = ?", string(id)).Error
}
