package catalog

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/mcoot/elostealo/internal/model"
)

// Rule is a row of the rules table
type Rule struct {
	ID          int    `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"not null"`
	Elo         int    `gorm:"not null;index"`
	Description string
}

// TableName pins the table name
func (Rule) TableName() string {
	return "rules"
}

// PostgresSource reads handicaps from the rules table
type PostgresSource struct {
	db *gorm.DB
}

var _ Source = (*PostgresSource)(nil)

// NewPostgresSource creates a source over an open gorm connection
func NewPostgresSource(db *gorm.DB) *PostgresSource {
	return &PostgresSource{db: db}
}

// Migrate creates or updates the rules table
func (s *PostgresSource) Migrate(ctx context.Context) error {
	return s.db.WithContext(ctx).AutoMigrate(&Rule{})
}

// Handicaps loads every rule ordered by cost
func (s *PostgresSource) Handicaps(ctx context.Context) ([]model.Handicap, error) {
	var rules []Rule
	if err := s.db.WithContext(ctx).Order("elo, id").Find(&rules).Error; err != nil {
		return nil, fmt.Errorf("failed to query rules: %w", err)
	}
	out := make([]model.Handicap, 0, len(rules))
	for _, r := range rules {
		out = append(out, ruleToHandicap(r))
	}
	return out, nil
}

// Seed replaces the contents of the rules table with the entries from src
func (s *PostgresSource) Seed(ctx context.Context, src Source) (int, error) {
	entries, err := src.Handicaps(ctx)
	if err != nil {
		return 0, err
	}
	// validate before touching the table
	if _, err := New(entries); err != nil {
		return 0, err
	}

	rules := make([]Rule, 0, len(entries))
	for _, h := range entries {
		rules = append(rules, handicapToRule(h))
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(&Rule{}).Error; err != nil {
			return fmt.Errorf("failed to clear rules: %w", err)
		}
		if len(rules) == 0 {
			return nil
		}
		if err := tx.Create(&rules).Error; err != nil {
			return fmt.Errorf("failed to insert rules: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return len(rules), nil
}

func ruleToHandicap(r Rule) model.Handicap {
	return model.Handicap{
		ID:          model.HandicapID(r.ID),
		Name:        r.Name,
		Cost:        r.Elo,
		Description: r.Description,
	}
}

func handicapToRule(h model.Handicap) Rule {
	return Rule{
		ID:          int(h.ID),
		Name:        h.Name,
		Elo:         h.Cost,
		Description: h.Description,
	}
}
