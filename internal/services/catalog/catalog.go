package catalog

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mcoot/elostealo/internal/model"
)

// Source provides the raw handicap entries
type Source interface {
	Handicaps(ctx context.Context) ([]model.Handicap, error)
}

// Catalog is the read-only set of handicaps, ordered ascending by cost.
// It is never mutated after construction and is safe for concurrent reads.
type Catalog struct {
	entries []model.Handicap
	byID    map[model.HandicapID]model.Handicap
}

// New builds a catalog from entries. IDs must be positive and unique.
func New(entries []model.Handicap) (*Catalog, error) {
	c := &Catalog{
		entries: make([]model.Handicap, 0, len(entries)),
		byID:    make(map[model.HandicapID]model.Handicap, len(entries)),
	}
	for _, h := range entries {
		if h.ID <= 0 {
			return nil, fmt.Errorf("handicap %q has non-positive id %d", h.Name, h.ID)
		}
		if _, dup := c.byID[h.ID]; dup {
			return nil, fmt.Errorf("duplicate handicap id %d", h.ID)
		}
		c.byID[h.ID] = h
		c.entries = append(c.entries, h)
	}
	sort.SliceStable(c.entries, func(i, j int) bool {
		if c.entries[i].Cost != c.entries[j].Cost {
			return c.entries[i].Cost < c.entries[j].Cost
		}
		return c.entries[i].ID < c.entries[j].ID
	})
	return c, nil
}

// Empty returns a catalog with no entries
func Empty() *Catalog {
	return &Catalog{byID: map[model.HandicapID]model.Handicap{}}
}

// Load reads all entries from src. Any source failure is reported as ErrCatalogUnavailable.
func Load(ctx context.Context, src Source) (*Catalog, error) {
	entries, err := src.Handicaps(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCatalogUnavailable, err)
	}
	c, err := New(entries)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", model.ErrCatalogUnavailable, err)
	}
	return c, nil
}

// LoadOrEmpty is Load, degrading to the empty catalog on failure
func LoadOrEmpty(ctx context.Context, src Source, logger zerolog.Logger) *Catalog {
	c, err := Load(ctx, src)
	if err != nil {
		logger.Warn().Err(err).Msg("handicap catalog unavailable, pairing will assign no handicaps")
		return Empty()
	}
	logger.Info().Int("handicaps", c.Len()).Msg("handicap catalog loaded")
	return c
}

// Lookup returns the handicap with the given id
func (c *Catalog) Lookup(id model.HandicapID) (model.Handicap, error) {
	h, ok := c.byID[id]
	if !ok {
		return model.Handicap{}, fmt.Errorf("%w: %d", model.ErrHandicapNotFound, id)
	}
	return h, nil
}

// All returns a copy of the entries in ascending cost order
func (c *Catalog) All() []model.Handicap {
	out := make([]model.Handicap, len(c.entries))
	copy(out, c.entries)
	return out
}

// Len returns the number of entries
func (c *Catalog) Len() int {
	return len(c.entries)
}

// IsEmpty reports whether the catalog has no entries
func (c *Catalog) IsEmpty() bool {
	return len(c.entries) == 0
}

// Where returns the entries matching pred, preserving cost order
func (c *Catalog) Where(pred func(model.Handicap) bool) []model.Handicap {
	var out []model.Handicap
	for _, h := range c.entries {
		if pred(h) {
			out = append(out, h)
		}
	}
	return out
}
