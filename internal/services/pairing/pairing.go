package pairing

import (
	"github.com/mcoot/elostealo/internal/dependencies/random"
	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/services/catalog"
)

// Config holds the pairing constants
type Config struct {
	// Baseline is the cost of the fallback handicaps for the higher-rated player
	Baseline int
	// Tolerance is the half-width of the window around the ideal handicap for the lower-rated player
	Tolerance int
}

// DefaultConfig returns the standard pairing constants
func DefaultConfig() Config {
	return Config{
		Baseline:  1500,
		Tolerance: 150,
	}
}

// Pairer assigns handicaps to two players from a catalog
type Pairer struct {
	catalog *catalog.Catalog
	random  random.Random
	config  Config
}

// NewPairer creates a Pairer
func NewPairer(cat *catalog.Catalog, rng random.Random, cfg Config) *Pairer {
	return &Pairer{catalog: cat, random: rng, config: cfg}
}

// Pair returns the handicaps for players A and B. See Pair.
func (p *Pairer) Pair(ratingA, ratingB int, preA, preB model.HandicapID) (model.HandicapID, model.HandicapID) {
	return Pair(ratingA, ratingB, preA, preB, p.catalog, p.random, p.config)
}

// Catalog returns the catalog the pairer draws from
func (p *Pairer) Catalog() *catalog.Catalog {
	return p.catalog
}

// Pair assigns handicaps so the rating gap is offset.
//
// When either rating is 0 the preselected handicaps are returned. Otherwise the higher-rated
// player draws a handicap costing at least the gap (falling back to the baseline cost) and the
// lower-rated player draws one whose cost is within the tolerance of the remaining difference
// (falling back to cost 0). Equal ratings treat A as the higher one.
func Pair(ratingA, ratingB int, preA, preB model.HandicapID, cat *catalog.Catalog, rng random.Random, cfg Config) (model.HandicapID, model.HandicapID) {
	if ratingA == 0 || ratingB == 0 {
		return preA, preB
	}

	aIsHigher := ratingA >= ratingB
	diff := ratingA - ratingB
	if !aIsHigher {
		diff = -diff
	}

	highSet := cat.Where(func(h model.Handicap) bool { return h.Cost >= diff })
	if len(highSet) == 0 {
		highSet = cat.Where(func(h model.Handicap) bool { return h.Cost == cfg.Baseline })
	}
	if len(highSet) == 0 {
		return preA, preB
	}
	ruleHigh := highSet[rng.Intn(len(highSet))]

	target := ruleHigh.Cost - diff
	lowSet := cat.Where(func(h model.Handicap) bool {
		return h.Cost >= target-cfg.Tolerance && h.Cost <= target+cfg.Tolerance
	})
	if len(lowSet) == 0 {
		lowSet = cat.Where(func(h model.Handicap) bool { return h.Cost == 0 })
	}
	ruleLow := model.NoHandicap
	if len(lowSet) > 0 {
		ruleLow = lowSet[rng.Intn(len(lowSet))].ID
	}

	if aIsHigher {
		return ruleHigh.ID, ruleLow
	}
	return ruleLow, ruleHigh.ID
}
