package factory

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/mcoot/elostealo/internal/api"
	"github.com/mcoot/elostealo/internal/config"
	"github.com/mcoot/elostealo/internal/dependencies/clock"
	"github.com/mcoot/elostealo/internal/dependencies/random"
	"github.com/mcoot/elostealo/internal/events"
	"github.com/mcoot/elostealo/internal/relay"
	"github.com/mcoot/elostealo/internal/services/catalog"
	"github.com/mcoot/elostealo/internal/services/localgame"
	"github.com/mcoot/elostealo/internal/services/pairing"
	"github.com/mcoot/elostealo/internal/services/registry"
	"github.com/mcoot/elostealo/internal/services/session"
	"github.com/mcoot/elostealo/internal/storage"
	"github.com/mcoot/elostealo/internal/storage/memory"
	pgstorage "github.com/mcoot/elostealo/internal/storage/postgres"
	redisstorage "github.com/mcoot/elostealo/internal/storage/redis"
)

// App contains all wired application components
type App struct {
	Config config.Config
	Logger zerolog.Logger

	// Storage
	Storage storage.Storage

	// External dependencies
	Clock     clock.Clock
	Random    random.Random
	Publisher events.Publisher

	// Services
	Catalog             *catalog.Catalog
	Pairer              *pairing.Pairer
	HubManager          *relay.HubManager
	Registry            *registry.Registry
	LocalGameController *localgame.Controller

	// db is the catalog connection when the store does not own it
	db *gorm.DB
}

// New creates a new application with all dependencies wired. Storage and the event
// publisher are chosen by cfg; the catalog degrades to empty if its source is unavailable.
func New(ctx context.Context, cfg config.Config, logger zerolog.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var db *gorm.DB
	if cfg.StorageType == config.StorageTypePostgres || cfg.CatalogSource == config.CatalogSourcePostgres {
		var err error
		db, err = pgstorage.Open(cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
	}

	// shared is the connection nothing else closes
	shared := db
	var store storage.Storage
	switch cfg.StorageType {
	case config.StorageTypeMemory:
		store = memory.New()
	case config.StorageTypeRedis:
		redisCfg := redisstorage.DefaultConfig()
		redisCfg.URL = cfg.RedisURL
		redisStore, err := redisstorage.New(redisCfg)
		if err != nil {
			closeDB(shared)
			return nil, err
		}
		store = redisStore
	case config.StorageTypePostgres:
		pgStore, err := pgstorage.New(ctx, db)
		if err != nil {
			closeDB(db)
			return nil, err
		}
		store = pgStore
		shared = nil
	default:
		closeDB(shared)
		return nil, fmt.Errorf("invalid storage type %q", cfg.StorageType)
	}

	var src catalog.Source
	if cfg.CatalogSource == config.CatalogSourcePostgres {
		pgSource := catalog.NewPostgresSource(db)
		if err := pgSource.Migrate(ctx); err != nil {
			logger.Warn().Err(err).Msg("failed to migrate catalog table")
		}
		src = pgSource
	} else {
		src = catalog.NewFileSource(cfg.CatalogFile)
	}
	cat := catalog.LoadOrEmpty(ctx, src, logger)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.NATSURL != "" {
		natsPublisher, err := events.NewNATSPublisher(events.DefaultNATSConfig(cfg.NATSURL, cfg.NATSSubjectPrefix), logger)
		if err != nil {
			_ = store.Close()
			closeDB(shared)
			return nil, err
		}
		publisher = natsPublisher
	}

	app, err := newWithDependencies(cfg, store, clock.New(), random.New(), publisher, cat, logger)
	if err != nil {
		publisher.Close()
		_ = store.Close()
		closeDB(shared)
		return nil, err
	}
	app.db = shared
	return app, nil
}

func closeDB(db *gorm.DB) {
	if db == nil {
		return
	}
	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// newWithDependencies creates an App with the given dependencies (useful for testing)
func newWithDependencies(
	cfg config.Config,
	store storage.Storage,
	clk clock.Clock,
	rnd random.Random,
	publisher events.Publisher,
	cat *catalog.Catalog,
	logger zerolog.Logger,
) (*App, error) {
	policy, err := session.ParsePolicy(cfg.ConcealPolicy)
	if err != nil {
		return nil, err
	}

	pairer := pairing.NewPairer(cat, rnd, pairing.Config{
		Baseline:  cfg.PairingBaseline,
		Tolerance: cfg.PairingTolerance,
	})
	hubManager := relay.NewHubManager(logger)

	roomConfig := session.DefaultConfig()
	roomConfig.GracePeriod = cfg.GracePeriod
	roomConfig.Policy = policy
	if cfg.TicketCost > 0 {
		roomConfig.TicketCost = cfg.TicketCost
	}

	reg := registry.New(clk, rnd, publisher, logger, registry.Config{
		RoomTTL:           cfg.RoomTTL,
		FinishedRetention: cfg.FinishedRetention,
		SweepInterval:     cfg.SweepInterval,
	}, session.Deps{
		Pairer:   pairer,
		Hubs:     hubManager,
		Recorder: store,
		Logger:   logger,
		Config:   roomConfig,
	})

	return &App{
		Config:              cfg,
		Logger:              logger,
		Storage:             store,
		Clock:               clk,
		Random:              rnd,
		Publisher:           publisher,
		Catalog:             cat,
		Pairer:              pairer,
		HubManager:          hubManager,
		Registry:            reg,
		LocalGameController: localgame.NewController(store, pairer, clk, logger),
	}, nil
}

// Router builds the HTTP handler for the app
func (a *App) Router() http.Handler {
	return api.NewRouter(api.RouterConfig{
		Logger:              a.Logger,
		Registry:            a.Registry,
		Pairer:              a.Pairer,
		Storage:             a.Storage,
		LocalGameController: a.LocalGameController,
		WSConfig:            relay.DefaultWSConfig(),
		CORSOrigins:         a.Config.CORSOrigins,
	})
}

// Close dissolves every room, then releases the publisher, storage and any catalog connection
func (a *App) Close(ctx context.Context) error {
	a.Registry.Shutdown(ctx)
	a.HubManager.CloseAll()
	a.Publisher.Close()
	err := a.Storage.Close()
	closeDB(a.db)
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
