package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/mcoot/elostealo/internal/api/handler"
	"github.com/mcoot/elostealo/internal/api/middleware"
	"github.com/mcoot/elostealo/internal/api/response"
	basemiddleware "github.com/mcoot/elostealo/internal/middleware"
	"github.com/mcoot/elostealo/internal/relay"
	"github.com/mcoot/elostealo/internal/services/localgame"
	"github.com/mcoot/elostealo/internal/services/pairing"
	"github.com/mcoot/elostealo/internal/services/registry"
	"github.com/mcoot/elostealo/internal/storage"
)

// RouterConfig holds configuration for the API router
type RouterConfig struct {
	Logger              zerolog.Logger
	Registry            *registry.Registry
	Pairer              *pairing.Pairer
	Storage             storage.Storage
	LocalGameController *localgame.Controller
	WSConfig            relay.WSConfig
	// CORSOrigins lists allowed browser origins; empty allows any
	CORSOrigins []string
}

// NewRouter creates a new API router with all routes configured
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	// Create handlers
	roomHandler := handler.NewRoomHandler(cfg.Registry, cfg.WSConfig, cfg.Logger)
	catalogHandler := handler.NewCatalogHandler(cfg.Pairer)
	gameHandler := handler.NewGameHandler(cfg.Storage, cfg.LocalGameController)

	// API subrouter with common middleware
	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(middleware.Recovery(cfg.Logger))
	api.Use(basemiddleware.Logging(cfg.Logger.With().Str("component", "api").Logger()))

	api.HandleFunc("/health", healthHandler(cfg.Registry)).Methods(http.MethodGet)

	// Catalog and pairing
	api.HandleFunc("/handicaps", catalogHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/handicaps/{id}", catalogHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/pairings", catalogHandler.Pair).Methods(http.MethodPost)

	// Room routes that need no seat
	api.HandleFunc("/rooms", roomHandler.Create).Methods(http.MethodPost)
	api.HandleFunc("/rooms/{code}", roomHandler.Get).Methods(http.MethodGet)
	api.HandleFunc("/rooms/{code}/join", roomHandler.Join).Methods(http.MethodPost)

	// Seat routes (ticket required)
	seats := api.PathPrefix("/rooms/{code}").Subrouter()
	seats.Use(middleware.Ticket)
	seats.HandleFunc("/leave", roomHandler.Leave).Methods(http.MethodPost)
	seats.HandleFunc("/moves", roomHandler.Move).Methods(http.MethodPost)
	seats.HandleFunc("/draw", roomHandler.OfferDraw).Methods(http.MethodPost)
	seats.HandleFunc("/resign", roomHandler.Resign).Methods(http.MethodPost)
	seats.HandleFunc("/state", roomHandler.State).Methods(http.MethodGet)
	seats.HandleFunc("/events", roomHandler.Events).Methods(http.MethodGet)
	seats.HandleFunc("/ws", roomHandler.WebSocket).Methods(http.MethodGet)

	// Finished games
	api.HandleFunc("/games", gameHandler.List).Methods(http.MethodGet)
	api.HandleFunc("/games/{id}", gameHandler.Get).Methods(http.MethodGet)

	// Local games
	api.HandleFunc("/local-games", gameHandler.CreateLocal).Methods(http.MethodPost)
	api.HandleFunc("/local-games/{id}", gameHandler.GetLocal).Methods(http.MethodGet)
	api.HandleFunc("/local-games/{id}/moves", gameHandler.MoveLocal).Methods(http.MethodPost)

	return cors.New(cors.Options{
		AllowedOrigins: cfg.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Accept", middleware.TicketHeader},
	}).Handler(r)
}

func healthHandler(reg *registry.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := reg.Count(r.Context())
		if err != nil {
			response.JSON(w, http.StatusServiceUnavailable, response.Health{Status: "stopping"})
			return
		}
		response.JSON(w, http.StatusOK, response.Health{Status: "ok", Rooms: rooms})
	}
}
