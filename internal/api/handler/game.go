package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/elostealo/internal/api/request"
	"github.com/mcoot/elostealo/internal/api/response"
	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/services/localgame"
	"github.com/mcoot/elostealo/internal/storage"
)

const (
	defaultGameListLimit = 50
	maxGameListLimit     = 500
)

// GameHandler handles finished game records and local games
type GameHandler struct {
	storage   storage.Storage
	localGame *localgame.Controller
}

// NewGameHandler creates a new game handler
func NewGameHandler(storage storage.Storage, localGame *localgame.Controller) *GameHandler {
	return &GameHandler{
		storage:   storage,
		localGame: localGame,
	}
}

func gameID(r *http.Request) model.GameID {
	return model.GameID(mux.Vars(r)["id"])
}

// List handles GET /api/v1/games
func (h *GameHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultGameListLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			WriteError(w, NewInvalidRequestError("limit must be a positive number"))
			return
		}
		limit = min(n, maxGameListLimit)
	}

	games, err := h.storage.ListGameRecords(r.Context(), limit)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.GameList{Games: games})
}

// Get handles GET /api/v1/games/{id}
func (h *GameHandler) Get(w http.ResponseWriter, r *http.Request) {
	record, err := h.storage.GetGameRecord(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, record)
}

// CreateLocal handles POST /api/v1/local-games
func (h *GameHandler) CreateLocal(w http.ResponseWriter, r *http.Request) {
	var req request.CreateLocalGameRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	view, err := h.localGame.Create(r.Context(), req.White.ToModel(), req.Black.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.LocalGameFromView(view))
}

// GetLocal handles GET /api/v1/local-games/{id}
func (h *GameHandler) GetLocal(w http.ResponseWriter, r *http.Request) {
	view, err := h.localGame.Get(r.Context(), gameID(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LocalGameFromView(view))
}

// MoveLocal handles POST /api/v1/local-games/{id}/moves
func (h *GameHandler) MoveLocal(w http.ResponseWriter, r *http.Request) {
	var req request.LocalMoveRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Move == "" {
		WriteError(w, NewInvalidRequestError("move is required"))
		return
	}
	view, err := h.localGame.Move(r.Context(), gameID(r), req.Color, req.Move)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.LocalGameFromView(view))
}
