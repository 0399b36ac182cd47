package handler

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/mcoot/elostealo/internal/api/middleware"
	"github.com/mcoot/elostealo/internal/api/request"
	"github.com/mcoot/elostealo/internal/api/response"
	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/relay"
	"github.com/mcoot/elostealo/internal/services/registry"
	"github.com/mcoot/elostealo/internal/services/session"
)

// RoomHandler handles room and seat endpoints
type RoomHandler struct {
	registry *registry.Registry
	upgrader websocket.Upgrader
	wsConfig relay.WSConfig
	logger   zerolog.Logger
}

// NewRoomHandler creates a new room handler
func NewRoomHandler(reg *registry.Registry, wsConfig relay.WSConfig, logger zerolog.Logger) *RoomHandler {
	return &RoomHandler{
		registry: reg,
		upgrader: relay.NewUpgrader(),
		wsConfig: wsConfig,
		logger:   logger.With().Str("component", "rooms").Logger(),
	}
}

func roomCode(r *http.Request) model.RoomCode {
	return model.RoomCode(mux.Vars(r)["code"])
}

func (h *RoomHandler) room(r *http.Request) (*session.Room, error) {
	return h.registry.Room(r.Context(), roomCode(r))
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	room, seat, err := h.registry.CreateRoom(r.Context(), req.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := room.Info(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusCreated, response.SeatFromSession(room.Code(), seat, &info))
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	room, err := h.room(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	info, err := room.Info(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, info)
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRoomRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}

	room, seat, err := h.registry.JoinRoom(r.Context(), roomCode(r), req.ToModel())
	if err != nil {
		WriteError(w, err)
		return
	}

	info, err := room.Info(r.Context())
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, response.SeatFromSession(room.Code(), seat, &info))
}

// Leave handles POST /api/v1/rooms/{code}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	err := h.registry.LeaveRoom(r.Context(), roomCode(r), middleware.GetTicket(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.NoContent(w)
}

// Move handles POST /api/v1/rooms/{code}/moves
func (h *RoomHandler) Move(w http.ResponseWriter, r *http.Request) {
	var req request.MoveRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.Move == "" {
		WriteError(w, NewInvalidRequestError("move is required"))
		return
	}

	room, err := h.room(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	sync, err := room.SubmitMove(r.Context(), middleware.GetTicket(r.Context()), req.Move)
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sync)
}

// OfferDraw handles POST /api/v1/rooms/{code}/draw
func (h *RoomHandler) OfferDraw(w http.ResponseWriter, r *http.Request) {
	room, err := h.room(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	sync, err := room.OfferDraw(r.Context(), middleware.GetTicket(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sync)
}

// Resign handles POST /api/v1/rooms/{code}/resign
func (h *RoomHandler) Resign(w http.ResponseWriter, r *http.Request) {
	room, err := h.room(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	sync, err := room.Resign(r.Context(), middleware.GetTicket(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sync)
}

// State handles GET /api/v1/rooms/{code}/state
func (h *RoomHandler) State(w http.ResponseWriter, r *http.Request) {
	room, err := h.room(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	sync, err := room.Snapshot(r.Context(), middleware.GetTicket(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, sync)
}

// Events handles GET /api/v1/rooms/{code}/events
func (h *RoomHandler) Events(w http.ResponseWriter, r *http.Request) {
	room, err := h.room(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	sub, err := room.Subscribe(r.Context(), middleware.GetTicket(r.Context()))
	if err != nil {
		WriteError(w, err)
		return
	}
	defer func() { _ = room.Unsubscribe(context.Background(), sub) }()

	h.logger.Debug().
		Str("room", string(room.Code())).
		Str("color", string(sub.Color())).
		Msg("sse client connected")
	relay.ServeSSE(w, r, sub)
}

// WebSocket handles GET /api/v1/rooms/{code}/ws
func (h *RoomHandler) WebSocket(w http.ResponseWriter, r *http.Request) {
	room, err := h.room(r)
	if err != nil {
		WriteError(w, err)
		return
	}
	ticket := middleware.GetTicket(r.Context())
	sub, err := room.Subscribe(r.Context(), ticket)
	if err != nil {
		WriteError(w, err)
		return
	}
	defer func() { _ = room.Unsubscribe(context.Background(), sub) }()

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// the upgrader has already written the error response
		h.logger.Debug().Err(err).Msg("websocket upgrade failed")
		return
	}

	logger := h.logger.With().
		Str("room", string(room.Code())).
		Str("color", string(sub.Color())).
		Logger()
	logger.Debug().Msg("websocket client connected")

	ctx := context.Background()
	relay.ServeWS(conn, sub, func(cmd relay.Command) error {
		switch cmd.Type {
		case relay.CommandMove:
			_, err := room.SubmitMove(ctx, ticket, cmd.Move)
			return err
		case relay.CommandOfferDraw:
			_, err := room.OfferDraw(ctx, ticket)
			return err
		case relay.CommandResign:
			_, err := room.Resign(ctx, ticket)
			return err
		case relay.CommandLeave:
			return h.registry.LeaveRoom(ctx, room.Code(), ticket)
		default:
			return NewInvalidRequestError("unknown command " + cmd.Type)
		}
	}, h.wsConfig, logger)
}
