package client

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/elostealo/internal/api/request"
	"github.com/mcoot/elostealo/internal/api/response"
	"github.com/mcoot/elostealo/internal/model"
)

// DefaultRetryDelay is how long Listen waits before reopening a dropped stream
const DefaultRetryDelay = time.Second

// Handle is one client's connection to one seat. Construct it once and pass it to whatever
// needs to send or receive room messages. It is safe for concurrent use.
type Handle struct {
	client     *Client
	logger     zerolog.Logger
	retryDelay time.Duration

	mu      sync.Mutex
	session *Session
	ticket  string
}

// NewHandle creates an idle handle
func NewHandle(c *Client, logger zerolog.Logger) *Handle {
	return &Handle{
		client:     c,
		logger:     logger.With().Str("component", "client").Logger(),
		retryDelay: DefaultRetryDelay,
		session:    NewSession(),
	}
}

// SetRetryDelay changes the stream reconnect delay
func (h *Handle) SetRetryDelay(d time.Duration) {
	h.retryDelay = d
}

// View returns the current session state
func (h *Handle) View() View {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session.View()
}

// Ticket returns the seat ticket, empty when not seated
func (h *Handle) Ticket() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.ticket
}

// Create opens a room as its creator
func (h *Handle) Create(ctx context.Context, player request.Player) (response.Seat, error) {
	if err := h.withSession(func(s *Session) error { return s.BeginCreate() }); err != nil {
		return response.Seat{}, err
	}
	seat, err := h.client.CreateRoom(ctx, player)
	h.seated(seat, err)
	return seat, err
}

// Join takes the second seat in the room with code
func (h *Handle) Join(ctx context.Context, code model.RoomCode, player request.Player) (response.Seat, error) {
	if err := h.withSession(func(s *Session) error { return s.BeginJoin() }); err != nil {
		return response.Seat{}, err
	}
	seat, err := h.client.JoinRoom(ctx, code, player)
	h.seated(seat, err)
	return seat, err
}

// Resume reattaches to a seat obtained earlier, for example by another process
func (h *Handle) Resume(code model.RoomCode, color model.Color, ticket string) error {
	return h.withSession(func(s *Session) error {
		if err := s.BeginJoin(); err != nil {
			return err
		}
		s.Seated(code, color)
		h.ticket = ticket
		return nil
	})
}

func (h *Handle) seated(seat response.Seat, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.session.Reset()
		return
	}
	h.session.Seated(seat.Code, seat.Color)
	h.ticket = seat.Ticket
}

func (h *Handle) withSession(fn func(s *Session) error) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return fn(h.session)
}

func (h *Handle) seat() (model.RoomCode, string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.session.code, h.ticket
}

// Move submits uci after checking it against the last known position
func (h *Handle) Move(ctx context.Context, uci string) (View, error) {
	if err := h.withSession(func(s *Session) error { return s.SubmitMove(uci) }); err != nil {
		return h.View(), err
	}
	code, ticket := h.seat()
	st, err := h.client.Move(ctx, code, ticket, uci)

	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.session.MoveRejected(err)
		return h.session.View(), err
	}
	h.applyLocked(st)
	return h.session.View(), nil
}

// OfferDraw offers a draw, or accepts the opponent's offer
func (h *Handle) OfferDraw(ctx context.Context) (View, error) {
	code, ticket := h.seat()
	return h.applyResponse(h.client.OfferDraw(ctx, code, ticket))
}

// Resign concedes the game
func (h *Handle) Resign(ctx context.Context) (View, error) {
	code, ticket := h.seat()
	return h.applyResponse(h.client.Resign(ctx, code, ticket))
}

// Refresh fetches the seat's snapshot directly
func (h *Handle) Refresh(ctx context.Context) (View, error) {
	code, ticket := h.seat()
	return h.applyResponse(h.client.State(ctx, code, ticket))
}

func (h *Handle) applyResponse(st model.StateSync, err error) (View, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		return h.session.View(), err
	}
	h.applyLocked(st)
	return h.session.View(), nil
}

// applyLocked applies a sync returned by a command. The stream may already have delivered a
// newer one, so staleness is expected here.
func (h *Handle) applyLocked(st model.StateSync) {
	if _, err := h.session.ApplySync(st); err != nil && !errors.Is(err, model.ErrStaleSync) {
		h.logger.Debug().Err(err).Msg("ignoring sync")
	}
}

// Leave gives up the seat and returns to idle
func (h *Handle) Leave(ctx context.Context) error {
	code, ticket := h.seat()
	if err := h.client.LeaveRoom(ctx, code, ticket); err != nil && !errors.Is(err, model.ErrRoomNotFound) {
		return err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.session.Reset()
	h.ticket = ""
	return nil
}

// Listen follows the seat's event stream, feeding the session and calling fn after every change.
// A dropped stream is reopened after the retry delay; the server answers with a resync. Listen
// returns nil once the seat has been left or the room is gone after the game finished, and ctx's
// error when cancelled.
func (h *Handle) Listen(ctx context.Context, fn func(View)) error {
	for {
		if h.View().Phase == PhaseIdle {
			return nil
		}
		code, ticket := h.seat()
		stream, err := h.client.Events(ctx, code, ticket)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				if h.View().Phase == PhaseFinished {
					return nil
				}
				return err
			}
			h.logger.Debug().Err(err).Msg("event stream unavailable")
		} else {
			err = h.consume(stream, fn)
			_ = stream.Close()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			h.logger.Debug().Err(err).Msg("event stream ended")
		}

		h.mu.Lock()
		changed := h.session.TransportLost()
		view := h.session.View()
		h.mu.Unlock()
		if changed {
			fn(view)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(h.retryDelay):
		}
	}
}

func (h *Handle) consume(stream *Stream, fn func(View)) error {
	for {
		frame, err := stream.Next()
		if err != nil {
			return err
		}
		if frame.Event == "connected" {
			continue
		}

		h.mu.Lock()
		changed, err := h.session.HandleEvent(model.EventType(frame.Event), []byte(frame.Data))
		view := h.session.View()
		h.mu.Unlock()

		if err != nil {
			h.logger.Debug().Err(err).Str("event", frame.Event).Msg("event not applied")
			continue
		}
		if changed {
			fn(view)
		}
	}
}
