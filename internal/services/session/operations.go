package session

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/relay"
	"github.com/mcoot/elostealo/internal/services/engine"
)

func newRecordID() string {
	return uuid.NewString()
}

// Join seats player as black, assigns handicaps and starts the game
func (r *Room) Join(ctx context.Context, player model.PlayerDescriptor) (Seat, error) {
	cred, err := IssueCredential(r.deps.Config.TicketCost)
	if err != nil {
		return Seat{}, fmt.Errorf("failed to issue ticket: %w", err)
	}

	var seatOut Seat
	err = r.call(ctx, func() error {
		if r.state != model.RoomStateAwaitingPeer {
			return model.ErrRoomFull
		}
		if err := player.Validate(); err != nil {
			return err
		}
		white := r.seats[model.White]
		if strings.EqualFold(strings.TrimSpace(white.player.Name), strings.TrimSpace(player.Name)) {
			return model.ErrNameTaken
		}

		if r.deps.Pairer != nil {
			white.player.Handicap, player.Handicap = r.deps.Pairer.Pair(
				white.player.Rating, player.Rating,
				white.player.Handicap, player.Handicap,
			)
		}
		r.seats[model.Black] = newSeat(model.Black, player, cred.hash)
		r.game = engine.NewGame(white.player.Handicap, player.Handicap)
		r.state = model.RoomStatePaired
		r.startedAt = r.deps.Clock.Now()

		r.logger.Info().
			Str("white", white.player.Name).
			Str("black", player.Name).
			Int("white_handicap", int(white.player.Handicap)).
			Int("black_handicap", int(player.Handicap)).
			Msg("room paired")

		r.notify(model.White, model.EventRoomPaired, model.RoomPairedPayload{Opponent: player.Name})
		r.broadcastSync()
		if white.streamLost {
			white.streamLost = false
			r.markDisconnected(white)
		}

		seatOut = Seat{Color: model.Black, Ticket: cred.Ticket}
		return nil
	})
	return seatOut, err
}

// Leave releases a seat. Before pairing it dissolves the room; during a game it counts as a
// disconnect; after the game the room dissolves once both seats have left.
func (r *Room) Leave(ctx context.Context, ticket string) error {
	return r.call(ctx, func() error {
		s, err := r.authenticate(ticket)
		if err != nil {
			return err
		}

		switch r.state {
		case model.RoomStateAwaitingPeer:
			r.dissolve("creator_left")
		case model.RoomStatePaired:
			for sub := range s.subs {
				r.hub.Unsubscribe(sub)
			}
			s.subs = map[*relay.Subscriber]struct{}{}
			r.markDisconnected(s)
		case model.RoomStateFinished:
			s.left = true
			for sub := range s.subs {
				r.hub.Unsubscribe(sub)
			}
			s.subs = map[*relay.Subscriber]struct{}{}
			if r.opponent(s).left {
				r.dissolve("finished")
			}
		}
		return nil
	})
}

// SubmitMove plays a UCI move for the seat holding ticket and returns the seat's new state
func (r *Room) SubmitMove(ctx context.Context, ticket, uci string) (model.StateSync, error) {
	var out model.StateSync
	err := r.call(ctx, func() error {
		s, err := r.authenticate(ticket)
		if err != nil {
			return err
		}
		if !r.running() {
			return model.ErrGameNotInProgress
		}
		if r.game.Turn() != s.color {
			return model.ErrNotYourTurn
		}
		if err := r.game.Apply(uci); err != nil {
			return err
		}

		// moving declines the standing offer
		r.opponent(s).drawOffered = false

		r.broadcastSync()
		if r.game.Snapshot().Result.Finished() {
			r.finishGame()
		}
		out = r.syncFor(s.color, false)
		return nil
	})
	return out, err
}

// OfferDraw records a draw offer, or agrees the draw when the opponent already offered one
func (r *Room) OfferDraw(ctx context.Context, ticket string) (model.StateSync, error) {
	var out model.StateSync
	err := r.call(ctx, func() error {
		s, err := r.authenticate(ticket)
		if err != nil {
			return err
		}
		if !r.running() {
			return model.ErrGameNotInProgress
		}

		if r.opponent(s).drawOffered {
			r.game.AgreeDraw()
			r.broadcastSync()
			r.finishGame()
		} else if !s.drawOffered {
			s.drawOffered = true
			r.notify(s.color.Opposite(), model.EventDrawOffered, model.DrawOfferedPayload{By: s.color})
		}
		out = r.syncFor(s.color, false)
		return nil
	})
	return out, err
}

// Resign concedes the game for the seat holding ticket
func (r *Room) Resign(ctx context.Context, ticket string) (model.StateSync, error) {
	var out model.StateSync
	err := r.call(ctx, func() error {
		s, err := r.authenticate(ticket)
		if err != nil {
			return err
		}
		if !r.running() {
			return model.ErrGameNotInProgress
		}
		r.game.Resign(s.color)
		r.broadcastSync()
		r.finishGame()
		out = r.syncFor(s.color, false)
		return nil
	})
	return out, err
}

// Subscribe attaches a transport to the seat holding ticket. A disconnected seat is
// reconnected and the subscriber receives a resync once the game has started.
func (r *Room) Subscribe(ctx context.Context, ticket string) (*relay.Subscriber, error) {
	var sub *relay.Subscriber
	err := r.call(ctx, func() error {
		s, err := r.authenticate(ticket)
		if err != nil {
			return err
		}
		if s.left {
			return model.ErrInvalidTicket
		}
		sub = r.hub.Subscribe(s.color)
		if sub == nil {
			return model.ErrRoomNotFound
		}
		s.subs[sub] = struct{}{}
		s.streamLost = false

		if s.disconnected {
			s.disconnected = false
			r.stopGrace(s)
			r.logger.Info().Str("color", string(s.color)).Msg("seat reconnected")
			r.notify(s.color.Opposite(), model.EventPeerReconnected, model.PeerPayload{
				Color: s.color,
				Name:  s.player.Name,
			})
		}

		if r.game != nil {
			r.notify(s.color, model.EventStateSync, r.syncFor(s.color, true))
		}
		if opp := r.opponent(s); opp != nil && opp.disconnected {
			r.notify(s.color, model.EventPeerDisconnected, model.PeerPayload{
				Color: opp.color,
				Name:  opp.player.Name,
			})
		}
		return nil
	})
	return sub, err
}

// Unsubscribe detaches a transport. When the seat's last transport goes while the game is
// running the grace period starts.
func (r *Room) Unsubscribe(ctx context.Context, sub *relay.Subscriber) error {
	return r.do(ctx, func() {
		r.hub.Unsubscribe(sub)
		s := r.seats[sub.Color()]
		if s == nil {
			return
		}
		if _, ok := s.subs[sub]; !ok {
			return
		}
		delete(s.subs, sub)
		if len(s.subs) == 0 {
			r.markDisconnected(s)
		}
	})
}

func (r *Room) markDisconnected(s *seat) {
	if s.disconnected {
		return
	}
	if !r.running() {
		if r.state == model.RoomStateAwaitingPeer {
			s.streamLost = true
		}
		return
	}
	s.disconnected = true
	r.stopGrace(s)
	gen := s.graceGen
	color := s.color
	s.graceTimer = r.deps.Clock.AfterFunc(r.deps.Config.GracePeriod, func() {
		_ = r.do(context.Background(), func() { r.graceExpired(color, gen) })
	})

	r.logger.Info().
		Str("color", string(color)).
		Dur("grace", r.deps.Config.GracePeriod).
		Msg("seat disconnected")
	r.notify(color.Opposite(), model.EventPeerDisconnected, model.PeerPayload{
		Color: color,
		Name:  s.player.Name,
	})
}

func (r *Room) graceExpired(color model.Color, gen uint64) {
	s := r.seats[color]
	if s == nil || !s.disconnected || s.graceGen != gen || !r.running() {
		return
	}
	s.graceTimer = nil
	r.game.Abandon(color)
	result := r.game.Snapshot().Result

	r.logger.Info().Str("color", string(color)).Msg("grace period expired, seat abandoned")
	r.notify(color.Opposite(), model.EventAbandoned, model.AbandonedPayload{
		Color:  color,
		Name:   s.player.Name,
		Result: result,
	})
	r.finishGame()
	r.dissolve("abandoned")
}

// Snapshot returns the current state for the seat holding ticket
func (r *Room) Snapshot(ctx context.Context, ticket string) (model.StateSync, error) {
	var out model.StateSync
	err := r.call(ctx, func() error {
		s, err := r.authenticate(ticket)
		if err != nil {
			return err
		}
		if r.game == nil {
			return model.ErrGameNotInProgress
		}
		out = r.syncFor(s.color, false)
		return nil
	})
	return out, err
}

// Info returns the public view of the room
func (r *Room) Info(ctx context.Context) (model.RoomInfo, error) {
	var info model.RoomInfo
	err := r.do(ctx, func() {
		info = model.RoomInfo{
			Code:      r.code,
			State:     r.state,
			White:     r.seats[model.White].player.Name,
			Result:    model.ResultNone,
			CreatedAt: r.createdAt,
		}
		if black := r.seats[model.Black]; black != nil {
			info.Black = black.player.Name
		}
		if r.game != nil {
			st := r.game.Snapshot()
			info.MoveCount = st.MoveCount
			info.Result = st.Result
		}
	})
	return info, err
}

// Expire dissolves the room if it has been awaiting a peer since before awaitingCutoff or
// finished since before finishedCutoff. It reports whether the room was dissolved.
func (r *Room) Expire(ctx context.Context, awaitingCutoff, finishedCutoff time.Time) (bool, error) {
	var expired bool
	err := r.do(ctx, func() {
		switch {
		case r.state == model.RoomStateAwaitingPeer && r.createdAt.Before(awaitingCutoff):
			r.dissolve("expired")
			expired = true
		case r.state == model.RoomStateFinished && r.finishedAt.Before(finishedCutoff):
			r.dissolve("retention")
			expired = true
		}
	})
	return expired, err
}

// Close dissolves the room regardless of its state
func (r *Room) Close(ctx context.Context) error {
	return r.do(ctx, func() { r.dissolve("shutdown") })
}
