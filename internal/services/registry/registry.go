package registry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/elostealo/internal/dependencies/clock"
	"github.com/mcoot/elostealo/internal/dependencies/random"
	"github.com/mcoot/elostealo/internal/events"
	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/services/session"
)

const (
	// CodeLength is the length of generated room codes
	CodeLength = 6
	// CodeAlphabet is the characters used in room codes (avoid confusing chars)
	CodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"
	// MaxCodeAttempts bounds the search for a free code
	MaxCodeAttempts = 16
)

// Config holds registry timings
type Config struct {
	// RoomTTL is how long a room may wait for a peer
	RoomTTL time.Duration
	// FinishedRetention is how long a finished room stays reachable
	FinishedRetention time.Duration
	// SweepInterval is how often Run expires idle rooms
	SweepInterval time.Duration
}

// DefaultConfig returns default registry timings
func DefaultConfig() Config {
	return Config{
		RoomTTL:           30 * time.Minute,
		FinishedRetention: 10 * time.Minute,
		SweepInterval:     time.Minute,
	}
}

// Registry maps room codes to live rooms. The index is owned by a single control goroutine;
// it never calls into a room so rooms may call back into it freely.
type Registry struct {
	clock     clock.Clock
	random    random.Random
	publisher events.Publisher
	logger    zerolog.Logger
	config    Config
	roomDeps  session.Deps

	ops     chan func(map[model.RoomCode]*session.Room)
	stopped chan struct{}
	stop    chan struct{}
}

// New creates a registry and starts its control goroutine. roomDeps are passed to every room;
// the registry installs its own OnDissolve.
func New(
	clock clock.Clock,
	random random.Random,
	publisher events.Publisher,
	logger zerolog.Logger,
	cfg Config,
	roomDeps session.Deps,
) *Registry {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	r := &Registry{
		clock:     clock,
		random:    random,
		publisher: publisher,
		logger:    logger.With().Str("component", "registry").Logger(),
		config:    cfg,
		ops:       make(chan func(map[model.RoomCode]*session.Room)),
		stopped:   make(chan struct{}),
		stop:      make(chan struct{}),
	}
	roomDeps.Clock = clock
	roomDeps.Publisher = publisher
	roomDeps.OnDissolve = r.release
	r.roomDeps = roomDeps

	go r.control()
	return r
}

func (r *Registry) control() {
	rooms := make(map[model.RoomCode]*session.Room)
	defer close(r.stopped)
	for {
		select {
		case op := <-r.ops:
			op(rooms)
		case <-r.stop:
			return
		}
	}
}

// exec runs op on the control goroutine and waits for it
func (r *Registry) exec(ctx context.Context, op func(map[model.RoomCode]*session.Room)) error {
	done := make(chan struct{})
	wrapped := func(rooms map[model.RoomCode]*session.Room) {
		op(rooms)
		close(done)
	}
	select {
	case r.ops <- wrapped:
	case <-r.stopped:
		return errors.New("registry stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
	<-done
	return nil
}

// release frees a code if it still belongs to room. Rooms call it from their goroutine as they
// dissolve.
func (r *Registry) release(code model.RoomCode, room *session.Room) {
	_ = r.exec(context.Background(), func(rooms map[model.RoomCode]*session.Room) {
		if rooms[code] == room {
			delete(rooms, code)
		}
	})
}

// CreateRoom opens a room with player seated as white
func (r *Registry) CreateRoom(ctx context.Context, player model.PlayerDescriptor) (*session.Room, session.Seat, error) {
	if err := player.Validate(); err != nil {
		return nil, session.Seat{}, err
	}

	cred, err := session.IssueCredential(r.roomDeps.Config.TicketCost)
	if err != nil {
		return nil, session.Seat{}, fmt.Errorf("failed to issue ticket: %w", err)
	}

	var (
		room *session.Room
		seat session.Seat
	)
	execErr := r.exec(ctx, func(rooms map[model.RoomCode]*session.Room) {
		for range MaxCodeAttempts {
			code := model.RoomCode(r.random.String(CodeLength, CodeAlphabet))
			if code == "" {
				continue
			}
			if _, taken := rooms[code]; taken {
				continue
			}
			room, seat, err = session.NewWithCredential(code, player, cred, r.roomDeps)
			if err == nil {
				rooms[code] = room
			}
			return
		}
		err = model.ErrRegistryExhausted
	})
	if execErr != nil {
		return nil, session.Seat{}, execErr
	}
	if err != nil {
		return nil, session.Seat{}, err
	}

	r.logger.Info().Str("room", string(room.Code())).Msg("room registered")
	r.export(room.Code(), model.EventRoomCreated, model.RoomCreatedPayload{Creator: player.Name})
	return room, seat, nil
}

// Room looks up a live room
func (r *Registry) Room(ctx context.Context, code model.RoomCode) (*session.Room, error) {
	var room *session.Room
	if err := r.exec(ctx, func(rooms map[model.RoomCode]*session.Room) {
		room = rooms[code]
	}); err != nil {
		return nil, err
	}
	if room == nil {
		return nil, model.ErrRoomNotFound
	}
	return room, nil
}

// JoinRoom seats player as black in the room with code
func (r *Registry) JoinRoom(ctx context.Context, code model.RoomCode, player model.PlayerDescriptor) (*session.Room, session.Seat, error) {
	room, err := r.Room(ctx, code)
	if err != nil {
		return nil, session.Seat{}, err
	}
	seat, err := room.Join(ctx, player)
	if err != nil {
		return nil, session.Seat{}, err
	}
	return room, seat, nil
}

// LeaveRoom releases the seat holding ticket in the room with code
func (r *Registry) LeaveRoom(ctx context.Context, code model.RoomCode, ticket string) error {
	room, err := r.Room(ctx, code)
	if err != nil {
		return err
	}
	return room.Leave(ctx, ticket)
}

// Count returns the number of live rooms
func (r *Registry) Count(ctx context.Context) (int, error) {
	var n int
	err := r.exec(ctx, func(rooms map[model.RoomCode]*session.Room) {
		n = len(rooms)
	})
	return n, err
}

func (r *Registry) snapshot(ctx context.Context) ([]*session.Room, error) {
	var out []*session.Room
	err := r.exec(ctx, func(rooms map[model.RoomCode]*session.Room) {
		out = make([]*session.Room, 0, len(rooms))
		for _, room := range rooms {
			out = append(out, room)
		}
	})
	return out, err
}

// ExpireIdleRooms dissolves rooms that waited too long for a peer or finished too long ago.
// It returns how many were dissolved.
func (r *Registry) ExpireIdleRooms(ctx context.Context) int {
	rooms, err := r.snapshot(ctx)
	if err != nil {
		return 0
	}
	now := r.clock.Now()
	awaitingCutoff := now.Add(-r.config.RoomTTL)
	finishedCutoff := now.Add(-r.config.FinishedRetention)

	expired := 0
	for _, room := range rooms {
		ok, err := room.Expire(ctx, awaitingCutoff, finishedCutoff)
		if err != nil {
			// dissolved since the snapshot
			continue
		}
		if ok {
			expired++
		}
	}
	if expired > 0 {
		r.logger.Info().Int("expired", expired).Msg("expired idle rooms")
	}
	return expired
}

// Run sweeps idle rooms until ctx is done
func (r *Registry) Run(ctx context.Context) {
	if r.config.SweepInterval <= 0 {
		<-ctx.Done()
		return
	}
	ticker := r.clock.NewTicker(r.config.SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.Chan():
			r.ExpireIdleRooms(ctx)
		}
	}
}

// Shutdown dissolves every room and stops the control goroutine
func (r *Registry) Shutdown(ctx context.Context) {
	rooms, err := r.snapshot(ctx)
	if err == nil {
		for _, room := range rooms {
			_ = room.Close(ctx)
		}
	}
	select {
	case <-r.stopped:
	default:
		close(r.stop)
		<-r.stopped
	}
}

func (r *Registry) export(code model.RoomCode, eventType model.EventType, payload any) {
	event := model.Event{
		Type:      eventType,
		Timestamp: r.clock.Now(),
		RoomCode:  code,
		Payload:   payload,
	}
	if err := r.publisher.Publish(context.Background(), event); err != nil {
		r.logger.Warn().Err(err).Str("event", string(eventType)).Msg("failed to export event")
	}
}
