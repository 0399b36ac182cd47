package session

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"

	"github.com/mcoot/elostealo/internal/dependencies/clock"
	"github.com/mcoot/elostealo/internal/events"
	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/relay"
	"github.com/mcoot/elostealo/internal/services/engine"
	"github.com/mcoot/elostealo/internal/services/pairing"
)

// How long a finished game has to reach storage
const recordTimeout = 5 * time.Second

// Recorder archives finished games
type Recorder interface {
	SaveGameRecord(ctx context.Context, record *model.GameRecord) error
}

// Config holds per-room behaviour settings
type Config struct {
	// GracePeriod is how long a disconnected seat has to reconnect before abandoning
	GracePeriod time.Duration
	// Policy controls what each seat sees of the other
	Policy Policy
	// TicketCost is the bcrypt cost for seat ticket hashes
	TicketCost int
}

// DefaultConfig returns the standard room settings
func DefaultConfig() Config {
	return Config{
		GracePeriod: 30 * time.Second,
		Policy:      PolicyFull,
		TicketCost:  DefaultTicketCost,
	}
}

// Deps are the collaborators shared by every room
type Deps struct {
	Clock     clock.Clock
	Pairer    *pairing.Pairer
	Hubs      *relay.HubManager
	Recorder  Recorder
	Publisher events.Publisher
	Logger    zerolog.Logger
	Config    Config

	// OnDissolve is called from the room goroutine once the room has stopped accepting work.
	// The registry uses it to free the code.
	OnDissolve func(code model.RoomCode, room *Room)
}

// Seat is the credential handed to a participant
type Seat struct {
	Color  model.Color `json:"color"`
	Ticket string      `json:"ticket"`
}

type seat struct {
	color      model.Color
	player     model.PlayerDescriptor
	ticketHash []byte
	subs       map[*relay.Subscriber]struct{}

	disconnected bool
	// streamLost marks a seat whose last transport went before the game started
	streamLost bool
	graceGen   uint64
	graceTimer clockwork.Timer

	drawOffered bool
	left        bool
}

type command struct {
	fn   func()
	done chan struct{}
}

// Room is the actor for one room. All state below is owned by the run goroutine.
type Room struct {
	code      model.RoomCode
	createdAt time.Time
	deps      Deps
	logger    zerolog.Logger

	inbox   chan command
	stopped chan struct{}

	state      model.RoomState
	seats      map[model.Color]*seat
	game       *engine.Game
	hub        *relay.Hub
	startedAt  time.Time
	finishedAt time.Time
}

// New creates a room awaiting a peer with the creator seated as white and starts its goroutine
func New(code model.RoomCode, creator model.PlayerDescriptor, deps Deps) (*Room, Seat, error) {
	if err := creator.Validate(); err != nil {
		return nil, Seat{}, err
	}
	cred, err := IssueCredential(deps.Config.TicketCost)
	if err != nil {
		return nil, Seat{}, err
	}
	return NewWithCredential(code, creator, cred, deps)
}

// NewWithCredential is New with the creator's ticket already issued
func NewWithCredential(code model.RoomCode, creator model.PlayerDescriptor, cred Credential, deps Deps) (*Room, Seat, error) {
	if err := creator.Validate(); err != nil {
		return nil, Seat{}, err
	}
	if deps.Config.TicketCost == 0 {
		deps.Config.TicketCost = DefaultTicketCost
	}
	if deps.Config.Policy == "" {
		deps.Config.Policy = PolicyFull
	}
	if deps.Publisher == nil {
		deps.Publisher = events.NopPublisher{}
	}

	r := &Room{
		code:      code,
		createdAt: deps.Clock.Now(),
		deps:      deps,
		logger:    deps.Logger.With().Str("room", string(code)).Logger(),
		inbox:     make(chan command),
		stopped:   make(chan struct{}),
		state:     model.RoomStateAwaitingPeer,
		seats: map[model.Color]*seat{
			model.White: newSeat(model.White, creator, cred.hash),
		},
		hub: deps.Hubs.GetOrCreateHub(code),
	}
	go r.run()

	r.logger.Info().Str("creator", creator.Name).Msg("room created")
	return r, Seat{Color: model.White, Ticket: cred.Ticket}, nil
}

func newSeat(color model.Color, player model.PlayerDescriptor, hash []byte) *seat {
	return &seat{
		color:      color,
		player:     player,
		ticketHash: hash,
		subs:       make(map[*relay.Subscriber]struct{}),
	}
}

// Code returns the room code
func (r *Room) Code() model.RoomCode {
	return r.code
}

// CreatedAt returns when the room was opened
func (r *Room) CreatedAt() time.Time {
	return r.createdAt
}

// Done is closed once the room has dissolved
func (r *Room) Done() <-chan struct{} {
	return r.stopped
}

func (r *Room) run() {
	for cmd := range r.inbox {
		cmd.fn()
		close(cmd.done)
		if r.state == model.RoomStateDissolved {
			close(r.stopped)
			return
		}
	}
}

// do runs fn on the room goroutine and waits for it to finish
func (r *Room) do(ctx context.Context, fn func()) error {
	cmd := command{fn: fn, done: make(chan struct{})}
	select {
	case r.inbox <- cmd:
	case <-r.stopped:
		return model.ErrRoomNotFound
	case <-ctx.Done():
		return ctx.Err()
	}
	<-cmd.done
	return nil
}

// call runs fn on the room goroutine and returns its error
func (r *Room) call(ctx context.Context, fn func() error) error {
	var err error
	if doErr := r.do(ctx, func() { err = fn() }); doErr != nil {
		return doErr
	}
	return err
}

func (r *Room) authenticate(ticket string) (*seat, error) {
	for _, color := range []model.Color{model.White, model.Black} {
		s := r.seats[color]
		if s != nil && ticketMatches(s.ticketHash, ticket) {
			return s, nil
		}
	}
	return nil, model.ErrInvalidTicket
}

func (r *Room) opponent(s *seat) *seat {
	return r.seats[s.color.Opposite()]
}

func (r *Room) running() bool {
	return r.state == model.RoomStatePaired && r.game != nil && !r.game.Snapshot().Result.Finished()
}

func (r *Room) syncFor(color model.Color, resync bool) model.StateSync {
	st := r.game.Snapshot()
	finished := st.Result.Finished()
	policy := r.deps.Config.Policy
	return model.StateSync{
		RoomCode:   r.code,
		MoveCount:  st.MoveCount,
		Board:      st.Board,
		LegalMoves: st.LegalMoves,
		Result:     st.Result,
		Reason:     st.Reason,
		Turn:       st.Turn,
		LastMove:   st.LastMove,
		You:        color,
		White:      policy.View(r.seats[model.White].player, color == model.White, finished),
		Black:      policy.View(r.seats[model.Black].player, color == model.Black, finished),
		Resync:     resync,
	}
}

// notify sends a seat event through the relay. An empty target reaches both seats.
func (r *Room) notify(target model.Color, eventType model.EventType, payload any) {
	event := model.Event{
		Type:      eventType,
		Timestamp: r.deps.Clock.Now(),
		RoomCode:  r.code,
		Payload:   payload,
	}
	if _, err := r.hub.Publish(target, event); err != nil {
		r.logger.Error().Err(err).Str("event", string(eventType)).Msg("failed to publish to relay")
	}
}

func (r *Room) broadcastSync() {
	for _, color := range []model.Color{model.White, model.Black} {
		r.notify(color, model.EventStateSync, r.syncFor(color, false))
	}
}

// export publishes a lifecycle event to the event bus
func (r *Room) export(eventType model.EventType, payload any) {
	event := model.Event{
		Type:      eventType,
		Timestamp: r.deps.Clock.Now(),
		RoomCode:  r.code,
		Payload:   payload,
	}
	if err := r.deps.Publisher.Publish(context.Background(), event); err != nil {
		r.logger.Warn().Err(err).Str("event", string(eventType)).Msg("failed to export event")
	}
}

// finishGame archives a game that has just reached a result
func (r *Room) finishGame() {
	st := r.game.Snapshot()
	r.state = model.RoomStateFinished
	r.finishedAt = r.deps.Clock.Now()
	for _, s := range r.seats {
		r.stopGrace(s)
		s.drawOffered = false
	}

	record := &model.GameRecord{
		ID:         model.GameID(newRecordID()),
		RoomCode:   r.code,
		White:      r.seats[model.White].player,
		Black:      r.seats[model.Black].player,
		Moves:      r.game.Moves(),
		Result:     st.Result,
		Reason:     st.Reason,
		StartedAt:  r.startedAt,
		FinishedAt: r.finishedAt,
	}
	if r.deps.Recorder != nil {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := r.deps.Recorder.SaveGameRecord(ctx, record); err != nil {
			r.logger.Error().Err(err).Msg("failed to save game record")
		}
		cancel()
	}

	r.logger.Info().
		Str("result", string(st.Result)).
		Str("reason", string(st.Reason)).
		Int("moves", st.MoveCount).
		Msg("game finished")
	r.export(model.EventGameFinished, model.GameFinishedPayload{
		RecordID: record.ID,
		Result:   st.Result,
		Reason:   st.Reason,
		Moves:    st.MoveCount,
	})
}

func (r *Room) stopGrace(s *seat) {
	s.graceGen++
	if s.graceTimer != nil {
		s.graceTimer.Stop()
		s.graceTimer = nil
	}
}

// dissolve closes the room. The run loop exits after the current command.
func (r *Room) dissolve(reason string) {
	if r.state == model.RoomStateDissolved {
		return
	}
	r.state = model.RoomStateDissolved
	for _, s := range r.seats {
		r.stopGrace(s)
		s.subs = map[*relay.Subscriber]struct{}{}
	}
	r.deps.Hubs.RemoveHub(r.code, r.hub)

	r.logger.Info().Str("reason", reason).Msg("room dissolved")
	r.export(model.EventRoomDissolved, model.RoomDissolvedPayload{Reason: reason})

	if r.deps.OnDissolve != nil {
		r.deps.OnDissolve(r.code, r)
	}
}
