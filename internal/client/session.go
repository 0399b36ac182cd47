package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"

	"github.com/mcoot/elostealo/internal/model"
)

// Phase is the client's view of where the room is in its lifecycle
type Phase string

const (
	PhaseIdle         Phase = "idle"
	PhaseAwaitingPeer Phase = "awaiting_peer"
	PhasePlaying      Phase = "playing"
	PhaseFinished     Phase = "finished"
)

// Pending tracks the local move submission
type Pending string

const (
	PendingNone      Pending = "none"
	PendingSubmitted Pending = "submitted"
	PendingRejected  Pending = "rejected"
)

// Client-side errors. Server errors arrive as model errors.
var (
	ErrSessionActive = errors.New("session already active")
	ErrMovePending   = errors.New("a move is already awaiting confirmation")
	ErrDisconnected  = errors.New("connection to the game is interrupted")
)

// View is a copy of the session state for rendering
type View struct {
	Phase            Phase
	Code             model.RoomCode
	Color            model.Color
	Sync             *model.StateSync
	PeerDisconnected bool
	TransportLost    bool
	Pending          Pending
	PendingMove      string
	LastError        error
	DrawOffered      bool
	Abandoned        *model.AbandonedPayload
}

// Disconnected reports whether moves are currently blocked by connectivity
func (v View) Disconnected() bool {
	return v.PeerDisconnected || v.TransportLost
}

// MyTurn reports whether the local seat may move now
func (v View) MyTurn() bool {
	return v.Phase == PhasePlaying && v.Sync != nil && v.Sync.Turn == v.Color
}

// Session mirrors the room protocol for one seat. It never originates game transitions; it only
// applies what the server sends. It is not safe for concurrent use.
type Session struct {
	phase Phase
	code  model.RoomCode
	color model.Color
	sync  *model.StateSync

	peerDisconnected bool
	transportLost    bool

	pending     Pending
	pendingMove string
	lastErr     error

	drawOffered bool
	abandoned   *model.AbandonedPayload
}

// NewSession creates an idle session
func NewSession() *Session {
	s := &Session{}
	s.Reset()
	return s
}

// Reset returns the session to idle
func (s *Session) Reset() {
	*s = Session{phase: PhaseIdle, pending: PendingNone}
}

// BeginCreate starts waiting for a peer after asking for a new room
func (s *Session) BeginCreate() error {
	return s.begin()
}

// BeginJoin starts waiting for the first sync after asking to join a room
func (s *Session) BeginJoin() error {
	return s.begin()
}

func (s *Session) begin() error {
	if s.phase == PhaseAwaitingPeer || s.phase == PhasePlaying {
		return ErrSessionActive
	}
	s.Reset()
	s.phase = PhaseAwaitingPeer
	return nil
}

// Seated records the seat assigned by the server
func (s *Session) Seated(code model.RoomCode, color model.Color) {
	s.code = code
	s.color = color
}

// ApplySync applies an authoritative snapshot. It reports whether anything changed. Out-of-order
// syncs return model.ErrStaleSync and leave the session untouched.
func (s *Session) ApplySync(sync model.StateSync) (bool, error) {
	if s.phase == PhaseIdle {
		return false, model.ErrGameNotInProgress
	}

	if s.sync != nil {
		last := s.sync.MoveCount
		inOrder := sync.MoveCount == last+1 || sync.MoveCount == last ||
			(sync.Resync && sync.MoveCount >= last)
		if !inOrder {
			return false, fmt.Errorf("%w: move %d after %d", model.ErrStaleSync, sync.MoveCount, last)
		}
		if s.phase == PhaseFinished && sync.Result == model.ResultNone {
			return false, fmt.Errorf("%w: game already finished", model.ErrStaleSync)
		}
		if s.sync.SameSnapshot(sync) {
			if sync.Resync && s.transportLost {
				s.transportLost = false
				return true, nil
			}
			return false, nil
		}
	}

	advanced := s.sync == nil || sync.MoveCount > s.sync.MoveCount
	copied := sync
	copied.LegalMoves = slices.Clone(sync.LegalMoves)
	s.sync = &copied

	if sync.You != "" {
		s.color = sync.You
	}
	if sync.RoomCode != "" {
		s.code = sync.RoomCode
	}
	if sync.Resync {
		s.transportLost = false
	}
	if advanced {
		s.drawOffered = false
		if s.pending == PendingSubmitted {
			s.pending = PendingNone
			s.pendingMove = ""
		}
	}

	switch {
	case sync.Result != model.ResultNone:
		s.phase = PhaseFinished
		s.pending = PendingNone
		s.pendingMove = ""
	case s.phase == PhaseAwaitingPeer:
		s.phase = PhasePlaying
	}
	return true, nil
}

// SubmitMove checks that uci may be sent now and marks it pending. The move is not applied until
// the server's sync arrives.
func (s *Session) SubmitMove(uci string) error {
	if s.phase != PhasePlaying || s.sync == nil {
		return model.ErrGameNotInProgress
	}
	if s.peerDisconnected || s.transportLost {
		return ErrDisconnected
	}
	if s.pending == PendingSubmitted {
		return ErrMovePending
	}
	if s.sync.Turn != s.color {
		return model.ErrNotYourTurn
	}
	if !slices.Contains(s.sync.LegalMoves, uci) {
		return fmt.Errorf("%w: %s", model.ErrIllegalMove, uci)
	}
	s.pending = PendingSubmitted
	s.pendingMove = uci
	s.lastErr = nil
	return nil
}

// MoveRejected records that the server refused the pending move
func (s *Session) MoveRejected(err error) {
	if s.pending != PendingSubmitted {
		return
	}
	s.pending = PendingRejected
	s.lastErr = err
}

// PeerDisconnected sets the overlay when the server reports the peer gone
func (s *Session) PeerDisconnected() bool {
	if s.phase != PhasePlaying || s.peerDisconnected {
		return false
	}
	s.peerDisconnected = true
	return true
}

// PeerReconnected clears the peer overlay
func (s *Session) PeerReconnected() bool {
	if !s.peerDisconnected {
		return false
	}
	s.peerDisconnected = false
	return true
}

// TransportLost sets the overlay when our own event stream drops
func (s *Session) TransportLost() bool {
	if s.phase != PhasePlaying || s.transportLost {
		return false
	}
	s.transportLost = true
	return true
}

// Abandoned finishes the session after the peer's grace period ran out
func (s *Session) Abandoned(payload model.AbandonedPayload) bool {
	if s.phase == PhaseFinished || s.phase == PhaseIdle {
		return false
	}
	s.phase = PhaseFinished
	s.abandoned = &payload
	s.peerDisconnected = false
	s.pending = PendingNone
	s.pendingMove = ""
	s.lastErr = model.ErrPeerAbandoned
	return true
}

// DrawOffered records that the opponent offered a draw
func (s *Session) DrawOffered(payload model.DrawOfferedPayload) bool {
	if s.phase != PhasePlaying || payload.By == s.color || s.drawOffered {
		return false
	}
	s.drawOffered = true
	return true
}

// HandleEvent decodes a relay event and applies it
func (s *Session) HandleEvent(eventType model.EventType, data []byte) (bool, error) {
	var envelope struct {
		Payload json.RawMessage `json:"payload"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return false, fmt.Errorf("failed to decode %s event: %w", eventType, err)
	}

	switch eventType {
	case model.EventStateSync:
		var sync model.StateSync
		if err := json.Unmarshal(envelope.Payload, &sync); err != nil {
			return false, fmt.Errorf("failed to decode state sync: %w", err)
		}
		return s.ApplySync(sync)
	case model.EventPeerDisconnected:
		return s.PeerDisconnected(), nil
	case model.EventPeerReconnected:
		return s.PeerReconnected(), nil
	case model.EventAbandoned:
		var payload model.AbandonedPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return false, fmt.Errorf("failed to decode abandoned event: %w", err)
		}
		return s.Abandoned(payload), nil
	case model.EventDrawOffered:
		var payload model.DrawOfferedPayload
		if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
			return false, fmt.Errorf("failed to decode draw offer: %w", err)
		}
		return s.DrawOffered(payload), nil
	default:
		// room_paired and anything newer carry nothing the state machine needs
		return false, nil
	}
}

// View returns a copy of the current state
func (s *Session) View() View {
	v := View{
		Phase:            s.phase,
		Code:             s.code,
		Color:            s.color,
		PeerDisconnected: s.peerDisconnected,
		TransportLost:    s.transportLost,
		Pending:          s.pending,
		PendingMove:      s.pendingMove,
		LastError:        s.lastErr,
		DrawOffered:      s.drawOffered,
	}
	if s.sync != nil {
		sync := *s.sync
		sync.LegalMoves = slices.Clone(s.sync.LegalMoves)
		v.Sync = &sync
	}
	if s.abandoned != nil {
		a := *s.abandoned
		v.Abandoned = &a
	}
	return v
}
