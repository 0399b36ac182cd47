package engine

import (
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/corentings/chess/v2"

	"github.com/mcoot/elostealo/internal/model"
)

// State is a snapshot of a game as the rest of the system sees it
type State struct {
	Board      string
	LegalMoves []string
	Result     model.Result
	Reason     model.FinishReason
	Turn       model.Color
	MoveCount  int
	LastMove   string
}

// Game is an authoritative chess game with a handicap filter per side.
// It is not safe for concurrent use; the owning room serializes access.
type Game struct {
	game      *chess.Game
	handicaps map[model.Color]model.HandicapID
	filters   map[model.Color]Filter
	moves     []string

	// result set by resignation, agreement or abandonment
	override       model.Result
	overrideReason model.FinishReason
}

// NewGame starts a game from the initial position
func NewGame(white, black model.HandicapID) *Game {
	return &Game{
		game:      chess.NewGame(),
		handicaps: map[model.Color]model.HandicapID{model.White: white, model.Black: black},
		filters:   map[model.Color]Filter{model.White: FilterFor(white), model.Black: FilterFor(black)},
	}
}

// Restore rebuilds a game by replaying moves
func Restore(white, black model.HandicapID, moves []string) (*Game, error) {
	g := NewGame(white, black)
	for i, m := range moves {
		if m == ResignMove {
			// only ever the final entry
			g.Resign(g.Turn())
			continue
		}
		if err := g.Apply(m); err != nil {
			return nil, fmt.Errorf("replaying move %d (%s): %w", i+1, m, err)
		}
	}
	return g, nil
}

// ResignMove is the pseudo-move recorded when the side to move resigns in a local game
const ResignMove = "resign"

// Handicap returns the handicap of a side
func (g *Game) Handicap(c model.Color) model.HandicapID {
	return g.handicaps[c]
}

// Turn returns the side to move
func (g *Game) Turn() model.Color {
	return colorFrom(g.game.Position().Turn())
}

// MoveCount returns the number of accepted moves
func (g *Game) MoveCount() int {
	return len(g.moves)
}

// Moves returns the accepted moves in UCI
func (g *Game) Moves() []string {
	return slices.Clone(g.moves)
}

// Apply plays a UCI move for the side to move
func (g *Game) Apply(uci string) error {
	uci = strings.ToLower(strings.TrimSpace(uci))
	state := g.Snapshot()
	if state.Result.Finished() {
		return fmt.Errorf("%w: game is over", model.ErrIllegalMove)
	}
	if !slices.Contains(state.LegalMoves, uci) {
		return fmt.Errorf("%w: %s", model.ErrIllegalMove, uci)
	}
	if err := g.game.PushNotationMove(uci, chess.UCINotation{}, nil); err != nil {
		return fmt.Errorf("%w: %s: %w", model.ErrIllegalMove, uci, err)
	}
	g.moves = append(g.moves, uci)
	return nil
}

// Resign ends the game in favour of the opponent of c
func (g *Game) Resign(c model.Color) {
	g.finish(model.Winner(c.Opposite()), model.ReasonResignation)
}

// Abandon ends the game in favour of the opponent of the side that left
func (g *Game) Abandon(c model.Color) {
	g.finish(model.Winner(c.Opposite()), model.ReasonAbandoned)
}

// AgreeDraw ends the game as a draw by agreement
func (g *Game) AgreeDraw() {
	g.finish(model.ResultDraw, model.ReasonDrawAgreed)
}

func (g *Game) finish(result model.Result, reason model.FinishReason) {
	if g.override.Finished() {
		return
	}
	g.override = result
	g.overrideReason = reason
}

// Snapshot computes the current state including the filtered legal moves
func (g *Game) Snapshot() State {
	pos := g.game.Position()
	state := State{
		Board:      pos.String(),
		LegalMoves: []string{},
		Result:     model.ResultNone,
		Turn:       colorFrom(pos.Turn()),
		MoveCount:  len(g.moves),
	}
	if n := len(g.moves); n > 0 {
		state.LastMove = g.moves[n-1]
	}

	if g.override.Finished() {
		state.Result = g.override
		state.Reason = g.overrideReason
		return state
	}

	switch g.game.Outcome() {
	case chess.WhiteWon:
		state.Result, state.Reason = model.ResultWhite, model.ReasonCheckmate
		return state
	case chess.BlackWon:
		state.Result, state.Reason = model.ResultBlack, model.ReasonCheckmate
		return state
	case chess.Draw:
		state.Result, state.Reason = model.ResultDraw, model.ReasonEngineDraw
		if g.game.Method() == chess.Stalemate {
			state.Reason = model.ReasonStalemate
		}
		return state
	}

	state.LegalMoves = g.legalMoves(state.Turn)
	if len(state.LegalMoves) == 0 {
		// the handicap left nothing to play
		state.Result = model.Winner(state.Turn.Opposite())
		state.Reason = model.ReasonNoMoves
	}
	return state
}

// LegalMoves returns the filtered legal moves for the side to move
func (g *Game) LegalMoves() []string {
	return g.Snapshot().LegalMoves
}

func (g *Game) legalMoves(turn model.Color) []string {
	board := g.game.Position().Board()
	filter := g.filters[turn]
	valid := g.game.ValidMoves()

	out := make([]string, 0, len(valid))
	for i := range valid {
		m := valid[i]
		c := candidate{
			uci:    m.String(),
			from:   m.S1(),
			to:     m.S2(),
			piece:  board.Piece(m.S1()).Type(),
			target: board.Piece(m.S2()),
			ply:    len(g.moves),
		}
		if filter != nil && filter(c) {
			continue
		}
		out = append(out, c.uci)
	}
	sort.Strings(out)
	return out
}

func colorFrom(c chess.Color) model.Color {
	if c == chess.Black {
		return model.Black
	}
	return model.White
}
