package engine

import (
	"testing"

	"github.com/corentings/chess/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/elostealo/internal/model"
)

type EngineSuite struct {
	suite.Suite
}

func TestEngineSuite(t *testing.T) {
	suite.Run(t, new(EngineSuite))
}

func (s *EngineSuite) play(g *Game, moves ...string) {
	for _, m := range moves {
		s.Require().NoError(g.Apply(m), "move %s", m)
	}
}

func (s *EngineSuite) TestInitialState() {
	g := NewGame(model.NoHandicap, model.NoHandicap)
	state := g.Snapshot()

	s.Equal("rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1", state.Board)
	s.Len(state.LegalMoves, 20)
	s.Equal(model.ResultNone, state.Result)
	s.Equal(model.White, state.Turn)
	s.Equal(0, state.MoveCount)
	s.Contains(state.LegalMoves, "e2e4")
}

func (s *EngineSuite) TestApply() {
	g := NewGame(model.NoHandicap, model.NoHandicap)
	s.play(g, "e2e4")

	state := g.Snapshot()
	s.Equal(1, state.MoveCount)
	s.Equal(model.Black, state.Turn)
	s.Equal("e2e4", state.LastMove)
	s.Equal([]string{"e2e4"}, g.Moves())
}

func (s *EngineSuite) TestApply_RejectsIllegal() {
	g := NewGame(model.NoHandicap, model.NoHandicap)

	s.ErrorIs(g.Apply("e2e5"), model.ErrIllegalMove)
	s.ErrorIs(g.Apply("e7e5"), model.ErrIllegalMove)
	s.ErrorIs(g.Apply("nonsense"), model.ErrIllegalMove)
	s.Equal(0, g.MoveCount())
}

func (s *EngineSuite) TestCheckmate() {
	g := NewGame(model.NoHandicap, model.NoHandicap)
	s.play(g, "f2f3", "e7e5", "g2g4", "d8h4")

	state := g.Snapshot()
	s.Equal(model.ResultBlack, state.Result)
	s.Equal(model.ReasonCheckmate, state.Reason)
	s.Empty(state.LegalMoves)
	s.ErrorIs(g.Apply("a2a3"), model.ErrIllegalMove)
}

func (s *EngineSuite) TestResign() {
	g := NewGame(model.NoHandicap, model.NoHandicap)
	s.play(g, "e2e4")
	g.Resign(model.White)

	state := g.Snapshot()
	s.Equal(model.ResultBlack, state.Result)
	s.Equal(model.ReasonResignation, state.Reason)
	s.Equal(1, state.MoveCount)

	// the first terminal result sticks
	g.AgreeDraw()
	s.Equal(model.ResultBlack, g.Snapshot().Result)
}

func (s *EngineSuite) TestAgreeDrawAndAbandon() {
	g := NewGame(model.NoHandicap, model.NoHandicap)
	g.AgreeDraw()
	s.Equal(model.ResultDraw, g.Snapshot().Result)

	g = NewGame(model.NoHandicap, model.NoHandicap)
	g.Abandon(model.Black)
	s.Equal(model.ResultWhite, g.Snapshot().Result)
	s.Equal(model.ReasonAbandoned, g.Snapshot().Reason)
}

func (s *EngineSuite) TestCaptureBan() {
	// 18: pawns cannot capture pawns
	g := NewGame(18, model.NoHandicap)
	s.play(g, "e2e4", "d7d5")

	s.NotContains(g.LegalMoves(), "e4d5")
	s.ErrorIs(g.Apply("e4d5"), model.ErrIllegalMove)
	s.Contains(g.LegalMoves(), "e4e5")

	// black is unaffected
	s.play(g, "e4e5", "f7f5")
	s.Contains(g.LegalMoves(), "e5f6")
}

func (s *EngineSuite) TestPieceFrozenAfterTurn() {
	g := NewGame(model.NoHandicap, model.NoHandicap)
	g.filters[model.White] = moveAfter(chess.Knight, 2)
	s.play(g, "b1c3", "b8c6", "c3b1", "c6b8")

	// turn 3: the knights are frozen, the sixteen pawn moves remain
	legal := g.LegalMoves()
	s.Len(legal, 16)
	s.NotContains(legal, "b1c3")
}

func (s *EngineSuite) TestForbiddenFile() {
	// 40: no piece may move to the h-file
	g := NewGame(40, model.NoHandicap)
	legal := g.LegalMoves()

	s.NotContains(legal, "h2h3")
	s.NotContains(legal, "g1h3")
	s.Contains(legal, "g1f3")
	s.Len(legal, 17)
}

func (s *EngineSuite) TestForcedOpening() {
	// 57: bongcloud for white
	g := NewGame(57, model.NoHandicap)
	s.Equal([]string{"e2e4"}, g.LegalMoves())

	s.play(g, "e2e4", "c7c5")
	s.Equal([]string{"e1e2"}, g.LegalMoves())

	s.play(g, "e1e2", "d7d6")
	s.Greater(len(g.LegalMoves()), 1)
}

func (s *EngineSuite) TestNoMovesLoses() {
	// 51: white must follow a2a4 with a4a5, which black blocks
	g := NewGame(51, model.NoHandicap)
	s.play(g, "a2a4", "a7a5")

	state := g.Snapshot()
	s.Empty(state.LegalMoves)
	s.Equal(model.ResultBlack, state.Result)
	s.Equal(model.ReasonNoMoves, state.Reason)
}

func (s *EngineSuite) TestStalemateIsDraw() {
	g := NewGame(model.NoHandicap, model.NoHandicap)
	// Sam Loyd's 10-move stalemate
	s.play(g,
		"e2e3", "a7a5", "d1h5", "a8a6", "h5a5", "h7h5", "h2h4", "a6h6",
		"a5c7", "f7f6", "c7d7", "e8f7", "d7b7", "d8d3", "b7b8", "d3h7",
		"b8c8", "f7g6", "c8e6",
	)

	state := g.Snapshot()
	s.Equal(model.ResultDraw, state.Result)
	s.Equal(model.ReasonStalemate, state.Reason)
}

func (s *EngineSuite) TestRestore() {
	g, err := Restore(model.NoHandicap, 18, []string{"e2e4", "d7d5", "e4d5"})
	s.Require().NoError(err)
	s.Equal(3, g.MoveCount())
	s.Equal(model.Black, g.Turn())
	s.Equal(model.HandicapID(18), g.Handicap(model.Black))

	_, err = Restore(model.NoHandicap, model.NoHandicap, []string{"e2e4", "e2e4"})
	s.ErrorIs(err, model.ErrIllegalMove)

	g, err = Restore(model.NoHandicap, model.NoHandicap, []string{"e2e4", ResignMove})
	s.Require().NoError(err)
	s.Equal(model.ResultWhite, g.Snapshot().Result)
}

func TestFilterFor(t *testing.T) {
	assert.Nil(t, FilterFor(model.NoHandicap))
	assert.Nil(t, FilterFor(60))
	for id := model.HandicapID(1); id <= 59; id++ {
		require.NotNil(t, FilterFor(id), "handicap %d", id)
	}
}

func TestMoveAfterCountsFullMoves(t *testing.T) {
	f := FilterFor(33)

	assert.False(t, f(candidate{piece: chess.Knight, ply: 18}))
	assert.False(t, f(candidate{piece: chess.Knight, ply: 19}))
	assert.True(t, f(candidate{piece: chess.Knight, ply: 20}))
	assert.False(t, f(candidate{piece: chess.Bishop, ply: 40}))
}

func TestCantCaptureIgnoresQuietMoves(t *testing.T) {
	f := FilterFor(19)

	assert.False(t, f(candidate{piece: chess.Queen, target: chess.NoPiece}))
	assert.True(t, f(candidate{piece: chess.Queen, target: chess.BlackRook}))
	assert.False(t, f(candidate{piece: chess.Queen, target: chess.BlackBishop}))
}

func TestSquareSets(t *testing.T) {
	// a1 is dark, h1 is light
	assert.True(t, darkSquares[0])
	assert.True(t, lightSquares[7])
	assert.False(t, innerSquares[0])
	assert.True(t, innerSquares[9])
	// the file bans cover every rank, h8 included
	assert.True(t, hFile[63])
	assert.True(t, cEOrHFiles[63])
	assert.False(t, cEOrHFiles[0])
}
