package client_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/elostealo/internal/api/request"
	"github.com/mcoot/elostealo/internal/client"
	"github.com/mcoot/elostealo/internal/factory"
	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/testutil"
)

type HandleSuite struct {
	suite.Suite
	app    *factory.TestApp
	server *httptest.Server
	ctx    context.Context
	cancel context.CancelFunc
}

func TestHandleSuite(t *testing.T) {
	suite.Run(t, new(HandleSuite))
}

func (s *HandleSuite) SetupTest() {
	s.app = factory.NewTestApp()
	s.server = httptest.NewServer(s.app.Router())
	s.ctx, s.cancel = context.WithTimeout(context.Background(), 10*time.Second)
}

func (s *HandleSuite) TearDownTest() {
	s.cancel()
	s.server.Close()
	s.Require().NoError(s.app.Close(context.Background()))
}

func (s *HandleSuite) newHandle() *client.Handle {
	h := client.NewHandle(client.NewClient(s.server.URL), testutil.NopLogger())
	h.SetRetryDelay(10 * time.Millisecond)
	return h
}

// listen runs Listen in the background and forwards every view
func (s *HandleSuite) listen(h *client.Handle) (<-chan client.View, <-chan error) {
	views := make(chan client.View, 64)
	done := make(chan error, 1)
	go func() {
		done <- h.Listen(s.ctx, func(v client.View) { views <- v })
	}()
	return views, done
}

func (s *HandleSuite) waitFor(views <-chan client.View, pred func(client.View) bool) client.View {
	s.T().Helper()
	for {
		select {
		case v := <-views:
			if pred(v) {
				return v
			}
		case <-time.After(2 * time.Second):
			s.FailNow("timed out waiting for view")
			return client.View{}
		}
	}
}

func (s *HandleSuite) TestPlayThroughHandles() {
	s.app.MockRandom.QueueString("ROOM01")
	alice := s.newHandle()
	bob := s.newHandle()

	seat, err := alice.Create(s.ctx, request.Player{Name: "alice"})
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ROOM01"), seat.Code)
	s.Equal(client.PhaseAwaitingPeer, alice.View().Phase)
	s.NotEmpty(alice.Ticket())

	aliceViews, aliceDone := s.listen(alice)

	_, err = bob.Join(s.ctx, seat.Code, request.Player{Name: "bob"})
	s.Require().NoError(err)
	bobViews, bobDone := s.listen(bob)

	s.waitFor(aliceViews, func(v client.View) bool { return v.Phase == client.PhasePlaying })
	s.waitFor(bobViews, func(v client.View) bool { return v.Phase == client.PhasePlaying })

	_, err = bob.Move(s.ctx, "e7e5")
	s.ErrorIs(err, model.ErrNotYourTurn)

	view, err := alice.Move(s.ctx, "e2e4")
	s.Require().NoError(err)
	s.Equal(1, view.Sync.MoveCount)
	s.Equal(client.PendingNone, view.Pending)

	bview := s.waitFor(bobViews, func(v client.View) bool { return v.Sync != nil && v.Sync.MoveCount == 1 })
	s.True(bview.MyTurn())

	_, err = bob.Resign(s.ctx)
	s.Require().NoError(err)
	final := s.waitFor(aliceViews, func(v client.View) bool { return v.Phase == client.PhaseFinished })
	s.Equal(model.ResultWhite, final.Sync.Result)

	s.Require().NoError(alice.Leave(s.ctx))
	s.Require().NoError(bob.Leave(s.ctx))
	s.Equal(client.PhaseIdle, alice.View().Phase)

	for _, done := range []<-chan error{aliceDone, bobDone} {
		select {
		case err := <-done:
			s.NoError(err)
		case <-time.After(2 * time.Second):
			s.FailNow("listen did not return after the room closed")
		}
	}
}

func (s *HandleSuite) TestServerRejectionIsRecorded() {
	s.app.MockRandom.QueueString("ROOM02")
	alice := s.newHandle()
	bob := s.newHandle()

	seat, err := alice.Create(s.ctx, request.Player{Name: "alice"})
	s.Require().NoError(err)
	_, err = bob.Join(s.ctx, seat.Code, request.Player{Name: "bob"})
	s.Require().NoError(err)

	_, err = alice.Refresh(s.ctx)
	s.Require().NoError(err)

	// another device holding the same seat moves first
	other := s.newHandle()
	s.Require().NoError(other.Resume(seat.Code, seat.Color, seat.Ticket))
	_, err = other.Refresh(s.ctx)
	s.Require().NoError(err)
	_, err = other.Move(s.ctx, "d2d4")
	s.Require().NoError(err)

	view, err := alice.Move(s.ctx, "e2e4")
	s.ErrorIs(err, model.ErrNotYourTurn)
	s.Equal(client.PendingRejected, view.Pending)
	s.Equal(0, view.Sync.MoveCount)
}

func (s *HandleSuite) TestJoinUnknownRoom() {
	h := s.newHandle()
	_, err := h.Join(s.ctx, "NOPE00", request.Player{Name: "bob"})
	s.ErrorIs(err, model.ErrRoomNotFound)

	var apiErr *client.APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(404, apiErr.Status)
	s.Equal(client.PhaseIdle, h.View().Phase)
}

func (s *HandleSuite) TestClientCatalogAndLocalGames() {
	c := client.NewClient(s.server.URL)

	health, err := c.Health(s.ctx)
	s.Require().NoError(err)
	s.Equal("ok", health.Status)

	handicaps, err := c.Handicaps(s.ctx)
	s.Require().NoError(err)
	s.NotEmpty(handicaps)

	h, err := c.Handicap(s.ctx, handicaps[0].ID)
	s.Require().NoError(err)
	s.Equal(handicaps[0], h)

	_, err = c.Handicap(s.ctx, 9999)
	s.ErrorIs(err, model.ErrHandicapNotFound)

	pairing, err := c.Pair(s.ctx, request.PairingRequest{RatingA: 1600, RatingB: 1400})
	s.Require().NoError(err)
	s.NotZero(pairing.HandicapA)

	game, err := c.CreateLocalGame(s.ctx, request.CreateLocalGameRequest{
		White: request.Player{Name: "alice"},
		Black: request.Player{Name: "bob"},
	})
	s.Require().NoError(err)
	game, err = c.LocalMove(s.ctx, game.ID, model.White, "e2e4")
	s.Require().NoError(err)
	s.Equal(model.Black, game.Turn)

	fetched, err := c.LocalGame(s.ctx, game.ID)
	s.Require().NoError(err)
	s.Equal([]string{"e2e4"}, fetched.Moves)

	games, err := c.Games(s.ctx, 5)
	s.Require().NoError(err)
	s.Empty(games)
}
