package factory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/relay"
)

type wireEvent struct {
	Type    model.EventType `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.Require().NoError(s.app.Close(s.ctx))
}

func (s *IntegrationSuite) next(sub *relay.Subscriber) wireEvent {
	s.T().Helper()
	select {
	case msg, ok := <-sub.Messages():
		s.Require().True(ok, "subscriber closed")
		var evt wireEvent
		s.Require().NoError(json.Unmarshal(msg.Data, &evt))
		return evt
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for event")
	}
	return wireEvent{}
}

func (s *IntegrationSuite) nextSync(sub *relay.Subscriber) model.StateSync {
	s.T().Helper()
	evt := s.next(sub)
	s.Require().Equal(model.EventStateSync, evt.Type)
	var sync model.StateSync
	s.Require().NoError(json.Unmarshal(evt.Payload, &sync))
	return sync
}

// A full online game: pairing, a move, a dropped connection that comes back within the
// grace period, and a resignation.
func (s *IntegrationSuite) TestCompleteRoomFlow() {
	s.app.MockRandom.QueueString("ROOM01")

	room, white, err := s.app.Registry.CreateRoom(s.ctx, model.PlayerDescriptor{Name: "alice", Rating: 1600})
	s.Require().NoError(err)
	s.Equal(model.RoomCode("ROOM01"), room.Code())
	s.Equal(model.White, white.Color)

	wsub, err := room.Subscribe(s.ctx, white.Ticket)
	s.Require().NoError(err)

	_, black, err := s.app.Registry.JoinRoom(s.ctx, "ROOM01", model.PlayerDescriptor{Name: "bob", Rating: 1400})
	s.Require().NoError(err)
	s.Equal(model.Black, black.Color)

	bsub, err := room.Subscribe(s.ctx, black.Ticket)
	s.Require().NoError(err)

	s.Equal(model.EventRoomPaired, s.next(wsub).Type)
	wsync := s.nextSync(wsub)
	s.Equal(model.White, wsync.Turn)
	s.Nil(wsync.Black.Rating)
	bsync := s.nextSync(bsub)
	s.Equal(0, bsync.MoveCount)

	_, err = room.SubmitMove(s.ctx, white.Ticket, "e2e4")
	s.Require().NoError(err)
	s.Equal(1, s.nextSync(wsub).MoveCount)
	bsync = s.nextSync(bsub)
	s.Equal(1, bsync.MoveCount)
	s.Equal(model.Black, bsync.Turn)
	s.Equal("e2e4", bsync.LastMove)

	// Black drops and comes back five seconds later
	s.Require().NoError(room.Unsubscribe(s.ctx, bsub))
	s.Equal(model.EventPeerDisconnected, s.next(wsub).Type)
	s.Require().NoError(s.app.FakeClock.BlockUntilContext(s.ctx, 1))
	s.app.FakeClock.Advance(5 * time.Second)

	bsub, err = room.Subscribe(s.ctx, black.Ticket)
	s.Require().NoError(err)
	resync := s.nextSync(bsub)
	s.True(resync.Resync)
	s.Equal(1, resync.MoveCount)
	s.Equal(model.EventPeerReconnected, s.next(wsub).Type)

	_, err = room.Resign(s.ctx, white.Ticket)
	s.Require().NoError(err)
	final := s.nextSync(bsub)
	s.Equal(model.ResultBlack, final.Result)
	s.Equal(model.ReasonResignation, final.Reason)
	s.Empty(final.LegalMoves)
	s.Require().NotNil(final.White.Rating)
	s.Equal(1600, *final.White.Rating)
	s.Require().NotNil(final.White.Handicap)
	s.Equal(model.HandicapID(18), *final.White.Handicap)
	s.Require().NotNil(final.Black.Handicap)
	s.Equal(model.HandicapID(47), *final.Black.Handicap)
	s.Equal(model.ResultBlack, s.nextSync(wsub).Result)

	records, err := s.app.Storage.ListGameRecords(s.ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal([]string{"e2e4"}, records[0].Moves)
	s.Equal(model.ReasonResignation, records[0].Reason)
	s.Len(s.app.Events.OfType(model.EventGameFinished), 1)

	// Both leave and the code is freed
	s.Require().NoError(s.app.Registry.LeaveRoom(s.ctx, "ROOM01", white.Ticket))
	s.Require().NoError(s.app.Registry.LeaveRoom(s.ctx, "ROOM01", black.Ticket))
	s.Eventually(func() bool {
		n, err := s.app.Registry.Count(s.ctx)
		return err == nil && n == 0
	}, time.Second, 10*time.Millisecond)
}

func (s *IntegrationSuite) TestLocalGameFlow() {
	view, err := s.app.LocalGameController.Create(s.ctx,
		model.PlayerDescriptor{Name: "alice"},
		model.PlayerDescriptor{Name: "bob"},
	)
	s.Require().NoError(err)

	for _, step := range []struct {
		color model.Color
		move  string
	}{
		{model.White, "f2f3"},
		{model.Black, "e7e5"},
		{model.White, "g2g4"},
		{model.Black, "d8h4"},
	} {
		view, err = s.app.LocalGameController.Move(s.ctx, view.Game.ID, step.color, step.move)
		s.Require().NoError(err)
	}

	s.Equal(model.ResultBlack, view.State.Result)
	s.Equal(model.ReasonCheckmate, view.State.Reason)

	stored, err := s.app.LocalGameController.Get(s.ctx, view.Game.ID)
	s.Require().NoError(err)
	s.Len(stored.Game.Moves, 4)
}

func (s *IntegrationSuite) TestPairingUsesBuiltInCatalog() {
	s.False(s.app.Catalog.IsEmpty())

	a, b := s.app.Pairer.Pair(1600, 1400, 0, 0)
	s.NotZero(a)
	s.NotZero(b)
	hA, err := s.app.Catalog.Lookup(a)
	s.Require().NoError(err)
	hB, err := s.app.Catalog.Lookup(b)
	s.Require().NoError(err)
	s.GreaterOrEqual(hA.Cost, hB.Cost)
}
