package relay

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/testutil"
)

type HubSuite struct {
	suite.Suite
	manager *HubManager
	hub     *Hub
}

func TestHubSuite(t *testing.T) {
	suite.Run(t, new(HubSuite))
}

func (s *HubSuite) SetupTest() {
	s.manager = NewHubManager(testutil.NopLogger())
	s.hub = s.manager.GetOrCreateHub("ABC123")
}

func (s *HubSuite) TearDownTest() {
	s.manager.CloseAll()
}

func (s *HubSuite) receive(sub *Subscriber) Message {
	select {
	case msg, ok := <-sub.Messages():
		s.Require().True(ok, "subscriber closed")
		return msg
	case <-time.After(time.Second):
		s.FailNow("timed out waiting for message")
		return Message{}
	}
}

func (s *HubSuite) TestGetOrCreateHub_ReturnsSameHub() {
	s.Same(s.hub, s.manager.GetOrCreateHub("ABC123"))
	s.Same(s.hub, s.manager.GetHub("ABC123"))
	s.Nil(s.manager.GetHub("ZZZZZZ"))
	s.Equal(1, s.manager.HubCount())
}

func (s *HubSuite) TestPublish_Targeted() {
	white := s.hub.Subscribe(model.White)
	black := s.hub.Subscribe(model.Black)
	s.Require().NotNil(white)
	s.Require().NotNil(black)

	n, err := s.hub.Publish(model.Black, model.Event{Type: model.EventDrawOffered, RoomCode: "ABC123"})
	s.Require().NoError(err)
	s.Equal(1, n)

	msg := s.receive(black)
	s.Equal(model.EventDrawOffered, msg.Event)

	var decoded map[string]any
	s.Require().NoError(json.Unmarshal(msg.Data, &decoded))
	s.Equal("draw_offered", decoded["type"])

	s.Empty(white.Messages())
}

func (s *HubSuite) TestPublish_Broadcast() {
	white := s.hub.Subscribe(model.White)
	black := s.hub.Subscribe(model.Black)

	n, err := s.hub.Publish("", model.Event{Type: model.EventAbandoned})
	s.Require().NoError(err)
	s.Equal(2, n)
	s.Equal(model.EventAbandoned, s.receive(white).Event)
	s.Equal(model.EventAbandoned, s.receive(black).Event)
}

func (s *HubSuite) TestPublish_PreservesOrder() {
	sub := s.hub.Subscribe(model.White)
	for i := 0; i < 10; i++ {
		_, err := s.hub.Publish(model.White, model.Event{Type: model.EventStateSync, Payload: i})
		s.Require().NoError(err)
	}
	for i := 0; i < 10; i++ {
		var evt struct{ Payload int }
		s.Require().NoError(json.Unmarshal(s.receive(sub).Data, &evt))
		s.Equal(i, evt.Payload)
	}
}

func (s *HubSuite) TestFullBufferClosesSubscriber() {
	slow := s.hub.Subscribe(model.White)
	for i := 0; i < sendBufferSize; i++ {
		_, err := s.hub.Publish(model.White, model.Event{Type: model.EventStateSync})
		s.Require().NoError(err)
	}
	n, err := s.hub.Publish(model.White, model.Event{Type: model.EventStateSync})
	s.Require().NoError(err)
	s.Equal(0, n)
	s.Equal(0, s.hub.CountFor(model.White))

	// buffered messages drain, then the channel reports closed
	for i := 0; i < sendBufferSize; i++ {
		<-slow.Messages()
	}
	_, ok := <-slow.Messages()
	s.False(ok)
}

func (s *HubSuite) TestUnsubscribe() {
	sub := s.hub.Subscribe(model.Black)
	s.Equal(1, s.hub.CountFor(model.Black))

	s.hub.Unsubscribe(sub)
	s.hub.Unsubscribe(sub)
	s.Equal(0, s.hub.SubscriberCount())

	_, ok := <-sub.Messages()
	s.False(ok)
}

func (s *HubSuite) TestClosedHub() {
	sub := s.hub.Subscribe(model.White)
	s.manager.RemoveHub("ABC123", s.hub)
	s.Nil(s.manager.GetHub("ABC123"))

	_, ok := <-sub.Messages()
	s.False(ok)

	s.Nil(s.hub.Subscribe(model.White))
	n, err := s.hub.Publish("", model.Event{Type: model.EventAbandoned})
	s.NoError(err)
	s.Equal(0, n)
}

func (s *HubSuite) TestRemoveHub_IgnoresStaleHub() {
	stale := NewHub("ABC123", testutil.NopLogger())
	go stale.Run()

	s.manager.RemoveHub("ABC123", stale)
	s.Same(s.hub, s.manager.GetHub("ABC123"))
}
