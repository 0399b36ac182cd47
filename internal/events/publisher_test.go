package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/testutil"
)

func TestSubject(t *testing.T) {
	evt := model.Event{Type: model.EventGameFinished, RoomCode: "ABC123"}
	assert.Equal(t, "elostealo.rooms.ABC123.game_finished", Subject("elostealo", evt))
}

func TestMemoryPublisher(t *testing.T) {
	p := NewMemoryPublisher()
	ctx := context.Background()

	require.NoError(t, p.Publish(ctx, model.Event{Type: model.EventRoomCreated}))
	require.NoError(t, p.Publish(ctx, model.Event{Type: model.EventRoomDissolved}))
	require.NoError(t, p.Publish(ctx, model.Event{Type: model.EventRoomCreated}))

	assert.Len(t, p.Events(), 3)
	assert.Len(t, p.OfType(model.EventRoomCreated), 2)
	assert.Empty(t, p.OfType(model.EventGameFinished))
}

func TestNopPublisher(t *testing.T) {
	var p Publisher = NopPublisher{}
	assert.NoError(t, p.Publish(context.Background(), model.Event{}))
	p.Close()
}

func TestNewNATSPublisher_Unreachable(t *testing.T) {
	cfg := DefaultNATSConfig("nats://127.0.0.1:1", "elostealo")
	cfg.MaxReconnects = 0

	_, err := NewNATSPublisher(cfg, testutil.NopLogger())
	assert.Error(t, err)
}
