package relay

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/testutil"
)

func TestServeWS(t *testing.T) {
	hub := NewHub("ABC123", testutil.NopLogger())
	go hub.Run()
	defer hub.Close()

	var mu sync.Mutex
	var received []Command
	handle := func(cmd Command) error {
		mu.Lock()
		defer mu.Unlock()
		received = append(received, cmd)
		if cmd.Move == "e2e5" {
			return errors.New("illegal move")
		}
		return nil
	}

	subscribed := make(chan *Subscriber, 1)
	upgrader := NewUpgrader()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		sub := hub.Subscribe(model.White)
		subscribed <- sub
		ServeWS(conn, sub, handle, DefaultWSConfig(), testutil.NopLogger())
		hub.Unsubscribe(sub)
	}))
	defer srv.Close()

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-subscribed:
	case <-time.After(time.Second):
		t.Fatal("server did not subscribe")
	}

	_, err = hub.Publish(model.White, model.Event{Type: model.EventStateSync})
	require.NoError(t, err)

	_ = conn.SetReadDeadline(time.Now().Add(time.Second))
	var evt model.Event
	require.NoError(t, conn.ReadJSON(&evt))
	assert.Equal(t, model.EventStateSync, evt.Type)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandMove, Move: "e2e5"}))
	var reply commandError
	require.NoError(t, conn.ReadJSON(&reply))
	assert.Equal(t, "error", reply.Type)
	assert.Equal(t, CommandMove, reply.Command)
	assert.Equal(t, "illegal move", reply.Error)

	require.NoError(t, conn.WriteJSON(Command{Type: CommandResign}))
	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(received) == 2 && received[1].Type == CommandResign
	}, time.Second, 10*time.Millisecond)
}
