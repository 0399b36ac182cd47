package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/elostealo/internal/api/response"
	"github.com/mcoot/elostealo/internal/client"
	"github.com/mcoot/elostealo/internal/model"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/4P3/8/PPPP1PPP/RNBQKBNR b KQkq e3 0 1"

func TestBoardRows(t *testing.T) {
	rows := boardRows(startFEN)
	require.Len(t, rows, 8)
	assert.Equal(t, []string{"r", "n", "b", "q", "k", "b", "n", "r"}, rows[0])
	assert.Equal(t, []string{".", ".", ".", ".", "P", ".", ".", "."}, rows[4])

	assert.Nil(t, boardRows("not a fen"))
	assert.Nil(t, boardRows("rnbqkbnr/ppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"))
}

func TestPrintStateText(t *testing.T) {
	var buf bytes.Buffer
	rating := 1500
	NewOutput("text", &buf).Print(model.StateSync{
		RoomCode:   "ABC123",
		MoveCount:  1,
		Board:      startFEN,
		LegalMoves: []string{"e7e5"},
		Result:     model.ResultNone,
		Turn:       model.Black,
		LastMove:   "e2e4",
		You:        model.Black,
		White:      model.PlayerView{Name: "alice"},
		Black:      model.PlayerView{Name: "bob", Rating: &rating},
	})

	out := buf.String()
	assert.Contains(t, out, "Room: ABC123 (you are black)")
	assert.Contains(t, out, "Black: bob (1500)")
	assert.Contains(t, out, "Last move: e2e4")
	assert.Contains(t, out, "    h g f e d c b a")
	assert.Contains(t, out, " 1 | R N B K Q B N R |")
	assert.Contains(t, out, "Legal moves: e7e5")
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("json", &buf).Print(response.Pairing{HandicapA: 18, HandicapB: 47})
	assert.JSONEq(t, `{"handicap_a": 18, "handicap_b": 47}`, buf.String())
}

func TestPrintError(t *testing.T) {
	var buf bytes.Buffer
	NewOutput("json", &buf).PrintError(&client.APIError{Status: 404, Code: "ROOM_NOT_FOUND", Message: "Room not found"})
	assert.JSONEq(t, `{"error": {"code": "ROOM_NOT_FOUND", "message": "Room not found"}}`, buf.String())

	buf.Reset()
	NewOutput("text", &buf).PrintError(errors.New("boom"))
	assert.Equal(t, "Error: boom\n", buf.String())
}

func TestWatchLine(t *testing.T) {
	view := client.View{
		Phase:            client.PhasePlaying,
		Code:             "ABC123",
		Color:            model.White,
		PeerDisconnected: true,
		Pending:          client.PendingSubmitted,
		Sync: &model.StateSync{
			MoveCount: 2,
			Board:     startFEN,
			Result:    model.ResultNone,
			Turn:      model.White,
			LastMove:  "e7e5",
		},
	}

	line := NewWatchLine(view)
	assert.True(t, line.Disconnected)
	assert.Empty(t, line.Result)

	var buf bytes.Buffer
	NewOutput("text", &buf).Print(line)
	assert.Contains(t, buf.String(), "[playing] move 2 after e7e5, your move, disconnected, move submitted")

	view.Phase = client.PhaseFinished
	view.Abandoned = &model.AbandonedPayload{Color: model.Black, Name: "bob", Result: model.ResultWhite}
	line = NewWatchLine(view)
	assert.Equal(t, model.ResultWhite, line.Result)
	assert.Equal(t, model.ReasonAbandoned, line.Reason)
}
