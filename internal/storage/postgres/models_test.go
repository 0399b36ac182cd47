package postgres

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/elostealo/internal/model"
)

func TestRecordRowConversion(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	rec := &model.GameRecord{
		ID:         "g-1",
		RoomCode:   "QWERTY",
		White:      model.PlayerDescriptor{Name: "alice", Rating: 1600, Handicap: 24},
		Black:      model.PlayerDescriptor{Name: "bob", Rating: 1400},
		Moves:      []string{"e2e4", "resign"},
		Result:     model.ResultWhite,
		Reason:     model.ReasonResignation,
		StartedAt:  now.Add(-time.Minute),
		FinishedAt: now,
	}

	row, err := recordToRow(rec)
	require.NoError(t, err)
	assert.Equal(t, `["e2e4","resign"]`, row.Moves)
	assert.Equal(t, 24, row.WhiteHandicap)

	back, err := rowToRecord(row)
	require.NoError(t, err)
	assert.Equal(t, rec, back)
}

func TestLocalRowConversion_NilMoves(t *testing.T) {
	row, err := localToRow(&model.LocalGame{ID: "l-1", Result: model.ResultNone})
	require.NoError(t, err)
	assert.Equal(t, "[]", row.Moves)

	back, err := rowToLocal(row)
	require.NoError(t, err)
	assert.Empty(t, back.Moves)
	assert.NotNil(t, back.Moves)
}
