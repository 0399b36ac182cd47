package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/mcoot/elostealo/internal/api/response"
	"github.com/mcoot/elostealo/internal/client"
	"github.com/mcoot/elostealo/internal/model"
)

// Output handles formatting output based on the configured format
type Output struct {
	format string
	w      io.Writer
}

// NewOutput creates a new Output formatter writing to w
func NewOutput(format string, w io.Writer) *Output {
	return &Output{format: format, w: w}
}

// Print outputs data in the configured format
func (o *Output) Print(data any) {
	if o.format == "json" {
		o.printJSON(data)
	} else {
		o.printText(data)
	}
}

// PrintError outputs an error
func (o *Output) PrintError(err error) {
	if o.format == "json" {
		body := map[string]string{"message": err.Error()}
		var apiErr *client.APIError
		if errors.As(err, &apiErr) {
			body["code"] = apiErr.Code
			body["message"] = apiErr.Message
		}
		data, _ := json.Marshal(map[string]any{"error": body})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintf(o.w, "Error: %s\n", err)
	}
}

// PrintMessage outputs a simple message
func (o *Output) PrintMessage(msg string) {
	if o.format == "json" {
		data, _ := json.Marshal(map[string]string{"message": msg})
		_, _ = fmt.Fprintln(o.w, string(data))
	} else {
		_, _ = fmt.Fprintln(o.w, msg)
	}
}

func (o *Output) printJSON(data any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(data)
}

func (o *Output) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(o.w, format, args...)
}

func (o *Output) printText(data any) {
	switch v := data.(type) {
	case response.Health:
		o.printf("Status: %s\n", v.Status)
		o.printf("Rooms: %d\n", v.Rooms)
	case response.Seat:
		o.printSeat(v)
	case model.RoomInfo:
		o.printRoom(v)
	case model.StateSync:
		o.printState(v)
	case []model.Handicap:
		o.printHandicaps(v)
	case model.Handicap:
		o.printHandicap(v)
	case response.Pairing:
		o.printf("Handicap A: %s\n", handicapLabel(v.HandicapA))
		o.printf("Handicap B: %s\n", handicapLabel(v.HandicapB))
	case response.GameList:
		o.printGames(v.Games)
	case model.GameRecord:
		o.printGame(v)
	case response.LocalGame:
		o.printLocalGame(v)
	case WatchLine:
		o.printWatchLine(v)
	default:
		// Fallback to JSON for unknown types
		o.printJSON(data)
	}
}

func (o *Output) printSeat(s response.Seat) {
	o.printf("Room: %s\n", s.Code)
	o.printf("Color: %s\n", s.Color)
	o.printf("Ticket: %s\n", s.Ticket)
	if s.Room != nil && s.Room.State == model.RoomStateAwaitingPeer {
		o.printf("\nShare the code %s with your opponent.\n", s.Code)
	}
}

func (o *Output) printRoom(r model.RoomInfo) {
	o.printf("Room: %s\n", r.Code)
	o.printf("State: %s\n", r.State)
	o.printf("White: %s\n", orDash(r.White))
	o.printf("Black: %s\n", orDash(r.Black))
	o.printf("Moves: %d\n", r.MoveCount)
	if r.Result != "" && r.Result != model.ResultNone {
		o.printf("Result: %s\n", r.Result)
	}
}

func (o *Output) printState(s model.StateSync) {
	o.printf("Room: %s (you are %s)\n", s.RoomCode, s.You)
	o.printf("White: %s\n", playerLabel(s.White))
	o.printf("Black: %s\n", playerLabel(s.Black))
	o.printf("Moves: %d\n", s.MoveCount)
	if s.LastMove != "" {
		o.printf("Last move: %s\n", s.LastMove)
	}
	if s.Result != model.ResultNone {
		o.printf("Result: %s (%s)\n", s.Result, s.Reason)
	} else {
		o.printf("To move: %s\n", s.Turn)
	}

	o.printf("\n")
	o.printBoard(s.Board, s.You == model.Black)

	if s.Result == model.ResultNone && s.Turn == s.You && len(s.LegalMoves) > 0 {
		o.printf("\nLegal moves: %s\n", strings.Join(s.LegalMoves, " "))
	}
}

// printBoard draws the placement field of a FEN, from black's side when flipped
func (o *Output) printBoard(fen string, flipped bool) {
	rows := boardRows(fen)
	if rows == nil {
		return
	}

	files := "    a b c d e f g h"
	if flipped {
		files = "    h g f e d c b a"
	}
	o.printf("%s\n", files)
	o.printf("   +-----------------+\n")
	for i := range 8 {
		r := i
		if flipped {
			r = 7 - i
		}
		cells := rows[r]
		if flipped {
			cells = reversed(cells)
		}
		o.printf(" %d | %s |\n", 8-r, strings.Join(cells, " "))
	}
	o.printf("   +-----------------+\n")
	o.printf("%s\n", files)
}

// boardRows expands the first FEN field into 8 ranks of 8 squares, rank 8 first
func boardRows(fen string) [][]string {
	placement, _, _ := strings.Cut(fen, " ")
	ranks := strings.Split(placement, "/")
	if len(ranks) != 8 {
		return nil
	}

	rows := make([][]string, 0, 8)
	for _, rank := range ranks {
		row := make([]string, 0, 8)
		for _, ch := range rank {
			if unicode.IsDigit(ch) {
				for range int(ch - '0') {
					row = append(row, ".")
				}
				continue
			}
			row = append(row, string(ch))
		}
		if len(row) != 8 {
			return nil
		}
		rows = append(rows, row)
	}
	return rows
}

func reversed(in []string) []string {
	out := make([]string, len(in))
	for i, v := range in {
		out[len(in)-1-i] = v
	}
	return out
}

func (o *Output) printHandicaps(hs []model.Handicap) {
	if len(hs) == 0 {
		o.printf("No handicaps available\n")
		return
	}
	for _, h := range hs {
		o.printf("%4d  %5d  %s\n", h.ID, h.Cost, h.Name)
	}
}

func (o *Output) printHandicap(h model.Handicap) {
	o.printf("Handicap %d: %s\n", h.ID, h.Name)
	o.printf("Cost: %d\n", h.Cost)
	if h.Description != "" {
		o.printf("\n%s\n", h.Description)
	}
}

func (o *Output) printGames(games []*model.GameRecord) {
	if len(games) == 0 {
		o.printf("No finished games\n")
		return
	}
	for _, g := range games {
		o.printf("%s  %s  %s vs %s  %s (%s)  %d moves\n",
			g.FinishedAt.Format("2006-01-02 15:04"), g.ID, g.White.Name, g.Black.Name, g.Result, g.Reason, len(g.Moves))
	}
}

func (o *Output) printGame(g model.GameRecord) {
	o.printf("Game: %s\n", g.ID)
	o.printf("Room: %s\n", g.RoomCode)
	o.printf("White: %s\n", descriptorLabel(g.White))
	o.printf("Black: %s\n", descriptorLabel(g.Black))
	o.printf("Result: %s (%s)\n", g.Result, g.Reason)
	o.printf("Started: %s\n", g.StartedAt.Format("2006-01-02 15:04:05"))
	o.printf("Finished: %s\n", g.FinishedAt.Format("2006-01-02 15:04:05"))
	o.printf("Moves: %s\n", strings.Join(g.Moves, " "))
}

func (o *Output) printLocalGame(g response.LocalGame) {
	o.printf("Game: %s\n", g.ID)
	o.printf("White: %s\n", descriptorLabel(g.White))
	o.printf("Black: %s\n", descriptorLabel(g.Black))
	o.printf("Moves: %d\n", g.MoveCount)
	if g.Result != model.ResultNone {
		o.printf("Result: %s (%s)\n", g.Result, g.Reason)
	} else {
		o.printf("To move: %s\n", g.Turn)
	}
	o.printf("\n")
	o.printBoard(g.Board, false)
}

// WatchLine is one update printed by the events command
type WatchLine struct {
	Phase        client.Phase       `json:"phase"`
	Code         model.RoomCode     `json:"code"`
	Color        model.Color        `json:"color"`
	MoveCount    int                `json:"move_count"`
	Turn         model.Color        `json:"turn,omitempty"`
	LastMove     string             `json:"last_move,omitempty"`
	Result       model.Result       `json:"result,omitempty"`
	Reason       model.FinishReason `json:"reason,omitempty"`
	Disconnected bool               `json:"disconnected,omitempty"`
	DrawOffered  bool               `json:"draw_offered,omitempty"`
	Pending      client.Pending     `json:"pending,omitempty"`
	Board        string             `json:"board,omitempty"`
}

// NewWatchLine summarises a session view
func NewWatchLine(v client.View) WatchLine {
	line := WatchLine{
		Phase:        v.Phase,
		Code:         v.Code,
		Color:        v.Color,
		Disconnected: v.Disconnected(),
		DrawOffered:  v.DrawOffered,
	}
	if v.Pending != client.PendingNone {
		line.Pending = v.Pending
	}
	if v.Sync != nil {
		line.MoveCount = v.Sync.MoveCount
		line.Turn = v.Sync.Turn
		line.LastMove = v.Sync.LastMove
		line.Board = v.Sync.Board
		if v.Sync.Result != model.ResultNone {
			line.Result = v.Sync.Result
			line.Reason = v.Sync.Reason
		}
	}
	if v.Abandoned != nil {
		line.Result = v.Abandoned.Result
		line.Reason = model.ReasonAbandoned
	}
	return line
}

func (o *Output) printWatchLine(l WatchLine) {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] move %d", l.Phase, l.MoveCount)
	if l.LastMove != "" {
		fmt.Fprintf(&b, " after %s", l.LastMove)
	}
	switch {
	case l.Result != "":
		fmt.Fprintf(&b, ", %s (%s)", l.Result, l.Reason)
	case l.Turn == l.Color && l.Turn != "":
		b.WriteString(", your move")
	case l.Turn != "":
		fmt.Fprintf(&b, ", %s to move", l.Turn)
	}
	if l.Disconnected {
		b.WriteString(", disconnected")
	}
	if l.DrawOffered {
		b.WriteString(", draw offered")
	}
	if l.Pending != "" {
		fmt.Fprintf(&b, ", move %s", l.Pending)
	}
	o.printf("%s\n", b.String())
	if l.Board != "" && l.Phase != client.PhaseAwaitingPeer {
		o.printBoard(l.Board, l.Color == model.Black)
	}
}

func playerLabel(p model.PlayerView) string {
	label := orDash(p.Name)
	if p.Rating != nil {
		label += fmt.Sprintf(" (%d)", *p.Rating)
	}
	if p.Handicap != nil {
		label += ", handicap " + handicapLabel(*p.Handicap)
	}
	return label
}

func descriptorLabel(p model.PlayerDescriptor) string {
	label := p.Name
	if p.Rating > 0 {
		label += fmt.Sprintf(" (%d)", p.Rating)
	}
	if p.Handicap != 0 {
		label += ", handicap " + handicapLabel(p.Handicap)
	}
	return label
}

func handicapLabel(id model.HandicapID) string {
	if id == 0 {
		return "none"
	}
	return fmt.Sprintf("#%d", id)
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
