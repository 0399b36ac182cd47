package e2e_test

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/elostealo/internal/config"
	"github.com/mcoot/elostealo/internal/factory"
	"github.com/mcoot/elostealo/internal/testutil"
)

// cliRunner runs the stealo binary for one player, each with their own seat file
type cliRunner struct {
	binaryPath string
	serverURL  string
	seatFile   string
}

func buildCLI(t *testing.T) string {
	t.Helper()

	projectRoot := findProjectRoot(t)
	binaryPath := filepath.Join(projectRoot, "bin", "stealo-test")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/stealo")
	cmd.Dir = projectRoot
	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "failed to build CLI: %s", string(output))
	return binaryPath
}

func newCLIRunner(t *testing.T, binaryPath, serverURL string) *cliRunner {
	t.Helper()
	return &cliRunner{
		binaryPath: binaryPath,
		serverURL:  serverURL,
		seatFile:   filepath.Join(t.TempDir(), "seat.json"),
	}
}

func (r *cliRunner) run(args ...string) (string, error) {
	fullArgs := append([]string{
		"--server", r.serverURL,
		"--seat-file", r.seatFile,
		"--output", "json",
	}, args...)

	cmd := exec.Command(r.binaryPath, fullArgs...)
	output, err := cmd.CombinedOutput()
	return string(output), err
}

func findProjectRoot(t *testing.T) string {
	t.Helper()

	dir, err := os.Getwd()
	require.NoError(t, err)

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			t.Fatal("could not find project root (go.mod)")
		}
		dir = parent
	}
}

// startTestServer runs the full application on a free port and returns its URL
func startTestServer(t *testing.T) string {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithCancel(context.Background())
	app, err := factory.New(ctx, config.Default(), testutil.NopLogger())
	require.NoError(t, err)
	go app.Registry.Run(ctx)

	server := &http.Server{
		Addr:              addr,
		Handler:           app.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			t.Logf("server error: %v", err)
		}
	}()

	t.Cleanup(func() {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		_ = server.Shutdown(shutdownCtx)
		_ = app.Close(shutdownCtx)
		cancel()
	})

	serverURL := "http://" + addr
	waitForServer(t, serverURL+"/api/v1/health")
	return serverURL
}

func waitForServer(t *testing.T, url string) {
	t.Helper()

	client := &http.Client{Timeout: 100 * time.Millisecond}
	deadline := time.Now().Add(5 * time.Second)

	for time.Now().Before(deadline) {
		resp, err := client.Get(url)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(50 * time.Millisecond)
	}

	t.Fatal("server did not become ready in time")
}

// Response types for JSON parsing
type seatResponse struct {
	Code   string `json:"code"`
	Color  string `json:"color"`
	Ticket string `json:"ticket"`
}

type playerView struct {
	Name     string `json:"name"`
	Rating   *int   `json:"rating"`
	Handicap *int   `json:"handicap"`
}

type stateResponse struct {
	RoomCode   string     `json:"room_code"`
	MoveCount  int        `json:"move_count"`
	Board      string     `json:"board"`
	LegalMoves []string   `json:"legal_moves"`
	Result     string     `json:"result"`
	Reason     string     `json:"reason"`
	Turn       string     `json:"turn"`
	LastMove   string     `json:"last_move"`
	You        string     `json:"you"`
	White      playerView `json:"white"`
	Black      playerView `json:"black"`
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func decodeJSON[T any](t *testing.T, output string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(output), &v), "output: %s", output)
	return v
}

// Tests

func TestCLI_HealthCheck(t *testing.T) {
	serverURL := startTestServer(t)
	cli := newCLIRunner(t, buildCLI(t), serverURL)

	output, err := cli.run("health")
	require.NoError(t, err, "output: %s", output)

	resp := decodeJSON[struct {
		Status string `json:"status"`
		Rooms  int    `json:"rooms"`
	}](t, output)
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, 0, resp.Rooms)
}

func TestCLI_FullGameFlow(t *testing.T) {
	serverURL := startTestServer(t)
	binary := buildCLI(t)
	alice := newCLIRunner(t, binary, serverURL)
	bob := newCLIRunner(t, binary, serverURL)

	output, err := alice.run("room", "create", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	aliceSeat := decodeJSON[seatResponse](t, output)
	assert.Equal(t, "white", aliceSeat.Color)
	assert.NotEmpty(t, aliceSeat.Ticket)
	t.Logf("Created room: %s", aliceSeat.Code)

	output, err = bob.run("room", "join", aliceSeat.Code, "--name", "Bob")
	require.NoError(t, err, "output: %s", output)
	bobSeat := decodeJSON[seatResponse](t, output)
	assert.Equal(t, aliceSeat.Code, bobSeat.Code)
	assert.Equal(t, "black", bobSeat.Color)

	// Black cannot move first
	output, err = bob.run("move", "e7e5")
	require.Error(t, err)
	assert.Equal(t, "NOT_YOUR_TURN", decodeJSON[errorResponse](t, output).Error.Code)

	// Fool's mate
	moves := []struct {
		player *cliRunner
		uci    string
	}{
		{alice, "f2f3"},
		{bob, "e7e5"},
		{alice, "g2g4"},
		{bob, "d8h4"},
	}
	var state stateResponse
	for i, m := range moves {
		output, err = m.player.run("move", m.uci)
		require.NoError(t, err, "move %s: %s", m.uci, output)
		state = decodeJSON[stateResponse](t, output)
		assert.Equal(t, i+1, state.MoveCount)
		assert.Equal(t, m.uci, state.LastMove)
	}
	assert.Equal(t, "black", state.Result)
	assert.Equal(t, "checkmate", state.Reason)

	// The finished game is visible from the other seat too
	output, err = alice.run("state")
	require.NoError(t, err, "output: %s", output)
	state = decodeJSON[stateResponse](t, output)
	assert.Equal(t, "white", state.You)
	assert.Equal(t, "black", state.Result)
	assert.Equal(t, "Bob", state.Black.Name)

	output, err = alice.run("move", "e2e4")
	require.Error(t, err)
	assert.Equal(t, "GAME_NOT_IN_PROGRESS", decodeJSON[errorResponse](t, output).Error.Code)

	output, err = alice.run("games")
	require.NoError(t, err, "output: %s", output)
	games := decodeJSON[struct {
		Games []struct {
			ID       string   `json:"id"`
			RoomCode string   `json:"room_code"`
			Moves    []string `json:"moves"`
			Result   string   `json:"result"`
		} `json:"games"`
	}](t, output)
	require.Len(t, games.Games, 1)
	assert.Equal(t, aliceSeat.Code, games.Games[0].RoomCode)
	assert.Equal(t, []string{"f2f3", "e7e5", "g2g4", "d8h4"}, games.Games[0].Moves)

	output, err = alice.run("room", "leave")
	require.NoError(t, err, "output: %s", output)
	assert.Contains(t, decodeJSON[messageResponse](t, output).Message, "Left room")

	// The seat file is gone
	output, err = alice.run("state")
	require.Error(t, err)
	assert.Contains(t, output, "no seat")
}

func TestCLI_ResignAndDraw(t *testing.T) {
	serverURL := startTestServer(t)
	binary := buildCLI(t)
	alice := newCLIRunner(t, binary, serverURL)
	bob := newCLIRunner(t, binary, serverURL)

	output, err := alice.run("room", "create", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	seat := decodeJSON[seatResponse](t, output)
	_, err = bob.run("room", "join", seat.Code, "--name", "Bob")
	require.NoError(t, err)

	output, err = alice.run("draw")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, "none", decodeJSON[stateResponse](t, output).Result)

	output, err = bob.run("resign")
	require.NoError(t, err, "output: %s", output)
	state := decodeJSON[stateResponse](t, output)
	assert.Equal(t, "white", state.Result)
	assert.Equal(t, "resignation", state.Reason)
}

func TestCLI_RoomErrors(t *testing.T) {
	serverURL := startTestServer(t)
	binary := buildCLI(t)
	alice := newCLIRunner(t, binary, serverURL)
	bob := newCLIRunner(t, binary, serverURL)
	carol := newCLIRunner(t, binary, serverURL)

	output, err := bob.run("room", "join", "NOPE00", "--name", "Bob")
	require.Error(t, err)
	assert.Equal(t, "ROOM_NOT_FOUND", decodeJSON[errorResponse](t, output).Error.Code)

	output, err = alice.run("room", "create", "--name", "Alice")
	require.NoError(t, err, "output: %s", output)
	seat := decodeJSON[seatResponse](t, output)

	output, err = bob.run("room", "join", seat.Code, "--name", "alice")
	require.Error(t, err)
	assert.Equal(t, "NAME_TAKEN", decodeJSON[errorResponse](t, output).Error.Code)

	_, err = bob.run("room", "join", seat.Code, "--name", "Bob")
	require.NoError(t, err)

	output, err = carol.run("room", "join", seat.Code, "--name", "Carol")
	require.Error(t, err)
	assert.Equal(t, "ROOM_FULL", decodeJSON[errorResponse](t, output).Error.Code)

	// A forged ticket is refused
	output, err = carol.run("--code", seat.Code, "--ticket", "forged", "state")
	require.Error(t, err)
	assert.Equal(t, "INVALID_TICKET", decodeJSON[errorResponse](t, output).Error.Code)

	output, err = carol.run("room", "get", seat.Code)
	require.NoError(t, err, "output: %s", output)
	room := decodeJSON[struct {
		Code  string `json:"code"`
		State string `json:"state"`
		White string `json:"white"`
		Black string `json:"black"`
	}](t, output)
	assert.Equal(t, "paired", room.State)
	assert.Equal(t, "Alice", room.White)
	assert.Equal(t, "Bob", room.Black)
}

func TestCLI_CatalogCommands(t *testing.T) {
	serverURL := startTestServer(t)
	cli := newCLIRunner(t, buildCLI(t), serverURL)

	output, err := cli.run("handicaps")
	require.NoError(t, err, "output: %s", output)
	handicaps := decodeJSON[[]struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
		Cost int    `json:"cost"`
	}](t, output)
	require.NotEmpty(t, handicaps)

	output, err = cli.run("handicaps", "get", "24")
	require.NoError(t, err, "output: %s", output)
	assert.Equal(t, 24, decodeJSON[struct {
		ID int `json:"id"`
	}](t, output).ID)

	output, err = cli.run("handicaps", "get", "9999")
	require.Error(t, err)
	assert.Equal(t, "HANDICAP_NOT_FOUND", decodeJSON[errorResponse](t, output).Error.Code)

	output, err = cli.run("pair", "--rating-a", "0", "--rating-b", "1500", "--handicap-a", "24", "--handicap-b", "9")
	require.NoError(t, err, "output: %s", output)
	pairing := decodeJSON[struct {
		HandicapA int `json:"handicap_a"`
		HandicapB int `json:"handicap_b"`
	}](t, output)
	assert.Equal(t, 24, pairing.HandicapA)
	assert.Equal(t, 9, pairing.HandicapB)
}

func TestCLI_LocalGame(t *testing.T) {
	serverURL := startTestServer(t)
	cli := newCLIRunner(t, buildCLI(t), serverURL)

	output, err := cli.run("local", "create", "--white", "Alice", "--black", "Bob")
	require.NoError(t, err, "output: %s", output)
	game := decodeJSON[struct {
		ID   string `json:"id"`
		Turn string `json:"turn"`
	}](t, output)
	assert.Equal(t, "white", game.Turn)

	output, err = cli.run("local", "move", game.ID, "black", "e7e5")
	require.Error(t, err)
	assert.Equal(t, "NOT_YOUR_TURN", decodeJSON[errorResponse](t, output).Error.Code)

	output, err = cli.run("local", "move", game.ID, "white", "e2e4")
	require.NoError(t, err, "output: %s", output)

	output, err = cli.run("local", "get", game.ID)
	require.NoError(t, err, "output: %s", output)
	fetched := decodeJSON[struct {
		Moves []string `json:"moves"`
		Turn  string   `json:"turn"`
	}](t, output)
	assert.Equal(t, []string{"e2e4"}, fetched.Moves)
	assert.Equal(t, "black", fetched.Turn)

	output, err = cli.run("local", "move", game.ID, "purple", "e7e5")
	require.Error(t, err)
	assert.True(t, strings.Contains(output, "color must be white or black"), "output: %s", output)
}
