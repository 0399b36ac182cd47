package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mcoot/elostealo/internal/api/apierr"
	"github.com/mcoot/elostealo/internal/api/middleware"
	"github.com/mcoot/elostealo/internal/api/request"
	"github.com/mcoot/elostealo/internal/api/response"
	"github.com/mcoot/elostealo/internal/model"
)

// Client is an HTTP client for the API
type Client struct {
	baseURL    string
	httpClient *http.Client
	// streamClient has no timeout; event streams stay open for the whole game
	streamClient *http.Client
}

// NewClient creates a new API client
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		streamClient: &http.Client{},
	}
}

// BaseURL returns the server URL the client talks to
func (c *Client) BaseURL() string {
	return c.baseURL
}

// APIError represents an error response from the API
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s (%s)", e.Message, e.Code)
}

// Unwrap exposes the model error matching the code, so callers can use errors.Is
func (e *APIError) Unwrap() error {
	return apierr.ModelError(e.Code)
}

// Do performs an HTTP request. ticket may be empty for routes that need no seat.
func (c *Client) Do(ctx context.Context, method, path, ticket string, body, result any) error {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if ticket != "" {
		req.Header.Set(middleware.TicketHeader, ticket)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return decodeError(resp.StatusCode, respBody)
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}
	return nil
}

func decodeError(status int, body []byte) error {
	var errResp apierr.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Code != "" {
		return &APIError{Status: status, Code: errResp.Error.Code, Message: errResp.Error.Message}
	}
	return &APIError{Status: status, Code: apierr.CodeInternalError, Message: fmt.Sprintf("HTTP %d: %s", status, strings.TrimSpace(string(body)))}
}

func roomPath(code model.RoomCode, suffix string) string {
	return "/api/v1/rooms/" + url.PathEscape(string(code)) + suffix
}

// Health checks the server
func (c *Client) Health(ctx context.Context) (response.Health, error) {
	var out response.Health
	err := c.Do(ctx, http.MethodGet, "/api/v1/health", "", nil, &out)
	return out, err
}

// CreateRoom opens a room and returns the creator's seat
func (c *Client) CreateRoom(ctx context.Context, player request.Player) (response.Seat, error) {
	var out response.Seat
	err := c.Do(ctx, http.MethodPost, "/api/v1/rooms", "", player, &out)
	return out, err
}

// JoinRoom takes the second seat of a room
func (c *Client) JoinRoom(ctx context.Context, code model.RoomCode, player request.Player) (response.Seat, error) {
	var out response.Seat
	err := c.Do(ctx, http.MethodPost, roomPath(code, "/join"), "", player, &out)
	return out, err
}

// GetRoom returns public room info
func (c *Client) GetRoom(ctx context.Context, code model.RoomCode) (model.RoomInfo, error) {
	var out model.RoomInfo
	err := c.Do(ctx, http.MethodGet, roomPath(code, ""), "", nil, &out)
	return out, err
}

// LeaveRoom gives up a seat
func (c *Client) LeaveRoom(ctx context.Context, code model.RoomCode, ticket string) error {
	return c.Do(ctx, http.MethodPost, roomPath(code, "/leave"), ticket, nil, nil)
}

// Move submits a UCI move
func (c *Client) Move(ctx context.Context, code model.RoomCode, ticket, uci string) (model.StateSync, error) {
	var out model.StateSync
	err := c.Do(ctx, http.MethodPost, roomPath(code, "/moves"), ticket, request.MoveRequest{Move: uci}, &out)
	return out, err
}

// OfferDraw offers or accepts a draw
func (c *Client) OfferDraw(ctx context.Context, code model.RoomCode, ticket string) (model.StateSync, error) {
	var out model.StateSync
	err := c.Do(ctx, http.MethodPost, roomPath(code, "/draw"), ticket, nil, &out)
	return out, err
}

// Resign concedes the game
func (c *Client) Resign(ctx context.Context, code model.RoomCode, ticket string) (model.StateSync, error) {
	var out model.StateSync
	err := c.Do(ctx, http.MethodPost, roomPath(code, "/resign"), ticket, nil, &out)
	return out, err
}

// State returns the current snapshot for a seat
func (c *Client) State(ctx context.Context, code model.RoomCode, ticket string) (model.StateSync, error) {
	var out model.StateSync
	err := c.Do(ctx, http.MethodGet, roomPath(code, "/state"), ticket, nil, &out)
	return out, err
}

// Handicaps lists the catalog
func (c *Client) Handicaps(ctx context.Context) ([]model.Handicap, error) {
	var out response.HandicapList
	err := c.Do(ctx, http.MethodGet, "/api/v1/handicaps", "", nil, &out)
	return out.Handicaps, err
}

// Handicap fetches one catalog entry
func (c *Client) Handicap(ctx context.Context, id model.HandicapID) (model.Handicap, error) {
	var out model.Handicap
	err := c.Do(ctx, http.MethodGet, "/api/v1/handicaps/"+strconv.Itoa(int(id)), "", nil, &out)
	return out, err
}

// Pair runs the pairing algorithm without creating a room
func (c *Client) Pair(ctx context.Context, req request.PairingRequest) (response.Pairing, error) {
	var out response.Pairing
	err := c.Do(ctx, http.MethodPost, "/api/v1/pairings", "", req, &out)
	return out, err
}

// Games lists finished games, newest first
func (c *Client) Games(ctx context.Context, limit int) ([]*model.GameRecord, error) {
	path := "/api/v1/games"
	if limit > 0 {
		path += "?limit=" + strconv.Itoa(limit)
	}
	var out response.GameList
	err := c.Do(ctx, http.MethodGet, path, "", nil, &out)
	return out.Games, err
}

// Game fetches one finished game
func (c *Client) Game(ctx context.Context, id model.GameID) (*model.GameRecord, error) {
	var out model.GameRecord
	if err := c.Do(ctx, http.MethodGet, "/api/v1/games/"+url.PathEscape(string(id)), "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateLocalGame starts a same-device game
func (c *Client) CreateLocalGame(ctx context.Context, req request.CreateLocalGameRequest) (response.LocalGame, error) {
	var out response.LocalGame
	err := c.Do(ctx, http.MethodPost, "/api/v1/local-games", "", req, &out)
	return out, err
}

// LocalGame fetches a same-device game
func (c *Client) LocalGame(ctx context.Context, id model.GameID) (response.LocalGame, error) {
	var out response.LocalGame
	err := c.Do(ctx, http.MethodGet, "/api/v1/local-games/"+url.PathEscape(string(id)), "", nil, &out)
	return out, err
}

// LocalMove plays a move for color in a same-device game
func (c *Client) LocalMove(ctx context.Context, id model.GameID, color model.Color, uci string) (response.LocalGame, error) {
	var out response.LocalGame
	err := c.Do(ctx, http.MethodPost, "/api/v1/local-games/"+url.PathEscape(string(id))+"/moves", "",
		request.LocalMoveRequest{Color: color, Move: uci}, &out)
	return out, err
}

// Events opens the seat's server-sent event stream
func (c *Client) Events(ctx context.Context, code model.RoomCode, ticket string) (*Stream, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+roomPath(code, "/events"), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set(middleware.TicketHeader, ticket)

	resp, err := c.streamClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		defer func() { _ = resp.Body.Close() }()
		body, _ := io.ReadAll(resp.Body)
		return nil, decodeError(resp.StatusCode, body)
	}
	return newStream(resp.Body), nil
}
