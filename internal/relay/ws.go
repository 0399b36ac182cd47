package relay

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
)

// WSConfig holds WebSocket connection limits
type WSConfig struct {
	WriteTimeout   time.Duration
	ReadTimeout    time.Duration
	PingInterval   time.Duration
	MaxMessageSize int64
}

// DefaultWSConfig returns the standard WebSocket limits
func DefaultWSConfig() WSConfig {
	return WSConfig{
		WriteTimeout:   10 * time.Second,
		ReadTimeout:    60 * time.Second,
		PingInterval:   30 * time.Second,
		MaxMessageSize: 1024,
	}
}

// NewUpgrader creates a WebSocket upgrader accepting any origin; CORS is enforced by the router
func NewUpgrader() websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}
}

// Command is an inbound WebSocket frame
type Command struct {
	Type string `json:"type"`
	Move string `json:"move,omitempty"`
}

// Command types accepted over WebSocket
const (
	CommandMove      = "move"
	CommandOfferDraw = "offer_draw"
	CommandResign    = "resign"
	CommandLeave     = "leave"
)

// CommandHandler executes an inbound command. A returned error is reported back on the same
// connection only.
type CommandHandler func(cmd Command) error

type commandError struct {
	Type    string `json:"type"`
	Command string `json:"command"`
	Error   string `json:"error"`
}

// ServeWS pumps a subscriber's messages to the connection and inbound commands to handle.
// It blocks until either side closes. The caller owns unsubscribing.
func ServeWS(conn *websocket.Conn, sub *Subscriber, handle CommandHandler, cfg WSConfig, logger zerolog.Logger) {
	replies := make(chan []byte, 8)
	readDone := make(chan struct{})

	go func() {
		defer close(readDone)
		readPump(conn, handle, replies, cfg, logger)
	}()

	writePump(conn, sub, replies, readDone, cfg, logger)
	_ = conn.Close()
	<-readDone
}

func writePump(conn *websocket.Conn, sub *Subscriber, replies <-chan []byte, readDone <-chan struct{}, cfg WSConfig, logger zerolog.Logger) {
	ticker := time.NewTicker(cfg.PingInterval)
	defer ticker.Stop()

	for {
		select {
		case msg, ok := <-sub.Messages():
			_ = conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg.Data); err != nil {
				logger.Debug().Err(err).Msg("failed to write websocket message")
				return
			}

		case reply := <-replies:
			_ = conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, reply); err != nil {
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(cfg.WriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-readDone:
			return
		}
	}
}

func readPump(conn *websocket.Conn, handle CommandHandler, replies chan<- []byte, cfg WSConfig, logger zerolog.Logger) {
	conn.SetReadLimit(cfg.MaxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(cfg.ReadTimeout))
	})

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Debug().Err(err).Msg("websocket closed unexpectedly")
			}
			return
		}
		if err := handle(cmd); err != nil {
			data, _ := json.Marshal(commandError{Type: "error", Command: cmd.Type, Error: err.Error()})
			select {
			case replies <- data:
			default:
			}
		}
		if cmd.Type == CommandLeave {
			return
		}
	}
}
