package relay

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/mcoot/elostealo/internal/model"
)

// Buffer size for outgoing messages per subscriber
const sendBufferSize = 64

// Message is an encoded event ready for a transport
type Message struct {
	Event model.EventType
	Data  []byte
}

// Subscriber is one transport connection for a seat
type Subscriber struct {
	color       model.Color
	send        chan Message
	connectedAt time.Time
}

// Color returns the seat the subscriber belongs to
func (s *Subscriber) Color() model.Color {
	return s.color
}

// Messages returns the delivery channel. It is closed when the hub drops the subscriber.
func (s *Subscriber) Messages() <-chan Message {
	return s.send
}

type publishRequest struct {
	target model.Color // empty for every subscriber
	msg    Message
	ack    chan int
}

// Hub fans events out to the subscribers of a single room
type Hub struct {
	roomCode    model.RoomCode
	subscribers map[*Subscriber]bool
	mu          sync.RWMutex
	logger      zerolog.Logger

	register   chan *Subscriber
	unregister chan *Subscriber
	publish    chan publishRequest
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a room
func NewHub(roomCode model.RoomCode, logger zerolog.Logger) *Hub {
	return &Hub{
		roomCode:    roomCode,
		subscribers: make(map[*Subscriber]bool),
		logger:      logger.With().Str("room", string(roomCode)).Logger(),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		publish:     make(chan publishRequest),
		done:        make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Debug().Msg("relay hub started")
	for {
		select {
		case sub := <-h.register:
			h.mu.Lock()
			h.subscribers[sub] = true
			count := len(h.subscribers)
			h.mu.Unlock()
			h.logger.Info().
				Str("color", string(sub.color)).
				Int("total_subscribers", count).
				Msg("subscriber registered")

		case sub := <-h.unregister:
			h.drop(sub, "unregistered")

		case req := <-h.publish:
			req.ack <- h.deliver(req.target, req.msg)

		case <-h.done:
			h.mu.Lock()
			count := len(h.subscribers)
			for sub := range h.subscribers {
				close(sub.send)
				delete(h.subscribers, sub)
			}
			h.mu.Unlock()
			h.logger.Debug().Int("disconnected_subscribers", count).Msg("relay hub stopped")
			return
		}
	}
}

func (h *Hub) deliver(target model.Color, msg Message) int {
	var full []*Subscriber
	sent := 0

	h.mu.RLock()
	for sub := range h.subscribers {
		if target != "" && sub.color != target {
			continue
		}
		select {
		case sub.send <- msg:
			sent++
		default:
			full = append(full, sub)
		}
	}
	h.mu.RUnlock()

	// a subscriber that cannot keep up is cut off; it resyncs on reconnect
	for _, sub := range full {
		h.logger.Warn().Str("color", string(sub.color)).Msg("subscriber buffer full, closing")
		h.drop(sub, "buffer full")
	}
	return sent
}

func (h *Hub) drop(sub *Subscriber, reason string) {
	h.mu.Lock()
	_, ok := h.subscribers[sub]
	if ok {
		delete(h.subscribers, sub)
		close(sub.send)
	}
	count := len(h.subscribers)
	h.mu.Unlock()
	if ok {
		h.logger.Info().
			Str("color", string(sub.color)).
			Str("reason", reason).
			Dur("connection_duration", time.Since(sub.connectedAt)).
			Int("total_subscribers", count).
			Msg("subscriber removed")
	}
}

// Subscribe registers a new subscriber for a seat. Returns nil once the hub is closed.
func (h *Hub) Subscribe(color model.Color) *Subscriber {
	sub := &Subscriber{
		color:       color,
		send:        make(chan Message, sendBufferSize),
		connectedAt: time.Now(),
	}
	select {
	case h.register <- sub:
		return sub
	case <-h.done:
		return nil
	}
}

// Unsubscribe removes a subscriber. Safe to call more than once.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Publish encodes an event and delivers it to the subscribers of target (every subscriber when
// target is empty). It returns once the message sits in every matching buffer, with the number
// of subscribers reached.
func (h *Hub) Publish(target model.Color, event model.Event) (int, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return 0, fmt.Errorf("failed to encode %s event: %w", event.Type, err)
	}
	req := publishRequest{
		target: target,
		msg:    Message{Event: event.Type, Data: data},
		ack:    make(chan int, 1),
	}
	select {
	case h.publish <- req:
	case <-h.done:
		return 0, nil
	}
	return <-req.ack, nil
}

// Close shuts down the hub and closes every subscriber
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// SubscriberCount returns the number of connected subscribers
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

// CountFor returns the number of connected subscribers for a seat
func (h *Hub) CountFor(color model.Color) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	n := 0
	for sub := range h.subscribers {
		if sub.color == color {
			n++
		}
	}
	return n
}
