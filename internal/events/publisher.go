package events

import (
	"context"
	"fmt"
	"sync"

	"github.com/mcoot/elostealo/internal/model"
)

// Publisher exports room lifecycle events to the outside world
type Publisher interface {
	Publish(ctx context.Context, event model.Event) error
	Close()
}

// Subject returns the bus subject an event is published on
func Subject(prefix string, event model.Event) string {
	return fmt.Sprintf("%s.rooms.%s.%s", prefix, event.RoomCode, event.Type)
}

// NopPublisher discards every event
type NopPublisher struct{}

var _ Publisher = NopPublisher{}

// Publish does nothing
func (NopPublisher) Publish(context.Context, model.Event) error { return nil }

// Close does nothing
func (NopPublisher) Close() {}

// MemoryPublisher keeps published events in memory
type MemoryPublisher struct {
	mu     sync.Mutex
	events []model.Event
}

var _ Publisher = (*MemoryPublisher)(nil)

// NewMemoryPublisher creates an empty MemoryPublisher
func NewMemoryPublisher() *MemoryPublisher {
	return &MemoryPublisher{}
}

// Publish records the event
func (p *MemoryPublisher) Publish(_ context.Context, event model.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

// Close does nothing
func (p *MemoryPublisher) Close() {}

// Events returns a copy of the recorded events
func (p *MemoryPublisher) Events() []model.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]model.Event, len(p.events))
	copy(out, p.events)
	return out
}

// OfType returns the recorded events of one type
func (p *MemoryPublisher) OfType(t model.EventType) []model.Event {
	var out []model.Event
	for _, e := range p.Events() {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}
