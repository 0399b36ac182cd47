package relay

import (
	"sync"

	"github.com/rs/zerolog"

	"github.com/mcoot/elostealo/internal/model"
)

// HubManager manages hubs for all rooms
type HubManager struct {
	hubs   map[model.RoomCode]*Hub
	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger zerolog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.RoomCode]*Hub),
		logger: logger.With().Str("component", "relay").Logger(),
	}
}

// GetOrCreateHub returns the hub for a room, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(roomCode model.RoomCode) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[roomCode]; ok {
		return hub
	}

	hub := NewHub(roomCode, m.logger)
	m.hubs[roomCode] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a room, or nil if it doesn't exist
func (m *HubManager) GetHub(roomCode model.RoomCode) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[roomCode]
}

// RemoveHub closes the hub if it is still the registered one for its room
func (m *HubManager) RemoveHub(roomCode model.RoomCode, hub *Hub) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.hubs[roomCode]; ok && current == hub {
		delete(m.hubs, roomCode)
		m.logger.Debug().Str("room", string(roomCode)).Msg("relay hub removed")
	}
	hub.Close()
}

// HubCount returns the number of live hubs
func (m *HubManager) HubCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.hubs)
}

// CloseAll shuts down every hub
func (m *HubManager) CloseAll() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for code, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, code)
	}
}
