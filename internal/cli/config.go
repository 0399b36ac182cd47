package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/mcoot/elostealo/internal/model"
)

// Config holds CLI configuration
type Config struct {
	ServerURL string
	SeatFile  string
	Code      string
	Ticket    string
	Output    string
	Verbose   bool
}

// SavedSeat is the seat remembered between invocations
type SavedSeat struct {
	Server string         `json:"server"`
	Code   model.RoomCode `json:"code"`
	Color  model.Color    `json:"color"`
	Ticket string         `json:"ticket"`
}

// DefaultConfig returns a Config with default values
func DefaultConfig() *Config {
	return &Config{
		ServerURL: getEnvOrDefault("STEALO_SERVER", "http://localhost:8080"),
		SeatFile:  getEnvOrDefault("STEALO_SEAT_FILE", defaultSeatFile()),
		Output:    getEnvOrDefault("STEALO_OUTPUT", "text"),
		Verbose:   false,
	}
}

// LoadSeat returns the seat to act for. --code and --ticket override the saved seat.
func (c *Config) LoadSeat() (SavedSeat, error) {
	var seat SavedSeat
	data, err := os.ReadFile(c.SeatFile)
	switch {
	case err == nil:
		if err := json.Unmarshal(data, &seat); err != nil {
			return SavedSeat{}, fmt.Errorf("failed to read seat file %s: %w", c.SeatFile, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return SavedSeat{}, err
	}

	if c.Code != "" {
		seat.Code = model.RoomCode(c.Code)
	}
	if c.Ticket != "" {
		seat.Ticket = c.Ticket
	}
	if seat.Code == "" || seat.Ticket == "" {
		return SavedSeat{}, errors.New("no seat: create or join a room first, or pass --code and --ticket")
	}
	return seat, nil
}

// SaveSeat remembers a seat for later commands
func (c *Config) SaveSeat(seat SavedSeat) error {
	dir := filepath.Dir(c.SeatFile)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	data, err := json.Marshal(seat)
	if err != nil {
		return err
	}
	return os.WriteFile(c.SeatFile, data, 0600)
}

// ClearSeat forgets the saved seat
func (c *Config) ClearSeat() error {
	if err := os.Remove(c.SeatFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func defaultSeatFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".stealo/seat.json"
	}
	return filepath.Join(home, ".stealo", "seat.json")
}

func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}
