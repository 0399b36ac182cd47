package model

import (
	"fmt"
	"strings"
)

// PlayerDescriptor describes a participant as submitted when creating or joining a room
type PlayerDescriptor struct {
	Name     string     `json:"name"`
	Rating   int        `json:"rating"`   // 0 means unrated
	Handicap HandicapID `json:"handicap"` // 0 means none
}

// Validate checks the descriptor fields
func (p PlayerDescriptor) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidPlayer)
	}
	if p.Rating < 0 {
		return fmt.Errorf("%w: rating must not be negative", ErrInvalidPlayer)
	}
	if p.Handicap < 0 {
		return fmt.Errorf("%w: handicap must not be negative", ErrInvalidPlayer)
	}
	return nil
}

// PlayerView is what one seat is allowed to see about a player
type PlayerView struct {
	Name     string      `json:"name"`
	Rating   *int        `json:"rating,omitempty"`
	Handicap *HandicapID `json:"handicap,omitempty"`
}

// FullView discloses everything about the player
func (p PlayerDescriptor) FullView() PlayerView {
	rating := p.Rating
	handicap := p.Handicap
	return PlayerView{Name: p.Name, Rating: &rating, Handicap: &handicap}
}
