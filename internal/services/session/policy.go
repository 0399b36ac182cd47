package session

import (
	"fmt"

	"github.com/mcoot/elostealo/internal/model"
)

// Policy decides how much of the opponent a seat sees while the game is running
type Policy string

const (
	// PolicyFull hides the opponent's rating and handicap
	PolicyFull Policy = "full"
	// PolicyRatingVisible shows the opponent's rating but hides the handicap
	PolicyRatingVisible Policy = "rating_visible"
	// PolicyNone hides nothing
	PolicyNone Policy = "none"
)

// ParsePolicy validates a policy name. Empty means PolicyFull.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyFull, nil
	case PolicyFull, PolicyRatingVisible, PolicyNone:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown concealment policy %q", s)
}

// View returns what a viewer may see about p. Own seats and finished games disclose everything.
func (p Policy) View(player model.PlayerDescriptor, own, finished bool) model.PlayerView {
	if own || finished || p == PolicyNone {
		return player.FullView()
	}
	view := model.PlayerView{Name: player.Name}
	if p == PolicyRatingVisible {
		rating := player.Rating
		view.Rating = &rating
	}
	return view
}
