package model

// HandicapID identifies a handicap rule; 0 means no handicap
type HandicapID int

// NoHandicap is the absence of a handicap
const NoHandicap HandicapID = 0

// Handicap is a catalog entry. Cost is expressed in rating points.
type Handicap struct {
	ID          HandicapID `json:"id" yaml:"id"`
	Name        string     `json:"name" yaml:"name"`
	Cost        int        `json:"cost" yaml:"cost"`
	Description string     `json:"description" yaml:"description"`
}
