package session

import (
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// DefaultTicketCost is the bcrypt cost for seat tickets, which are random UUIDs
const DefaultTicketCost = bcrypt.MinCost

// Credential is a freshly issued seat ticket together with the hash a room keeps of it.
// Callers issue it outside the room and registry goroutines.
type Credential struct {
	Ticket string
	hash   []byte
}

// IssueCredential creates a seat ticket. A cost of 0 means DefaultTicketCost.
func IssueCredential(cost int) (Credential, error) {
	if cost == 0 {
		cost = DefaultTicketCost
	}
	ticket := uuid.NewString()
	hash, err := bcrypt.GenerateFromPassword([]byte(ticket), cost)
	if err != nil {
		return Credential{}, err
	}
	return Credential{Ticket: ticket, hash: hash}, nil
}

func ticketMatches(hash []byte, ticket string) bool {
	if ticket == "" || len(hash) == 0 {
		return false
	}
	return bcrypt.CompareHashAndPassword(hash, []byte(ticket)) == nil
}
