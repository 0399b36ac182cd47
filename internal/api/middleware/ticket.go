package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/mcoot/elostealo/internal/api/apierr"
	"github.com/mcoot/elostealo/internal/model"
)

type contextKey string

const ticketContextKey contextKey = "ticket"

// TicketHeader carries the seat ticket on seat-scoped requests
const TicketHeader = "X-Seat-Ticket"

// Ticket requires a seat ticket and stores it in the request context. The ticket is read from
// the X-Seat-Ticket header, or from the ticket query parameter for EventSource and WebSocket
// clients that cannot set headers.
func Ticket(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ticket := extractTicket(r)
		if ticket == "" {
			apierr.WriteError(w, model.ErrInvalidTicket)
			return
		}
		ctx := context.WithValue(r.Context(), ticketContextKey, ticket)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetTicket retrieves the seat ticket from context
func GetTicket(ctx context.Context) string {
	ticket, _ := ctx.Value(ticketContextKey).(string)
	return ticket
}

func extractTicket(r *http.Request) string {
	if t := strings.TrimSpace(r.Header.Get(TicketHeader)); t != "" {
		return t
	}
	return strings.TrimSpace(r.URL.Query().Get("ticket"))
}
