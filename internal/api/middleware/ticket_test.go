package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTicket(t *testing.T) {
	var seen string
	h := Ticket(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetTicket(r.Context())
		w.WriteHeader(http.StatusNoContent)
	}))

	tests := []struct {
		name       string
		header     string
		query      string
		wantStatus int
		wantTicket string
	}{
		{"header", "abc", "", http.StatusNoContent, "abc"},
		{"query", "", "?ticket=def", http.StatusNoContent, "def"},
		{"header wins", "abc", "?ticket=def", http.StatusNoContent, "abc"},
		{"missing", "", "", http.StatusForbidden, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = ""
			req := httptest.NewRequest(http.MethodGet, "/rooms/ABC/state"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set(TicketHeader, tt.header)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantTicket, seen)
		})
	}
}
