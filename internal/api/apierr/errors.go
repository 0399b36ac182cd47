package apierr

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mcoot/elostealo/internal/model"
)

// APIError represents an API error response
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse wraps an APIError
type ErrorResponse struct {
	Error APIError `json:"error"`
}

// Common error codes
const (
	CodeInvalidRequest     = "INVALID_REQUEST"
	CodeRoomNotFound       = "ROOM_NOT_FOUND"
	CodeRoomFull           = "ROOM_FULL"
	CodeRegistryExhausted  = "REGISTRY_EXHAUSTED"
	CodeIllegalMove        = "ILLEGAL_MOVE"
	CodeNotYourTurn        = "NOT_YOUR_TURN"
	CodeInvalidTicket      = "INVALID_TICKET"
	CodeGameNotInProgress  = "GAME_NOT_IN_PROGRESS"
	CodeNameTaken          = "NAME_TAKEN"
	CodeHandicapNotFound   = "HANDICAP_NOT_FOUND"
	CodeGameNotFound       = "GAME_NOT_FOUND"
	CodeCatalogUnavailable = "CATALOG_UNAVAILABLE"
	CodeInternalError      = "INTERNAL_ERROR"
)

// httpError combines an HTTP status code with an APIError
type httpError struct {
	status   int
	apiError APIError
}

// Error implements error interface
func (e *httpError) Error() string {
	return e.apiError.Message
}

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	he := toHTTPError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(he.status)
	_ = json.NewEncoder(w).Encode(ErrorResponse{Error: he.apiError})
}

// Status returns the HTTP status an error maps to
func Status(err error) int {
	return toHTTPError(err).status
}

// toHTTPError converts an error to an httpError
func toHTTPError(err error) *httpError {
	var he *httpError
	if errors.As(err, &he) {
		return he
	}

	switch {
	case errors.Is(err, model.ErrRoomNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeRoomNotFound, "Room not found"}}
	case errors.Is(err, model.ErrRoomFull):
		return &httpError{http.StatusConflict, APIError{CodeRoomFull, "Room already has two players"}}
	case errors.Is(err, model.ErrRegistryExhausted):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeRegistryExhausted, "No room code available, try again"}}
	case errors.Is(err, model.ErrIllegalMove):
		return &httpError{http.StatusUnprocessableEntity, APIError{CodeIllegalMove, err.Error()}}
	case errors.Is(err, model.ErrNotYourTurn):
		return &httpError{http.StatusConflict, APIError{CodeNotYourTurn, "Not your turn"}}
	case errors.Is(err, model.ErrInvalidTicket):
		return &httpError{http.StatusForbidden, APIError{CodeInvalidTicket, "Invalid seat ticket"}}
	case errors.Is(err, model.ErrGameNotInProgress):
		return &httpError{http.StatusConflict, APIError{CodeGameNotInProgress, "No game in progress"}}
	case errors.Is(err, model.ErrNameTaken):
		return &httpError{http.StatusConflict, APIError{CodeNameTaken, "Name already taken in this room"}}
	case errors.Is(err, model.ErrInvalidPlayer):
		return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, err.Error()}}
	case errors.Is(err, model.ErrHandicapNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeHandicapNotFound, "Handicap not found"}}
	case errors.Is(err, model.ErrGameNotFound), errors.Is(err, model.ErrLocalGameNotFound):
		return &httpError{http.StatusNotFound, APIError{CodeGameNotFound, "Game not found"}}
	case errors.Is(err, model.ErrCatalogUnavailable):
		return &httpError{http.StatusServiceUnavailable, APIError{CodeCatalogUnavailable, "Handicap catalog unavailable"}}
	default:
		return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
	}
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return &httpError{http.StatusBadRequest, APIError{CodeInvalidRequest, message}}
}

// NewInternalError creates an internal server error
func NewInternalError() error {
	return &httpError{http.StatusInternalServerError, APIError{CodeInternalError, "Internal server error"}}
}

// codeErrors maps codes back to the model errors they came from
var codeErrors = map[string]error{
	CodeRoomNotFound:       model.ErrRoomNotFound,
	CodeRoomFull:           model.ErrRoomFull,
	CodeRegistryExhausted:  model.ErrRegistryExhausted,
	CodeIllegalMove:        model.ErrIllegalMove,
	CodeNotYourTurn:        model.ErrNotYourTurn,
	CodeInvalidTicket:      model.ErrInvalidTicket,
	CodeGameNotInProgress:  model.ErrGameNotInProgress,
	CodeNameTaken:          model.ErrNameTaken,
	CodeInvalidRequest:     model.ErrInvalidPlayer,
	CodeHandicapNotFound:   model.ErrHandicapNotFound,
	CodeGameNotFound:       model.ErrGameNotFound,
	CodeCatalogUnavailable: model.ErrCatalogUnavailable,
}

// ModelError returns the model error for a code, or nil
func ModelError(code string) error {
	return codeErrors[code]
}
