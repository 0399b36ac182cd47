package handler

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/mcoot/elostealo/internal/api/request"
	"github.com/mcoot/elostealo/internal/api/response"
	"github.com/mcoot/elostealo/internal/model"
	"github.com/mcoot/elostealo/internal/services/pairing"
)

// CatalogHandler serves the handicap catalog and the pairing helper
type CatalogHandler struct {
	pairer *pairing.Pairer
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(pairer *pairing.Pairer) *CatalogHandler {
	return &CatalogHandler{pairer: pairer}
}

// List handles GET /api/v1/handicaps
func (h *CatalogHandler) List(w http.ResponseWriter, _ *http.Request) {
	response.JSON(w, http.StatusOK, response.HandicapList{Handicaps: h.pairer.Catalog().All()})
}

// Get handles GET /api/v1/handicaps/{id}
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		WriteError(w, NewInvalidRequestError("handicap id must be a number"))
		return
	}
	handicap, err := h.pairer.Catalog().Lookup(model.HandicapID(id))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, handicap)
}

// Pair handles POST /api/v1/pairings
func (h *CatalogHandler) Pair(w http.ResponseWriter, r *http.Request) {
	var req request.PairingRequest
	if err := decode(r, &req); err != nil {
		WriteError(w, err)
		return
	}
	if req.RatingA < 0 || req.RatingB < 0 {
		WriteError(w, NewInvalidRequestError("ratings must not be negative"))
		return
	}

	a, b := h.pairer.Pair(req.RatingA, req.RatingB, req.HandicapA, req.HandicapB)
	response.JSON(w, http.StatusOK, response.Pairing{HandicapA: a, HandicapB: b})
}
