package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ramonehamilton/cardsearch/internal/api/response"
	"github.com/ramonehamilton/cardsearch/internal/session"
)

// PrintsSession is the part of session.Session the prints routes use.
type PrintsSession interface {
	Inspect(ctx context.Context, name string) (session.PrintsState, error)
	CloseInspect() session.PrintsState
	PrintsSnapshot() session.PrintsState
}

// PrintsHandler handles alternate prints requests.
type PrintsHandler struct {
	session PrintsSession
}

// NewPrintsHandler creates a new PrintsHandler.
func NewPrintsHandler(s PrintsSession) *PrintsHandler {
	return &PrintsHandler{session: s}
}

// InspectRequest names the card whose printings to list.
type InspectRequest struct {
	Name string `json:"name"`
}

// Inspect opens the prints view for a card.
func (h *PrintsHandler) Inspect(w http.ResponseWriter, r *http.Request) {
	var req InspectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	st, err := h.session.Inspect(r.Context(), req.Name)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, st)
}

// GetPrints returns the prints view.
func (h *PrintsHandler) GetPrints(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.session.PrintsSnapshot())
}

// Close closes the prints view.
func (h *PrintsHandler) Close(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.session.CloseInspect())
}
