package handlers

import (
	"errors"
	"net/http"

	"github.com/ramonehamilton/cardsearch/internal/api/response"
	"github.com/ramonehamilton/cardsearch/internal/search"
	"github.com/ramonehamilton/cardsearch/internal/session"
)

// writeError maps a pipeline error onto an HTTP status.
func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, session.ErrSuperseded) {
		response.Conflict(w, err)
		return
	}

	kind := search.KindOf(err)
	switch kind {
	case search.KindValidation:
		response.KindError(w, http.StatusBadRequest, kind.String(), err)
	case search.KindNotFound:
		response.KindError(w, http.StatusNotFound, kind.String(), err)
	case search.KindTransport:
		response.KindError(w, http.StatusBadGateway, kind.String(), err)
	default:
		response.InternalError(w, err)
	}
}
