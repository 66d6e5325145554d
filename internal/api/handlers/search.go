package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ramonehamilton/cardsearch/internal/api/response"
	"github.com/ramonehamilton/cardsearch/internal/scryfall"
	"github.com/ramonehamilton/cardsearch/internal/search"
	"github.com/ramonehamilton/cardsearch/internal/session"
)

// SearchSession is the part of session.Session the search routes use.
type SearchSession interface {
	Submit(ctx context.Context, req scryfall.Request) (session.State, error)
	SetExcluded(codes []string) (session.State, error)
	SetSort(criterion search.Criterion, direction search.Direction) session.State
	SetPageSize(size int) (session.State, error)
	SetPage(n int) session.State
	NextPage() session.State
	PrevPage() session.State
	Snapshot() session.State
}

// SearchHandler handles search-related API requests.
type SearchHandler struct {
	session        SearchSession
	includeDigital bool
}

// NewSearchHandler creates a new SearchHandler. includeDigital is used for
// submissions that leave include_digital out.
func NewSearchHandler(s SearchSession, includeDigital bool) *SearchHandler {
	return &SearchHandler{session: s, includeDigital: includeDigital}
}

// SubmitRequest is the body of a new search.
type SubmitRequest struct {
	Query          string   `json:"query"`
	Exact          bool     `json:"exact"`
	Colors         []string `json:"colors"`
	IncludeDigital *bool    `json:"include_digital,omitempty"`
}

// searchMeta describes the whole result set next to the displayed page.
type searchMeta struct {
	Generation  uint64              `json:"generation"`
	RunID       string              `json:"run_id,omitempty"`
	Query       *scryfall.Request   `json:"query,omitempty"`
	Excluded    []string            `json:"excluded_colors"`
	Sort        search.Criterion    `json:"sort"`
	Direction   search.Direction    `json:"direction"`
	Fetched     int                 `json:"fetched"`
	RemoteTotal int                 `json:"remote_total"`
	Loading     bool                `json:"loading"`
	Error       *session.ErrorState `json:"error,omitempty"`
}

// Submit runs a new search and returns the resulting state. The run is not
// tied to the request context: the session is shared, so a client going away
// does not abort a search other clients are watching.
func (h *SearchHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	includeDigital := h.includeDigital
	if req.IncludeDigital != nil {
		includeDigital = *req.IncludeDigital
	}

	st, err := h.session.Submit(context.WithoutCancel(r.Context()), scryfall.Request{
		Query:          req.Query,
		Exact:          req.Exact,
		Colors:         req.Colors,
		IncludeDigital: includeDigital,
	})
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, st)
}

// GetResults returns the displayed page with the set description as meta.
func (h *SearchHandler) GetResults(w http.ResponseWriter, _ *http.Request) {
	st := h.session.Snapshot()
	response.Paginated(w, st.Displayed, st.Page, st.PageSize, st.Total, st.TotalPages, searchMeta{
		Generation:  st.Generation,
		RunID:       st.RunID,
		Query:       st.Query,
		Excluded:    st.Excluded,
		Sort:        st.Sort,
		Direction:   st.Direction,
		Fetched:     st.Fetched,
		RemoteTotal: st.RemoteTotal,
		Loading:     st.Loading,
		Error:       st.Error,
	})
}

// ExcludeRequest replaces the excluded color set. "C" means colorless.
type ExcludeRequest struct {
	Colors []string `json:"colors"`
}

// SetExcluded updates the color exclusion filter.
func (h *SearchHandler) SetExcluded(w http.ResponseWriter, r *http.Request) {
	var req ExcludeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	st, err := h.session.SetExcluded(req.Colors)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, st)
}

// SortRequest selects the sort criterion and direction.
type SortRequest struct {
	Criterion string `json:"criterion"`
	Direction string `json:"direction"`
}

// SetSort updates the sort order.
func (h *SearchHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	criterion, err := search.ParseCriterion(req.Criterion)
	if err != nil {
		writeError(w, err)
		return
	}
	direction, err := search.ParseDirection(req.Direction)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, h.session.SetSort(criterion, direction))
}

// PageSizeRequest selects a page size tier.
type PageSizeRequest struct {
	PageSize int `json:"page_size"`
}

// SetPageSize updates the page size and returns to the first page.
func (h *SearchHandler) SetPageSize(w http.ResponseWriter, r *http.Request) {
	var req PageSizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	st, err := h.session.SetPageSize(req.PageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	response.Success(w, st)
}

// PageRequest selects a page.
type PageRequest struct {
	Page int `json:"page"`
}

// SetPage jumps to a page, clamped into range.
func (h *SearchHandler) SetPage(w http.ResponseWriter, r *http.Request) {
	var req PageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, errors.New("invalid request body"))
		return
	}

	response.Success(w, h.session.SetPage(req.Page))
}

// NextPage advances one page.
func (h *SearchHandler) NextPage(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.session.NextPage())
}

// PrevPage goes back one page.
func (h *SearchHandler) PrevPage(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, h.session.PrevPage())
}
