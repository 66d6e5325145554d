package session

import (
	"github.com/ramonehamilton/cardsearch/internal/scryfall"
	"github.com/ramonehamilton/cardsearch/internal/search"
)

// ErrorState is the user-visible error of one channel.
type ErrorState struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

func errorState(err *search.Error) *ErrorState {
	if err == nil {
		return nil
	}
	return &ErrorState{Kind: err.Kind.String(), Message: err.Message}
}

// State is a copy of the main search channel as a caller sees it.
type State struct {
	Generation uint64 `json:"generation"`
	RunID      string `json:"run_id,omitempty"`

	// Query is the request the current results belong to, nil before the
	// first submission. It doubles as the "what you searched for" display.
	Query *scryfall.Request `json:"query,omitempty"`

	Excluded  []string         `json:"excluded_colors"`
	Sort      search.Criterion `json:"sort"`
	Direction search.Direction `json:"direction"`

	PageSize   int `json:"page_size"`
	Page       int `json:"page"`
	TotalPages int `json:"total_pages"`

	// Total is the filtered count; Fetched is the aggregated count before
	// filtering; RemoteTotal is what the API reported.
	Total       int `json:"total"`
	Fetched     int `json:"fetched"`
	RemoteTotal int `json:"remote_total"`

	Displayed []scryfall.Card `json:"displayed"`

	Loading bool        `json:"loading"`
	Error   *ErrorState `json:"error,omitempty"`
}

// PrintsState is a copy of the alternate prints channel.
type PrintsState struct {
	Generation  uint64          `json:"generation"`
	Open        bool            `json:"open"`
	Name        string          `json:"name,omitempty"`
	Prints      []scryfall.Card `json:"prints"`
	TotalPrints int             `json:"total_prints"`
	Loading     bool            `json:"loading"`
	Error       *ErrorState     `json:"error,omitempty"`
}

// Observer is notified after every state change. Calls happen outside the
// session lock and may arrive from several goroutines; Generation orders them.
type Observer interface {
	SearchChanged(State)
	PrintsChanged(PrintsState)
}
