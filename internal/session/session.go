// Package session owns the search state shared by every caller: the
// aggregated result set, the user's filter, sort and page choices, and the
// alternate prints view.
package session

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"

	"github.com/ramonehamilton/cardsearch/internal/metrics"
	"github.com/ramonehamilton/cardsearch/internal/scryfall"
	"github.com/ramonehamilton/cardsearch/internal/search"
)

// ErrSuperseded is returned by a submission or inspection whose result was
// discarded because a newer one started while it was in flight.
var ErrSuperseded = errors.New("superseded by a newer request")

// Searcher aggregates every page of a request.
type Searcher interface {
	Aggregate(ctx context.Context, req scryfall.Request) (*search.Result, error)
}

// PrintsFinder looks up the printings of a card.
type PrintsFinder interface {
	Lookup(ctx context.Context, name string) (*search.PrintsResult, error)
}

// Options configures a Session.
type Options struct {
	PageSize int
	Metrics  *metrics.SearchMetrics
}

// Session holds the search and prints channels. Each channel carries a
// generation number bumped on every new request; a result is applied only if
// its generation is still the latest, so the last submitted request wins no
// matter which finishes first.
type Session struct {
	searcher Searcher
	prints   PrintsFinder
	metrics  *metrics.SearchMetrics

	mu        sync.Mutex
	observers []Observer

	// search channel
	generation  uint64
	runID       string
	query       *scryfall.Request
	cards       []scryfall.Card
	remoteTotal int
	excluded    search.ColorSet
	criterion   search.Criterion
	direction   search.Direction
	pageSize    int
	page        int
	working     []scryfall.Card
	window      search.Window[scryfall.Card]
	loading     bool
	err         *search.Error

	// prints channel
	printsGen     uint64
	printsOpen    bool
	printsName    string
	printsCards   []scryfall.Card
	printsTotal   int
	printsLoading bool
	printsErr     *search.Error
}

// New creates an empty session.
func New(searcher Searcher, prints PrintsFinder, opts Options) *Session {
	pageSize := opts.PageSize
	if search.ValidPageSize(pageSize) != nil {
		pageSize = search.DefaultPageSize
	}

	s := &Session{
		searcher:  searcher,
		prints:    prints,
		metrics:   opts.Metrics,
		excluded:  search.NewColorSet(),
		direction: search.Ascending,
		pageSize:  pageSize,
		page:      1,
	}
	s.rebuildLocked()
	return s
}

// Observe registers o for change notifications.
func (s *Session) Observe(o Observer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.observers = append(s.observers, o)
}

// Submit runs a new search. The previous result set is dropped immediately;
// excluded colors and page size carry over, sort resets to API order.
// Submit blocks until the aggregation finishes and returns the state after it.
func (s *Session) Submit(ctx context.Context, req scryfall.Request) (State, error) {
	var verr *search.Error
	if err := scryfall.CheckColors(req.Colors); err != nil {
		verr = search.NewValidationError(err)
	}
	req = req.Normalize()
	if verr == nil && req.IsEmpty() {
		verr = search.NewValidationError(search.ErrEmptySearch)
	}
	if verr != nil {
		s.metrics.IncrementValidationFailures()

		s.mu.Lock()
		s.err = verr
		st := s.snapshotLocked()
		s.mu.Unlock()

		s.publishSearch(st)
		return st, verr
	}

	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.query = &req
	s.runID = ""
	s.cards = nil
	s.remoteTotal = 0
	s.criterion = search.ByNone
	s.direction = search.Ascending
	s.page = 1
	s.err = nil
	s.loading = true
	s.rebuildLocked()
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publishSearch(st)

	defer s.finishSearch(gen)

	result, err := s.searcher.Aggregate(ctx, req)

	s.mu.Lock()
	if gen != s.generation {
		s.mu.Unlock()
		s.metrics.IncrementStaleDiscarded()
		log.Printf("Discarding superseded search %q (generation %d)", req.SearchTerms(), gen)
		return s.Snapshot(), ErrSuperseded
	}

	s.loading = false
	var classified *search.Error
	if err != nil {
		classified = search.Classify(err, search.MsgNoCards)
		s.err = classified
	} else {
		s.cards = result.Cards
		s.remoteTotal = result.TotalCards
		s.runID = result.RunID
		s.err = nil
	}
	s.rebuildLocked()
	st = s.snapshotLocked()
	s.mu.Unlock()
	s.publishSearch(st)

	if classified != nil {
		return st, classified
	}
	return st, nil
}

// finishSearch clears the loading flag of generation gen if nothing else did.
func (s *Session) finishSearch(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || !s.loading {
		s.mu.Unlock()
		return
	}
	s.loading = false
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publishSearch(st)
}

// SetExcluded replaces the excluded color set. Unknown codes and excluding
// every color are rejected.
func (s *Session) SetExcluded(codes []string) (State, error) {
	if err := scryfall.CheckColors(codes); err != nil {
		return s.Snapshot(), search.NewValidationError(err)
	}
	excluded := search.NewColorSet(codes...)
	if err := search.ValidateExclusion(excluded); err != nil {
		return s.Snapshot(), err
	}
	return s.update(func() {
		s.excluded = excluded
		s.rebuildLocked()
	}), nil
}

// SetSort changes the sort criterion and direction. The page is kept, clamped.
func (s *Session) SetSort(criterion search.Criterion, direction search.Direction) State {
	return s.update(func() {
		s.criterion = criterion
		s.direction = direction
		s.rebuildLocked()
	})
}

// SetPageSize switches to one of the page size tiers and returns to page 1.
func (s *Session) SetPageSize(size int) (State, error) {
	if err := search.ValidPageSize(size); err != nil {
		return s.Snapshot(), err
	}
	return s.update(func() {
		s.pageSize = size
		s.page = 1
		s.repaginateLocked()
	}), nil
}

// SetPage moves to page n, clamped into the valid range.
func (s *Session) SetPage(n int) State {
	return s.update(func() {
		s.page = n
		s.repaginateLocked()
	})
}

// NextPage advances one page unless already on the last.
func (s *Session) NextPage() State {
	return s.update(func() {
		s.page++
		s.repaginateLocked()
	})
}

// PrevPage goes back one page unless already on the first.
func (s *Session) PrevPage() State {
	return s.update(func() {
		s.page--
		s.repaginateLocked()
	})
}

// Snapshot returns a copy of the search channel.
func (s *Session) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) update(fn func()) State {
	s.mu.Lock()
	fn()
	st := s.snapshotLocked()
	s.mu.Unlock()
	s.publishSearch(st)
	return st
}

// rebuildLocked re-derives the working set from the aggregated cards.
func (s *Session) rebuildLocked() {
	s.working = search.Sort(search.Filter(s.cards, s.excluded), s.criterion, s.direction)
	s.repaginateLocked()
}

func (s *Session) repaginateLocked() {
	s.window = search.Paginate(s.working, s.pageSize, s.page)
	s.page = s.window.Page
}

func (s *Session) snapshotLocked() State {
	displayed := make([]scryfall.Card, len(s.window.Items))
	copy(displayed, s.window.Items)

	var query *scryfall.Request
	if s.query != nil {
		q := *s.query
		q.Colors = append([]string(nil), s.query.Colors...)
		query = &q
	}

	return State{
		Generation:  s.generation,
		RunID:       s.runID,
		Query:       query,
		Excluded:    s.excluded.Codes(),
		Sort:        s.criterion,
		Direction:   s.direction,
		PageSize:    s.window.PageSize,
		Page:        s.window.Page,
		TotalPages:  s.window.TotalPages,
		Total:       s.window.Total,
		Fetched:     len(s.cards),
		RemoteTotal: s.remoteTotal,
		Displayed:   displayed,
		Loading:     s.loading,
		Error:       errorState(s.err),
	}
}

// Inspect opens the prints view for name and looks up its printings. It is
// independent of the search channel and may run alongside a Submit.
func (s *Session) Inspect(ctx context.Context, name string) (PrintsState, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		verr := search.NewValidationError(search.ErrEmptyName)
		s.mu.Lock()
		s.printsErr = verr
		st := s.printsSnapshotLocked()
		s.mu.Unlock()
		s.publishPrints(st)
		return st, verr
	}

	s.mu.Lock()
	s.printsGen++
	gen := s.printsGen
	s.printsOpen = true
	s.printsName = name
	s.printsCards = nil
	s.printsTotal = 0
	s.printsErr = nil
	s.printsLoading = true
	st := s.printsSnapshotLocked()
	s.mu.Unlock()
	s.publishPrints(st)

	defer s.finishPrints(gen)

	result, err := s.prints.Lookup(ctx, name)

	s.mu.Lock()
	if gen != s.printsGen {
		s.mu.Unlock()
		s.metrics.IncrementStaleDiscarded()
		return s.PrintsSnapshot(), ErrSuperseded
	}

	s.printsLoading = false
	var classified *search.Error
	if err != nil {
		classified = search.Classify(err, search.MsgNoPrints)
		s.printsErr = classified
	} else {
		s.printsCards = result.Prints
		s.printsTotal = result.TotalPrints
	}
	st = s.printsSnapshotLocked()
	s.mu.Unlock()
	s.publishPrints(st)

	if classified != nil {
		return st, classified
	}
	return st, nil
}

func (s *Session) finishPrints(gen uint64) {
	s.mu.Lock()
	if gen != s.printsGen || !s.printsLoading {
		s.mu.Unlock()
		return
	}
	s.printsLoading = false
	st := s.printsSnapshotLocked()
	s.mu.Unlock()
	s.publishPrints(st)
}

// CloseInspect closes the prints view and discards its state. A lookup still
// in flight is superseded.
func (s *Session) CloseInspect() PrintsState {
	s.mu.Lock()
	s.printsGen++
	s.printsOpen = false
	s.printsName = ""
	s.printsCards = nil
	s.printsTotal = 0
	s.printsErr = nil
	s.printsLoading = false
	st := s.printsSnapshotLocked()
	s.mu.Unlock()
	s.publishPrints(st)
	return st
}

// PrintsSnapshot returns a copy of the prints channel.
func (s *Session) PrintsSnapshot() PrintsState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.printsSnapshotLocked()
}

func (s *Session) printsSnapshotLocked() PrintsState {
	prints := make([]scryfall.Card, len(s.printsCards))
	copy(prints, s.printsCards)

	return PrintsState{
		Generation:  s.printsGen,
		Open:        s.printsOpen,
		Name:        s.printsName,
		Prints:      prints,
		TotalPrints: s.printsTotal,
		Loading:     s.printsLoading,
		Error:       errorState(s.printsErr),
	}
}

func (s *Session) publishSearch(st State) {
	for _, o := range s.observerList() {
		o.SearchChanged(st)
	}
}

func (s *Session) publishPrints(st PrintsState) {
	for _, o := range s.observerList() {
		o.PrintsChanged(st)
	}
}

func (s *Session) observerList() []Observer {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Observer(nil), s.observers...)
}
