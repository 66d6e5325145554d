// Package search implements the result pipeline: aggregate all remote pages
// of a query through the page cache, filter by excluded colors, sort, and
// paginate locally.
package search

import (
	"context"
	"fmt"
	"log"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/ramonehamilton/cardsearch/internal/cache"
	"github.com/ramonehamilton/cardsearch/internal/metrics"
	"github.com/ramonehamilton/cardsearch/internal/scryfall"
)

// DefaultPageDelay is the pause between successive page requests of one run.
const DefaultPageDelay = 50 * time.Millisecond

// PageFetcher performs one remote round trip for a page URL.
type PageFetcher interface {
	FetchPage(ctx context.Context, url string) (*scryfall.Page, error)
}

// AggregatorConfig configures an Aggregator.
type AggregatorConfig struct {
	// BaseURL is the API root used to build first-page URLs.
	BaseURL string

	// PageDelay is enforced between page iterations, cache hits included.
	// Zero uses DefaultPageDelay; negative disables the delay.
	PageDelay time.Duration

	Metrics *metrics.SearchMetrics

	// Debug logs every page iteration.
	Debug bool
}

// Result is the outcome of one aggregation run.
type Result struct {
	RunID      string
	Request    scryfall.Request
	Cards      []scryfall.Card
	TotalCards int
	Pages      int
	CacheHits  int
	Fetches    int
}

// Aggregator collects every page of a logical query into one ordered slice.
// Pages are requested strictly one after another.
type Aggregator struct {
	fetcher PageFetcher
	store   cache.Store
	limiter *rate.Limiter
	baseURL string
	metrics *metrics.SearchMetrics
	debug   atomic.Bool
}

// NewAggregator creates an aggregator reading through store.
func NewAggregator(fetcher PageFetcher, store cache.Store, cfg AggregatorConfig) *Aggregator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = scryfall.DefaultBaseURL
	}
	if store == nil {
		store = cache.NewMemoryStore(0)
	}
	a := &Aggregator{
		fetcher: fetcher,
		store:   store,
		limiter: rate.NewLimiter(delayLimit(cfg.PageDelay), 1),
		baseURL: cfg.BaseURL,
		metrics: cfg.Metrics,
	}
	a.debug.Store(cfg.Debug)
	return a
}

func delayLimit(delay time.Duration) rate.Limit {
	switch {
	case delay == 0:
		return rate.Every(DefaultPageDelay)
	case delay < 0:
		return rate.Inf
	default:
		return rate.Every(delay)
	}
}

// SetPageDelay changes the inter-page delay for subsequent iterations.
func (a *Aggregator) SetPageDelay(delay time.Duration) {
	a.limiter.SetLimit(delayLimit(delay))
}

// SetDebug toggles per-page logging.
func (a *Aggregator) SetDebug(debug bool) {
	a.debug.Store(debug)
}

// Store returns the page cache the aggregator reads through.
func (a *Aggregator) Store() cache.Store {
	return a.store
}

// Aggregate fetches every page of req. An empty request is rejected before any
// network call. On any failure the pages collected so far are discarded and a
// classified *Error is returned.
func (a *Aggregator) Aggregate(ctx context.Context, req scryfall.Request) (*Result, error) {
	req = req.Normalize()
	if req.IsEmpty() {
		a.metrics.IncrementValidationFailures()
		return nil, NewValidationError(ErrEmptySearch)
	}

	start := time.Now()
	result := &Result{
		RunID:   uuid.NewString(),
		Request: req,
	}

	log.Printf("Aggregating search %q (run %s)", req.SearchTerms(), result.RunID)

	url := req.URL(a.baseURL)
	for {
		// Every iteration passes the delay, including ones served from cache.
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, Classify(fmt.Errorf("wait for page delay: %w", err), MsgNoCards)
		}

		page, hit, err := a.page(ctx, req, url)
		if err != nil {
			log.Printf("Search run %s failed on page %s: %v", result.RunID, scryfall.PageParam(url), err)
			return nil, Classify(err, MsgNoCards)
		}

		result.Pages++
		if hit {
			result.CacheHits++
		} else {
			result.Fetches++
		}
		if result.Pages == 1 {
			result.TotalCards = page.TotalCards
		}
		result.Cards = append(result.Cards, page.Data...)

		if a.debug.Load() {
			log.Printf("Search run %s: page %d, %d cards (cached: %v, has_more: %v)",
				result.RunID, result.Pages, len(page.Data), hit, page.HasMore)
		}

		if !page.HasMore || page.NextPage == "" {
			break
		}
		url = page.NextPage
	}

	a.metrics.RecordAggregation(time.Since(start))
	log.Printf("Search run %s complete: %d cards in %d pages (%d cached) in %v",
		result.RunID, len(result.Cards), result.Pages, result.CacheHits, time.Since(start).Round(time.Millisecond))

	return result, nil
}

// page returns the page at url, from the store when possible.
func (a *Aggregator) page(ctx context.Context, req scryfall.Request, url string) (*scryfall.Page, bool, error) {
	key := cache.NewKey(req, url)

	page, ok, err := a.store.Get(ctx, key)
	if err != nil {
		// A broken cache read degrades to a network fetch.
		log.Printf("Cache read for %s failed: %v", key, err)
	}
	if ok {
		a.metrics.RecordCache(true)
		return page, true, nil
	}
	a.metrics.RecordCache(false)

	fetchStart := time.Now()
	page, err = a.fetcher.FetchPage(ctx, url)
	a.metrics.RecordFetch(time.Since(fetchStart), err)
	if err != nil {
		return nil, false, err
	}

	if err := a.store.Put(ctx, key, page); err != nil {
		log.Printf("Cache write for %s failed: %v", key, err)
	}
	return page, false, nil
}
