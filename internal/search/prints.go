package search

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/ramonehamilton/cardsearch/internal/metrics"
	"github.com/ramonehamilton/cardsearch/internal/scryfall"
)

// PrintsResult lists the printings of one card, oldest release first.
type PrintsResult struct {
	Name        string
	Prints      []scryfall.Card
	TotalPrints int
}

// PrintsLookup finds every printing of a card by exact name. It issues a
// single request, reads only the first page and never touches the page cache.
type PrintsLookup struct {
	fetcher        PageFetcher
	baseURL        string
	includeDigital bool
	metrics        *metrics.SearchMetrics
}

// NewPrintsLookup creates a lookup against baseURL.
func NewPrintsLookup(fetcher PageFetcher, baseURL string, includeDigital bool, m *metrics.SearchMetrics) *PrintsLookup {
	if baseURL == "" {
		baseURL = scryfall.DefaultBaseURL
	}
	return &PrintsLookup{
		fetcher:        fetcher,
		baseURL:        baseURL,
		includeDigital: includeDigital,
		metrics:        m,
	}
}

// Lookup returns the printings of name. A remote 404 is classified as
// KindNotFound with a prints-specific message.
func (p *PrintsLookup) Lookup(ctx context.Context, name string) (*PrintsResult, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError(ErrEmptyName)
	}

	start := time.Now()
	page, err := p.fetcher.FetchPage(ctx, scryfall.PrintsURL(p.baseURL, name, p.includeDigital))
	p.metrics.RecordFetch(time.Since(start), err)
	if err != nil {
		log.Printf("Prints lookup for %q failed: %v", name, err)
		return nil, Classify(err, MsgNoPrints)
	}
	p.metrics.RecordPrintsLookup(time.Since(start))

	return &PrintsResult{
		Name:        name,
		Prints:      page.Data,
		TotalPrints: page.TotalCards,
	}, nil
}
