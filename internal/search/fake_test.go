package search

import (
	"context"
	"fmt"
	"sync"

	"github.com/ramonehamilton/cardsearch/internal/scryfall"
)

// fakeFetcher serves pages by page number and records every URL requested.
type fakeFetcher struct {
	mu    sync.Mutex
	pages map[string]*scryfall.Page
	errs  map[string]error
	urls  []string
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{
		pages: make(map[string]*scryfall.Page),
		errs:  make(map[string]error),
	}
}

func (f *fakeFetcher) FetchPage(_ context.Context, url string) (*scryfall.Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.urls = append(f.urls, url)
	page := scryfall.PageParam(url)
	if err, ok := f.errs[page]; ok {
		return nil, err
	}
	if p, ok := f.pages[page]; ok {
		return p, nil
	}
	return nil, &scryfall.NetworkError{Status: 404, Message: "not found", URL: url}
}

func (f *fakeFetcher) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.urls)
}

// makeCards builds n cards with ids prefix-0..prefix-(n-1).
func makeCards(prefix string, n int) []scryfall.Card {
	cards := make([]scryfall.Card, n)
	for i := range cards {
		cards[i] = scryfall.Card{
			ID:            fmt.Sprintf("%s-%d", prefix, i),
			Name:          fmt.Sprintf("%s %d", prefix, i),
			ColorIdentity: []string{"R"},
			Rarity:        "common",
		}
	}
	return cards
}

// pagedFetcher returns a fetcher serving sizes as consecutive pages.
func pagedFetcher(sizes ...int) *fakeFetcher {
	f := newFakeFetcher()
	total := 0
	for _, n := range sizes {
		total += n
	}
	for i, n := range sizes {
		page := &scryfall.Page{
			Data:       makeCards(fmt.Sprintf("p%d", i+1), n),
			TotalCards: total,
			HasMore:    i < len(sizes)-1,
		}
		if page.HasMore {
			page.NextPage = fmt.Sprintf("https://api.scryfall.com/cards/search?page=%d&q=dragon", i+2)
		}
		f.pages[fmt.Sprint(i+1)] = page
	}
	return f
}
