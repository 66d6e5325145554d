// Package cache memoizes decoded search pages by request identity.
package cache

import (
	"context"

	"github.com/ramonehamilton/cardsearch/internal/scryfall"
)

// Key identifies one cacheable remote page: normalized query terms, the
// canonical concatenation of selected colors, and the page number as sent to
// the API. Two logically identical requests always produce equal keys.
type Key struct {
	Query  string
	Colors string
	Page   string
}

// NewKey derives the key for the page of req addressed by pageURL.
func NewKey(req scryfall.Request, pageURL string) Key {
	return Key{
		Query:  req.KeyQuery(),
		Colors: req.KeyColors(),
		Page:   scryfall.PageParam(pageURL),
	}
}

// String returns the "query|colors|page" form used in log messages. It is not
// unique: stores compare the parts, never this string.
func (k Key) String() string {
	return k.Query + "|" + k.Colors + "|" + k.Page
}

// Store is a key to page memoization table. Entries have no expiry and there
// is no invalidation API.
type Store interface {
	Get(ctx context.Context, key Key) (*scryfall.Page, bool, error)
	Put(ctx context.Context, key Key, page *scryfall.Page) error
	Len() int
}
