// Package app wires the search pipeline together from a configuration.
package app

import (
	"fmt"
	"log"
	"sync"

	"github.com/ramonehamilton/cardsearch/internal/cache"
	"github.com/ramonehamilton/cardsearch/internal/config"
	"github.com/ramonehamilton/cardsearch/internal/metrics"
	"github.com/ramonehamilton/cardsearch/internal/scryfall"
	"github.com/ramonehamilton/cardsearch/internal/search"
	"github.com/ramonehamilton/cardsearch/internal/session"
)

// App holds the long-lived components built from one configuration.
type App struct {
	// Config is the configuration last applied by New or Reload.
	Config     *config.Config
	Metrics    *metrics.SearchMetrics
	Client     *scryfall.Client
	Store      cache.Store
	Aggregator *search.Aggregator
	Prints     *search.PrintsLookup
	Session    *session.Session

	mu     sync.Mutex
	closer func() error
}

// New validates cfg and builds the pipeline.
func New(cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, err
	}
	delay, err := cfg.GetPageDelay()
	if err != nil {
		return nil, err
	}

	store, closer, err := openStore(cfg.Cache)
	if err != nil {
		return nil, err
	}

	m := metrics.NewSearchMetrics()
	client := scryfall.NewClient(
		scryfall.WithBaseURL(cfg.Scryfall.BaseURL),
		scryfall.WithUserAgent(cfg.Scryfall.UserAgent),
		scryfall.WithTimeout(timeout),
		scryfall.WithRateLimit(delay),
	)

	// A zero delay from the config means "no delay", not "default".
	if delay == 0 {
		delay = -1
	}
	agg := search.NewAggregator(client, store, search.AggregatorConfig{
		BaseURL:   cfg.Scryfall.BaseURL,
		PageDelay: delay,
		Metrics:   m,
		Debug:     cfg.App.DebugMode,
	})
	prints := search.NewPrintsLookup(client, cfg.Scryfall.BaseURL, !cfg.Scryfall.ExcludeDigital, m)

	return &App{
		Config:     cfg,
		Metrics:    m,
		Client:     client,
		Store:      store,
		Aggregator: agg,
		Prints:     prints,
		Session: session.New(agg, prints, session.Options{
			PageSize: cfg.Search.DefaultPageSize,
			Metrics:  m,
		}),
		closer: closer,
	}, nil
}

func openStore(cfg config.CacheConfig) (cache.Store, func() error, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		store, err := cache.OpenSQLite(cache.SQLiteConfig{Path: cfg.Path})
		if err != nil {
			return nil, nil, fmt.Errorf("open page cache: %w", err)
		}
		log.Printf("Page cache: sqlite at %s (%d pages)", cfg.Path, store.Len())
		return store, store.Close, nil
	default:
		if cfg.MaxEntries > 0 {
			log.Printf("Page cache: memory, at most %d pages", cfg.MaxEntries)
		} else {
			log.Println("Page cache: memory, unbounded")
		}
		return cache.NewMemoryStore(cfg.MaxEntries), func() error { return nil }, nil
	}
}

// Reload applies the settings that can change without a restart: the
// inter-page delay and debug logging. Other changes need a restart and are
// logged.
func (a *App) Reload(cfg *config.Config) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if delay, err := cfg.GetPageDelay(); err == nil {
		a.Client.SetRateLimit(delay)
		if delay == 0 {
			delay = -1
		}
		a.Aggregator.SetPageDelay(delay)
	}
	a.Aggregator.SetDebug(cfg.App.DebugMode)

	if cfg.Cache != a.Config.Cache || cfg.Scryfall.BaseURL != a.Config.Scryfall.BaseURL || cfg.Server != a.Config.Server {
		log.Println("Cache, API or server settings changed; restart to apply them")
	}
	log.Printf("Applied page delay %s, debug mode %v", cfg.Scryfall.PageDelay, cfg.App.DebugMode)
	a.Config = cfg
}

// Close releases the page cache.
func (a *App) Close() error {
	if a.closer == nil {
		return nil
	}
	return a.closer()
}
