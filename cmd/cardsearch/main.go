// Package main is a one-shot command line front end: it runs a search through
// the full pipeline and prints the requested page.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"

	"github.com/ramonehamilton/cardsearch/internal/app"
	"github.com/ramonehamilton/cardsearch/internal/config"
	"github.com/ramonehamilton/cardsearch/internal/scryfall"
	"github.com/ramonehamilton/cardsearch/internal/search"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type options struct {
	configPath     string
	baseURL        string
	cachePath      string
	exact          bool
	colors         string
	exclude        string
	sort           string
	desc           bool
	pageSize       int
	page           int
	prints         string
	includeDigital bool
	jsonOut        bool
	debug          bool
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	fs := flag.NewFlagSet("cardsearch", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintln(stderr, "Usage: cardsearch [flags] <query>")
		fmt.Fprintln(stderr, "       cardsearch -prints <card name>")
		fmt.Fprintln(stderr)
		fs.PrintDefaults()
	}

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Config file (default: ~/.cardsearch/config.toml)")
	fs.StringVar(&opts.baseURL, "base-url", "", "Search API root (overrides config)")
	fs.StringVar(&opts.cachePath, "cache-path", "", "SQLite page cache file; selects the sqlite backend")
	fs.BoolVar(&opts.exact, "exact", false, "Match the card name exactly")
	fs.StringVar(&opts.colors, "colors", "", "Color identity to search, e.g. WU or W,U")
	fs.StringVar(&opts.exclude, "exclude", "", "Colors to hide from results; C is colorless, e.g. CR or C,R")
	fs.StringVar(&opts.sort, "sort", "", "Sort by name, cmc, color_identity, rarity, layout, type_line, set or released_at")
	fs.BoolVar(&opts.desc, "desc", false, "Sort descending")
	fs.IntVar(&opts.pageSize, "page-size", 0, "Results per page: 50, 100, 250, 500 or 1000 (default from config)")
	fs.IntVar(&opts.page, "page", 1, "Page to show")
	fs.StringVar(&opts.prints, "prints", "", "List every printing of this card instead of searching")
	fs.BoolVar(&opts.includeDigital, "include-digital", false, "Include digital-only printings")
	fs.BoolVar(&opts.jsonOut, "json", false, "Print JSON instead of a table")
	fs.BoolVar(&opts.debug, "d", false, "Enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

func loadConfig(opts *options) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if opts.configPath != "" {
		cfg, err = config.LoadFrom(opts.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if opts.baseURL != "" {
		cfg.Scryfall.BaseURL = opts.baseURL
	}
	if opts.cachePath != "" {
		cfg.Cache.Backend = config.BackendSQLite
		cfg.Cache.Path = opts.cachePath
	}
	if opts.includeDigital {
		cfg.Scryfall.ExcludeDigital = false
	}
	if opts.debug {
		cfg.App.DebugMode = true
	}
	return cfg, nil
}

func run(ctx context.Context, args []string, stdout io.Writer) error {
	opts, rest, err := parseFlags(args, os.Stderr)
	if err != nil {
		return err
	}

	criterion, err := search.ParseCriterion(opts.sort)
	if err != nil {
		return err
	}
	direction := search.Ascending
	if opts.desc {
		direction = search.Descending
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}
	if !cfg.App.DebugMode {
		log.SetOutput(io.Discard)
	}

	application, err := app.New(cfg)
	if err != nil {
		return err
	}
	defer application.Close()

	if opts.prints != "" {
		st, err := application.Session.Inspect(ctx, opts.prints)
		if err != nil {
			return err
		}
		if opts.jsonOut {
			return writeJSON(stdout, st)
		}
		displayPrints(stdout, st)
		return nil
	}

	req := scryfall.Request{
		Query:          strings.Join(rest, " "),
		Exact:          opts.exact,
		Colors:         scryfall.SplitColors(opts.colors),
		IncludeDigital: !cfg.Scryfall.ExcludeDigital,
	}

	sess := application.Session
	if _, err := sess.Submit(ctx, req); err != nil {
		return err
	}
	if opts.exclude != "" {
		if _, err := sess.SetExcluded(scryfall.SplitColors(opts.exclude)); err != nil {
			return err
		}
	}
	if opts.pageSize != 0 {
		if _, err := sess.SetPageSize(opts.pageSize); err != nil {
			return err
		}
	}
	sess.SetSort(criterion, direction)
	st := sess.SetPage(opts.page)

	if opts.jsonOut {
		return writeJSON(stdout, st)
	}
	displayResults(stdout, st)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
