// Package main runs the card search REST and WebSocket API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ramonehamilton/cardsearch/internal/api"
	"github.com/ramonehamilton/cardsearch/internal/app"
	"github.com/ramonehamilton/cardsearch/internal/config"
	"github.com/ramonehamilton/cardsearch/internal/version"
)

var (
	configPath = flag.String("config", "", "Config file (default: ~/.cardsearch/config.toml)")
	port       = flag.Int("port", 0, "API server port (overrides config)")
	cachePath  = flag.String("cache-path", "", "SQLite page cache file; selects the sqlite backend")
	watch      = flag.Bool("watch", true, "Reload page delay and debug mode when the config file changes")
)

func main() {
	flag.Parse()

	fmt.Printf("Card Search - REST API Server (%s)\n", version.Version)
	fmt.Println("==================================")
	fmt.Println()

	path := *configPath
	if path == "" {
		p, err := config.Path()
		if err != nil {
			log.Fatalf("Failed to resolve config path: %v", err)
		}
		path = p
	}

	cfg, err := config.LoadFrom(path)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if err := cfg.ApplyEnv(); err != nil {
		log.Fatalf("Failed to apply environment: %v", err)
	}
	if *port != 0 {
		cfg.Server.Port = *port
	}
	if *cachePath != "" {
		cfg.Cache.Backend = config.BackendSQLite
		cfg.Cache.Path = *cachePath
	}

	fmt.Printf("Config: %s\n", path)
	fmt.Printf("Scryfall: %s (page delay %s)\n", cfg.Scryfall.BaseURL, cfg.Scryfall.PageDelay)

	application, err := app.New(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer func() {
		if err := application.Close(); err != nil {
			log.Printf("Error closing page cache: %v", err)
		}
	}()

	if *watch {
		watcher, err := config.Watch(path, application.Reload)
		if err != nil {
			log.Printf("Config watching disabled: %v", err)
		} else {
			defer watcher.Close()
		}
	}

	server := api.NewServer(&api.Config{
		Port:        cfg.Server.Port,
		FrontendURL:    cfg.Server.FrontendURL,
		Debug:          cfg.App.DebugMode,
		IncludeDigital: !cfg.Scryfall.ExcludeDigital,
	}, &api.Services{
		Session: application.Session,
		Metrics: application.Metrics,
		Store:   application.Store,
	})

	if err := server.Start(); err != nil {
		log.Fatalf("Failed to start API server: %v", err)
	}

	fmt.Println()
	fmt.Printf("API server running at http://localhost:%d\n", cfg.Server.Port)
	fmt.Println("Press Ctrl+C to stop")
	fmt.Println()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	fmt.Println()
	fmt.Println("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	fmt.Println("API server stopped.")
}
