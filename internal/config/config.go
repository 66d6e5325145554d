package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/ramonehamilton/cardsearch/internal/version"
)

// Cache backends.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// pageSizes mirrors the page size tiers offered to users.
var pageSizes = []int{50, 100, 250, 500, 1000}

// Config represents the application configuration.
type Config struct {
	// Remote search API configuration
	Scryfall ScryfallConfig `toml:"scryfall"`

	// Result page cache configuration
	Cache CacheConfig `toml:"cache"`

	// Search defaults
	Search SearchConfig `toml:"search"`

	// HTTP server configuration
	Server ServerConfig `toml:"server"`

	// Application configuration
	App AppConfig `toml:"app"`
}

// ScryfallConfig contains remote search API settings.
type ScryfallConfig struct {
	BaseURL        string `toml:"base_url"`        // API root
	UserAgent      string `toml:"user_agent"`      // Sent with every request
	Timeout        string `toml:"timeout"`         // Per-request timeout (e.g., "30s")
	PageDelay      string `toml:"page_delay"`      // Wait between result pages (e.g., "50ms")
	ExcludeDigital bool   `toml:"exclude_digital"` // Add not:digital to every query
}

// CacheConfig contains result page cache settings.
type CacheConfig struct {
	Backend    string `toml:"backend"`     // "memory" or "sqlite"
	Path       string `toml:"path"`        // SQLite file (sqlite backend only)
	MaxEntries int    `toml:"max_entries"` // Max cached pages (0 = unlimited, memory backend only)
}

// SearchConfig contains search defaults.
type SearchConfig struct {
	DefaultPageSize int `toml:"default_page_size"` // One of 50, 100, 250, 500, 1000
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Port        int    `toml:"port"`         // Listen port
	FrontendURL string `toml:"frontend_url"` // Allowed CORS origin ("" allows all)
}

// AppConfig contains general application settings.
type AppConfig struct {
	DebugMode bool `toml:"debug_mode"` // Enable debug logging
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Scryfall: ScryfallConfig{
			BaseURL:        "https://api.scryfall.com",
			UserAgent:      version.UserAgent(),
			Timeout:        "30s",
			PageDelay:      "50ms",
			ExcludeDigital: true,
		},
		Cache: CacheConfig{
			Backend:    BackendMemory,
			Path:       "",
			MaxEntries: 0,
		},
		Search: SearchConfig{
			DefaultPageSize: 50,
		},
		Server: ServerConfig{
			Port:        8080,
			FrontendURL: "",
		},
		App: AppConfig{
			DebugMode: false,
		},
	}
}

// Dir returns the configuration directory, creating it if needed.
func Dir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}

	configDir := filepath.Join(homeDir, ".cardsearch")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		return "", fmt.Errorf("create config directory: %w", err)
	}

	return configDir, nil
}

// Path returns the path to the configuration file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load loads the configuration from the default location.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom loads the configuration from path. Returns default config if the
// file doesn't exist. Keys missing from the file keep their default values.
func LoadFrom(path string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}

	return config, nil
}

// Save saves the configuration to the default location.
func (c *Config) Save() error {
	path, err := Path()
	if err != nil {
		return err
	}
	return c.SaveTo(path)
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// ApplyEnv overrides values from the environment:
//   - CARDSEARCH_PORT: server port
//   - CARDSEARCH_FRONTEND_URL: allowed CORS origin
//   - CARDSEARCH_CACHE_PATH: SQLite cache file; also selects the sqlite backend
//   - CARDSEARCH_DEBUG: "true" enables debug logging
func (c *Config) ApplyEnv() error {
	if port := os.Getenv("CARDSEARCH_PORT"); port != "" {
		p, err := strconv.Atoi(port)
		if err != nil {
			return fmt.Errorf("invalid CARDSEARCH_PORT %q: %w", port, err)
		}
		c.Server.Port = p
	}

	if url := os.Getenv("CARDSEARCH_FRONTEND_URL"); url != "" {
		c.Server.FrontendURL = url
	}

	if path := os.Getenv("CARDSEARCH_CACHE_PATH"); path != "" {
		c.Cache.Backend = BackendSQLite
		c.Cache.Path = path
	}

	if debug := os.Getenv("CARDSEARCH_DEBUG"); debug != "" {
		c.App.DebugMode = strings.ToLower(debug) == "true"
	}

	return nil
}

// Validate validates the configuration values.
func (c *Config) Validate() error {
	if c.Scryfall.BaseURL == "" {
		return fmt.Errorf("scryfall base URL cannot be empty")
	}

	if _, err := time.ParseDuration(c.Scryfall.Timeout); err != nil {
		return fmt.Errorf("invalid timeout %q: %w", c.Scryfall.Timeout, err)
	}

	delay, err := time.ParseDuration(c.Scryfall.PageDelay)
	if err != nil {
		return fmt.Errorf("invalid page delay %q: %w", c.Scryfall.PageDelay, err)
	}
	if delay < 0 {
		return fmt.Errorf("page delay cannot be negative: %s", delay)
	}

	switch c.Cache.Backend {
	case BackendMemory:
	case BackendSQLite:
		if c.Cache.Path == "" {
			return fmt.Errorf("sqlite cache backend requires a path")
		}
	default:
		return fmt.Errorf("unknown cache backend %q", c.Cache.Backend)
	}

	if c.Cache.MaxEntries < 0 {
		return fmt.Errorf("cache max entries cannot be negative: %d", c.Cache.MaxEntries)
	}

	if !validPageSize(c.Search.DefaultPageSize) {
		return fmt.Errorf("invalid default page size %d: must be one of %v", c.Search.DefaultPageSize, pageSizes)
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	return nil
}

func validPageSize(n int) bool {
	for _, size := range pageSizes {
		if size == n {
			return true
		}
	}
	return false
}

// GetTimeout returns the request timeout as a duration.
func (c *Config) GetTimeout() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.Timeout)
}

// GetPageDelay returns the inter-page delay as a duration.
func (c *Config) GetPageDelay() (time.Duration, error) {
	return time.ParseDuration(c.Scryfall.PageDelay)
}
