package cache

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite" // SQLite driver

	"github.com/ramonehamilton/cardsearch/internal/scryfall"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// SQLiteConfig holds settings for the persistent page store.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database.
	Path string

	// BusyTimeout sets how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// SQLiteStore persists pages in a SQLite table so repeated queries survive a
// restart. Like MemoryStore it never evicts.
type SQLiteStore struct {
	conn *sql.DB
}

// OpenSQLite opens (creating if needed) the database at cfg.Path and applies
// pending schema migrations.
func OpenSQLite(cfg SQLiteConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("sqlite cache path cannot be empty")
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	if err := migrateUp(cfg.Path); err != nil {
		return nil, err
	}

	dsn := fmt.Sprintf("%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)",
		cfg.Path, cfg.BusyTimeout.Milliseconds())

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache database: %w", err)
	}

	if err := conn.Ping(); err != nil {
		if closeErr := conn.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to close cache database after ping error: %w (original error: %v)", closeErr, err)
		}
		return nil, fmt.Errorf("failed to ping cache database: %w", err)
	}

	return &SQLiteStore{conn: conn}, nil
}

// migrateUp applies the embedded migrations to the database file at path.
func migrateUp(path string) error {
	migrationsDir, err := fs.Sub(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to access migrations directory: %w", err)
	}

	sourceDriver, err := iofs.New(migrationsDir, ".")
	if err != nil {
		return fmt.Errorf("failed to create source driver: %w", err)
	}

	// Convert Windows backslashes to forward slashes and ensure absolute paths have leading slash
	normalizedPath := filepath.ToSlash(path)
	if filepath.IsAbs(path) && normalizedPath[0] != '/' {
		normalizedPath = "/" + normalizedPath
	}

	m, err := migrate.NewWithSourceInstance("iofs", sourceDriver, "sqlite://"+normalizedPath)
	if err != nil {
		return fmt.Errorf("failed to create migration instance: %w", err)
	}
	defer func() { _, _ = m.Close() }()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// Get returns the page stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key Key) (*scryfall.Page, bool, error) {
	var payload string
	err := s.conn.QueryRowContext(ctx,
		`SELECT payload FROM search_pages WHERE query = ? AND colors = ? AND page = ?`,
		key.Query, key.Colors, key.Page,
	).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to read cached page %s: %w", key, err)
	}

	var page scryfall.Page
	if err := json.Unmarshal([]byte(payload), &page); err != nil {
		return nil, false, fmt.Errorf("failed to decode cached page %s: %w", key, err)
	}
	return &page, true, nil
}

// Put stores page under key, replacing any previous entry.
func (s *SQLiteStore) Put(ctx context.Context, key Key, page *scryfall.Page) error {
	payload, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode page %s: %w", key, err)
	}

	_, err = s.conn.ExecContext(ctx, `
		INSERT INTO search_pages (query, colors, page, payload)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(query, colors, page) DO UPDATE SET payload = excluded.payload, created_at = CURRENT_TIMESTAMP`,
		key.Query, key.Colors, key.Page, string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to store page %s: %w", key, err)
	}
	return nil
}

// Len returns the number of cached pages, or 0 if the count cannot be read.
func (s *SQLiteStore) Len() int {
	var n int
	if err := s.conn.QueryRow(`SELECT COUNT(*) FROM search_pages`).Scan(&n); err != nil {
		return 0
	}
	return n
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}
