package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_IsValid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	delay, err := cfg.GetPageDelay()
	require.NoError(t, err)
	assert.Equal(t, 50*time.Millisecond, delay)

	timeout, err := cfg.GetTimeout()
	require.NoError(t, err)
	assert.Equal(t, 30*time.Second, timeout)
	assert.Equal(t, BackendMemory, cfg.Cache.Backend)
	assert.True(t, cfg.Scryfall.ExcludeDigital)
}

func TestLoadFrom_MissingFileReturnsDefaults(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadFrom_PartialFileKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[scryfall]
page_delay = "120ms"

[search]
default_page_size = 250
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, "120ms", cfg.Scryfall.PageDelay)
	assert.Equal(t, 250, cfg.Search.DefaultPageSize)
	assert.Equal(t, "https://api.scryfall.com", cfg.Scryfall.BaseURL)
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFrom_InvalidTOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[scryfall\nbase_url = "), 0o644))

	_, err := LoadFrom(path)
	assert.Error(t, err)
}

func TestSaveTo_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := DefaultConfig()
	cfg.Cache.Backend = BackendSQLite
	cfg.Cache.Path = "/tmp/cache.db"
	cfg.App.DebugMode = true

	require.NoError(t, cfg.SaveTo(path))

	loaded, err := LoadFrom(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"empty base url", func(c *Config) { c.Scryfall.BaseURL = "" }},
		{"bad timeout", func(c *Config) { c.Scryfall.Timeout = "soon" }},
		{"bad page delay", func(c *Config) { c.Scryfall.PageDelay = "fast" }},
		{"negative page delay", func(c *Config) { c.Scryfall.PageDelay = "-1s" }},
		{"unknown backend", func(c *Config) { c.Cache.Backend = "redis" }},
		{"sqlite without path", func(c *Config) { c.Cache.Backend = BackendSQLite }},
		{"negative max entries", func(c *Config) { c.Cache.MaxEntries = -1 }},
		{"page size off tier", func(c *Config) { c.Search.DefaultPageSize = 75 }},
		{"port out of range", func(c *Config) { c.Server.Port = 70000 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("CARDSEARCH_PORT", "9090")
	t.Setenv("CARDSEARCH_FRONTEND_URL", "http://localhost:3000")
	t.Setenv("CARDSEARCH_CACHE_PATH", "/tmp/pages.db")
	t.Setenv("CARDSEARCH_DEBUG", "TRUE")

	cfg := DefaultConfig()
	require.NoError(t, cfg.ApplyEnv())
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "http://localhost:3000", cfg.Server.FrontendURL)
	assert.Equal(t, BackendSQLite, cfg.Cache.Backend)
	assert.Equal(t, "/tmp/pages.db", cfg.Cache.Path)
	assert.True(t, cfg.App.DebugMode)
	assert.NoError(t, cfg.Validate())
}

func TestApplyEnv_InvalidPort(t *testing.T) {
	t.Setenv("CARDSEARCH_PORT", "eighty")
	assert.Error(t, DefaultConfig().ApplyEnv())
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, DefaultConfig().SaveTo(path))

	changes := make(chan *Config, 4)
	w, err := Watch(path, func(c *Config) { changes <- c })
	require.NoError(t, err)
	defer w.Close()

	updated := DefaultConfig()
	updated.Scryfall.PageDelay = "200ms"
	require.NoError(t, updated.SaveTo(path))

	select {
	case got := <-changes:
		assert.Equal(t, "200ms", got.Scryfall.PageDelay)
	case <-time.After(3 * time.Second):
		t.Fatal("config change was not reported")
	}
}

func TestWatch_IgnoresInvalidConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, DefaultConfig().SaveTo(path))

	changes := make(chan *Config, 4)
	w, err := Watch(path, func(c *Config) { changes <- c })
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[search]\ndefault_page_size = 7\n"), 0o644))
	// Unrelated files in the same directory are ignored too.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.toml"), []byte("x = 1"), 0o644))

	select {
	case got := <-changes:
		t.Fatalf("unexpected reload: %+v", got)
	case <-time.After(400 * time.Millisecond):
	}
}

func TestWatcher_CloseIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	w, err := Watch(path, func(*Config) {})
	require.NoError(t, err)

	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}
