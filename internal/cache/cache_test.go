package cache

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ramonehamilton/cardsearch/internal/scryfall"
)

func testPage(ids ...string) *scryfall.Page {
	page := &scryfall.Page{TotalCards: len(ids)}
	for _, id := range ids {
		page.Data = append(page.Data, scryfall.Card{ID: id, Name: "Card " + id, ColorIdentity: []string{"R"}})
	}
	return page
}

func TestNewKey_IsPure(t *testing.T) {
	a := NewKey(scryfall.Request{Query: "Dragon", Colors: []string{"G", "W"}},
		"https://api.scryfall.com/cards/search?q=dragon")
	b := NewKey(scryfall.Request{Query: "dragon", Colors: []string{"W", "G"}},
		"https://api.scryfall.com/cards/search?page=1&q=dragon")

	assert.Equal(t, a, b)
	assert.Equal(t, "not:digital dragon|WG|1", a.String())

	c := NewKey(scryfall.Request{Query: "dragon", Colors: []string{"W", "G"}},
		"https://api.scryfall.com/cards/search?page=2&q=dragon")
	assert.NotEqual(t, a, c)
	assert.Equal(t, "2", c.Page)
}

// storeContract runs the same behavioural checks against any Store.
func storeContract(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	key := Key{Query: "dragon", Colors: "", Page: "1"}

	_, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok, "empty store should miss")

	require.NoError(t, store.Put(ctx, key, testPage("a", "b")))
	got, ok, err := store.Get(ctx, key)
	require.NoError(t, err)
	require.True(t, ok)
	require.Len(t, got.Data, 2)
	assert.Equal(t, "a", got.Data[0].ID)
	assert.Equal(t, []string{"R"}, got.Data[0].ColorIdentity)
	assert.Equal(t, 1, store.Len())

	require.NoError(t, store.Put(ctx, key, testPage("c")))
	got, _, err = store.Get(ctx, key)
	require.NoError(t, err)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "c", got.Data[0].ID)
	assert.Equal(t, 1, store.Len(), "overwrite should not add an entry")

	require.NoError(t, store.Put(ctx, Key{Query: "dragon", Page: "2"}, testPage("d")))
	assert.Equal(t, 2, store.Len())
}

// keysDoNotCollide stores two keys whose parts differ but whose joined forms
// are the same.
func keysDoNotCollide(t *testing.T, store Store) {
	t.Helper()
	ctx := context.Background()
	a := Key{Query: "a|b", Colors: "", Page: "1"}
	b := Key{Query: "a", Colors: "b|", Page: "1"}
	require.Equal(t, a.String(), b.String())

	require.NoError(t, store.Put(ctx, a, testPage("from-a")))
	require.NoError(t, store.Put(ctx, b, testPage("from-b")))

	got, ok, err := store.Get(ctx, a)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "from-a", got.Data[0].ID)
	assert.Equal(t, 2, store.Len())
}

func TestMemoryStore_Contract(t *testing.T) {
	storeContract(t, NewMemoryStore(0))
	keysDoNotCollide(t, NewMemoryStore(0))
}

func TestMemoryStore_UnboundedByDefault(t *testing.T) {
	store := NewMemoryStore(0)
	ctx := context.Background()
	for i := 0; i < 500; i++ {
		require.NoError(t, store.Put(ctx, Key{Query: "q", Page: strconv.Itoa(i)}, testPage("x")))
	}
	assert.Equal(t, 500, store.Len())
}

func TestMemoryStore_LRUBound(t *testing.T) {
	store := NewMemoryStore(2)
	ctx := context.Background()
	k1 := Key{Query: "q", Page: "1"}
	k2 := Key{Query: "q", Page: "2"}
	k3 := Key{Query: "q", Page: "3"}

	require.NoError(t, store.Put(ctx, k1, testPage("1")))
	require.NoError(t, store.Put(ctx, k2, testPage("2")))

	// Touch k1 so k2 becomes the eviction candidate.
	_, ok, _ := store.Get(ctx, k1)
	require.True(t, ok)

	require.NoError(t, store.Put(ctx, k3, testPage("3")))
	assert.Equal(t, 2, store.Len())

	_, ok, _ = store.Get(ctx, k2)
	assert.False(t, ok, "least recently used entry should be evicted")
	_, ok, _ = store.Get(ctx, k1)
	assert.True(t, ok)
	_, ok, _ = store.Get(ctx, k3)
	assert.True(t, ok)
}

func TestSQLiteStore_Contract(t *testing.T) {
	store, err := OpenSQLite(SQLiteConfig{Path: filepath.Join(t.TempDir(), "cache.db")})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	storeContract(t, store)
}

func TestSQLiteStore_KeysDoNotCollide(t *testing.T) {
	store, err := OpenSQLite(SQLiteConfig{Path: filepath.Join(t.TempDir(), "cache.db")})
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	keysDoNotCollide(t, store)
}

func TestSQLiteStore_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cache.db")
	key := Key{Query: "not:digital bolt", Colors: "R", Page: "1"}

	store, err := OpenSQLite(SQLiteConfig{Path: path})
	require.NoError(t, err)
	require.NoError(t, store.Put(context.Background(), key, testPage("bolt")))
	require.NoError(t, store.Close())

	reopened, err := OpenSQLite(SQLiteConfig{Path: path})
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()

	page, ok, err := reopened.Get(context.Background(), key)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "bolt", page.Data[0].ID)
}

func TestOpenSQLite_EmptyPath(t *testing.T) {
	_, err := OpenSQLite(SQLiteConfig{})
	assert.Error(t, err)
}
