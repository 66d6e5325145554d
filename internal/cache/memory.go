package cache

import (
	"container/list"
	"context"
	"sync"

	"github.com/ramonehamilton/cardsearch/internal/scryfall"
)

// MemoryStore keeps pages in process memory for the lifetime of the process.
//
// With maxEntries == 0 it never evicts. With maxEntries > 0 the least recently
// used entry is dropped once the bound is exceeded.
type MemoryStore struct {
	mu         sync.Mutex
	entries    map[Key]*list.Element
	order      *list.List // front = most recently used
	maxEntries int
}

type memoryEntry struct {
	key  Key
	page *scryfall.Page
}

// NewMemoryStore creates an in-memory store. maxEntries <= 0 means unbounded.
func NewMemoryStore(maxEntries int) *MemoryStore {
	if maxEntries < 0 {
		maxEntries = 0
	}
	return &MemoryStore{
		entries:    make(map[Key]*list.Element),
		order:      list.New(),
		maxEntries: maxEntries,
	}
}

// Get returns the page stored under key.
func (s *MemoryStore) Get(_ context.Context, key Key) (*scryfall.Page, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	elem, ok := s.entries[key]
	if !ok {
		return nil, false, nil
	}
	s.order.MoveToFront(elem)
	return elem.Value.(*memoryEntry).page, true, nil
}

// Put stores page under key, replacing any previous entry.
func (s *MemoryStore) Put(_ context.Context, key Key, page *scryfall.Page) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if elem, ok := s.entries[key]; ok {
		elem.Value.(*memoryEntry).page = page
		s.order.MoveToFront(elem)
		return nil
	}

	s.entries[key] = s.order.PushFront(&memoryEntry{key: key, page: page})

	if s.maxEntries > 0 {
		for s.order.Len() > s.maxEntries {
			oldest := s.order.Back()
			s.order.Remove(oldest)
			delete(s.entries, oldest.Value.(*memoryEntry).key)
		}
	}
	return nil
}

// Len returns the number of cached pages.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
