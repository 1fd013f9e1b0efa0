package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
)

// MemoryStore is an in-memory implementation of shortener.Repository.
type MemoryStore struct {
	mu     sync.RWMutex
	byCode map[shortener.Code]*shortener.Link
	byID   map[shortener.LinkID]*shortener.Link
}

// NewMemoryStore creates a new in-memory link store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byCode: make(map[shortener.Code]*shortener.Link),
		byID:   make(map[shortener.LinkID]*shortener.Link),
	}
}

func (m *MemoryStore) TryCreate(_ context.Context, link *shortener.Link) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, taken := m.byCode[link.Code]; taken {
		return shortener.ErrConflict
	}

	stored := *link
	m.byCode[link.Code] = &stored
	m.byID[link.ID] = &stored

	return nil
}

func (m *MemoryStore) FindByCode(_ context.Context, code shortener.Code) (*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	link, ok := m.byCode[code]
	if !ok {
		return nil, shortener.ErrNotFound
	}

	found := *link

	return &found, nil
}

func (m *MemoryStore) IncrementClicks(_ context.Context, id shortener.LinkID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.byID[id]
	if !ok {
		return 0, shortener.ErrNotFound
	}

	link.ClickCount++

	return link.ClickCount, nil
}

func (m *MemoryStore) Delete(_ context.Context, id shortener.LinkID) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	link, ok := m.byID[id]
	if !ok {
		return shortener.ErrNotFound
	}

	delete(m.byID, id)
	delete(m.byCode, link.Code)

	return nil
}

func (m *MemoryStore) List(_ context.Context, filter shortener.ListFilter) ([]*shortener.Link, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	search := strings.ToLower(filter.Search)
	links := make([]*shortener.Link, 0, len(m.byID))

	for _, link := range m.byID {
		if search != "" &&
			!strings.Contains(strings.ToLower(link.OriginalURL), search) &&
			!strings.Contains(strings.ToLower(string(link.Code)), search) {
			continue
		}

		found := *link
		links = append(links, &found)
	}

	slices.SortFunc(links, func(a, b *shortener.Link) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})

	return links, nil
}

func (m *MemoryStore) Stats(_ context.Context) (shortener.Stats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stats := shortener.Stats{TotalLinks: int64(len(m.byID))}
	for _, link := range m.byID {
		stats.TotalClicks += link.ClickCount
	}

	return stats, nil
}

func (m *MemoryStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var purged int64

	for id, link := range m.byID {
		if shortener.IsExpired(link, now) {
			delete(m.byID, id)
			delete(m.byCode, link.Code)
			purged++
		}
	}

	return purged, nil
}

// Ping always succeeds; the store lives in process.
func (m *MemoryStore) Ping(_ context.Context) error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*MemoryStore)(nil)
