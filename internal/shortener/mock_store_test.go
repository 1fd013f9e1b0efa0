package shortener_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
)

var errMock = errors.New("mock error")

const testURL = "https://example.com/a/b?c=1"

// mockStore wraps a MemoryStore and lets tests force failures.
type mockStore struct {
	*store.MemoryStore

	mu             sync.Mutex
	conflictsLeft  int
	tryCreateErr   error
	findErr        error
	incrementErr   error
	attemptedCodes []shortener.Code
	incrementCalls int
}

func newMockStore() *mockStore {
	return &mockStore{MemoryStore: store.NewMemoryStore()}
}

func (m *mockStore) TryCreate(ctx context.Context, link *shortener.Link) error {
	m.mu.Lock()
	m.attemptedCodes = append(m.attemptedCodes, link.Code)

	if m.tryCreateErr != nil {
		m.mu.Unlock()

		return m.tryCreateErr
	}

	if m.conflictsLeft > 0 {
		m.conflictsLeft--
		m.mu.Unlock()

		return shortener.ErrConflict
	}
	m.mu.Unlock()

	return m.MemoryStore.TryCreate(ctx, link)
}

func (m *mockStore) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}

	return m.MemoryStore.FindByCode(ctx, code)
}

func (m *mockStore) IncrementClicks(ctx context.Context, id shortener.LinkID) (int64, error) {
	m.mu.Lock()
	m.incrementCalls++
	m.mu.Unlock()

	if m.incrementErr != nil {
		return 0, m.incrementErr
	}

	return m.MemoryStore.IncrementClicks(ctx, id)
}

func (m *mockStore) attempts() []shortener.Code {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]shortener.Code(nil), m.attemptedCodes...)
}

// sequenceGenerator returns codes in order, repeating the last one.
func sequenceGenerator(codes ...string) shortener.CodeGenerator {
	var (
		mu sync.Mutex
		i  int
	)

	return func() string {
		mu.Lock()
		defer mu.Unlock()

		code := codes[min(i, len(codes)-1)]
		i++

		return code
	}
}

// fixedClock returns a clock frozen at t.
func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
