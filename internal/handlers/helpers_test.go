package handlers_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var errMock = errors.New("mock error")

const (
	testURL     = "https://example.com/very/long/path"
	testBaseURL = "http://localhost:8888"
)

// recorder captures every published event.
type recorder struct {
	mu      sync.Mutex
	created []*events.LinkCreated
	deleted []*events.LinkDeleted
	err     error
}

func (r *recorder) publishers() *events.Publishers {
	return &events.Publishers{
		LinkCreated: func(_ context.Context, e *events.LinkCreated) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.created = append(r.created, e)

			return r.err
		},
		LinkDeleted: func(_ context.Context, e *events.LinkDeleted) error {
			r.mu.Lock()
			defer r.mu.Unlock()

			r.deleted = append(r.deleted, e)

			return r.err
		},
		LinksPurged: func(_ context.Context, _ *events.LinksPurged) error { return r.err },
	}
}

// mockService is a LinkService returning canned errors.
type mockService struct {
	shortenErr error
	resolveErr error
	listErr    error
	removeErr  error
	statsErr   error
}

func (m *mockService) Shorten(context.Context, string) (*shortener.Link, error) {
	return nil, m.shortenErr
}

func (m *mockService) Resolve(context.Context, string) (*shortener.Link, error) {
	return nil, m.resolveErr
}

func (m *mockService) List(context.Context, shortener.ListFilter) ([]*shortener.Link, error) {
	return nil, m.listErr
}

func (m *mockService) Remove(context.Context, shortener.LinkID) error {
	return m.removeErr
}

func (m *mockService) Stats(context.Context) (shortener.Stats, error) {
	return shortener.Stats{}, m.statsErr
}

func (m *mockService) Now() time.Time {
	return time.Now()
}

type fixture struct {
	store    *store.MemoryStore
	resolver *shortener.Resolver
	events   *recorder
	handler  *handlers.LinkHandler
	clock    *time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gen, err := shortener.NewCodeGenerator(shortener.CodeLength)
	require.NoError(t, err)

	clock := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	f := &fixture{store: store.NewMemoryStore(), events: &recorder{}, clock: &clock}
	f.resolver = shortener.NewResolver(f.store, gen, zap.NewNop(), shortener.WithClock(func() time.Time { return *f.clock }))
	f.handler = handlers.NewLinkHandler(f.resolver, testBaseURL+"/", f.events.publishers(), zap.NewNop())

	return f
}

func (f *fixture) shorten(t *testing.T, rawURL string) *handlers.CreateShortURLResponse {
	t.Helper()

	req := &handlers.CreateShortURLRequest{}
	req.Body.URL = rawURL

	resp, err := f.handler.CreateShortURL(context.Background(), req)
	require.NoError(t, err)

	return resp
}

func newMockHandler(svc *mockService) *handlers.LinkHandler {
	return handlers.NewLinkHandler(svc, testBaseURL, (&recorder{}).publishers(), zap.NewNop())
}
