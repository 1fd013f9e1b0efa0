package store_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type repositoryUnderTest = shortener.Repository

var baseTime = time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

func newLink(code, url string) *shortener.Link {
	return newLinkAt(code, url, baseTime)
}

func newLinkAt(code, url string, createdAt time.Time) *shortener.Link {
	return &shortener.Link{
		ID:          uuid.New(),
		OriginalURL: url,
		Code:        shortener.Code(code),
		CreatedAt:   createdAt,
		ExpiresAt:   shortener.ExpiresAt(createdAt),
	}
}

func mustCreate(t *testing.T, s shortener.Repository, link *shortener.Link) {
	t.Helper()

	require.NoError(t, s.TryCreate(context.Background(), link))
}

// runRepositorySuite exercises the shortener.Repository contract against any backend.
func runRepositorySuite(t *testing.T, newStore func(t *testing.T) repositoryUnderTest) {
	t.Helper()

	ctx := context.Background()

	t.Run("creates and finds by code", func(t *testing.T) {
		s := newStore(t)
		link := newLink("abc1234", "https://example.com/a/b?c=1")
		mustCreate(t, s, link)

		got, err := s.FindByCode(ctx, "abc1234")

		require.NoError(t, err)
		assert.Equal(t, link.ID, got.ID)
		assert.Equal(t, link.OriginalURL, got.OriginalURL)
		assert.Equal(t, int64(0), got.ClickCount)
		assert.True(t, link.CreatedAt.Equal(got.CreatedAt))
		assert.True(t, link.ExpiresAt.Equal(got.ExpiresAt))
	})

	t.Run("rejects duplicate code without overwriting", func(t *testing.T) {
		s := newStore(t)
		mustCreate(t, s, newLink("dup1234", "https://first.example.com"))

		err := s.TryCreate(ctx, newLink("dup1234", "https://second.example.com"))

		require.ErrorIs(t, err, shortener.ErrConflict)

		got, err := s.FindByCode(ctx, "dup1234")
		require.NoError(t, err)
		assert.Equal(t, "https://first.example.com", got.OriginalURL)

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), stats.TotalLinks)
	})

	t.Run("concurrent creates of one code yield exactly one winner", func(t *testing.T) {
		s := newStore(t)

		const workers = 16

		var wg sync.WaitGroup

		errs := make([]error, workers)

		for i := range workers {
			wg.Add(1)

			go func(i int) {
				defer wg.Done()

				errs[i] = s.TryCreate(ctx, newLink("race123", "https://example.com/"+uuid.NewString()))
			}(i)
		}

		wg.Wait()

		created := 0

		for _, err := range errs {
			if err == nil {
				created++

				continue
			}

			assert.ErrorIs(t, err, shortener.ErrConflict)
		}

		assert.Equal(t, 1, created)
	})

	t.Run("find unknown code returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)

		got, err := s.FindByCode(ctx, "missing")

		assert.Nil(t, got)
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("increments atomically under concurrency", func(t *testing.T) {
		s := newStore(t)
		link := newLink("inc1234", "https://example.com")
		mustCreate(t, s, link)

		const hits = 50

		var wg sync.WaitGroup

		for range hits {
			wg.Add(1)

			go func() {
				defer wg.Done()

				_, err := s.IncrementClicks(ctx, link.ID)
				assert.NoError(t, err)
			}()
		}

		wg.Wait()

		got, err := s.FindByCode(ctx, "inc1234")
		require.NoError(t, err)
		assert.Equal(t, int64(hits), got.ClickCount)
	})

	t.Run("increment returns the new count", func(t *testing.T) {
		s := newStore(t)
		link := newLink("cnt1234", "https://example.com")
		mustCreate(t, s, link)

		first, err := s.IncrementClicks(ctx, link.ID)
		require.NoError(t, err)

		second, err := s.IncrementClicks(ctx, link.ID)
		require.NoError(t, err)

		assert.Equal(t, int64(1), first)
		assert.Equal(t, int64(2), second)
	})

	t.Run("increment unknown id returns ErrNotFound", func(t *testing.T) {
		s := newStore(t)

		_, err := s.IncrementClicks(ctx, uuid.New())

		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})

	t.Run("deletes by id", func(t *testing.T) {
		s := newStore(t)
		link := newLink("del1234", "https://example.com")
		mustCreate(t, s, link)

		require.NoError(t, s.Delete(ctx, link.ID))

		_, err := s.FindByCode(ctx, "del1234")
		assert.ErrorIs(t, err, shortener.ErrNotFound)

		assert.ErrorIs(t, s.Delete(ctx, link.ID), shortener.ErrNotFound)
	})

	t.Run("deleted code can be allocated again", func(t *testing.T) {
		s := newStore(t)
		link := newLink("reu1234", "https://example.com")
		mustCreate(t, s, link)
		require.NoError(t, s.Delete(ctx, link.ID))

		err := s.TryCreate(ctx, newLink("reu1234", "https://other.example.com"))

		assert.NoError(t, err)
	})

	t.Run("lists newest first and filters by search", func(t *testing.T) {
		s := newStore(t)
		mustCreate(t, s, newLinkAt("old1234", "https://golang.org/doc", baseTime))
		mustCreate(t, s, newLinkAt("mid1234", "https://example.com/Go", baseTime.Add(time.Minute)))
		mustCreate(t, s, newLinkAt("new1234", "https://example.com/rust", baseTime.Add(2*time.Minute)))

		all, err := s.List(ctx, shortener.ListFilter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, shortener.Code("new1234"), all[0].Code)
		assert.Equal(t, shortener.Code("mid1234"), all[1].Code)
		assert.Equal(t, shortener.Code("old1234"), all[2].Code)

		filtered, err := s.List(ctx, shortener.ListFilter{Search: "GO"})
		require.NoError(t, err)
		require.Len(t, filtered, 2)
		assert.Equal(t, shortener.Code("mid1234"), filtered[0].Code)
		assert.Equal(t, shortener.Code("old1234"), filtered[1].Code)

		byCode, err := s.List(ctx, shortener.ListFilter{Search: "new12"})
		require.NoError(t, err)
		require.Len(t, byCode, 1)
	})

	t.Run("search treats wildcards literally", func(t *testing.T) {
		s := newStore(t)
		mustCreate(t, s, newLink("pct1234", "https://example.com/100%25"))
		mustCreate(t, s, newLink("plain12", "https://example.com/plain"))

		got, err := s.List(ctx, shortener.ListFilter{Search: "%"})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, shortener.Code("pct1234"), got[0].Code)
	})

	t.Run("stats sum links and clicks", func(t *testing.T) {
		s := newStore(t)

		empty, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, shortener.Stats{}, empty)

		a := newLink("sta1234", "https://a.example.com")
		b := newLink("stb1234", "https://b.example.com")
		mustCreate(t, s, a)
		mustCreate(t, s, b)

		for range 3 {
			_, err := s.IncrementClicks(ctx, a.ID)
			require.NoError(t, err)
		}

		stats, err := s.Stats(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(2), stats.TotalLinks)
		assert.Equal(t, int64(3), stats.TotalClicks)
	})

	t.Run("purges expired links only", func(t *testing.T) {
		s := newStore(t)
		expired := newLinkAt("exp1234", "https://old.example.com", baseTime)
		boundary := newLinkAt("bnd1234", "https://edge.example.com", baseTime.Add(time.Hour))
		fresh := newLinkAt("frs1234", "https://new.example.com", baseTime.Add(2*time.Hour))
		mustCreate(t, s, expired)
		mustCreate(t, s, boundary)
		mustCreate(t, s, fresh)

		purged, err := s.PurgeExpired(ctx, boundary.ExpiresAt)

		require.NoError(t, err)
		assert.Equal(t, int64(2), purged)

		_, err = s.FindByCode(ctx, "frs1234")
		assert.NoError(t, err)

		_, err = s.FindByCode(ctx, "bnd1234")
		assert.ErrorIs(t, err, shortener.ErrNotFound)
	})
}
