package container

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/store"
	"go.uber.org/zap"
)

// Store is the configured link repository plus what it needs for health
// checks and shutdown.
type Store struct {
	Repository shortener.Repository
	Checker    health.Checker
	Backend    string
	close      func() error
}

// Shutdown releases the backing database.
func (s *Store) Shutdown() error {
	if s.close == nil {
		return nil
	}

	return s.close()
}

// StorePackage selects the backend from Options.DatabaseURL and wraps it in
// the Redis cache when Redis is configured.
func StorePackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		st, err := openStore(opts.DatabaseURL, logger)
		if err != nil {
			return nil, err
		}

		if opts.RedisAddr != "" {
			ttl, err := time.ParseDuration(opts.CacheTTL)
			if err != nil {
				_ = st.Shutdown()

				return nil, fmt.Errorf("invalid cache ttl %q: %w", opts.CacheTTL, err)
			}

			client := do.MustInvoke[*RedisClient](i)
			st.Repository = store.NewRedisCacheRepository(st.Repository, client.Client, ttl)
		}

		logger.Info("link store ready",
			zap.String("backend", st.Backend),
			zap.Bool("redisCache", opts.RedisAddr != ""),
		)

		return st, nil
	})
}

func openStore(dsn string, logger *zap.Logger) (*Store, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch {
	case dsn == "":
		memory := store.NewMemoryStore()

		return &Store{Repository: memory, Checker: memory, Backend: "memory"}, nil

	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		pool, err := pgxpool.New(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}

		if err := pool.Ping(ctx); err != nil {
			pool.Close()

			return nil, fmt.Errorf("connect postgres: %w", err)
		}

		if err := store.Migrate(pool, logger); err != nil {
			pool.Close()

			return nil, err
		}

		pg := store.NewPostgresStore(pool)

		return &Store{
			Repository: pg,
			Checker:    pg,
			Backend:    "postgres",
			close: func() error {
				pool.Close()

				return nil
			},
		}, nil

	case store.IsSQLDSN(dsn):
		sqlStore, err := store.OpenSQLStore(ctx, dsn)
		if err != nil {
			return nil, fmt.Errorf("open sql store: %w", err)
		}

		return &Store{Repository: sqlStore, Checker: sqlStore, Backend: store.SQLDriver(dsn), close: sqlStore.Shutdown}, nil

	default:
		return nil, fmt.Errorf("unsupported database url %q", dsn)
	}
}
