package container

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/shortener"
	"github.com/serroba/shortlink/internal/sweeper"
	"go.uber.org/zap"
)

// Options are read from flags and SERVICE_* environment variables.
type Options struct {
	Port             int    `default:"8888"    help:"Port to listen on"                                               short:"p"`
	BaseURL          string `default:""        help:"Public base URL for short links (default http://localhost:<port>)"`
	DatabaseURL      string `default:""        help:"postgres:// URL, SQLite file (file:, *.db) or libsql:// URL; empty keeps links in memory"`
	RedisAddr        string `default:""        help:"Redis address for the lookup cache and change feed; empty disables both" short:"r"`
	CacheTTL         string `default:"1h"      help:"Upper bound for cached lookups"`
	AdminTokenSecret string `default:""        help:"HS256 secret for admin bearer tokens; empty disables admin routes"`
	SweepSchedule    string `default:""        help:"Cron schedule for purging expired links, e.g. @hourly; empty disables"`
	LogFormat        string `default:"json"    help:"Log output format: json or console"`
}

// PublicBaseURL returns BaseURL or the localhost default.
func (o *Options) PublicBaseURL() string {
	if o.BaseURL != "" {
		return o.BaseURL
	}

	return fmt.Sprintf("http://localhost:%d", o.Port)
}

// RedisClient owns the shared Redis connection.
type RedisClient struct {
	*redis.Client
}

// Shutdown closes the connection.
func (c *RedisClient) Shutdown() error {
	return c.Close()
}

// LoggerPackage provides the root zap logger.
func LoggerPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*zap.Logger, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.LogFormat == "console" {
			return zap.NewDevelopment()
		}

		return zap.NewProduction()
	})
}

// RedisPackage provides the Redis client when an address is configured.
// Callers must check Options.RedisAddr before invoking it.
func RedisPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*RedisClient, error) {
		opts := do.MustInvoke[*Options](i)
		if opts.RedisAddr == "" {
			return nil, fmt.Errorf("redis is not configured")
		}

		client := redis.NewClient(&redis.Options{
			Addr: opts.RedisAddr,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()

			return nil, fmt.Errorf("connect redis at %s: %w", opts.RedisAddr, err)
		}

		return &RedisClient{Client: client}, nil
	})
}

// ResolverPackage provides the link resolver over the configured store.
func ResolverPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*shortener.Resolver, error) {
		st := do.MustInvoke[*Store](i)
		logger := do.MustInvoke[*zap.Logger](i)

		generator, err := shortener.NewCodeGenerator(shortener.CodeLength)
		if err != nil {
			return nil, err
		}

		return shortener.NewResolver(st.Repository, generator, logger.Named("resolver")), nil
	})
}

// SweeperPackage provides the expired-link sweeper. Callers must check
// Options.SweepSchedule before invoking it.
func SweeperPackage(i *do.Injector) {
	do.Provide(i, func(i *do.Injector) (*sweeper.Sweeper, error) {
		opts := do.MustInvoke[*Options](i)
		resolver := do.MustInvoke[*shortener.Resolver](i)
		publishers := do.MustInvoke[*Publishers](i)
		logger := do.MustInvoke[*zap.Logger](i)

		return sweeper.New(opts.SweepSchedule, resolver, publishers.LinksPurged, logger.Named("sweeper"))
	})
}
