package shortener

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// MaxAttempts bounds how many candidate codes Shorten tries.
	MaxAttempts = 5

	incrementTimeout = 2 * time.Second
)

// Resolver creates links and resolves codes back to their targets.
type Resolver struct {
	store        Repository
	generateCode CodeGenerator
	now          func() time.Time
	logger       *zap.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithClock replaces time.Now as the resolver's time source.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver creates a new resolver over store.
func NewResolver(store Repository, generator CodeGenerator, logger *zap.Logger, opts ...Option) *Resolver {
	r := &Resolver{
		store:        store,
		generateCode: generator,
		now:          time.Now,
		logger:       logger,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// Shorten allocates a fresh code for rawURL.
func (r *Resolver) Shorten(ctx context.Context, rawURL string) (*Link, error) {
	originalURL, err := ValidateURL(rawURL)
	if err != nil {
		return nil, err
	}

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// Postgres keeps microseconds; truncating keeps the returned record
		// identical to the stored one.
		createdAt := r.now().UTC().Truncate(time.Microsecond)

		link := &Link{
			ID:          uuid.New(),
			OriginalURL: originalURL,
			Code:        Code(r.generateCode()),
			CreatedAt:   createdAt,
			ExpiresAt:   ExpiresAt(createdAt),
		}

		err := r.store.TryCreate(ctx, link)
		if err == nil {
			return link, nil
		}

		if !errors.Is(err, ErrConflict) {
			return nil, fmt.Errorf("create link: %w", err)
		}

		r.logger.Debug("short code collision",
			zap.String("code", string(link.Code)),
			zap.Int("attempt", attempt),
		)
	}

	r.logger.Error("short code allocation exhausted",
		zap.Int("attempts", MaxAttempts),
		zap.String("originalUrl", originalURL),
	)

	return nil, ErrAllocationExhausted
}

// Resolve looks up code and records one access. It returns ErrNotFound for
// unknown codes and ErrExpired for links past their retention window.
func (r *Resolver) Resolve(ctx context.Context, code string) (*Link, error) {
	if !ValidCode(code) {
		r.logger.Info("resolve: link not found", zap.String("code", code), zap.String("reason", "malformed"))

		return nil, ErrNotFound
	}

	link, err := r.store.FindByCode(ctx, Code(code))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			r.logger.Info("resolve: link not found", zap.String("code", code))

			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("find link: %w", err)
	}

	if IsExpired(link, r.now()) {
		r.logger.Info("resolve: link expired",
			zap.String("code", code),
			zap.Time("expiresAt", link.ExpiresAt),
		)

		return nil, ErrExpired
	}

	if err := r.recordClick(ctx, link); err != nil {
		return nil, err
	}

	return link, nil
}

// recordClick increments the counter on a best-effort basis. A client that
// disconnects mid-redirect still gets counted. The only error it returns is
// ErrNotFound, for a link deleted after it was looked up.
func (r *Resolver) recordClick(ctx context.Context, link *Link) error {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), incrementTimeout)
	defer cancel()

	count, err := r.store.IncrementClicks(ctx, link.ID)
	if errors.Is(err, ErrNotFound) {
		r.logger.Info("resolve: link not found",
			zap.String("code", string(link.Code)),
			zap.String("reason", "deleted"),
		)

		return ErrNotFound
	}

	if err != nil {
		r.logger.Warn("failed to record click",
			zap.String("code", string(link.Code)),
			zap.String("id", link.ID.String()),
			zap.Error(err),
		)

		return nil
	}

	link.ClickCount = count

	return nil
}

// List returns stored links newest first.
func (r *Resolver) List(ctx context.Context, filter ListFilter) ([]*Link, error) {
	return r.store.List(ctx, filter)
}

// Remove hard-deletes a link.
func (r *Resolver) Remove(ctx context.Context, id LinkID) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}

	r.logger.Info("link removed", zap.String("id", id.String()))

	return nil
}

// Stats returns totals over all stored links.
func (r *Resolver) Stats(ctx context.Context) (Stats, error) {
	return r.store.Stats(ctx)
}

// PurgeExpired deletes every link expired at the current time. It returns the
// number of links removed and the cutoff it deleted against.
func (r *Resolver) PurgeExpired(ctx context.Context) (int64, time.Time, error) {
	cutoff := r.now().UTC()

	count, err := r.store.PurgeExpired(ctx, cutoff)
	if err != nil {
		return 0, cutoff, err
	}

	return count, cutoff, nil
}

// Now returns the resolver's current time.
func (r *Resolver) Now() time.Time {
	return r.now()
}
