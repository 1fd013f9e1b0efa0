package store

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/serroba/shortlink/internal/shortener"
)

// raiseClicks sets click_count only when the cached hash exists and the new
// value is higher, so out-of-order updates never move the counter backwards.
var raiseClicks = redis.NewScript(`
if redis.call("EXISTS", KEYS[1]) == 0 then
	return 0
end
local current = tonumber(redis.call("HGET", KEYS[1], "click_count") or "0")
if tonumber(ARGV[1]) > current then
	redis.call("HSET", KEYS[1], "click_count", ARGV[1])
end
return 1
`)

// RedisCacheRepository wraps a Repository with Redis caching for code lookups.
// Listing, stats and deletes always go to the underlying store.
type RedisCacheRepository struct {
	store  shortener.Repository
	client *redis.Client
	prefix string
	ttl    time.Duration
	now    func() time.Time
}

// NewRedisCacheRepository creates a new Redis-cached repository decorator.
func NewRedisCacheRepository(
	store shortener.Repository, client *redis.Client, ttl time.Duration,
) *RedisCacheRepository {
	return &RedisCacheRepository{
		store:  store,
		client: client,
		prefix: "link:",
		ttl:    ttl,
		now:    time.Now,
	}
}

// TryCreate stores a link in the underlying store and updates the cache.
func (r *RedisCacheRepository) TryCreate(ctx context.Context, link *shortener.Link) error {
	if err := r.store.TryCreate(ctx, link); err != nil {
		return err
	}

	// Write-through: update cache after successful create
	r.cacheLink(ctx, link)

	return nil
}

// FindByCode retrieves a link by its code, checking cache first.
func (r *RedisCacheRepository) FindByCode(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	if link, err := r.getFromCache(ctx, code); err == nil {
		return link, nil
	}

	link, err := r.store.FindByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cacheLink(ctx, link)

	return link, nil
}

// IncrementClicks increments in the underlying store, then raises the cached
// counter. A link missing from the store is evicted, which drops entries a
// concurrent lookup cached after the link was deleted.
func (r *RedisCacheRepository) IncrementClicks(ctx context.Context, id shortener.LinkID) (int64, error) {
	count, err := r.store.IncrementClicks(ctx, id)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			r.evict(ctx, id)
		}

		return 0, err
	}

	code, err := r.client.Get(ctx, r.idKey(id)).Result()
	if err == nil {
		_ = raiseClicks.Run(ctx, r.client, []string{r.prefix + code}, count).Err()
	}

	return count, nil
}

// Delete removes the link from the underlying store and evicts it.
func (r *RedisCacheRepository) Delete(ctx context.Context, id shortener.LinkID) error {
	if err := r.store.Delete(ctx, id); err != nil {
		return err
	}

	r.evict(ctx, id)

	return nil
}

func (r *RedisCacheRepository) List(ctx context.Context, filter shortener.ListFilter) ([]*shortener.Link, error) {
	return r.store.List(ctx, filter)
}

func (r *RedisCacheRepository) Stats(ctx context.Context) (shortener.Stats, error) {
	return r.store.Stats(ctx)
}

// PurgeExpired delegates to the store. Cached entries expire on their own
// because their TTL never outlives the link.
func (r *RedisCacheRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.store.PurgeExpired(ctx, now)
}

func (r *RedisCacheRepository) getFromCache(ctx context.Context, code shortener.Code) (*shortener.Link, error) {
	result, err := r.client.HGetAll(ctx, r.prefix+string(code)).Result()
	if err != nil {
		return nil, err
	}

	if len(result) == 0 {
		return nil, shortener.ErrNotFound
	}

	id, err := uuid.Parse(result["id"])
	if err != nil {
		return nil, err
	}

	clicks, _ := strconv.ParseInt(result["click_count"], 10, 64)

	createdAt, err := parseMicros(result["created_at"])
	if err != nil {
		return nil, err
	}

	expiresAt, err := parseMicros(result["expires_at"])
	if err != nil {
		return nil, err
	}

	return &shortener.Link{
		ID:          id,
		OriginalURL: result["original_url"],
		Code:        shortener.Code(result["code"]),
		ClickCount:  clicks,
		CreatedAt:   createdAt,
		ExpiresAt:   expiresAt,
	}, nil
}

func (r *RedisCacheRepository) cacheLink(ctx context.Context, link *shortener.Link) {
	ttl := r.ttl
	if remaining := link.ExpiresAt.Sub(r.now()); remaining < ttl {
		ttl = remaining
	}

	if ttl <= 0 {
		return
	}

	pipe := r.client.Pipeline()
	key := r.prefix + string(link.Code)

	pipe.HSet(ctx, key, map[string]interface{}{
		"id":           link.ID.String(),
		"code":         string(link.Code),
		"original_url": link.OriginalURL,
		"click_count":  link.ClickCount,
		"created_at":   link.CreatedAt.UnixMicro(),
		"expires_at":   link.ExpiresAt.UnixMicro(),
	})
	pipe.Expire(ctx, key, ttl)
	pipe.Set(ctx, r.idKey(link.ID), string(link.Code), ttl)

	_, _ = pipe.Exec(ctx)
}

func (r *RedisCacheRepository) evict(ctx context.Context, id shortener.LinkID) {
	code, err := r.client.Get(ctx, r.idKey(id)).Result()
	if err != nil {
		return
	}

	_, _ = r.client.Del(ctx, r.prefix+code, r.idKey(id)).Result()
}

func (r *RedisCacheRepository) idKey(id shortener.LinkID) string {
	return r.prefix + "id:" + id.String()
}

func parseMicros(s string) (time.Time, error) {
	micros, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return time.Time{}, err
	}

	return time.UnixMicro(micros).UTC(), nil
}

// Shutdown is a no-op for RedisCacheRepository (client managed externally).
func (r *RedisCacheRepository) Shutdown() error {
	return nil
}

// Compile-time check.
var _ shortener.Repository = (*RedisCacheRepository)(nil)
