package shortener

import (
	"context"
	"time"
)

// Repository defines the storage operations for links.
//
// Implementations must enforce short code uniqueness themselves and must
// increment click counts atomically; callers never read-modify-write.
type Repository interface {
	// TryCreate persists the link. It returns ErrConflict without writing
	// anything when the code is already taken.
	TryCreate(ctx context.Context, link *Link) error
	FindByCode(ctx context.Context, code Code) (*Link, error)
	// IncrementClicks adds exactly one to the click count and returns the new value.
	IncrementClicks(ctx context.Context, id LinkID) (int64, error)
	Delete(ctx context.Context, id LinkID) error
	// List returns links newest first.
	List(ctx context.Context, filter ListFilter) ([]*Link, error)
	Stats(ctx context.Context) (Stats, error)
	// PurgeExpired hard-deletes links whose expiry is at or before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
