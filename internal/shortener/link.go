package shortener

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// LinkID uniquely identifies a stored link.
type LinkID = uuid.UUID

// Code represents a short URL code.
type Code string

// Link represents a shortened URL record.
type Link struct {
	ID          LinkID
	OriginalURL string
	Code        Code
	ClickCount  int64
	CreatedAt   time.Time
	ExpiresAt   time.Time
}

// ListFilter narrows the admin listing.
// Search matches the original URL or the code, case-insensitively.
type ListFilter struct {
	Search string
}

// Stats aggregates all stored links.
type Stats struct {
	TotalLinks  int64
	TotalClicks int64
}

// AverageClicks returns the rounded mean click count per link.
func (s Stats) AverageClicks() int64 {
	if s.TotalLinks == 0 {
		return 0
	}

	return int64(math.Round(float64(s.TotalClicks) / float64(s.TotalLinks)))
}
