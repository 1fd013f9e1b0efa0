package events

import "time"

const (
	TopicLinkCreated = "links.created"
	TopicLinkDeleted = "links.deleted"
	TopicLinksPurged = "links.purged"
)

// LinkCreated is emitted after a link has been stored.
type LinkCreated struct {
	ID          string    `json:"id"`
	Code        string    `json:"code"`
	OriginalURL string    `json:"originalUrl"`
	CreatedAt   time.Time `json:"createdAt"`
	ExpiresAt   time.Time `json:"expiresAt"`
	ClientIP    string    `json:"clientIp,omitempty"`
	UserAgent   string    `json:"userAgent,omitempty"`
}

// LinkDeleted is emitted when an administrator removes a link.
type LinkDeleted struct {
	ID        string    `json:"id"`
	DeletedBy string    `json:"deletedBy,omitempty"`
	DeletedAt time.Time `json:"deletedAt"`
}

// LinksPurged is emitted when the sweeper removes expired links.
type LinksPurged struct {
	Count    int64     `json:"count"`
	Before   time.Time `json:"before"`
	PurgedAt time.Time `json:"purgedAt"`
}
