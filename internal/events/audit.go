package events

import (
	"context"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/serroba/shortlink/internal/messaging"
	"go.uber.org/zap"
)

// AuditLog writes every link event to a dedicated logger.
type AuditLog struct {
	logger *zap.Logger
}

// NewAuditLog creates an audit log writing to logger.
func NewAuditLog(logger *zap.Logger) *AuditLog {
	return &AuditLog{logger: logger.Named("audit")}
}

func (a *AuditLog) LinkCreated(_ context.Context, event *LinkCreated) error {
	a.logger.Info("link created",
		zap.String("id", event.ID),
		zap.String("code", event.Code),
		zap.String("originalUrl", event.OriginalURL),
		zap.Time("createdAt", event.CreatedAt),
		zap.Time("expiresAt", event.ExpiresAt),
		zap.String("clientIp", event.ClientIP),
		zap.String("userAgent", event.UserAgent),
	)

	return nil
}

func (a *AuditLog) LinkDeleted(_ context.Context, event *LinkDeleted) error {
	a.logger.Info("link deleted",
		zap.String("id", event.ID),
		zap.String("deletedBy", event.DeletedBy),
		zap.Time("deletedAt", event.DeletedAt),
	)

	return nil
}

func (a *AuditLog) LinksPurged(_ context.Context, event *LinksPurged) error {
	a.logger.Info("expired links purged",
		zap.Int64("count", event.Count),
		zap.Time("before", event.Before),
	)

	return nil
}

// Consumers returns one consumer per link topic, all feeding the audit log.
func (a *AuditLog) Consumers(subscriber message.Subscriber, logger *zap.Logger) []messaging.Runnable {
	return []messaging.Runnable{
		messaging.NewConsumer(subscriber, TopicLinkCreated, a.LinkCreated, logger),
		messaging.NewConsumer(subscriber, TopicLinkDeleted, a.LinkDeleted, logger),
		messaging.NewConsumer(subscriber, TopicLinksPurged, a.LinksPurged, logger),
	}
}
