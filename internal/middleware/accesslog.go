package middleware

import (
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortlink/internal/handlers"
	"go.uber.org/zap"
)

// AccessLog logs one line per request once the handler has written its status.
// It must run after RequestMeta to pick up the request ID.
func AccessLog(logger *zap.Logger) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		start := time.Now()

		next(ctx)

		meta := handlers.RequestMetaFromContext(ctx.Context())
		path := ctx.URL().Path

		if op := ctx.Operation(); op != nil {
			path = op.Path
		}

		logger.Info("request",
			zap.String("method", ctx.Method()),
			zap.String("path", path),
			zap.Int("status", ctx.Status()),
			zap.Duration("duration", time.Since(start)),
			zap.String("requestId", meta.RequestID),
			zap.String("clientIp", meta.ClientIP),
		)
	}
}
