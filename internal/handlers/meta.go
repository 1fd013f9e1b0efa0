package handlers

import "context"

type (
	requestMetaKey struct{}
	actorKey       struct{}
)

// RequestMeta holds HTTP request metadata attached to emitted events.
type RequestMeta struct {
	RequestID string
	ClientIP  string
	UserAgent string
	Referrer  string
}

// ContextWithRequestMeta adds request metadata to context.
func ContextWithRequestMeta(ctx context.Context, meta RequestMeta) context.Context {
	return context.WithValue(ctx, requestMetaKey{}, meta)
}

// RequestMetaFromContext extracts request metadata from context.
func RequestMetaFromContext(ctx context.Context) RequestMeta {
	if v, ok := ctx.Value(requestMetaKey{}).(RequestMeta); ok {
		return v
	}

	return RequestMeta{}
}

// ContextWithActor records the authenticated administrator.
func ContextWithActor(ctx context.Context, subject string) context.Context {
	return context.WithValue(ctx, actorKey{}, subject)
}

// ActorFromContext returns the authenticated administrator, if any.
func ActorFromContext(ctx context.Context) string {
	v, _ := ctx.Value(actorKey{}).(string)

	return v
}
