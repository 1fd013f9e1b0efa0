package health

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/redis/go-redis/v9"
)

const checkTimeout = 2 * time.Second

// Checker defines the interface for checking service health.
type Checker interface {
	Ping(ctx context.Context) error
}

// CheckerFunc adapts a function to Checker.
type CheckerFunc func(ctx context.Context) error

func (f CheckerFunc) Ping(ctx context.Context) error {
	return f(ctx)
}

// RedisChecker adapts redis.Client to Checker interface.
type RedisChecker struct {
	client *redis.Client
}

// NewRedisChecker creates a new Redis health checker.
func NewRedisChecker(client *redis.Client) *RedisChecker {
	return &RedisChecker{client: client}
}

// Ping checks Redis connectivity.
func (r *RedisChecker) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Handler reports the health of the link store and its optional dependencies.
// A failing store makes the service unavailable; any other failure only
// degrades it.
type Handler struct {
	store    Checker
	optional map[string]Checker
}

// NewHandler creates a new health handler.
func NewHandler(store Checker) *Handler {
	return &Handler{store: store, optional: map[string]Checker{}}
}

// With registers an optional dependency under name.
func (h *Handler) With(name string, checker Checker) *Handler {
	h.optional[name] = checker

	return h
}

// Response is the response for health check endpoint.
type Response struct {
	Status int
	Body   struct {
		Status       string            `enum:"ok,degraded,unavailable" json:"status"`
		Dependencies map[string]string `json:"dependencies"`
	}
}

// Check performs a health check of the application and its dependencies.
func (h *Handler) Check(ctx context.Context, _ *struct{}) (*Response, error) {
	resp := &Response{Status: http.StatusOK}
	resp.Body.Status = "ok"
	resp.Body.Dependencies = map[string]string{"store": ping(ctx, h.store)}

	for name, checker := range h.optional {
		state := ping(ctx, checker)
		resp.Body.Dependencies[name] = state

		if state != "healthy" {
			resp.Body.Status = "degraded"
		}
	}

	if resp.Body.Dependencies["store"] != "healthy" {
		resp.Status = http.StatusServiceUnavailable
		resp.Body.Status = "unavailable"
	}

	return resp, nil
}

func ping(ctx context.Context, checker Checker) string {
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()

	if err := checker.Ping(ctx); err != nil {
		return "unhealthy"
	}

	return "healthy"
}

// RegisterRoutes registers health check routes.
func RegisterRoutes(api huma.API, h *Handler) {
	huma.Register(api, huma.Operation{
		OperationID: "health",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Tags:        []string{"Health"},
	}, h.Check)
}
