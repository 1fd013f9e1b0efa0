package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/google/uuid"
	"github.com/serroba/shortlink/internal/events"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// LinkService is the link lifecycle the handlers drive.
type LinkService interface {
	Shorten(ctx context.Context, rawURL string) (*shortener.Link, error)
	Resolve(ctx context.Context, code string) (*shortener.Link, error)
	List(ctx context.Context, filter shortener.ListFilter) ([]*shortener.Link, error)
	Remove(ctx context.Context, id shortener.LinkID) error
	Stats(ctx context.Context) (shortener.Stats, error)
	Now() time.Time
}

// LinkHandler serves the public and admin link operations.
type LinkHandler struct {
	links   LinkService
	baseURL string
	publish *events.Publishers
	logger  *zap.Logger
}

// NewLinkHandler creates a new link handler. baseURL prefixes every short URL.
func NewLinkHandler(
	links LinkService,
	baseURL string,
	publish *events.Publishers,
	logger *zap.Logger,
) *LinkHandler {
	return &LinkHandler{
		links:   links,
		baseURL: strings.TrimRight(baseURL, "/"),
		publish: publish,
		logger:  logger,
	}
}

func (h *LinkHandler) CreateShortURL(ctx context.Context, req *CreateShortURLRequest) (*CreateShortURLResponse, error) {
	link, err := h.links.Shorten(ctx, req.Body.URL)
	if err != nil {
		switch {
		case errors.Is(err, shortener.ErrInvalidURL):
			return nil, huma.Error400BadRequest("url must be an absolute http or https URL")
		case errors.Is(err, shortener.ErrAllocationExhausted):
			return nil, huma.Error503ServiceUnavailable("could not allocate a short code, try again")
		default:
			h.logger.Error("failed to shorten url", zap.Error(err))

			return nil, huma.Error500InternalServerError("failed to save url")
		}
	}

	meta := RequestMetaFromContext(ctx)
	event := &events.LinkCreated{
		ID:          link.ID.String(),
		Code:        string(link.Code),
		OriginalURL: link.OriginalURL,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		ClientIP:    meta.ClientIP,
		UserAgent:   meta.UserAgent,
	}

	if err := h.publish.LinkCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish link created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}

	resp := &CreateShortURLResponse{}
	resp.Body = h.linkBody(link, false)
	resp.Location = resp.Body.ShortURL

	return resp, nil
}

func (h *LinkHandler) RedirectToURL(ctx context.Context, req *RedirectRequest) (*RedirectResponse, error) {
	link, err := h.links.Resolve(ctx, req.Code)
	if err != nil {
		if errors.Is(err, shortener.ErrNotFound) || errors.Is(err, shortener.ErrExpired) {
			return nil, huma.Error404NotFound("link unavailable")
		}

		h.logger.Error("failed to resolve code", zap.String("code", req.Code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to get url")
	}

	return &RedirectResponse{
		Status:       http.StatusFound,
		Location:     link.OriginalURL,
		CacheControl: "no-store",
	}, nil
}

func (h *LinkHandler) Stats(ctx context.Context, _ *struct{}) (*StatsResponse, error) {
	stats, err := h.links.Stats(ctx)
	if err != nil {
		h.logger.Error("failed to compute stats", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to compute stats")
	}

	resp := &StatsResponse{}
	resp.Body.TotalLinks = stats.TotalLinks
	resp.Body.TotalClicks = stats.TotalClicks
	resp.Body.AverageClicks = stats.AverageClicks()

	return resp, nil
}

func (h *LinkHandler) ListLinks(ctx context.Context, req *ListLinksRequest) (*ListLinksResponse, error) {
	links, err := h.links.List(ctx, shortener.ListFilter{Search: strings.TrimSpace(req.Search)})
	if err != nil {
		h.logger.Error("failed to list links", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list links")
	}

	now := h.links.Now()

	resp := &ListLinksResponse{}
	resp.Body.Links = make([]LinkBody, 0, len(links))

	for _, link := range links {
		resp.Body.Links = append(resp.Body.Links, h.linkBody(link, shortener.IsExpired(link, now)))
	}

	resp.Body.Total = len(resp.Body.Links)

	return resp, nil
}

func (h *LinkHandler) DeleteLink(ctx context.Context, req *DeleteLinkRequest) (*struct{}, error) {
	id, err := uuid.Parse(req.ID)
	if err != nil {
		return nil, huma.Error404NotFound("link not found")
	}

	if err := h.links.Remove(ctx, id); err != nil {
		if errors.Is(err, shortener.ErrNotFound) {
			return nil, huma.Error404NotFound("link not found")
		}

		h.logger.Error("failed to delete link", zap.String("id", req.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to delete link")
	}

	event := &events.LinkDeleted{
		ID:        id.String(),
		DeletedBy: ActorFromContext(ctx),
		DeletedAt: h.links.Now().UTC(),
	}

	if err := h.publish.LinkDeleted(ctx, event); err != nil {
		h.logger.Error("failed to publish link deleted event",
			zap.String("id", event.ID),
			zap.Error(err),
		)
	}

	return nil, nil //nolint:nilnil // 204 has no body
}

func (h *LinkHandler) linkBody(link *shortener.Link, expired bool) LinkBody {
	return LinkBody{
		ID:          link.ID.String(),
		Code:        string(link.Code),
		ShortURL:    h.baseURL + "/" + string(link.Code),
		OriginalURL: link.OriginalURL,
		ClickCount:  link.ClickCount,
		CreatedAt:   link.CreatedAt,
		ExpiresAt:   link.ExpiresAt,
		Expired:     expired,
	}
}
