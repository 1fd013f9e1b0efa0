package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

// MetadataAdmin marks operations that require an administrator token.
const MetadataAdmin = "admin"

// AdminSecurityScheme is the OpenAPI security scheme name for admin tokens.
const AdminSecurityScheme = "adminBearer"

// RegisterRoutes registers the public link routes.
func RegisterRoutes(api huma.API, h *LinkHandler) {
	huma.Register(api, huma.Operation{
		OperationID:   "create-short-url",
		Method:        http.MethodPost,
		Path:          "/shorten",
		Summary:       "Create short URL",
		Description:   "Allocates a fresh 7 character code for the URL. Links expire 30 days after creation.",
		Tags:          []string{"Links"},
		DefaultStatus: http.StatusCreated,
	}, h.CreateShortURL)

	huma.Register(api, huma.Operation{
		OperationID: "get-stats",
		Method:      http.MethodGet,
		Path:        "/stats",
		Summary:     "Link statistics",
		Tags:        []string{"Links"},
	}, h.Stats)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL and counts the click. Unknown and expired codes return 404.",
		Tags:        []string{"Links"},
	}, h.RedirectToURL)
}

// RegisterAdminRoutes registers the admin routes. Every operation carries
// MetadataAdmin so the admin auth middleware guards it.
func RegisterAdminRoutes(api huma.API, h *LinkHandler) {
	security := []map[string][]string{{AdminSecurityScheme: {}}}

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/admin/links",
		Summary:     "List links",
		Tags:        []string{"Admin"},
		Security:    security,
		Metadata:    map[string]any{MetadataAdmin: true},
	}, h.ListLinks)

	huma.Register(api, huma.Operation{
		OperationID:   "delete-link",
		Method:        http.MethodDelete,
		Path:          "/admin/links/{id}",
		Summary:       "Delete link",
		Tags:          []string{"Admin"},
		DefaultStatus: http.StatusNoContent,
		Security:      security,
		Metadata:      map[string]any{MetadataAdmin: true},
	}, h.DeleteLink)
}
