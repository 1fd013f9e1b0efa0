package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/handlers"
	"github.com/serroba/shortlink/internal/health"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/shortener"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the huma API with every route registered.
func HTTPPackage(i *do.Injector) {
	do.Provide(i, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(i, func(i *do.Injector) (huma.API, error) {
		opts := do.MustInvoke[*Options](i)
		router := do.MustInvoke[*chi.Mux](i)
		logger := do.MustInvoke[*zap.Logger](i)
		resolver := do.MustInvoke[*shortener.Resolver](i)
		publishers := do.MustInvoke[*Publishers](i)
		st := do.MustInvoke[*Store](i)

		config := huma.DefaultConfig("Shortlink", "1.0.0")
		adminEnabled := opts.AdminTokenSecret != ""

		if adminEnabled {
			config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
				handlers.AdminSecurityScheme: {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
			}
		}

		api := humachi.New(router, config)
		api.UseMiddleware(middleware.RequestMeta(api))
		api.UseMiddleware(middleware.AccessLog(logger.Named("http")))

		linkHandler := handlers.NewLinkHandler(resolver, opts.PublicBaseURL(), publishers, logger.Named("handlers"))

		healthHandler := health.NewHandler(st.Checker)
		if opts.RedisAddr != "" {
			healthHandler.With("redis", health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client))
		}

		health.RegisterRoutes(api, healthHandler)
		handlers.RegisterRoutes(api, linkHandler)

		if adminEnabled {
			// Middlewares bind at registration, so only the admin routes carry this one.
			api.UseMiddleware(middleware.AdminAuth(api, []byte(opts.AdminTokenSecret), logger.Named("auth")))
			handlers.RegisterAdminRoutes(api, linkHandler)
		} else {
			logger.Info("admin routes disabled, no admin token secret configured")
		}

		return api, nil
	})
}
