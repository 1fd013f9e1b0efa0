package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/samber/do"
	"github.com/serroba/shortlink/internal/container"
	"github.com/serroba/shortlink/internal/messaging"
	"github.com/serroba/shortlink/internal/middleware"
	"github.com/serroba/shortlink/internal/sweeper"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func registerPackages(injector *do.Injector, options *container.Options) {
	do.ProvideValue(injector, options)
	container.LoggerPackage(injector)
	container.RedisPackage(injector)
	container.StorePackage(injector)
	container.ResolverPackage(injector)
	container.PublisherGroupPackage(injector)
	container.ConsumerGroupPackage(injector)
	container.SweeperPackage(injector)
	container.HTTPPackage(injector)
}

func main() {
	// A missing .env is fine; flags and SERVICE_* variables still apply.
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		injector := do.New()
		registerPackages(injector, options)

		var (
			server *http.Server
			cancel context.CancelFunc = func() {}
		)

		hooks.OnStart(func() {
			logger := do.MustInvoke[*zap.Logger](injector)
			router := do.MustInvoke[*chi.Mux](injector)

			// Invoke API to trigger route registration
			_ = do.MustInvoke[huma.API](injector)

			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())

			// Without Redis the change feed is in-process, so the audit log runs here.
			if options.RedisAddr == "" {
				group := do.MustInvoke[*messaging.ConsumerGroup](injector)
				if err := group.Start(ctx); err != nil {
					logger.Fatal("failed to start audit consumers", zap.Error(err))
				}
			}

			if options.SweepSchedule != "" {
				sw := do.MustInvoke[*sweeper.Sweeper](injector)
				if err := sw.Start(ctx); err != nil {
					logger.Fatal("failed to start sweeper", zap.Error(err))
				}
			}

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("baseUrl", options.PublicBaseURL()),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger := do.MustInvoke[*zap.Logger](injector)
			logger.Info("shutting down")

			ctx, stop := context.WithTimeout(context.Background(), 30*time.Second)
			defer stop()

			if server != nil {
				if err := server.Shutdown(ctx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			cancel()

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
			_ = logger.Sync()
		})
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "admin-token [subject]",
		Short: "Print a signed admin bearer token",
		Args:  cobra.ExactArgs(1),
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, options *container.Options) {
			if options.AdminTokenSecret == "" {
				cmd.PrintErrln("admin-token-secret is not set")

				return
			}

			token, err := middleware.NewAdminToken([]byte(options.AdminTokenSecret), args[0], 24*time.Hour)
			if err != nil {
				cmd.PrintErrln(err)

				return
			}

			cmd.Println(token)
		}),
	})

	cli.Root().AddCommand(&cobra.Command{
		Use:   "openapi",
		Short: "Print the OpenAPI spec",
		Run: humacli.WithOptions(func(cmd *cobra.Command, _ []string, options *container.Options) {
			injector := do.New()
			registerPackages(injector, options)

			api := do.MustInvoke[huma.API](injector)

			b, err := json.MarshalIndent(api.OpenAPI(), "", "  ")
			if err != nil {
				cmd.PrintErrln(err)

				return
			}

			cmd.Println(string(b))

			_ = injector.Shutdown()
		}),
	})

	cli.Run()
}
