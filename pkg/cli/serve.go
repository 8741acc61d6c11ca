package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/agentic-store/concierge/pkg/cli/config"
	httpctrl "github.com/agentic-store/concierge/pkg/controller/http"
	"github.com/agentic-store/concierge/pkg/service/embedding"
	"github.com/agentic-store/concierge/pkg/service/index"
	"github.com/agentic-store/concierge/pkg/service/intent"
	"github.com/agentic-store/concierge/pkg/service/retrieval"
	"github.com/agentic-store/concierge/pkg/usecase"
	"github.com/agentic-store/concierge/pkg/utils/async"
	"github.com/agentic-store/concierge/pkg/utils/logging"
)

const shutdownGrace = 30 * time.Second

func cmdServe() *cli.Command {
	var addr string
	var baseURL string
	var adminUser string
	var repoCfg config.Repository
	var geminiCfg config.Gemini
	var catalogCfg config.Catalog
	var tuningCfg config.Tuning

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("CONCIERGE_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "base-url",
			Usage:       "Absolute base URL of the store, used for product links (e.g. https://shop.example.com)",
			Required:    true,
			Sources:     cli.EnvVars("CONCIERGE_BASE_URL"),
			Destination: &baseURL,
		},
		&cli.StringFlag{
			Name:        "admin-user",
			Usage:       "User ID allowed to call /admin endpoints (empty disables them)",
			Sources:     cli.EnvVars("CONCIERGE_ADMIN_USER"),
			Destination: &adminUser,
		},
	}
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)
	flags = append(flags, tuningCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			catalog, err := catalogCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load catalog")
			}

			tunables, err := tuningCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load tuning")
			}

			embedder := embedding.New(llmClient)

			var builderOpts []index.Option
			if catalogCfg.ArtifactPath() != "" {
				builderOpts = append(builderOpts, index.WithArtifactPath(catalogCfg.ArtifactPath()))
			}
			builder := index.New(embedder, catalog, builderOpts...)

			var retrievalOpts []retrieval.Option
			if tunables.ScoreFloor > 0 {
				retrievalOpts = append(retrievalOpts, retrieval.WithScoreFloor(float32(tunables.ScoreFloor)))
			}
			if tunables.CategoryBoost > 0 {
				retrievalOpts = append(retrievalOpts, retrieval.WithCategoryBoost(float32(tunables.CategoryBoost)))
			}
			if tunables.TopK > 0 {
				retrievalOpts = append(retrievalOpts, retrieval.WithTopK(tunables.TopK))
			}
			retriever := retrieval.New(builder, embedder, catalog, retrievalOpts...)

			var routerOpts []intent.Option
			if tunables.IntentMargin > 0 {
				routerOpts = append(routerOpts, intent.WithMargin(float32(tunables.IntentMargin)))
			}
			router := intent.New(embedder, routerOpts...)

			dispatcher := async.New(128, 4)

			ucOpts := []usecase.Option{
				usecase.WithBaseURL(baseURL),
				usecase.WithDispatcher(dispatcher),
			}
			if d, err := tunables.GenerateTimeoutDuration(); err != nil {
				return err
			} else if d > 0 {
				ucOpts = append(ucOpts, usecase.WithGenerateTimeout(d))
			}
			if tunables.GenerateRetries > 0 {
				ucOpts = append(ucOpts, usecase.WithGenerateRetries(tunables.GenerateRetries))
			}
			if tunables.RecallLimit > 0 {
				ucOpts = append(ucOpts, usecase.WithRecallLimit(tunables.RecallLimit))
			}

			uc := usecase.New(repo, llmClient, embedder, builder, retriever, router, ucOpts...)

			// Build the index before taking traffic. A failure is logged and
			// the server starts degraded; the next search retries the build.
			if err := builder.EnsureIndex(ctx); err != nil {
				logging.Default().Error("initial index build failed, serving degraded", "error", err)
			}

			server, err := httpctrl.New(uc, httpctrl.WithAdminUser(adminUser))
			if err != nil {
				return goerr.Wrap(err, "failed to create HTTP server")
			}

			httpServer := &http.Server{
				Addr:              addr,
				Handler:           server,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("HTTP server listening", "addr", addr, "base_url", baseURL)
				if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return goerr.Wrap(err, "HTTP server failed")
			case <-ctx.Done():
			}

			logging.Default().Info("Shutting down")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
			defer cancel()

			if err := httpServer.Shutdown(shutdownCtx); err != nil {
				logging.Default().Error("HTTP shutdown failed", "error", err)
			}
			if err := dispatcher.Shutdown(shutdownCtx); err != nil {
				logging.Default().Error("background task drain failed", "error", err)
			}

			return nil
		},
	}
}
