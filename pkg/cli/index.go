package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/agentic-store/concierge/pkg/cli/config"
	"github.com/agentic-store/concierge/pkg/service/embedding"
	"github.com/agentic-store/concierge/pkg/service/index"
	"github.com/agentic-store/concierge/pkg/utils/logging"
)

func cmdIndex() *cli.Command {
	var geminiCfg config.Gemini
	var catalogCfg config.Catalog

	flags := []cli.Flag{}
	flags = append(flags, geminiCfg.Flags()...)
	flags = append(flags, catalogCfg.Flags()...)

	return &cli.Command{
		Name:  "index",
		Usage: "Build the catalog index and persist it as an artifact",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if catalogCfg.ArtifactPath() == "" {
				return goerr.New("index-artifact is required for the index command")
			}

			llmClient, err := geminiCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure Gemini client")
			}

			catalog, err := catalogCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to load catalog")
			}

			embedder := embedding.New(llmClient)
			builder := index.New(embedder, catalog, index.WithArtifactPath(catalogCfg.ArtifactPath()))

			if err := builder.EnsureIndex(ctx); err != nil {
				return goerr.Wrap(err, "index build failed")
			}

			snap := builder.Snapshot()
			logging.Default().Info("Index built",
				"products", snap.Meta.ProductCount,
				"dimension", snap.Meta.Dimension,
				"source_hash", snap.Meta.SourceHash,
				"artifact", catalogCfg.ArtifactPath(),
			)

			return nil
		},
	}
}
