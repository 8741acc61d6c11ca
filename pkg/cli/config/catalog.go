package config

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/utils/logging"
	"github.com/agentic-store/concierge/pkg/utils/safe"
)

// Catalog holds CLI flags for the product catalog source
type Catalog struct {
	path         string
	artifactPath string
}

// Flags returns CLI flags for catalog configuration
func (c *Catalog) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "catalog",
			Usage:       "Path to the product catalog CSV file",
			Required:    true,
			Sources:     cli.EnvVars("CONCIERGE_CATALOG"),
			Destination: &c.path,
		},
		&cli.StringFlag{
			Name:        "index-artifact",
			Usage:       "Path for the persisted catalog index artifact (empty disables persistence)",
			Sources:     cli.EnvVars("CONCIERGE_INDEX_ARTIFACT"),
			Destination: &c.artifactPath,
		},
	}
}

// ArtifactPath returns the index artifact path, empty when persistence is
// disabled.
func (c *Catalog) ArtifactPath() string {
	return c.artifactPath
}

// Configure loads and validates the catalog CSV
func (c *Catalog) Configure(ctx context.Context) (*model.Catalog, error) {
	f, err := os.Open(c.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open catalog file", goerr.V("path", c.path))
	}
	defer safe.Close(ctx, f)

	catalog, err := model.LoadCatalog(f)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load catalog", goerr.V("path", c.path))
	}

	logging.Default().Info("Catalog loaded",
		"path", c.path,
		"products", len(catalog.Products),
		"categories", len(catalog.Categories()),
	)

	return catalog, nil
}
