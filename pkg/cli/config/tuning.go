package config

import (
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/agentic-store/concierge/pkg/utils/logging"
)

// Tunables are the retrieval and composition knobs that operators may adjust
// without a rebuild. Zero values fall back to the built-in defaults.
type Tunables struct {
	ScoreFloor      float64 `toml:"score_floor"`
	CategoryBoost   float64 `toml:"category_boost"`
	TopK            int     `toml:"top_k"`
	IntentMargin    float64 `toml:"intent_margin"`
	GenerateTimeout string  `toml:"generate_timeout"`
	GenerateRetries int     `toml:"generate_retries"`
	RecallLimit     int     `toml:"recall_limit"`
}

// GenerateTimeoutDuration parses the configured timeout, 0 when unset
func (t *Tunables) GenerateTimeoutDuration() (time.Duration, error) {
	if t.GenerateTimeout == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(t.GenerateTimeout)
	if err != nil {
		return 0, goerr.Wrap(err, "invalid generate_timeout", goerr.V("value", t.GenerateTimeout))
	}
	return d, nil
}

// Tuning holds the CLI flag pointing at an optional TOML tunables file
type Tuning struct {
	path string
}

// Flags returns CLI flags for tuning configuration
func (t *Tuning) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "tuning",
			Usage:       "Path to a TOML file with retrieval and composition tunables",
			Sources:     cli.EnvVars("CONCIERGE_TUNING"),
			Destination: &t.path,
		},
	}
}

// Configure loads the tunables file. Without a path it returns empty
// Tunables, meaning built-in defaults everywhere.
func (t *Tuning) Configure() (*Tunables, error) {
	var tunables Tunables
	if t.path == "" {
		return &tunables, nil
	}

	data, err := os.ReadFile(t.path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read tuning file", goerr.V("path", t.path))
	}

	if err := toml.Unmarshal(data, &tunables); err != nil {
		return nil, goerr.Wrap(err, "failed to parse tuning file", goerr.V("path", t.path))
	}

	logging.Default().Info("Tuning loaded", "path", t.path)
	return &tunables, nil
}
