package index

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentic-store/concierge/pkg/utils/safe"
)

// Meta describes a built index. All fields are required in the persisted
// artifact; an artifact missing any of them is treated as corrupt.
type Meta struct {
	SourceHash   string    `json:"source_hash"`
	Dimension    int       `json:"dimension"`
	ProductCount int       `json:"product_count"`
	BuiltAt      time.Time `json:"built_at"`
}

type artifactEntry struct {
	ProductID int64     `json:"product_id"`
	Embedding []float32 `json:"embedding"`
}

type artifact struct {
	Meta
	Entries []artifactEntry `json:"entries"`
}

// saveArtifact writes the artifact atomically: write to a temp file in the
// same directory, then rename over the destination.
func saveArtifact(path string, meta Meta, vectors map[int64][]float32) error {
	a := artifact{Meta: meta}
	for id, vec := range vectors {
		a.Entries = append(a.Entries, artifactEntry{ProductID: id, Embedding: vec})
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return goerr.Wrap(err, "failed to create artifact directory", goerr.V("dir", dir))
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".tmp-*")
	if err != nil {
		return goerr.Wrap(err, "failed to create temp artifact file")
	}
	defer os.Remove(tmp.Name())

	if err := json.NewEncoder(tmp).Encode(&a); err != nil {
		tmp.Close()
		return goerr.Wrap(err, "failed to encode index artifact")
	}
	if err := tmp.Close(); err != nil {
		return goerr.Wrap(err, "failed to close temp artifact file")
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return goerr.Wrap(err, "failed to rename artifact into place", goerr.V("path", path))
	}

	return nil
}

// loadArtifact reads a persisted artifact and validates it against the
// current catalog. Any mismatch invalidates the whole artifact.
func loadArtifact(ctx context.Context, path, wantHash string, wantDimension, wantCount int) (map[int64][]float32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open index artifact")
	}
	defer safe.Close(ctx, f)

	var a artifact
	if err := json.NewDecoder(f).Decode(&a); err != nil {
		return nil, goerr.Wrap(err, "failed to decode index artifact")
	}

	if a.SourceHash == "" || a.Dimension == 0 || a.ProductCount == 0 || a.BuiltAt.IsZero() {
		return nil, goerr.New("index artifact missing required metadata")
	}
	if a.SourceHash != wantHash {
		return nil, goerr.New("index artifact is stale",
			goerr.V("artifact_hash", a.SourceHash),
			goerr.V("catalog_hash", wantHash),
		)
	}
	if a.Dimension != wantDimension {
		return nil, goerr.New("index artifact dimension mismatch",
			goerr.V("artifact", a.Dimension),
			goerr.V("want", wantDimension),
		)
	}
	if a.ProductCount != wantCount || len(a.Entries) != wantCount {
		return nil, goerr.New("index artifact product count mismatch",
			goerr.V("artifact", a.ProductCount),
			goerr.V("want", wantCount),
		)
	}

	vectors := make(map[int64][]float32, len(a.Entries))
	for _, e := range a.Entries {
		if len(e.Embedding) != wantDimension {
			return nil, goerr.New("index artifact entry has wrong dimension",
				goerr.V("product_id", e.ProductID),
			)
		}
		vectors[e.ProductID] = e.Embedding
	}

	return vectors, nil
}
