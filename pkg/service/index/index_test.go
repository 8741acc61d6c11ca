package index_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/service/embedding/mock"
	"github.com/agentic-store/concierge/pkg/service/index"
)

const testCSV = `product_id,product_name,description,price,category
1,Wireless Earbuds,True wireless earbuds with noise cancellation,79.99,Audio
2,Bluetooth Speaker,Portable speaker with deep bass,49.50,Audio
3,Espresso Machine,Compact espresso machine for home baristas,249.00,Kitchen
`

func loadTestCatalog(t *testing.T) *model.Catalog {
	t.Helper()
	catalog, err := model.LoadCatalog(strings.NewReader(testCSV))
	gt.NoError(t, err).Required()
	return catalog
}

func TestEnsureIndex(t *testing.T) {
	t.Run("builds a snapshot with all products", func(t *testing.T) {
		ctx := context.Background()
		embedder := mock.New(64)
		builder := index.New(embedder, loadTestCatalog(t))

		gt.NoError(t, builder.EnsureIndex(ctx)).Required()

		snap := builder.Snapshot()
		gt.Value(t, snap).NotNil()
		gt.Value(t, snap.Meta.ProductCount).Equal(3)
		gt.Value(t, snap.Meta.Dimension).Equal(64)
		gt.Value(t, snap.Collection.Count()).Equal(3)
	})

	t.Run("second call is a no-op", func(t *testing.T) {
		ctx := context.Background()
		embedder := mock.New(64)
		builder := index.New(embedder, loadTestCatalog(t))

		gt.NoError(t, builder.EnsureIndex(ctx)).Required()
		calls := embedder.Calls()

		gt.NoError(t, builder.EnsureIndex(ctx)).Required()
		gt.Value(t, embedder.Calls()).Equal(calls)
	})

	t.Run("embed failure reports ErrIndexBuild and keeps no snapshot", func(t *testing.T) {
		ctx := context.Background()
		embedder := mock.New(64)
		embedder.SetError(errors.New("embedding service down"))
		builder := index.New(embedder, loadTestCatalog(t))

		err := builder.EnsureIndex(ctx)
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrIndexBuild)).True()
		gt.Value(t, builder.Snapshot()).Nil()

		// recovery: once the embedder works the build succeeds
		embedder.SetError(nil)
		gt.NoError(t, builder.EnsureIndex(ctx)).Required()
		gt.Value(t, builder.Snapshot()).NotNil()
	})
}

func TestIndexArtifact(t *testing.T) {
	ctx := context.Background()
	artifact := filepath.Join(t.TempDir(), "index.json")
	catalog := loadTestCatalog(t)

	first := mock.New(64)
	builder := index.New(first, catalog, index.WithArtifactPath(artifact))
	gt.NoError(t, builder.EnsureIndex(ctx)).Required()
	gt.Bool(t, first.Calls() > 0).True()

	// a fresh builder over the same artifact must not re-embed
	second := mock.New(64)
	rebuilt := index.New(second, catalog, index.WithArtifactPath(artifact))
	gt.NoError(t, rebuilt.EnsureIndex(ctx)).Required()
	gt.Value(t, second.Calls()).Equal(0)

	snap := rebuilt.Snapshot()
	gt.Value(t, snap).NotNil()
	gt.Value(t, snap.Meta.SourceHash).Equal(catalog.Hash())
	gt.Value(t, snap.Collection.Count()).Equal(3)
}

func TestIndexArtifactStale(t *testing.T) {
	ctx := context.Background()
	artifact := filepath.Join(t.TempDir(), "index.json")

	builder := index.New(mock.New(64), loadTestCatalog(t), index.WithArtifactPath(artifact))
	gt.NoError(t, builder.EnsureIndex(ctx)).Required()

	// changed catalog invalidates the artifact
	changed, err := model.LoadCatalog(strings.NewReader(strings.Replace(testCSV, "79.99", "59.99", 1)))
	gt.NoError(t, err).Required()

	embedder := mock.New(64)
	rebuilt := index.New(embedder, changed, index.WithArtifactPath(artifact))
	gt.NoError(t, rebuilt.EnsureIndex(ctx)).Required()
	gt.Bool(t, embedder.Calls() > 0).True()
	gt.Value(t, rebuilt.Snapshot().Meta.SourceHash).Equal(changed.Hash())
}
