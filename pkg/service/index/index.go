package index

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/philippgille/chromem-go"
	"golang.org/x/sync/singleflight"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/service/embedding"
	"github.com/agentic-store/concierge/pkg/utils/logging"
)

// embedBatchSize limits how many documents go to the embedding service in one
// call.
const embedBatchSize = 64

// Snapshot is an immutable, fully built catalog index. Readers obtain it via
// Builder.Snapshot and never see a half-built state.
type Snapshot struct {
	Collection *chromem.Collection
	Catalog    *model.Catalog
	Meta       Meta
}

// Builder owns the catalog index lifecycle. Rebuilds are coalesced with
// singleflight and published with an atomic pointer swap, so queries keep
// hitting the previous snapshot until the new one is complete.
type Builder struct {
	embedder     embedding.Adapter
	catalog      *model.Catalog
	artifactPath string

	current atomic.Pointer[Snapshot]
	group   singleflight.Group
}

type Option func(*Builder)

// WithArtifactPath enables persisting built embeddings to the given file, so
// a restart with an unchanged catalog skips re-embedding.
func WithArtifactPath(path string) Option {
	return func(b *Builder) {
		b.artifactPath = path
	}
}

func New(embedder embedding.Adapter, catalog *model.Catalog, opts ...Option) *Builder {
	b := &Builder{
		embedder: embedder,
		catalog:  catalog,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Snapshot returns the current index snapshot, or nil if no build has
// succeeded yet.
func (b *Builder) Snapshot() *Snapshot {
	return b.current.Load()
}

// EnsureIndex makes sure a snapshot matching the current catalog content is
// in service. It is cheap when the index is already fresh. Concurrent callers
// share a single rebuild. On failure the previous snapshot, if any, stays in
// service and the error wraps types.ErrIndexBuild.
func (b *Builder) EnsureIndex(ctx context.Context) error {
	hash := b.catalog.Hash()

	if snap := b.current.Load(); snap != nil && snap.Meta.SourceHash == hash {
		return nil
	}

	_, err, _ := b.group.Do(hash, func() (any, error) {
		return nil, b.rebuild(ctx, hash)
	})
	return err
}

func (b *Builder) rebuild(ctx context.Context, hash string) error {
	// another caller may have finished the same build while we queued
	if snap := b.current.Load(); snap != nil && snap.Meta.SourceHash == hash {
		return nil
	}

	logger := logging.From(ctx)
	started := time.Now()

	vectors, fromArtifact := b.loadVectors(ctx, hash)
	if vectors == nil {
		var err error
		vectors, err = b.embedCatalog(ctx)
		if err != nil {
			return goerr.Wrap(types.ErrIndexBuild, "failed to embed catalog documents",
				goerr.V("error", err.Error()),
				goerr.V("source_hash", hash),
			)
		}
	}

	db := chromem.NewDB()
	collection, err := db.CreateCollection("catalog", nil, nil)
	if err != nil {
		return goerr.Wrap(types.ErrIndexBuild, "failed to create index collection",
			goerr.V("error", err.Error()),
		)
	}

	for i := range b.catalog.Products {
		p := &b.catalog.Products[i]
		doc := chromem.Document{
			ID:        fmt.Sprintf("%d", p.ID),
			Content:   p.Document(),
			Embedding: vectors[p.ID],
			Metadata: map[string]string{
				"category": p.Category,
			},
		}
		if err := collection.AddDocument(ctx, doc); err != nil {
			return goerr.Wrap(types.ErrIndexBuild, "failed to add document to index",
				goerr.V("error", err.Error()),
				goerr.V("product_id", p.ID),
			)
		}
	}

	meta := Meta{
		SourceHash:   hash,
		Dimension:    b.embedder.Dimension(),
		ProductCount: len(b.catalog.Products),
		BuiltAt:      time.Now().UTC(),
	}

	if b.artifactPath != "" && !fromArtifact {
		if err := saveArtifact(b.artifactPath, meta, vectors); err != nil {
			// the in-memory index is fine, only persistence failed
			logger.Warn("failed to persist index artifact", "error", err, "path", b.artifactPath)
		}
	}

	b.current.Store(&Snapshot{
		Collection: collection,
		Catalog:    b.catalog,
		Meta:       meta,
	})

	logger.Info("catalog index built",
		"products", meta.ProductCount,
		"source_hash", hash,
		"from_artifact", fromArtifact,
		"elapsed", time.Since(started),
	)

	return nil
}

// loadVectors tries the persisted artifact first. Returns nil when the
// artifact is missing, stale or invalid, meaning a fresh embed is needed.
func (b *Builder) loadVectors(ctx context.Context, hash string) (map[int64][]float32, bool) {
	if b.artifactPath == "" {
		return nil, false
	}

	vectors, err := loadArtifact(ctx, b.artifactPath, hash, b.embedder.Dimension(), len(b.catalog.Products))
	if err != nil {
		logging.From(ctx).Info("index artifact not usable, re-embedding",
			"path", b.artifactPath, "reason", err.Error())
		return nil, false
	}
	return vectors, true
}

func (b *Builder) embedCatalog(ctx context.Context) (map[int64][]float32, error) {
	vectors := make(map[int64][]float32, len(b.catalog.Products))

	for start := 0; start < len(b.catalog.Products); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(b.catalog.Products) {
			end = len(b.catalog.Products)
		}

		batch := b.catalog.Products[start:end]
		texts := make([]string, len(batch))
		for i := range batch {
			texts[i] = batch[i].Document()
		}

		embs, err := b.embedder.Embed(ctx, texts)
		if err != nil {
			return nil, goerr.Wrap(err, "embedding batch failed", goerr.V("offset", start))
		}

		for i := range batch {
			vectors[batch[i].ID] = embs[i]
		}
	}

	return vectors, nil
}
