package retrieval

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/service/embedding"
	"github.com/agentic-store/concierge/pkg/service/index"
)

const (
	// DefaultScoreFloor drops matches whose raw similarity is below this
	DefaultScoreFloor = 0.30

	// DefaultCategoryBoost is added to the score when the product category
	// matches the category extracted from the query
	DefaultCategoryBoost = 0.05

	// DefaultTopK is the result count when the caller does not specify one
	DefaultTopK = 5
)

// Filters narrows a catalog search
type Filters struct {
	Category string
	MinPrice float64 // 0 means unset
	MaxPrice float64 // 0 means unset
}

// Result is one ranked catalog match
type Result struct {
	Product model.Product
	Score   float32
}

// Engine answers semantic catalog queries against the current index snapshot
type Engine struct {
	builder  *index.Builder
	embedder embedding.Adapter
	catalog  *model.Catalog

	scoreFloor    float32
	categoryBoost float32
	topK          int
}

type Option func(*Engine)

func WithScoreFloor(floor float32) Option {
	return func(e *Engine) { e.scoreFloor = floor }
}

func WithCategoryBoost(boost float32) Option {
	return func(e *Engine) { e.categoryBoost = boost }
}

func WithTopK(k int) Option {
	return func(e *Engine) { e.topK = k }
}

func New(builder *index.Builder, embedder embedding.Adapter, catalog *model.Catalog, opts ...Option) *Engine {
	e := &Engine{
		builder:       builder,
		embedder:      embedder,
		catalog:       catalog,
		scoreFloor:    DefaultScoreFloor,
		categoryBoost: DefaultCategoryBoost,
		topK:          DefaultTopK,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Lookup returns the product with the given ID, independent of index state
func (e *Engine) Lookup(id int64) (*model.Product, error) {
	p := e.catalog.Get(id)
	if p == nil {
		return nil, goerr.New("product not found", goerr.V("product_id", id))
	}
	return p, nil
}

// Categories lists the catalog's distinct categories
func (e *Engine) Categories() []string {
	return e.catalog.Categories()
}

// ByCategory returns products in a category
func (e *Engine) ByCategory(category string) []model.Product {
	return e.catalog.ByCategory(category)
}

// Products returns the full catalog in file order
func (e *Engine) Products() []model.Product {
	return e.catalog.Products
}

// Search runs a semantic query over the catalog index. Results below the
// score floor are dropped, price filters are applied before ranking, and a
// category match earns a small boost. Ties break toward the lower product ID.
// Without a usable snapshot it returns types.ErrRetrievalDegraded.
func (e *Engine) Search(ctx context.Context, query string, filters Filters) ([]Result, error) {
	snap := e.builder.Snapshot()
	if snap == nil {
		return nil, goerr.Wrap(types.ErrRetrievalDegraded, "no catalog index snapshot available")
	}

	vecs, err := e.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, goerr.Wrap(types.ErrRetrievalDegraded, "failed to embed query",
			goerr.V("error", err.Error()),
		)
	}

	// over-fetch so that filtering still leaves enough candidates
	n := e.topK * 4
	if count := snap.Collection.Count(); n > count {
		n = count
	}
	if n == 0 {
		return nil, nil
	}

	raw, err := snap.Collection.QueryEmbedding(ctx, vecs[0], n, nil, nil)
	if err != nil {
		return nil, goerr.Wrap(types.ErrRetrievalDegraded, "index query failed",
			goerr.V("error", err.Error()),
		)
	}

	var results []Result
	for _, r := range raw {
		id, err := strconv.ParseInt(r.ID, 10, 64)
		if err != nil {
			continue
		}
		p := e.catalog.Get(id)
		if p == nil {
			continue
		}

		if r.Similarity < e.scoreFloor {
			continue
		}
		if filters.MinPrice > 0 && p.Price < filters.MinPrice {
			continue
		}
		if filters.MaxPrice > 0 && p.Price > filters.MaxPrice {
			continue
		}

		score := r.Similarity
		if filters.Category != "" && equalFoldTrim(p.Category, filters.Category) {
			score += e.categoryBoost
		}

		results = append(results, Result{Product: *p, Score: score})
	}

	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Product.ID < results[j].Product.ID
	})

	if len(results) > e.topK {
		results = results[:e.topK]
	}

	return results, nil
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
