package retrieval_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/service/embedding/mock"
	"github.com/agentic-store/concierge/pkg/service/index"
	"github.com/agentic-store/concierge/pkg/service/retrieval"
)

const testCSV = `product_id,product_name,description,price,category
1,Wireless Earbuds,True wireless earbuds with noise cancellation and wireless charging,79.99,Audio
2,Bluetooth Speaker,Portable bluetooth speaker with deep bass,49.50,Audio
3,Espresso Machine,Compact espresso machine for home baristas,249.00,Kitchen
4,Running Shoes,Lightweight running shoes with cushioned sole,89.95,Sportswear
5,Mechanical Keyboard,Tenkeyless mechanical keyboard with tactile switches,129.00,Electronics
`

func newTestEngine(t *testing.T, opts ...retrieval.Option) (*retrieval.Engine, *index.Builder) {
	t.Helper()

	catalog, err := model.LoadCatalog(strings.NewReader(testCSV))
	gt.NoError(t, err).Required()

	embedder := mock.New(64)
	builder := index.New(embedder, catalog)
	gt.NoError(t, builder.EnsureIndex(context.Background())).Required()

	return retrieval.New(builder, embedder, catalog, opts...), builder
}

func TestSearch(t *testing.T) {
	t.Run("finds wireless earbuds for a semantic query", func(t *testing.T) {
		engine, _ := newTestEngine(t)

		results, err := engine.Search(context.Background(), "wireless earbuds", retrieval.Filters{})
		gt.NoError(t, err).Required()
		gt.Bool(t, len(results) > 0).True()
		gt.Value(t, results[0].Product.ID).Equal(int64(1))
	})

	t.Run("price filter excludes out-of-range products", func(t *testing.T) {
		engine, _ := newTestEngine(t, retrieval.WithScoreFloor(0))

		results, err := engine.Search(context.Background(), "wireless earbuds",
			retrieval.Filters{MaxPrice: 60})
		gt.NoError(t, err).Required()
		for _, r := range results {
			gt.Bool(t, r.Product.Price <= 60).True()
		}
	})

	t.Run("category boost promotes matching category", func(t *testing.T) {
		engine, _ := newTestEngine(t, retrieval.WithScoreFloor(0), retrieval.WithCategoryBoost(1.0))

		results, err := engine.Search(context.Background(), "something with bass",
			retrieval.Filters{Category: "Audio"})
		gt.NoError(t, err).Required()
		gt.Bool(t, len(results) > 0).True()
		gt.Value(t, results[0].Product.Category).Equal("Audio")
	})

	t.Run("respects top-k", func(t *testing.T) {
		engine, _ := newTestEngine(t, retrieval.WithScoreFloor(0), retrieval.WithTopK(2))

		results, err := engine.Search(context.Background(), "wireless bluetooth keyboard machine shoes", retrieval.Filters{})
		gt.NoError(t, err).Required()
		gt.Bool(t, len(results) <= 2).True()
	})

	t.Run("degrades without a snapshot", func(t *testing.T) {
		catalog, err := model.LoadCatalog(strings.NewReader(testCSV))
		gt.NoError(t, err).Required()

		embedder := mock.New(64)
		builder := index.New(embedder, catalog) // never built
		engine := retrieval.New(builder, embedder, catalog)

		_, err = engine.Search(context.Background(), "anything", retrieval.Filters{})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrRetrievalDegraded)).True()
	})

	t.Run("degrades when query embedding fails", func(t *testing.T) {
		catalog, err := model.LoadCatalog(strings.NewReader(testCSV))
		gt.NoError(t, err).Required()

		embedder := mock.New(64)
		builder := index.New(embedder, catalog)
		gt.NoError(t, builder.EnsureIndex(context.Background())).Required()
		engine := retrieval.New(builder, embedder, catalog)

		embedder.SetError(errors.New("down"))
		_, err = engine.Search(context.Background(), "anything", retrieval.Filters{})
		gt.Error(t, err)
		gt.Bool(t, errors.Is(err, types.ErrRetrievalDegraded)).True()
	})
}

func TestLookup(t *testing.T) {
	engine, _ := newTestEngine(t)

	p, err := engine.Lookup(3)
	gt.NoError(t, err).Required()
	gt.Value(t, p.Name).Equal("Espresso Machine")

	_, err = engine.Lookup(999)
	gt.Error(t, err)
}
