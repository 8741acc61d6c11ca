package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dgraph-io/ristretto"
	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/service/retrieval"
)

// catalogCacheTTL is how long catalog list responses stay cached
const catalogCacheTTL = 5 * time.Minute

// catalogHandler serves catalog reads with a small response cache. The
// catalog itself only changes on restart, but category listings are assembled
// per request, so the cache keeps hot paths allocation-free.
type catalogHandler struct {
	retriever *retrieval.Engine
	cache     *ristretto.Cache
}

func newCatalogHandler(retriever *retrieval.Engine) (*catalogHandler, error) {
	cache, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: 1000,
		MaxCost:     1 << 22,
		BufferItems: 64,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create catalog response cache")
	}

	return &catalogHandler{
		retriever: retriever,
		cache:     cache,
	}, nil
}

func (h *catalogHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	key := "products:" + category

	if cached, ok := h.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	var products []model.Product
	if category != "" {
		products = h.retriever.ByCategory(category)
	} else {
		products = h.retriever.Products()
	}
	if products == nil {
		products = []model.Product{}
	}

	resp := map[string]any{"products": products}
	h.cache.SetWithTTL(key, resp, 1, catalogCacheTTL)

	writeJSON(w, http.StatusOK, resp)
}

func (h *catalogHandler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		http.Error(w, "invalid product ID", http.StatusBadRequest)
		return
	}

	product, err := h.retriever.Lookup(id)
	if err != nil {
		http.Error(w, "product not found", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

func (h *catalogHandler) listCategories(w http.ResponseWriter, r *http.Request) {
	const key = "categories"

	if cached, ok := h.cache.Get(key); ok {
		writeJSON(w, http.StatusOK, cached)
		return
	}

	resp := map[string]any{"categories": h.retriever.Categories()}
	h.cache.SetWithTTL(key, resp, 1, catalogCacheTTL)

	writeJSON(w, http.StatusOK, resp)
}
