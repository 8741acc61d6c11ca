package usecase_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/agentic-store/concierge/pkg/usecase"
)

func TestRewriteProductLinks(t *testing.T) {
	base := "https://shop.example.com"
	exists := func(id int64) bool { return id >= 1 && id <= 5 }

	t.Run("replaces markers with links", func(t *testing.T) {
		in := "Try the AcmeSound Buds [product:3], they fit your budget."
		out := usecase.RewriteProductLinks(in, base, exists)
		gt.String(t, out).Contains("https://shop.example.com/products/3")
		gt.String(t, out).NotContains("[product:")
	})

	t.Run("strips markers for unknown products", func(t *testing.T) {
		in := "Maybe the Mystery Gadget [product:99]?"
		out := usecase.RewriteProductLinks(in, base, exists)
		gt.String(t, out).NotContains("[product:")
		gt.String(t, out).NotContains("/products/99")
	})

	t.Run("links bare product mentions", func(t *testing.T) {
		in := "As I said, product 2 is on sale."
		out := usecase.RewriteProductLinks(in, base, exists)
		gt.String(t, out).Contains("product 2 (https://shop.example.com/products/2)")
	})

	t.Run("leaves unknown bare mentions alone", func(t *testing.T) {
		in := "I could not find product 404 anywhere."
		out := usecase.RewriteProductLinks(in, base, exists)
		gt.Value(t, out).Equal(in)
	})

	t.Run("preserves paragraph breaks", func(t *testing.T) {
		in := "Two good picks here.\n\nThe Buds [product:1] are the standout."
		out := usecase.RewriteProductLinks(in, base, exists)
		gt.String(t, out).Contains("\n\n")
		gt.String(t, out).Contains("(https://shop.example.com/products/1)")
	})

	t.Run("stripped marker leaves single spacing", func(t *testing.T) {
		in := "Maybe the Widget [product:99] instead."
		out := usecase.RewriteProductLinks(in, base, exists)
		gt.Value(t, out).Equal("Maybe the Widget instead.")
	})

	t.Run("is idempotent", func(t *testing.T) {
		in := "Check the Buds [product:1] or product 2 for alternatives."
		once := usecase.RewriteProductLinks(in, base, exists)
		twice := usecase.RewriteProductLinks(once, base, exists)
		gt.Value(t, twice).Equal(once)
	})

	t.Run("handles trailing slash in base URL", func(t *testing.T) {
		out := usecase.RewriteProductLinks("see [product:1]", "https://shop.example.com/", exists)
		gt.String(t, out).Contains("https://shop.example.com/products/1")
		gt.String(t, out).NotContains("com//products")
	})
}
