package model

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/m-mizutani/goerr/v2"
)

// Catalog is the full set of products loaded from the source CSV, in file
// order.
type Catalog struct {
	Products []Product
}

// csv columns expected in the catalog source file
var catalogColumns = []string{"product_id", "product_name", "description", "price", "category"}

// LoadCatalog reads a product catalog from CSV. The header row must contain
// the product_id, product_name, description, price and category columns, in
// any order. Extra columns are ignored.
func LoadCatalog(r io.Reader) (*Catalog, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read catalog header")
	}

	idx := map[string]int{}
	for i, col := range header {
		idx[strings.TrimSpace(strings.ToLower(col))] = i
	}
	for _, col := range catalogColumns {
		if _, ok := idx[col]; !ok {
			return nil, goerr.New("catalog header missing column", goerr.V("column", col))
		}
	}

	var catalog Catalog
	seen := map[int64]bool{}
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read catalog row")
		}

		id, err := strconv.ParseInt(rec[idx["product_id"]], 10, 64)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid product_id", goerr.V("value", rec[idx["product_id"]]))
		}
		price, err := strconv.ParseFloat(rec[idx["price"]], 64)
		if err != nil {
			return nil, goerr.Wrap(err, "invalid price", goerr.V("product_id", id))
		}

		p := Product{
			ID:          id,
			Name:        strings.TrimSpace(rec[idx["product_name"]]),
			Description: strings.TrimSpace(rec[idx["description"]]),
			Price:       price,
			Category:    strings.TrimSpace(rec[idx["category"]]),
		}
		if err := p.Validate(); err != nil {
			return nil, goerr.Wrap(err, "invalid catalog row")
		}
		if seen[p.ID] {
			return nil, goerr.New("duplicate product ID in catalog", goerr.V("product_id", p.ID))
		}
		seen[p.ID] = true

		catalog.Products = append(catalog.Products, p)
	}

	if len(catalog.Products) == 0 {
		return nil, goerr.New("catalog has no products")
	}

	return &catalog, nil
}

// Hash returns a content hash of the catalog, stable across load order of
// identical data. Used to decide whether a persisted index is still fresh.
func (c *Catalog) Hash() string {
	h := xxhash.New()
	for i := range c.Products {
		p := &c.Products[i]
		fmt.Fprintf(h, "%d\x1f%s\x1f%s\x1f%.2f\x1f%s\x1e", p.ID, p.Name, p.Description, p.Price, p.Category)
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

// Get returns the product with the given ID, or nil
func (c *Catalog) Get(id int64) *Product {
	for i := range c.Products {
		if c.Products[i].ID == id {
			return &c.Products[i]
		}
	}
	return nil
}

// Categories returns the distinct categories in the catalog, sorted
func (c *Catalog) Categories() []string {
	set := map[string]bool{}
	for i := range c.Products {
		if cat := c.Products[i].Category; cat != "" {
			set[cat] = true
		}
	}
	out := make([]string, 0, len(set))
	for cat := range set {
		out = append(out, cat)
	}
	sort.Strings(out)
	return out
}

// ByCategory returns products in the given category, preserving file order.
// Matching is case-insensitive.
func (c *Catalog) ByCategory(category string) []Product {
	var out []Product
	for i := range c.Products {
		if strings.EqualFold(c.Products[i].Category, category) {
			out = append(out, c.Products[i])
		}
	}
	return out
}
