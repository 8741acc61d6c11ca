package model_test

import (
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/agentic-store/concierge/pkg/domain/model"
)

const sampleCSV = `product_id,product_name,description,price,category
1,Wireless Earbuds,True wireless earbuds with noise cancellation,79.99,Audio
2,Bluetooth Speaker,Portable speaker with deep bass,49.50,Audio
3,Espresso Machine,Compact espresso machine for home baristas,249.00,Kitchen
4,Running Shoes,Lightweight running shoes with cushioned sole,89.95,Sportswear
`

func TestLoadCatalog(t *testing.T) {
	t.Run("parses all rows", func(t *testing.T) {
		catalog, err := model.LoadCatalog(strings.NewReader(sampleCSV))
		gt.NoError(t, err).Required()

		gt.Array(t, catalog.Products).Length(4)
		gt.Value(t, catalog.Products[0].ID).Equal(int64(1))
		gt.Value(t, catalog.Products[0].Name).Equal("Wireless Earbuds")
		gt.Value(t, catalog.Products[0].Price).Equal(79.99)
		gt.Value(t, catalog.Products[3].Category).Equal("Sportswear")
	})

	t.Run("accepts reordered and extra columns", func(t *testing.T) {
		csv := "category,product_name,price,product_id,description,sku\n" +
			"Audio,Headphones,120.00,7,Over-ear headphones,HX-1\n"
		catalog, err := model.LoadCatalog(strings.NewReader(csv))
		gt.NoError(t, err).Required()
		gt.Array(t, catalog.Products).Length(1)
		gt.Value(t, catalog.Products[0].ID).Equal(int64(7))
		gt.Value(t, catalog.Products[0].Category).Equal("Audio")
	})

	t.Run("rejects missing column", func(t *testing.T) {
		csv := "product_id,product_name,price\n1,Thing,9.99\n"
		_, err := model.LoadCatalog(strings.NewReader(csv))
		gt.Error(t, err)
	})

	t.Run("rejects duplicate product ID", func(t *testing.T) {
		csv := "product_id,product_name,description,price,category\n" +
			"1,A,first,1.00,X\n" +
			"1,B,second,2.00,X\n"
		_, err := model.LoadCatalog(strings.NewReader(csv))
		gt.Error(t, err)
	})

	t.Run("rejects empty catalog", func(t *testing.T) {
		csv := "product_id,product_name,description,price,category\n"
		_, err := model.LoadCatalog(strings.NewReader(csv))
		gt.Error(t, err)
	})
}

func TestCatalogHash(t *testing.T) {
	a, err := model.LoadCatalog(strings.NewReader(sampleCSV))
	gt.NoError(t, err).Required()
	b, err := model.LoadCatalog(strings.NewReader(sampleCSV))
	gt.NoError(t, err).Required()

	gt.Value(t, a.Hash()).Equal(b.Hash())

	changed := strings.Replace(sampleCSV, "79.99", "89.99", 1)
	c, err := model.LoadCatalog(strings.NewReader(changed))
	gt.NoError(t, err).Required()
	gt.Value(t, a.Hash() == c.Hash()).Equal(false)
}

func TestCatalogLookups(t *testing.T) {
	catalog, err := model.LoadCatalog(strings.NewReader(sampleCSV))
	gt.NoError(t, err).Required()

	t.Run("Get finds by ID", func(t *testing.T) {
		p := catalog.Get(3)
		gt.Value(t, p).NotNil()
		gt.Value(t, p.Name).Equal("Espresso Machine")
		gt.Value(t, catalog.Get(99)).Nil()
	})

	t.Run("Categories are distinct and sorted", func(t *testing.T) {
		gt.Array(t, catalog.Categories()).Equal([]string{"Audio", "Kitchen", "Sportswear"})
	})

	t.Run("ByCategory is case-insensitive", func(t *testing.T) {
		gt.Array(t, catalog.ByCategory("audio")).Length(2)
		gt.Array(t, catalog.ByCategory("Garden")).Length(0)
	})
}

func TestProductDocument(t *testing.T) {
	p := model.Product{
		ID: 1, Name: "Wireless Earbuds",
		Description: "True wireless earbuds", Price: 79.99, Category: "Audio",
	}
	doc := p.Document()
	gt.String(t, doc).Contains("Wireless Earbuds")
	gt.String(t, doc).Contains("Audio")
	gt.String(t, doc).Contains("$79.99")
}
