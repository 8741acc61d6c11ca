package model

import (
	"fmt"
	"strings"
)

// EmbeddingDimension is the vector size used for all catalog and memory
// embeddings.
const EmbeddingDimension = 768

// Product is a single catalog entry
type Product struct {
	ID          int64   `json:"id" firestore:"id"`
	Name        string  `json:"name" firestore:"name"`
	Description string  `json:"description" firestore:"description"`
	Price       float64 `json:"price" firestore:"price"`
	Category    string  `json:"category" firestore:"category"`
}

// Document renders the product as the text that gets embedded for retrieval.
// Name, description, category and price are concatenated so that queries can
// match on any of them.
func (p *Product) Document() string {
	var b strings.Builder
	b.WriteString(p.Name)
	b.WriteString(". ")
	b.WriteString(p.Description)
	b.WriteString(" Category: ")
	b.WriteString(p.Category)
	b.WriteString(". Price: $")
	b.WriteString(fmt.Sprintf("%.2f", p.Price))
	return b.String()
}

// Validate checks required product fields
func (p *Product) Validate() error {
	if p.ID <= 0 {
		return fmt.Errorf("product ID must be positive: %d", p.ID)
	}
	if p.Name == "" {
		return fmt.Errorf("product %d has no name", p.ID)
	}
	return nil
}
