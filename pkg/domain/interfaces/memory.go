package interfaces

import (
	"context"

	"github.com/agentic-store/concierge/pkg/domain/model"
)

// MemoryRepository persists long-lived user memories with vector recall
type MemoryRepository interface {
	Create(ctx context.Context, record *model.MemoryRecord) error
	ListByUser(ctx context.Context, userID string) ([]*model.MemoryRecord, error)

	// FindByEmbedding returns up to limit records for the user ordered by
	// similarity to the query embedding, most similar first.
	FindByEmbedding(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.MemoryRecord, error)

	DeleteByUser(ctx context.Context, userID string) error
}
