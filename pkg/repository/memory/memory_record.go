package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/agentic-store/concierge/pkg/domain/model"
)

type memoryRepository struct {
	mu      sync.RWMutex
	records map[string][]*model.MemoryRecord // userID -> records
}

func newMemoryRepository() *memoryRepository {
	return &memoryRepository{
		records: make(map[string][]*model.MemoryRecord),
	}
}

func (x *memoryRepository) Create(ctx context.Context, record *model.MemoryRecord) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	copied := *record
	copied.Embedding = append([]float32(nil), record.Embedding...)
	x.records[record.UserID] = append(x.records[record.UserID], &copied)
	return nil
}

func (x *memoryRepository) ListByUser(ctx context.Context, userID string) ([]*model.MemoryRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	records := make([]*model.MemoryRecord, 0, len(x.records[userID]))
	for _, r := range x.records[userID] {
		copied := *r
		copied.Embedding = append([]float32(nil), r.Embedding...)
		records = append(records, &copied)
	}
	return records, nil
}

func (x *memoryRepository) FindByEmbedding(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.MemoryRecord, error) {
	x.mu.RLock()
	defer x.mu.RUnlock()

	type scored struct {
		record *model.MemoryRecord
		score  float32
	}

	var candidates []scored
	for _, r := range x.records[userID] {
		candidates = append(candidates, scored{record: r, score: cosineSimilarity(embedding, r.Embedding)})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if limit > 0 && len(candidates) > limit {
		candidates = candidates[:limit]
	}

	records := make([]*model.MemoryRecord, 0, len(candidates))
	for _, c := range candidates {
		copied := *c.record
		copied.Embedding = append([]float32(nil), c.record.Embedding...)
		records = append(records, &copied)
	}
	return records, nil
}

func (x *memoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	x.mu.Lock()
	defer x.mu.Unlock()

	delete(x.records, userID)
	return nil
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
