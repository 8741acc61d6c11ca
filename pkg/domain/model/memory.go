package model

import (
	"time"

	"github.com/google/uuid"
)

// MemoryID is the identifier of a persistent memory record
type MemoryID string

// NewMemoryID generates a new memory ID
func NewMemoryID() MemoryID {
	return MemoryID(uuid.New().String())
}

// String returns the string representation of the memory ID
func (x MemoryID) String() string {
	return string(x)
}

// MemoryRecord is a long-lived fact about a user, distilled from past
// conversations and recalled by embedding similarity.
type MemoryRecord struct {
	ID        MemoryID  `json:"id" firestore:"id"`
	UserID    string    `json:"user_id" firestore:"user_id"`
	Content   string    `json:"content" firestore:"content"`
	Embedding []float32 `json:"embedding" firestore:"-"`
	CreatedAt time.Time `json:"created_at" firestore:"created_at"`
}

// MemoryDedupThreshold is the cosine similarity above which a new memory is
// considered a duplicate of an existing one and discarded.
const MemoryDedupThreshold = 0.92
