package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"

	"github.com/agentic-store/concierge/pkg/domain/model"
)

// memoryDoc is the Firestore document representation of model.MemoryRecord.
// Embedding is stored as firestore.Vector32 for FindNearest vector search.
type memoryDoc struct {
	ID        model.MemoryID     `firestore:"ID"`
	UserID    string             `firestore:"UserID"`
	Content   string             `firestore:"Content"`
	Embedding firestore.Vector32 `firestore:"Embedding,omitempty"`
	CreatedAt time.Time          `firestore:"CreatedAt"`
}

func toMemoryDoc(m *model.MemoryRecord) *memoryDoc {
	doc := &memoryDoc{
		ID:        m.ID,
		UserID:    m.UserID,
		Content:   m.Content,
		CreatedAt: m.CreatedAt,
	}
	if len(m.Embedding) > 0 {
		doc.Embedding = firestore.Vector32(m.Embedding)
	}
	return doc
}

func fromMemoryDoc(d *memoryDoc) *model.MemoryRecord {
	m := &model.MemoryRecord{
		ID:        d.ID,
		UserID:    d.UserID,
		Content:   d.Content,
		CreatedAt: d.CreatedAt,
	}
	if len(d.Embedding) > 0 {
		m.Embedding = []float32(d.Embedding)
	}
	return m
}

type memoryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newMemoryRepository(client *firestore.Client) *memoryRepository {
	return &memoryRepository{client: client}
}

// memoriesCollection returns the subcollection path:
// users/{userID}/memories
func (r *memoryRepository) memoriesCollection(userID string) *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + "users").Doc(userID).
		Collection("memories")
}

func (r *memoryRepository) Create(ctx context.Context, record *model.MemoryRecord) error {
	if record.ID == "" {
		record.ID = model.NewMemoryID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	docRef := r.memoriesCollection(record.UserID).Doc(string(record.ID))
	if _, err := docRef.Set(ctx, toMemoryDoc(record)); err != nil {
		return goerr.Wrap(err, "failed to create memory record", goerr.V("userID", record.UserID))
	}

	return nil
}

func (r *memoryRepository) ListByUser(ctx context.Context, userID string) ([]*model.MemoryRecord, error) {
	iter := r.memoriesCollection(userID).
		OrderBy("CreatedAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	records := make([]*model.MemoryRecord, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory records", goerr.V("userID", userID))
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory record")
		}

		records = append(records, fromMemoryDoc(&d))
	}

	return records, nil
}

func (r *memoryRepository) FindByEmbedding(ctx context.Context, userID string, embedding []float32, limit int) ([]*model.MemoryRecord, error) {
	vq := r.memoriesCollection(userID).
		FindNearest("Embedding", firestore.Vector32(embedding), limit, firestore.DistanceMeasureCosine, nil)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	records := make([]*model.MemoryRecord, 0, limit)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate memory vector search results", goerr.V("userID", userID))
		}

		var d memoryDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal memory record from vector search")
		}

		records = append(records, fromMemoryDoc(&d))
	}

	return records, nil
}

func (r *memoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	iter := r.memoriesCollection(userID).Documents(ctx)
	defer iter.Stop()

	batch := r.client.BulkWriter(ctx)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to iterate memory records for delete", goerr.V("userID", userID))
		}

		if _, err := batch.Delete(doc.Ref); err != nil {
			return goerr.Wrap(err, "failed to enqueue memory record delete", goerr.V("userID", userID))
		}
	}
	batch.End()

	return nil
}
