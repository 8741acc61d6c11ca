package usecase

import (
	"context"
	"encoding/json"
	"math"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/utils/errutil"
	"github.com/agentic-store/concierge/pkg/utils/logging"
)

// RecallRelevant returns up to the configured limit of long-term memories
// similar to the message. A failing memory store or embedder degrades to an
// empty recall, never an error for the caller.
func (uc *UseCases) RecallRelevant(ctx context.Context, userID, message string) []*model.MemoryRecord {
	vecs, err := uc.embedder.Embed(ctx, []string{message})
	if err != nil {
		logging.From(ctx).Warn("memory recall skipped, embedding failed", "error", err)
		return nil
	}

	records, err := uc.repo.Memory().FindByEmbedding(ctx, userID, vecs[0], uc.recallLimit)
	if err != nil {
		logging.From(ctx).Warn("memory recall degraded",
			"error", goerr.Wrap(types.ErrMemoryService, err.Error()))
		return nil
	}

	return records
}

// Remember stores a distilled fact about the user unless a near-duplicate
// already exists. Returns true when a new record was written.
func (uc *UseCases) Remember(ctx context.Context, userID, content string) (bool, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return false, nil
	}

	vecs, err := uc.embedder.Embed(ctx, []string{content})
	if err != nil {
		return false, goerr.Wrap(types.ErrMemoryService, "failed to embed memory content",
			goerr.V("error", err.Error()),
		)
	}

	nearest, err := uc.repo.Memory().FindByEmbedding(ctx, userID, vecs[0], 1)
	if err != nil {
		return false, goerr.Wrap(types.ErrMemoryService, "failed to check for duplicate memory",
			goerr.V("error", err.Error()),
		)
	}
	if len(nearest) > 0 && cosine32(vecs[0], nearest[0].Embedding) >= model.MemoryDedupThreshold {
		logging.From(ctx).Debug("skipping duplicate memory",
			"content", content, "existing", nearest[0].Content)
		return false, nil
	}

	record := &model.MemoryRecord{
		ID:        model.NewMemoryID(),
		UserID:    userID,
		Content:   content,
		Embedding: vecs[0],
		CreatedAt: time.Now().UTC(),
	}
	if err := uc.repo.Memory().Create(ctx, record); err != nil {
		return false, goerr.Wrap(types.ErrMemoryService, "failed to store memory",
			goerr.V("error", err.Error()),
		)
	}

	return true, nil
}

// ClearMemory wipes both tiers for the user: the session transcript and all
// long-term records. A failing persistent purge is logged, not returned; the
// session tier is already gone and the caller still reports success.
func (uc *UseCases) ClearMemory(ctx context.Context, userID, sessionID string) error {
	uc.sessions.Clear(sessionID)

	if err := uc.repo.Memory().DeleteByUser(ctx, userID); err != nil {
		errutil.Handle(ctx, goerr.Wrap(types.ErrMemoryService, "failed to delete user memories",
			goerr.V("error", err.Error()),
			goerr.V("userID", userID),
		), "long-term memory purge failed")
	}

	return nil
}

type distilledFacts struct {
	Facts []string `json:"facts"`
}

// distillMemories asks the LLM for durable facts worth remembering from the
// user's message, then stores each through the dedup gate. Runs in the
// background after a chat turn.
func (uc *UseCases) distillMemories(ctx context.Context, userID, message string) error {
	schema := &gollem.Parameter{
		Type: gollem.TypeObject,
		Properties: map[string]*gollem.Parameter{
			"facts": {
				Type:        gollem.TypeArray,
				Description: "Durable facts about the customer worth remembering across conversations, such as preferences, constraints or context. Empty array if the message reveals nothing durable.",
				Items:       &gollem.Parameter{Type: gollem.TypeString},
				Required:    true,
			},
		},
	}

	ssn, err := uc.llmClient.NewSession(ctx,
		gollem.WithSessionContentType(gollem.ContentTypeJSON),
		gollem.WithSessionResponseSchema(schema),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to create session for memory distillation")
	}

	prompt := `Extract durable facts about the customer from this message. A durable fact is a preference, constraint or piece of context that stays useful in future conversations (e.g. "prefers wireless headphones", "has a budget around $200", "owns a small apartment"). Transient content like greetings, one-off questions or this session's logistics is NOT durable. Return {"facts": []} if there is nothing durable.

Message:
` + message

	resp, err := ssn.GenerateContent(ctx, gollem.Text(prompt))
	if err != nil {
		return goerr.Wrap(err, "failed to distill memories")
	}
	if len(resp.Texts) == 0 {
		return nil
	}

	var facts distilledFacts
	if err := json.Unmarshal([]byte(resp.Texts[0]), &facts); err != nil {
		return goerr.Wrap(err, "failed to parse distilled facts",
			goerr.V("response", resp.Texts[0]),
		)
	}

	for _, fact := range facts.Facts {
		if _, err := uc.Remember(ctx, userID, fact); err != nil {
			return err
		}
	}

	return nil
}

func cosine32(a, b []float32) float32 {
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
