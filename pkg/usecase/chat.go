package usecase

import (
	"context"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/service/intent"
	"github.com/agentic-store/concierge/pkg/service/retrieval"
	"github.com/agentic-store/concierge/pkg/utils/errutil"
	"github.com/agentic-store/concierge/pkg/utils/logging"
)

// issueAckReply is the fixed acknowledgment for a filed issue. It does not go
// through the LLM.
const issueAckReply = "Thanks for letting us know. I've recorded the issue and our support team will look into it."

// maxMessageLength rejects pathologically long chat messages
const maxMessageLength = 4000

// ChatResult is the outcome of one chat turn. The reply text is serialized
// under the "response" key, which clients depend on.
type ChatResult struct {
	Reply    string           `json:"response"`
	Intent   types.IntentKind `json:"intent"`
	Products []model.Product  `json:"products,omitempty"`
	IssueID  model.IssueID    `json:"issue_id,omitempty"`
}

// Chat runs one conversational turn: classify, retrieve, compose, rewrite
// links and record the exchange. Turns within a session are serialized;
// different sessions proceed concurrently. Downstream failures degrade the
// reply but only validation problems return an error.
func (uc *UseCases) Chat(ctx context.Context, userID, sessionID, message string) (*ChatResult, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, goerr.Wrap(types.ErrValidation, "message must not be empty")
	}
	if len(message) > maxMessageLength {
		return nil, goerr.Wrap(types.ErrValidation, "message too long",
			goerr.V("length", len(message)),
		)
	}
	if userID == "" {
		return nil, goerr.Wrap(types.ErrValidation, "user ID must not be empty")
	}
	if sessionID == "" {
		sessionID = userID
	}

	unlock := uc.sessions.Lock(sessionID)
	defer unlock()

	it := uc.router.Classify(ctx, message, uc.sessions.History(sessionID))

	result := &ChatResult{Intent: it.Kind}

	switch it.Kind {
	case types.IntentIssueReport:
		issue, err := uc.FileIssue(ctx, userID, it.Text)
		if err != nil {
			errutil.Handle(ctx, err, "failed to record reported issue")
			result.Reply = ApologyReply
		} else {
			result.IssueID = issue.ID
			result.Reply = issueAckReply
		}

	case types.IntentProductLookup:
		var products []model.Product
		if p, err := uc.retriever.Lookup(it.ProductID); err == nil {
			products = []model.Product{*p}
		} else {
			logging.From(ctx).Info("referenced product not in catalog", "product_id", it.ProductID)
		}
		result.Products = products
		result.Reply = uc.generateTurnReply(ctx, userID, sessionID, message, products)

	case types.IntentProductSearch:
		products := uc.searchCatalog(ctx, it.Query)
		result.Products = products
		result.Reply = uc.generateTurnReply(ctx, userID, sessionID, message, products)

	default:
		result.Reply = uc.generateTurnReply(ctx, userID, sessionID, message, nil)
	}

	result.Reply = RewriteProductLinks(result.Reply, uc.baseURL, func(id int64) bool {
		_, err := uc.retriever.Lookup(id)
		return err == nil
	})

	now := time.Now().UTC()
	uc.sessions.Append(sessionID, model.ConversationTurn{
		Role: types.RoleUser, Content: message, Timestamp: now,
	})
	uc.sessions.Append(sessionID, model.ConversationTurn{
		Role: types.RoleAssistant, Content: result.Reply, Timestamp: now,
	})

	if uc.dispatcher != nil && it.Kind != types.IntentIssueReport {
		uc.dispatcher.Submit(ctx, "memory-distill", func(ctx context.Context) error {
			return uc.distillMemories(ctx, userID, message)
		})
	}

	return result, nil
}

// searchCatalog runs a filtered semantic search, degrading to no results when
// the index is unavailable.
func (uc *UseCases) searchCatalog(ctx context.Context, query string) []model.Product {
	if err := uc.builder.EnsureIndex(ctx); err != nil {
		errutil.Handle(ctx, err, "catalog index rebuild failed, serving previous snapshot")
	}

	var filters retrieval.Filters
	if minPrice, maxPrice, ok := intent.ExtractPriceRange(query); ok {
		filters.MinPrice = minPrice
		filters.MaxPrice = maxPrice
	}
	filters.Category = intent.ExtractCategory(query, uc.retriever.Categories())

	results, err := uc.retriever.Search(ctx, query, filters)
	if err != nil {
		errutil.Handle(ctx, err, "catalog search degraded")
		return nil
	}

	products := make([]model.Product, 0, len(results))
	for _, r := range results {
		products = append(products, r.Product)
	}
	return products
}

// generateTurnReply recalls memories, composes the reply and falls back to
// the fixed apology when generation fails.
func (uc *UseCases) generateTurnReply(ctx context.Context, userID, sessionID, message string, products []model.Product) string {
	memories := uc.RecallRelevant(ctx, userID, message)

	reply, err := uc.composeReply(ctx, composeInput{
		Message:  message,
		History:  uc.sessions.History(sessionID),
		Memories: memories,
		Products: products,
	})
	if err != nil {
		errutil.Handle(ctx, err, "reply generation failed, returning apology")
	}
	return reply
}
