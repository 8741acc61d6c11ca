package intent

import (
	"context"
	"math"
	"strings"
	"sync"

	"github.com/m-mizutani/goerr/v2"

	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/service/embedding"
	"github.com/agentic-store/concierge/pkg/utils/logging"
)

// DefaultMargin is how far the best exemplar similarity must exceed the
// runner-up before the semantic tier is trusted.
const DefaultMargin = 0.08

// exemplars anchor each classifiable intent in embedding space. The centroid
// of each group is compared against the incoming message.
var exemplars = map[types.IntentKind][]string{
	types.IntentProductSearch: {
		"I'm looking for wireless earbuds",
		"show me laptops under 500 dollars",
		"can you recommend a good coffee maker",
		"do you have any running shoes",
		"what kitchen appliances do you sell",
	},
	types.IntentIssueReport: {
		"the checkout page is broken",
		"I got an error when paying",
		"my order never arrived",
		"the app keeps crashing on login",
		"I want to complain about a damaged delivery",
	},
	types.IntentGeneral: {
		"hello, how are you",
		"what are your opening hours",
		"thanks for the help",
		"tell me about your return policy",
		"who are you",
	},
}

var issueKeywords = []string{
	"broken", "not working", "doesn't work", "does not work",
	"error", "bug", "crash", "crashes", "crashed",
	"complaint", "complain", "failed", "failure", "faulty",
	"damaged", "defective", "never arrived", "wrong item",
}

var searchKeywords = []string{
	"find", "show me", "looking for", "look for", "search",
	"recommend", "suggestion", "suggest", "buy", "purchase",
	"product", "price", "cost", "cheap", "affordable",
	"do you have", "do you sell", "i need", "i want",
}

// Router classifies user messages into intents. Explicit product references
// and issue keywords are decided lexically; the rest goes through exemplar
// embedding similarity with a lexical fallback when the margin is too thin or
// the embedding service is down.
type Router struct {
	embedder embedding.Adapter
	margin   float32

	once      sync.Once
	onceErr   error
	centroids map[types.IntentKind][]float32
}

type Option func(*Router)

func WithMargin(margin float32) Option {
	return func(r *Router) { r.margin = margin }
}

func New(embedder embedding.Adapter, opts ...Option) *Router {
	r := &Router{
		embedder: embedder,
		margin:   DefaultMargin,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// historyTieBreak is how many recent user turns are scanned when the message
// alone is inconclusive
const historyTieBreak = 4

// Classify determines the intent of a user message given the recent session
// history. It never fails: when the embedding service is unavailable it falls
// back to lexical rules alone.
func (r *Router) Classify(ctx context.Context, message string, history []model.ConversationTurn) types.Intent {
	trimmed := strings.TrimSpace(message)
	lower := strings.ToLower(trimmed)

	if id, ok := ExtractProductID(trimmed); ok {
		return types.NewProductLookup(id)
	}

	for _, kw := range issueKeywords {
		if strings.Contains(lower, kw) {
			return types.NewIssueReport(trimmed)
		}
	}

	if kind, ok := r.classifySemantic(ctx, trimmed); ok {
		switch kind {
		case types.IntentProductSearch:
			return types.NewProductSearch(trimmed)
		case types.IntentIssueReport:
			return types.NewIssueReport(trimmed)
		case types.IntentGeneral:
			return types.NewGeneral(trimmed)
		}
	}

	for _, kw := range searchKeywords {
		if strings.Contains(lower, kw) {
			return types.NewProductSearch(trimmed)
		}
	}

	// an inconclusive follow-up inherits a recent search topic
	for i, seen := len(history)-1, 0; i >= 0 && seen < historyTieBreak; i-- {
		turn := history[i]
		if turn.Role != types.RoleUser {
			continue
		}
		seen++

		prev := strings.ToLower(turn.Content)
		for _, kw := range searchKeywords {
			if strings.Contains(prev, kw) {
				return types.NewProductSearch(trimmed)
			}
		}
	}

	return types.NewGeneral(trimmed)
}

// classifySemantic compares the message embedding against per-intent exemplar
// centroids. It abstains (ok=false) when the winner does not beat the
// runner-up by the configured margin.
func (r *Router) classifySemantic(ctx context.Context, message string) (types.IntentKind, bool) {
	if err := r.ensureCentroids(ctx); err != nil {
		logging.From(ctx).Warn("intent exemplar embedding unavailable, using lexical rules", "error", err)
		return "", false
	}

	vecs, err := r.embedder.Embed(ctx, []string{message})
	if err != nil {
		logging.From(ctx).Warn("failed to embed message for intent routing", "error", err)
		return "", false
	}

	var best, second float32
	var bestKind types.IntentKind
	best, second = -1, -1
	for kind, centroid := range r.centroids {
		score := cosineSimilarity(vecs[0], centroid)
		if score > best {
			second = best
			best = score
			bestKind = kind
		} else if score > second {
			second = score
		}
	}

	if best-second < r.margin {
		return "", false
	}
	return bestKind, true
}

func (r *Router) ensureCentroids(ctx context.Context) error {
	r.once.Do(func() {
		centroids := make(map[types.IntentKind][]float32, len(exemplars))
		for kind, texts := range exemplars {
			vecs, err := r.embedder.Embed(ctx, texts)
			if err != nil {
				r.onceErr = goerr.Wrap(err, "failed to embed intent exemplars", goerr.V("kind", kind))
				return
			}

			centroid := make([]float32, r.embedder.Dimension())
			for _, v := range vecs {
				for i := range v {
					centroid[i] += v[i]
				}
			}
			for i := range centroid {
				centroid[i] /= float32(len(vecs))
			}
			centroids[kind] = centroid
		}
		r.centroids = centroids
	})
	return r.onceErr
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
