package usecase

import (
	"time"

	"github.com/m-mizutani/gollem"

	"github.com/agentic-store/concierge/pkg/domain/interfaces"
	"github.com/agentic-store/concierge/pkg/service/embedding"
	"github.com/agentic-store/concierge/pkg/service/index"
	"github.com/agentic-store/concierge/pkg/service/intent"
	"github.com/agentic-store/concierge/pkg/service/retrieval"
	"github.com/agentic-store/concierge/pkg/service/session"
	"github.com/agentic-store/concierge/pkg/utils/async"
)

const (
	defaultGenerateTimeout = 15 * time.Second
	defaultGenerateRetries = 2
	defaultRecallLimit     = 3
)

// UseCases wires the chat pipeline together
type UseCases struct {
	repo       interfaces.Repository
	llmClient  gollem.LLMClient
	embedder   embedding.Adapter
	builder    *index.Builder
	retriever  *retrieval.Engine
	router     *intent.Router
	sessions   *session.Store
	dispatcher *async.Dispatcher

	baseURL         string
	generateTimeout time.Duration
	generateRetries int
	recallLimit     int
}

type Option func(*UseCases)

// WithBaseURL sets the absolute base URL used when rewriting product links
func WithBaseURL(baseURL string) Option {
	return func(uc *UseCases) {
		uc.baseURL = baseURL
	}
}

// WithGenerateTimeout bounds a single reply generation including retries
func WithGenerateTimeout(d time.Duration) Option {
	return func(uc *UseCases) {
		uc.generateTimeout = d
	}
}

// WithGenerateRetries sets how many times generation is retried after the
// first failure
func WithGenerateRetries(n int) Option {
	return func(uc *UseCases) {
		uc.generateRetries = n
	}
}

// WithRecallLimit caps how many long-term memories are recalled per turn
func WithRecallLimit(n int) Option {
	return func(uc *UseCases) {
		uc.recallLimit = n
	}
}

// WithDispatcher sets the background dispatcher for memory distillation
func WithDispatcher(d *async.Dispatcher) Option {
	return func(uc *UseCases) {
		uc.dispatcher = d
	}
}

func New(
	repo interfaces.Repository,
	llmClient gollem.LLMClient,
	embedder embedding.Adapter,
	builder *index.Builder,
	retriever *retrieval.Engine,
	router *intent.Router,
	opts ...Option,
) *UseCases {
	uc := &UseCases{
		repo:            repo,
		llmClient:       llmClient,
		embedder:        embedder,
		builder:         builder,
		retriever:       retriever,
		router:          router,
		sessions:        session.New(),
		generateTimeout: defaultGenerateTimeout,
		generateRetries: defaultGenerateRetries,
		recallLimit:     defaultRecallLimit,
	}

	for _, opt := range opts {
		opt(uc)
	}

	return uc
}

// Sessions exposes the session store, mainly for the HTTP layer and tests
func (uc *UseCases) Sessions() *session.Store {
	return uc.sessions
}

// Retriever exposes the retrieval engine for catalog read endpoints
func (uc *UseCases) Retriever() *retrieval.Engine {
	return uc.retriever
}
