package usecase_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/m-mizutani/gollem"
	"github.com/m-mizutani/gt"

	"github.com/agentic-store/concierge/pkg/domain/interfaces"
	"github.com/agentic-store/concierge/pkg/domain/model"
	"github.com/agentic-store/concierge/pkg/domain/types"
	"github.com/agentic-store/concierge/pkg/repository/memory"
	"github.com/agentic-store/concierge/pkg/service/embedding/mock"
	"github.com/agentic-store/concierge/pkg/service/index"
	"github.com/agentic-store/concierge/pkg/service/intent"
	"github.com/agentic-store/concierge/pkg/service/retrieval"
	"github.com/agentic-store/concierge/pkg/usecase"
)

const testCSV = `product_id,product_name,description,price,category
1,Wireless Earbuds,True wireless earbuds with noise cancellation and wireless charging,79.99,Audio
2,Bluetooth Speaker,Portable bluetooth speaker with deep bass,49.50,Audio
3,Espresso Machine,Compact espresso machine for home baristas,249.00,Kitchen
`

// mockLLMSession is a mock gollem Session for testing
type mockLLMSession struct {
	generateContentFn func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error)
}

func (s *mockLLMSession) GenerateContent(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
	if s.generateContentFn != nil {
		return s.generateContentFn(ctx, input...)
	}
	return &gollem.Response{
		Texts: []string{"Happy to help with that."},
	}, nil
}

func (s *mockLLMSession) GenerateStream(ctx context.Context, input ...gollem.Input) (<-chan *gollem.Response, error) {
	return nil, nil
}

func (s *mockLLMSession) Generate(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (*gollem.Response, error) {
	return s.GenerateContent(ctx, input...)
}

func (s *mockLLMSession) Stream(ctx context.Context, input []gollem.Input, opts ...gollem.GenerateOption) (<-chan *gollem.Response, error) {
	return s.GenerateStream(ctx, input...)
}

func (s *mockLLMSession) History() (*gollem.History, error) {
	return nil, nil
}

func (s *mockLLMSession) AppendHistory(*gollem.History) error {
	return nil
}

func (s *mockLLMSession) CountToken(ctx context.Context, input ...gollem.Input) (int, error) {
	return 0, nil
}

// mockLLMClient is a mock gollem LLMClient for testing
type mockLLMClient struct {
	newSessionFn func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error)
}

func (c *mockLLMClient) NewSession(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
	if c.newSessionFn != nil {
		return c.newSessionFn(ctx, options...)
	}
	return &mockLLMSession{}, nil
}

func (c *mockLLMClient) GenerateEmbedding(ctx context.Context, dimension int, input []string) ([][]float64, error) {
	return nil, nil
}

func replyWith(text string) *mockLLMClient {
	return &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					return &gollem.Response{Texts: []string{text}}, nil
				},
			}, nil
		},
	}
}

func newTestUseCases(t *testing.T, repo interfaces.Repository, llm gollem.LLMClient, opts ...usecase.Option) *usecase.UseCases {
	t.Helper()

	catalog, err := model.LoadCatalog(strings.NewReader(testCSV))
	gt.NoError(t, err).Required()

	embedder := mock.New(64)
	builder := index.New(embedder, catalog)
	gt.NoError(t, builder.EnsureIndex(context.Background())).Required()

	retriever := retrieval.New(builder, embedder, catalog)
	router := intent.New(embedder)

	opts = append([]usecase.Option{
		usecase.WithBaseURL("https://shop.example.com"),
	}, opts...)

	return usecase.New(repo, llm, embedder, builder, retriever, router, opts...)
}

func TestChatProductSearch(t *testing.T) {
	repo := memory.New()
	llm := replyWith("You might like the Wireless Earbuds [product:1], they charge wirelessly too.")
	uc := newTestUseCases(t, repo, llm)
	ctx := context.Background()

	result, err := uc.Chat(ctx, "user-1", "sess-1", "I'm looking for wireless earbuds")
	gt.NoError(t, err).Required()

	gt.Value(t, result.Intent).Equal(types.IntentProductSearch)
	gt.Bool(t, len(result.Products) > 0).True()
	gt.Value(t, result.Products[0].ID).Equal(int64(1))
	gt.String(t, result.Reply).Contains("https://shop.example.com/products/1")
	gt.String(t, result.Reply).NotContains("[product:")

	// both turns recorded in the session window
	history := uc.Sessions().History("sess-1")
	gt.Array(t, history).Length(2)
	gt.Value(t, history[0].Role).Equal(types.RoleUser)
	gt.Value(t, history[1].Role).Equal(types.RoleAssistant)
}

func TestChatIssueReport(t *testing.T) {
	repo := memory.New()
	uc := newTestUseCases(t, repo, &mockLLMClient{})
	ctx := context.Background()

	result, err := uc.Chat(ctx, "user-1", "sess-1", "The checkout page is broken")
	gt.NoError(t, err).Required()

	gt.Value(t, result.Intent).Equal(types.IntentIssueReport)
	gt.String(t, string(result.IssueID)).NotEqual("")
	gt.String(t, result.Reply).Contains("recorded")

	issues, err := repo.Issue().List(ctx)
	gt.NoError(t, err).Required()
	gt.Array(t, issues).Length(1)
	gt.Value(t, issues[0].Status).Equal(types.IssueStatusPending)
	gt.Value(t, issues[0].UserID).Equal("user-1")
	gt.Value(t, issues[0].Description).Equal("The checkout page is broken")
}

func TestChatGenerationFailure(t *testing.T) {
	repo := memory.New()
	attempts := 0
	llm := &mockLLMClient{
		newSessionFn: func(ctx context.Context, options ...gollem.SessionOption) (gollem.Session, error) {
			return &mockLLMSession{
				generateContentFn: func(ctx context.Context, input ...gollem.Input) (*gollem.Response, error) {
					attempts++
					return nil, errors.New("model overloaded")
				},
			}, nil
		},
	}
	uc := newTestUseCases(t, repo, llm)
	ctx := context.Background()

	result, err := uc.Chat(ctx, "user-1", "sess-1", "hello there")
	gt.NoError(t, err).Required()

	gt.Value(t, result.Reply).Equal(usecase.ApologyReply)
	// first attempt plus two retries
	gt.Value(t, attempts).Equal(3)
}

func TestChatProductLookup(t *testing.T) {
	repo := memory.New()
	llm := replyWith("The Espresso Machine [product:3] makes a great cup.")
	uc := newTestUseCases(t, repo, llm)
	ctx := context.Background()

	result, err := uc.Chat(ctx, "user-1", "sess-1", "tell me about product 3")
	gt.NoError(t, err).Required()

	gt.Value(t, result.Intent).Equal(types.IntentProductLookup)
	gt.Array(t, result.Products).Length(1)
	gt.Value(t, result.Products[0].Name).Equal("Espresso Machine")
	gt.String(t, result.Reply).Contains("https://shop.example.com/products/3")
}

func TestChatValidation(t *testing.T) {
	repo := memory.New()
	uc := newTestUseCases(t, repo, &mockLLMClient{})
	ctx := context.Background()

	_, err := uc.Chat(ctx, "user-1", "sess-1", "   ")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrValidation)).True()

	_, err = uc.Chat(ctx, "", "sess-1", "hello")
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrValidation)).True()

	_, err = uc.Chat(ctx, "user-1", "sess-1", strings.Repeat("a", 5000))
	gt.Error(t, err)
	gt.Bool(t, errors.Is(err, types.ErrValidation)).True()
}
