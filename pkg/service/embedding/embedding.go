package embedding

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"

	"github.com/agentic-store/concierge/pkg/domain/model"
)

// Adapter converts text into embedding vectors
type Adapter interface {
	// Embed returns one vector per input text, in input order. All vectors
	// have Dimension() elements.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Dimension() int
}

// Client is an Adapter backed by a gollem LLM client
type Client struct {
	llm       gollem.LLMClient
	dimension int
}

var _ Adapter = (*Client)(nil)

// New creates an embedding adapter with the default dimension
func New(llm gollem.LLMClient) *Client {
	return &Client{
		llm:       llm,
		dimension: model.EmbeddingDimension,
	}
}

func (x *Client) Dimension() int {
	return x.dimension
}

func (x *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	raw, err := x.llm.GenerateEmbedding(ctx, x.dimension, texts)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate embeddings", goerr.V("count", len(texts)))
	}
	if len(raw) != len(texts) {
		return nil, goerr.New("embedding count mismatch",
			goerr.V("want", len(texts)),
			goerr.V("got", len(raw)),
		)
	}

	vectors := make([][]float32, len(raw))
	for i, v := range raw {
		vec := make([]float32, len(v))
		for j, f := range v {
			vec[j] = float32(f)
		}
		vectors[i] = vec
	}

	return vectors, nil
}
