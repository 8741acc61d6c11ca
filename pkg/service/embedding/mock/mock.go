package mock

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
	"sync"
)

// Adapter is a deterministic embedder for tests. Each token is hashed onto a
// few vector positions, so texts sharing words produce similar vectors and
// unrelated texts do not. No network, no randomness.
type Adapter struct {
	dimension int

	mu    sync.Mutex
	calls int
	fail  error
}

func New(dimension int) *Adapter {
	if dimension <= 0 {
		dimension = 64
	}
	return &Adapter{dimension: dimension}
}

// SetError makes every subsequent Embed call fail with err. Pass nil to
// restore normal behavior.
func (x *Adapter) SetError(err error) {
	x.mu.Lock()
	defer x.mu.Unlock()
	x.fail = err
}

// Calls returns how many times Embed has been invoked
func (x *Adapter) Calls() int {
	x.mu.Lock()
	defer x.mu.Unlock()
	return x.calls
}

func (x *Adapter) Dimension() int {
	return x.dimension
}

func (x *Adapter) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	x.mu.Lock()
	x.calls++
	fail := x.fail
	x.mu.Unlock()

	if fail != nil {
		return nil, fail
	}

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vectors[i] = x.embedOne(text)
	}
	return vectors, nil
}

func (x *Adapter) embedOne(text string) []float32 {
	vec := make([]float32, x.dimension)

	for _, token := range tokenize(text) {
		h := fnv.New64a()
		h.Write([]byte(token))
		sum := h.Sum64()

		// spread each token over 3 positions with signed weights
		for k := 0; k < 3; k++ {
			pos := int((sum >> (k * 16)) % uint64(x.dimension))
			weight := float32(1.0)
			if (sum>>(k*16+15))&1 == 1 {
				weight = -1.0
			}
			vec[pos] += weight
		}
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		inv := float32(1 / math.Sqrt(norm))
		for i := range vec {
			vec[i] *= inv
		}
	}

	return vec
}

func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !('a' <= r && r <= 'z' || '0' <= r && r <= '9')
	})

	var tokens []string
	for _, f := range fields {
		if len(f) > 2 {
			tokens = append(tokens, f)
		}
	}
	return tokens
}
