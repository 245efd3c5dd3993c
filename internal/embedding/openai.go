package embedding

import (
	"context"
	"fmt"
	"sort"

	"github.com/openai/openai-go"
)

const (
	DefaultModel = "text-embedding-3-large"

	// Provider-side limit on inputs per request.
	maxBatchSize = 512
)

type OpenAIEmbedder struct {
	client    openai.Client
	model     string
	batchSize int
}

var _ Embedder = (*OpenAIEmbedder)(nil)

// NewOpenAIEmbedder reads credentials from the standard OPENAI_* environment
// variables via the client defaults.
func NewOpenAIEmbedder(model string) *OpenAIEmbedder {
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIEmbedder{
		client:    openai.NewClient(),
		model:     model,
		batchSize: maxBatchSize,
	}
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyInput
	}

	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := min(start+e.batchSize, len(texts))

		res, err := e.client.Embeddings.New(ctx, openai.EmbeddingNewParams{
			Input: openai.EmbeddingNewParamsInputUnion{OfArrayOfStrings: texts[start:end]},
			Model: openai.EmbeddingModel(e.model),
		})
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrProvider, err)
		}
		if len(res.Data) != end-start {
			return nil, fmt.Errorf("%w: got %d embeddings for %d inputs", ErrProvider, len(res.Data), end-start)
		}

		// The response carries an index per row; order by it so output rows
		// line up with input order.
		sort.Slice(res.Data, func(i, j int) bool { return res.Data[i].Index < res.Data[j].Index })
		for _, d := range res.Data {
			out = append(out, d.Embedding)
		}
	}

	return out, nil
}
