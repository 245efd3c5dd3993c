// Package enrich produces the per-posting LLM content attached to match
// results: a cover letter draft and the skills gap analysis.
package enrich

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Generator produces free-form text from a prompt. Implementations wrap one
// LLM provider.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

type OpenAIGenerator struct {
	llm *openai.LLM
}

var _ Generator = (*OpenAIGenerator)(nil)

// NewOpenAIGenerator reads credentials from the standard OPENAI_* environment
// variables.
func NewOpenAIGenerator(model string) (*OpenAIGenerator, error) {
	opts := []openai.Option{}
	if model != "" {
		opts = append(opts, openai.WithModel(model))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("init llm client: %w", err)
	}
	return &OpenAIGenerator{llm: llm}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt)
	if err != nil {
		return "", fmt.Errorf("llm generation: %w", err)
	}
	return out, nil
}
