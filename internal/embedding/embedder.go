// Package embedding wraps the external embedding provider behind a batch
// interface. Callers own retry policy; this package never retries.
package embedding

import (
	"context"
	"errors"
)

var (
	// ErrEmptyInput is returned before any provider call when there is
	// nothing to embed.
	ErrEmptyInput = errors.New("embedding: no input texts")

	// ErrProvider wraps transport and auth failures from the provider.
	ErrProvider = errors.New("embedding: provider request failed")
)

// Embedder maps texts to fixed-length vectors, one row per input, preserving
// input order.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float64, error)
}
