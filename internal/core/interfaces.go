package core

import "context"

// Embedder turns a piece of text into a fixed-dimension vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// Dimensions returns the vector dimension produced by this embedder.
	Dimensions() int
}

// Completer produces a chat completion for a composed prompt.
type Completer interface {
	Complete(ctx context.Context, prompt, systemPrompt string) (string, error)
}

// VectorStore persists embedded chunks and serves nearest-neighbour queries.
// Upsert writes a batch atomically: either every record lands or none do.
type VectorStore interface {
	Upsert(ctx context.Context, records []Record) error
	Search(ctx context.Context, vector []float32, topK int, filter Filter) ([]Match, error)
	Close() error
}
