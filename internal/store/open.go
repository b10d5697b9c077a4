package store

import (
	"context"

	"github.com/aletheialabs/aletheia/internal/core"
	"github.com/aletheialabs/aletheia/internal/logger"
)

// Handle is an opened vector store plus the information whether it is the
// persistent Milvus collection or the in-memory fallback.
type Handle struct {
	Store      core.VectorStore
	Persistent bool
}

// Open connects to Milvus and falls back to a fresh in-memory store when the
// connection or collection setup fails. Ingestion and retrieval stay callable
// either way; in degraded mode nothing survives the process.
func Open(ctx context.Context, addr, collection string, dim int) Handle {
	milvus, err := NewMilvus(ctx, addr, collection, dim)
	if err != nil {
		logger.Warn("Milvus unavailable at %s, continuing with in-memory store: %v", addr, err)
		return Handle{Store: NewMemory(dim), Persistent: false}
	}
	return Handle{Store: milvus, Persistent: true}
}
