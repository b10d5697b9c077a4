package store

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/aletheialabs/aletheia/internal/core"
)

func nowUnix() int64 { return time.Now().Unix() }

// MemoryStore is a non-persistent brute-force vector store. It backs the
// degraded mode entered when Milvus is unreachable at startup, and doubles
// as the store used by tests.
type MemoryStore struct {
	mu      sync.RWMutex
	dim     int
	records map[string]core.Record
}

// NewMemory creates an empty in-memory store expecting vectors of the given
// dimension. A non-positive dimension is adopted from the first upsert.
func NewMemory(dim int) *MemoryStore {
	return &MemoryStore{
		dim:     dim,
		records: make(map[string]core.Record),
	}
}

// Upsert stores a batch of records, replacing any with matching IDs. The
// whole batch is validated before anything is written, so a failed call
// leaves the store untouched.
func (s *MemoryStore) Upsert(ctx context.Context, records []core.Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range records {
		if s.dim <= 0 {
			s.dim = len(r.Vector)
		}
		if len(r.Vector) != s.dim {
			return fmt.Errorf("vector dimension mismatch for %s: expected %d, got %d", r.ID, s.dim, len(r.Vector))
		}
	}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return nil
}

// Search scans every stored record and returns the topK closest by cosine
// distance, optionally restricted by a metadata-equality filter.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, topK int, filter core.Filter) ([]core.Match, error) {
	if topK <= 0 {
		topK = 5
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	matches := make([]core.Match, 0, len(s.records))
	for _, r := range s.records {
		if !matchesFilter(r.Metadata, filter) {
			continue
		}
		matches = append(matches, core.Match{
			ID:       r.ID,
			Text:     r.Text,
			Metadata: r.Metadata,
			Distance: cosineDistance(vector, r.Vector),
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Distance != matches[j].Distance {
			return matches[i].Distance < matches[j].Distance
		}
		return matches[i].ID < matches[j].ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Get returns a stored record by ID.
func (s *MemoryStore) Get(id string) (core.Record, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.records[id]
	return r, ok
}

func matchesFilter(meta core.Metadata, filter core.Filter) bool {
	for k, want := range filter {
		got, ok := meta.Field(k)
		if !ok || got != want {
			return false
		}
	}
	return true
}

// cosineDistance returns 1 - cosine similarity. Orthogonal or zero vectors
// yield the maximum distance of 1.
func cosineDistance(a, b []float32) float32 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 1
	}
	return float32(1 - dot/(math.Sqrt(normA)*math.Sqrt(normB)))
}
