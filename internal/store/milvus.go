package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/milvus-io/milvus/client/v2/column"
	"github.com/milvus-io/milvus/client/v2/entity"
	"github.com/milvus-io/milvus/client/v2/index"
	"github.com/milvus-io/milvus/client/v2/milvusclient"

	"github.com/aletheialabs/aletheia/internal/core"
	"github.com/aletheialabs/aletheia/internal/logger"
)

// Field names for the memory collection.
const (
	FieldID        = "id"
	FieldText      = "text"
	FieldMetadata  = "metadata"
	FieldCreatedAt = "created_at"
	FieldVector    = "vector"
)

// DefaultCollection is the logical name of Aletheia's memory collection.
const DefaultCollection = "aletheia_memory"

const (
	idMaxLength   = "255"
	textMaxLength = "65535"
)

// MilvusStore is a vector store backed by a Milvus collection. Records are
// keyed by their string ID, so re-ingesting a document with the same title
// overwrites its previous chunks.
type MilvusStore struct {
	client     *milvusclient.Client
	collection string
	dim        int
}

// NewMilvus connects to Milvus and ensures the memory collection exists and
// is loaded.
func NewMilvus(ctx context.Context, addr, collection string, dim int) (*MilvusStore, error) {
	if collection == "" {
		collection = DefaultCollection
	}
	logger.Info("Connecting to Milvus at %s (collection %s, dim %d)", addr, collection, dim)

	c, err := milvusclient.New(ctx, &milvusclient.ClientConfig{Address: addr})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Milvus: %w", err)
	}

	s := &MilvusStore{client: c, collection: collection, dim: dim}
	if err := s.ensureCollection(ctx); err != nil {
		_ = c.Close(ctx)
		return nil, err
	}
	return s, nil
}

// ensureCollection creates the memory collection with its index if missing
// and loads it for search.
func (s *MilvusStore) ensureCollection(ctx context.Context) error {
	exists, err := s.client.HasCollection(ctx, milvusclient.NewHasCollectionOption(s.collection))
	if err != nil {
		return fmt.Errorf("failed to check if collection exists: %w", err)
	}

	if !exists {
		schema := &entity.Schema{
			CollectionName: s.collection,
			Description:    "Aletheia long-term memory chunks",
			Fields: []*entity.Field{
				{
					Name:       FieldID,
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					AutoID:     false,
					TypeParams: map[string]string{"max_length": idMaxLength},
				},
				{
					Name:       FieldText,
					DataType:   entity.FieldTypeVarChar,
					TypeParams: map[string]string{"max_length": textMaxLength},
				},
				{
					Name:     FieldMetadata,
					DataType: entity.FieldTypeJSON,
				},
				{
					Name:     FieldCreatedAt,
					DataType: entity.FieldTypeInt64,
				},
				{
					Name:       FieldVector,
					DataType:   entity.FieldTypeFloatVector,
					TypeParams: map[string]string{"dim": fmt.Sprintf("%d", s.dim)},
				},
			},
		}

		if err := s.client.CreateCollection(ctx, milvusclient.NewCreateCollectionOption(s.collection, schema)); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		vecIdx := index.NewHNSWIndex(entity.COSINE, 16, 200)
		if _, err := s.client.CreateIndex(ctx, milvusclient.NewCreateIndexOption(s.collection, FieldVector, vecIdx)); err != nil {
			return fmt.Errorf("failed to create index on vector field: %w", err)
		}

		logger.Info("Created collection: %s", s.collection)
	}

	if _, err := s.client.LoadCollection(ctx, milvusclient.NewLoadCollectionOption(s.collection)); err != nil {
		return fmt.Errorf("failed to load collection %s: %w", s.collection, err)
	}
	return nil
}

// Upsert writes a batch of records in a single call. Records sharing an ID
// with previously stored ones replace them.
func (s *MilvusStore) Upsert(ctx context.Context, records []core.Record) error {
	if len(records) == 0 {
		return nil
	}

	ids := make([]string, len(records))
	texts := make([]string, len(records))
	metas := make([][]byte, len(records))
	created := make([]int64, len(records))
	vectors := make([][]float32, len(records))

	now := nowUnix()
	for i, r := range records {
		meta, err := json.Marshal(r.Metadata)
		if err != nil {
			return fmt.Errorf("failed to encode metadata for %s: %w", r.ID, err)
		}
		ids[i] = r.ID
		texts[i] = r.Text
		metas[i] = meta
		created[i] = now
		vectors[i] = r.Vector
	}

	columns := []column.Column{
		column.NewColumnVarChar(FieldID, ids),
		column.NewColumnVarChar(FieldText, texts),
		column.NewColumnJSONBytes(FieldMetadata, metas),
		column.NewColumnInt64(FieldCreatedAt, created),
		column.NewColumnFloatVector(FieldVector, s.dim, vectors),
	}

	if _, err := s.client.Upsert(ctx, milvusclient.NewColumnBasedInsertOption(s.collection, columns...)); err != nil {
		return fmt.Errorf("failed to upsert %d records: %w", len(records), err)
	}
	return nil
}

// Search runs a nearest-neighbour query and returns matches with cosine
// distances. Milvus reports COSINE scores as similarities, so they are
// converted back to distances to keep the store contract uniform.
func (s *MilvusStore) Search(ctx context.Context, vector []float32, topK int, filter core.Filter) ([]core.Match, error) {
	if topK <= 0 {
		topK = 5
	}

	opt := milvusclient.NewSearchOption(s.collection, topK, []entity.Vector{entity.FloatVector(vector)}).
		WithANNSField(FieldVector).
		WithOutputFields(FieldText, FieldMetadata)
	if expr := filterExpr(filter); expr != "" {
		opt = opt.WithFilter(expr)
	}

	resultSets, err := s.client.Search(ctx, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to execute search: %w", err)
	}

	var matches []core.Match
	for _, rs := range resultSets {
		textCol := rs.GetColumn(FieldText)
		metaCol, _ := rs.GetColumn(FieldMetadata).(*column.ColumnJSONBytes)

		for i := 0; i < rs.ResultCount; i++ {
			id, err := rs.IDs.GetAsString(i)
			if err != nil {
				logger.Warn("Skipping search hit with unreadable id: %v", err)
				continue
			}

			text := ""
			if textCol != nil {
				text, _ = textCol.GetAsString(i)
			}

			var meta core.Metadata
			if metaCol != nil && i < len(metaCol.Data()) {
				if err := json.Unmarshal(metaCol.Data()[i], &meta); err != nil {
					logger.Warn("Unreadable metadata for record %s: %v", id, err)
				}
			}

			score := float32(0)
			if i < len(rs.Scores) {
				score = rs.Scores[i]
			}

			matches = append(matches, core.Match{
				ID:       id,
				Text:     text,
				Metadata: meta,
				Distance: 1 - score,
			})
		}
	}

	return matches, nil
}

// Close closes the connection to Milvus.
func (s *MilvusStore) Close() error {
	return s.client.Close(context.Background())
}

// filterExpr renders a metadata-equality filter as a Milvus boolean
// expression over the JSON metadata field.
func filterExpr(filter core.Filter) string {
	if len(filter) == 0 {
		return ""
	}

	keys := make([]string, 0, len(filter))
	for k := range filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	terms := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.ReplaceAll(filter[k], `"`, `\"`)
		terms = append(terms, fmt.Sprintf(`%s["%s"] == "%s"`, FieldMetadata, k, v))
	}
	return strings.Join(terms, " and ")
}
