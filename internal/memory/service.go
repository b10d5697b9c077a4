package memory

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/aletheialabs/aletheia/internal/chunker"
	"github.com/aletheialabs/aletheia/internal/core"
	"github.com/aletheialabs/aletheia/internal/logger"
)

// DefaultTopK is the retrieval result count used when the caller passes a
// non-positive value.
const DefaultTopK = 5

// previewRunes is the length of the metadata text preview.
const previewRunes = 200

// liveSessionSource is the source name recorded for interaction records.
const liveSessionSource = "LiveSession"

// Soft-failure kinds reported through IngestResult. None of them terminate a
// batch; callers decide whether to log, surface or aggregate them.
var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrEmptyDocument   = errors.New("document produced no text")
	ErrNoChunks        = errors.New("document produced no chunks")
	ErrAllChunksFailed = errors.New("no chunk could be embedded")
	ErrStoreWrite      = errors.New("vector store write failed")
)

// IngestResult reports the outcome of one document ingestion. Written counts
// records that reached the store; SkippedChunks counts chunks whose
// embedding failed; Err classifies a document-level soft failure.
type IngestResult struct {
	Written       int
	SkippedChunks int
	Err           error
}

// Service is the document-ingestion and context-retrieval pipeline. The
// vector store and embedder are injected; the service itself holds no global
// state beyond the interaction-title counter.
type Service struct {
	store    core.VectorStore
	embedder core.Embedder
	chunker  *chunker.Chunker

	mu        sync.Mutex
	lastStamp string
	stampSeq  int
}

// NewService builds the pipeline around an opened store and embedder.
func NewService(store core.VectorStore, embedder core.Embedder, ch *chunker.Chunker) *Service {
	return &Service{
		store:    store,
		embedder: embedder,
		chunker:  ch,
	}
}

// IngestDocument reads, chunks, embeds and stores one document. It fails
// soft: every failure mode short of a programming error is reported in the
// result rather than raised, so a batch ingestion continues past one bad
// file. Chunks whose embedding fails are skipped individually; all
// successfully embedded chunks are written in a single batched upsert.
func (s *Service) IngestDocument(ctx context.Context, path, title string, contentType core.ContentType) IngestResult {
	logger.Info("Ingesting %s (title: %s)", path, title)

	text, err := loadFile(path)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFile) {
			logger.Warn("Skipping %s: %v", path, err)
		} else {
			logger.Error("Could not load %s: %v", path, err)
		}
		return IngestResult{Err: err}
	}
	if strings.TrimSpace(text) == "" {
		logger.Warn("No text content loaded from %s, skipping", path)
		return IngestResult{Err: ErrEmptyDocument}
	}

	chunks := s.chunker.Split(text)
	if len(chunks) == 0 {
		logger.Warn("No chunks generated for %s, skipping", title)
		return IngestResult{Err: ErrNoChunks}
	}
	logger.Debug("Generated %d chunks for %s", len(chunks), title)

	fileName := filepath.Base(path)
	records := make([]core.Record, 0, len(chunks))
	skipped := 0

	for _, ch := range chunks {
		vector, err := s.embedder.Embed(ctx, ch.Text)
		if err != nil {
			logger.Warn("Could not embed chunk %d of %s, skipping chunk: %v", ch.Seq, title, err)
			skipped++
			continue
		}
		records = append(records, core.Record{
			ID:     RecordID(title, ch.Seq),
			Vector: vector,
			Text:   ch.Text,
			Metadata: core.Metadata{
				SourceFileName:  fileName,
				DocumentTitle:   title,
				ContentType:     string(contentType),
				ChunkSequenceID: ch.Seq,
				TextPreview:     preview(ch.Text),
			},
		})
	}

	if len(records) == 0 {
		logger.Warn("No valid chunks with embeddings to add for %s", title)
		return IngestResult{SkippedChunks: skipped, Err: ErrAllChunksFailed}
	}

	if err := s.store.Upsert(ctx, records); err != nil {
		logger.Error("Failed to store chunks for %s: %v", title, err)
		return IngestResult{SkippedChunks: skipped, Err: fmt.Errorf("%w: %v", ErrStoreWrite, err)}
	}

	logger.Info("Stored %d chunks from %s", len(records), title)
	return IngestResult{Written: len(records), SkippedChunks: skipped}
}

// LogInteraction formats one user/assistant exchange as a single chunk and
// stores it as live-session memory. Failures are soft: the caller's
// conversation continues either way.
func (s *Service) LogInteraction(ctx context.Context, userText, assistantText string) error {
	now := time.Now()
	ts := now.Format("2006-01-02 15:04:05")
	text := fmt.Sprintf("Interaction at %s:\nUser: %s\nAletheia: %s", ts, userText, assistantText)
	title := s.interactionTitle(now)

	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn("Could not embed interaction %s: %v", title, err)
		return fmt.Errorf("embed interaction: %w", err)
	}

	record := core.Record{
		ID:     RecordID(title, 1),
		Vector: vector,
		Text:   text,
		Metadata: core.Metadata{
			SourceFileName:  liveSessionSource,
			DocumentTitle:   title,
			ContentType:     string(core.ContentLiveInteraction),
			ChunkSequenceID: 1,
			Timestamp:       ts,
		},
	}

	if err := s.store.Upsert(ctx, []core.Record{record}); err != nil {
		logger.Error("Failed to store interaction %s: %v", title, err)
		return fmt.Errorf("%w: %v", ErrStoreWrite, err)
	}

	logger.Debug("Saved interaction %s", title)
	return nil
}

// Retrieve embeds the query and returns the closest stored chunks, best
// match first, at most topK. Retrieval never raises: an empty query, a
// failed embedding or a failed search all degrade to "no context".
func (s *Service) Retrieve(ctx context.Context, query string, filter core.Filter, topK int) []core.ContextRecord {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := s.embedder.Embed(ctx, query)
	if err != nil {
		logger.Warn("Could not embed query, returning no context: %v", err)
		return nil
	}

	matches, err := s.store.Search(ctx, vector, topK, filter)
	if err != nil {
		logger.Error("Vector store query failed, returning no context: %v", err)
		return nil
	}

	records := make([]core.ContextRecord, 0, len(matches))
	for _, m := range matches {
		records = append(records, core.ContextRecord{
			ID:         m.ID,
			Text:       m.Text,
			Metadata:   m.Metadata,
			Similarity: 1 - m.Distance,
		})
	}
	return records
}

// interactionTitle derives a record title from the timestamp at second
// resolution. Interactions within the same second get a monotonic suffix so
// they never silently overwrite each other.
func (s *Service) interactionTitle(now time.Time) string {
	stamp := now.Format("20060102_150405")

	s.mu.Lock()
	defer s.mu.Unlock()
	if stamp == s.lastStamp {
		s.stampSeq++
		return fmt.Sprintf("Interaction_%s_%d", stamp, s.stampSeq)
	}
	s.lastStamp = stamp
	s.stampSeq = 1
	return "Interaction_" + stamp
}

// SanitizeTitle maps every non-alphanumeric rune to an underscore. The
// mapping must stay byte-compatible with previously stored record IDs.
func SanitizeTitle(title string) string {
	var b strings.Builder
	b.Grow(len(title))
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// RecordID builds the deterministic record ID for a chunk of a titled
// document. IDs are unique within one document's chunk set; re-ingesting the
// same title produces the same IDs and therefore overwrites.
func RecordID(title string, seq int) string {
	return fmt.Sprintf("%s_chunk_%d", SanitizeTitle(title), seq)
}

func preview(text string) string {
	runes := []rune(text)
	if len(runes) > previewRunes {
		runes = runes[:previewRunes]
	}
	return string(runes) + "..."
}
