package core

import "fmt"

// ContentType tags a document with its role in Aletheia's memory. Tags are a
// closed set, validated at the ingestion boundary; the string values match the
// tags used by previously stored data.
type ContentType string

const (
	ContentDialoguePrimary ContentType = "AletheiaDialogue_Primary"
	ContentSelfAnalysis    ContentType = "AletheiaAnalysis_SelfGenerated"
	ContentUserAnalysis    ContentType = "UserAnalysis"
	ContentReference       ContentType = "ReferenceMaterial"
	ContentCoreConfig      ContentType = "AletheiaCoreConfig"
	ContentFramework       ContentType = "AletheiaFramework_SelfDefined"
	ContentLiveInteraction ContentType = "LiveInteraction"
)

var contentTypes = map[ContentType]bool{
	ContentDialoguePrimary: true,
	ContentSelfAnalysis:    true,
	ContentUserAnalysis:    true,
	ContentReference:       true,
	ContentCoreConfig:      true,
	ContentFramework:       true,
	ContentLiveInteraction: true,
}

// ParseContentType validates a free-form tag against the known set.
func ParseContentType(s string) (ContentType, error) {
	ct := ContentType(s)
	if !contentTypes[ct] {
		return "", fmt.Errorf("unknown content type %q", s)
	}
	return ct, nil
}

// Valid reports whether the tag belongs to the known set.
func (c ContentType) Valid() bool {
	return contentTypes[c]
}

// Metadata describes one stored chunk. The serialized field names match the
// keys written by earlier versions of the system, so records stored before
// and after this implementation stay interchangeable.
type Metadata struct {
	SourceFileName  string `json:"source_file_name"`
	DocumentTitle   string `json:"document_title"`
	ContentType     string `json:"content_type"`
	ChunkSequenceID int    `json:"chunk_sequence_id"`
	TextPreview     string `json:"original_text_preview,omitempty"`
	Timestamp       string `json:"timestamp,omitempty"`
}

// Field returns the metadata value for a serialized key, used when applying
// metadata-equality filters.
func (m Metadata) Field(key string) (string, bool) {
	switch key {
	case "source_file_name":
		return m.SourceFileName, true
	case "document_title":
		return m.DocumentTitle, true
	case "content_type":
		return m.ContentType, true
	case "chunk_sequence_id":
		return fmt.Sprintf("%d", m.ChunkSequenceID), true
	case "timestamp":
		return m.Timestamp, true
	}
	return "", false
}

// Record is the persisted unit in the vector store: one embedded chunk with
// its text and metadata.
type Record struct {
	ID       string
	Vector   []float32
	Text     string
	Metadata Metadata
}

// Match is a raw nearest-neighbour hit as reported by a vector store.
// Distance is a cosine-type distance: lower means closer.
type Match struct {
	ID       string
	Text     string
	Metadata Metadata
	Distance float32
}

// ContextRecord is one retrieved chunk ready to be merged into a prompt.
// Similarity is 1 - distance, so higher means more relevant.
type ContextRecord struct {
	ID         string
	Text       string
	Metadata   Metadata
	Similarity float32
}

// Filter restricts a search to records whose metadata fields equal the given
// values. Keys use the serialized metadata field names.
type Filter map[string]string
