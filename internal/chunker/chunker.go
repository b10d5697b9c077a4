package chunker

import (
	"errors"
	"strings"
)

// Default window parameters, chosen to match the corpus already stored in the
// memory collection.
const (
	DefaultSize    = 1200
	DefaultOverlap = 150
)

// ErrBadChunkParams is returned when the window parameters would make the
// sliding window loop forever.
var ErrBadChunkParams = errors.New("chunker: size must be positive and greater than overlap")

// Chunk is one window of a document's text. Seq is 1-based and monotonic
// within a document; Start and End are rune offsets into the source text.
type Chunk struct {
	Seq   int
	Start int
	End   int
	Text  string
}

// Chunker splits text into overlapping fixed-size windows. It is stateless
// and safe for concurrent use.
type Chunker struct {
	size    int
	overlap int
}

// New creates a chunker. It fails fast on size <= overlap: with a
// non-positive step the window would never advance.
func New(size, overlap int) (*Chunker, error) {
	if size <= 0 || overlap < 0 || size <= overlap {
		return nil, ErrBadChunkParams
	}
	return &Chunker{size: size, overlap: overlap}, nil
}

// Size returns the window size in runes.
func (c *Chunker) Size() int { return c.size }

// Overlap returns the overlap between consecutive windows in runes.
func (c *Chunker) Overlap() int { return c.overlap }

// Split cuts text into windows. The first window starts at offset 0, each
// subsequent one at the previous start plus (size - overlap), and splitting
// stops the moment a window reaches the end of the text. Offsets are counted
// in runes so multi-byte text chunks the same way the stored corpus was
// chunked. Blank input yields no chunks.
func (c *Chunker) Split(text string) []Chunk {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	runes := []rune(text)
	step := c.size - c.overlap

	var chunks []Chunk
	for start := 0; start < len(runes); start += step {
		end := start + c.size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, Chunk{
			Seq:   len(chunks) + 1,
			Start: start,
			End:   end,
			Text:  string(runes[start:end]),
		})
		if end == len(runes) {
			break
		}
	}

	return chunks
}
