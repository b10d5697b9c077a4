package chunker

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRejectsBadParams(t *testing.T) {
	cases := []struct {
		name    string
		size    int
		overlap int
	}{
		{"zero size", 0, 0},
		{"negative size", -1, 0},
		{"negative overlap", 10, -1},
		{"overlap equals size", 10, 10},
		{"overlap exceeds size", 10, 20},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := New(tc.size, tc.overlap)
			assert.ErrorIs(t, err, ErrBadChunkParams)
		})
	}
}

func TestSplitBlankInput(t *testing.T) {
	c, err := New(DefaultSize, DefaultOverlap)
	require.NoError(t, err)

	assert.Nil(t, c.Split(""))
	assert.Nil(t, c.Split("   \n\t  "))
}

func TestSplitShortTextSingleChunk(t *testing.T) {
	c, err := New(DefaultSize, DefaultOverlap)
	require.NoError(t, err)

	chunks := c.Split("hello world")
	require.Len(t, chunks, 1)
	assert.Equal(t, 1, chunks[0].Seq)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 11, chunks[0].End)
	assert.Equal(t, "hello world", chunks[0].Text)
}

func TestSplitWindowBoundaries(t *testing.T) {
	c, err := New(1200, 150)
	require.NoError(t, err)

	text := strings.Repeat("a", 3000)
	chunks := c.Split(text)
	require.Len(t, chunks, 3)

	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, 1200, chunks[0].End)
	assert.Equal(t, 1050, chunks[1].Start)
	assert.Equal(t, 2250, chunks[1].End)
	assert.Equal(t, 2100, chunks[2].Start)
	assert.Equal(t, 3000, chunks[2].End)

	assert.Len(t, chunks[0].Text, 1200)
	assert.Len(t, chunks[1].Text, 1200)
	assert.Len(t, chunks[2].Text, 900)

	for i, ch := range chunks {
		assert.Equal(t, i+1, ch.Seq)
	}
}

func TestSplitConsecutiveChunksOverlap(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	text := strings.Repeat("abcdefghij", 50)
	chunks := c.Split(text)
	require.Greater(t, len(chunks), 1)

	runes := []rune(text)
	for i := 1; i < len(chunks); i++ {
		prev, cur := chunks[i-1], chunks[i]
		assert.Equal(t, prev.Start+80, cur.Start, "step must be size - overlap")
		overlap := string(runes[cur.Start:prev.End])
		assert.True(t, strings.HasSuffix(prev.Text, overlap))
		assert.True(t, strings.HasPrefix(cur.Text, overlap))
	}
}

func TestSplitCoversWholeText(t *testing.T) {
	c, err := New(64, 16)
	require.NoError(t, err)

	text := strings.Repeat("the quick brown fox jumps over the lazy dog ", 30)
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)

	runes := []rune(text)
	assert.Equal(t, 0, chunks[0].Start)
	assert.Equal(t, len(runes), chunks[len(chunks)-1].End)
	for _, ch := range chunks {
		assert.Equal(t, string(runes[ch.Start:ch.End]), ch.Text)
	}
}

func TestSplitRuneOffsets(t *testing.T) {
	c, err := New(4, 1)
	require.NoError(t, err)

	// multi-byte runes must count as one position each
	text := "héllo wörld ünïcode"
	chunks := c.Split(text)
	require.NotEmpty(t, chunks)

	runes := []rune(text)
	for _, ch := range chunks {
		assert.Equal(t, string(runes[ch.Start:ch.End]), ch.Text)
		assert.LessOrEqual(t, ch.End-ch.Start, 4)
	}
	assert.Equal(t, len(runes), chunks[len(chunks)-1].End)
}

func TestSplitCountAndReconstruction(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	for _, n := range []int{1, 20, 99, 100, 101, 250, 500, 777} {
		text := strings.Repeat("z", n)
		chunks := c.Split(text)

		want := 1
		if n > 20 {
			want = (n - 20 + 79) / 80 // ceil((len - overlap) / (size - overlap))
		}
		assert.Len(t, chunks, want, "len %d", n)

		// dropping each chunk's leading overlap reconstructs the text
		var b strings.Builder
		for i, ch := range chunks {
			runes := []rune(ch.Text)
			if i == 0 {
				b.WriteString(ch.Text)
			} else {
				b.WriteString(string(runes[20:]))
			}
		}
		assert.Equal(t, text, b.String(), "len %d", n)
	}
}

func TestSplitDeterministic(t *testing.T) {
	c, err := New(50, 10)
	require.NoError(t, err)

	text := strings.Repeat("determinism matters ", 40)
	first := c.Split(text)
	second := c.Split(text)
	assert.Equal(t, first, second)
}

func TestSplitExactWindowEnd(t *testing.T) {
	c, err := New(100, 20)
	require.NoError(t, err)

	// text ends exactly on a window boundary; no trailing duplicate window
	chunks := c.Split(strings.Repeat("x", 100))
	require.Len(t, chunks, 1)
	assert.Equal(t, 100, chunks[0].End)
}

func TestAccessors(t *testing.T) {
	c, err := New(300, 30)
	require.NoError(t, err)
	assert.Equal(t, 300, c.Size())
	assert.Equal(t, 30, c.Overlap())
}
