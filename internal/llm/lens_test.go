package llm

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLenses() []Lens {
	return []Lens{
		{Name: "first principles", PromptArchetype: "Context:\n{CONTEXT_CHUNKS}\nReduce to first principles: {USER_QUERY}"},
		{Name: "first principles deep", PromptArchetype: "Context:\n{CONTEXT_CHUNKS}\nGo deeper: {USER_QUERY}"},
		{Name: "socratic", PromptArchetype: "{CONTEXT_CHUNKS}\nQuestion everything about: {USER_QUERY}"},
	}
}

func TestMatchLongestPrefixWins(t *testing.T) {
	r := NewLensRegistry(testLenses())

	lens, rest, ok := r.Match("first principles deep why is the sky blue")
	require.True(t, ok)
	assert.Equal(t, "first principles deep", lens.Name)
	assert.Equal(t, "why is the sky blue", rest)

	lens, rest, ok = r.Match("first principles why is the sky blue")
	require.True(t, ok)
	assert.Equal(t, "first principles", lens.Name)
	assert.Equal(t, "why is the sky blue", rest)
}

func TestMatchCaseInsensitive(t *testing.T) {
	r := NewLensRegistry(testLenses())

	lens, rest, ok := r.Match("SOCRATIC what is justice?")
	require.True(t, ok)
	assert.Equal(t, "socratic", lens.Name)
	assert.Equal(t, "what is justice?", rest)
}

func TestMatchNoLens(t *testing.T) {
	r := NewLensRegistry(testLenses())

	_, _, ok := r.Match("dialectic what is justice?")
	assert.False(t, ok)
}

func TestMatchBareLensName(t *testing.T) {
	r := NewLensRegistry(testLenses())

	lens, rest, ok := r.Match("socratic")
	require.True(t, ok)
	assert.Equal(t, "socratic", lens.Name)
	assert.Empty(t, rest)
}

func TestNewLensRegistryDropsUnnamed(t *testing.T) {
	r := NewLensRegistry([]Lens{
		{Name: "", PromptArchetype: "..."},
		{Name: "  ", PromptArchetype: "..."},
		{Name: "valid", PromptArchetype: "..."},
	})
	assert.Equal(t, 1, r.Len())
}

func TestApply(t *testing.T) {
	lens := Lens{
		Name:            "socratic",
		PromptArchetype: "Given:\n{CONTEXT_CHUNKS}\nAsk about: {USER_QUERY}",
	}

	got := lens.Apply("  some context  ", "what is truth?")
	assert.Equal(t, "Given:\nsome context\nAsk about: what is truth?", got)
}

func TestApplyMissingPlaceholders(t *testing.T) {
	lens := Lens{Name: "static", PromptArchetype: "No placeholders here."}
	assert.Equal(t, "No placeholders here.", lens.Apply("ctx", "query"))
}

func TestLoadLenses(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lenses.yaml")
	content := `lenses:
  - name: "Socratic"
    description: "Question assumptions."
    prompt_archetype: |
      {CONTEXT_CHUNKS}
      Question: {USER_QUERY}
  - name: "First Principles"
    prompt_archetype: "{CONTEXT_CHUNKS} {USER_QUERY}"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	r, err := LoadLenses(path)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Len())

	lens, rest, ok := r.Match("socratic is virtue teachable?")
	require.True(t, ok)
	assert.Equal(t, "Socratic", lens.Name)
	assert.Equal(t, "is virtue teachable?", rest)
}

func TestLoadLensesMissingFile(t *testing.T) {
	_, err := LoadLenses(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
