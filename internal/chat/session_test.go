package chat

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aletheialabs/aletheia/internal/core"
	"github.com/aletheialabs/aletheia/internal/llm"
)

type fakeMemory struct {
	records     []core.ContextRecord
	lastQuery   string
	lastTopK    int
	loggedUser  string
	loggedReply string
	logErr      error
	logCalls    int
}

func (f *fakeMemory) Retrieve(ctx context.Context, query string, filter core.Filter, topK int) []core.ContextRecord {
	f.lastQuery = query
	f.lastTopK = topK
	return f.records
}

func (f *fakeMemory) LogInteraction(ctx context.Context, userText, assistantText string) error {
	f.logCalls++
	f.loggedUser = userText
	f.loggedReply = assistantText
	return f.logErr
}

type fakeCompleter struct {
	reply      string
	err        error
	lastPrompt string
	lastSystem string
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	f.lastPrompt = prompt
	f.lastSystem = systemPrompt
	return f.reply, f.err
}

func TestRespondPlainQuery(t *testing.T) {
	mem := &fakeMemory{records: []core.ContextRecord{
		{Text: "Stored wisdom.", Metadata: core.Metadata{SourceFileName: "doc.txt", DocumentTitle: "Doc"}},
	}}
	comp := &fakeCompleter{reply: "Here is my answer."}
	s := NewSession(mem, comp, nil, "system prompt text")

	reply := s.Respond(context.Background(), "what is wisdom?")
	assert.Equal(t, "Here is my answer.", reply)

	assert.Equal(t, "what is wisdom?", mem.lastQuery)
	assert.Equal(t, retrieveTopK, mem.lastTopK)

	assert.Contains(t, comp.lastPrompt, "--- Relevant Context ---")
	assert.Contains(t, comp.lastPrompt, "Stored wisdom.")
	assert.Contains(t, comp.lastPrompt, "User: what is wisdom?")
	assert.Equal(t, "system prompt text", comp.lastSystem)

	assert.Equal(t, 1, mem.logCalls)
	assert.Equal(t, "what is wisdom?", mem.loggedUser)
	assert.Equal(t, "Here is my answer.", mem.loggedReply)
}

func TestRespondEmptyInput(t *testing.T) {
	mem := &fakeMemory{}
	comp := &fakeCompleter{reply: "unused"}
	s := NewSession(mem, comp, nil, "")

	assert.Empty(t, s.Respond(context.Background(), ""))
	assert.Empty(t, s.Respond(context.Background(), "   \n "))
	assert.Zero(t, mem.logCalls)
	assert.Empty(t, comp.lastPrompt)
}

func TestRespondLensCommand(t *testing.T) {
	lenses := llm.NewLensRegistry([]llm.Lens{
		{Name: "socratic", PromptArchetype: "CTX[{CONTEXT_CHUNKS}] ASK[{USER_QUERY}]"},
	})
	mem := &fakeMemory{}
	comp := &fakeCompleter{reply: "questioned"}
	s := NewSession(mem, comp, lenses, "")

	reply := s.Respond(context.Background(), "lens: socratic what is courage?")
	assert.Equal(t, "questioned", reply)

	assert.Equal(t, "what is courage?", mem.lastQuery, "retrieval uses the lens-stripped query")
	assert.Contains(t, comp.lastPrompt, "ASK[what is courage?]")
	assert.Contains(t, comp.lastPrompt, "No specific context found")

	assert.Equal(t, "lens: socratic what is courage?", mem.loggedUser,
		"the logged interaction keeps the original input")
}

func TestRespondUnknownLensFallsBackToPlainQuery(t *testing.T) {
	lenses := llm.NewLensRegistry([]llm.Lens{
		{Name: "socratic", PromptArchetype: "{CONTEXT_CHUNKS} {USER_QUERY}"},
	})
	mem := &fakeMemory{}
	comp := &fakeCompleter{reply: "plain"}
	s := NewSession(mem, comp, lenses, "")

	reply := s.Respond(context.Background(), "lens: dialectic what is courage?")
	assert.Equal(t, "plain", reply)
	assert.Equal(t, "dialectic what is courage?", mem.lastQuery)
	assert.Contains(t, comp.lastPrompt, "respond to the following")
}

func TestRespondLensWithoutQuery(t *testing.T) {
	lenses := llm.NewLensRegistry([]llm.Lens{
		{Name: "socratic", PromptArchetype: "{CONTEXT_CHUNKS} {USER_QUERY}"},
	})
	mem := &fakeMemory{}
	comp := &fakeCompleter{reply: "plain"}
	s := NewSession(mem, comp, lenses, "")

	// matching lens but no remaining query text is treated as a plain query
	s.Respond(context.Background(), "lens: socratic")
	assert.Equal(t, "socratic", mem.lastQuery)
	assert.Contains(t, comp.lastPrompt, "respond to the following")
}

func TestRespondCompletionFailure(t *testing.T) {
	mem := &fakeMemory{}
	comp := &fakeCompleter{err: errors.New("provider down")}
	s := NewSession(mem, comp, nil, "")

	reply := s.Respond(context.Background(), "hello")
	assert.Equal(t, FallbackReply, reply)
	assert.Zero(t, mem.logCalls, "a failed exchange is not logged")
}

func TestRespondBlankCompletion(t *testing.T) {
	mem := &fakeMemory{}
	comp := &fakeCompleter{reply: "   "}
	s := NewSession(mem, comp, nil, "")

	assert.Equal(t, FallbackReply, s.Respond(context.Background(), "hello"))
}

func TestRespondLogFailureIsSoft(t *testing.T) {
	mem := &fakeMemory{logErr: errors.New("store down")}
	comp := &fakeCompleter{reply: "still works"}
	s := NewSession(mem, comp, nil, "")

	assert.Equal(t, "still works", s.Respond(context.Background(), "hello"))
}

func TestFormatContextEmpty(t *testing.T) {
	got := FormatContext(nil)
	assert.Equal(t, "--- Relevant Context ---\nNo specific context found in memory for this query.\n", got)
}

func TestFormatContextRecords(t *testing.T) {
	got := FormatContext([]core.ContextRecord{
		{Text: "First chunk.", Metadata: core.Metadata{SourceFileName: "a.txt", DocumentTitle: "Doc A"}},
		{Text: "Second chunk.", Metadata: core.Metadata{}},
	})

	require.True(t, strings.HasPrefix(got, "--- Relevant Context ---\n"))
	assert.Contains(t, got, "Context 1 (Source: a.txt - Title: Doc A):\nFirst chunk.\n---\n")
	assert.Contains(t, got, "Context 2 (Source: N/A - Title: N/A):\nSecond chunk.\n---\n")
}

func TestCutLensCommand(t *testing.T) {
	rest, ok := cutLensCommand("lens: socratic question")
	require.True(t, ok)
	assert.Equal(t, "socratic question", rest)

	rest, ok = cutLensCommand("LENS:   socratic question")
	require.True(t, ok)
	assert.Equal(t, "socratic question", rest)

	_, ok = cutLensCommand("no lens here")
	assert.False(t, ok)
}
