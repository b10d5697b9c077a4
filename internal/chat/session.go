package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/aletheialabs/aletheia/internal/core"
	"github.com/aletheialabs/aletheia/internal/llm"
	"github.com/aletheialabs/aletheia/internal/logger"
)

// FallbackReply is returned when the completion provider fails. Provider
// errors never surface to the user verbatim.
const FallbackReply = "I seem to be having trouble processing that right now. Could you rephrase?"

// lensCommand prefixes an input line that selects a reasoning lens.
const lensCommand = "lens:"

// retrieveTopK is the number of context records merged into each prompt.
const retrieveTopK = 3

// Memory is the slice of the pipeline a chat session needs.
type Memory interface {
	Retrieve(ctx context.Context, query string, filter core.Filter, topK int) []core.ContextRecord
	LogInteraction(ctx context.Context, userText, assistantText string) error
}

// Session carries the per-conversation logic shared by the terminal loop and
// the Telegram front end: lens dispatch, context retrieval, prompt
// composition, completion and interaction logging.
type Session struct {
	memory       Memory
	completer    core.Completer
	lenses       *llm.LensRegistry
	systemPrompt string
}

// NewSession wires a session over an initialized pipeline.
func NewSession(memory Memory, completer core.Completer, lenses *llm.LensRegistry, systemPrompt string) *Session {
	if lenses == nil {
		lenses = llm.NewLensRegistry(nil)
	}
	return &Session{
		memory:       memory,
		completer:    completer,
		lenses:       lenses,
		systemPrompt: systemPrompt,
	}
}

// Respond handles one user message and returns the assistant's reply. The
// original full input, not the lens-stripped query, is what gets logged back
// into memory alongside the reply.
func (s *Session) Respond(ctx context.Context, input string) string {
	query := strings.TrimSpace(input)
	if query == "" {
		return ""
	}

	var lens llm.Lens
	usingLens := false
	if rest, ok := cutLensCommand(query); ok {
		if matched, remainder, found := s.lenses.Match(rest); found && remainder != "" {
			lens = matched
			query = remainder
			usingLens = true
			logger.Info("Using lens %q for query %q", lens.Name, query)
		} else {
			logger.Warn("No lens matched %q, treating input as a plain query", rest)
			query = rest
		}
	}

	records := s.memory.Retrieve(ctx, query, nil, retrieveTopK)
	contextBlock := FormatContext(records)

	var prompt string
	if usingLens {
		prompt = lens.Apply(contextBlock, query)
	} else {
		prompt = defaultPrompt(contextBlock, query)
	}

	reply, err := s.completer.Complete(ctx, prompt, s.systemPrompt)
	if err != nil || strings.TrimSpace(reply) == "" {
		logger.Error("Completion failed: %v", err)
		return FallbackReply
	}

	if err := s.memory.LogInteraction(ctx, input, reply); err != nil {
		logger.Warn("Could not save interaction to memory: %v", err)
	}

	return reply
}

// cutLensCommand strips the "lens:" prefix, case-insensitively.
func cutLensCommand(input string) (string, bool) {
	if !strings.HasPrefix(strings.ToLower(input), lensCommand) {
		return "", false
	}
	return strings.TrimSpace(input[len(lensCommand):]), true
}

// FormatContext renders retrieved records as the context block merged into
// prompts. Each record names its source file and document title.
func FormatContext(records []core.ContextRecord) string {
	var b strings.Builder
	b.WriteString("--- Relevant Context ---\n")
	if len(records) == 0 {
		b.WriteString("No specific context found in memory for this query.\n")
		return b.String()
	}
	for i, r := range records {
		fmt.Fprintf(&b, "Context %d (Source: %s - Title: %s):\n",
			i+1, valueOr(r.Metadata.SourceFileName), valueOr(r.Metadata.DocumentTitle))
		b.WriteString(r.Text)
		b.WriteString("\n---\n")
	}
	return b.String()
}

func defaultPrompt(contextBlock, query string) string {
	return fmt.Sprintf("%s\nBased on the above context (if any) and your core identity, respond to the following:\nUser: %s",
		strings.TrimSpace(contextBlock), query)
}

func valueOr(v string) string {
	if v == "" {
		return "N/A"
	}
	return v
}
