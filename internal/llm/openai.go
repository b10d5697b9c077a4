package llm

import (
	"context"
	"errors"
	"strings"
	"time"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is the chat completion model used when none is configured.
const DefaultModel = "gpt-4o"

// DefaultTimeout bounds a single completion call.
const DefaultTimeout = 120 * time.Second

// OpenAIService produces chat completions through the OpenAI API.
type OpenAIService struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

// NewOpenAIService creates a completion service for the given model. An
// empty model selects DefaultModel.
func NewOpenAIService(apiKey, model string) (*OpenAIService, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("completion provider requires an API key")
	}
	if model == "" {
		model = DefaultModel
	}
	return &OpenAIService{
		client:  openai.NewClient(apiKey),
		model:   model,
		timeout: DefaultTimeout,
	}, nil
}

// Complete sends prompt to the model, optionally preceded by a system
// prompt, and returns the assistant's reply.
func (s *OpenAIService) Complete(ctx context.Context, prompt, systemPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    s.model,
		Messages: messages,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("completion response empty")
	}

	return resp.Choices[0].Message.Content, nil
}
