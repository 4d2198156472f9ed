package llm

import (
	"context"
	"errors"
	"fmt"

	"frontdesk-backend/pkg/models"
)

var ErrEmptyResponse = errors.New("llm returned no choices")

type Request struct {
	SystemPrompt string
	Messages     []models.ChatMessage

	// Set to request a JSON object matching Schema instead of free text.
	Schema     map[string]interface{}
	SchemaName string
}

// Chunk is one fragment of a streamed reply. A chunk with Err set is always
// the last value sent before the channel is closed.
type Chunk struct {
	Text string
	Err  error
}

type Client interface {
	Complete(ctx context.Context, req Request) (string, error)

	Stream(ctx context.Context, req Request) (<-chan Chunk, error)
}

func NewClient(provider string, cfg OpenAIConfig) (Client, error) {
	switch provider {
	case "", "openai":
		return NewOpenAIClient(cfg), nil
	case "langchain":
		return NewLangChainClient(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
