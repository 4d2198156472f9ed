package llm

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"frontdesk-backend/pkg/models"
)

type LangChainClient struct {
	llm  *openai.LLM
	temp float64
}

var _ Client = (*LangChainClient)(nil)

func NewLangChainClient(cfg OpenAIConfig) (*LangChainClient, error) {
	opts := []openai.Option{openai.WithModel(cfg.Model)}
	if cfg.APIKey != "" {
		opts = append(opts, openai.WithToken(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}

	client, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create langchain openai client: %w", err)
	}

	return &LangChainClient{llm: client, temp: cfg.Temperature}, nil
}

func toMessageContent(req Request) []llms.MessageContent {
	content := make([]llms.MessageContent, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		content = append(content, llms.TextParts(llms.ChatMessageTypeSystem, req.SystemPrompt))
	}
	for _, m := range req.Messages {
		role := llms.ChatMessageTypeHuman
		if m.Role == models.RoleAssistant {
			role = llms.ChatMessageTypeAI
		}
		content = append(content, llms.TextParts(role, m.Content))
	}
	return content
}

func (c *LangChainClient) Complete(ctx context.Context, req Request) (string, error) {
	opts := []llms.CallOption{llms.WithTemperature(c.temp)}
	if req.Schema != nil {
		opts = append(opts, llms.WithJSONMode())
	}

	resp, err := c.llm.GenerateContent(ctx, toMessageContent(req), opts...)
	if err != nil {
		slog.Error("langchain generation failed", "error", err)
		return "", fmt.Errorf("langchain generation failed: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return resp.Choices[0].Content, nil
}

func (c *LangChainClient) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
	chunks := make(chan Chunk)

	go func() {
		defer close(chunks)

		_, err := c.llm.GenerateContent(ctx, toMessageContent(req),
			llms.WithTemperature(c.temp),
			llms.WithStreamingFunc(func(ctx context.Context, fragment []byte) error {
				if len(fragment) == 0 {
					return nil
				}
				select {
				case chunks <- Chunk{Text: string(fragment)}:
					return nil
				case <-ctx.Done():
					return ctx.Err()
				}
			}),
		)
		if err != nil {
			slog.Error("langchain stream failed", "error", err)
			select {
			case chunks <- Chunk{Err: fmt.Errorf("langchain stream failed: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return chunks, nil
}
