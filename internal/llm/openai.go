package llm

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"frontdesk-backend/pkg/models"
)

type OpenAIConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	MaxRetries  int
	AppURL      string
	AppTitle    string
}

// OpenAIClient talks to any OpenAI-compatible chat completions API
// (OpenAI, OpenRouter, a local gateway).
type OpenAIClient struct {
	client openai.Client
	model  string
	temp   float64
}

var _ Client = (*OpenAIClient)(nil)

func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	opts := []option.RequestOption{
		option.WithMaxRetries(cfg.MaxRetries),
	}
	if cfg.APIKey != "" {
		opts = append(opts, option.WithAPIKey(cfg.APIKey))
	}
	if cfg.BaseURL != "" {
		baseURL := cfg.BaseURL
		if !strings.HasSuffix(baseURL, "/") {
			baseURL += "/"
		}
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}
	// OpenRouter uses these to attribute traffic; other providers ignore them.
	if cfg.AppURL != "" {
		opts = append(opts, option.WithHeader("HTTP-Referer", cfg.AppURL))
	}
	if cfg.AppTitle != "" {
		opts = append(opts, option.WithHeader("X-Title", cfg.AppTitle))
	}

	return &OpenAIClient{
		client: openai.NewClient(opts...),
		model:  cfg.Model,
		temp:   cfg.Temperature,
	}
}

func (o *OpenAIClient) params(req Request) openai.ChatCompletionNewParams {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(req.Messages)+1)
	if req.SystemPrompt != "" {
		messages = append(messages, openai.SystemMessage(req.SystemPrompt))
	}
	for _, m := range req.Messages {
		if m.Role == models.RoleAssistant {
			messages = append(messages, openai.AssistantMessage(m.Content))
		} else {
			messages = append(messages, openai.UserMessage(m.Content))
		}
	}

	params := openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       o.model,
		Temperature: openai.Float(o.temp),
	}

	if req.Schema != nil {
		name := req.SchemaName
		if name == "" {
			name = "response"
		}
		params.ResponseFormat = openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
				JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
					Name:   name,
					Schema: req.Schema,
				},
			},
		}
	}

	return params
}

func (o *OpenAIClient) Complete(ctx context.Context, req Request) (string, error) {
	res, err := o.client.Chat.Completions.New(ctx, o.params(req))
	if err != nil {
		logUpstreamError("chat completions failed", err)
		return "", fmt.Errorf("openai generation failed: %w", err)
	}

	if len(res.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return res.Choices[0].Message.Content, nil
}

func (o *OpenAIClient) Stream(ctx context.Context, req Request) (<-chan Chunk, error) {
	stream := o.client.Chat.Completions.NewStreaming(ctx, o.params(req))
	if err := stream.Err(); err != nil {
		logUpstreamError("chat completions stream failed", err)
		return nil, fmt.Errorf("openai stream failed: %w", err)
	}

	chunks := make(chan Chunk)
	go func() {
		defer close(chunks)
		defer stream.Close()

		for stream.Next() {
			event := stream.Current()
			if len(event.Choices) == 0 || event.Choices[0].Delta.Content == "" {
				continue
			}
			select {
			case chunks <- Chunk{Text: event.Choices[0].Delta.Content}:
			case <-ctx.Done():
				return
			}
		}

		if err := stream.Err(); err != nil {
			logUpstreamError("chat completions stream interrupted", err)
			select {
			case chunks <- Chunk{Err: fmt.Errorf("openai stream failed: %w", err)}:
			case <-ctx.Done():
			}
		}
	}()

	return chunks, nil
}

func logUpstreamError(msg string, err error) {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		slog.Error("openai error: "+msg, "status_code", apiErr.StatusCode, "error", err)
		return
	}
	slog.Error("openai error: "+msg, "error", err)
}
