package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/azure"
	"github.com/openai/openai-go/option"

	"github.com/Rrens/chat-with-data/internal/credential"
	"github.com/Rrens/chat-with-data/internal/llm"
)

// Client implements llm.Client on top of the OpenAI Go SDK
type Client struct {
	client oai.Client
}

// NewClient wraps an SDK client built with opts. Retries are disabled: a
// failed call is reported once to the caller.
func NewClient(opts ...option.RequestOption) *Client {
	opts = append([]option.RequestOption{option.WithMaxRetries(0)}, opts...)
	return &Client{client: oai.NewClient(opts...)}
}

// NewAzureClient builds a client for an Azure OpenAI style endpoint. When
// apiKey is empty, every request carries a bearer token for the cognitive
// services audience taken from tokens.
func NewAzureClient(endpoint, apiVersion, apiKey string, tokens credential.TokenProvider) (*Client, error) {
	if endpoint == "" {
		return nil, errors.New("completion endpoint is not configured")
	}

	opts := []option.RequestOption{azure.WithEndpoint(endpoint, apiVersion)}
	switch {
	case apiKey != "":
		opts = append(opts, azure.WithAPIKey(apiKey))
	case tokens != nil:
		opts = append(opts, option.WithMiddleware(bearerToken(tokens, credential.CognitiveServicesScope)))
	default:
		return nil, errors.New("no credential configured for completion endpoint")
	}

	return NewClient(opts...), nil
}

func bearerToken(tokens credential.TokenProvider, scope string) option.Middleware {
	return func(req *http.Request, next option.MiddlewareNext) (*http.Response, error) {
		token, err := tokens.Token(req.Context(), scope)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Authorization", "Bearer "+token)
		return next(req)
	}
}

// Complete sends a chat completion and returns the first choice's content
func (c *Client) Complete(ctx context.Context, req llm.CompletionRequest) (string, error) {
	messages := make([]oai.ChatCompletionMessageParamUnion, 0, len(req.Messages))
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			messages = append(messages, oai.SystemMessage(m.Content))
		case llm.RoleAssistant:
			messages = append(messages, oai.AssistantMessage(m.Content))
		default:
			messages = append(messages, oai.UserMessage(m.Content))
		}
	}

	params := oai.ChatCompletionNewParams{
		Model:       oai.ChatModel(req.Model),
		Messages:    messages,
		Temperature: oai.Float(req.Temperature),
		TopP:        oai.Float(req.TopP),
	}
	if req.N > 0 {
		params.N = oai.Int(int64(req.N))
	}

	completion, err := c.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}

	if len(completion.Choices) == 0 {
		return "", errors.New("no choices in completion response")
	}

	return completion.Choices[0].Message.Content, nil
}
