package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/Rrens/chat-with-data/internal/config"
	"github.com/Rrens/chat-with-data/internal/credential"
	"github.com/Rrens/chat-with-data/internal/llm"
)

// DirectFactory talks to the configured Azure OpenAI endpoint
type DirectFactory struct {
	Endpoint   string
	APIVersion string
	APIKey     string
	Tokens     credential.TokenProvider
}

func (f *DirectFactory) Client(_ context.Context) (llm.Client, error) {
	return NewAzureClient(f.Endpoint, f.APIVersion, f.APIKey, f.Tokens)
}

// ProjectFactory reaches the model through an AI project's inference
// endpoint, authenticated with the ambient credential
type ProjectFactory struct {
	ProjectEndpoint string
	APIVersion      string
	Tokens          credential.TokenProvider
}

func (f *ProjectFactory) Client(_ context.Context) (llm.Client, error) {
	endpoint, err := ProjectInferenceEndpoint(f.ProjectEndpoint)
	if err != nil {
		return nil, err
	}
	return NewAzureClient(endpoint, f.APIVersion, "", f.Tokens)
}

// ProjectInferenceEndpoint maps a project endpoint such as
// https://res.services.ai.azure.com/api/projects/demo to the resource root
// that serves the OpenAI-compatible routes
func ProjectInferenceEndpoint(projectEndpoint string) (string, error) {
	if projectEndpoint == "" {
		return "", errors.New("AZURE_AI_AGENT_ENDPOINT is not configured")
	}
	root, _, _ := strings.Cut(projectEndpoint, "/api/projects/")
	return strings.TrimSuffix(root, "/"), nil
}

// NewFactory picks the client acquisition strategy from USE_AI_PROJECT_CLIENT
func NewFactory(cfg *config.Config, tokens credential.TokenProvider) llm.Factory {
	if cfg.Project.UseClient {
		return &ProjectFactory{
			ProjectEndpoint: cfg.Project.Endpoint,
			APIVersion:      cfg.OpenAI.APIVersion,
			Tokens:          tokens,
		}
	}
	return &DirectFactory{
		Endpoint:   cfg.OpenAI.Endpoint,
		APIVersion: cfg.OpenAI.APIVersion,
		APIKey:     cfg.OpenAI.Key,
		Tokens:     tokens,
	}
}
