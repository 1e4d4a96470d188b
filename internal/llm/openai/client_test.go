package openai_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Rrens/chat-with-data/internal/config"
	"github.com/Rrens/chat-with-data/internal/credential"
	"github.com/Rrens/chat-with-data/internal/llm"
	"github.com/Rrens/chat-with-data/internal/llm/openai"
)

type capturedRequest struct {
	Path          string
	APIVersion    string
	Authorization string
	APIKey        string
	Body          map[string]any
}

func newFakeEndpoint(t *testing.T, status int, reply string) (*httptest.Server, *capturedRequest, *int32) {
	t.Helper()

	captured := &capturedRequest{}
	var calls int32

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		captured.Path = r.URL.Path
		captured.APIVersion = r.URL.Query().Get("api-version")
		captured.Authorization = r.Header.Get("Authorization")
		captured.APIKey = r.Header.Get("Api-Key")
		_ = json.NewDecoder(r.Body).Decode(&captured.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(reply))
	}))
	t.Cleanup(srv.Close)

	return srv, captured, &calls
}

const completionReply = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-4o",
  "choices": [
    {"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "SELECT id FROM invoices"}}
  ]
}`

func sqlRequest() llm.CompletionRequest {
	return llm.CompletionRequest{
		Model:       "gpt-4o",
		Messages:    llm.Prompt(llm.SQLSystemPrompt, "find the invoice name"),
		Temperature: 0,
		TopP:        1,
		N:           1,
	}
}

func TestAzureClient_BearerToken(t *testing.T) {
	srv, captured, calls := newFakeEndpoint(t, http.StatusOK, completionReply)

	client, err := openai.NewAzureClient(srv.URL, "2024-02-15-preview", "", credential.Static("aad-token"))
	require.NoError(t, err)

	text, err := client.Complete(context.Background(), sqlRequest())
	require.NoError(t, err)

	assert.Equal(t, "SELECT id FROM invoices", text)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
	assert.True(t, strings.HasSuffix(captured.Path, "/chat/completions"), captured.Path)
	assert.Equal(t, "2024-02-15-preview", captured.APIVersion)
	assert.Equal(t, "Bearer aad-token", captured.Authorization)

	assert.EqualValues(t, 0, captured.Body["temperature"])
	assert.EqualValues(t, 1, captured.Body["top_p"])
	assert.EqualValues(t, 1, captured.Body["n"])

	messages, ok := captured.Body["messages"].([]any)
	require.True(t, ok)
	require.Len(t, messages, 2)
	assert.Equal(t, "system", messages[0].(map[string]any)["role"])
	assert.Equal(t, "You are a helpful assistant.", messages[0].(map[string]any)["content"])
	assert.Equal(t, "user", messages[1].(map[string]any)["role"])
}

func TestAzureClient_APIKey(t *testing.T) {
	srv, captured, _ := newFakeEndpoint(t, http.StatusOK, completionReply)

	client, err := openai.NewAzureClient(srv.URL, "2024-02-15-preview", "resource-key", nil)
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), sqlRequest())
	require.NoError(t, err)

	assert.Equal(t, "resource-key", captured.APIKey)
}

func TestAzureClient_ErrorIsNotRetried(t *testing.T) {
	srv, _, calls := newFakeEndpoint(t, http.StatusInternalServerError, `{"error":{"message":"boom","type":"server_error"}}`)

	client, err := openai.NewAzureClient(srv.URL, "2024-02-15-preview", "", credential.Static("aad-token"))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), sqlRequest())
	assert.Error(t, err)
	assert.Equal(t, int32(1), atomic.LoadInt32(calls))
}

func TestAzureClient_NoChoices(t *testing.T) {
	srv, _, _ := newFakeEndpoint(t, http.StatusOK, `{"id":"x","object":"chat.completion","created":1,"model":"gpt-4o","choices":[]}`)

	client, err := openai.NewAzureClient(srv.URL, "2024-02-15-preview", "", credential.Static("aad-token"))
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), sqlRequest())
	assert.ErrorContains(t, err, "no choices")
}

func TestNewAzureClient_RequiresEndpointAndCredential(t *testing.T) {
	_, err := openai.NewAzureClient("", "v", "", credential.Static("t"))
	assert.Error(t, err)

	_, err = openai.NewAzureClient("https://example.openai.azure.com", "v", "", nil)
	assert.Error(t, err)
}

func TestProjectInferenceEndpoint(t *testing.T) {
	tests := []struct {
		name     string
		endpoint string
		expected string
		wantErr  bool
	}{
		{"project url", "https://res.services.ai.azure.com/api/projects/demo", "https://res.services.ai.azure.com", false},
		{"resource root", "https://res.services.ai.azure.com/", "https://res.services.ai.azure.com", false},
		{"missing", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := openai.ProjectInferenceEndpoint(tt.endpoint)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestNewFactory_SelectsStrategy(t *testing.T) {
	cfg := &config.Config{}
	cfg.OpenAI.Endpoint = "https://example.openai.azure.com"
	cfg.OpenAI.APIVersion = "2024-02-15-preview"

	assert.IsType(t, &openai.DirectFactory{}, openai.NewFactory(cfg, credential.Static("t")))

	cfg.Project.UseClient = true
	cfg.Project.Endpoint = "https://res.services.ai.azure.com/api/projects/demo"

	factory := openai.NewFactory(cfg, credential.Static("t"))
	require.IsType(t, &openai.ProjectFactory{}, factory)

	client, err := factory.Client(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestProjectFactory_TalksToResourceRoot(t *testing.T) {
	srv, captured, _ := newFakeEndpoint(t, http.StatusOK, completionReply)

	factory := &openai.ProjectFactory{
		ProjectEndpoint: srv.URL + "/api/projects/demo",
		APIVersion:      "2024-12-01-preview",
		Tokens:          credential.Static("project-token"),
	}

	client, err := factory.Client(context.Background())
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), sqlRequest())
	require.NoError(t, err)

	assert.NotContains(t, captured.Path, "/api/projects/")
	assert.Equal(t, "2024-12-01-preview", captured.APIVersion)
	assert.Equal(t, "Bearer project-token", captured.Authorization)
}
