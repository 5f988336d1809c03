package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChatServer(t *testing.T, content string, seen *openai.ChatCompletionRequest) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		if seen != nil {
			require.NoError(t, json.NewDecoder(r.Body).Decode(seen))
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    openai.ChatMessageRoleAssistant,
						Content: content,
					},
					FinishReason: openai.FinishReasonStop,
				},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func testOpenAIConfig(baseURL string) *Config {
	config := DefaultOpenAIConfig()
	config.BaseURL = baseURL
	return config
}

func TestOpenAIClient_GenerateJSON(t *testing.T) {
	var seen openai.ChatCompletionRequest
	server := newChatServer(t, "```json\n{\"claims\": []}\n```", &seen)
	defer server.Close()

	client, err := NewOpenAIClient(testOpenAIConfig(server.URL), "test-key")
	require.NoError(t, err)

	out, err := client.GenerateJSON(context.Background(), "list the claims", TierLite)
	require.NoError(t, err)
	assert.Equal(t, `{"claims": []}`, out)

	assert.Equal(t, "gpt-4o-mini", seen.Model)
	require.NotNil(t, seen.ResponseFormat)
	assert.Equal(t, openai.ChatCompletionResponseFormatTypeJSONObject, seen.ResponseFormat.Type)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "list the claims", seen.Messages[1].Content)
}

func TestOpenAIClient_GenerateContent(t *testing.T) {
	var seen openai.ChatCompletionRequest
	server := newChatServer(t, "  Plain answer.  ", &seen)
	defer server.Close()

	client, err := NewOpenAIClient(testOpenAIConfig(server.URL), "test-key")
	require.NoError(t, err)

	out, err := client.GenerateContent(context.Background(), "hello", TierAdvanced)
	require.NoError(t, err)
	assert.Equal(t, "Plain answer.", out)
	assert.Equal(t, "gpt-4o", seen.Model)
	assert.Nil(t, seen.ResponseFormat)
}

func TestOpenAIClient_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error": {"message": "rate limited", "type": "rate_limit"}}`))
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testOpenAIConfig(server.URL), "test-key")
	require.NoError(t, err)

	_, err = client.GenerateJSON(context.Background(), "x", TierLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OpenAI API error")
}

func TestOpenAIClient_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(openai.ChatCompletionResponse{ID: "chatcmpl-1"})
	}))
	defer server.Close()

	client, err := NewOpenAIClient(testOpenAIConfig(server.URL), "test-key")
	require.NoError(t, err)

	_, err = client.GenerateJSON(context.Background(), "x", TierLite)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no response")
}

func TestNewOpenAIClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(DefaultOpenAIConfig(), "")
	require.Error(t, err)
}

func TestNewClient_Providers(t *testing.T) {
	client, err := NewClient(context.Background(), DefaultOpenAIConfig(), "test-key")
	require.NoError(t, err)
	assert.IsType(t, &OpenAIClient{}, client)
	assert.Equal(t, "gpt-4o", client.GetModel(TierStandard))
	assert.NoError(t, client.Close())

	_, err = NewClient(context.Background(), &Config{Provider: "anthropic"}, "test-key")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported provider")

	_, err = NewClient(context.Background(), nil, "")
	require.Error(t, err, "default Gemini client requires an API key")
}
