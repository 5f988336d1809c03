package llm

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRateLimitedClient_DisabledReturnsInner(t *testing.T) {
	mock := &MockLLMClient{}
	assert.Same(t, Client(mock), NewRateLimitedClient(mock, 0, 1))
}

func TestRateLimitedClient_Delegates(t *testing.T) {
	mock := &MockLLMClient{
		GenerateJSONFunc: func(_ context.Context, prompt string, _ ModelTier) (string, error) {
			return `{"echo": "` + prompt + `"}`, nil
		},
		GenerateContentFunc: func(_ context.Context, prompt string, _ ModelTier) (string, error) {
			return prompt, nil
		},
	}
	client := NewRateLimitedClient(mock, 100, 2)

	out, err := client.GenerateJSON(context.Background(), "hi", TierLite)
	require.NoError(t, err)
	assert.Equal(t, `{"echo": "hi"}`, out)

	text, err := client.GenerateContent(context.Background(), "plain", TierLite)
	require.NoError(t, err)
	assert.Equal(t, "plain", text)

	assert.Equal(t, "mock-model", client.GetModel(TierLite))
	assert.Equal(t, 2, mock.Calls)
	assert.NoError(t, client.Close())
}

func TestRateLimitedClient_Throttles(t *testing.T) {
	mock := &MockLLMClient{}
	client := NewRateLimitedClient(mock, 20, 1)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := client.GenerateJSON(context.Background(), "x", TierLite)
		require.NoError(t, err)
	}

	// burst of 1 at 20/s: the 2nd and 3rd calls each wait ~50ms
	assert.GreaterOrEqual(t, time.Since(start), 80*time.Millisecond)
}

func TestRateLimitedClient_CancelledContext(t *testing.T) {
	mock := &MockLLMClient{}
	client := NewRateLimitedClient(mock, 0.001, 1)

	// consume the single burst token
	_, err := client.GenerateJSON(context.Background(), "x", TierLite)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.GenerateJSON(ctx, "x", TierLite)
	require.Error(t, err)
	assert.Equal(t, 1, mock.Calls)
}
