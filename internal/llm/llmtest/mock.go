// Package llmtest provides an in-memory llm.Client for tests of packages that call models.
package llmtest

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/jonathan/doc-podcast/internal/llm"
	"github.com/jonathan/doc-podcast/internal/prompts"
)

// markers identify which embedded prompt produced a rendered prompt
var markers = map[string]string{
	prompts.KeyExtractKeyPoints: "You are analysing one section of a document",
	prompts.KeyPlanEpisode:      "You are planning a podcast episode",
	prompts.KeyGenerateDialogue: "Write the full podcast script",
	prompts.KeyExpandDialogue:   "Expand the conversation",
	prompts.KeyExtractClaims:    "List every atomic factual claim",
	prompts.KeyVerifyClaims:     "You are fact-checking podcast claims",
	prompts.KeyAnalyzeCoverage:  "Compare a podcast transcript",
}

// PromptKey returns the prompt key a rendered prompt was built from, or "" if unknown
func PromptKey(prompt string) string {
	for key, marker := range markers {
		if strings.Contains(prompt, marker) {
			return key
		}
	}
	return ""
}

// Call is one recorded GenerateJSON call
type Call struct {
	Key    string
	Prompt string
	Tier   llm.ModelTier
}

// MockClient implements llm.Client. It is safe for concurrent use.
type MockClient struct {
	// GenerateJSONFunc answers a call; key is the prompt key resolved by PromptKey
	GenerateJSONFunc func(ctx context.Context, key, prompt string, tier llm.ModelTier) (string, error)

	mu    sync.Mutex
	calls []Call
}

// Responding returns a MockClient that answers each prompt key with a fixed response
func Responding(responses map[string]string) *MockClient {
	return &MockClient{
		GenerateJSONFunc: func(_ context.Context, key, _ string, _ llm.ModelTier) (string, error) {
			resp, ok := responses[key]
			if !ok {
				return "", fmt.Errorf("no canned response for prompt %q", key)
			}
			return resp, nil
		},
	}
}

// GenerateContent is not used by the pipeline
func (m *MockClient) GenerateContent(_ context.Context, _ string, _ llm.ModelTier) (string, error) {
	return "", fmt.Errorf("GenerateContent not supported by mock")
}

// GenerateJSON records the call and delegates to GenerateJSONFunc
func (m *MockClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	key := PromptKey(prompt)
	m.mu.Lock()
	m.calls = append(m.calls, Call{Key: key, Prompt: prompt, Tier: tier})
	m.mu.Unlock()

	if m.GenerateJSONFunc == nil {
		return "{}", nil
	}
	return m.GenerateJSONFunc(ctx, key, prompt, tier)
}

// GetModel returns a fixed model name
func (m *MockClient) GetModel(_ llm.ModelTier) string {
	return "mock-model"
}

// Close is a no-op
func (m *MockClient) Close() error {
	return nil
}

// Calls returns a copy of all recorded calls in arrival order
func (m *MockClient) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallsFor returns the recorded calls for one prompt key
func (m *MockClient) CallsFor(key string) []Call {
	var out []Call
	for _, c := range m.Calls() {
		if c.Key == key {
			out = append(out, c)
		}
	}
	return out
}
