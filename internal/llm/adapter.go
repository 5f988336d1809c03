package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jonathan/doc-podcast/internal/prompts"
	"github.com/jonathan/doc-podcast/internal/schemas"
)

// CallRequest describes one schema-constrained model call
type CallRequest struct {
	Stage      string            // stage name, carried into errors
	PromptFile string            // embedded prompt file, e.g. "extraction.json"
	PromptKey  string            // key within the prompt file
	Variables  map[string]string // {{.Key}} substitutions
	Schema     string            // embedded response schema name, e.g. "key_points"
	Tier       ModelTier
}

// Caller sends a prompt and decodes a schema-valid response into out.
// Implementations return *AdapterError when no response was obtained and
// *SchemaValidationError when the response does not conform.
type Caller interface {
	Call(ctx context.Context, req CallRequest, out any) error
}

// Adapter is the Caller backed by an LLM Client
type Adapter struct {
	client Client
}

// NewAdapter creates an Adapter over client
func NewAdapter(client Client) *Adapter {
	return &Adapter{client: client}
}

// Call renders the prompt, calls the model at the requested tier, validates the
// response against the named schema and decodes it into out.
func (a *Adapter) Call(ctx context.Context, req CallRequest, out any) error {
	template, err := prompts.Get(req.PromptFile, req.PromptKey)
	if err != nil {
		return &AdapterError{Stage: req.Stage, Message: "prompt unavailable", Cause: err}
	}
	prompt := prompts.Format(template, req.Variables)

	raw, err := a.client.GenerateJSON(ctx, prompt, req.Tier)
	if err != nil {
		return &AdapterError{Stage: req.Stage, Message: "generation failed", Cause: err}
	}
	payload := CleanJSONBlock(raw)

	if req.Schema != "" {
		if err := schemas.ValidateResponse(req.Schema, payload); err != nil {
			var loadErr *schemas.SchemaLoadError
			if errors.As(err, &loadErr) {
				return &AdapterError{Stage: req.Stage, Message: "response schema unavailable", Cause: err}
			}
			return &SchemaValidationError{Stage: req.Stage, Payload: payload, Cause: err}
		}
	}

	if err := json.Unmarshal([]byte(payload), out); err != nil {
		return &SchemaValidationError{
			Stage:   req.Stage,
			Payload: payload,
			Cause:   fmt.Errorf("failed to decode response: %w", err),
		}
	}
	return nil
}

// CallerFunc adapts a function to the Caller interface
type CallerFunc func(ctx context.Context, req CallRequest, out any) error

// Call invokes f
func (f CallerFunc) Call(ctx context.Context, req CallRequest, out any) error {
	return f(ctx, req, out)
}
