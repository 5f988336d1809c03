package llm

import (
	"context"

	"golang.org/x/time/rate"
)

// RateLimitedClient throttles calls to an underlying Client.
// Concurrent verification batches share one limiter.
type RateLimitedClient struct {
	inner   Client
	limiter *rate.Limiter
}

// NewRateLimitedClient wraps client so that at most requestsPerSecond calls start per second.
// A non-positive rate returns the client unchanged.
func NewRateLimitedClient(client Client, requestsPerSecond float64, burst int) Client {
	if requestsPerSecond <= 0 {
		return client
	}
	if burst <= 0 {
		burst = 1
	}
	return &RateLimitedClient{
		inner:   client,
		limiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
	}
}

// GenerateContent waits for a token and delegates
func (c *RateLimitedClient) GenerateContent(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.inner.GenerateContent(ctx, prompt, tier)
}

// GenerateJSON waits for a token and delegates
func (c *RateLimitedClient) GenerateJSON(ctx context.Context, prompt string, tier ModelTier) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", err
	}
	return c.inner.GenerateJSON(ctx, prompt, tier)
}

// GetModel delegates to the wrapped client
func (c *RateLimitedClient) GetModel(tier ModelTier) string {
	return c.inner.GetModel(tier)
}

// Close closes the wrapped client
func (c *RateLimitedClient) Close() error {
	return c.inner.Close()
}
