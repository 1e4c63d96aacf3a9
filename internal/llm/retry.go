package llm

import (
	"context"
	"time"
)

// defaultMaxAttempts bounds retries so a misbehaving provider cannot stall
// a cycle indefinitely.
const defaultMaxAttempts = 3

// RetryingClient wraps a Client with bounded retry and exponential backoff.
// Only transient errors (rate limits, timeouts) are retried; auth failures
// and malformed responses surface immediately.
type RetryingClient struct {
	inner       Client
	maxAttempts int
	baseDelay   time.Duration
}

// WithRetry wraps client with the default retry policy (3 attempts, 1s base
// backoff doubling per attempt).
func WithRetry(client Client) *RetryingClient {
	return &RetryingClient{
		inner:       client,
		maxAttempts: defaultMaxAttempts,
		baseDelay:   time.Second,
	}
}

// NewRetryingClient wraps client with an explicit retry policy.
// maxAttempts values below 1 are treated as 1.
func NewRetryingClient(client Client, maxAttempts int, baseDelay time.Duration) *RetryingClient {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &RetryingClient{inner: client, maxAttempts: maxAttempts, baseDelay: baseDelay}
}

// Complete generates free-form text, retrying transient failures
func (c *RetryingClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.do(ctx, prompt, c.inner.Complete)
}

// CompleteJSON generates a JSON object response, retrying transient failures
func (c *RetryingClient) CompleteJSON(ctx context.Context, prompt string) (string, error) {
	return c.do(ctx, prompt, c.inner.CompleteJSON)
}

// Model returns the wrapped client's model name
func (c *RetryingClient) Model() string {
	return c.inner.Model()
}

// Close releases resources held by the wrapped client
func (c *RetryingClient) Close() error {
	return c.inner.Close()
}

func (c *RetryingClient) do(ctx context.Context, prompt string, call func(context.Context, string) (string, error)) (string, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			delay := c.baseDelay << (attempt - 1)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		text, err := call(ctx, prompt)
		if err == nil {
			return text, nil
		}
		lastErr = err

		if !Retryable(err) {
			return "", err
		}
	}

	return "", lastErr
}
