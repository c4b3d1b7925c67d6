package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

// RetryingClient retries retryable failures with exponential backoff
type RetryingClient struct {
	inner      Client
	maxRetries int
	baseDelay  time.Duration
	logger     zerolog.Logger
}

// NewRetryingClient wraps inner; maxRetries <= 0 means 3 attempts
func NewRetryingClient(inner Client, maxRetries int, logger zerolog.Logger) *RetryingClient {
	if maxRetries <= 0 {
		maxRetries = 3
	}
	return &RetryingClient{
		inner:      inner,
		maxRetries: maxRetries,
		baseDelay:  time.Second,
		logger:     logger,
	}
}

// Provider returns the wrapped provider name
func (c *RetryingClient) Provider() string { return c.inner.Provider() }

// Model returns the wrapped model name
func (c *RetryingClient) Model() string { return c.inner.Model() }

// Call calls the wrapped client, backing off 1s, 2s, 4s... between attempts
func (c *RetryingClient) Call(ctx context.Context, req Request) (*Response, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxRetries; attempt++ {
		resp, err := c.inner.Call(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if !IsRetryableError(err) {
			return nil, err
		}
		if attempt == c.maxRetries-1 {
			break
		}

		delay := c.baseDelay * time.Duration(1<<attempt)
		c.logger.Info().
			Int("attempt", attempt+1).
			Dur("delay", delay).
			Err(err).
			Msg("Retrying model call after error")

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}

	return nil, fmt.Errorf("max retries (%d) exceeded: %w", c.maxRetries, lastErr)
}

// FailoverClient tries each client in order, moving on only after a retryable failure
type FailoverClient struct {
	clients []Client
	logger  zerolog.Logger
}

// NewFailoverClient chains clients; the first one names the provider and model
func NewFailoverClient(clients []Client, logger zerolog.Logger) *FailoverClient {
	return &FailoverClient{clients: clients, logger: logger}
}

// Provider returns the primary provider name
func (c *FailoverClient) Provider() string { return c.clients[0].Provider() }

// Model returns the primary model name
func (c *FailoverClient) Model() string { return c.clients[0].Model() }

// Call tries each client until one succeeds or a permanent error occurs
func (c *FailoverClient) Call(ctx context.Context, req Request) (*Response, error) {
	var lastErr error
	for i, client := range c.clients {
		resp, err := client.Call(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !IsRetryableError(err) {
			return nil, err
		}
		c.logger.Warn().Int("client", i).Err(err).Msg("Model client failed, trying next profile")
	}
	return nil, fmt.Errorf("all profiles failed: %w", lastErr)
}
