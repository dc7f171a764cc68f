// ABOUTME: Generation service client wrapping the OpenAI chat completion API
// ABOUTME: Bounded retries with jitter and the same error taxonomy as the store adapter
package llm

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	openai "github.com/sashabaranov/go-openai"

	"github.com/harper/docchat/internal/errs"
	"github.com/harper/docchat/internal/models"
)

const serviceName = "generation service"

// Config holds the generation service connection settings.
type Config struct {
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	MaxAttempts    int
	RetryBaseDelay time.Duration
}

// Client answers grounded prompts through a chat completion endpoint. Safe
// for concurrent use.
type Client struct {
	api         *openai.Client
	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
}

// NewClient builds a generation client. BaseURL switches the endpoint to any
// OpenAI-compatible server; empty means the public API.
func NewClient(cfg *Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("generation service API key is required")
	}

	apiCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	maxAttempts := cfg.MaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 500 * time.Millisecond
	}

	return &Client{
		api:         openai.NewClientWithConfig(apiCfg),
		timeout:     timeout,
		maxAttempts: maxAttempts,
		baseDelay:   baseDelay,
	}, nil
}

// Generate sends the prompt as a single user message and returns the model's
// answer. Transient failures (transport errors, 429, 5xx) are retried up to
// the configured attempts; auth and other client errors are surfaced
// immediately.
func (c *Client) Generate(ctx context.Context, prompt string, p models.GenerationParams) (string, error) {
	temperature := float32(p.Temperature)
	if p.Temperature == 0 {
		// The request struct omits a zero temperature from the JSON body,
		// letting the remote substitute its own default. The smallest
		// nonzero float keeps an explicit 0 on the wire.
		temperature = math.SmallestNonzeroFloat32
	}

	req := openai.ChatCompletionRequest{
		Model:       p.Model,
		Temperature: temperature,
		MaxTokens:   p.MaxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	}

	attempts := 0
	attempt := func() (string, error) {
		attempts++

		attemptCtx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()

		resp, err := c.api.CreateChatCompletion(attemptCtx, req)
		if err != nil {
			return "", classify(err)
		}
		if len(resp.Choices) == 0 {
			return "", backoff.Permanent(&errs.RemoteError{
				Service: serviceName,
				Status:  http.StatusOK,
				Msg:     "completion response contained no choices",
			})
		}
		return resp.Choices[0].Message.Content, nil
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = c.baseDelay
	bo.RandomizationFactor = 1
	policy := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(c.maxAttempts-1)), ctx)

	answer, err := backoff.RetryWithData(attempt, policy)
	if err != nil {
		if errs.IsAuth(err) || errs.IsRemote(err) {
			return "", err
		}
		return "", &errs.UnavailableError{Service: serviceName, Attempts: attempts, Err: err}
	}
	return answer, nil
}

// classify maps API errors into the shared taxonomy. Anything that is not an
// HTTP-level API error (DNS failures, timeouts, connection resets) stays
// retryable.
func classify(err error) error {
	var apiErr *openai.APIError
	if !errors.As(err, &apiErr) {
		return err
	}

	switch {
	case apiErr.HTTPStatusCode == http.StatusUnauthorized ||
		apiErr.HTTPStatusCode == http.StatusForbidden:
		return backoff.Permanent(&errs.AuthError{Service: serviceName, Msg: apiErr.Message})
	case apiErr.HTTPStatusCode == http.StatusRequestTimeout ||
		apiErr.HTTPStatusCode == http.StatusTooManyRequests ||
		apiErr.HTTPStatusCode >= 500:
		return err
	default:
		return backoff.Permanent(&errs.RemoteError{
			Service: serviceName,
			Status:  apiErr.HTTPStatusCode,
			Msg:     apiErr.Message,
		})
	}
}
