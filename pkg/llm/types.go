package llm

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/openai/openai-go"
)

// Role names a conversation participant
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one conversation turn
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// UserMessage builds a user turn
func UserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content}
}

// AssistantMessage builds an assistant turn
func AssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content}
}

// Request contains the parameters of one model call.
// Model is filled in by the Client when empty.
type Request struct {
	Model       string
	System      string
	Messages    []Message
	MaxTokens   int
	Temperature float64
}

// Chars returns the number of characters sent with the request
func (r Request) Chars() int {
	n := len(r.System)
	for _, m := range r.Messages {
		n += len(m.Content)
	}
	return n
}

// Response contains the model output of one call
type Response struct {
	Content string
	Usage   Usage
}

// Usage tracks token consumption
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Client performs model calls for a single configured model
type Client interface {
	Call(ctx context.Context, req Request) (*Response, error)
	Provider() string
	Model() string
}

// AuthProfile represents credentials for one provider account
type AuthProfile struct {
	ID       string `json:"id"`
	Provider string `json:"provider"`
	APIKey   string `json:"api_key"`
	BaseURL  string `json:"base_url,omitempty"`
	Priority int    `json:"priority"`
}

const defaultMaxTokens = 4096

var (
	// ErrNoCredentials means no profile serves the provider of the requested model
	ErrNoCredentials = errors.New("no credentials configured for model provider")
	// ErrEmptyResponse means the provider answered without any choice
	ErrEmptyResponse = errors.New("no response choices returned")
)

// IsRetryableError checks if an error should be retried
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	var anthropicErr *anthropic.Error
	if errors.As(err, &anthropicErr) {
		return retryableStatus(anthropicErr.StatusCode)
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) {
		return retryableStatus(openaiErr.StatusCode)
	}

	msg := err.Error()
	for _, marker := range []string{"ECONNRESET", "ETIMEDOUT", "connection reset", "rate limit", "429", "500", "502", "503", "504", "529"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}
