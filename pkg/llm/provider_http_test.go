package llm

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIProviderCall(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "chatcmpl-1", "object": "chat.completion", "created": 0, "model": "gpt-4o",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "done"}}],
			"usage": {"prompt_tokens": 7, "completion_tokens": 2, "total_tokens": 9}
		}`)
	}))
	defer server.Close()

	p := NewOpenAIProvider("gpt-4o", AuthProfile{Provider: ProviderOpenAI, APIKey: "sk-test", BaseURL: server.URL + "/v1/"})
	resp, err := p.Call(context.Background(), Request{
		System:   "be brief",
		Messages: []Message{UserMessage("build X")},
	})

	require.NoError(t, err)
	assert.Equal(t, "done", resp.Content)
	assert.Equal(t, 7, resp.Usage.InputTokens)
	assert.Equal(t, 2, resp.Usage.OutputTokens)
	assert.Equal(t, "gpt-4o", body["model"])
	assert.Len(t, body["messages"], 2)
}

func TestAnthropicProviderCall(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-ant-test", r.Header.Get("X-Api-Key"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))

		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-sonnet-4-20250514",
			"content": [{"type": "text", "text": "thinking "}, {"type": "text", "text": "done"}],
			"stop_reason": "end_turn", "stop_sequence": null,
			"usage": {"input_tokens": 11, "output_tokens": 3}
		}`)
	}))
	defer server.Close()

	p := NewAnthropicProvider("claude-sonnet-4-20250514", AuthProfile{Provider: ProviderAnthropic, APIKey: "sk-ant-test", BaseURL: server.URL})
	resp, err := p.Call(context.Background(), Request{
		System:   "be brief",
		Messages: []Message{UserMessage("build X"), AssistantMessage("ok"), UserMessage("go")},
	})

	require.NoError(t, err)
	assert.Equal(t, "thinking done", resp.Content)
	assert.Equal(t, 11, resp.Usage.InputTokens)
	assert.Equal(t, float64(defaultMaxTokens), body["max_tokens"])
	assert.Len(t, body["messages"], 3)
	assert.NotNil(t, body["system"])
}
