package llm

import (
	"context"
	"effisense-go/internal/config"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/sony/gobreaker/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConfig(url string) config.LLMConfig {
	return config.LLMConfig{
		APIKey:  "test-key",
		BaseURL: url,
		Model:   "test-model",
		Generation: config.LLMGenerationConfig{
			MaxTokens: 300,
		},
		Breaker: config.LLMBreakerConfig{FailureThreshold: 2, OpenSeconds: 60},
	}
}

func TestChatCompletionReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		assert.False(t, req.Stream)
		require.NotNil(t, req.MaxTokens)
		assert.Equal(t, 300, *req.MaxTokens)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Lower the thermostat by 1°C."}}]}`))
	}))
	defer srv.Close()

	c := NewClient(newTestConfig(srv.URL))
	reply, err := c.ChatCompletion(context.Background(), []Message{
		{Role: "system", Content: "energy only"},
		{Role: "user", Content: "how do I save?"},
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Lower the thermostat by 1°C.", reply)
}

func TestChatCompletionMissingKey(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer srv.Close()

	cfg := newTestConfig(srv.URL)
	cfg.APIKey = "  "
	_, err := NewClient(cfg).ChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorIs(t, err, ErrMissingAPIKey)
	assert.Zero(t, calls.Load())
}

func TestChatCompletionNoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	_, err := NewClient(newTestConfig(srv.URL)).ChatCompletion(context.Background(), []Message{{Role: "user", Content: "hi"}}, nil)
	assert.ErrorIs(t, err, ErrNoChoices)
}

func TestChatCompletionBreakerOpensAfterFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(newTestConfig(srv.URL))
	msgs := []Message{{Role: "user", Content: "hi"}}

	for i := 0; i < 2; i++ {
		_, err := c.ChatCompletion(context.Background(), msgs, nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "non-200")
	}

	_, err := c.ChatCompletion(context.Background(), msgs, nil)
	assert.ErrorIs(t, err, gobreaker.ErrOpenState)
	assert.Equal(t, int32(2), calls.Load())
}
