package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *AnthropicClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewAnthropicClient(AnthropicConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "claude-3-5-sonnet-20241022",
		Timeout: 2 * time.Second,
	}, zerolog.Nop())
	require.NoError(t, err)
	return c
}

func TestCompleteReturnsTextAndUsage(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "why so many refunds?", req.Messages[0].Content)
		assert.Equal(t, "you are an analyst", req.System)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"content": [{"type":"text","text":"Refunds spiked "},{"type":"text","text":"after the recall."}],
			"usage": {"output_tokens": 42}
		}`))
	})

	got, err := c.Complete(context.Background(), Request{
		System:    "you are an analyst",
		Message:   "why so many refunds?",
		MaxTokens: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, "Refunds spiked after the recall.", got.Text)
	assert.Equal(t, 42, got.TokensUsed)
}

func TestCompleteMapsAuthErrors(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"type":"authentication_error","message":"invalid x-api-key"}}`))
	})

	_, err := c.Complete(context.Background(), Request{Message: "hi"})
	assert.ErrorIs(t, err, ErrAuth)
}

func TestCompleteMapsRateLimit(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	})

	_, err := c.Complete(context.Background(), Request{Message: "hi"})
	require.True(t, IsRateLimited(err))

	var rl *RateLimitError
	require.ErrorAs(t, err, &rl)
	assert.Equal(t, 7*time.Second, rl.RetryAfter)
}

func TestCompleteMapsTimeout(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.Complete(ctx, Request{Message: "hi"})
	assert.ErrorIs(t, err, ErrTimeout)
}

func TestNewAnthropicClientRequiresKey(t *testing.T) {
	_, err := NewAnthropicClient(AnthropicConfig{}, zerolog.Nop())
	assert.ErrorIs(t, err, ErrAuth)
}
