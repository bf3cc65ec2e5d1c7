package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"med-overflow/internal/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type chatCompletionCapture struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func newChatTestServer(t *testing.T, capture *chatCompletionCapture, reply string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(capture))
		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": reply}},
			},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(func() {
		srv.Close()
		http.DefaultTransport.(*http.Transport).CloseIdleConnections()
	})
	return srv
}

func TestAskFramesTheConversation(t *testing.T) {
	var capture chatCompletionCapture
	srv := newChatTestServer(t, &capture, "Rest and drink fluids.")

	client := NewChatClient(ChatConfig{
		APIKey:  "chat-key",
		BaseURL: srv.URL,
		Model:   "gpt-4-0125-preview",
		Logger:  zap.NewNop(),
	})

	reply, err := client.Ask(context.Background(), "about the flu")
	require.NoError(t, err)
	assert.Equal(t, "Rest and drink fluids.", reply)

	assert.Equal(t, "gpt-4-0125-preview", capture.Model)
	require.Len(t, capture.Messages, 2)
	assert.Equal(t, "system", capture.Messages[0].Role)
	assert.Equal(t, systemPrompt, capture.Messages[0].Content)
	assert.Equal(t, "user", capture.Messages[1].Role)
	assert.Equal(t, "Tell me about the flu", capture.Messages[1].Content)
}

func TestAskEmptyCompletion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	t.Cleanup(func() {
		srv.Close()
		http.DefaultTransport.(*http.Transport).CloseIdleConnections()
	})

	client := NewChatClient(ChatConfig{
		APIKey:  "chat-key",
		BaseURL: srv.URL,
		Model:   "gpt-4-0125-preview",
		Logger:  zap.NewNop(),
	})

	_, err := client.Ask(context.Background(), "about the flu")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUpstream))
}

func TestAskProviderFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"rate limited"}}`, http.StatusTooManyRequests)
	}))
	t.Cleanup(func() {
		srv.Close()
		http.DefaultTransport.(*http.Transport).CloseIdleConnections()
	})

	client := NewChatClient(ChatConfig{
		APIKey:  "chat-key",
		BaseURL: srv.URL,
		Model:   "gpt-4-0125-preview",
		Logger:  zap.NewNop(),
	})

	_, err := client.Ask(context.Background(), "about the flu")
	require.Error(t, err)
	assert.True(t, utils.IsErrorCode(err, utils.ErrUpstream))
}
