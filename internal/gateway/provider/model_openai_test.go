package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type capturedRequest struct {
	Model       string  `json:"model"`
	Temperature float64 `json:"temperature"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func completionBody(contents ...string) string {
	choices := make([]map[string]any, 0, len(contents))
	for i, c := range contents {
		choices = append(choices, map[string]any{
			"index":         i,
			"finish_reason": "stop",
			"message":       map[string]any{"role": "assistant", "content": c},
		})
	}
	b, _ := json.Marshal(map[string]any{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 0,
		"model":   "deepseek-r1-distill-llama-70b",
		"choices": choices,
		"usage":   map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
	})
	return string(b)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *OpenAIChatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewOpenAIChatClient(ClientConfig{
		ID:      "groq:test",
		BaseURL: srv.URL + "/openai/v1",
		APIKey:  "gsk-test",
		Model:   "deepseek-r1-distill-llama-70b",
		Headers: map[string]string{"X-Client": "stockbrief"},
	})
	require.NoError(t, err)
	return client
}

func TestComplete_SendsRequestAndReturnsFirstChoice(t *testing.T) {
	var got capturedRequest
	var auth, header, path string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		auth = r.Header.Get("Authorization")
		header = r.Header.Get("X-Client")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody("technical view", "ignored")))
	})

	out, err := client.Complete(context.Background(), ChatRequest{
		Purpose:     "analysis",
		Messages:    []Message{UserMessage("Analyze this stock data")},
		Temperature: 0.7,
	})
	require.NoError(t, err)

	assert.Equal(t, "technical view", out)
	assert.Equal(t, "/openai/v1/chat/completions", path)
	assert.Equal(t, "Bearer gsk-test", auth)
	assert.Equal(t, "stockbrief", header)
	assert.Equal(t, "deepseek-r1-distill-llama-70b", got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "Analyze this stock data", got.Messages[0].Content)
}

func TestComplete_EmptyChoices(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(completionBody()))
	})

	_, err := client.Complete(context.Background(), ChatRequest{Messages: []Message{UserMessage("hi")}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInference)
	assert.Contains(t, err.Error(), "no choices")
}

func TestComplete_ServerErrorIsNotRetried(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"message":"over capacity","type":"server_error"}}`))
	})

	_, err := client.Complete(context.Background(), ChatRequest{Messages: []Message{UserMessage("hi")}})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInference)
	assert.Equal(t, int32(1), calls.Load())
}

func TestComplete_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	client, err := NewOpenAIChatClient(ClientConfig{BaseURL: url, APIKey: "k", Model: "m"})
	require.NoError(t, err)

	_, err = client.Complete(context.Background(), ChatRequest{Messages: []Message{UserMessage("hi")}})
	assert.ErrorIs(t, err, ErrInference)
}

func TestComplete_SystemMessageRole(t *testing.T) {
	var got capturedRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completionBody("ok")))
	})

	_, err := client.Complete(context.Background(), ChatRequest{
		Model:    "llama-3.3-70b-versatile",
		Messages: []Message{SystemMessage("be terse"), UserMessage("hi")},
	})
	require.NoError(t, err)
	assert.Equal(t, "llama-3.3-70b-versatile", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
}

func TestNewOpenAIChatClient_RequiresKey(t *testing.T) {
	_, err := NewOpenAIChatClient(ClientConfig{Model: "m"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "api key"))
}

func TestBuildChatModel_ID(t *testing.T) {
	m, err := BuildChatModel(ModelCfg{Provider: "groq", APIURL: "https://api.groq.com/openai/v1", APIKey: "k", Model: "deepseek-r1-distill-llama-70b"})
	require.NoError(t, err)
	assert.Equal(t, "groq:deepseek-r1-distill-llama-70b", m.ID())
}
