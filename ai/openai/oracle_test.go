package openai

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/poiesic/qamatch/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type chatRequest struct {
	Model    string `json:"model"`
	Messages []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

func chatServer(t *testing.T, reply string, seen *chatRequest) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		body, err := io.ReadAll(r.Body)
		assert.NoError(t, err)
		assert.NoError(t, json.Unmarshal(body, seen))

		w.Header().Set("Content-Type", "application/json")
		resp := map[string]any{
			"id":      "chatcmpl-1",
			"object":  "chat.completion",
			"created": 1700000000,
			"model":   seen.Model,
			"choices": []map[string]any{{
				"index":         0,
				"message":       map[string]any{"role": "assistant", "content": reply},
				"finish_reason": "stop",
			}},
			"usage": map[string]any{"prompt_tokens": 10, "completion_tokens": 5, "total_tokens": 15},
		}
		assert.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestOracle_Complete(t *testing.T) {
	var seen chatRequest
	srv := chatServer(t, "SIMILAR|A function bundled with its lexical scope.", &seen)

	oracle, err := NewOracle(ai.NewConfig(
		ai.WithOracleHost(srv.URL),
		ai.WithOracleModel("test-model"),
		ai.WithAPIKey("sk-test"),
	))
	require.NoError(t, err)

	reply, err := oracle.Complete(context.Background(), []ai.Message{
		{Role: ai.RoleSystem, Content: "system text"},
		{Role: ai.RoleUser, Content: "user text"},
	})
	require.NoError(t, err)
	assert.Equal(t, "SIMILAR|A function bundled with its lexical scope.", reply)

	assert.Equal(t, "test-model", seen.Model)
	require.Len(t, seen.Messages, 2)
	assert.Equal(t, "system", seen.Messages[0].Role)
	assert.Equal(t, "system text", seen.Messages[0].Content)
	assert.Equal(t, "user", seen.Messages[1].Role)
	assert.Equal(t, "user text", seen.Messages[1].Content)
}

func TestOracle_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":{"message":"boom","type":"server_error"}}`, http.StatusInternalServerError)
	}))
	defer srv.Close()

	oracle, err := NewOracle(ai.NewConfig(
		ai.WithOracleHost(srv.URL),
		ai.WithOracleModel("test-model"),
		ai.WithAPIKey("sk-test"),
	))
	require.NoError(t, err)

	_, err = oracle.Complete(context.Background(), []ai.Message{{Role: ai.RoleUser, Content: "hi"}})
	assert.Error(t, err)
}

func TestOracle_UnsupportedRole(t *testing.T) {
	oracle, err := NewOracle(ai.NewConfig(ai.WithOracleModel("m")))
	require.NoError(t, err)

	_, err = oracle.Complete(context.Background(), []ai.Message{{Role: "assistant", Content: "x"}})
	assert.ErrorContains(t, err, "unsupported message role")
}

func TestNewProvider(t *testing.T) {
	provider, err := NewProvider(ai.NewConfig(ai.WithOracleModel("m")))
	require.NoError(t, err)
	defer provider.Close()
	assert.NotNil(t, provider.Oracle())

	_, err = NewProvider(&ai.Config{})
	assert.Error(t, err)
}
