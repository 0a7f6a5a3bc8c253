package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"email-classifier/internal/config"
	"email-classifier/internal/logger"
	"email-classifier/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, provider string, handler http.HandlerFunc) (*aiClient, *int32) {
	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	cfg := &config.Config{AIProvider: provider, AIKey: "test-key", AIBaseURL: server.URL}
	return NewAIClient(cfg, logger.Nop()).(*aiClient), &hits
}

func chatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id": "chatcmpl-1",
		"choices": []map[string]interface{}{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}},
		},
	}
}

func TestClassifyAndReplyOpenAI(t *testing.T) {
	client, hits := newTestClient(t, ProviderOpenAI, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req chatCompletionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "gpt-4o-mini", req.Model)
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "Preciso do boleto")

		json.NewEncoder(w).Encode(chatResponse(`{"categoria": " produtivo ", "resposta_sugerida": " Vamos enviar o boleto. "}`))
	})

	result, err := client.ClassifyAndReply(context.Background(), "Preciso do boleto")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryProductive, result.Category)
	assert.Equal(t, "Vamos enviar o boleto.", result.SuggestedReply)
	assert.Equal(t, int32(1), atomic.LoadInt32(hits))
}

func TestClassifyAndReplyGemini(t *testing.T) {
	client, _ := newTestClient(t, ProviderGemini, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/gemini-2.0-flash-lite:generateContent", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("x-goog-api-key"))

		json.NewEncoder(w).Encode(map[string]interface{}{
			"candidates": []map[string]interface{}{
				{"content": map[string]interface{}{
					"parts": []map[string]string{{"text": "```json\n{\"categoria\": \"Improdutivo\", \"resposta_sugerida\": \"Obrigado!\"}\n```"}},
				}},
			},
		})
	})

	result, err := client.ClassifyAndReply(context.Background(), "Feliz aniversário")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryUnproductive, result.Category)
	assert.Equal(t, "Obrigado!", result.SuggestedReply)
}

func TestClassifyAndReplyFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "body is not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("not json"))
			},
		},
		{
			name: "content is not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(chatResponse("Produtivo"))
			},
		},
		{
			name: "empty category",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(chatResponse(`{"categoria": "   ", "resposta_sugerida": "ok"}`))
			},
		},
		{
			name: "unknown category",
			handler: func(w http.ResponseWriter, r *http.Request) {
				json.NewEncoder(w).Encode(chatResponse(`{"categoria": "Spam", "resposta_sugerida": "ok"}`))
			},
		},
		{
			name: "no choices",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(`{"choices": []}`))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, hits := newTestClient(t, ProviderOpenAI, tt.handler)

			result, err := client.ClassifyAndReply(context.Background(), "Preciso de ajuda")
			assert.Nil(t, result)
			assert.ErrorIs(t, err, ErrRemoteClassification)
			// never retried
			assert.Equal(t, int32(1), atomic.LoadInt32(hits))
		})
	}
}

func TestClassifyAndReplyTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	client := NewAIClient(&config.Config{AIKey: "k", AIBaseURL: url}, logger.Nop())
	_, err := client.ClassifyAndReply(context.Background(), "Preciso de ajuda")
	assert.ErrorIs(t, err, ErrRemoteClassification)
}

func TestClassifyAndReplyNotConfigured(t *testing.T) {
	client := NewAIClient(&config.Config{}, logger.Nop())
	assert.False(t, client.Enabled())

	_, err := client.ClassifyAndReply(context.Background(), "Preciso de ajuda")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.ErrorIs(t, err, ErrRemoteClassification)
}

func TestProviderDefaults(t *testing.T) {
	client := NewAIClient(&config.Config{AIProvider: "DeepSeek", AIKey: "k"}, logger.Nop()).(*aiClient)
	assert.Equal(t, ProviderDeepSeek, client.provider)
	assert.Equal(t, "https://api.deepseek.com", client.baseURL)
	assert.Equal(t, "deepseek-chat", client.model)

	client = NewAIClient(&config.Config{AIKey: "k", AIModel: "gpt-4.1-mini"}, logger.Nop()).(*aiClient)
	assert.Equal(t, ProviderOpenAI, client.provider)
	assert.Equal(t, "https://api.openai.com/v1", client.baseURL)
	assert.Equal(t, "gpt-4.1-mini", client.model)
}

func TestMockAIClient(t *testing.T) {
	mock := NewMockAIClient()
	result, err := mock.ClassifyAndReply(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, model.CategoryProductive, result.Category)

	mock.Disabled = true
	_, err = mock.ClassifyAndReply(context.Background(), "x")
	assert.ErrorIs(t, err, ErrNotConfigured)
	assert.Equal(t, 2, mock.Calls())
}
