package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFakeEmbeddingServer(t *testing.T) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer test-key" {
			w.WriteHeader(http.StatusUnauthorized)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": map[string]any{"message": "invalid API key", "type": "auth"},
			})
			return
		}

		switch r.URL.Path {
		case "/models":
			w.WriteHeader(http.StatusOK)
		case "/embeddings":
			var req embeddingRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

			data := make([]map[string]any, len(req.Input))
			for i := range req.Input {
				// Reverse order exercises index-based reassembly.
				data[len(req.Input)-1-i] = map[string]any{
					"embedding": []float64{float64(i), 1},
					"index":     i,
				}
			}
			_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
}

func newTestEmbeddingService(t *testing.T, baseURL, apiKey string) *EmbeddingService {
	t.Helper()

	svc, err := NewEmbeddingService(Config{
		APIKey:            apiKey,
		BaseURL:           baseURL,
		RequestsPerSecond: 1000,
	})
	require.NoError(t, err)
	return svc
}

func TestNewEmbeddingService_RequiresAPIKey(t *testing.T) {
	_, err := NewEmbeddingService(Config{})
	assert.Error(t, err)
}

func TestNewEmbeddingService_Defaults(t *testing.T) {
	svc, err := NewEmbeddingService(Config{APIKey: "test-key"})
	require.NoError(t, err)
	assert.Equal(t, DefaultModel, svc.ModelName())
}

func TestEmbedBatch_OrdersByIndex(t *testing.T) {
	server := newFakeEmbeddingServer(t)
	defer server.Close()
	svc := newTestEmbeddingService(t, server.URL, "test-key")

	embeddings, err := svc.EmbedBatch(context.Background(), []string{"first", "second", "third"})
	require.NoError(t, err)
	require.Len(t, embeddings, 3)
	assert.Equal(t, []float32{0, 1}, embeddings[0])
	assert.Equal(t, []float32{2, 1}, embeddings[2])
}

func TestEmbedBatch_EmptyInput(t *testing.T) {
	server := newFakeEmbeddingServer(t)
	defer server.Close()
	svc := newTestEmbeddingService(t, server.URL, "test-key")

	embeddings, err := svc.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, embeddings)
}

func TestEmbed_SingleText(t *testing.T) {
	server := newFakeEmbeddingServer(t)
	defer server.Close()
	svc := newTestEmbeddingService(t, server.URL, "test-key")

	embedding, err := svc.Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 1}, embedding)
}

func TestEmbedBatch_APIError(t *testing.T) {
	server := newFakeEmbeddingServer(t)
	defer server.Close()
	svc := newTestEmbeddingService(t, server.URL, "wrong-key")

	_, err := svc.EmbedBatch(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API key")
}

func TestPing(t *testing.T) {
	server := newFakeEmbeddingServer(t)
	defer server.Close()

	svc := newTestEmbeddingService(t, server.URL, "test-key")
	assert.NoError(t, svc.Ping(context.Background()))

	bad := newTestEmbeddingService(t, server.URL, "wrong-key")
	assert.Error(t, bad.Ping(context.Background()))
}
