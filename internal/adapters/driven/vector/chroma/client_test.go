package chroma

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/researchbot/researchbot/internal/core/domain"
)

// newFakeChroma serves a minimal in-memory Chroma API.
func newFakeChroma(t *testing.T) (*httptest.Server, map[string][]addRequest) {
	t.Helper()
	collections := map[string]string{} // name -> id
	added := map[string][]addRequest{} // id -> payloads

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			var infos []collectionInfo
			for name, id := range collections {
				infos = append(infos, collectionInfo{ID: id, Name: name})
			}
			json.NewEncoder(w).Encode(infos)
		case http.MethodPost:
			var req map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			name := req["name"].(string)
			id, ok := collections[name]
			if !ok {
				id = "id-" + name
				collections[name] = id
			}
			json.NewEncoder(w).Encode(collectionInfo{ID: id, Name: name})
		}
	})
	mux.HandleFunc("/api/v1/collections/", func(w http.ResponseWriter, r *http.Request) {
		path := r.URL.Path[len("/api/v1/collections/"):]
		switch {
		case r.Method == http.MethodDelete:
			if _, ok := collections[path]; !ok {
				http.NotFound(w, r)
				return
			}
			delete(collections, path)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && len(path) > 4 && path[len(path)-4:] == "/add":
			id := path[:len(path)-4]
			var req addRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			added[id] = append(added[id], req)
			w.WriteHeader(http.StatusOK)
		case r.Method == http.MethodPost && len(path) > 6 && path[len(path)-6:] == "/query":
			id := path[:len(path)-6]
			resp := queryResponse{
				IDs:       [][]string{{}},
				Documents: [][]string{{}},
				Metadatas: [][]map[string]any{{}},
				Distances: [][]float64{{}},
			}
			for _, batch := range added[id] {
				for i := range batch.IDs {
					resp.IDs[0] = append(resp.IDs[0], batch.IDs[i])
					resp.Documents[0] = append(resp.Documents[0], batch.Documents[i])
					resp.Metadatas[0] = append(resp.Metadatas[0], batch.Metadatas[i])
					resp.Distances[0] = append(resp.Distances[0], 0.5)
				}
			}
			json.NewEncoder(w).Encode(resp)
		default:
			http.NotFound(w, r)
		}
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server, added
}

func TestClient_EnsureAndListCollections(t *testing.T) {
	server, _ := newFakeChroma(t)
	client := NewClient(Config{BaseURL: server.URL})
	ctx := context.Background()

	require.NoError(t, client.EnsureCollection(ctx, "document_abc"))
	// Second ensure hits the cache, not the server.
	require.NoError(t, client.EnsureCollection(ctx, "document_abc"))

	names, err := client.ListCollections(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"document_abc"}, names)
}

func TestClient_AddAndQuery(t *testing.T) {
	server, added := newFakeChroma(t)
	client := NewClient(Config{BaseURL: server.URL})
	ctx := context.Background()

	chunks := []domain.Chunk{
		{ID: "c1", DocumentID: "doc-1", Content: "first chunk", Position: 0, Page: 1, Embedding: []float32{0.1, 0.2}},
		{ID: "c2", DocumentID: "doc-1", Content: "second chunk", Position: 1, Page: 2, Embedding: []float32{0.3, 0.4}},
	}
	require.NoError(t, client.AddChunks(ctx, "document_doc-1", chunks))
	require.Len(t, added["id-document_doc-1"], 1)

	hits, err := client.Query(ctx, "document_doc-1", []float32{0.1, 0.2}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "c1", hits[0].Chunk.ID)
	assert.Equal(t, "first chunk", hits[0].Chunk.Content)
	assert.Equal(t, "doc-1", hits[0].Chunk.DocumentID)
	assert.Equal(t, 1, hits[0].Chunk.Page)
	assert.InDelta(t, 1.0/1.5, hits[0].Relevance, 1e-9)
}

func TestClient_DeleteCollection(t *testing.T) {
	server, _ := newFakeChroma(t)
	client := NewClient(Config{BaseURL: server.URL})
	ctx := context.Background()

	require.NoError(t, client.EnsureCollection(ctx, "document_abc"))
	require.NoError(t, client.DeleteCollection(ctx, "document_abc"))

	names, err := client.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, names)

	// Deleting again is not an error.
	require.NoError(t, client.DeleteCollection(ctx, "document_abc"))
}

func TestClient_ListCollectionsServerDown(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})

	_, err := client.ListCollections(context.Background())
	assert.Error(t, err)
}
