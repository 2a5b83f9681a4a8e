// Package chroma provides a vector store adapter backed by a Chroma
// server's REST API.
package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/researchbot/researchbot/internal/core/domain"
	"github.com/researchbot/researchbot/internal/core/ports/driven"
)

// Ensure Client implements the interface.
var _ driven.VectorStore = (*Client)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:8000"
	DefaultTimeout = 30 * time.Second
)

// Config holds configuration for the Chroma client.
type Config struct {
	// BaseURL is the Chroma server URL (default: http://localhost:8000).
	BaseURL string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Client talks to a Chroma server. Collections are addressed by name in
// the driven port; the client resolves and caches their server-side IDs.
type Client struct {
	client  *http.Client
	baseURL string

	mu  sync.Mutex
	ids map[string]string
}

// collectionInfo is the server's collection representation.
type collectionInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// addRequest is the payload for inserting embeddings.
type addRequest struct {
	IDs        []string         `json:"ids"`
	Embeddings [][]float32      `json:"embeddings"`
	Documents  []string         `json:"documents"`
	Metadatas  []map[string]any `json:"metadatas"`
}

// queryRequest is the payload for similarity queries.
type queryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

// queryResponse is the server's query result format.
type queryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// NewClient creates a new Chroma client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
		ids:     make(map[string]string),
	}
}

// ListCollections returns the names of all live collections.
func (c *Client) ListCollections(ctx context.Context) ([]string, error) {
	var infos []collectionInfo
	if err := c.do(ctx, http.MethodGet, "/api/v1/collections", nil, &infos); err != nil {
		return nil, fmt.Errorf("listing collections: %w", err)
	}

	names := make([]string, 0, len(infos))
	c.mu.Lock()
	for _, info := range infos {
		c.ids[info.Name] = info.ID
		names = append(names, info.Name)
	}
	c.mu.Unlock()
	return names, nil
}

// EnsureCollection creates a collection if it does not exist.
func (c *Client) EnsureCollection(ctx context.Context, name string) error {
	_, err := c.resolveID(ctx, name)
	return err
}

// DeleteCollection removes a collection and its vectors.
// Deleting an absent collection is not an error.
func (c *Client) DeleteCollection(ctx context.Context, name string) error {
	err := c.do(ctx, http.MethodDelete, "/api/v1/collections/"+name, nil, nil)
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("deleting collection: %w", err)
	}
	c.mu.Lock()
	delete(c.ids, name)
	c.mu.Unlock()
	return nil
}

// AddChunks inserts chunks with their embeddings into a collection.
func (c *Client) AddChunks(ctx context.Context, collection string, chunks []domain.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	id, err := c.resolveID(ctx, collection)
	if err != nil {
		return err
	}

	req := addRequest{
		IDs:        make([]string, len(chunks)),
		Embeddings: make([][]float32, len(chunks)),
		Documents:  make([]string, len(chunks)),
		Metadatas:  make([]map[string]any, len(chunks)),
	}
	for i, chunk := range chunks {
		req.IDs[i] = chunk.ID
		req.Embeddings[i] = chunk.Embedding
		req.Documents[i] = chunk.Content
		req.Metadatas[i] = map[string]any{
			"document_id": chunk.DocumentID,
			"position":    chunk.Position,
			"page":        chunk.Page,
		}
	}

	if err := c.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/add", req, nil); err != nil {
		return fmt.Errorf("adding chunks: %w", err)
	}
	return nil
}

// Query finds the k most similar chunks to the query embedding.
func (c *Client) Query(ctx context.Context, collection string, embedding []float32, k int) ([]domain.ChunkHit, error) {
	id, err := c.resolveID(ctx, collection)
	if err != nil {
		return nil, err
	}

	req := queryRequest{
		QueryEmbeddings: [][]float32{embedding},
		NResults:        k,
		Include:         []string{"documents", "metadatas", "distances"},
	}
	var resp queryResponse
	if err := c.do(ctx, http.MethodPost, "/api/v1/collections/"+id+"/query", req, &resp); err != nil {
		return nil, fmt.Errorf("querying collection: %w", err)
	}
	if len(resp.IDs) == 0 {
		return nil, nil
	}

	hits := make([]domain.ChunkHit, 0, len(resp.IDs[0]))
	for i, chunkID := range resp.IDs[0] {
		hit := domain.ChunkHit{Chunk: domain.Chunk{ID: chunkID}}
		if len(resp.Documents) > 0 && i < len(resp.Documents[0]) {
			hit.Chunk.Content = resp.Documents[0][i]
		}
		if len(resp.Metadatas) > 0 && i < len(resp.Metadatas[0]) {
			meta := resp.Metadatas[0][i]
			hit.Chunk.DocumentID = metaString(meta, "document_id")
			hit.Chunk.Position = metaInt(meta, "position")
			hit.Chunk.Page = metaInt(meta, "page")
		}
		if len(resp.Distances) > 0 && i < len(resp.Distances[0]) {
			// Chroma returns distances; closer means more relevant.
			hit.Relevance = 1.0 / (1.0 + resp.Distances[0][i])
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

// resolveID maps a collection name to its server-side ID, creating the
// collection on first use.
func (c *Client) resolveID(ctx context.Context, name string) (string, error) {
	c.mu.Lock()
	if id, ok := c.ids[name]; ok {
		c.mu.Unlock()
		return id, nil
	}
	c.mu.Unlock()

	req := map[string]any{"name": name, "get_or_create": true}
	var info collectionInfo
	if err := c.do(ctx, http.MethodPost, "/api/v1/collections", req, &info); err != nil {
		return "", fmt.Errorf("ensuring collection %s: %w", name, err)
	}

	c.mu.Lock()
	c.ids[name] = info.ID
	c.mu.Unlock()
	return info.ID, nil
}

// do sends one JSON request and decodes the response into out.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		jsonBody, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return &statusError{code: resp.StatusCode, body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

// statusError carries a non-200 response.
type statusError struct {
	code int
	body string
}

func (e *statusError) Error() string {
	return "chroma error (status " + strconv.Itoa(e.code) + "): " + e.body
}

// isNotFound reports whether err is a 404 from the server.
func isNotFound(err error) bool {
	se, ok := err.(*statusError)
	return ok && se.code == http.StatusNotFound
}

func metaString(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func metaInt(meta map[string]any, key string) int {
	if v, ok := meta[key].(float64); ok {
		return int(v)
	}
	return 0
}
