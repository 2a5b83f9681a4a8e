// Package tika provides a text extractor backed by an Apache Tika
// server, covering PDF and office formats with one endpoint.
package tika

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/researchbot/researchbot/internal/core/ports/driven"
)

// Ensure Extractor implements the interface.
var _ driven.TextExtractor = (*Extractor)(nil)

// Default configuration values.
const (
	DefaultBaseURL = "http://localhost:9998"
	DefaultTimeout = 120 * time.Second
)

// Config holds configuration for the Tika extractor.
type Config struct {
	// BaseURL is the Tika server URL (default: http://localhost:9998).
	BaseURL string

	// Timeout is the request timeout (default: 120s).
	Timeout time.Duration
}

// Extractor sends files to a Tika server and splits the returned text
// into pages on form feed boundaries.
type Extractor struct {
	client  *http.Client
	baseURL string
}

// NewExtractor creates a new Tika extractor.
func NewExtractor(cfg Config) *Extractor {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Extractor{
		client:  &http.Client{Timeout: cfg.Timeout},
		baseURL: cfg.BaseURL,
	}
}

// Extract returns the text content of a file, split by page. Formats
// without page structure yield a single page.
func (e *Extractor) Extract(ctx context.Context, path string) ([]driven.ExtractedPage, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}
	defer f.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.baseURL+"/tika", f)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("tika error (status %d): %s", resp.StatusCode, string(body))
	}

	return splitPages(string(body)), nil
}

// Ping validates the Tika server is reachable.
func (e *Extractor) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, e.baseURL+"/version", http.NoBody)
	if err != nil {
		return fmt.Errorf("tika: failed to create ping request: %w", err)
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("tika: ping failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("tika: server returned status %d", resp.StatusCode)
	}
	return nil
}

// splitPages divides extracted text on form feeds, which Tika emits at
// PDF page boundaries. Empty pages are dropped; page numbers still
// count them so citations line up with the source.
func splitPages(text string) []driven.ExtractedPage {
	parts := strings.Split(text, "\f")
	pages := make([]driven.ExtractedPage, 0, len(parts))
	for i, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		pages = append(pages, driven.ExtractedPage{Number: i + 1, Text: trimmed})
	}
	return pages
}
