package driven

import "context"

// TextExtractor pulls plain text out of binary document formats.
// Backed by an Apache Tika server.
type TextExtractor interface {
	// Extract returns the text content of a file, split by page.
	// Formats without page structure yield a single page.
	Extract(ctx context.Context, path string) ([]ExtractedPage, error)

	// Ping validates the extraction service is reachable.
	Ping(ctx context.Context) error
}

// ExtractedPage is one page of extracted text.
type ExtractedPage struct {
	// Number is the 1-based page number.
	Number int

	// Text is the plain text content of the page.
	Text string
}
