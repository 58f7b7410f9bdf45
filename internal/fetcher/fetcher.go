// Package fetcher retrieves website bodies for quality analysis.
package fetcher

import (
	"context"
	"time"
)

// Response is the outcome of a single page fetch.
type Response struct {
	URL         string
	FinalURL    string
	StatusCode  int
	ContentType string
	Body        []byte
	Elapsed     time.Duration
	// Truncated is set when the body exceeded the size cap and was cut short.
	Truncated bool
}

// Fetcher defines the interface for downloading a page.
type Fetcher interface {
	// Fetch performs one GET against url bounded by timeout. Responses with a
	// status below 500 are returned; 5xx and transport failures are errors.
	Fetch(ctx context.Context, url string, timeout time.Duration) (*Response, error)
}
