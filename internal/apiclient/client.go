package apiclient

import (
	"context"
	"io"
	"net/http"
	"time"
)

const (
	// ConnectTimeout bounds establishing the connection.
	ConnectTimeout = 10 * time.Second
	// ReadTimeout bounds waiting for response headers and for each chunk of
	// a streamed body.
	ReadTimeout = 10 * time.Second
	// ChunkSize is the buffer used while streaming a download to disk.
	ChunkSize = 8192
)

// RequestOptions holds options for a streamed request.
type RequestOptions struct {
	Headers map[string]string
}

// Response represents a general HTTP response.
type Response struct {
	StatusCode    int
	Body          []byte      // Raw response body
	Headers       http.Header // Standard http.Header
	ContentLength int64       // Declared length, -1 if unknown
	RequestURL    string      // The URL that was requested
}

// IsSuccess checks if the status code is in the 2xx range.
func (r *Response) IsSuccess() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// StreamResponse is for responses where the body is streamed, e.g., file downloads.
type StreamResponse struct {
	StatusCode    int
	Body          io.ReadCloser // The response body stream; caller must close it.
	Headers       http.Header
	ContentLength int64  // Content-Length from header, or -1 if not available/applicable
	RequestURL    string // The URL that was requested
}

// HTTPClient defines the interface for a generic HTTP client.
// Implementations of this interface will handle the actual HTTP communication.
type HTTPClient interface {
	// Do performs the exchange described by cfg and reads the whole body.
	// Caller headers are applied as given; when a body is present and no
	// Content-Type header was supplied the body's default type is added.
	Do(ctx context.Context, cfg *RequestConfig) (*Response, error)

	// GetStream performs an HTTP GET request and returns a response with a body stream.
	// This is suitable for downloading large files. The caller is responsible for closing StreamResponse.Body.
	GetStream(ctx context.Context, url string, opts *RequestOptions) (*StreamResponse, error)
}
