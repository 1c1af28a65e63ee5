// Package httpclient issues the single GET requests a load run is made of.
package httpclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout bounds each individual request. Earlier versions of the
// tool used 5 seconds; 10 is the current default.
const DefaultTimeout = 10 * time.Second

// Client is the outbound HTTP dependency of the engine. Implementations must
// be safe for concurrent use.
type Client interface {
	Get(ctx context.Context, url string) (*Response, error)
}

// Response is one received HTTP response with its body fully read.
type Response struct {
	StatusCode    int
	Header        http.Header
	Body          []byte
	ContentLength int64 // -1 when the server sent no Content-Length
}

// TransportError is a request that failed below the HTTP layer: timeout,
// connection refused, DNS failure, or a body read cut short. Response is
// non-nil when a response had already arrived, e.g. the read failed mid-body.
type TransportError struct {
	Err      error
	Response *Response
}

func (e *TransportError) Error() string {
	return e.Err.Error()
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// HTTPClient is the production Client on top of net/http.
type HTTPClient struct {
	client *http.Client
	debug  *DebugLogger
}

// New creates an HTTPClient with the given per-request timeout.
// A non-positive timeout falls back to DefaultTimeout.
func New(timeout time.Duration, debug *DebugLogger) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		client: &http.Client{Timeout: timeout},
		debug:  debug,
	}
}

// Get issues one GET and reads the full body.
func (c *HTTPClient) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &TransportError{Err: err}
	}

	c.debug.LogRequest(req)

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		c.debug.LogError(err.Error(), time.Since(start))
		return nil, &TransportError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	response := &Response{
		StatusCode:    resp.StatusCode,
		Header:        resp.Header,
		Body:          body,
		ContentLength: resp.ContentLength,
	}
	if err != nil {
		c.debug.LogError(err.Error(), time.Since(start))
		return nil, &TransportError{
			Err:      fmt.Errorf("reading body: %w", err),
			Response: response,
		}
	}

	c.debug.LogResponse(resp, body, time.Since(start))
	return response, nil
}

// ResponseSize estimates the byte size of a response. The Content-Length
// header wins when the server sent one; otherwise the bytes actually read.
// Headers and transport framing are ignored, so this is an estimate, not a
// wire-byte count.
func ResponseSize(r *Response) int64 {
	if r == nil {
		return 0
	}
	if r.ContentLength >= 0 {
		return r.ContentLength
	}
	return int64(len(r.Body))
}
