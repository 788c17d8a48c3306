package network

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Request is an HTTP-like call descriptor consumed by Transport.Fetch.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    []byte
	// Timeout bounds a single attempt. Zero means the client's own timeout applies.
	Timeout time.Duration
}

// Transport wraps a single network call with bounded retries and pure
// exponential backoff: between attempt i and i+1 (0-indexed) it sleeps 2^i
// seconds, no jitter. Every attempt presents a freshly randomized User-Agent
// merged with the transport's extra headers and the request's own headers,
// in that order, so caller-supplied headers win on conflict.
//
// After the final attempt fails, the last attempt's error is surfaced
// verbatim; earlier failures are not aggregated. The transport records
// nothing anywhere: success and failure accounting belongs to the layer
// that invoked it.
type Transport struct {
	client  *http.Client
	retries int
	extra   map[string]string
}

// NewTransport builds a retrying transport over the given client.
// maxRetries below 1 is treated as a single attempt.
func NewTransport(client *http.Client, maxRetries int, extraHeaders map[string]string) *Transport {
	if maxRetries < 1 {
		maxRetries = 1
	}
	return &Transport{
		client:  client,
		retries: maxRetries,
		extra:   extraHeaders,
	}
}

// Fetch performs the request, retrying up to the configured attempt budget.
// The caller owns the response body on success.
func (t *Transport) Fetch(ctx context.Context, req Request) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt < t.retries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(1<<(attempt-1)) * time.Second
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		resp, err := t.attempt(ctx, req)
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return nil, lastErr
}

// attempt executes exactly one network call.
func (t *Transport) attempt(ctx context.Context, req Request) (*http.Response, error) {
	cancel := context.CancelFunc(func() {})
	if req.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
	}

	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	var body *bytes.Reader
	if req.Body != nil {
		body = bytes.NewReader(req.Body)
	} else {
		body = bytes.NewReader(nil)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, req.URL, body)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("User-Agent", RandomUserAgent())
	for name, value := range t.extra {
		httpReq.Header.Set(name, value)
	}
	for name, value := range req.Headers {
		httpReq.Header.Set(name, value)
	}

	resp, err := t.client.Do(httpReq)
	if err != nil {
		cancel()
		return nil, err
	}

	// Server-side failures are transient for scraping services; treat them as
	// attempt errors so the backoff schedule applies.
	if resp.StatusCode >= http.StatusInternalServerError {
		resp.Body.Close()
		cancel()
		return nil, fmt.Errorf("server returned status %d", resp.StatusCode)
	}

	// The body outlives this call; tie the attempt deadline to its closure.
	resp.Body = &cancelOnClose{ReadCloser: resp.Body, cancel: cancel}
	return resp, nil
}

// cancelOnClose releases the attempt's deadline context once the caller is
// done reading the response body.
type cancelOnClose struct {
	io.ReadCloser
	cancel context.CancelFunc
}

func (c *cancelOnClose) Close() error {
	defer c.cancel()
	return c.ReadCloser.Close()
}
