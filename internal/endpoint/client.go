// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package endpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"

	"github.com/jeranaias/prepchat/internal/model"
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// DefaultURL is the chat route of a locally running generation server.
const DefaultURL = "http://127.0.0.1:3000/api/chat"

// DefaultUserAgent identifies the client to the endpoint.
const DefaultUserAgent = "prepchat"

// maxErrorBody bounds how much of a failed response body is kept for logs.
const maxErrorBody = 512

// ClientConfig holds configuration options for the endpoint client.
type ClientConfig struct {
	// URL is the full chat endpoint URL (default: DefaultURL)
	URL string

	// UserAgent is sent on every request (default: DefaultUserAgent)
	UserAgent string

	// HTTPClient performs requests. It must not carry a whole-request
	// Timeout: reply streams are open-ended. (default: a plain http.Client)
	HTTPClient *http.Client
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *ClientConfig {
	return &ClientConfig{
		URL:        DefaultURL,
		UserAgent:  DefaultUserAgent,
		HTTPClient: &http.Client{},
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client opens reply streams from the generation endpoint.
// The Client is safe for concurrent use; SetURL takes effect for the next
// OpenStream call.
type Client struct {
	mu         sync.RWMutex
	url        string
	userAgent  string
	httpClient *http.Client
}

// NewClient creates a new client with default configuration.
func NewClient() *Client {
	return NewClientWithConfig(DefaultConfig())
}

// NewClientWithConfig creates a new client with custom configuration.
func NewClientWithConfig(config *ClientConfig) *Client {
	if config == nil {
		config = DefaultConfig()
	}

	// Fill in defaults for any zero values
	url := config.URL
	if url == "" {
		url = DefaultURL
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}

	return &Client{
		url:        url,
		userAgent:  userAgent,
		httpClient: httpClient,
	}
}

// URL returns the endpoint URL used for the next request.
func (c *Client) URL() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.url
}

// SetURL changes the endpoint URL for subsequent requests.
func (c *Client) SetURL(url string) {
	if url == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.url = url
}

// =============================================================================
// STREAM OPERATIONS
// =============================================================================

// Response is an opened reply stream. The caller must close Body.
type Response struct {
	Body       io.ReadCloser
	StatusCode int
	// Charset is the charset parameter of the Content-Type header, if any.
	Charset   string
	RequestID string
}

// OpenStream POSTs turns as a JSON array and returns the reply body once
// the response headers arrive. A non-2xx status, a transport failure or a
// bodyless 204/205 is reported as a *RequestError.
//
// Cancelling ctx aborts the request; after OpenStream returns, it also
// aborts reads from Response.Body.
func (c *Client) OpenStream(ctx context.Context, turns []model.Turn, requestID string) (*Response, error) {
	if turns == nil {
		turns = []model.Turn{}
	}
	body, err := json.Marshal(turns)
	if err != nil {
		return nil, &RequestError{Kind: ErrKindMarshal, Message: "failed to marshal transcript", Cause: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.URL(), bytes.NewReader(body))
	if err != nil {
		return nil, &RequestError{Kind: ErrKindConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/plain")
	req.Header.Set("User-Agent", c.userAgent)
	if requestID != "" {
		req.Header.Set("X-Request-ID", requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, connectionError(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		defer resp.Body.Close()
		prefix, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, &RequestError{
			Kind:       ErrKindStatus,
			Message:    "endpoint returned " + resp.Status,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(prefix)),
		}
	}

	// A zero-length 200 is an empty reply; 204 and 205 promise no body at all.
	if resp.StatusCode == http.StatusNoContent || resp.StatusCode == http.StatusResetContent {
		resp.Body.Close()
		return nil, &RequestError{Kind: ErrKindNoBody, Message: "endpoint returned no body", StatusCode: resp.StatusCode}
	}

	return &Response{
		Body:       resp.Body,
		StatusCode: resp.StatusCode,
		Charset:    charsetOf(resp.Header.Get("Content-Type")),
		RequestID:  requestID,
	}, nil
}

// charsetOf extracts the charset parameter from a Content-Type value.
func charsetOf(contentType string) string {
	if contentType == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(contentType)
	if err != nil {
		return ""
	}
	return params["charset"]
}
