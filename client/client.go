package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 8 << 20

// RequestIDHeader carries a fresh UUID on every outgoing request.
const RequestIDHeader = "X-Request-ID"

// ObserveFunc is called once per completed round trip. status is 0 when the
// transport failed before a response arrived.
type ObserveFunc func(method, path string, status int, elapsed time.Duration)

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the backend root, e.g. "http://127.0.0.1:8000".
	BaseURL string
	// HTTPClient is used for all requests. If nil, a client with Timeout is built.
	HTTPClient *http.Client
	// Timeout applies only when HTTPClient is nil. Zero means 15s.
	Timeout time.Duration
	// UserAgent is sent when non-empty.
	UserAgent string
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// Observe, if set, receives per-request timing.
	Observe ObserveFunc
}

// Client talks to the backend with one shared, swappable bearer credential.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger
	observe    ObserveFunc

	mu         sync.RWMutex
	credential string

	Auth      *AuthAPI
	Cases     *CasesAPI
	Evidence  *EvidenceAPI
	Hearings  *HearingsAPI
	Documents *DocumentsAPI
	Payments  *PaymentsAPI
	Users     *UsersAPI
}

// New creates a Client with no credential set.
func New(config Config) (*Client, error) {
	if strings.TrimSpace(config.BaseURL) == "" {
		return nil, ErrBaseURLRequired
	}
	// Request URLs are built by concatenation; only validate here.
	if _, err := url.Parse(config.BaseURL); err != nil {
		return nil, fmt.Errorf("client: invalid BaseURL %q: %w", config.BaseURL, err)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		timeout := config.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	c := &Client{
		baseURL:    strings.TrimRight(config.BaseURL, "/"),
		httpClient: httpClient,
		userAgent:  config.UserAgent,
		logger:     logger,
		observe:    config.Observe,
	}
	c.Auth = &AuthAPI{c: c}
	c.Cases = &CasesAPI{c: c}
	c.Evidence = &EvidenceAPI{c: c}
	c.Hearings = &HearingsAPI{c: c}
	c.Documents = &DocumentsAPI{c: c}
	c.Payments = &PaymentsAPI{c: c}
	c.Users = &UsersAPI{c: c}
	return c, nil
}

// BaseURL returns the backend root without a trailing slash.
func (c *Client) BaseURL() string { return c.baseURL }

// SetCredential makes token the default bearer credential for all subsequent
// requests. An empty token removes the credential.
func (c *Client) SetCredential(token string) {
	c.mu.Lock()
	c.credential = token
	c.mu.Unlock()
}

// ClearCredential removes the default credential entirely.
func (c *Client) ClearCredential() {
	c.SetCredential("")
}

// Credential returns the current default bearer token, or "".
func (c *Client) Credential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.credential
}

// CloseIdleConnections drops pooled connections of the underlying transport.
func (c *Client) CloseIdleConnections() {
	c.httpClient.CloseIdleConnections()
}

// Do sends a JSON request (requestBody may be nil) and returns the raw 2xx body.
func (c *Client) Do(ctx context.Context, method, path string, requestBody any, query url.Values) ([]byte, error) {
	var body io.Reader
	contentType := ""
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("client: failed to encode request body: %w", err)
		}
		body = bytes.NewReader(encoded)
		contentType = "application/json"
	}
	return c.doRequest(ctx, method, path, contentType, body, query)
}

// DoForm sends form as application/x-www-form-urlencoded.
func (c *Client) DoForm(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	return c.doRequest(ctx, method, path, "application/x-www-form-urlencoded", strings.NewReader(form.Encode()), nil)
}

func (c *Client) doRequest(ctx context.Context, method, path, contentType string, body io.Reader, query url.Values) ([]byte, error) {
	requestURL := c.baseURL + path
	if len(query) > 0 {
		requestURL += "?" + query.Encode()
	}

	request, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("client: failed to create request: %w", err)
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set(RequestIDHeader, uuid.NewString())
	if contentType != "" {
		request.Header.Set("Content-Type", contentType)
	}
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}
	if token := c.Credential(); token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	started := time.Now()
	response, err := c.httpClient.Do(request)
	if err != nil {
		c.record(method, path, 0, started)
		return nil, fmt.Errorf("%w: %s %s: %w", ErrTransport, method, path, err)
	}
	defer response.Body.Close()
	c.record(method, path, response.StatusCode, started)

	responseBody, err := io.ReadAll(io.LimitReader(response.Body, maxResponseSize))
	if err != nil {
		return nil, fmt.Errorf("client: failed to read response body: %w", err)
	}

	if response.StatusCode >= 200 && response.StatusCode < 300 {
		return responseBody, nil
	}

	c.logger.Debug("backend returned error status",
		"method", method,
		"path", path,
		"status", response.StatusCode,
	)
	return nil, newAPIError(method, path, response.StatusCode, responseBody)
}

func (c *Client) record(method, path string, status int, started time.Time) {
	if c.observe != nil {
		c.observe(method, path, status, time.Since(started))
	}
}

// decode unmarshals a successful response body into a T.
func decode[T any](body []byte, err error) (T, error) {
	var out T
	if err != nil {
		return out, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return out, nil
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return out, fmt.Errorf("client: failed to parse response: %w", err)
	}
	return out, nil
}

func pathf(format string, args ...any) string {
	escaped := make([]any, len(args))
	for i, arg := range args {
		switch v := arg.(type) {
		case string:
			escaped[i] = url.PathEscape(v)
		default:
			escaped[i] = v
		}
	}
	return fmt.Sprintf(format, escaped...)
}
