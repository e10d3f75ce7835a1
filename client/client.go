package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP client timeout.
const DefaultTimeout = 30 * time.Second

// StatusInfo mirrors the session probe response from GET /.
type StatusInfo struct {
	Client   string    `json:"client"`
	TTL      int       `json:"ttl"`
	IssuedAt time.Time `json:"issued_at"`
	ExpireAt time.Time `json:"expire_at"`
}

// ItemInfo mirrors the item metadata returned from writes.
type ItemInfo struct {
	Client    string    `json:"client"`
	Key       string    `json:"key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Client performs operations against a stash server.
type Client struct {
	endpoint   string
	token      string
	httpClient *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithToken seeds the client with a previously captured bearer token.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// New creates a new Client for the given endpoint.
func New(endpoint string, opts ...Option) (*Client, error) {
	if endpoint == "" {
		return nil, ErrEndpointRequired
	}

	c := &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// Token returns the bearer token captured from the last response.
// Persist it so the next client keeps the same session.
func (c *Client) Token() string {
	return c.token
}

// Status fetches the session probe from GET /.
func (c *Client) Status(ctx context.Context) (StatusInfo, error) {
	body, _, err := c.do(ctx, http.MethodGet, "", "", nil)
	if err != nil {
		return StatusInfo{}, err
	}

	var info StatusInfo
	if err := json.Unmarshal(body, &info); err != nil {
		return StatusInfo{}, fmt.Errorf("status: parse response: %w", err)
	}
	return info, nil
}

// Get reads the value stored under key. The returned content type is
// the wire type the server chose from the stored kind.
func (c *Client) Get(ctx context.Context, key string) ([]byte, string, error) {
	return c.do(ctx, http.MethodGet, key, "", nil)
}

// Put stores body under key with the given content type, replacing any
// previous value.
func (c *Client) Put(ctx context.Context, key, contentType string, body []byte) (ItemInfo, error) {
	return c.write(ctx, http.MethodPut, key, contentType, body)
}

// Post stores body under key with the given content type. The server
// treats it the same as Put; only the status code differs.
func (c *Client) Post(ctx context.Context, key, contentType string, body []byte) (ItemInfo, error) {
	return c.write(ctx, http.MethodPost, key, contentType, body)
}

// Delete removes the value under key. Missing keys succeed.
func (c *Client) Delete(ctx context.Context, key string) error {
	_, _, err := c.do(ctx, http.MethodDelete, key, "", nil)
	return err
}

func (c *Client) write(ctx context.Context, method, key, contentType string, body []byte) (ItemInfo, error) {
	raw, _, err := c.do(ctx, method, key, contentType, bytes.NewReader(body))
	if err != nil {
		return ItemInfo{}, err
	}

	var info ItemInfo
	if err := json.Unmarshal(raw, &info); err != nil {
		return ItemInfo{}, fmt.Errorf("write: parse response: %w", err)
	}
	return info, nil
}

// do performs one request, sending the current token and capturing the
// re-signed one from the response before anything else is inspected.
func (c *Client) do(ctx context.Context, method, key, contentType string, body io.Reader) ([]byte, string, error) {
	target := c.endpoint + "/" + url.PathEscape(key)

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("%s %s: %w", method, target, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if token := resp.Header.Get("Authorization"); token != "" {
		c.token = token
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		return nil, "", responseError(resp.StatusCode, raw)
	}

	return raw, resp.Header.Get("Content-Type"), nil
}

func responseError(status int, raw []byte) error {
	var er struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	_ = json.Unmarshal(raw, &er)

	switch status {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, er.Message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrForbidden, er.Message)
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadInput, er.Message)
	default:
		return fmt.Errorf("server returned %d: %s", status, er.Message)
	}
}
