package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/vectora-ai/vectora/pkg/providers/model"
)

// ID names a third-party model-hosting service.
type ID string

const (
	Cerebras ID = "cerebras"
	Gemini   ID = "gemini"
	Groq     ID = "groq"
)

// Default is the provider considered active when none has been chosen.
const Default = Gemini

// All returns every known provider in display order.
func All() []ID {
	return []ID{Cerebras, Gemini, Groq}
}

// Parse validates s as a provider ID.
func Parse(s string) (ID, error) {
	id := ID(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range All() {
		if id == known {
			return id, nil
		}
	}
	return "", fmt.Errorf("provider: unknown provider %q", s)
}

// Title returns the display name, e.g. "Gemini".
func (id ID) Title() string {
	if id == "" {
		return ""
	}
	return strings.ToUpper(string(id[:1])) + string(id[1:])
}

// Lister fetches and normalizes a provider's model catalog.
type Lister interface {
	ListModels(ctx context.Context) ([]model.Descriptor, error)
}

// Normalizer turns a raw model-listing response body into descriptors,
// preserving upstream order.
type Normalizer interface {
	Normalize(raw []byte) ([]model.Descriptor, error)
}

// StatusError is returned when an upstream API answers with a non-2xx status.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Body)
}

// ErrEmptyBody is returned when a 2xx response carries no content.
var ErrEmptyBody = errors.New("provider: empty response body")

// Auth holds authentication settings for a provider API.
type Auth struct {
	Key    string // API key value.
	Header string // Header name (default: "Authorization").
	Scheme string // Scheme prefix (default: "Bearer" when Header is "Authorization").
	Query  string // When set, the key is sent as this query parameter instead of a header.
}

// Client holds shared HTTP state for provider implementations. Embed it in
// concrete provider structs to get request building with auth applied.
type Client struct {
	BaseURL string            // API base URL (no trailing slash).
	Auth    Auth              // Authentication settings.
	HTTP    *http.Client      // HTTP client; falls back to a default with a timeout.
	Headers map[string]string // Extra headers applied to every request.

	clientOnce    sync.Once
	defaultClient *http.Client
}

// NewClient creates a Client with the given settings.
// A nil client falls back to a default client at call time.
func NewClient(baseURL string, auth Auth, client *http.Client) Client {
	return Client{
		BaseURL: baseURL,
		Auth:    auth,
		HTTP:    client,
	}
}

// httpClient returns the configured client or a cached default client with a 30-second timeout.
func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}

	c.clientOnce.Do(func() {
		c.defaultClient = &http.Client{Timeout: 30 * time.Second}
	})

	return c.defaultClient
}

// NewRequest builds an *http.Request with the base URL, auth, and custom
// headers already applied.
func (c *Client) NewRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	u, err := url.Parse(c.BaseURL + path)
	if err != nil {
		return nil, err
	}

	if c.Auth.Query != "" && c.Auth.Key != "" {
		q := u.Query()
		q.Set(c.Auth.Query, c.Auth.Key)
		u.RawQuery = q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, err
	}

	if c.Auth.Key != "" && c.Auth.Query == "" {
		header := c.Auth.Header
		if header == "" {
			header = "Authorization"
		}

		value := c.Auth.Key
		if header == "Authorization" {
			scheme := c.Auth.Scheme
			if scheme == "" {
				scheme = "Bearer"
			}

			value = scheme + " " + value
		} else if c.Auth.Scheme != "" {
			value = c.Auth.Scheme + " " + value
		}

		req.Header.Set(header, value)
	}

	for k, v := range c.Headers {
		req.Header.Set(k, v)
	}

	return req, nil
}

// Do sends the request using the configured HTTP client.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	return c.httpClient().Do(req) //nolint:gosec // URL is built from trusted BaseURL config, not user input.
}

// GetRaw sends a GET to path, checks for a 2xx status, and returns the body.
func (c *Client) GetRaw(ctx context.Context, path string) ([]byte, error) {
	req, err := c.NewRequest(ctx, http.MethodGet, path, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")

	resp, err := c.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", c.redactKey(err))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: truncateBody(body)}
	}

	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, ErrEmptyBody
	}

	return body, nil
}

// GetJSON sends a GET to path and decodes the JSON response into dest.
func (c *Client) GetJSON(ctx context.Context, path string, dest any) error {
	body, err := c.GetRaw(ctx, path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}

	return nil
}

// redactKey strips a query-parameter API key from the URL that transport
// errors echo, so credentials never reach logs.
func (c *Client) redactKey(err error) error {
	var ue *url.Error
	if c.Auth.Query == "" || c.Auth.Key == "" || !errors.As(err, &ue) {
		return err
	}
	ue.URL = strings.ReplaceAll(ue.URL, url.QueryEscape(c.Auth.Key), "REDACTED")
	ue.URL = strings.ReplaceAll(ue.URL, c.Auth.Key, "REDACTED")
	return err
}

func truncateBody(body []byte) string {
	const limit = 200

	s := strings.TrimSpace(string(body))
	if len(s) > limit {
		return s[:limit] + "..."
	}
	return s
}
