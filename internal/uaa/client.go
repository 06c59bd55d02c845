package uaa

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"cfuaa/internal/metrics"
	"cfuaa/pkg/logging"
)

// DefaultTimeout bounds every provider call unless overridden.
const DefaultTimeout = 5 * time.Second

// debugBodyLimit caps how much of an error body is logged at debug level.
const debugBodyLimit = 256

// Client is the HTTP adapter for UAA and the cloud controller.
// It is safe for concurrent use.
type Client struct {
	httpClient *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the per-request timeout. Non-positive values keep the default.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient creates a Client with a 5 second timeout.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{httpClient: &http.Client{Timeout: DefaultTimeout}}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PostForm posts form to endpoint and decodes the JSON response into out.
// When creds is non-nil the request carries HTTP Basic authentication.
func (c *Client) PostForm(ctx context.Context, endpoint string, creds *ClientCredentials, form url.Values, out any) error {
	op := operationFor(endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return &AuthServiceError{Op: op, Endpoint: endpoint, Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if creds != nil {
		req.SetBasicAuth(creds.ClientID, creds.ClientSecret.Reveal())
	}

	return c.do(req, op, endpoint, out)
}

// GetJSON issues a GET to endpoint with query appended and decodes the JSON
// response into out. When token is non-nil it is sent as the Authorization
// header using its token type.
func (c *Client) GetJSON(ctx context.Context, endpoint string, token *AccessToken, query url.Values, out any) error {
	op := operationFor(endpoint)

	u, err := url.Parse(endpoint)
	if err != nil {
		return &AuthServiceError{Op: op, Endpoint: endpoint, Err: err}
	}
	if len(query) > 0 {
		merged := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				merged.Add(k, v)
			}
		}
		u.RawQuery = merged.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return &AuthServiceError{Op: op, Endpoint: endpoint, Err: err}
	}
	if token != nil {
		token.OAuth2Token().SetAuthHeader(req)
	}

	return c.do(req, op, endpoint, out)
}

func (c *Client) do(req *http.Request, op, endpoint string, out any) error {
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		metrics.ObserveProvider(op, 0, time.Since(start))
		logging.Warn("UAA", "%s request to %s failed: %v", op, endpoint, err)
		return &AuthServiceError{Op: op, Endpoint: endpoint, Err: err}
	}
	defer resp.Body.Close()
	metrics.ObserveProvider(op, resp.StatusCode, time.Since(start))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, debugBodyLimit+1))
		logging.Warn("UAA", "%s request to %s returned status %d", op, endpoint, resp.StatusCode)
		logging.Debug("UAA", "%s error body: %s", op, logging.TruncateBody(body, debugBodyLimit))
		return &AuthServiceError{Op: op, Endpoint: endpoint, StatusCode: resp.StatusCode}
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logging.Warn("UAA", "%s response from %s could not be decoded: %v", op, endpoint, err)
		return &AuthServiceError{Op: op, Endpoint: endpoint, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// operationFor names the provider operation behind endpoint. The result is
// used as a metric label, so it must stay low-cardinality.
func operationFor(endpoint string) string {
	u, err := url.Parse(endpoint)
	if err != nil {
		return "unknown"
	}
	p := strings.TrimSuffix(u.Path, "/")
	switch {
	case strings.HasSuffix(p, "/oauth/token"):
		return "token"
	case strings.HasSuffix(p, "/userinfo"):
		return "userinfo"
	case strings.HasSuffix(p, "/Users"):
		return "users"
	case strings.HasSuffix(p, "/v2/organizations"):
		return "organizations"
	case strings.Contains(p, "/v2/users/") && strings.HasSuffix(p, "/organizations"):
		return "user_organizations"
	default:
		return "other"
	}
}
