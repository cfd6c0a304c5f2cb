package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/hjanuschka/projectwise-mcp/internal/config"
)

const (
	headerAppGUID     = "Mas-App-Guid"
	headerSessionUUID = "Mas-Uuid"
)

// Client issues authenticated read requests against a ProjectWise WSG endpoint.
// It holds no mutable state and is safe for concurrent use.
type Client struct {
	httpClient *http.Client
	baseURL    *url.URL
	cfg        config.Config
	repoPath   string
}

// NewClient returns a client for cfg. A nil httpClient gets one with cfg.HTTPTimeout.
func NewClient(cfg *config.Config, httpClient *http.Client) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, &config.Error{Kind: config.InvalidValue, Field: config.KeyBaseURL, Err: err}
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, &config.Error{
			Kind:  config.InvalidValue,
			Field: config.KeyBaseURL,
			Err:   fmt.Errorf("%q is not an absolute URL", cfg.BaseURL),
		}
	}
	if err := checkID(cfg.RepositoryID); err != nil {
		return nil, &config.Error{Kind: config.InvalidValue, Field: config.KeyRepositoryID, Err: err}
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	return &Client{
		httpClient: httpClient,
		baseURL:    base,
		cfg:        *cfg,
		repoPath:   "Repositories/" + url.PathEscape(cfg.RepositoryID),
	}, nil
}

// URL returns the absolute URL for a path relative to the configured base.
// The path is expected to be escaped already.
func (c *Client) URL(endpoint string, query url.Values) string {
	u := c.baseURL.JoinPath(strings.TrimLeft(endpoint, "/"))
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(headerAppGUID, c.cfg.AppGUID)
	req.Header.Set(headerSessionUUID, c.cfg.SessionUUID)
	req.Header.Set("Authorization", "Bearer "+c.cfg.Token)
}

// Get performs a GET against endpoint and returns the decoded JSON body.
// Non-2xx responses yield an *Error carrying the full body; network failures
// yield a *TransportError.
func (c *Client) Get(ctx context.Context, endpoint string, query url.Values) (any, error) {
	target := c.URL(endpoint, query)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Method: http.MethodGet, URL: target, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, &TransportError{Method: http.MethodGet, URL: target, Err: err}
		}
		return nil, &Error{
			StatusCode: resp.StatusCode,
			Status:     statusText(resp),
			Body:       string(body),
		}
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var result any
	if err := dec.Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response from %s: %w", target, err)
	}
	return result, nil
}

func statusText(resp *http.Response) string {
	text := strings.TrimSpace(strings.TrimPrefix(resp.Status, fmt.Sprintf("%d", resp.StatusCode)))
	if text == "" {
		text = http.StatusText(resp.StatusCode)
	}
	return text
}
