package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"mangasync/internal/services"
)

// Searcher defines the read-only lookup operation the match engine requires.
type Searcher interface {
	Search(ctx context.Context, title string) ([]Candidate, error)
}

// Updater defines the write operation the synchronization engine requires.
type Updater interface {
	UpdateEntry(ctx context.Context, targetID int64, update EntryUpdate) error
}

// searchResponse models the paginated catalog search payload.
type searchResponse struct {
	Results []Candidate `json:"results"`
	Total   int         `json:"total"`
}

// apiError models the catalog's structured error body.
type apiError struct {
	Message string `json:"message"`
}

// Client provides access to the target catalog API.
type Client struct {
	baseURL      string
	token        string
	searchClient *http.Client
	updateClient *http.Client
}

var (
	_ Searcher = (*Client)(nil)
	_ Updater  = (*Client)(nil)
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides both underlying HTTP clients. Intended for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.searchClient = client
			c.updateClient = client
		}
	}
}

// New creates a catalog client. Searches go through a retrying transport
// since they are read-only; updates use a plain client so the caller owns
// the retry policy.
func New(baseURL, token string, timeout time.Duration, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, errors.New("catalog base url required")
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, errors.New("catalog token required")
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	retrying := retryablehttp.NewClient()
	retrying.RetryMax = 2
	retrying.RetryWaitMin = 500 * time.Millisecond
	retrying.RetryWaitMax = 4 * time.Second
	retrying.HTTPClient.Timeout = timeout
	retrying.Logger = nil

	client := &Client{
		baseURL:      strings.TrimRight(baseURL, "/"),
		token:        token,
		searchClient: retrying.StandardClient(),
		updateClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	return client, nil
}

// Search queries the catalog for items matching the supplied title. Failures
// are tagged services.ErrLookup so the match engine can degrade them to an
// empty candidate set.
func (c *Client) Search(ctx context.Context, title string) ([]Candidate, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, services.Wrap(services.ErrLookup, "catalog", "search", "query must not be empty", nil)
	}
	endpoint, err := url.Parse(c.baseURL + "/manga")
	if err != nil {
		return nil, services.Wrap(services.ErrLookup, "catalog", "search", "parse url", err)
	}
	params := url.Values{}
	params.Set("search", title)
	endpoint.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return nil, services.Wrap(services.ErrLookup, "catalog", "search", "build request", err)
	}
	c.authorize(req)

	requestStart := time.Now()
	resp, err := c.searchClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if services.IsCancellation(err) || errors.Is(err, context.Canceled) {
			return nil, services.Wrap(services.ErrCancelled, "catalog", "search", "", err)
		}
		return nil, services.Wrap(services.ErrLookup, "catalog", "search", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, services.Wrap(services.ErrLookup, "catalog", "search",
			fmt.Sprintf("catalog search returned %d (latency=%v)", resp.StatusCode, latency), nil)
	}

	var payload searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, services.Wrap(services.ErrLookup, "catalog", "search", "decode response", err)
	}
	return payload.Results, nil
}

// UpdateEntry pushes the user's reading state for one target catalog item.
// The returned error is tagged with the taxonomy marker matching the HTTP
// outcome so the syncer can decide whether to retry.
func (c *Client) UpdateEntry(ctx context.Context, targetID int64, update EntryUpdate) error {
	if targetID <= 0 {
		return services.Wrap(services.ErrValidation, "catalog", "update", "target id must be positive", nil)
	}

	body, err := json.Marshal(update)
	if err != nil {
		return services.Wrap(services.ErrValidation, "catalog", "update", "encode update", err)
	}

	endpoint := fmt.Sprintf("%s/library/%d", c.baseURL, targetID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(body))
	if err != nil {
		return services.Wrap(services.ErrTransient, "catalog", "update", "build request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	c.authorize(req)

	requestStart := time.Now()
	resp, err := c.updateClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return services.Wrap(services.ErrCancelled, "catalog", "update", "", err)
		}
		if errors.Is(err, context.DeadlineExceeded) {
			return services.Wrap(services.ErrTimeout, "catalog", "update", fmt.Sprintf("latency=%v", latency), err)
		}
		return services.Wrap(services.ErrTransient, "catalog", "update", fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	return c.classifyUpdateFailure(resp, latency)
}

func (c *Client) classifyUpdateFailure(resp *http.Response, latency time.Duration) error {
	detail := fmt.Sprintf("catalog update returned %d (latency=%v)", resp.StatusCode, latency)
	var body apiError
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil && body.Message != "" {
		detail = fmt.Sprintf("%s: %s", detail, body.Message)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return services.Wrap(services.ErrNotFound, "catalog", "update", detail, nil)
	case resp.StatusCode == http.StatusRequestTimeout:
		return services.Wrap(services.ErrTimeout, "catalog", "update", detail, nil)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return services.Wrap(services.ErrTransient, "catalog", "update", detail, nil)
	default:
		// 400, 401, 403, 409, 422: the request itself is unacceptable.
		return services.Wrap(services.ErrValidation, "catalog", "update", detail, nil)
	}
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
}
