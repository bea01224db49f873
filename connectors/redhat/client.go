package redhat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultTimeout = 30 * time.Second

	// Page sizes per endpoint family.
	costPageSize  = 250
	drillPageSize = 200
	usagePageSize = 200

	maxAttempts    = 3
	baseRetryDelay = 500 * time.Millisecond
)

// Client handles Red Hat Cost Management API requests. Calls are sequential
// and blocking; the only mutable state is the token cache.
type Client struct {
	baseURL string
	tokens  *tokenProvider

	httpClient *http.Client
	sleep      func(time.Duration)
}

// NewClient creates a new Cost Management API client. consoleURL is the
// console host, e.g. https://console.redhat.com.
func NewClient(consoleURL, authURL, clientID, clientSecret string) *Client {
	httpClient := &http.Client{Timeout: defaultTimeout}
	return &Client{
		baseURL:    strings.TrimRight(consoleURL, "/") + "/api/cost-management/v1",
		tokens:     newTokenProvider(authURL, clientID, clientSecret, httpClient),
		httpClient: httpClient,
		sleep:      time.Sleep,
	}
}

// pageMeta is the subset of the report meta block the extractor relies on.
type pageMeta struct {
	Count               *int   `json:"count"`
	Currency            string `json:"currency"`
	DistributedOverhead *bool  `json:"distributed_overhead"`
}

// page is the generic {data, meta} envelope of the paginated endpoints.
type page struct {
	Meta *pageMeta          `json:"meta"`
	Data *[]json.RawMessage `json:"data"`
}

// get issues one authenticated GET, retrying network errors, 429 and 5xx with
// doubling backoff until the attempt budget runs out. Authentication failures
// and other 4xx statuses are returned immediately.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	delay := baseRetryDelay
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			c.sleep(delay)
			delay *= 2
		}

		token, err := c.tokens.acquire(ctx)
		if err != nil {
			return nil, err
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return nil, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+token)
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = fmt.Errorf("status %d: %s", resp.StatusCode, string(body))
			continue
		}
		if resp.StatusCode != http.StatusOK {
			return nil, &FetchError{URL: rawURL, Err: fmt.Errorf("status %d: %s", resp.StatusCode, string(body))}
		}
		return body, nil
	}
	return nil, &FetchError{URL: rawURL, Err: lastErr}
}

// fetchPages walks the offset/limit window of a paginated report until a page
// comes back empty or meta.count is covered. meta.count is the only
// continuation signal the API offers, so it is trusted as reported. On a
// malformed page the items gathered so far are returned along with
// ErrMalformedPage.
func (c *Client) fetchPages(ctx context.Context, endpoint string, params url.Values, limit int) ([]json.RawMessage, *pageMeta, error) {
	var items []json.RawMessage
	var meta *pageMeta

	offset := 0
	for {
		q := url.Values{}
		for k, vs := range params {
			q[k] = vs
		}
		q.Set("filter[limit]", strconv.Itoa(limit))
		q.Set("filter[offset]", strconv.Itoa(offset))
		q.Set("filter[resolution]", "daily")

		body, err := c.get(ctx, endpoint+"?"+q.Encode())
		if err != nil {
			return items, meta, err
		}

		var p page
		if err := json.Unmarshal(body, &p); err != nil || p.Meta == nil || p.Data == nil {
			slog.Warn("phase.fetch.page.malformed", "endpoint", endpoint, "offset", offset)
			return items, meta, ErrMalformedPage
		}
		if meta == nil {
			meta = p.Meta
		}
		if len(*p.Data) == 0 {
			break
		}
		items = append(items, *p.Data...)

		count := 0
		if p.Meta.Count != nil {
			count = *p.Meta.Count
		}
		offset += limit
		if count <= offset {
			break
		}
	}
	return items, meta, nil
}

// recoverable reports whether a fetch outcome should degrade to a warning
// instead of aborting the run.
func recoverable(err error) bool {
	if err == nil || errors.Is(err, ErrMalformedPage) {
		return true
	}
	var authErr *AuthError
	return !errors.As(err, &authErr)
}
