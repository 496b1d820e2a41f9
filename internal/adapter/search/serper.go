package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"serprank/internal/domain"
)

const maxSearchBodySize = 512 * 1024 // 512KB

// organicKeys are the response keys the provider has been observed to use for
// the organic-results array, tried in order.
var organicKeys = []string{"organic", "organic_results"}

// serperRequest is the JSON body of a Serper search call.
type serperRequest struct {
	Q   string `json:"q"`
	GL  string `json:"gl"`
	HL  string `json:"hl"`
	Num int    `json:"num"`
}

// serperItem models one entry of the organic-results array. Position is
// decoded leniently: the provider occasionally emits it as a string or a
// fraction, and such items keep their place with position 0 so they rank
// with the sequential fallback instead of being dropped.
type serperItem struct {
	Position lenientInt `json:"position"`
	Title    string     `json:"title"`
	Link     string     `json:"link"`
	Snippet  string     `json:"snippet"`
}

// lenientInt decodes a JSON integer; any other value maps to zero.
type lenientInt int

func (n *lenientInt) UnmarshalJSON(data []byte) error {
	var v int
	if err := json.Unmarshal(data, &v); err != nil {
		*n = 0
		return nil
	}
	*n = lenientInt(v)
	return nil
}

// SerperClient searches the web via the Serper API.
type SerperClient struct {
	client   *http.Client
	endpoint string
	apiKey   string
	logger   *slog.Logger
}

// SerperOption configures the Serper client.
type SerperOption func(*SerperClient)

// WithEndpoint overrides the API endpoint (used in tests).
func WithEndpoint(url string) SerperOption {
	return func(c *SerperClient) { c.endpoint = url }
}

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) SerperOption {
	return func(c *SerperClient) { c.client.Timeout = d }
}

// NewSerperClient creates a search provider backed by the Serper API.
func NewSerperClient(apiKey string, logger *slog.Logger, opts ...SerperOption) *SerperClient {
	c := &SerperClient{
		client: &http.Client{
			Timeout: 15 * time.Second,
		},
		endpoint: "https://google.serper.dev/search",
		apiKey:   apiKey,
		logger:   logger,
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *SerperClient) Name() string { return "serper" }

// Search performs one search request. A single attempt is made; transport
// errors, non-2xx statuses, and undecodable bodies all surface as
// domain.ErrSearchUnavailable with the cause attached.
func (c *SerperClient) Search(ctx context.Context, q domain.SearchQuery) ([]domain.SearchResult, error) {
	payload, err := json.Marshal(serperRequest{
		Q:   q.Keyword,
		GL:  q.GL,
		HL:  q.HL,
		Num: q.Num,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %v", domain.ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSearchBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", domain.ErrSearchUnavailable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: HTTP %d: %s", domain.ErrSearchUnavailable, resp.StatusCode, string(body))
	}

	results, err := parseOrganic(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchUnavailable, err)
	}

	c.logger.Debug("serper search completed",
		"query", q.Keyword, "gl", q.GL, "hl", q.HL, "results", len(results))
	return results, nil
}

// parseOrganic extracts the organic-results array from a response body.
// Items are decoded individually so one malformed entry drops that entry
// instead of the whole response. Items missing a title or link are
// discarded; a non-integer position is not grounds for discarding.
func parseOrganic(body []byte) ([]domain.SearchResult, error) {
	var envelope map[string]json.RawMessage
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("parse response: %v", err)
	}

	var items []json.RawMessage
	for _, key := range organicKeys {
		raw, ok := envelope[key]
		if !ok {
			continue
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("parse %s array: %v", key, err)
		}
		break
	}

	results := make([]domain.SearchResult, 0, len(items))
	for _, raw := range items {
		var item serperItem
		if err := json.Unmarshal(raw, &item); err != nil {
			continue
		}
		if item.Title == "" || item.Link == "" {
			continue
		}
		results = append(results, domain.SearchResult{
			Position: int(item.Position),
			Title:    item.Title,
			Link:     item.Link,
			Snippet:  item.Snippet,
		})
	}
	return results, nil
}

// Compile-time interface check.
var _ domain.SearchProvider = (*SerperClient)(nil)
