package metrics

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// ErrUpstream marks a failed warehouse call.
var ErrUpstream = errors.New("analytics warehouse error")

// QueryResult is the warehouse's tabular answer.
type QueryResult struct {
	Columns []string `json:"columns"`
	Results [][]any  `json:"results"`
}

// Querier runs one query against a warehouse.
type Querier interface {
	Query(ctx context.Context, sql string) (QueryResult, error)
}

// AnalyticsClient posts queries to the warehouse's HTTP query endpoint.
type AnalyticsClient struct {
	endpoint string
	apiKey   string
	http     *http.Client
}

var _ Querier = (*AnalyticsClient)(nil)

func NewAnalyticsClient(endpoint, apiKey string, timeout time.Duration) *AnalyticsClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &AnalyticsClient{
		endpoint: endpoint,
		apiKey:   apiKey,
		http:     &http.Client{Timeout: timeout},
	}
}

func (c *AnalyticsClient) Query(ctx context.Context, sql string) (QueryResult, error) {
	payload, err := json.Marshal(map[string]string{"query": sql})
	if err != nil {
		return QueryResult{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return QueryResult{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.http.Do(req)
	if err != nil {
		return QueryResult{}, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return QueryResult{}, fmt.Errorf("%w: read body: %v", ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return QueryResult{}, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, snippet(body))
	}

	var out QueryResult
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	if err := dec.Decode(&out); err != nil {
		return QueryResult{}, fmt.Errorf("%w: decode: %v", ErrUpstream, err)
	}
	return out, nil
}

func snippet(b []byte) string {
	s := strings.TrimSpace(string(b))
	if len(s) > 200 {
		return s[:200] + "..."
	}
	return s
}
