package raydium

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultAPIEndpoint is the Raydium v3 public API.
const DefaultAPIEndpoint = "https://api-v3.raydium.io"

// PoolInfo is one pool record returned by the pools-by-mint endpoint.
// Only the fields the pipeline reads are decoded.
type PoolInfo struct {
	Type      string  `json:"type"`
	ProgramID string  `json:"programId"`
	ID        string  `json:"id"`
	Price     float64 `json:"price"`
	TVL       float64 `json:"tvl"`
}

// PoolSelector picks one pool from the API's candidate list.
type PoolSelector func(pools []PoolInfo) (PoolInfo, error)

// SelectLast picks the final record of the response, matching the
// historical behavior of the ingestion scripts. The API returns pools
// sorted by its default ranking, so this is an arbitrary but stable choice.
func SelectLast(pools []PoolInfo) (PoolInfo, error) {
	if len(pools) == 0 {
		return PoolInfo{}, fmt.Errorf("no pools in response")
	}
	return pools[len(pools)-1], nil
}

// SelectByTVL picks the pool with the highest reported TVL.
func SelectByTVL(pools []PoolInfo) (PoolInfo, error) {
	if len(pools) == 0 {
		return PoolInfo{}, fmt.Errorf("no pools in response")
	}
	best := pools[0]
	for _, p := range pools[1:] {
		if p.TVL > best.TVL {
			best = p
		}
	}
	return best, nil
}

// PoolsClient queries the Raydium v3 API for pools trading a given mint.
type PoolsClient struct {
	endpoint string
	client   *http.Client
}

// PoolsClientOption configures PoolsClient.
type PoolsClientOption func(*PoolsClient)

// WithPoolsHTTPClient sets a custom http.Client.
func WithPoolsHTTPClient(client *http.Client) PoolsClientOption {
	return func(c *PoolsClient) {
		c.client = client
	}
}

// NewPoolsClient creates a client for the Raydium pools API.
// An empty endpoint selects the public API.
func NewPoolsClient(endpoint string, opts ...PoolsClientOption) *PoolsClient {
	if endpoint == "" {
		endpoint = DefaultAPIEndpoint
	}
	c := &PoolsClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// poolsResponse mirrors the API envelope: {"data": {"data": [...]}}.
type poolsResponse struct {
	Success bool `json:"success"`
	Data    struct {
		Count int        `json:"count"`
		Data  []PoolInfo `json:"data"`
	} `json:"data"`
}

// FindPools returns the candidate pools for a mint, in API order.
func (c *PoolsClient) FindPools(ctx context.Context, mint string) ([]PoolInfo, error) {
	q := url.Values{}
	q.Set("mint1", mint)
	q.Set("poolType", "all")
	q.Set("poolSortField", "default")
	q.Set("sortType", "desc")
	q.Set("pageSize", "10")
	q.Set("page", "1")

	reqURL := fmt.Sprintf("%s/pools/info/mint?%s", c.endpoint, q.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(body))
	}

	var parsed poolsResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal pools response: %w", err)
	}

	return parsed.Data.Data, nil
}
