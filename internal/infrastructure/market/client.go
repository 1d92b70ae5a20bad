package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"github.com/basketwise/backend/internal/domain"
)

// Client handles communication with the supermarket price API.
type Client struct {
	httpClient  *http.Client
	apiKey      string
	baseURL     string
	searchLimit int
	rateLimiter *rate.Limiter
	debug       bool
}

// NewClient creates a new supermarket API client.
func NewClient(apiKey, baseURL string, searchLimit int) *Client {
	if searchLimit <= 0 {
		searchLimit = 10
	}

	// The upstream plan allows a few thousand requests per day; the listing
	// cache absorbs most traffic, the limiter smooths out the rest.
	limiter := rate.NewLimiter(rate.Limit(0.5), 5)

	return &Client{
		httpClient: &http.Client{
			Timeout: 12 * time.Second,
		},
		apiKey:      apiKey,
		baseURL:     baseURL,
		searchLimit: searchLimit,
		rateLimiter: limiter,
	}
}

// SetDebug toggles verbose request logging.
func (c *Client) SetDebug(enabled bool) {
	c.debug = enabled
}

// SearchProducts searches the supermarket API for listings matching a query.
func (c *Client) SearchProducts(ctx context.Context, query string) ([]domain.Listing, error) {
	endpoint := fmt.Sprintf("%s/products", c.baseURL)
	params := url.Values{}
	params.Add("search", query)
	params.Add("limit", strconv.Itoa(c.searchLimit))

	reqURL := fmt.Sprintf("%s?%s", endpoint, params.Encode())

	// Retry up to 3 times for transient failures
	var lastErr error
	for attempt := 1; attempt <= 3; attempt++ {
		if err := c.rateLimiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		resp, err := c.doRequest(ctx, reqURL)
		if err != nil {
			if c.debug {
				log.Printf("[MARKET] Request error (attempt %d): %v", attempt, err)
			}
			lastErr = err
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			if c.debug {
				log.Printf("[MARKET] API error (attempt %d) - Status: %d, Body: %s", attempt, resp.StatusCode, string(body))
			}
			if resp.StatusCode == http.StatusNotFound {
				return nil, domain.ErrProductNotFound
			}
			lastErr = fmt.Errorf("%w: status %d", domain.ErrMarketAPIFailure, resp.StatusCode)
			time.Sleep(exponentialBackoff(attempt))
			continue
		}

		var searchResp searchResponse
		if err := json.Unmarshal(body, &searchResp); err != nil {
			return nil, fmt.Errorf("failed to decode response: %w", err)
		}

		if len(searchResp.Data) == 0 {
			if c.debug {
				log.Printf("[MARKET] No products found for query: %q", query)
			}
			return nil, domain.ErrProductNotFound
		}

		listings := mapListings(searchResp.Data, time.Now())
		if c.debug {
			log.Printf("[MARKET] Found %d listings for query: %q", len(listings), query)
		}
		return listings, nil
	}

	return nil, lastErr
}

// doRequest executes an HTTP GET request with auth headers.
func (c *Client) doRequest(ctx context.Context, reqURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("User-Agent", "Basketwise/1.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMarketAPIFailure, err)
	}

	return resp, nil
}

// exponentialBackoff returns the wait before the next retry attempt.
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(1<<(attempt-1)) * 500 * time.Millisecond
}
