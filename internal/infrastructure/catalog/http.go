package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/medilens/backend/internal/domain"
)

const maxAttempts = 3

// searchResponse is the remote storefront search payload
type searchResponse struct {
	Products []domain.Product `json:"products"`
	Total    int              `json:"total"`
}

// HTTPCatalog is a ProductCatalog backed by a remote storefront API
type HTTPCatalog struct {
	httpClient  *http.Client
	baseURL     string
	rateLimiter *rate.Limiter
	backoffBase time.Duration
	logger      *zap.Logger
}

// NewHTTPCatalog creates a client for the storefront API at baseURL.
// requestsPerSecond bounds outbound traffic, with a burst of twice that.
func NewHTTPCatalog(baseURL string, requestsPerSecond float64, logger *zap.Logger) *HTTPCatalog {
	if requestsPerSecond <= 0 {
		requestsPerSecond = 5
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	burst := max(1, int(requestsPerSecond*2))

	return &HTTPCatalog{
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
		baseURL:     baseURL,
		rateLimiter: rate.NewLimiter(rate.Limit(requestsPerSecond), burst),
		backoffBase: 500 * time.Millisecond,
		logger:      logger,
	}
}

// exponentialBackoff returns the wait before retrying after the given attempt
func (c *HTTPCatalog) exponentialBackoff(attempt int) time.Duration {
	return c.backoffBase * time.Duration(1<<(attempt-1))
}

// Search queries the remote catalog, retrying transient failures up to 3 times
func (c *HTTPCatalog) Search(ctx context.Context, query string) ([]domain.Product, error) {
	params := url.Values{}
	params.Add("q", query)
	params.Add("limit", strconv.Itoa(DefaultSearchLimit))
	reqURL := fmt.Sprintf("%s/v1/products/search?%s", c.baseURL, params.Encode())

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		body, status, err := c.get(ctx, reqURL)
		if err == nil && status == http.StatusOK {
			var resp searchResponse
			if err := json.Unmarshal(body, &resp); err != nil {
				return nil, fmt.Errorf("%w: decode search response: %v", domain.ErrCatalogFailure, err)
			}
			if len(resp.Products) > DefaultSearchLimit {
				resp.Products = resp.Products[:DefaultSearchLimit]
			}
			if resp.Products == nil {
				resp.Products = []domain.Product{}
			}
			c.logger.Debug("catalog search", zap.String("query", query), zap.Int("results", len(resp.Products)))
			return resp.Products, nil
		}

		if err == nil {
			if status == http.StatusNotFound {
				return []domain.Product{}, nil
			}
			err = fmt.Errorf("%w: status %d", domain.ErrCatalogFailure, status)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFailure, ctx.Err())
		}

		lastErr = err
		c.logger.Warn("catalog search failed",
			zap.String("query", query),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
		if attempt < maxAttempts {
			if err := sleepContext(ctx, c.exponentialBackoff(attempt)); err != nil {
				return nil, fmt.Errorf("%w: %v", domain.ErrCatalogFailure, err)
			}
		}
	}

	return nil, lastErr
}

// GetByID fetches a single product
func (c *HTTPCatalog) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	reqURL := fmt.Sprintf("%s/v1/products/%s", c.baseURL, url.PathEscape(id))

	body, status, err := c.get(ctx, reqURL)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, domain.ErrProductNotFound
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d, body: %s", domain.ErrCatalogFailure, status, string(body))
	}

	var product domain.Product
	if err := json.Unmarshal(body, &product); err != nil {
		return nil, fmt.Errorf("%w: decode product: %v", domain.ErrCatalogFailure, err)
	}
	return &product, nil
}

// get executes a rate-limited GET and returns the body and status code
func (c *HTTPCatalog) get(ctx context.Context, reqURL string) ([]byte, int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "MediLens/1.0")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrCatalogFailure, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", domain.ErrCatalogFailure, err)
	}
	return body, resp.StatusCode, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
