package catalog

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

	"github.com/aiqfome/favorites-backend/pkg/logger"
	"github.com/aiqfome/favorites-backend/pkg/util"
)

const maxBackoff = 5 * time.Second

// Client talks to a Fake Store compatible product catalog
type Client struct {
	config     Config
	httpClient *http.Client
}

// NewClient creates a catalog client with the given configuration
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	config.BaseURL = strings.TrimRight(config.BaseURL, "/")

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
	}, nil
}

// FetchProduct returns the product with the given id. Unavailable outcomes
// are retried up to MaxRetries times; not found never is.
func (c *Client) FetchProduct(ctx context.Context, productID uint) (*Product, error) {
	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := util.ExponentialBackoff(c.config.RetryBaseDelay, maxBackoff, attempt-1, util.DefaultJitter)
			logger.Debug("Retrying catalog request", map[string]interface{}{
				"product_id": productID,
				"attempt":    attempt,
				"delay":      delay.String(),
			})
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, ctx.Err())
			case <-time.After(delay):
			}
		}

		product, err := c.fetchOnce(ctx, productID)
		if err == nil || errors.Is(err, ErrProductNotFound) {
			return product, err
		}
		lastErr = err
	}

	logger.Warn("Catalog unavailable", map[string]interface{}{
		"product_id": productID,
		"error":      lastErr.Error(),
	})
	return nil, lastErr
}

func (c *Client) fetchOnce(ctx context.Context, productID uint) (*Product, error) {
	url := fmt.Sprintf("%s/products/%d", c.config.BaseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrCatalogUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrCatalogUnavailable, err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrProductNotFound
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrCatalogUnavailable, resp.StatusCode)
	}

	// Fake Store answers unknown ids with 200 and an empty body
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrProductNotFound
	}

	var product Product
	if err := json.Unmarshal(trimmed, &product); err != nil {
		return nil, fmt.Errorf("%w: failed to decode product: %v", ErrCatalogUnavailable, err)
	}
	if product.ID == 0 {
		return nil, fmt.Errorf("%w: product payload without id", ErrCatalogUnavailable)
	}
	if product.ID != productID {
		return nil, fmt.Errorf("%w: asked for product %d, got %d", ErrCatalogUnavailable, productID, product.ID)
	}
	product.Price = product.Price.Round(2)

	return &product, nil
}
