// Package enrichment augments accepted transactions with product metadata
// fetched from an external catalog service.
//
// The catalog is a DummyJSON-style endpoint returning products with numeric
// IDs. Transactions are matched by deriving the numeric part of their
// ProductID (P101 -> 101). Enrichment never mutates the core Transaction; it
// appends fields on a separate record shape.
package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang-sales-analytics-service/pkg/errors"
	"golang-sales-analytics-service/pkg/logger"
)

// DefaultCatalogURL is the public product catalog endpoint
const DefaultCatalogURL = "https://dummyjson.com"

// Product is one catalog entry
type Product struct {
	ID       int     `json:"id"`
	Title    string  `json:"title"`
	Category string  `json:"category"`
	Brand    string  `json:"brand"`
	Price    float64 `json:"price"`
	Rating   float64 `json:"rating"`
}

// Catalog maps numeric product IDs to catalog entries
type Catalog map[int]Product

// ClientConfig holds configuration for the catalog client
type ClientConfig struct {
	BaseURL string        `json:"base_url"`
	Limit   int           `json:"limit"`
	Timeout time.Duration `json:"timeout"`
}

// DefaultClientConfig returns a default catalog client configuration
func DefaultClientConfig() *ClientConfig {
	return &ClientConfig{
		BaseURL: DefaultCatalogURL,
		Limit:   100,
		Timeout: 10 * time.Second,
	}
}

// Validate validates the client configuration
func (c *ClientConfig) Validate() error {
	if strings.TrimSpace(c.BaseURL) == "" {
		return fmt.Errorf("base URL cannot be empty")
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("invalid base URL: %w", err)
	}
	if c.Limit <= 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	return nil
}

// CatalogClient fetches products from the catalog service
type CatalogClient struct {
	config *ClientConfig
	client *http.Client
	logger logger.Logger
}

// NewCatalogClient creates a CatalogClient with the given configuration
func NewCatalogClient(config *ClientConfig) (*CatalogClient, error) {
	if config == nil {
		config = DefaultClientConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"catalog_client_config",
			config.BaseURL,
			err,
		).WithSuggestion("Check the catalog URL, limit and timeout settings")
	}

	log := logger.GetGlobalLogger().WithComponent("catalog_client")
	log.WithFields(logger.Fields{
		"base_url": config.BaseURL,
		"limit":    config.Limit,
		"timeout":  config.Timeout.String(),
	}).Debug("Created catalog client")

	return &CatalogClient{
		config: config,
		client: &http.Client{Timeout: config.Timeout},
		logger: log,
	}, nil
}

// productsResponse is the catalog service's list envelope
type productsResponse struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
}

// FetchProducts retrieves the product list from the catalog service
func (c *CatalogClient) FetchProducts(ctx context.Context) ([]Product, error) {
	endpoint := fmt.Sprintf("%s/products?limit=%d", strings.TrimRight(c.config.BaseURL, "/"), c.config.Limit)

	c.logger.WithField("endpoint", endpoint).Info("Fetching product catalog")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, errors.NetworkError(errors.CodeConnectionFailed, endpoint, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.WithError(err).WithField("endpoint", endpoint).Error("Catalog request failed")

		if urlErr, ok := err.(*url.Error); ok && urlErr.Timeout() {
			return nil, errors.NetworkError(errors.CodeTimeout, endpoint, err)
		}
		return nil, errors.NetworkError(errors.CodeConnectionFailed, endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.logger.WithFields(logger.Fields{
			"endpoint": endpoint,
			"status":   resp.StatusCode,
		}).Error("Catalog returned non-OK status")

		return nil, errors.NetworkError(
			errors.CodeHTTPStatus,
			endpoint,
			fmt.Errorf("status %d", resp.StatusCode),
		).WithContext("status_code", resp.StatusCode)
	}

	var payload productsResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		c.logger.WithError(err).WithField("endpoint", endpoint).Error("Failed to decode catalog response")
		return nil, errors.EnrichmentError(errors.CodeCatalogMalformed, "catalog_fetch", err)
	}

	c.logger.WithField("products", len(payload.Products)).Info("Catalog fetched")

	return payload.Products, nil
}

// BuildCatalog indexes products by numeric ID. Entries without a positive ID
// are skipped.
func BuildCatalog(products []Product) Catalog {
	catalog := make(Catalog, len(products))
	for _, p := range products {
		if p.ID > 0 {
			catalog[p.ID] = p
		}
	}
	return catalog
}

// NumericProductID derives the catalog lookup key from a ProductID like
// "P101". The second return is false when no numeric ID can be derived.
func NumericProductID(productID string) (int, bool) {
	if !strings.HasPrefix(productID, "P") || len(productID) < 2 {
		return 0, false
	}
	id, err := strconv.Atoi(productID[1:])
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
