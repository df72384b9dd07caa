// Package config assembles component configurations from CLI flag values.
package config

import (
	"golang-sales-analytics-service/internal/enrichment"
	"golang-sales-analytics-service/internal/parsers"
	"golang-sales-analytics-service/internal/reader"
	"golang-sales-analytics-service/internal/reporter"
	"golang-sales-analytics-service/internal/validator"
	"golang-sales-analytics-service/pkg/errors"

	"github.com/shopspring/decimal"
)

// CreateReaderConfig creates a file reader configuration
func CreateReaderConfig(noHeader bool) *reader.Config {
	config := reader.DefaultConfig()
	config.SkipHeader = !noHeader
	return config
}

// CreateSchemaConfig creates the record schema configuration
func CreateSchemaConfig() *parsers.SchemaConfig {
	return parsers.DefaultSchemaConfig()
}

// CreateFilterCriteria builds filter criteria from CLI flag values. Empty
// strings mean the corresponding criterion is not applied.
func CreateFilterCriteria(region, minAmount, maxAmount string) (*validator.FilterCriteria, error) {
	criteria := &validator.FilterCriteria{Region: region}

	if minAmount != "" {
		min, err := decimal.NewFromString(minAmount)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "min-amount", minAmount, err).
				WithSuggestion("Provide the minimum amount as a decimal number, e.g. 1000 or 999.50")
		}
		criteria.MinAmount = &min
	}

	if maxAmount != "" {
		max, err := decimal.NewFromString(maxAmount)
		if err != nil {
			return nil, errors.ConfigurationError(errors.CodeInvalidConfig, "max-amount", maxAmount, err).
				WithSuggestion("Provide the maximum amount as a decimal number, e.g. 50000 or 49999.99")
		}
		criteria.MaxAmount = &max
	}

	return criteria, nil
}

// CreateReportConfig creates a report configuration for the specified output
// format
func CreateReportConfig(format string, topN, lowThreshold int) *reporter.Config {
	config := reporter.DefaultConfig()

	switch format {
	case "json":
		config.Format = reporter.FormatJSON
	default:
		config.Format = reporter.FormatText
	}

	config.TopN = topN
	config.LowQuantityThreshold = lowThreshold

	return config
}

// CreateCatalogClientConfig creates a catalog client configuration
func CreateCatalogClientConfig(baseURL string) *enrichment.ClientConfig {
	config := enrichment.DefaultClientConfig()
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	return config
}
