// Package reporter generates sales analytics reports from accepted
// transactions and pipeline summaries.
//
// Supported output formats:
//   - Text: the human-readable sectioned report (summary, region
//     performance, top products/customers, daily trend, enrichment summary)
//   - JSON: structured aggregates for programmatic consumption
//
// The reporter consumes the accepted transaction sequence, the rejection
// counts (never full rejected content), and the enrichment result. It has no
// contract back into the pipeline.
package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"golang-sales-analytics-service/internal/analytics"
	"golang-sales-analytics-service/internal/enrichment"
	"golang-sales-analytics-service/internal/models"
	"golang-sales-analytics-service/internal/pipeline"

	"github.com/shopspring/decimal"
)

// OutputFormat represents the supported report output formats
type OutputFormat string

const (
	FormatText OutputFormat = "text"
	FormatJSON OutputFormat = "json"
)

// IsValid checks if the output format is supported
func (f OutputFormat) IsValid() bool {
	switch f {
	case FormatText, FormatJSON:
		return true
	default:
		return false
	}
}

// Config holds configuration options for report generation
type Config struct {
	Format OutputFormat `json:"format"`

	// TopN bounds the product and customer ranking sections.
	TopN int `json:"top_n"`

	// LowQuantityThreshold marks products below this summed quantity as
	// low performers.
	LowQuantityThreshold int `json:"low_quantity_threshold"`

	// CurrencySymbol prefixes monetary values in the text format.
	CurrencySymbol string `json:"currency_symbol"`
}

// DefaultConfig returns a default report configuration
func DefaultConfig() *Config {
	return &Config{
		Format:               FormatText,
		TopN:                 5,
		LowQuantityThreshold: 10,
		CurrencySymbol:       "₹",
	}
}

// Validate validates the report configuration
func (c *Config) Validate() error {
	if !c.Format.IsValid() {
		return fmt.Errorf("invalid output format: %s", c.Format)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top-n must be positive, got %d", c.TopN)
	}
	if c.LowQuantityThreshold < 0 {
		return fmt.Errorf("low quantity threshold cannot be negative, got %d", c.LowQuantityThreshold)
	}
	return nil
}

// ReportData is everything a report consumes
type ReportData struct {
	Transactions []*models.Transaction
	Summary      pipeline.Summary
	Enrichment   *enrichment.Result // nil when enrichment was not run
}

// Generator produces reports in the configured format
type Generator struct {
	config *Config
	now    func() time.Time
}

// NewGenerator creates a report generator with the specified configuration
func NewGenerator(config *Config) (*Generator, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	return &Generator{
		config: config,
		now:    time.Now,
	}, nil
}

// Generate writes the report for data to w
func (g *Generator) Generate(data *ReportData, w io.Writer) error {
	if data == nil {
		return fmt.Errorf("report data cannot be nil")
	}

	switch g.config.Format {
	case FormatJSON:
		return g.generateJSON(data, w)
	default:
		return g.generateText(data, w)
	}
}

// jsonReport is the structured report shape
type jsonReport struct {
	GeneratedAt  string                    `json:"generated_at"`
	Summary      pipeline.Summary          `json:"summary"`
	TotalRevenue string                    `json:"total_revenue"`
	AvgOrder     string                    `json:"average_order_value"`
	Regions      []analytics.RegionStats   `json:"regions"`
	TopProducts  []analytics.ProductStats  `json:"top_products"`
	TopCustomers []analytics.CustomerStats `json:"top_customers"`
	DailyTrend   []analytics.DayStats      `json:"daily_trend"`
	PeakDay      *analytics.DayStats       `json:"peak_day,omitempty"`
	LowProducts  []analytics.ProductStats  `json:"low_performing_products"`
	Enrichment   *jsonEnrichment           `json:"enrichment,omitempty"`
}

type jsonEnrichment struct {
	Total        int      `json:"total"`
	Matched      int      `json:"matched"`
	MatchRate    float64  `json:"match_rate"`
	UnmatchedIDs []string `json:"unmatched_product_ids,omitempty"`
}

func (g *Generator) generateJSON(data *ReportData, w io.Writer) error {
	txs := data.Transactions

	report := jsonReport{
		GeneratedAt:  g.now().Format(time.RFC3339),
		Summary:      data.Summary,
		TotalRevenue: analytics.TotalRevenue(txs).String(),
		AvgOrder:     averageOrderValue(txs).String(),
		Regions:      analytics.RegionSales(txs),
		TopProducts:  analytics.TopProducts(txs, g.config.TopN),
		TopCustomers: analytics.TopCustomers(txs, g.config.TopN),
		DailyTrend:   analytics.DailyTrend(txs),
		LowProducts:  analytics.LowPerformers(txs, g.config.LowQuantityThreshold),
	}

	if peak, ok := analytics.PeakDay(txs); ok {
		report.PeakDay = &peak
	}

	if data.Enrichment != nil {
		report.Enrichment = &jsonEnrichment{
			Total:        len(data.Enrichment.Enriched),
			Matched:      data.Enrichment.MatchedCount,
			MatchRate:    data.Enrichment.MatchRate(),
			UnmatchedIDs: data.Enrichment.UnmatchedProductIDs(),
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(report)
}

const lineWidth = 60

func (g *Generator) generateText(data *ReportData, w io.Writer) error {
	txs := data.Transactions
	cur := g.config.CurrencySymbol

	var b strings.Builder

	// Header
	b.WriteString(strings.Repeat("=", lineWidth) + "\n")
	b.WriteString(center("SALES ANALYTICS REPORT") + "\n")
	b.WriteString(fmt.Sprintf("Generated: %s\n", g.now().Format("2006-01-02 15:04:05")))
	b.WriteString(fmt.Sprintf("Records Processed: %d (rejected: %d)\n", len(txs), data.Summary.RejectedCount))
	b.WriteString(strings.Repeat("=", lineWidth) + "\n\n")

	// Overall summary
	totalRevenue := analytics.TotalRevenue(txs)
	b.WriteString(section("OVERALL SUMMARY"))
	b.WriteString(fmt.Sprintf("Total Revenue:         %s%s\n", cur, totalRevenue.StringFixed(2)))
	b.WriteString(fmt.Sprintf("Total Transactions:    %d\n", len(txs)))
	b.WriteString(fmt.Sprintf("Average Order Value:   %s%s\n", cur, averageOrderValue(txs).StringFixed(2)))
	b.WriteString(fmt.Sprintf("Date Range:            %s\n\n", dateRange(txs)))

	// Rejection breakdown
	if data.Summary.RejectedCount > 0 {
		b.WriteString(section("REJECTED RECORDS"))
		for _, reason := range rejectionOrder {
			if count := data.Summary.RejectedByReason[reason]; count > 0 {
				b.WriteString(fmt.Sprintf("%-35s %d\n", reason.String(), count))
			}
		}
		b.WriteString("\n")
	}

	// Region-wise performance
	b.WriteString(section("REGION-WISE PERFORMANCE"))
	b.WriteString(fmt.Sprintf("%-15s %-18s %-12s %s\n", "Region", "Sales", "% of Total", "Transactions"))
	b.WriteString(strings.Repeat("-", lineWidth) + "\n")
	for _, r := range analytics.RegionSales(txs) {
		b.WriteString(fmt.Sprintf("%-15s %s%-17s %10.2f%% %10d\n",
			r.Region, cur, r.TotalSales.StringFixed(2), r.Percentage, r.TransactionCount))
	}
	b.WriteString("\n")

	// Top products
	b.WriteString(section(fmt.Sprintf("TOP %d SELLING PRODUCTS", g.config.TopN)))
	b.WriteString(fmt.Sprintf("%-6s %-25s %-8s %s\n", "Rank", "Product Name", "Qty", "Revenue"))
	b.WriteString(strings.Repeat("-", lineWidth) + "\n")
	for i, p := range analytics.TopProducts(txs, g.config.TopN) {
		b.WriteString(fmt.Sprintf("%-6d %-25s %-8d %s%s\n",
			i+1, p.ProductName, p.Quantity, cur, p.Revenue.StringFixed(2)))
	}
	b.WriteString("\n")

	// Top customers
	b.WriteString(section(fmt.Sprintf("TOP %d CUSTOMERS", g.config.TopN)))
	b.WriteString(fmt.Sprintf("%-6s %-15s %-18s %s\n", "Rank", "Customer ID", "Total Spent", "Orders"))
	b.WriteString(strings.Repeat("-", lineWidth) + "\n")
	for i, c := range analytics.TopCustomers(txs, g.config.TopN) {
		b.WriteString(fmt.Sprintf("%-6d %-15s %s%-17s %6d\n",
			i+1, c.CustomerID, cur, c.TotalSpent.StringFixed(2), c.PurchaseCount))
	}
	b.WriteString("\n")

	// Daily trend
	b.WriteString(section("DAILY SALES TREND"))
	b.WriteString(fmt.Sprintf("%-12s %-18s %-15s %s\n", "Date", "Revenue", "Transactions", "Unique Customers"))
	b.WriteString(strings.Repeat("-", lineWidth) + "\n")
	for _, d := range analytics.DailyTrend(txs) {
		b.WriteString(fmt.Sprintf("%-12s %s%-17s %14d %16d\n",
			d.Date, cur, d.Revenue.StringFixed(2), d.TransactionCount, d.UniqueCustomers))
	}
	b.WriteString("\n")

	// Product performance
	b.WriteString(section("PRODUCT PERFORMANCE ANALYSIS"))
	if peak, ok := analytics.PeakDay(txs); ok {
		b.WriteString(fmt.Sprintf("Peak Sales Day:        %s\n", peak.Date))
		b.WriteString(fmt.Sprintf("Peak Revenue:          %s%s\n", cur, peak.Revenue.StringFixed(2)))
		b.WriteString(fmt.Sprintf("Transactions on Peak:  %d\n\n", peak.TransactionCount))
	}

	low := analytics.LowPerformers(txs, g.config.LowQuantityThreshold)
	if len(low) > 0 {
		b.WriteString(fmt.Sprintf("Low Performing Products (Qty < %d):\n", g.config.LowQuantityThreshold))
		b.WriteString(fmt.Sprintf("%-25s %-8s %s\n", "Product Name", "Qty", "Revenue"))
		b.WriteString(strings.Repeat("-", lineWidth) + "\n")
		for _, p := range low {
			b.WriteString(fmt.Sprintf("%-25s %-8d %s%s\n", p.ProductName, p.Quantity, cur, p.Revenue.StringFixed(2)))
		}
	} else {
		b.WriteString("Low Performing Products: None\n")
	}

	if regions := analytics.RegionSales(txs); len(regions) > 0 {
		b.WriteString("\nAverage Transaction Value per Region:\n")
		for _, r := range regions {
			avg := decimal.Zero
			if r.TransactionCount > 0 {
				avg = r.TotalSales.Div(decimal.NewFromInt(int64(r.TransactionCount))).Round(2)
			}
			b.WriteString(fmt.Sprintf("%-20s %s%s\n", r.Region, cur, avg.StringFixed(2)))
		}
	}
	b.WriteString("\n")

	// Enrichment summary
	if data.Enrichment != nil {
		b.WriteString(section("API ENRICHMENT SUMMARY"))
		b.WriteString(fmt.Sprintf("Total Products Enriched:  %d/%d\n",
			data.Enrichment.MatchedCount, len(data.Enrichment.Enriched)))
		b.WriteString(fmt.Sprintf("Success Rate:             %.1f%%\n", data.Enrichment.MatchRate()))

		if unmatched := data.Enrichment.UnmatchedProductIDs(); len(unmatched) > 0 {
			b.WriteString(fmt.Sprintf("\nProducts Not Enriched (%d):\n", len(unmatched)))
			shown := unmatched
			if len(shown) > 10 {
				shown = shown[:10]
			}
			for _, id := range shown {
				b.WriteString(fmt.Sprintf("  - %s\n", id))
			}
			if len(unmatched) > 10 {
				b.WriteString(fmt.Sprintf("  ... and %d more\n", len(unmatched)-10))
			}
		}
		b.WriteString("\n")
	}

	b.WriteString(strings.Repeat("=", lineWidth) + "\n")
	b.WriteString(center("END OF REPORT") + "\n")
	b.WriteString(strings.Repeat("=", lineWidth) + "\n")

	_, err := io.WriteString(w, b.String())
	return err
}

// rejectionOrder fixes the order rejection counts appear in the report
var rejectionOrder = []models.RejectionReason{
	models.ReasonTypeCoercionFailure,
	models.ReasonMissingRequiredField,
	models.ReasonNonPositiveQuantity,
	models.ReasonNonPositiveUnitPrice,
	models.ReasonInvalidTransactionIDPrefix,
	models.ReasonInvalidProductIDPrefix,
	models.ReasonInvalidCustomerIDPrefix,
}

func section(title string) string {
	return title + "\n" + strings.Repeat("-", lineWidth) + "\n"
}

func center(s string) string {
	if len(s) >= lineWidth {
		return s
	}
	pad := (lineWidth - len(s)) / 2
	return strings.Repeat(" ", pad) + s
}

func averageOrderValue(txs []*models.Transaction) decimal.Decimal {
	if len(txs) == 0 {
		return decimal.Zero
	}
	return analytics.TotalRevenue(txs).Div(decimal.NewFromInt(int64(len(txs)))).Round(2)
}

func dateRange(txs []*models.Transaction) string {
	if len(txs) == 0 {
		return "N/A"
	}
	minDate, maxDate := txs[0].Date, txs[0].Date
	for _, tx := range txs[1:] {
		if tx.Date < minDate {
			minDate = tx.Date
		}
		if tx.Date > maxDate {
			maxDate = tx.Date
		}
	}
	return fmt.Sprintf("%s to %s", minDate, maxDate)
}
