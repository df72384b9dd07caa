package reporter

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"golang-sales-analytics-service/internal/enrichment"
	"golang-sales-analytics-service/internal/models"
	"golang-sales-analytics-service/internal/pipeline"

	"github.com/shopspring/decimal"
)

func reportTransaction(id, date, productID, productName string, quantity int, unitPrice, customerID, region string) *models.Transaction {
	return &models.Transaction{
		TransactionID: id,
		Date:          date,
		ProductID:     productID,
		ProductName:   productName,
		Quantity:      quantity,
		UnitPrice:     decimal.RequireFromString(unitPrice),
		CustomerID:    customerID,
		Region:        region,
	}
}

func sampleReportData() *ReportData {
	transactions := []*models.Transaction{
		reportTransaction("T001", "2024-12-01", "P101", "Laptop", 2, "59328", "C001", "North"),
		reportTransaction("T002", "2024-12-01", "P102", "Wireless Mouse", 5, "801", "C002", "South"),
		reportTransaction("T003", "2024-12-02", "P102", "Wireless Mouse", 3, "801", "C001", "North"),
	}

	return &ReportData{
		Transactions: transactions,
		Summary: pipeline.Summary{
			SourceFile:    "sales_data.txt",
			TotalLines:    4,
			RecordsParsed: 4,
			AcceptedCount: 3,
			RejectedCount: 1,
			RejectedByReason: map[models.RejectionReason]int{
				models.ReasonNonPositiveQuantity: 1,
			},
			Duration: 5 * time.Millisecond,
		},
	}
}

func newTestGenerator(t *testing.T, config *Config) *Generator {
	t.Helper()
	g, err := NewGenerator(config)
	if err != nil {
		t.Fatalf("Failed to create generator: %v", err)
	}
	g.now = func() time.Time {
		return time.Date(2024, 12, 15, 10, 30, 0, 0, time.UTC)
	}
	return g
}

func TestGenerateTextReport(t *testing.T) {
	g := newTestGenerator(t, nil)

	var buf bytes.Buffer
	if err := g.Generate(sampleReportData(), &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	output := buf.String()

	expectedSections := []string{
		"SALES ANALYTICS REPORT",
		"OVERALL SUMMARY",
		"REJECTED RECORDS",
		"REGION-WISE PERFORMANCE",
		"TOP 5 SELLING PRODUCTS",
		"TOP 5 CUSTOMERS",
		"DAILY SALES TREND",
		"PRODUCT PERFORMANCE ANALYSIS",
		"END OF REPORT",
	}
	for _, section := range expectedSections {
		if !strings.Contains(output, section) {
			t.Errorf("Report missing section %q", section)
		}
	}

	// Total revenue: 118656 + 4005 + 2403 = 125064
	if !strings.Contains(output, "₹125064.00") {
		t.Errorf("Report missing total revenue, output:\n%s", output)
	}
	if !strings.Contains(output, "non_positive_quantity") {
		t.Error("Report missing rejection reason breakdown")
	}
	if !strings.Contains(output, "Peak Sales Day:        2024-12-01") {
		t.Error("Report missing peak day")
	}
	// No enrichment section without enrichment data
	if strings.Contains(output, "API ENRICHMENT SUMMARY") {
		t.Error("Report should not include enrichment section")
	}
}

func TestGenerateTextReportWithEnrichment(t *testing.T) {
	data := sampleReportData()
	data.Enrichment = &enrichment.Result{
		Enriched: []models.EnrichedTransaction{
			{Transaction: *data.Transactions[0], APIMatch: true, APICategory: "laptops"},
			{Transaction: *data.Transactions[1]},
		},
		MatchedCount: 1,
	}

	g := newTestGenerator(t, nil)

	var buf bytes.Buffer
	if err := g.Generate(data, &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "API ENRICHMENT SUMMARY") {
		t.Fatal("Report missing enrichment section")
	}
	if !strings.Contains(output, "Total Products Enriched:  1/2") {
		t.Errorf("Report missing enrichment counts, output:\n%s", output)
	}
	if !strings.Contains(output, "- P102") {
		t.Error("Report missing unmatched product ID")
	}
}

func TestGenerateJSONReport(t *testing.T) {
	config := DefaultConfig()
	config.Format = FormatJSON
	g := newTestGenerator(t, config)

	var buf bytes.Buffer
	if err := g.Generate(sampleReportData(), &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}

	var report map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &report); err != nil {
		t.Fatalf("Output is not valid JSON: %v", err)
	}

	if report["total_revenue"] != "125064" {
		t.Errorf("total_revenue = %v, expected \"125064\"", report["total_revenue"])
	}

	regions, ok := report["regions"].([]interface{})
	if !ok || len(regions) != 2 {
		t.Fatalf("Expected 2 regions in JSON, got %v", report["regions"])
	}

	peak, ok := report["peak_day"].(map[string]interface{})
	if !ok || peak["date"] != "2024-12-01" {
		t.Errorf("peak_day = %v", report["peak_day"])
	}

	summary, ok := report["summary"].(map[string]interface{})
	if !ok || summary["rejected_count"] != float64(1) {
		t.Errorf("summary = %v", report["summary"])
	}
}

func TestGenerateEmptyData(t *testing.T) {
	g := newTestGenerator(t, nil)

	data := &ReportData{
		Transactions: nil,
		Summary:      pipeline.Summary{},
	}

	var buf bytes.Buffer
	if err := g.Generate(data, &buf); err != nil {
		t.Fatalf("Generate failed on empty data: %v", err)
	}

	output := buf.String()
	if !strings.Contains(output, "Total Revenue:         ₹0.00") {
		t.Error("Expected zero total revenue")
	}
	if !strings.Contains(output, "Date Range:            N/A") {
		t.Error("Expected N/A date range")
	}
}

func TestGenerateNilData(t *testing.T) {
	g := newTestGenerator(t, nil)

	var buf bytes.Buffer
	if err := g.Generate(nil, &buf); err == nil {
		t.Fatal("Expected error for nil data")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*Config)
		expectError bool
	}{
		{
			name:   "default config",
			modify: func(c *Config) {},
		},
		{
			name:   "json format",
			modify: func(c *Config) { c.Format = FormatJSON },
		},
		{
			name:        "unknown format",
			modify:      func(c *Config) { c.Format = "xml" },
			expectError: true,
		},
		{
			name:        "zero top-n",
			modify:      func(c *Config) { c.TopN = 0 },
			expectError: true,
		},
		{
			name:        "negative threshold",
			modify:      func(c *Config) { c.LowQuantityThreshold = -1 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)

			err := config.Validate()
			if tt.expectError && err == nil {
				t.Error("Expected validation error, got nil")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Expected no error, got: %v", err)
			}
		})
	}
}

func TestTopNBoundsRankings(t *testing.T) {
	config := DefaultConfig()
	config.TopN = 1
	g := newTestGenerator(t, config)

	var buf bytes.Buffer
	if err := g.Generate(sampleReportData(), &buf); err != nil {
		t.Fatalf("Generate failed: %v", err)
	}
	output := buf.String()

	if !strings.Contains(output, "TOP 1 SELLING PRODUCTS") {
		t.Error("Expected TOP 1 heading")
	}
	// Only the top product (Wireless Mouse, qty 8) should appear in rankings
	if !strings.Contains(output, "Wireless Mouse") {
		t.Error("Expected top product in report")
	}
}
