package enrichment

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"golang-sales-analytics-service/internal/models"
	"golang-sales-analytics-service/pkg/errors"

	"github.com/shopspring/decimal"
)

func catalogTransaction(id, productID string) *models.Transaction {
	return &models.Transaction{
		TransactionID: id,
		Date:          "2024-12-01",
		ProductID:     productID,
		ProductName:   "Laptop",
		Quantity:      2,
		UnitPrice:     decimal.NewFromInt(59328),
		CustomerID:    "C001",
		Region:        "North",
	}
}

func TestNumericProductID(t *testing.T) {
	tests := []struct {
		input    string
		expected int
		ok       bool
	}{
		{"P101", 101, true},
		{"P1", 1, true},
		{"P0", 0, false},
		{"P-5", 0, false},
		{"Q101", 0, false},
		{"101", 0, false},
		{"P", 0, false},
		{"Pabc", 0, false},
		{"", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			id, ok := NumericProductID(tt.input)
			if ok != tt.ok {
				t.Errorf("NumericProductID(%q) ok = %v, expected %v", tt.input, ok, tt.ok)
			}
			if id != tt.expected {
				t.Errorf("NumericProductID(%q) = %d, expected %d", tt.input, id, tt.expected)
			}
		})
	}
}

func TestFetchProducts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/products" {
			t.Errorf("Unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("limit") != "100" {
			t.Errorf("Unexpected limit: %s", r.URL.Query().Get("limit"))
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"products": [
				{"id": 101, "title": "Laptop Pro", "category": "laptops", "brand": "Apex", "price": 1200.0, "rating": 4.5},
				{"id": 102, "title": "Mouse X", "category": "peripherals", "brand": "Clix", "price": 25.0, "rating": 4.1}
			],
			"total": 2
		}`))
	}))
	defer server.Close()

	config := DefaultClientConfig()
	config.BaseURL = server.URL
	client, err := NewCatalogClient(config)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	products, err := client.FetchProducts(context.Background())
	if err != nil {
		t.Fatalf("FetchProducts failed: %v", err)
	}
	if len(products) != 2 {
		t.Fatalf("Expected 2 products, got %d", len(products))
	}
	if products[0].ID != 101 || products[0].Category != "laptops" {
		t.Errorf("Unexpected first product: %+v", products[0])
	}
}

func TestFetchProductsHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	config := DefaultClientConfig()
	config.BaseURL = server.URL
	client, err := NewCatalogClient(config)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.FetchProducts(context.Background())
	if err == nil {
		t.Fatal("Expected error for 500 response")
	}

	appErr, ok := errors.AsAnalyticsError(err)
	if !ok {
		t.Fatalf("Expected AnalyticsError, got %T", err)
	}
	if appErr.Code != errors.CodeHTTPStatus {
		t.Errorf("Code = %s, expected %s", appErr.Code, errors.CodeHTTPStatus)
	}
}

func TestFetchProductsMalformedJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"products": [{`))
	}))
	defer server.Close()

	config := DefaultClientConfig()
	config.BaseURL = server.URL
	client, err := NewCatalogClient(config)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.FetchProducts(context.Background())
	if err == nil {
		t.Fatal("Expected error for malformed JSON")
	}

	appErr, ok := errors.AsAnalyticsError(err)
	if !ok {
		t.Fatalf("Expected AnalyticsError, got %T", err)
	}
	if appErr.Code != errors.CodeCatalogMalformed {
		t.Errorf("Code = %s, expected %s", appErr.Code, errors.CodeCatalogMalformed)
	}
}

func TestFetchProductsConnectionFailed(t *testing.T) {
	config := DefaultClientConfig()
	config.BaseURL = "http://127.0.0.1:1"
	config.Timeout = 2 * time.Second
	client, err := NewCatalogClient(config)
	if err != nil {
		t.Fatalf("Failed to create client: %v", err)
	}

	_, err = client.FetchProducts(context.Background())
	if err == nil {
		t.Fatal("Expected connection error")
	}

	appErr, ok := errors.AsAnalyticsError(err)
	if !ok {
		t.Fatalf("Expected AnalyticsError, got %T", err)
	}
	if appErr.Category != errors.CategoryNetwork {
		t.Errorf("Category = %s, expected network", appErr.Category)
	}
}

func TestBuildCatalog(t *testing.T) {
	products := []Product{
		{ID: 101, Title: "Laptop"},
		{ID: 0, Title: "No ID"},
		{ID: -1, Title: "Negative"},
		{ID: 102, Title: "Mouse"},
	}

	catalog := BuildCatalog(products)
	if len(catalog) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(catalog))
	}
	if catalog[101].Title != "Laptop" {
		t.Errorf("Unexpected entry for 101: %+v", catalog[101])
	}
}

func TestEnrich(t *testing.T) {
	catalog := Catalog{
		101: {ID: 101, Category: "laptops", Brand: "Apex", Rating: 4.5},
	}

	transactions := []*models.Transaction{
		catalogTransaction("T001", "P101"),
		catalogTransaction("T002", "P999"),
		catalogTransaction("T003", "Q101"),
	}

	result := Enrich(transactions, catalog)

	if len(result.Enriched) != 3 {
		t.Fatalf("Expected 3 enriched records, got %d", len(result.Enriched))
	}
	if result.MatchedCount != 1 {
		t.Errorf("MatchedCount = %d, expected 1", result.MatchedCount)
	}

	matched := result.Enriched[0]
	if !matched.APIMatch || matched.APICategory != "laptops" || matched.APIBrand != "Apex" || matched.APIRating != 4.5 {
		t.Errorf("Matched record wrong: %+v", matched)
	}

	// Unmatched records get empty fields, zero rating, false match
	for _, e := range result.Enriched[1:] {
		if e.APIMatch || e.APICategory != "" || e.APIBrand != "" || e.APIRating != 0 {
			t.Errorf("Unmatched record should be empty: %+v", e)
		}
	}

	// Input transactions unchanged
	if transactions[0].ProductName != "Laptop" {
		t.Error("Enrich modified the input transaction")
	}
}

func TestEnrichMatchRate(t *testing.T) {
	catalog := Catalog{101: {ID: 101}}
	transactions := []*models.Transaction{
		catalogTransaction("T001", "P101"),
		catalogTransaction("T002", "P999"),
	}

	result := Enrich(transactions, catalog)
	if result.MatchRate() != 50.0 {
		t.Errorf("MatchRate = %.1f, expected 50.0", result.MatchRate())
	}

	empty := &Result{}
	if empty.MatchRate() != 0 {
		t.Errorf("Empty MatchRate = %.1f, expected 0", empty.MatchRate())
	}
}

func TestUnmatchedProductIDs(t *testing.T) {
	catalog := Catalog{101: {ID: 101}}
	transactions := []*models.Transaction{
		catalogTransaction("T001", "P999"),
		catalogTransaction("T002", "P101"),
		catalogTransaction("T003", "P999"),
		catalogTransaction("T004", "P888"),
	}

	result := Enrich(transactions, catalog)
	unmatched := result.UnmatchedProductIDs()

	if len(unmatched) != 2 {
		t.Fatalf("Expected 2 distinct unmatched IDs, got %d", len(unmatched))
	}
	if unmatched[0] != "P999" || unmatched[1] != "P888" {
		t.Errorf("Expected first-seen order [P999 P888], got %v", unmatched)
	}
}

func TestWriteEnriched(t *testing.T) {
	enriched := []models.EnrichedTransaction{
		{
			Transaction: *catalogTransaction("T001", "P101"),
			APICategory: "laptops",
			APIBrand:    "Apex",
			APIRating:   4.5,
			APIMatch:    true,
		},
		{
			Transaction: *catalogTransaction("T002", "P999"),
		},
	}

	var buf bytes.Buffer
	if err := WriteEnriched(&buf, enriched); err != nil {
		t.Fatalf("WriteEnriched failed: %v", err)
	}

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header + 2 rows, got %d lines", len(lines))
	}

	header := "TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region|API_Category|API_Brand|API_Rating|API_Match"
	if lines[0] != header {
		t.Errorf("Header = %q", lines[0])
	}
	if lines[1] != "T001|2024-12-01|P101|Laptop|2|59328|C001|North|laptops|Apex|4.5|true" {
		t.Errorf("Matched row = %q", lines[1])
	}
	if lines[2] != "T002|2024-12-01|P999|Laptop|2|59328|C001|North|||0|false" {
		t.Errorf("Unmatched row = %q", lines[2])
	}
}

func TestClientConfigValidate(t *testing.T) {
	tests := []struct {
		name        string
		modify      func(*ClientConfig)
		expectError bool
	}{
		{
			name:   "default config",
			modify: func(c *ClientConfig) {},
		},
		{
			name:        "empty base URL",
			modify:      func(c *ClientConfig) { c.BaseURL = "  " },
			expectError: true,
		},
		{
			name:        "zero limit",
			modify:      func(c *ClientConfig) { c.Limit = 0 },
			expectError: true,
		},
		{
			name:        "zero timeout",
			modify:      func(c *ClientConfig) { c.Timeout = 0 },
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultClientConfig()
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
