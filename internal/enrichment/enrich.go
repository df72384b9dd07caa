package enrichment

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"golang-sales-analytics-service/internal/models"
	"golang-sales-analytics-service/pkg/errors"
	"golang-sales-analytics-service/pkg/logger"
)

// enrichedHeader is the output schema of the enriched data file
var enrichedHeader = []string{
	"TransactionID", "Date", "ProductID", "ProductName",
	"Quantity", "UnitPrice", "CustomerID", "Region",
	"API_Category", "API_Brand", "API_Rating", "API_Match",
}

// Result summarizes an enrichment pass
type Result struct {
	Enriched     []models.EnrichedTransaction `json:"enriched"`
	MatchedCount int                          `json:"matched_count"`
}

// MatchRate returns the percentage of transactions that found a catalog
// match
func (r *Result) MatchRate() float64 {
	if len(r.Enriched) == 0 {
		return 0
	}
	return float64(r.MatchedCount) / float64(len(r.Enriched)) * 100
}

// UnmatchedProductIDs returns the distinct product IDs that found no catalog
// match, in first-seen order
func (r *Result) UnmatchedProductIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, e := range r.Enriched {
		if !e.APIMatch && !seen[e.ProductID] {
			seen[e.ProductID] = true
			ids = append(ids, e.ProductID)
		}
	}
	return ids
}

// Enrich appends catalog fields to every transaction, in input order. A
// transaction with no catalog match gets empty category/brand, rating 0 and
// match false. The input transactions are not modified.
func Enrich(transactions []*models.Transaction, catalog Catalog) *Result {
	log := logger.GetGlobalLogger().WithComponent("enrichment")

	result := &Result{
		Enriched: make([]models.EnrichedTransaction, 0, len(transactions)),
	}

	for _, tx := range transactions {
		enriched := models.EnrichedTransaction{Transaction: *tx}

		if id, ok := NumericProductID(tx.ProductID); ok {
			if product, found := catalog[id]; found {
				enriched.APICategory = product.Category
				enriched.APIBrand = product.Brand
				enriched.APIRating = product.Rating
				enriched.APIMatch = true
				result.MatchedCount++
			}
		}

		result.Enriched = append(result.Enriched, enriched)
	}

	log.WithFields(logger.Fields{
		"transactions": len(transactions),
		"matched":      result.MatchedCount,
		"match_rate":   fmt.Sprintf("%.1f%%", result.MatchRate()),
	}).Info("Enrichment completed")

	return result
}

// WriteEnriched writes enriched transactions in the 12-column pipe format
// with a header row.
func WriteEnriched(w io.Writer, enriched []models.EnrichedTransaction) error {
	bw := bufio.NewWriter(w)

	if _, err := bw.WriteString(strings.Join(enrichedHeader, "|") + "\n"); err != nil {
		return err
	}

	for _, e := range enriched {
		row := strings.Join([]string{
			e.TransactionID,
			e.Date,
			e.ProductID,
			e.ProductName,
			strconv.Itoa(e.Quantity),
			e.UnitPrice.String(),
			e.CustomerID,
			e.Region,
			e.APICategory,
			e.APIBrand,
			strconv.FormatFloat(e.APIRating, 'g', -1, 64),
			strconv.FormatBool(e.APIMatch),
		}, "|")

		if _, err := bw.WriteString(row + "\n"); err != nil {
			return err
		}
	}

	return bw.Flush()
}

// SaveEnrichedFile writes the enriched data file at path, creating parent
// directories as needed.
func SaveEnrichedFile(path string, enriched []models.EnrichedTransaction) error {
	log := logger.GetGlobalLogger().WithComponent("enrichment")

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.FileError(errors.CodeFilePermission, path, err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		if os.IsPermission(err) {
			return errors.FileError(errors.CodeFilePermission, path, err)
		}
		return errors.FileError(errors.CodeFileCorrupted, path, err)
	}
	defer file.Close()

	if err := WriteEnriched(file, enriched); err != nil {
		return errors.FileError(errors.CodeFileCorrupted, path, err)
	}

	log.WithFields(logger.Fields{
		"file_path": path,
		"records":   len(enriched),
	}).Info("Enriched data saved")

	return nil
}
