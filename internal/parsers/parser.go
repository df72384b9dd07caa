// Package parsers turns raw pipe-delimited lines into typed, schema-mapped
// sales records.
//
// The parser is total: it never fails on malformed content. Lines with fewer
// fields than the schema get empty values for the missing positions, extra
// fields are discarded, and a numeric field that cannot be coerced after
// comma cleaning produces a coercion-failure marker on the record instead of
// an error. All accept/reject decisions belong to the validator.
package parsers

import (
	"strconv"
	"strings"

	"golang-sales-analytics-service/internal/models"
	"golang-sales-analytics-service/pkg/errors"
	"golang-sales-analytics-service/pkg/logger"

	"github.com/shopspring/decimal"
)

// RecordParser parses raw lines into ParsedRecords using a positional schema
type RecordParser struct {
	config *SchemaConfig
	logger logger.Logger
}

// NewRecordParser creates a RecordParser with the given schema configuration
func NewRecordParser(config *SchemaConfig) (*RecordParser, error) {
	if config == nil {
		config = DefaultSchemaConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, errors.ConfigurationError(
			errors.CodeInvalidConfig,
			"schema_config",
			config.Fields,
			err,
		).WithSuggestion("Check the schema field list and delimiter")
	}

	log := logger.GetGlobalLogger().WithComponent("record_parser")
	log.WithFields(logger.Fields{
		"delimiter": string(config.Delimiter),
		"fields":    config.Fields,
	}).Debug("Created record parser")

	return &RecordParser{
		config: config,
		logger: log,
	}, nil
}

// ParseLines parses raw lines into records, preserving source order. The
// returned slice has one record per input line; no line is ever dropped.
func (p *RecordParser) ParseLines(lines []string) []*models.ParsedRecord {
	records := make([]*models.ParsedRecord, 0, len(lines))
	coercionFailures := 0

	for i, line := range lines {
		record := p.parseLine(line, i)
		if record.HasCoercionFailure() {
			coercionFailures++
		}
		records = append(records, record)
	}

	p.logger.WithFields(logger.Fields{
		"lines":             len(lines),
		"records":           len(records),
		"coercion_failures": coercionFailures,
	}).Info("Parsing completed")

	return records
}

// parseLine splits one raw line on the delimiter, maps fields positionally,
// cleans thousands-separator commas, and coerces the numeric fields.
func (p *RecordParser) parseLine(line string, lineIndex int) *models.ParsedRecord {
	fields := strings.Split(line, string(p.config.Delimiter))

	record := &models.ParsedRecord{LineIndex: lineIndex}

	record.TransactionID = p.fieldAt(fields, FieldTransactionID)
	record.Date = p.fieldAt(fields, FieldDate)
	record.ProductID = p.fieldAt(fields, FieldProductID)
	record.ProductName = CleanCommas(p.fieldAt(fields, FieldProductName))
	record.CustomerID = p.fieldAt(fields, FieldCustomerID)
	record.Region = p.fieldAt(fields, FieldRegion)

	quantityStr := CleanCommas(p.fieldAt(fields, FieldQuantity))
	unitPriceStr := CleanCommas(p.fieldAt(fields, FieldUnitPrice))

	quantity, err := CoerceQuantity(quantityStr)
	if err != nil {
		p.logger.WithError(err).WithFields(logger.Fields{
			"line_index": lineIndex,
			"field":      FieldQuantity,
			"value":      quantityStr,
		}).Debug("Quantity coercion failed")
		record.CoercionErr = err
		return record
	}
	record.Quantity = quantity

	unitPrice, err := CoerceUnitPrice(unitPriceStr)
	if err != nil {
		p.logger.WithError(err).WithFields(logger.Fields{
			"line_index": lineIndex,
			"field":      FieldUnitPrice,
			"value":      unitPriceStr,
		}).Debug("Unit price coercion failed")
		record.CoercionErr = err
		return record
	}
	record.UnitPrice = unitPrice

	return record
}

// fieldAt returns the trimmed value at the schema position of name, or the
// empty string when the line has fewer fields than the schema. Fields beyond
// the schema width are never consulted.
func (p *RecordParser) fieldAt(fields []string, name string) string {
	index := p.config.FieldIndex(name)
	if index < 0 || index >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[index])
}

// CleanCommas removes thousands-separator commas unconditionally. Applied to
// numeric fields before coercion and to product names ("Wireless, Mouse"
// becomes "Wireless Mouse" after whitespace normalization).
func CleanCommas(s string) string {
	cleaned := strings.ReplaceAll(s, ",", "")
	// A comma followed by a space leaves doubled spaces in names.
	return strings.Join(strings.Fields(cleaned), " ")
}

// CoerceQuantity coerces a cleaned string to an integer quantity
func CoerceQuantity(s string) (int, error) {
	return strconv.Atoi(s)
}

// CoerceUnitPrice coerces a cleaned string to a decimal unit price
func CoerceUnitPrice(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}
