// Package models defines the data types flowing through the sales analytics
// pipeline: parsed-but-unvalidated records, accepted transactions, rejection
// reasons, and enriched output records.
//
// A Transaction is constructed once from a ParsedRecord by the validator and
// is never mutated afterwards. Monetary values are decimal.Decimal, never
// float64.
package models

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// RejectionReason identifies the business rule a record failed.
type RejectionReason string

const (
	ReasonTypeCoercionFailure        RejectionReason = "type_coercion_failure"
	ReasonMissingRequiredField       RejectionReason = "missing_required_field"
	ReasonNonPositiveQuantity        RejectionReason = "non_positive_quantity"
	ReasonNonPositiveUnitPrice       RejectionReason = "non_positive_unit_price"
	ReasonInvalidTransactionIDPrefix RejectionReason = "invalid_transaction_id_prefix"
	ReasonInvalidProductIDPrefix     RejectionReason = "invalid_product_id_prefix"
	ReasonInvalidCustomerIDPrefix    RejectionReason = "invalid_customer_id_prefix"
)

// String returns the string representation of RejectionReason
func (r RejectionReason) String() string {
	return string(r)
}

// IsValid checks if the rejection reason is a known value
func (r RejectionReason) IsValid() bool {
	switch r {
	case ReasonTypeCoercionFailure, ReasonMissingRequiredField,
		ReasonNonPositiveQuantity, ReasonNonPositiveUnitPrice,
		ReasonInvalidTransactionIDPrefix, ReasonInvalidProductIDPrefix,
		ReasonInvalidCustomerIDPrefix:
		return true
	default:
		return false
	}
}

// ParsedRecord is the schema-mapped, comma-cleaned, type-coerced-or-flagged
// representation of one input line, prior to rule validation. The parser
// never rejects: emptiness and coercion failure are recorded here and decided
// by the validator.
type ParsedRecord struct {
	LineIndex     int             `json:"lineIndex"`
	TransactionID string          `json:"transactionID"`
	Date          string          `json:"date"`
	ProductID     string          `json:"productID"`
	ProductName   string          `json:"productName"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	CustomerID    string          `json:"customerID"`
	Region        string          `json:"region"`

	// CoercionErr is set when Quantity or UnitPrice could not be coerced
	// after comma cleaning. Such a record is always invalid.
	CoercionErr error `json:"-"`
}

// HasCoercionFailure reports whether type coercion failed for this record
func (r *ParsedRecord) HasCoercionFailure() bool {
	return r.CoercionErr != nil
}

// String returns a string representation of the ParsedRecord
func (r *ParsedRecord) String() string {
	return fmt.Sprintf("ParsedRecord{Line: %d, ID: %s, Product: %s, Qty: %d, Price: %s}",
		r.LineIndex, r.TransactionID, r.ProductID, r.Quantity, r.UnitPrice.String())
}

// Transaction represents an accepted, fully-typed sales record.
type Transaction struct {
	TransactionID string          `json:"transactionID"`
	Date          string          `json:"date"`
	ProductID     string          `json:"productID"`
	ProductName   string          `json:"productName"`
	Quantity      int             `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	CustomerID    string          `json:"customerID"`
	Region        string          `json:"region"`
}

// NewTransaction creates a Transaction from a validated ParsedRecord
func NewTransaction(r *ParsedRecord) *Transaction {
	return &Transaction{
		TransactionID: r.TransactionID,
		Date:          r.Date,
		ProductID:     r.ProductID,
		ProductName:   r.ProductName,
		Quantity:      r.Quantity,
		UnitPrice:     r.UnitPrice,
		CustomerID:    r.CustomerID,
		Region:        r.Region,
	}
}

// LineTotal returns Quantity * UnitPrice, the basic revenue unit consumed by
// all aggregations. Computed on demand, never stored.
func (t *Transaction) LineTotal() decimal.Decimal {
	return t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
}

// Validate performs the base acceptance checks on an already-typed
// Transaction. Validating an accepted Transaction a second time always
// succeeds.
func (t *Transaction) Validate() error {
	if strings.TrimSpace(t.CustomerID) == "" {
		return fmt.Errorf("customer ID cannot be empty")
	}
	if strings.TrimSpace(t.Region) == "" {
		return fmt.Errorf("region cannot be empty")
	}
	if t.Quantity <= 0 {
		return fmt.Errorf("quantity must be positive, got %d", t.Quantity)
	}
	if !t.UnitPrice.IsPositive() {
		return fmt.Errorf("unit price must be positive, got %s", t.UnitPrice.String())
	}
	if !strings.HasPrefix(t.TransactionID, "T") {
		return fmt.Errorf("transaction ID must start with 'T': %s", t.TransactionID)
	}
	if !strings.HasPrefix(t.ProductID, "P") {
		return fmt.Errorf("product ID must start with 'P': %s", t.ProductID)
	}
	if !strings.HasPrefix(t.CustomerID, "C") {
		return fmt.Errorf("customer ID must start with 'C': %s", t.CustomerID)
	}
	return nil
}

// String returns a string representation of the Transaction
func (t *Transaction) String() string {
	return fmt.Sprintf("Transaction{ID: %s, Date: %s, Product: %s, Qty: %d, Price: %s, Customer: %s, Region: %s}",
		t.TransactionID, t.Date, t.ProductID, t.Quantity, t.UnitPrice.String(), t.CustomerID, t.Region)
}

// MarshalJSON implements custom JSON marshaling for Transaction
func (t *Transaction) MarshalJSON() ([]byte, error) {
	type Alias Transaction
	return json.Marshal(&struct {
		UnitPrice string `json:"unitPrice"`
		LineTotal string `json:"lineTotal"`
		*Alias
	}{
		UnitPrice: t.UnitPrice.String(),
		LineTotal: t.LineTotal().String(),
		Alias:     (*Alias)(t),
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Transaction
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type Alias Transaction
	aux := &struct {
		UnitPrice string `json:"unitPrice"`
		*Alias
	}{
		Alias: (*Alias)(t),
	}

	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	var err error
	t.UnitPrice, err = decimal.NewFromString(aux.UnitPrice)
	if err != nil {
		return fmt.Errorf("invalid unit price format: %w", err)
	}

	return nil
}

// Equals compares two Transaction instances for equality
func (t *Transaction) Equals(other *Transaction) bool {
	if other == nil {
		return false
	}

	return t.TransactionID == other.TransactionID &&
		t.Date == other.Date &&
		t.ProductID == other.ProductID &&
		t.ProductName == other.ProductName &&
		t.Quantity == other.Quantity &&
		t.UnitPrice.Equal(other.UnitPrice) &&
		t.CustomerID == other.CustomerID &&
		t.Region == other.Region
}

// EnrichedTransaction is a Transaction with product catalog fields appended.
// The embedded Transaction is never mutated; enrichment only adds fields.
type EnrichedTransaction struct {
	Transaction
	APICategory string  `json:"apiCategory"`
	APIBrand    string  `json:"apiBrand"`
	APIRating   float64 `json:"apiRating"`
	APIMatch    bool    `json:"apiMatch"`
}

// KnownRegions is the region set offered for filtering. It is deliberately
// NOT enforced during base validation: a transaction with an unknown region
// is still accepted.
var KnownRegions = []string{"North", "South", "East", "West"}

// IsKnownRegion reports whether region is in the known filter set
func IsKnownRegion(region string) bool {
	for _, r := range KnownRegions {
		if r == region {
			return true
		}
	}
	return false
}
