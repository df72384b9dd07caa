package validator

import (
	"fmt"

	"golang-sales-analytics-service/internal/models"
	"golang-sales-analytics-service/pkg/errors"

	"github.com/shopspring/decimal"
)

// FilterCriteria describes the optional post-hoc filter over the accepted
// set. Omitted criteria (empty region, nil bounds) impose no constraint.
// Filtering never resurrects rejected records and never changes rejection
// counts.
type FilterCriteria struct {
	// Region keeps only transactions with an exact region match.
	Region string `json:"region,omitempty"`

	// MinAmount and MaxAmount bound the line total, inclusive on both ends.
	MinAmount *decimal.Decimal `json:"min_amount,omitempty"`
	MaxAmount *decimal.Decimal `json:"max_amount,omitempty"`
}

// IsEmpty reports whether no criteria are supplied
func (c *FilterCriteria) IsEmpty() bool {
	return c.Region == "" && c.MinAmount == nil && c.MaxAmount == nil
}

// Validate rejects inconsistent criteria before any filtering executes, so
// no partial filtering can occur.
func (c *FilterCriteria) Validate() error {
	if c.MinAmount != nil && c.MinAmount.IsNegative() {
		return errors.ValidationError(
			errors.CodeOutOfRange,
			"min_amount",
			c.MinAmount.String(),
			nil,
		).WithSuggestion("Use a non-negative minimum amount")
	}
	if c.MaxAmount != nil && c.MaxAmount.IsNegative() {
		return errors.ValidationError(
			errors.CodeOutOfRange,
			"max_amount",
			c.MaxAmount.String(),
			nil,
		).WithSuggestion("Use a non-negative maximum amount")
	}
	if c.MinAmount != nil && c.MaxAmount != nil && c.MinAmount.GreaterThan(*c.MaxAmount) {
		return errors.ValidationError(
			errors.CodeInvalidFilterRange,
			"amount_range",
			fmt.Sprintf("[%s, %s]", c.MinAmount.String(), c.MaxAmount.String()),
			nil,
		)
	}
	return nil
}

// Apply filters the accepted transactions, retaining those satisfying all
// supplied criteria, in input order. The input slice is not modified.
func (c *FilterCriteria) Apply(transactions []*models.Transaction) ([]*models.Transaction, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}

	if c.IsEmpty() {
		result := make([]*models.Transaction, len(transactions))
		copy(result, transactions)
		return result, nil
	}

	result := make([]*models.Transaction, 0, len(transactions))
	for _, tx := range transactions {
		if c.matches(tx) {
			result = append(result, tx)
		}
	}
	return result, nil
}

func (c *FilterCriteria) matches(tx *models.Transaction) bool {
	if c.Region != "" && tx.Region != c.Region {
		return false
	}

	total := tx.LineTotal()
	if c.MinAmount != nil && total.LessThan(*c.MinAmount) {
		return false
	}
	if c.MaxAmount != nil && total.GreaterThan(*c.MaxAmount) {
		return false
	}
	return true
}
