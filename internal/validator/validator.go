// Package validator applies the business acceptance rules to parsed sales
// records and supports optional post-hoc filtering of the accepted set.
//
// Rules are an ordered list of predicate/reason pairs evaluated in fixed
// order, short-circuiting at the first failure, so the reported reason for a
// multiply-invalid record is deterministic. Per-record defects never
// propagate as errors; they become rejections with an attached reason.
package validator

import (
	"strings"

	"golang-sales-analytics-service/internal/models"
	"golang-sales-analytics-service/pkg/logger"
)

// Rejection pairs a rejected record with the first rule it failed.
type Rejection struct {
	Record *models.ParsedRecord   `json:"record"`
	Reason models.RejectionReason `json:"reason"`
}

// rule is one predicate/reason pair. failed reports whether the record
// violates the rule.
type rule struct {
	reason models.RejectionReason
	failed func(*models.ParsedRecord) bool
}

// acceptanceRules is the authoritative rule order. The first failing rule
// determines the reported rejection reason.
var acceptanceRules = []rule{
	{
		reason: models.ReasonTypeCoercionFailure,
		failed: func(r *models.ParsedRecord) bool { return r.HasCoercionFailure() },
	},
	{
		reason: models.ReasonMissingRequiredField,
		failed: func(r *models.ParsedRecord) bool {
			return strings.TrimSpace(r.CustomerID) == "" || strings.TrimSpace(r.Region) == ""
		},
	},
	{
		reason: models.ReasonNonPositiveQuantity,
		failed: func(r *models.ParsedRecord) bool { return r.Quantity <= 0 },
	},
	{
		reason: models.ReasonNonPositiveUnitPrice,
		failed: func(r *models.ParsedRecord) bool { return !r.UnitPrice.IsPositive() },
	},
	{
		reason: models.ReasonInvalidTransactionIDPrefix,
		failed: func(r *models.ParsedRecord) bool { return !strings.HasPrefix(r.TransactionID, "T") },
	},
	{
		reason: models.ReasonInvalidProductIDPrefix,
		failed: func(r *models.ParsedRecord) bool { return !strings.HasPrefix(r.ProductID, "P") },
	},
	{
		reason: models.ReasonInvalidCustomerIDPrefix,
		failed: func(r *models.ParsedRecord) bool { return !strings.HasPrefix(r.CustomerID, "C") },
	},
}

// Validator partitions parsed records into accepted transactions and
// rejections
type Validator struct {
	logger logger.Logger
}

// NewValidator creates a Validator
func NewValidator() *Validator {
	return &Validator{
		logger: logger.GetGlobalLogger().WithComponent("validator"),
	}
}

// Validate evaluates every record against the acceptance rules. Accepted
// records become immutable Transactions in input order; rejected records
// carry the first failing rule's reason. No error escapes a well-formed
// call.
func (v *Validator) Validate(records []*models.ParsedRecord) ([]*models.Transaction, []Rejection) {
	accepted := make([]*models.Transaction, 0, len(records))
	var rejected []Rejection

	for _, record := range records {
		if reason, ok := firstFailure(record); ok {
			v.logger.WithFields(logger.Fields{
				"line_index":     record.LineIndex,
				"transaction_id": record.TransactionID,
				"reason":         reason.String(),
			}).Debug("Record rejected")

			rejected = append(rejected, Rejection{Record: record, Reason: reason})
			continue
		}

		accepted = append(accepted, models.NewTransaction(record))
	}

	v.logger.WithFields(logger.Fields{
		"input":    len(records),
		"accepted": len(accepted),
		"rejected": len(rejected),
	}).Info("Validation completed")

	return accepted, rejected
}

// firstFailure returns the reason of the first failing rule, if any
func firstFailure(record *models.ParsedRecord) (models.RejectionReason, bool) {
	for _, r := range acceptanceRules {
		if r.failed(record) {
			return r.reason, true
		}
	}
	return "", false
}

// SummarizeRejections counts rejections by reason
func SummarizeRejections(rejected []Rejection) map[models.RejectionReason]int {
	counts := make(map[models.RejectionReason]int)
	for _, r := range rejected {
		counts[r.Reason]++
	}
	return counts
}
