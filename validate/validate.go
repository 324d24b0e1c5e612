// Package validate drops structurally invalid transactions and applies the
// optional user filters.
package validate

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"babylon/salesanalytics/model"
)

// Result is the outcome of ValidateAndFilter.
type Result struct {
	Transactions []model.Transaction
	InvalidCount int
	Summary      Summary
}

// ValidateAndFilter validates every transaction, then narrows the valid set by
// region, minimum amount and maximum amount, in that order. An empty result is
// not an error.
func ValidateAndFilter(transactions []model.Transaction, criteria model.FilterCriteria) Result {
	valid, invalidCount := Validate(transactions)

	filtered := valid
	removedByRegion := 0
	if criteria.Region != "" {
		before := len(filtered)
		filtered = keep(filtered, func(t model.Transaction) bool {
			return strings.EqualFold(t.Region, criteria.Region)
		})
		removedByRegion = before - len(filtered)
	}

	beforeAmount := len(filtered)
	if criteria.MinAmount != nil {
		minAmount := *criteria.MinAmount
		filtered = keep(filtered, func(t model.Transaction) bool {
			return t.Amount().GreaterThanOrEqual(minAmount)
		})
	}
	if criteria.MaxAmount != nil {
		maxAmount := *criteria.MaxAmount
		filtered = keep(filtered, func(t model.Transaction) bool {
			return t.Amount().LessThanOrEqual(maxAmount)
		})
	}

	return Result{
		Transactions: filtered,
		InvalidCount: invalidCount,
		Summary: Summary{
			TotalInput:      len(transactions),
			InvalidCount:    invalidCount,
			RemovedByRegion: removedByRegion,
			RemovedByAmount: beforeAmount - len(filtered),
			FinalCount:      len(filtered),
		},
	}
}

// Validate splits off records that break the structural rules and returns the
// valid ones with the number dropped.
func Validate(transactions []model.Transaction) ([]model.Transaction, int) {
	valid := make([]model.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if t.IsValid() {
			valid = append(valid, t)
		}
	}

	return valid, len(transactions) - len(valid)
}

// Options describes the values a user can filter on.
type Options struct {
	Regions   []string
	MinAmount decimal.Decimal
	MaxAmount decimal.Decimal
	HasData   bool
}

// DiscoverOptions lists the distinct regions (sorted) and the amount range of
// the valid transactions.
func DiscoverOptions(transactions []model.Transaction) Options {
	valid, _ := Validate(transactions)

	seen := make(map[string]struct{})
	var opts Options
	for i, t := range valid {
		if _, ok := seen[t.Region]; !ok {
			seen[t.Region] = struct{}{}
			opts.Regions = append(opts.Regions, t.Region)
		}

		amount := t.Amount()
		if i == 0 || amount.LessThan(opts.MinAmount) {
			opts.MinAmount = amount
		}
		if i == 0 || amount.GreaterThan(opts.MaxAmount) {
			opts.MaxAmount = amount
		}
	}
	sort.Strings(opts.Regions)
	opts.HasData = len(valid) > 0

	return opts
}

func keep(transactions []model.Transaction, pred func(model.Transaction) bool) []model.Transaction {
	out := make([]model.Transaction, 0, len(transactions))
	for _, t := range transactions {
		if pred(t) {
			out = append(out, t)
		}
	}

	return out
}
