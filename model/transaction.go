package model

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Transaction represents a single parsed line of the sales file.
type Transaction struct {
	TransactionID string
	Date          string // YYYY-MM-DD, sorts lexically
	ProductID     string
	ProductName   string
	Quantity      int
	UnitPrice     decimal.Decimal
	CustomerID    string
	Region        string
}

// Amount returns quantity * unit price.
func (t Transaction) Amount() decimal.Decimal {
	return t.UnitPrice.Mul(decimal.NewFromInt(int64(t.Quantity)))
}

// IsValid reports whether the record passes the structural validation rules.
func (t Transaction) IsValid() bool {
	return t.Quantity > 0 &&
		t.UnitPrice.IsPositive() &&
		strings.HasPrefix(t.TransactionID, "T") &&
		strings.HasPrefix(t.ProductID, "P") &&
		strings.HasPrefix(t.CustomerID, "C")
}

// EnrichedTransaction is a Transaction joined with catalog metadata.
// The catalog fields are nil when no catalog entry matched.
type EnrichedTransaction struct {
	Transaction

	APICategory *string
	APIBrand    *string
	APIRating   *float64
	APIMatch    bool
}

// CatalogEntry is one product of the remote catalog.
type CatalogEntry struct {
	ID       int
	Title    string
	Category string
	Brand    string
	Rating   float64
}

// FilterCriteria holds the optional user filters. Nil fields are not applied.
type FilterCriteria struct {
	Region    string
	MinAmount *decimal.Decimal
	MaxAmount *decimal.Decimal
}

// IsEmpty reports whether no filter is set.
func (c FilterCriteria) IsEmpty() bool {
	return c.Region == "" && c.MinAmount == nil && c.MaxAmount == nil
}
