// Package parser turns raw pipe-delimited sales lines into typed transactions.
package parser

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"babylon/salesanalytics/model"
)

const (
	// Delimiter separates the fields of a sales line.
	Delimiter = "|"
	// FieldCount is the number of fields a source line must have.
	FieldCount = 8
)

// ParseTransactions parses each line into a Transaction. Lines with the wrong
// number of fields, or whose quantity or price do not convert, are dropped
// without being reported. Input order is preserved.
func ParseTransactions(lines []string) []model.Transaction {
	transactions := make([]model.Transaction, 0, len(lines))

	for _, line := range lines {
		txn, ok := ParseLine(line)
		if !ok {
			continue
		}
		transactions = append(transactions, txn)
	}

	return transactions
}

// ParseLine parses a single line. The boolean is false for malformed lines.
func ParseLine(line string) (model.Transaction, bool) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != FieldCount {
		return model.Transaction{}, false
	}

	quantity, err := strconv.Atoi(cleanNumber(fields[4]))
	if err != nil {
		return model.Transaction{}, false
	}

	unitPrice, err := decimal.NewFromString(cleanNumber(fields[5]))
	if err != nil {
		return model.Transaction{}, false
	}

	return model.Transaction{
		TransactionID: strings.TrimSpace(fields[0]),
		Date:          strings.TrimSpace(fields[1]),
		ProductID:     strings.TrimSpace(fields[2]),
		ProductName:   strings.TrimSpace(strings.ReplaceAll(fields[3], ",", "")),
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		CustomerID:    strings.TrimSpace(fields[6]),
		Region:        strings.TrimSpace(fields[7]),
	}, true
}

// cleanNumber strips thousands separators and surrounding whitespace.
func cleanNumber(s string) string {
	return strings.TrimSpace(strings.ReplaceAll(s, ",", ""))
}
