package synthetic_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babylon/salesanalytics/model"
	"babylon/salesanalytics/parser"
	"babylon/salesanalytics/storage"
	"babylon/salesanalytics/synthetic"
	"babylon/salesanalytics/validate"
)

func TestGenerateSyntheticData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "synthetic")

	path, err := synthetic.GenerateSyntheticData(30, dir, 7)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, synthetic.FileName), path)

	lines, err := storage.ReadSalesData(context.Background(), path)
	require.NoError(t, err)
	require.Len(t, lines, 32)

	parsed := parser.ParseTransactions(lines)
	require.Len(t, parsed, 31, "the malformed line is dropped")

	result := validate.ValidateAndFilter(parsed, model.FilterCriteria{})
	assert.Equal(t, 1, result.InvalidCount)
	assert.Len(t, result.Transactions, 30)
}

func TestGenerateSyntheticData_Deterministic(t *testing.T) {
	first, err := synthetic.GenerateSyntheticData(50, filepath.Join(t.TempDir(), "a"), 42)
	require.NoError(t, err)
	second, err := synthetic.GenerateSyntheticData(50, filepath.Join(t.TempDir(), "b"), 42)
	require.NoError(t, err)

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, a, b, "the same seed produces the same file")
}

func TestRowFields_ThousandsSeparator(t *testing.T) {
	row := synthetic.Row{
		TransactionID: "T001",
		Date:          "2024-12-01",
		Product:       synthetic.Products[0],
		Quantity:      1250,
		CustomerID:    "C001",
		Region:        "North",
	}

	fields := row.Fields()
	require.Equal(t, "1,250", fields[4])

	txn, ok := parser.ParseLine(strings.Join(fields, parser.Delimiter))
	require.True(t, ok)
	assert.Equal(t, 1250, txn.Quantity)
}
