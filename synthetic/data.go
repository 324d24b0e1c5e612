package synthetic

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"babylon/salesanalytics/parser"
	"babylon/salesanalytics/storage"
)

// FileName is the name of the generated sales file.
const FileName = "sales_data.txt"

// Product is a product the generator sells.
type Product struct {
	ID    string
	Name  string
	Price decimal.Decimal
}

// Products ids below 100 exist in the public catalog, the rest do not.
var Products = []Product{
	{ID: "P1", Name: "Essence Mascara", Price: decimal.RequireFromString("9.99")},
	{ID: "P6", Name: "Calvin Klein CK One", Price: decimal.RequireFromString("49.99")},
	{ID: "P11", Name: "Annibale Colombo Bed", Price: decimal.RequireFromString("1899.99")},
	{ID: "P16", Name: "Apple", Price: decimal.RequireFromString("1.99")},
	{ID: "P78", Name: "Apple MacBook Pro 14", Price: decimal.RequireFromString("1999.99")},
	{ID: "P101", Name: "Laptop Sleeve, Grey", Price: decimal.RequireFromString("25.50")},
	{ID: "P102", Name: "USB Cable", Price: decimal.RequireFromString("4.75")},
	{ID: "P103", Name: "Office Chair", Price: decimal.RequireFromString("1250.00")},
}

// Regions are the regions the generator assigns.
var Regions = []string{"North", "South", "East", "West"}

var startDate = time.Date(2024, time.December, 1, 0, 0, 0, 0, time.UTC)

// Row is a single generated sales record.
type Row struct {
	TransactionID string
	Date          string
	Product       Product
	Quantity      int
	CustomerID    string
	Region        string
}

// Fields renders the row in source file order. Quantities of a thousand or
// more carry a thousands separator, as exported spreadsheets do.
func (r Row) Fields() []string {
	qty := strconv.Itoa(r.Quantity)
	if r.Quantity >= 1000 {
		qty = fmt.Sprintf("%d,%03d", r.Quantity/1000, r.Quantity%1000)
	}

	return []string{
		r.TransactionID,
		r.Date,
		r.Product.ID,
		r.Product.Name,
		qty,
		r.Product.Price.StringFixed(2),
		r.CustomerID,
		r.Region,
	}
}

// GenerateSyntheticData writes a pipe-delimited sales file with rows valid
// records to dir and returns its path. The file also holds a header, a blank
// line, one malformed line and one invalid record. The same seed produces the
// same file.
func GenerateSyntheticData(rows int, dir string, seed int64) (string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return "", fmt.Errorf("failed to create directory '%s': %w", dir, err)
		}
	}

	rng := rand.New(rand.NewSource(seed))

	lines := []string{strings.Join(storage.EnrichedHeader[:parser.FieldCount], parser.Delimiter), ""}
	for i := 0; i < rows; i++ {
		lines = append(lines, strings.Join(randomRow(rng, i).Fields(), parser.Delimiter))

		if i == rows/3 {
			lines = append(lines, fmt.Sprintf("T%03d|2024-12-01|P1|Truncated|1|9.99|C001", rows+1))
		}
		if i == rows/2 {
			lines = append(lines, fmt.Sprintf("T%03d|2024-12-02|P16|Apple|-2|1.99|C002|North", rows+2))
		}
	}

	filePath := filepath.Join(dir, FileName)
	if err := os.WriteFile(filePath, []byte(strings.Join(lines, "\n")+"\n"), 0o644); err != nil {
		return "", fmt.Errorf("failed to create file '%s': %w", filePath, err)
	}

	return filePath, nil
}

func randomRow(rng *rand.Rand, i int) Row {
	qty := 1 + rng.Intn(10)
	if rng.Intn(20) == 0 {
		qty = 1000 + rng.Intn(500)
	}

	return Row{
		TransactionID: fmt.Sprintf("T%03d", i+1),
		Date:          startDate.AddDate(0, 0, rng.Intn(30)).Format("2006-01-02"),
		Product:       Products[rng.Intn(len(Products))],
		Quantity:      qty,
		CustomerID:    fmt.Sprintf("C%03d", 1+rng.Intn(25)),
		Region:        Regions[rng.Intn(len(Regions))],
	}
}
