package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"babylon/salesanalytics/aggregate"
	"babylon/salesanalytics/appcontext"
	"babylon/salesanalytics/catalog"
	"babylon/salesanalytics/model"
	"babylon/salesanalytics/validate"
)

// Workbook sheet names.
const (
	SummarySheet   = "Summary"
	RegionsSheet   = "Regions"
	ProductsSheet  = "Products"
	CustomersSheet = "Customers"
	DailySheet     = "Daily"
	EnrichedSheet  = "Enriched"
)

// WorkbookData is everything exported to the workbook.
type WorkbookData struct {
	RunID      string
	Validation validate.Summary
	Aggregates *aggregate.Summary
	Enrichment catalog.Stats
	Enriched   []model.EnrichedTransaction
}

// WorkbookWriter exports a run to an xlsx workbook.
type WorkbookWriter struct {
	path string
}

// NewWorkbookWriter creates a WorkbookWriter writing to path.
func NewWorkbookWriter(path string) *WorkbookWriter {
	return &WorkbookWriter{path: path}
}

// Write builds the workbook and saves it, replacing any existing file.
func (w *WorkbookWriter) Write(ctx context.Context, data WorkbookData) error {
	f := excelize.NewFile()
	defer f.Close()

	sheets := []struct {
		name string
		rows [][]any
	}{
		{SummarySheet, summaryRows(data)},
		{RegionsSheet, regionRows(data.Aggregates)},
		{ProductsSheet, productRows(data.Aggregates)},
		{CustomersSheet, customerRows(data.Aggregates)},
		{DailySheet, dailyRows(data.Aggregates)},
		{EnrichedSheet, enrichedRows(data.Enriched)},
	}

	for i, sheet := range sheets {
		if i == 0 {
			if err := f.SetSheetName(f.GetSheetName(0), sheet.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(sheet.name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", sheet.name, err)
		}

		if err := setRows(f, sheet.name, sheet.rows); err != nil {
			return err
		}
	}

	if dir := filepath.Dir(w.path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	if err := f.SaveAs(w.path); err != nil {
		return fmt.Errorf("failed to save workbook %s: %w", w.path, err)
	}

	appcontext.LoggerFromContext(ctx).InfoContext(ctx, "Workbook saved", "path", w.path)

	return nil
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("failed to resolve cell for row %d: %w", i+1, err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of sheet %s: %w", i+1, sheet, err)
		}
	}

	return nil
}

func money(d decimal.Decimal) string {
	return d.StringFixed(aggregate.MoneyPlaces)
}

func summaryRows(data WorkbookData) [][]any {
	rows := [][]any{
		{"Metric", "Value"},
		{"Run ID", data.RunID},
		{"Total Input", data.Validation.TotalInput},
		{"Invalid", data.Validation.InvalidCount},
		{"Filtered By Region", data.Validation.RemovedByRegion},
		{"Filtered By Amount", data.Validation.RemovedByAmount},
		{"Final Count", data.Validation.FinalCount},
		{"Enriched", data.Enrichment.Matched},
		{"Enrichment Rate", data.Enrichment.Percentage.StringFixed(2)},
	}
	if data.Aggregates != nil {
		rows = append(rows, []any{"Total Revenue", money(data.Aggregates.TotalRevenue)})
		if p := data.Aggregates.PeakDay; p != nil {
			rows = append(rows, []any{"Peak Day", p.Date}, []any{"Peak Day Revenue", money(p.Revenue)})
		}
	}

	return rows
}

func regionRows(s *aggregate.Summary) [][]any {
	rows := [][]any{{"Region", "Sales", "Percentage", "Transactions", "Average"}}
	if s == nil {
		return rows
	}
	for _, r := range s.Regions {
		rows = append(rows, []any{r.Region, money(r.TotalSales), r.Percentage.StringFixed(2), r.TransactionCount, money(r.AverageTransactionValue)})
	}

	return rows
}

func productRows(s *aggregate.Summary) [][]any {
	rows := [][]any{{"Product", "Quantity", "Revenue", "Low Performer"}}
	if s == nil {
		return rows
	}
	low := make(map[string]bool, len(s.LowPerformers))
	for _, p := range s.LowPerformers {
		low[p.Name] = true
	}
	for _, p := range s.TopProducts {
		rows = append(rows, []any{p.Name, p.TotalQuantity, money(p.TotalRevenue), low[p.Name]})
	}

	return rows
}

func customerRows(s *aggregate.Summary) [][]any {
	rows := [][]any{{"Customer", "Total Spent", "Purchases", "Average Order", "Products"}}
	if s == nil {
		return rows
	}
	for _, c := range s.Customers {
		rows = append(rows, []any{c.CustomerID, money(c.TotalSpent), c.PurchaseCount, money(c.AverageOrderValue), len(c.ProductsBought)})
	}

	return rows
}

func dailyRows(s *aggregate.Summary) [][]any {
	rows := [][]any{{"Date", "Revenue", "Transactions", "Unique Customers"}}
	if s == nil {
		return rows
	}
	for _, d := range s.Daily {
		rows = append(rows, []any{d.Date, money(d.Revenue), d.TransactionCount, d.UniqueCustomers})
	}

	return rows
}

func enrichedRows(transactions []model.EnrichedTransaction) [][]any {
	header := make([]any, len(EnrichedHeader))
	for i, h := range EnrichedHeader {
		header[i] = h
	}

	rows := [][]any{header}
	for _, t := range transactions {
		row := []any{t.TransactionID, t.Date, t.ProductID, t.ProductName, t.Quantity, t.UnitPrice.String(), t.CustomerID, t.Region, "", "", "", t.APIMatch}
		if t.APICategory != nil {
			row[8] = *t.APICategory
		}
		if t.APIBrand != nil {
			row[9] = *t.APIBrand
		}
		if t.APIRating != nil {
			row[10] = *t.APIRating
		}
		rows = append(rows, row)
	}

	return rows
}
