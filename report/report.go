// Package report renders the fixed-layout text sales report.
package report

import (
	"fmt"
	"math/big"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"

	"babylon/salesanalytics/aggregate"
	"babylon/salesanalytics/catalog"
	"babylon/salesanalytics/model"
)

const (
	// Width is the width of separators and centered lines.
	Width = 60
	// DefaultCurrencySymbol prefixes every monetary value.
	DefaultCurrencySymbol = "₹"
	// LowThreshold is the quantity below which a product is reported as low performing.
	LowThreshold = 5
	// TopN is the number of rows in the product and customer tables.
	TopN = 5
	// MaxUnmatchedListed is the number of unmatched product names listed before the overflow line.
	MaxUnmatchedListed = 5

	productNameWidth = 23
	timestampLayout  = "2006-01-02 15:04:05"
)

// Options tunes Render.
type Options struct {
	GeneratedAt    time.Time
	CurrencySymbol string
}

func (o Options) withDefaults() Options {
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = time.Now()
	}
	if o.CurrencySymbol == "" {
		o.CurrencySymbol = DefaultCurrencySymbol
	}

	return o
}

// FormatCurrency renders amount with the symbol, thousands grouping and two decimals.
func FormatCurrency(symbol string, amount decimal.Decimal) string {
	whole, frac, _ := strings.Cut(amount.StringFixed(aggregate.MoneyPlaces), ".")
	sign := ""
	if strings.HasPrefix(whole, "-") {
		sign, whole = "-", whole[1:]
	}
	n, _ := new(big.Int).SetString(whole, 10)

	return symbol + sign + humanize.BigComma(n) + "." + frac
}

// Render builds the report over the valid transactions and their enriched copies.
// The lines are joined with "\n" and there is no trailing newline.
func Render(valid []model.Transaction, enriched []model.EnrichedTransaction, opts Options) string {
	opts = opts.withDefaults()
	r := &renderer{opts: opts}

	r.header(len(valid))
	r.overall(valid)
	regions := aggregate.RegionWiseSales(valid)
	r.regions(regions)
	r.products(valid)
	r.customers(valid)
	r.daily(valid)
	r.performance(valid, regions)
	r.enrichment(enriched)

	return strings.Join(r.lines, "\n")
}

type renderer struct {
	opts  Options
	lines []string
}

func (r *renderer) add(format string, args ...any) {
	r.lines = append(r.lines, fmt.Sprintf(format, args...))
}

func (r *renderer) currency(amount decimal.Decimal) string {
	return FormatCurrency(r.opts.CurrencySymbol, amount)
}

func (r *renderer) section(title string) {
	r.lines = append(r.lines, title, strings.Repeat("-", Width))
}

func (r *renderer) tableHeader(format string, args ...any) {
	r.add(format, args...)
	r.lines = append(r.lines, strings.Repeat("-", Width))
}

func (r *renderer) header(records int) {
	rule := strings.Repeat("=", Width)
	r.lines = append(r.lines,
		rule,
		center("SALES ANALYTICS REPORT", Width),
		center("Generated: "+r.opts.GeneratedAt.Format(timestampLayout), Width),
		center(fmt.Sprintf("Records Processed: %d", records), Width),
		rule,
		"",
	)
}

func (r *renderer) overall(valid []model.Transaction) {
	total := aggregate.TotalRevenue(valid)
	average := decimal.Zero
	if len(valid) > 0 {
		average = total.Div(decimal.NewFromInt(int64(len(valid))))
	}

	r.section("OVERALL SUMMARY")
	r.add("%-25s %s", "Total Revenue:", r.currency(total))
	r.add("%-25s %d", "Total Transactions:", len(valid))
	r.add("%-25s %s", "Average Order Value:", r.currency(average))
	r.add("%-25s %s", "Date Range:", dateRange(valid))
	r.lines = append(r.lines, "")
}

func (r *renderer) regions(regions []aggregate.RegionStats) {
	r.section("REGION-WISE PERFORMANCE")
	r.tableHeader("%-15s %-15s %-12s %-12s", "Region", "Sales", "% of Total", "Transactions")
	for _, rs := range regions {
		r.add("%-15s %-15s %9s%% %12d",
			rs.Region, r.currency(rs.TotalSales), rs.Percentage.StringFixed(2), rs.TransactionCount)
	}
	r.lines = append(r.lines, "")
}

func (r *renderer) products(valid []model.Transaction) {
	r.section(fmt.Sprintf("TOP %d PRODUCTS", TopN))
	r.tableHeader("%-6s %-25s %-10s %-15s", "Rank", "Product Name", "Qty Sold", "Revenue")
	for i, p := range aggregate.TopProducts(valid, TopN) {
		r.add("%-6d %-25s %-10d %-15s",
			i+1, truncate(p.Name, productNameWidth), p.TotalQuantity, r.currency(p.TotalRevenue))
	}
	r.lines = append(r.lines, "")
}

func (r *renderer) customers(valid []model.Transaction) {
	customers := aggregate.CustomerAnalysis(valid)
	if len(customers) > TopN {
		customers = customers[:TopN]
	}

	r.section(fmt.Sprintf("TOP %d CUSTOMERS", TopN))
	r.tableHeader("%-6s %-15s %-15s %-10s", "Rank", "Customer ID", "Total Spent", "Orders")
	for i, c := range customers {
		r.add("%-6d %-15s %-15s %-10d", i+1, c.CustomerID, r.currency(c.TotalSpent), c.PurchaseCount)
	}
	r.lines = append(r.lines, "")
}

func (r *renderer) daily(valid []model.Transaction) {
	r.section("DAILY SALES TREND")
	r.tableHeader("%-15s %-15s %-10s %-12s", "Date", "Revenue", "Txns", "Unique Cust")
	for _, d := range aggregate.DailySalesTrend(valid) {
		r.add("%-15s %-15s %-10d %-12d", d.Date, r.currency(d.Revenue), d.TransactionCount, d.UniqueCustomers)
	}
	r.lines = append(r.lines, "")
}

func (r *renderer) performance(valid []model.Transaction, regions []aggregate.RegionStats) {
	r.section("PRODUCT PERFORMANCE ANALYSIS")

	day, revenue := "N/A", decimal.Zero
	if peak, ok := aggregate.PeakSalesDay(valid); ok {
		day, revenue = peak.Date, peak.Revenue
	}
	r.add("Best Selling Day: %s (Revenue: %s)", day, r.currency(revenue))

	var low []string
	for _, p := range aggregate.LowPerformers(valid, LowThreshold) {
		low = append(low, p.Name)
	}
	lowList := "None"
	if len(low) > 0 {
		lowList = strings.Join(low, ", ")
	}
	r.add("Low Performing Products (<%d sold): %s", LowThreshold, lowList)

	r.lines = append(r.lines, "Average Transaction Value per Region:")
	for _, rs := range regions {
		r.add("  - %s: %s", rs.Region, r.currency(rs.AverageTransactionValue))
	}
	r.lines = append(r.lines, "")
}

func (r *renderer) enrichment(enriched []model.EnrichedTransaction) {
	stats := catalog.Summarize(enriched)

	r.section("API ENRICHMENT SUMMARY")
	r.add("Total Products Enriched: %d", stats.Matched)
	r.add("Success Rate: %s%%", stats.Percentage.StringFixed(2))

	unmatched := catalog.UnmatchedProducts(enriched)
	if len(unmatched) == 0 {
		r.lines = append(r.lines, "All products successfully enriched!")
	} else {
		r.lines = append(r.lines, "Products Not Found in API:")
		for i, name := range unmatched {
			if i == MaxUnmatchedListed {
				r.add("  ...and %d more.", len(unmatched)-MaxUnmatchedListed)
				break
			}
			r.add("  - %s", name)
		}
	}

	r.lines = append(r.lines, strings.Repeat("=", Width))
}

func dateRange(valid []model.Transaction) string {
	if len(valid) == 0 {
		return "N/A"
	}

	first, last := valid[0].Date, valid[0].Date
	for _, t := range valid[1:] {
		if t.Date < first {
			first = t.Date
		}
		if t.Date > last {
			last = t.Date
		}
	}

	return first + " to " + last
}

// center pads s to width, putting the odd space on the right.
func center(s string, width int) string {
	n := utf8.RuneCountInString(s)
	if n >= width {
		return s
	}
	left := (width - n) / 2

	return strings.Repeat(" ", left) + s + strings.Repeat(" ", width-n-left)
}

func truncate(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}

	return string([]rune(s)[:max])
}
