// Package aggregate computes descriptive statistics over a set of transactions.
// Every function is pure and returns zero values for an empty input.
package aggregate

import (
	"sort"

	"github.com/shopspring/decimal"

	"babylon/salesanalytics/model"
)

// MoneyPlaces is the number of decimal places monetary results are rounded to.
const MoneyPlaces = 2

// DefaultTopN is the default number of products returned by TopProducts.
const DefaultTopN = 5

// DefaultLowThreshold is the default quantity threshold for LowPerformers.
const DefaultLowThreshold = 10

var hundred = decimal.NewFromInt(100)

// RegionStats holds the sales of one region.
type RegionStats struct {
	Region           string
	TotalSales       decimal.Decimal
	TransactionCount int
	Percentage       decimal.Decimal
	// AverageTransactionValue is TotalSales / TransactionCount, rounded.
	AverageTransactionValue decimal.Decimal
}

// ProductStats holds the sales of one product, keyed by product name.
type ProductStats struct {
	Name          string
	TotalQuantity int
	TotalRevenue  decimal.Decimal
}

// CustomerStats holds the purchases of one customer.
type CustomerStats struct {
	CustomerID        string
	TotalSpent        decimal.Decimal
	PurchaseCount     int
	AverageOrderValue decimal.Decimal
	ProductsBought    []string // sorted
}

// DailyStats holds the sales of one date.
type DailyStats struct {
	Date             string
	Revenue          decimal.Decimal
	TransactionCount int
	UniqueCustomers  int
}

// PeakDay is the date with the highest revenue.
type PeakDay struct {
	Date             string
	Revenue          decimal.Decimal
	TransactionCount int
}

// TotalRevenue sums the amount of every transaction.
func TotalRevenue(transactions []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, t := range transactions {
		total = total.Add(t.Amount())
	}

	return total
}

// RegionWiseSales groups sales by region, ordered by total sales descending.
func RegionWiseSales(transactions []model.Transaction) []RegionStats {
	total := TotalRevenue(transactions)

	index := make(map[string]int)
	var stats []RegionStats
	for _, t := range transactions {
		i, ok := index[t.Region]
		if !ok {
			i = len(stats)
			index[t.Region] = i
			stats = append(stats, RegionStats{Region: t.Region, TotalSales: decimal.Zero})
		}
		stats[i].TotalSales = stats[i].TotalSales.Add(t.Amount())
		stats[i].TransactionCount++
	}

	for i := range stats {
		stats[i].Percentage = percentage(stats[i].TotalSales, total)
		stats[i].AverageTransactionValue = stats[i].TotalSales.
			Div(decimal.NewFromInt(int64(stats[i].TransactionCount))).
			Round(MoneyPlaces)
		stats[i].TotalSales = stats[i].TotalSales.Round(MoneyPlaces)
	}

	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].TotalSales.GreaterThan(stats[b].TotalSales)
	})

	return stats
}

// TopProducts returns the n products with the highest total quantity. Ties keep
// the order in which products were first seen.
func TopProducts(transactions []model.Transaction, n int) []ProductStats {
	stats := productTotals(transactions)

	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].TotalQuantity > stats[b].TotalQuantity
	})

	if n < 0 {
		n = 0
	}
	if len(stats) > n {
		stats = stats[:n]
	}

	return stats
}

// LowPerformers returns products whose total quantity is below threshold,
// ordered by quantity ascending.
func LowPerformers(transactions []model.Transaction, threshold int) []ProductStats {
	var low []ProductStats
	for _, p := range productTotals(transactions) {
		if p.TotalQuantity < threshold {
			low = append(low, p)
		}
	}

	sort.SliceStable(low, func(a, b int) bool {
		return low[a].TotalQuantity < low[b].TotalQuantity
	})

	return low
}

// CustomerAnalysis groups purchases by customer, ordered by total spent descending.
func CustomerAnalysis(transactions []model.Transaction) []CustomerStats {
	index := make(map[string]int)
	var stats []CustomerStats
	products := make([]map[string]struct{}, 0)

	for _, t := range transactions {
		i, ok := index[t.CustomerID]
		if !ok {
			i = len(stats)
			index[t.CustomerID] = i
			stats = append(stats, CustomerStats{CustomerID: t.CustomerID, TotalSpent: decimal.Zero})
			products = append(products, make(map[string]struct{}))
		}
		stats[i].TotalSpent = stats[i].TotalSpent.Add(t.Amount())
		stats[i].PurchaseCount++
		products[i][t.ProductName] = struct{}{}
	}

	for i := range stats {
		stats[i].AverageOrderValue = stats[i].TotalSpent.
			Div(decimal.NewFromInt(int64(stats[i].PurchaseCount))).
			Round(MoneyPlaces)
		stats[i].TotalSpent = stats[i].TotalSpent.Round(MoneyPlaces)
		stats[i].ProductsBought = sortedKeys(products[i])
	}

	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].TotalSpent.GreaterThan(stats[b].TotalSpent)
	})

	return stats
}

// DailySalesTrend groups sales by date, ordered by date ascending.
func DailySalesTrend(transactions []model.Transaction) []DailyStats {
	index := make(map[string]int)
	var stats []DailyStats
	customers := make([]map[string]struct{}, 0)

	for _, t := range transactions {
		i, ok := index[t.Date]
		if !ok {
			i = len(stats)
			index[t.Date] = i
			stats = append(stats, DailyStats{Date: t.Date, Revenue: decimal.Zero})
			customers = append(customers, make(map[string]struct{}))
		}
		stats[i].Revenue = stats[i].Revenue.Add(t.Amount())
		stats[i].TransactionCount++
		customers[i][t.CustomerID] = struct{}{}
	}

	for i := range stats {
		stats[i].Revenue = stats[i].Revenue.Round(MoneyPlaces)
		stats[i].UniqueCustomers = len(customers[i])
	}

	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].Date < stats[b].Date
	})

	return stats
}

// PeakSalesDay returns the date with the highest revenue. The boolean is false
// when there are no transactions.
func PeakSalesDay(transactions []model.Transaction) (PeakDay, bool) {
	trend := DailySalesTrend(transactions)
	if len(trend) == 0 {
		return PeakDay{}, false
	}

	best := trend[0]
	for _, d := range trend[1:] {
		if d.Revenue.GreaterThan(best.Revenue) {
			best = d
		}
	}

	return PeakDay{Date: best.Date, Revenue: best.Revenue, TransactionCount: best.TransactionCount}, true
}

// productTotals aggregates quantity and revenue per product name in first-seen order.
func productTotals(transactions []model.Transaction) []ProductStats {
	index := make(map[string]int)
	var stats []ProductStats
	for _, t := range transactions {
		i, ok := index[t.ProductName]
		if !ok {
			i = len(stats)
			index[t.ProductName] = i
			stats = append(stats, ProductStats{Name: t.ProductName, TotalRevenue: decimal.Zero})
		}
		stats[i].TotalQuantity += t.Quantity
		stats[i].TotalRevenue = stats[i].TotalRevenue.Add(t.Amount())
	}

	for i := range stats {
		stats[i].TotalRevenue = stats[i].TotalRevenue.Round(MoneyPlaces)
	}

	return stats
}

func percentage(part, total decimal.Decimal) decimal.Decimal {
	if !total.IsPositive() {
		return decimal.Zero
	}

	return part.Div(total).Mul(hundred).Round(MoneyPlaces)
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}
