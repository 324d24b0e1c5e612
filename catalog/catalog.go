// Package catalog joins transactions with product metadata from the remote catalog.
package catalog

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	apiclient "babylon/salesanalytics/apiClient"
	"babylon/salesanalytics/appcontext"
	"babylon/salesanalytics/model"
)

// DefaultTimeout bounds the single catalog request of a run.
const DefaultTimeout = 10 * time.Second

// NoMatchKey is the product key used when a product id has no numeric part.
// Catalog ids are never negative, so it matches nothing.
const NoMatchKey = -1

// ProductFetcher fetches the product listing.
type ProductFetcher interface {
	GetProducts(ctx context.Context) (*http.Response, *apiclient.ProductsResponse, error)
}

// Mapping indexes catalog entries by product id.
type Mapping map[int]model.CatalogEntry

// Fetch retrieves the catalog with a single request bounded by timeout. Any
// failure is logged and yields an empty catalog.
func Fetch(ctx context.Context, fetcher ProductFetcher, timeout time.Duration) []model.CatalogEntry {
	logger := appcontext.LoggerFromContext(ctx)

	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	_, result, err := fetcher.GetProducts(ctx)
	if err != nil {
		logger.WarnContext(ctx, "Catalog unavailable, enrichment will be skipped", "error", err)
		return nil
	}

	entries := make([]model.CatalogEntry, 0, len(result.Products))
	for _, p := range result.Products {
		entry := model.CatalogEntry{
			ID:       p.ID,
			Title:    p.Title,
			Category: p.Category,
			Rating:   p.Rating,
		}
		if p.Brand != nil {
			entry.Brand = *p.Brand
		}
		entries = append(entries, entry)
	}

	logger.InfoContext(ctx, "Fetched catalog products", "count", len(entries))

	return entries
}

// BuildMapping indexes entries by id. Later duplicates replace earlier ones.
func BuildMapping(entries []model.CatalogEntry) Mapping {
	mapping := make(Mapping, len(entries))
	for _, e := range entries {
		if e.ID < 0 {
			continue
		}
		mapping[e.ID] = e
	}

	return mapping
}

// ProductKey derives the numeric catalog key of a product id, "P101" -> 101.
// Surrounding spaces and single underscores between digits are accepted, "P 1_01" -> 101.
func ProductKey(productID string) int {
	digits := strings.TrimSpace(strings.TrimPrefix(productID, "P"))
	for i := 0; i < len(digits); i++ {
		if digits[i] == '_' && (i == 0 || i == len(digits)-1 || !isDigit(digits[i-1]) || !isDigit(digits[i+1])) {
			return NoMatchKey
		}
	}

	n, err := strconv.Atoi(strings.ReplaceAll(digits, "_", ""))
	if err != nil || n < 0 {
		return NoMatchKey
	}

	return n
}

func isDigit(b byte) bool {
	return b >= '0' && b <= '9'
}

// Enrich returns one EnrichedTransaction per input transaction, in input order.
func Enrich(transactions []model.Transaction, mapping Mapping) []model.EnrichedTransaction {
	enriched := make([]model.EnrichedTransaction, 0, len(transactions))
	for _, t := range transactions {
		et := model.EnrichedTransaction{Transaction: t}

		if entry, ok := mapping[ProductKey(t.ProductID)]; ok {
			category, brand, rating := entry.Category, entry.Brand, entry.Rating
			et.APICategory = &category
			et.APIBrand = &brand
			et.APIRating = &rating
			et.APIMatch = true
		}

		enriched = append(enriched, et)
	}

	return enriched
}

// Stats summarizes how many transactions matched a catalog entry.
type Stats struct {
	Matched    int
	Total      int
	Percentage decimal.Decimal
}

// Summarize counts matched transactions.
func Summarize(enriched []model.EnrichedTransaction) Stats {
	s := Stats{Total: len(enriched), Percentage: decimal.Zero}
	for _, e := range enriched {
		if e.APIMatch {
			s.Matched++
		}
	}

	if s.Total > 0 {
		s.Percentage = decimal.NewFromInt(int64(s.Matched)).
			Div(decimal.NewFromInt(int64(s.Total))).
			Mul(decimal.NewFromInt(100))
	}

	return s
}

// Log writes the enrichment statistics.
func (s Stats) Log(ctx context.Context, logger *slog.Logger) {
	logger.InfoContext(ctx, "Enriched transactions",
		"matched", s.Matched,
		"total", s.Total,
		"percentage", s.Percentage.StringFixed(1),
	)
}

// UnmatchedProducts returns the distinct names of products without a catalog
// match, sorted.
func UnmatchedProducts(enriched []model.EnrichedTransaction) []string {
	set := make(map[string]struct{})
	for _, e := range enriched {
		if !e.APIMatch {
			set[e.ProductName] = struct{}{}
		}
	}

	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}
